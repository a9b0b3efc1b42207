package value

import (
	"math/big"

	"github.com/otterjs/otter/internal/gc"
)

// JsBigInt is an arbitrary-precision integer stored as a decimal string
// and parsed into a math/big.Int on demand (spec §3.1 BigInt), rather than
// eagerly, so a BigInt that's only ever round-tripped (serialized,
// compared, printed) never pays for a big.Int allocation.
type JsBigInt struct {
	gc.Header
	decimal string
	parsed  *big.Int // lazily populated by Int()
}

// NewJsBigInt allocates and tracks a BigInt from its decimal-string
// representation. s must be a valid base-10 integer literal (optionally
// signed); callers that already hold a *big.Int should use
// NewJsBigIntFromInt.
func NewJsBigInt(c *gc.Collector, s string) (*JsBigInt, error) {
	b := &JsBigInt{decimal: s}
	if err := c.Track(b, uint64(len(s))); err != nil {
		return nil, err
	}
	return b, nil
}

// NewJsBigIntFromInt allocates a BigInt from an already-parsed big.Int,
// avoiding a decimal round-trip for values produced by arithmetic.
func NewJsBigIntFromInt(c *gc.Collector, n *big.Int) (*JsBigInt, error) {
	s := n.String()
	b := &JsBigInt{decimal: s, parsed: new(big.Int).Set(n)}
	if err := c.Track(b, uint64(len(s))); err != nil {
		return nil, err
	}
	return b, nil
}

// Trace implements gc.Traceable. BigInts hold no heap references.
func (b *JsBigInt) Trace(func(gc.Traceable)) {}

// String returns the decimal-string representation.
func (b *JsBigInt) String() string { return b.decimal }

// Int parses (and caches) the arbitrary-precision value. Returns false if
// the stored decimal string is malformed, which should not happen for any
// BigInt constructed through this package's constructors.
func (b *JsBigInt) Int() (*big.Int, bool) {
	if b.parsed != nil {
		return b.parsed, true
	}
	n, ok := new(big.Int).SetString(b.decimal, 10)
	if !ok {
		return nil, false
	}
	b.parsed = n
	return n, true
}
