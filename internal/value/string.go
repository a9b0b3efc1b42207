package value

import "github.com/otterjs/otter/internal/gc"

// JsString is a GC-managed, immutable UTF-8 string (spec §3.1 String).
// Short strings in a production engine would typically be interned; this
// engine interns through the interpreter's constant pool (one JsString per
// distinct constant-pool entry) rather than a separate global table.
type JsString struct {
	gc.Header
	data string
}

// NewJsString allocates and tracks a new string against c, booking its
// backing bytes against the memory manager.
func NewJsString(c *gc.Collector, s string) (*JsString, error) {
	js := &JsString{data: s}
	if err := c.Track(js, uint64(len(s))); err != nil {
		return nil, err
	}
	return js, nil
}

// Trace implements gc.Traceable. Strings hold no heap references.
func (s *JsString) Trace(func(gc.Traceable)) {}

// String returns the Go string this value wraps.
func (s *JsString) String() string { return s.data }

// Len returns the string's length in bytes. JS string length is defined
// in UTF-16 code units; the intrinsics layer is responsible for that
// conversion when exposing .length to script, same split the teacher
// draws between raw bytes and WASM-visible semantics.
func (s *JsString) Len() int { return len(s.data) }

// JsSymbol is a unique, non-forgeable token (spec §3.1 Symbol). Equality
// is identity: two distinct JsSymbol allocations are never ===, even with
// the same description.
type JsSymbol struct {
	gc.Header
	description string
}

// NewJsSymbol allocates and tracks a new symbol.
func NewJsSymbol(c *gc.Collector, description string) (*JsSymbol, error) {
	sym := &JsSymbol{description: description}
	if err := c.Track(sym, uint64(len(description))); err != nil {
		return nil, err
	}
	return sym, nil
}

// Trace implements gc.Traceable. Symbols hold no heap references.
func (s *JsSymbol) Trace(func(gc.Traceable)) {}

// Description returns the symbol's optional descriptive string.
func (s *JsSymbol) Description() string { return s.description }
