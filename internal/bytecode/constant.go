package bytecode

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ConstantKind tags a ConstantPool entry's variant (spec §4.3: "an indexed
// array of {String, Number, BigInt, Regex} items deduplicated by value").
type ConstantKind uint8

const (
	ConstString ConstantKind = iota
	ConstNumber
	ConstBigInt
	ConstRegex
)

// Constant is one deduplicated constant-pool entry.
type Constant struct {
	Kind ConstantKind `cbor:"kind"`

	Str    string  `cbor:"str,omitempty"`    // ConstString, and the decimal text for ConstBigInt
	Num    float64 `cbor:"num,omitempty"`    // ConstNumber
	Flags  string  `cbor:"flags,omitempty"`  // ConstRegex flags ("gi", "u", ...)
	Source string  `cbor:"source,omitempty"` // ConstRegex pattern source
}

func (c Constant) dedupeKey() any {
	switch c.Kind {
	case ConstString:
		return [2]string{"s", c.Str}
	case ConstNumber:
		return [2]any{"n", c.Num}
	case ConstBigInt:
		return [2]string{"b", c.Str}
	case ConstRegex:
		return [3]string{"r", c.Source, c.Flags}
	default:
		panic(fmt.Sprintf("bytecode: unknown constant kind %d", c.Kind))
	}
}

// ConstantPool is the function table's shared, value-deduplicated store
// of literals referenced by ConstIdx.
type ConstantPool struct {
	items []Constant
	index map[any]uint32
}

// NewConstantPool returns an empty pool.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{index: make(map[any]uint32)}
}

// AddString interns s, returning its pool index.
func (p *ConstantPool) AddString(s string) uint32 {
	return p.add(Constant{Kind: ConstString, Str: s})
}

// AddNumber interns n, returning its pool index.
func (p *ConstantPool) AddNumber(n float64) uint32 {
	return p.add(Constant{Kind: ConstNumber, Num: n})
}

// AddBigInt interns a BigInt's decimal text, returning its pool index.
func (p *ConstantPool) AddBigInt(decimal string) uint32 {
	return p.add(Constant{Kind: ConstBigInt, Str: decimal})
}

// AddRegex interns a regex literal's source/flags pair, returning its pool
// index.
func (p *ConstantPool) AddRegex(source, flags string) uint32 {
	return p.add(Constant{Kind: ConstRegex, Source: source, Flags: flags})
}

func (p *ConstantPool) add(c Constant) uint32 {
	key := c.dedupeKey()
	if idx, ok := p.index[key]; ok {
		return idx
	}
	idx := uint32(len(p.items))
	p.items = append(p.items, c)
	p.index[key] = idx
	return idx
}

// Get returns the constant at idx.
func (p *ConstantPool) Get(idx uint32) (Constant, bool) {
	if int(idx) >= len(p.items) {
		return Constant{}, false
	}
	return p.items[idx], true
}

// Len reports the number of distinct constants in the pool.
func (p *ConstantPool) Len() int { return len(p.items) }

// Items returns the pool's entries in index order. Callers must not
// mutate the returned slice.
func (p *ConstantPool) Items() []Constant { return p.items }

// poolWireFormat is ConstantPool's CBOR-serializable shape; the dedup
// index is unexported state rebuilt on decode rather than carried over
// the wire.
type poolWireFormat struct {
	Items []Constant `cbor:"items"`
}

// MarshalCBOR implements cbor.Marshaler so a ConstantPool nested inside a
// Module serializes despite its unexported fields.
func (p *ConstantPool) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(poolWireFormat{Items: p.items})
}

// UnmarshalCBOR implements cbor.Unmarshaler, rebuilding the dedup index
// from the decoded items.
func (p *ConstantPool) UnmarshalCBOR(data []byte) error {
	var w poolWireFormat
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	p.items = w.Items
	p.index = make(map[any]uint32, len(w.Items))
	for i, c := range w.Items {
		p.index[c.dedupeKey()] = uint32(i)
	}
	return nil
}
