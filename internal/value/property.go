package value

// PropertyKeyKind distinguishes the three PropertyKey variants (spec
// §3.2: "PropertyKey is the sum {String(interned), Symbol(id),
// Index(u32)}").
type PropertyKeyKind uint8

const (
	KeyString PropertyKeyKind = iota
	KeySymbol
	KeyIndex
)

// PropertyKey is a comparable value so it can be used directly as a map
// key in Shape's offset table; exactly one of the three fields is
// meaningful depending on Kind.
type PropertyKey struct {
	kind PropertyKeyKind
	str  string
	sym  *JsSymbol
	idx  uint32
}

// StringKey builds a named property key.
func StringKey(s string) PropertyKey { return PropertyKey{kind: KeyString, str: s} }

// SymbolKey builds a symbol-keyed property key. Equality is by symbol
// identity, matching JsSymbol's own equality rule.
func SymbolKey(s *JsSymbol) PropertyKey { return PropertyKey{kind: KeySymbol, sym: s} }

// IndexKey builds an integer-indexed property key.
func IndexKey(i uint32) PropertyKey { return PropertyKey{kind: KeyIndex, idx: i} }

// Kind reports which variant this key is.
func (k PropertyKey) Kind() PropertyKeyKind { return k.kind }

// StringValue returns the underlying name; only meaningful when
// Kind() == KeyString.
func (k PropertyKey) StringValue() string { return k.str }

// SymbolValue returns the underlying symbol; only meaningful when
// Kind() == KeySymbol.
func (k PropertyKey) SymbolValue() *JsSymbol { return k.sym }

// IndexValue returns the underlying index; only meaningful when
// Kind() == KeyIndex.
func (k PropertyKey) IndexValue() uint32 { return k.idx }

// DescriptorKind distinguishes a data property from an accessor property
// (spec §3.2).
type DescriptorKind uint8

const (
	DataDescriptor DescriptorKind = iota
	AccessorDescriptor
)

// Attrs are the three standard property attributes.
type Attrs struct {
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// MethodAttrs is the distinguished attribute preset every built-in method
// descriptor uses (spec §3.2, §4.7): writable, not enumerable,
// configurable.
func MethodAttrs() Attrs { return Attrs{Writable: true, Enumerable: false, Configurable: true} }

// ArrayElementAttrs is the preset array-indexed storage uses so the
// synthesized view agrees with a literal integer-keyed property (spec
// §3.3 "the two views must agree"): writable, enumerable, configurable.
func ArrayElementAttrs() Attrs { return Attrs{Writable: true, Enumerable: true, Configurable: true} }

// PropertyDescriptor is either a Data slot (a value plus attributes) or an
// Accessor slot (getter/setter closures plus attributes).
type PropertyDescriptor struct {
	kind    DescriptorKind
	value   Value
	getter  *Closure
	setter  *Closure
	attrs   Attrs
}

// NewDataProperty builds a Data descriptor.
func NewDataProperty(v Value, attrs Attrs) PropertyDescriptor {
	return PropertyDescriptor{kind: DataDescriptor, value: v, attrs: attrs}
}

// NewAccessorProperty builds an Accessor descriptor. Either getter or
// setter may be nil (a write-only or read-only accessor).
func NewAccessorProperty(getter, setter *Closure, attrs Attrs) PropertyDescriptor {
	return PropertyDescriptor{kind: AccessorDescriptor, getter: getter, setter: setter, attrs: attrs}
}

// Kind reports whether this is a Data or Accessor descriptor.
func (d PropertyDescriptor) Kind() DescriptorKind { return d.kind }

// Value returns the stored value; only meaningful for Data descriptors.
func (d PropertyDescriptor) Value() Value { return d.value }

// Getter and Setter return the accessor closures; only meaningful for
// Accessor descriptors.
func (d PropertyDescriptor) Getter() *Closure { return d.getter }
func (d PropertyDescriptor) Setter() *Closure { return d.setter }

// Attrs returns the descriptor's attribute preset.
func (d PropertyDescriptor) Attrs() Attrs { return d.attrs }

// WithValue returns a copy of d with its value replaced, used by property
// writes that hit an existing Data slot without going through a shape
// transition.
func (d PropertyDescriptor) WithValue(v Value) PropertyDescriptor {
	d.value = v
	return d
}
