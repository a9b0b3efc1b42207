// Package value implements the engine's object model (spec §3): the
// tagged Value union, JsObject with hidden-class shapes, strings, symbols,
// bigints, and closures. Every heap-resident type here embeds gc.Header
// and implements gc.Traceable; the collector itself (package gc) stays
// ignorant of all of it.
package value

import "github.com/otterjs/otter/internal/gc"

// Kind is Value's type tag.
type Kind uint8

const (
	Undefined Kind = iota
	Null
	Boolean
	Int32
	Number
	String
	Symbol
	BigInt
	Object
	Function
)

func (k Kind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case Null:
		return "object" // typeof null === "object", matched deliberately
	case Boolean:
		return "boolean"
	case Int32, Number:
		return "number"
	case String:
		return "string"
	case Symbol:
		return "symbol"
	case BigInt:
		return "bigint"
	case Function:
		return "function"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the tagged union every bytecode register and object slot
// holds. It is deliberately small and copy-by-value (spec §3.1): heap
// variants carry a Traceable reference, not ownership.
//
// This is a struct-of-two-fields rather than NaN-boxed bits; the spec
// permits either representation and leaves NaN-boxing as an optimization,
// not a requirement. A Go tagged struct keeps the interpreter's fast path
// free of unsafe pointer tricks, matching the teacher's own preference for
// explicit structs over bit-packed encodings outside of the one place
// (internal/bitpack) that calls for it.
type Value struct {
	kind Kind
	num  float64      // Number and Int32 share this; Boolean uses it as 0/1
	ref  gc.Traceable // String, Symbol, BigInt, Object, Function
}

// Undef, Nul, True, and False are the zero-allocation singleton values.
var (
	Undef = Value{kind: Undefined}
	Nul   = Value{kind: Null}
	True  = Value{kind: Boolean, num: 1}
	False = Value{kind: Boolean, num: 0}
)

// NewInt32 builds a fast-path small-integer Value.
func NewInt32(n int32) Value { return Value{kind: Int32, num: float64(n)} }

// NewNumber builds a double-precision Value.
func NewNumber(n float64) Value { return Value{kind: Number, num: n} }

// NewBool builds a Value from a Go bool.
func NewBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// NewObject wraps an object reference as a Value.
func NewObject(o *JsObject) Value { return Value{kind: Object, ref: o} }

// NewFunction wraps a closure reference as a Value.
func NewFunction(c *Closure) Value { return Value{kind: Function, ref: c} }

// NewString wraps a string reference as a Value.
func NewString(s *JsString) Value { return Value{kind: String, ref: s} }

// NewSymbol wraps a symbol reference as a Value.
func NewSymbol(s *JsSymbol) Value { return Value{kind: Symbol, ref: s} }

// NewBigInt wraps a bigint reference as a Value.
func NewBigInt(b *JsBigInt) Value { return Value{kind: BigInt, ref: b} }

// Kind reports the value's type tag.
func (v Value) Kind() Kind { return v.kind }

// TypeOf implements the JS typeof operator (spec §4.4 TypeOf instruction).
func (v Value) TypeOf() string { return v.kind.String() }

// IsUndefined, IsNull, IsNullish report the obvious.
func (v Value) IsUndefined() bool { return v.kind == Undefined }
func (v Value) IsNull() bool      { return v.kind == Null }
func (v Value) IsNullish() bool   { return v.kind == Undefined || v.kind == Null }

// ToBool implements ToBoolean per the usual falsy set: undefined, null,
// false, 0, NaN, and the empty string.
func (v Value) ToBool() bool {
	switch v.kind {
	case Undefined, Null:
		return false
	case Boolean:
		return v.num != 0
	case Int32, Number:
		return v.num != 0 && v.num == v.num // excludes NaN
	case String:
		return v.ref.(*JsString).Len() > 0
	default:
		return true
	}
}

// ToNumber implements ToNumber for the variants that have an obvious
// coercion; String/Object coercion that requires calling back into the
// interpreter (valueOf/toString, string parsing) is intentionally left to
// the intrinsics layer, which has access to the realm.
func (v Value) ToNumber() float64 {
	switch v.kind {
	case Undefined:
		return nan()
	case Null:
		return 0
	case Boolean:
		return v.num
	case Int32, Number:
		return v.num
	default:
		return nan()
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

// AsObject returns the underlying object and true if this Value holds one.
func (v Value) AsObject() (*JsObject, bool) {
	if v.kind != Object {
		return nil, false
	}
	o, ok := v.ref.(*JsObject)
	return o, ok
}

// AsFunction returns the underlying closure and true if this Value holds
// one.
func (v Value) AsFunction() (*Closure, bool) {
	if v.kind != Function {
		return nil, false
	}
	c, ok := v.ref.(*Closure)
	return c, ok
}

// AsString returns the underlying string and true if this Value holds one.
func (v Value) AsString() (*JsString, bool) {
	if v.kind != String {
		return nil, false
	}
	s, ok := v.ref.(*JsString)
	return s, ok
}

// AsSymbol returns the underlying symbol and true if this Value holds one.
func (v Value) AsSymbol() (*JsSymbol, bool) {
	if v.kind != Symbol {
		return nil, false
	}
	s, ok := v.ref.(*JsSymbol)
	return s, ok
}

// AsBigInt returns the underlying bigint and true if this Value holds one.
func (v Value) AsBigInt() (*JsBigInt, bool) {
	if v.kind != BigInt {
		return nil, false
	}
	b, ok := v.ref.(*JsBigInt)
	return b, ok
}

// IsCallable reports whether the value can appear as the fn operand of
// Call/Construct (spec §4.4).
func (v Value) IsCallable() bool {
	if v.kind == Function {
		return true
	}
	if o, ok := v.AsObject(); ok {
		return o.IsCallable()
	}
	return false
}

// StrictEquals implements the === operator (spec §4.4 StrictEq): same
// type, and for heap variants, same identity (except Number/Int32,
// compared by value).
func (v Value) StrictEquals(other Value) bool {
	if v.kind != other.kind {
		// Int32 and Number are both "number" at the typeof level but are
		// distinct Kinds here; strict-eq must still treat them uniformly.
		if (v.kind == Int32 || v.kind == Number) && (other.kind == Int32 || other.kind == Number) {
			return v.num == other.num
		}
		return false
	}
	switch v.kind {
	case Undefined, Null:
		return true
	case Boolean, Int32, Number:
		return v.num == other.num
	default:
		return v.ref == other.ref
	}
}

// traceRef calls visit on the value's heap reference, if it has one. Used
// by every container type's Trace method (JsObject, Closure, arrays) so
// tracing a slot of Values is one line regardless of what's stored in it.
func (v Value) traceRef(visit func(gc.Traceable)) {
	if v.ref != nil {
		visit(v.ref)
	}
}

// TraceValue is exported for callers outside this package that need to
// trace a Value without reaching into its internals — notably
// gc.EphemeronTable[Value]'s traceValue callback for Map/Set/WeakMap.
func TraceValue(v Value, visit func(gc.Traceable)) {
	v.traceRef(visit)
}
