// Package api includes the public types shared by Otter's host embedding
// surface (otter.go, config.go, builder.go) and by any code embedding the
// engine: a host-facing Value handle, the NativeFunc signature a host
// implements to register callables, and the engine-level error taxonomy.
// Adapted from the teacher's api/wasm.go, which plays the same role for
// wazero's WebAssembly-facing types — decoupling, not third-party
// implementations; every implementation of these types lives in otter.
package api

import (
	"strconv"

	"github.com/otterjs/otter/internal/ottererr"
	"github.com/otterjs/otter/internal/value"
)

// Value is the host-facing handle to an engine value (spec §6):
// to_{bool,number,int32}, as_{object,string,function}, type_of. It wraps
// the internal tagged union so host code never imports internal/value
// directly.
type Value struct {
	v value.Value
}

// WrapValue lifts an internal value.Value into its public handle. Used by
// Engine and by native functions registered through RegisterNative.
func WrapValue(v value.Value) Value { return Value{v: v} }

// Unwrap returns the internal value.Value this handle carries, for
// otter-internal code (Engine, NativeFunc adapters) that needs to hand it
// back to the interpreter.
func (ov Value) Unwrap() value.Value { return ov.v }

// Undefined, Null, True, False are the host-constructible primitive
// singletons (spec §3.1).
var (
	Undefined = WrapValue(value.Undef)
	Null      = WrapValue(value.Nul)
	True      = WrapValue(value.True)
	False     = WrapValue(value.False)
)

// Bool and Number wrap a Go primitive as an engine Value.
func Bool(b bool) Value      { return WrapValue(value.NewBool(b)) }
func Number(n float64) Value { return WrapValue(value.NewNumber(n)) }

// TypeOf implements the JS typeof operator.
func (ov Value) TypeOf() string { return ov.v.TypeOf() }

// ToBool implements ToBoolean.
func (ov Value) ToBool() bool { return ov.v.ToBool() }

// ToNumber implements ToNumber.
func (ov Value) ToNumber() float64 { return ov.v.ToNumber() }

// ToInt32 implements ToInt32 (spec §3.1's Int32 tag, or truncation of a
// Number toward zero modulo 2^32).
func (ov Value) ToInt32() int32 {
	n := ov.v.ToNumber()
	if n != n || n < -2147483648 || n > 2147483647 {
		return int32(int64(n))
	}
	return int32(n)
}

// ToString implements ToString for primitives only: strings pass
// through, numbers/booleans/undefined/null use their literal display
// form. Objects and functions do NOT invoke a user-overridden
// toString()/Symbol.toPrimitive here — that requires re-entering the
// interpreter, which a bare Value handle has no reference to: objects
// yield "[object Object]" and functions "[object Function]".
func (ov Value) ToString() string {
	switch {
	case ov.v.IsUndefined():
		return "undefined"
	case ov.v.IsNull():
		return "null"
	case ov.v.TypeOf() == "boolean":
		if ov.v.ToBool() {
			return "true"
		}
		return "false"
	}
	if s, ok := ov.v.AsString(); ok {
		return s.String()
	}
	if _, ok := ov.v.AsObject(); ok {
		return "[object Object]"
	}
	if _, ok := ov.v.AsFunction(); ok {
		return "[object Function]"
	}
	return formatNumber(ov.v.ToNumber())
}

func formatNumber(n float64) string {
	if n != n {
		return "NaN"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// AsObject, AsFunction, AsString narrow ov the way the corresponding
// script-level `typeof`/property-access checks do, reporting ok=false
// rather than panicking when the kind doesn't match.
func (ov Value) AsObject() (*value.JsObject, bool)   { return ov.v.AsObject() }
func (ov Value) AsFunction() (*value.Closure, bool)  { return ov.v.AsFunction() }
func (ov Value) AsString() (string, bool) {
	s, ok := ov.v.AsString()
	if !ok {
		return "", false
	}
	return s.String(), true
}

// IsCallable reports whether ov can appear as the callee of a Call
// instruction (spec §4.4): a Function, or a Proxy/bound wrapper thereof.
func (ov Value) IsCallable() bool { return ov.v.IsCallable() }

// NativeFunc is the signature a host implements to register a callable
// on the global object via Engine.RegisterNative (spec §6
// "Engine::register_native"). this follows the usual JS semantics: the
// receiver the call was made through, or Undefined for a bare call.
type NativeFunc func(this Value, args []Value) (Value, error)

// Re-exported engine-level error taxonomy (spec §7, §10.1) so host code
// never needs to import internal/ottererr directly.
type (
	CompileError    = ottererr.CompileError
	StackOverflow   = ottererr.StackOverflow
	OutOfMemory     = ottererr.OutOfMemory
	Interrupted     = ottererr.Interrupted
	ModuleError     = ottererr.ModuleError
	ModuleErrorKind = ottererr.ModuleErrorKind
	Internal        = ottererr.Internal
	ScriptError     = ottererr.ScriptError
	StackFrame      = ottererr.StackFrame
)

const (
	ModuleResolution = ottererr.ModuleResolution
	ModuleNotFound   = ottererr.ModuleNotFound
	ModuleCircular   = ottererr.ModuleCircular
	ModuleTranspile  = ottererr.ModuleTranspile
)
