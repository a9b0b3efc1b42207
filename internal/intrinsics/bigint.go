package intrinsics

import (
	"math/big"
	"strings"

	"github.com/otterjs/otter/internal/value"
)

// initBigInt installs the global BigInt function and BigInt.prototype
// (spec §3.1's "BigInt(ref→JsBigInt) — arbitrary-precision integer stored
// as decimal string" over the already-built value.JsBigInt primitive).
// BigInt is deliberately installed as a plain callable rather than
// through r.constructor: real engines throw on `new BigInt(...)`, and
// this engine has no isConstruct signal reaching a NativeFunc to
// replicate that — see DESIGN.md.
func (r *Realm) initBigInt() error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}

	if err := r.method(proto, "toString", func(this value.Value, args []value.Value) (value.Value, error) {
		b, ok := this.AsBigInt()
		if !ok {
			return value.Undef, value.Throw(r.typeError("BigInt.prototype.toString called on a non-BigInt"))
		}
		return r.string(b.String()), nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "valueOf", func(this value.Value, args []value.Value) (value.Value, error) {
		if !this.IsUndefined() {
			if _, ok := this.AsBigInt(); ok {
				return this, nil
			}
		}
		return value.Undef, value.Throw(r.typeError("BigInt.prototype.valueOf called on a non-BigInt"))
	}); err != nil {
		return err
	}

	fn, err := value.NewNativeClosure(r.c, "BigInt", r.bigIntConvert)
	if err != nil {
		return err
	}
	if err := fn.SetConstructPrototype(r.c, proto); err != nil {
		return err
	}
	// BigInt's own prototype object still needs "constructor" wired even
	// though BigInt is never invoked via `new` in practice, matching every
	// other built-in's proto.constructor contract.
	if err := r.dataProp(proto, "constructor", value.NewFunction(fn)); err != nil {
		return err
	}
	return r.global("BigInt", value.NewFunction(fn))
}

// bigIntConvert implements ToBigInt for the operand kinds that don't
// require calling back into user code: an already-integral Number, a
// decimal-string String, or a pass-through BigInt.
func (r *Realm) bigIntConvert(this value.Value, args []value.Value) (value.Value, error) {
	v := arg(args, 0)
	switch v.Kind() {
	case value.BigInt:
		return v, nil
	case value.Int32, value.Number:
		n := v.ToNumber()
		if n != n || n != float64(int64(n)) {
			return value.Undef, value.Throw(r.typeError("cannot convert non-integer number to a BigInt"))
		}
		b, err := value.NewJsBigIntFromInt(r.c, big.NewInt(int64(n)))
		if err != nil {
			return value.Undef, err
		}
		return value.NewBigInt(b), nil
	case value.String:
		s, _ := v.AsString()
		text := strings.TrimSpace(s.String())
		if text == "" {
			text = "0"
		}
		if _, ok := new(big.Int).SetString(text, 10); !ok {
			return value.Undef, value.Throw(r.newError("SyntaxError", "cannot convert string to a BigInt"))
		}
		b, err := value.NewJsBigInt(r.c, text)
		if err != nil {
			return value.Undef, err
		}
		return value.NewBigInt(b), nil
	case value.Boolean:
		n := int64(0)
		if v.ToBool() {
			n = 1
		}
		b, err := value.NewJsBigIntFromInt(r.c, big.NewInt(n))
		if err != nil {
			return value.Undef, err
		}
		return value.NewBigInt(b), nil
	default:
		return value.Undef, value.Throw(r.typeError("cannot convert value to a BigInt"))
	}
}
