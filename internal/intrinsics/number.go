package intrinsics

import (
	"strconv"

	"github.com/otterjs/otter/internal/value"
)

// initNumber builds Number.prototype/Number (grounded on
// intrinsics_impl/number.rs's toFixed/toString/isInteger family) plus the
// handful of static constants scripts expect on the Number namespace.
func (r *Realm) initNumber() error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}
	r.NumberProto = proto

	if err := r.method(proto, "toString", r.numberToString); err != nil {
		return err
	}
	if err := r.method(proto, "valueOf", func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewNumber(this.ToNumber()), nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "toFixed", r.numberToFixed); err != nil {
		return err
	}

	ctor, ctorObj, err := r.constructor("Number", proto, r.numberConstruct)
	if err != nil {
		return err
	}
	if err := r.dataProp(proto, "constructor", value.NewFunction(ctor)); err != nil {
		return err
	}
	if err := r.dataProp(ctorObj, "MAX_SAFE_INTEGER", value.NewNumber(9007199254740991)); err != nil {
		return err
	}
	if err := r.dataProp(ctorObj, "MIN_SAFE_INTEGER", value.NewNumber(-9007199254740991)); err != nil {
		return err
	}
	if err := r.dataProp(ctorObj, "EPSILON", value.NewNumber(2.220446049250313e-16)); err != nil {
		return err
	}
	if err := r.method(ctorObj, "isInteger", r.numberIsInteger); err != nil {
		return err
	}
	if err := r.method(ctorObj, "isFinite", r.numberIsFinite); err != nil {
		return err
	}
	if err := r.method(ctorObj, "isNaN", r.numberIsNaN); err != nil {
		return err
	}
	return nil
}

func (r *Realm) numberConstruct(this value.Value, args []value.Value) (value.Value, error) {
	return value.NewNumber(arg(args, 0).ToNumber()), nil
}

func (r *Realm) numberToString(this value.Value, args []value.Value) (value.Value, error) {
	n := this.ToNumber()
	radix := 10
	if rv := arg(args, 0); !rv.IsUndefined() {
		radix = int(rv.ToNumber())
	}
	if radix == 10 {
		return r.string(formatNumber(n)), nil
	}
	return r.string(strconv.FormatInt(int64(n), radix)), nil
}

func (r *Realm) numberToFixed(this value.Value, args []value.Value) (value.Value, error) {
	n := this.ToNumber()
	digits := 0
	if dv := arg(args, 0); !dv.IsUndefined() {
		digits = int(dv.ToNumber())
	}
	return r.string(strconv.FormatFloat(n, 'f', digits, 64)), nil
}

func (r *Realm) numberIsInteger(this value.Value, args []value.Value) (value.Value, error) {
	v := arg(args, 0)
	if v.Kind() != value.Number && v.Kind() != value.Int32 {
		return value.False, nil
	}
	n := v.ToNumber()
	return value.NewBool(n == float64(int64(n))), nil
}

func (r *Realm) numberIsFinite(this value.Value, args []value.Value) (value.Value, error) {
	v := arg(args, 0)
	if v.Kind() != value.Number && v.Kind() != value.Int32 {
		return value.False, nil
	}
	n := v.ToNumber()
	return value.NewBool(n == n && !isInf(n)), nil
}

func (r *Realm) numberIsNaN(this value.Value, args []value.Value) (value.Value, error) {
	v := arg(args, 0)
	if v.Kind() != value.Number && v.Kind() != value.Int32 {
		return value.False, nil
	}
	n := v.ToNumber()
	return value.NewBool(n != n), nil
}

func isInf(n float64) bool {
	return n > 1.7976931348623157e+308 || n < -1.7976931348623157e+308
}

// formatNumber implements ToString for the Number kind the way JS
// displays it: integral values print without a decimal point, everything
// else uses Go's shortest round-tripping representation.
func formatNumber(n float64) string {
	if n != n {
		return "NaN"
	}
	if isInf(n) {
		if n > 0 {
			return "Infinity"
		}
		return "-Infinity"
	}
	if n == float64(int64(n)) && n < 1e15 && n > -1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
