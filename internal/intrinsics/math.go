package intrinsics

import (
	"math"
	"math/rand"

	"github.com/otterjs/otter/internal/moremath"
	"github.com/otterjs/otter/internal/value"
)

// initMath builds the Math namespace object (no constructor, no
// prototype chain beyond Object.prototype — Math is a plain static
// namespace per spec).
func (r *Realm) initMath() error {
	m, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}

	consts := map[string]float64{
		"PI": math.Pi, "E": math.E, "LN2": math.Ln2, "LN10": math.Log(10),
		"SQRT2": math.Sqrt2,
	}
	for name, v := range consts {
		if err := r.dataProp(m, name, value.NewNumber(v)); err != nil {
			return err
		}
	}

	unary := map[string]func(float64) float64{
		"abs": math.Abs, "floor": math.Floor, "ceil": math.Ceil, "round": mathRound,
		"trunc": math.Trunc, "sqrt": math.Sqrt, "cbrt": math.Cbrt, "sign": mathSign,
		"sin": math.Sin, "cos": math.Cos, "tan": math.Tan, "log": math.Log,
		"log2": math.Log2, "log10": math.Log10, "exp": math.Exp,
	}
	for name, fn := range unary {
		fn := fn
		if err := r.method(m, name, func(this value.Value, args []value.Value) (value.Value, error) {
			return value.NewNumber(fn(arg(args, 0).ToNumber())), nil
		}); err != nil {
			return err
		}
	}

	if err := r.method(m, "pow", func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewNumber(math.Pow(arg(args, 0).ToNumber(), arg(args, 1).ToNumber())), nil
	}); err != nil {
		return err
	}
	if err := r.method(m, "max", func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewNumber(mathFold(args, math.Inf(-1), moremath.JSCompatMax)), nil
	}); err != nil {
		return err
	}
	if err := r.method(m, "min", func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewNumber(mathFold(args, math.Inf(1), moremath.JSCompatMin)), nil
	}); err != nil {
		return err
	}
	if err := r.method(m, "random", func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewNumber(rand.Float64()), nil
	}); err != nil {
		return err
	}
	if err := r.method(m, "hypot", func(this value.Value, args []value.Value) (value.Value, error) {
		var sum float64
		for _, a := range args {
			n := a.ToNumber()
			sum += n * n
		}
		return value.NewNumber(math.Sqrt(sum)), nil
	}); err != nil {
		return err
	}

	return r.global("Math", value.NewObject(m))
}

func mathRound(f float64) float64 { return math.Floor(f + 0.5) }

func mathSign(f float64) float64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return f
	}
}

func mathFold(args []value.Value, seed float64, fold func(a, b float64) float64) float64 {
	acc := seed
	for _, a := range args {
		acc = fold(acc, a.ToNumber())
	}
	return acc
}
