package intrinsics

import (
	"strings"

	"github.com/otterjs/otter/internal/value"
)

// initString builds String.prototype (grounded on String's usual
// slice/search/case surface) and the String constructor/statics.
func (r *Realm) initString() error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}
	r.StringProto = proto

	methods := map[string]value.NativeFunc{
		"toString":   func(this value.Value, args []value.Value) (value.Value, error) { return r.string(r.toStringValue(this)), nil },
		"valueOf":    func(this value.Value, args []value.Value) (value.Value, error) { return r.string(r.toStringValue(this)), nil },
		"charAt":     r.stringCharAt,
		"indexOf":    r.stringIndexOf,
		"includes":   r.stringIncludes,
		"slice":      r.stringSlice,
		"split":      r.stringSplit,
		"toUpperCase": r.stringToUpper,
		"toLowerCase": r.stringToLower,
		"trim":       r.stringTrim,
		"padStart":   r.stringPadStart,
		"padEnd":     r.stringPadEnd,
		"startsWith": r.stringStartsWith,
		"endsWith":   r.stringEndsWith,
		"replace":    r.stringReplace,
		"repeat":     r.stringRepeat,
		"concat":     r.stringConcat,
	}
	for name, fn := range methods {
		if err := r.method(proto, name, fn); err != nil {
			return err
		}
	}

	lengthGetter, err := value.NewNativeClosure(r.c, "get length", func(this value.Value, args []value.Value) (value.Value, error) {
		s, ok := this.AsString()
		if !ok {
			return value.NewInt32(0), nil
		}
		n := 0
		for _, c := range s.String() {
			if c >= 0x10000 {
				n += 2 // astral code points take a surrogate pair
			} else {
				n++
			}
		}
		return value.NewInt32(int32(n)), nil
	})
	if err != nil {
		return err
	}
	if err := proto.DefineOwnProperty(r.c, value.StringKey("length"), value.NewAccessorProperty(lengthGetter, nil, value.Attrs{})); err != nil {
		return err
	}

	ctor, ctorObj, err := r.constructor("String", proto, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return r.string(""), nil
		}
		return r.string(r.toStringValue(args[0])), nil
	})
	if err != nil {
		return err
	}
	if err := r.dataProp(proto, "constructor", value.NewFunction(ctor)); err != nil {
		return err
	}
	return r.method(ctorObj, "fromCharCode", func(this value.Value, args []value.Value) (value.Value, error) {
		var sb strings.Builder
		for _, a := range args {
			sb.WriteRune(rune(int(a.ToNumber())))
		}
		return r.string(sb.String()), nil
	})
}

func (r *Realm) stringCharAt(this value.Value, args []value.Value) (value.Value, error) {
	s := []rune(r.toStringValue(this))
	i := int(arg(args, 0).ToNumber())
	if i < 0 || i >= len(s) {
		return r.string(""), nil
	}
	return r.string(string(s[i])), nil
}

func (r *Realm) stringIndexOf(this value.Value, args []value.Value) (value.Value, error) {
	s := r.toStringValue(this)
	sub := r.toStringValue(arg(args, 0))
	return value.NewInt32(int32(strings.Index(s, sub))), nil
}

func (r *Realm) stringIncludes(this value.Value, args []value.Value) (value.Value, error) {
	s := r.toStringValue(this)
	sub := r.toStringValue(arg(args, 0))
	return value.NewBool(strings.Contains(s, sub)), nil
}

func (r *Realm) stringSlice(this value.Value, args []value.Value) (value.Value, error) {
	s := []rune(r.toStringValue(this))
	start, end := sliceBounds(len(s), arg(args, 0), arg(args, 1))
	return r.string(string(s[start:end])), nil
}

func (r *Realm) stringSplit(this value.Value, args []value.Value) (value.Value, error) {
	s := r.toStringValue(this)
	sepArg := arg(args, 0)
	if sepArg.IsUndefined() {
		return r.newArray([]value.Value{r.string(s)})
	}
	sep := r.toStringValue(sepArg)
	var parts []string
	if sep == "" {
		for _, ch := range s {
			parts = append(parts, string(ch))
		}
	} else {
		parts = strings.Split(s, sep)
	}
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = r.string(p)
	}
	return r.newArray(out)
}

func (r *Realm) stringToUpper(this value.Value, args []value.Value) (value.Value, error) {
	return r.string(strings.ToUpper(r.toStringValue(this))), nil
}

func (r *Realm) stringToLower(this value.Value, args []value.Value) (value.Value, error) {
	return r.string(strings.ToLower(r.toStringValue(this))), nil
}

func (r *Realm) stringTrim(this value.Value, args []value.Value) (value.Value, error) {
	return r.string(strings.TrimSpace(r.toStringValue(this))), nil
}

func (r *Realm) stringPadStart(this value.Value, args []value.Value) (value.Value, error) {
	return r.stringPad(this, args, true)
}

func (r *Realm) stringPadEnd(this value.Value, args []value.Value) (value.Value, error) {
	return r.stringPad(this, args, false)
}

func (r *Realm) stringPad(this value.Value, args []value.Value, start bool) (value.Value, error) {
	s := r.toStringValue(this)
	target := int(arg(args, 0).ToNumber())
	pad := " "
	if p := arg(args, 1); !p.IsUndefined() {
		pad = r.toStringValue(p)
	}
	if pad == "" || len([]rune(s)) >= target {
		return r.string(s), nil
	}
	need := target - len([]rune(s))
	var sb strings.Builder
	for sb.Len() < need {
		sb.WriteString(pad)
	}
	filler := string([]rune(sb.String())[:need])
	if start {
		return r.string(filler + s), nil
	}
	return r.string(s + filler), nil
}

func (r *Realm) stringStartsWith(this value.Value, args []value.Value) (value.Value, error) {
	return value.NewBool(strings.HasPrefix(r.toStringValue(this), r.toStringValue(arg(args, 0)))), nil
}

func (r *Realm) stringEndsWith(this value.Value, args []value.Value) (value.Value, error) {
	return value.NewBool(strings.HasSuffix(r.toStringValue(this), r.toStringValue(arg(args, 0)))), nil
}

func (r *Realm) stringReplace(this value.Value, args []value.Value) (value.Value, error) {
	s := r.toStringValue(this)
	search := r.toStringValue(arg(args, 0))
	replacement := r.toStringValue(arg(args, 1))
	return r.string(strings.Replace(s, search, replacement, 1)), nil
}

func (r *Realm) stringRepeat(this value.Value, args []value.Value) (value.Value, error) {
	s := r.toStringValue(this)
	n := int(arg(args, 0).ToNumber())
	if n < 0 {
		return value.Undef, value.Throw(r.newError("RangeError", "Invalid count value"))
	}
	return r.string(strings.Repeat(s, n)), nil
}

func (r *Realm) stringConcat(this value.Value, args []value.Value) (value.Value, error) {
	var sb strings.Builder
	sb.WriteString(r.toStringValue(this))
	for _, a := range args {
		sb.WriteString(r.toStringValue(a))
	}
	return r.string(sb.String()), nil
}
