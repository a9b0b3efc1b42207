package intrinsics

import "github.com/otterjs/otter/internal/value"

// initArray builds Array.prototype's mutator/iterator surface plus the
// Array constructor and its Array.isArray/Array.from/Array.of statics.
// "length" is installed once, as an accessor on the shared prototype
// reading/resizing whichever instance it's invoked against, rather than
// a per-instance data property kept in sync by every mutator — the
// dense element slice is already the source of truth (spec §3.3's "the
// two views must agree"), so length just reports len(elements).
func (r *Realm) initArray() error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}
	proto.MarkArray()
	r.ArrayProto = proto

	lengthGetter, err := value.NewNativeClosure(r.c, "get length", func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := this.AsObject()
		if !ok {
			return value.NewInt32(0), nil
		}
		return value.NewInt32(int32(len(o.Elements()))), nil
	})
	if err != nil {
		return err
	}
	lengthSetter, err := value.NewNativeClosure(r.c, "set length", func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := this.AsObject()
		if !ok {
			return value.Undef, nil
		}
		n := int(arg(args, 0).ToNumber())
		elems := o.Elements()
		if n <= len(elems) {
			o.SetElements(elems[:n])
		} else {
			grown := append(append([]value.Value(nil), elems...), make([]value.Value, n-len(elems))...)
			for i := len(elems); i < n; i++ {
				grown[i] = value.Undef
			}
			o.SetElements(grown)
		}
		return value.Undef, nil
	})
	if err != nil {
		return err
	}
	if err := proto.DefineOwnProperty(r.c, value.StringKey("length"), value.NewAccessorProperty(lengthGetter, lengthSetter, value.Attrs{Configurable: false})); err != nil {
		return err
	}

	methods := map[string]value.NativeFunc{
		"push":     r.arrayPush,
		"pop":      r.arrayPop,
		"shift":    r.arrayShift,
		"unshift":  r.arrayUnshift,
		"slice":    r.arraySlice,
		"indexOf":  r.arrayIndexOf,
		"includes": r.arrayIncludes,
		"join":     r.arrayJoin,
		"concat":   r.arrayConcat,
		"forEach":  r.arrayForEach,
		"map":      r.arrayMap,
		"filter":   r.arrayFilter,
		"find":     r.arrayFind,
		"some":     r.arraySome,
		"every":    r.arrayEvery,
		"reduce":   r.arrayReduce,
		"reverse":  r.arrayReverse,
	}
	for name, fn := range methods {
		if err := r.method(proto, name, fn); err != nil {
			return err
		}
	}

	ctor, ctorObj, err := r.constructor("Array", proto, r.arrayConstruct)
	if err != nil {
		return err
	}
	if err := r.dataProp(proto, "constructor", value.NewFunction(ctor)); err != nil {
		return err
	}
	if err := r.method(ctorObj, "isArray", func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := arg(args, 0).AsObject()
		return value.NewBool(ok && o.IsArray()), nil
	}); err != nil {
		return err
	}
	if err := r.method(ctorObj, "of", func(this value.Value, args []value.Value) (value.Value, error) {
		return r.newArray(append([]value.Value(nil), args...))
	}); err != nil {
		return err
	}
	if err := r.method(ctorObj, "from", r.arrayFrom); err != nil {
		return err
	}
	return nil
}

func (r *Realm) arrayConstruct(this value.Value, args []value.Value) (value.Value, error) {
	if len(args) == 1 && (args[0].Kind() == value.Number || args[0].Kind() == value.Int32) {
		n := int(args[0].ToNumber())
		elems := make([]value.Value, n)
		for i := range elems {
			elems[i] = value.Undef
		}
		return r.newArray(elems)
	}
	return r.newArray(append([]value.Value(nil), args...))
}

func (r *Realm) arrayFrom(this value.Value, args []value.Value) (value.Value, error) {
	src := arg(args, 0)
	o, ok := src.AsObject()
	if !ok {
		return r.newArray(nil)
	}
	elems := elementsOf(o)
	if mapFn, ok := arg(args, 1).AsFunction(); ok {
		out := make([]value.Value, len(elems))
		for i, v := range elems {
			mapped, err := r.interp.Call(mapFn, value.Undef, []value.Value{v, value.NewInt32(int32(i))}, false)
			if err != nil {
				return value.Undef, err
			}
			out[i] = mapped
		}
		elems = out
	}
	return r.newArray(elems)
}

func (r *Realm) arrayPush(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	if !ok {
		return value.NewInt32(0), nil
	}
	o.SetElements(append(append([]value.Value(nil), o.Elements()...), args...))
	return value.NewInt32(int32(len(o.Elements()))), nil
}

func (r *Realm) arrayPop(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	if !ok {
		return value.Undef, nil
	}
	elems := o.Elements()
	if len(elems) == 0 {
		return value.Undef, nil
	}
	last := elems[len(elems)-1]
	o.SetElements(elems[:len(elems)-1])
	return last, nil
}

func (r *Realm) arrayShift(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	if !ok {
		return value.Undef, nil
	}
	elems := o.Elements()
	if len(elems) == 0 {
		return value.Undef, nil
	}
	first := elems[0]
	o.SetElements(append([]value.Value(nil), elems[1:]...))
	return first, nil
}

func (r *Realm) arrayUnshift(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	if !ok {
		return value.NewInt32(0), nil
	}
	o.SetElements(append(append([]value.Value(nil), args...), o.Elements()...))
	return value.NewInt32(int32(len(o.Elements()))), nil
}

func (r *Realm) arraySlice(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	if !ok {
		return r.newArray(nil)
	}
	elems := o.Elements()
	start, end := sliceBounds(len(elems), arg(args, 0), arg(args, 1))
	return r.newArray(append([]value.Value(nil), elems[start:end]...))
}

func sliceBounds(n int, startArg, endArg value.Value) (int, int) {
	start, end := 0, n
	if !startArg.IsUndefined() {
		start = clampIndex(int(startArg.ToNumber()), n)
	}
	if !endArg.IsUndefined() {
		end = clampIndex(int(endArg.ToNumber()), n)
	}
	if end < start {
		end = start
	}
	return start, end
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func (r *Realm) arrayIndexOf(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	if !ok {
		return value.NewInt32(-1), nil
	}
	target := arg(args, 0)
	for i, v := range o.Elements() {
		if v.StrictEquals(target) {
			return value.NewInt32(int32(i)), nil
		}
	}
	return value.NewInt32(-1), nil
}

func (r *Realm) arrayIncludes(this value.Value, args []value.Value) (value.Value, error) {
	v, err := r.arrayIndexOf(this, args)
	if err != nil {
		return value.Undef, err
	}
	return value.NewBool(v.ToNumber() >= 0), nil
}

func (r *Realm) arrayJoin(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	if !ok {
		return r.string(""), nil
	}
	sep := ","
	if s := arg(args, 0); !s.IsUndefined() {
		sep = r.toStringValue(s)
	}
	var out string
	for i, v := range o.Elements() {
		if i > 0 {
			out += sep
		}
		if !v.IsNullish() {
			out += r.toStringValue(v)
		}
	}
	return r.string(out), nil
}

func (r *Realm) arrayConcat(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	var out []value.Value
	if ok {
		out = append(out, o.Elements()...)
	}
	for _, a := range args {
		if ao, ok := a.AsObject(); ok && ao.IsArray() {
			out = append(out, ao.Elements()...)
		} else {
			out = append(out, a)
		}
	}
	return r.newArray(out)
}

func (r *Realm) arrayReverse(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	if !ok {
		return this, nil
	}
	elems := append([]value.Value(nil), o.Elements()...)
	for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
		elems[i], elems[j] = elems[j], elems[i]
	}
	o.SetElements(elems)
	return this, nil
}

func (r *Realm) arrayForEach(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	fn, fnOk := arg(args, 0).AsFunction()
	if !ok || !fnOk {
		return value.Undef, nil
	}
	for i, v := range o.Elements() {
		if _, err := r.interp.Call(fn, arg(args, 1), []value.Value{v, value.NewInt32(int32(i)), this}, false); err != nil {
			return value.Undef, err
		}
	}
	return value.Undef, nil
}

func (r *Realm) arrayMap(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	fn, fnOk := arg(args, 0).AsFunction()
	if !ok || !fnOk {
		return r.newArray(nil)
	}
	elems := o.Elements()
	out := make([]value.Value, len(elems))
	for i, v := range elems {
		mapped, err := r.interp.Call(fn, arg(args, 1), []value.Value{v, value.NewInt32(int32(i)), this}, false)
		if err != nil {
			return value.Undef, err
		}
		out[i] = mapped
	}
	return r.newArray(out)
}

func (r *Realm) arrayFilter(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	fn, fnOk := arg(args, 0).AsFunction()
	if !ok || !fnOk {
		return r.newArray(nil)
	}
	var out []value.Value
	for i, v := range o.Elements() {
		keep, err := r.interp.Call(fn, arg(args, 1), []value.Value{v, value.NewInt32(int32(i)), this}, false)
		if err != nil {
			return value.Undef, err
		}
		if keep.ToBool() {
			out = append(out, v)
		}
	}
	return r.newArray(out)
}

func (r *Realm) arrayFind(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	fn, fnOk := arg(args, 0).AsFunction()
	if !ok || !fnOk {
		return value.Undef, nil
	}
	for i, v := range o.Elements() {
		found, err := r.interp.Call(fn, arg(args, 1), []value.Value{v, value.NewInt32(int32(i)), this}, false)
		if err != nil {
			return value.Undef, err
		}
		if found.ToBool() {
			return v, nil
		}
	}
	return value.Undef, nil
}

func (r *Realm) arraySome(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	fn, fnOk := arg(args, 0).AsFunction()
	if !ok || !fnOk {
		return value.False, nil
	}
	for i, v := range o.Elements() {
		res, err := r.interp.Call(fn, arg(args, 1), []value.Value{v, value.NewInt32(int32(i)), this}, false)
		if err != nil {
			return value.Undef, err
		}
		if res.ToBool() {
			return value.True, nil
		}
	}
	return value.False, nil
}

func (r *Realm) arrayEvery(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	fn, fnOk := arg(args, 0).AsFunction()
	if !ok || !fnOk {
		return value.True, nil
	}
	for i, v := range o.Elements() {
		res, err := r.interp.Call(fn, arg(args, 1), []value.Value{v, value.NewInt32(int32(i)), this}, false)
		if err != nil {
			return value.Undef, err
		}
		if !res.ToBool() {
			return value.False, nil
		}
	}
	return value.True, nil
}

func (r *Realm) arrayReduce(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	fn, fnOk := arg(args, 0).AsFunction()
	if !ok || !fnOk {
		return value.Undef, value.Throw(r.typeError("reduce callback is not a function"))
	}
	elems := o.Elements()
	start := 0
	var acc value.Value
	if len(args) > 1 {
		acc = args[1]
	} else {
		if len(elems) == 0 {
			return value.Undef, value.Throw(r.typeError("Reduce of empty array with no initial value"))
		}
		acc = elems[0]
		start = 1
	}
	for i := start; i < len(elems); i++ {
		next, err := r.interp.Call(fn, value.Undef, []value.Value{acc, elems[i], value.NewInt32(int32(i)), this}, false)
		if err != nil {
			return value.Undef, err
		}
		acc = next
	}
	return acc, nil
}
