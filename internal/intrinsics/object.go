package intrinsics

import "github.com/otterjs/otter/internal/value"

// initObject builds Object.prototype and the Object constructor/statics
// (grounded on intrinsics_impl's init_object_prototype pattern of
// installing builtin_method entries directly onto a shared prototype
// object reachable through every other prototype's chain).
func (r *Realm) initObject() error {
	proto, err := r.newObject(nil)
	if err != nil {
		return err
	}
	r.ObjectProto = proto

	if err := r.method(proto, "hasOwnProperty", r.objectHasOwnProperty); err != nil {
		return err
	}
	if err := r.method(proto, "isPrototypeOf", r.objectIsPrototypeOf); err != nil {
		return err
	}
	if err := r.method(proto, "toString", r.objectToString); err != nil {
		return err
	}
	if err := r.method(proto, "valueOf", func(this value.Value, args []value.Value) (value.Value, error) {
		return this, nil
	}); err != nil {
		return err
	}

	ctor, ctorObj, err := r.constructor("Object", proto, r.objectConstruct)
	if err != nil {
		return err
	}
	if err := r.dataProp(proto, "constructor", value.NewFunction(ctor)); err != nil {
		return err
	}

	if err := r.method(ctorObj, "keys", r.objectKeys); err != nil {
		return err
	}
	if err := r.method(ctorObj, "values", r.objectValues); err != nil {
		return err
	}
	if err := r.method(ctorObj, "entries", r.objectEntries); err != nil {
		return err
	}
	if err := r.method(ctorObj, "assign", r.objectAssign); err != nil {
		return err
	}
	if err := r.method(ctorObj, "freeze", r.objectFreeze); err != nil {
		return err
	}
	if err := r.method(ctorObj, "getPrototypeOf", r.objectGetPrototypeOf); err != nil {
		return err
	}
	if err := r.method(ctorObj, "create", r.objectCreate); err != nil {
		return err
	}

	return nil
}

func (r *Realm) objectConstruct(this value.Value, args []value.Value) (value.Value, error) {
	if o, ok := arg(args, 0).AsObject(); ok {
		return value.NewObject(o), nil
	}
	return this, nil
}

func (r *Realm) objectHasOwnProperty(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	if !ok {
		return value.False, nil
	}
	key, ok := r.toPropertyKey(arg(args, 0))
	if !ok {
		return value.False, nil
	}
	_, has := o.GetOwnProperty(key)
	return value.NewBool(has), nil
}

func (r *Realm) objectIsPrototypeOf(this value.Value, args []value.Value) (value.Value, error) {
	target, ok := arg(args, 0).AsObject()
	if !ok {
		return value.False, nil
	}
	self, ok := this.AsObject()
	if !ok {
		return value.False, nil
	}
	cur, ok := target.Proto().AsObject()
	for ok {
		if cur == self {
			return value.True, nil
		}
		cur, ok = cur.Proto().AsObject()
	}
	return value.False, nil
}

func (r *Realm) objectToString(this value.Value, args []value.Value) (value.Value, error) {
	tag := "Object"
	switch {
	case this.IsUndefined():
		tag = "Undefined"
	case this.IsNull():
		tag = "Null"
	default:
		if o, ok := this.AsObject(); ok && o.IsArray() {
			tag = "Array"
		}
	}
	return r.string("[object " + tag + "]"), nil
}

func (r *Realm) objectGetPrototypeOf(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := arg(args, 0).AsObject()
	if !ok {
		return value.Nul, nil
	}
	proto := o.Proto()
	if proto.IsUndefined() {
		return value.Nul, nil
	}
	return proto, nil
}

func (r *Realm) objectCreate(this value.Value, args []value.Value) (value.Value, error) {
	var proto *value.JsObject
	if o, ok := arg(args, 0).AsObject(); ok {
		proto = o
	}
	obj, err := r.newObject(proto)
	if err != nil {
		return value.Undef, err
	}
	return value.NewObject(obj), nil
}

func (r *Realm) objectKeys(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := arg(args, 0).AsObject()
	if !ok {
		return r.newArray(nil)
	}
	var out []value.Value
	for _, k := range o.OwnKeys() {
		if k.Kind() == value.KeySymbol {
			continue
		}
		out = append(out, r.keyToValue(k))
	}
	return r.newArray(out)
}

func (r *Realm) objectValues(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := arg(args, 0).AsObject()
	if !ok {
		return r.newArray(nil)
	}
	var out []value.Value
	for _, k := range o.OwnKeys() {
		if k.Kind() == value.KeySymbol {
			continue
		}
		desc, _ := o.GetOwnProperty(k)
		out = append(out, desc.Value())
	}
	return r.newArray(out)
}

func (r *Realm) objectEntries(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := arg(args, 0).AsObject()
	if !ok {
		return r.newArray(nil)
	}
	var out []value.Value
	for _, k := range o.OwnKeys() {
		if k.Kind() == value.KeySymbol {
			continue
		}
		desc, _ := o.GetOwnProperty(k)
		pair, err := r.newArray([]value.Value{r.keyToValue(k), desc.Value()})
		if err != nil {
			return value.Undef, err
		}
		out = append(out, pair)
	}
	return r.newArray(out)
}

func (r *Realm) objectAssign(this value.Value, args []value.Value) (value.Value, error) {
	target, ok := arg(args, 0).AsObject()
	if !ok {
		return arg(args, 0), nil
	}
	rest := args
	if len(rest) > 0 {
		rest = rest[1:]
	} else {
		rest = nil
	}
	for _, src := range rest {
		so, ok := src.AsObject()
		if !ok {
			continue
		}
		for _, k := range so.OwnKeys() {
			desc, _ := so.GetOwnProperty(k)
			if !desc.Attrs().Enumerable && k.Kind() != value.KeyIndex {
				continue
			}
			if err := target.DefineOwnProperty(r.c, k, value.NewDataProperty(desc.Value(), value.ArrayElementAttrs())); err != nil {
				return value.Undef, err
			}
		}
	}
	return value.NewObject(target), nil
}

func (r *Realm) objectFreeze(this value.Value, args []value.Value) (value.Value, error) {
	if o, ok := arg(args, 0).AsObject(); ok {
		o.SetExtensible(false)
	}
	return arg(args, 0), nil
}

// toPropertyKey converts a call argument into a PropertyKey: strings
// become named keys and symbols symbol keys. Any other value is not
// coerced; it reports ok == false.
func (r *Realm) toPropertyKey(v value.Value) (value.PropertyKey, bool) {
	if s, ok := v.AsSymbol(); ok {
		return value.SymbolKey(s), true
	}
	if s, ok := v.AsString(); ok {
		return value.StringKey(s.String()), true
	}
	return value.PropertyKey{}, false
}

func (r *Realm) keyToValue(k value.PropertyKey) value.Value {
	switch k.Kind() {
	case value.KeySymbol:
		return value.NewSymbol(k.SymbolValue())
	case value.KeyIndex:
		return r.string(itoa(int(k.IndexValue())))
	default:
		return r.string(k.StringValue())
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
