package intrinsics

import (
	"github.com/otterjs/otter/internal/gc"
	"github.com/otterjs/otter/internal/value"
)

// initMapSet builds Map/Set (backed by value.MapData, strict-equality
// scan, spec's insertion-order iteration) and WeakMap/WeakSet (backed by
// gc.EphemeronTable, spec §4.2's ephemeron fixpoint — an entry survives a
// collection only if its key object does).
func (r *Realm) initMapSet() error {
	if err := r.initMap(); err != nil {
		return err
	}
	if err := r.initSet(); err != nil {
		return err
	}
	if err := r.initWeakMap(); err != nil {
		return err
	}
	return r.initWeakSet()
}

func (r *Realm) mapDataOf(this value.Value) (*value.MapData, bool) {
	o, ok := this.AsObject()
	if !ok {
		return nil, false
	}
	slot, ok := o.InternalSlot("mapdata")
	if !ok {
		return nil, false
	}
	md, ok := slot.(*value.MapData)
	return md, ok
}

func (r *Realm) initMap() error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}
	r.MapProto = proto

	if err := r.method(proto, "get", func(this value.Value, args []value.Value) (value.Value, error) {
		md, ok := r.mapDataOf(this)
		if !ok {
			return value.Undef, nil
		}
		v, _ := md.Get(arg(args, 0))
		return v, nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "set", func(this value.Value, args []value.Value) (value.Value, error) {
		md, ok := r.mapDataOf(this)
		if !ok {
			return this, nil
		}
		md.Set(arg(args, 0), arg(args, 1))
		return this, nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "has", func(this value.Value, args []value.Value) (value.Value, error) {
		md, ok := r.mapDataOf(this)
		return value.NewBool(ok && md.Has(arg(args, 0))), nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "delete", func(this value.Value, args []value.Value) (value.Value, error) {
		md, ok := r.mapDataOf(this)
		return value.NewBool(ok && md.Delete(arg(args, 0))), nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "clear", func(this value.Value, args []value.Value) (value.Value, error) {
		if md, ok := r.mapDataOf(this); ok {
			md.Clear()
		}
		return value.Undef, nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "forEach", func(this value.Value, args []value.Value) (value.Value, error) {
		md, ok := r.mapDataOf(this)
		fn, fnOk := arg(args, 0).AsFunction()
		if !ok || !fnOk {
			return value.Undef, nil
		}
		for _, e := range md.Entries() {
			if _, err := r.interp.Call(fn, arg(args, 1), []value.Value{e.Value, e.Key, this}, false); err != nil {
				return value.Undef, err
			}
		}
		return value.Undef, nil
	}); err != nil {
		return err
	}

	sizeGetter, err := value.NewNativeClosure(r.c, "get size", func(this value.Value, args []value.Value) (value.Value, error) {
		md, ok := r.mapDataOf(this)
		if !ok {
			return value.NewInt32(0), nil
		}
		return value.NewInt32(int32(md.Len())), nil
	})
	if err != nil {
		return err
	}
	if err := proto.DefineOwnProperty(r.c, value.StringKey("size"), value.NewAccessorProperty(sizeGetter, nil, value.Attrs{})); err != nil {
		return err
	}

	ctor, _, err := r.constructor("Map", proto, func(this value.Value, args []value.Value) (value.Value, error) {
		self, ok := this.AsObject()
		if !ok {
			obj, err := r.newObject(proto)
			if err != nil {
				return value.Undef, err
			}
			self = obj
		}
		md, err := value.NewMapData(r.c)
		if err != nil {
			return value.Undef, err
		}
		if init, ok := arg(args, 0).AsObject(); ok {
			for _, el := range init.Elements() {
				if pair, ok := el.AsObject(); ok {
					pe := pair.Elements()
					if len(pe) >= 2 {
						md.Set(pe[0], pe[1])
					}
				}
			}
		}
		self.SetInternalSlot("mapdata", md)
		return value.NewObject(self), nil
	})
	if err != nil {
		return err
	}
	return r.dataProp(proto, "constructor", value.NewFunction(ctor))
}

func (r *Realm) initSet() error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}
	r.SetProto = proto

	if err := r.method(proto, "add", func(this value.Value, args []value.Value) (value.Value, error) {
		md, ok := r.mapDataOf(this)
		if !ok {
			return this, nil
		}
		md.Set(arg(args, 0), arg(args, 0))
		return this, nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "has", func(this value.Value, args []value.Value) (value.Value, error) {
		md, ok := r.mapDataOf(this)
		return value.NewBool(ok && md.Has(arg(args, 0))), nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "delete", func(this value.Value, args []value.Value) (value.Value, error) {
		md, ok := r.mapDataOf(this)
		return value.NewBool(ok && md.Delete(arg(args, 0))), nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "clear", func(this value.Value, args []value.Value) (value.Value, error) {
		if md, ok := r.mapDataOf(this); ok {
			md.Clear()
		}
		return value.Undef, nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "forEach", func(this value.Value, args []value.Value) (value.Value, error) {
		md, ok := r.mapDataOf(this)
		fn, fnOk := arg(args, 0).AsFunction()
		if !ok || !fnOk {
			return value.Undef, nil
		}
		for _, e := range md.Entries() {
			if _, err := r.interp.Call(fn, arg(args, 1), []value.Value{e.Value, e.Value, this}, false); err != nil {
				return value.Undef, err
			}
		}
		return value.Undef, nil
	}); err != nil {
		return err
	}

	sizeGetter, err := value.NewNativeClosure(r.c, "get size", func(this value.Value, args []value.Value) (value.Value, error) {
		md, ok := r.mapDataOf(this)
		if !ok {
			return value.NewInt32(0), nil
		}
		return value.NewInt32(int32(md.Len())), nil
	})
	if err != nil {
		return err
	}
	if err := proto.DefineOwnProperty(r.c, value.StringKey("size"), value.NewAccessorProperty(sizeGetter, nil, value.Attrs{})); err != nil {
		return err
	}

	ctor, _, err := r.constructor("Set", proto, func(this value.Value, args []value.Value) (value.Value, error) {
		self, ok := this.AsObject()
		if !ok {
			obj, err := r.newObject(proto)
			if err != nil {
				return value.Undef, err
			}
			self = obj
		}
		md, err := value.NewMapData(r.c)
		if err != nil {
			return value.Undef, err
		}
		if init, ok := arg(args, 0).AsObject(); ok {
			for _, el := range init.Elements() {
				md.Set(el, el)
			}
		}
		self.SetInternalSlot("mapdata", md)
		return value.NewObject(self), nil
	})
	if err != nil {
		return err
	}
	return r.dataProp(proto, "constructor", value.NewFunction(ctor))
}

// weakTableOf retrieves the ephemeron table backing a WeakMap/WeakSet
// instance.
func weakTableOf(this value.Value) (*gc.EphemeronTable[value.Value], bool) {
	o, ok := this.AsObject()
	if !ok {
		return nil, false
	}
	slot, ok := o.InternalSlot("weakdata")
	if !ok {
		return nil, false
	}
	t, ok := slot.(*gc.EphemeronTable[value.Value])
	return t, ok
}

func (r *Realm) initWeakMap() error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}
	r.WeakMapProto = proto

	if err := r.method(proto, "get", func(this value.Value, args []value.Value) (value.Value, error) {
		t, ok := weakTableOf(this)
		key, keyOk := arg(args, 0).AsObject()
		if !ok || !keyOk {
			return value.Undef, nil
		}
		v, _ := t.Get(key)
		return v, nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "set", func(this value.Value, args []value.Value) (value.Value, error) {
		t, ok := weakTableOf(this)
		key, keyOk := arg(args, 0).AsObject()
		if !ok || !keyOk {
			return value.Undef, value.Throw(r.typeError("Invalid value used as weak map key"))
		}
		t.Set(key, arg(args, 1))
		return this, nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "has", func(this value.Value, args []value.Value) (value.Value, error) {
		t, ok := weakTableOf(this)
		key, keyOk := arg(args, 0).AsObject()
		if !ok || !keyOk {
			return value.False, nil
		}
		_, has := t.Get(key)
		return value.NewBool(has), nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "delete", func(this value.Value, args []value.Value) (value.Value, error) {
		t, ok := weakTableOf(this)
		key, keyOk := arg(args, 0).AsObject()
		if !ok || !keyOk {
			return value.False, nil
		}
		_, had := t.Get(key)
		t.Delete(key)
		return value.NewBool(had), nil
	}); err != nil {
		return err
	}

	ctor, _, err := r.constructor("WeakMap", proto, func(this value.Value, args []value.Value) (value.Value, error) {
		self, ok := this.AsObject()
		if !ok {
			obj, err := r.newObject(proto)
			if err != nil {
				return value.Undef, err
			}
			self = obj
		}
		t := gc.NewEphemeronTable[value.Value](value.TraceValue)
		gc.RegisterEphemeronTable(r.c, t)
		self.SetInternalSlot("weakdata", t)
		return value.NewObject(self), nil
	})
	if err != nil {
		return err
	}
	return r.dataProp(proto, "constructor", value.NewFunction(ctor))
}

func (r *Realm) initWeakSet() error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}
	r.WeakSetProto = proto

	if err := r.method(proto, "add", func(this value.Value, args []value.Value) (value.Value, error) {
		t, ok := weakTableOf(this)
		key, keyOk := arg(args, 0).AsObject()
		if !ok || !keyOk {
			return value.Undef, value.Throw(r.typeError("Invalid value used in weak set"))
		}
		t.Set(key, value.Undef)
		return this, nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "has", func(this value.Value, args []value.Value) (value.Value, error) {
		t, ok := weakTableOf(this)
		key, keyOk := arg(args, 0).AsObject()
		if !ok || !keyOk {
			return value.False, nil
		}
		_, has := t.Get(key)
		return value.NewBool(has), nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "delete", func(this value.Value, args []value.Value) (value.Value, error) {
		t, ok := weakTableOf(this)
		key, keyOk := arg(args, 0).AsObject()
		if !ok || !keyOk {
			return value.False, nil
		}
		_, had := t.Get(key)
		t.Delete(key)
		return value.NewBool(had), nil
	}); err != nil {
		return err
	}

	ctor, _, err := r.constructor("WeakSet", proto, func(this value.Value, args []value.Value) (value.Value, error) {
		self, ok := this.AsObject()
		if !ok {
			obj, err := r.newObject(proto)
			if err != nil {
				return value.Undef, err
			}
			self = obj
		}
		t := gc.NewEphemeronTable[value.Value](value.TraceValue)
		gc.RegisterEphemeronTable(r.c, t)
		self.SetInternalSlot("weakdata", t)
		return value.NewObject(self), nil
	})
	if err != nil {
		return err
	}
	return r.dataProp(proto, "constructor", value.NewFunction(ctor))
}
