package intrinsics

import "github.com/otterjs/otter/internal/value"

// initIterator builds the shared "array-like iterator" prototype
// (grounded on the spec's iteration protocol in the GLOSSARY: an
// iterator is any object with a callable "next" returning {value, done})
// and installs Symbol.iterator on Array/String/Map/Set so `for...of`
// (which lowers to GetIterator/IteratorNext, spec §4.4) works over all
// four without the interpreter needing special cases for any of them.
func (r *Realm) initIterator() error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}
	r.IteratorProto = proto

	if err := r.method(proto, "next", r.sequenceIteratorNext); err != nil {
		return err
	}
	selfIterFn, err := value.NewNativeClosure(r.c, "[Symbol.iterator]", func(this value.Value, args []value.Value) (value.Value, error) {
		return this, nil
	})
	if err != nil {
		return err
	}
	if err := proto.DefineOwnProperty(r.c, value.SymbolKey(r.SymbolIterator), value.NewDataProperty(value.NewFunction(selfIterFn), value.MethodAttrs())); err != nil {
		return err
	}

	if err := r.installSequenceIterator(r.ArrayProto, func(this value.Value) []value.Value {
		if o, ok := this.AsObject(); ok {
			return elementsOf(o)
		}
		return nil
	}); err != nil {
		return err
	}
	if err := r.installSequenceIterator(r.StringProto, func(this value.Value) []value.Value {
		s := []rune(r.toStringValue(this))
		out := make([]value.Value, len(s))
		for i, ch := range s {
			out[i] = r.string(string(ch))
		}
		return out
	}); err != nil {
		return err
	}
	if err := r.installSequenceIterator(r.SetProto, func(this value.Value) []value.Value {
		md, ok := r.mapDataOf(this)
		if !ok {
			return nil
		}
		out := make([]value.Value, len(md.Entries()))
		for i, e := range md.Entries() {
			out[i] = e.Value
		}
		return out
	}); err != nil {
		return err
	}
	if err := r.installSequenceIterator(r.MapProto, func(this value.Value) []value.Value {
		md, ok := r.mapDataOf(this)
		if !ok {
			return nil
		}
		out := make([]value.Value, len(md.Entries()))
		for i, e := range md.Entries() {
			pair, err := r.newArray([]value.Value{e.Key, e.Value})
			if err != nil {
				continue
			}
			out[i] = pair
		}
		return out
	}); err != nil {
		return err
	}
	return nil
}

// installSequenceIterator attaches a Symbol.iterator method to proto that
// snapshots elements(this) at call time and returns a fresh iterator
// object walking that snapshot (spec's iterators observe a point-in-time
// view unless the source explicitly documents otherwise, which none of
// Array/String/Map/Set do for a plain for-of).
func (r *Realm) installSequenceIterator(proto *value.JsObject, elements func(this value.Value) []value.Value) error {
	fn, err := value.NewNativeClosure(r.c, "[Symbol.iterator]", func(this value.Value, args []value.Value) (value.Value, error) {
		iter, err := r.newObject(r.IteratorProto)
		if err != nil {
			return value.Undef, err
		}
		iter.SetInternalSlot("seq", elements(this))
		iter.SetInternalSlot("pos", 0)
		return value.NewObject(iter), nil
	})
	if err != nil {
		return err
	}
	return proto.DefineOwnProperty(r.c, value.SymbolKey(r.SymbolIterator), value.NewDataProperty(value.NewFunction(fn), value.MethodAttrs()))
}

func (r *Realm) sequenceIteratorNext(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	result, err := r.newObject(r.ObjectProto)
	if err != nil {
		return value.Undef, err
	}
	if !ok {
		_ = result.DefineOwnProperty(r.c, value.StringKey("done"), value.NewDataProperty(value.True, value.ArrayElementAttrs()))
		_ = result.DefineOwnProperty(r.c, value.StringKey("value"), value.NewDataProperty(value.Undef, value.ArrayElementAttrs()))
		return value.NewObject(result), nil
	}
	seqSlot, _ := o.InternalSlot("seq")
	posSlot, _ := o.InternalSlot("pos")
	seq, _ := seqSlot.([]value.Value)
	pos, _ := posSlot.(int)

	done := pos >= len(seq)
	val := value.Undef
	if !done {
		val = seq[pos]
		o.SetInternalSlot("pos", pos+1)
	}
	if err := result.DefineOwnProperty(r.c, value.StringKey("done"), value.NewDataProperty(value.NewBool(done), value.ArrayElementAttrs())); err != nil {
		return value.Undef, err
	}
	if err := result.DefineOwnProperty(r.c, value.StringKey("value"), value.NewDataProperty(val, value.ArrayElementAttrs())); err != nil {
		return value.Undef, err
	}
	return value.NewObject(result), nil
}
