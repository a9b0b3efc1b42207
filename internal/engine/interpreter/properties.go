package interpreter

import (
	"github.com/otterjs/otter/internal/gc"
	"github.com/otterjs/otter/internal/value"
)

// getProp reads key off recv, consulting and updating the call site's
// feedback slot (spec §4.6): a hit resolves the shape to a descriptor
// offset in O(1) via JsObject.DescriptorAt instead of re-walking the
// shape's offset table.
func (i *Interpreter) getProp(f *Frame, recv value.Value, key value.PropertyKey, feedbackIdx uint32) (value.Value, error) {
	o, ok := recv.AsObject()
	if !ok {
		if fn, isFn := recv.AsFunction(); isFn && fn.Props() != nil {
			o = fn.Props()
		} else if recv.IsNullish() {
			return value.Undef, i.throwTypeError(f, "Cannot read properties of "+recv.TypeOf())
		} else {
			return value.Undef, nil
		}
	}

	if off, ok := f.Feedback.LookupProperty(feedbackIdx, o.Shape()); ok {
		desc := o.DescriptorAt(off)
		if desc.Kind() == value.DataDescriptor {
			return desc.Value(), nil
		}
	}

	val, err := o.Get(key, recv, i.callClosure)
	if err != nil {
		return value.Undef, err
	}
	if off, ok := o.Shape().Offset(key); ok {
		f.Feedback.RecordHit(feedbackIdx, o.Shape(), off)
	}
	return val, nil
}

// setProp writes val at key on recv, running the write barrier and
// updating the feedback slot the same way getProp does for reads.
func (i *Interpreter) setProp(f *Frame, recv value.Value, key value.PropertyKey, val value.Value, feedbackIdx uint32) error {
	o, ok := recv.AsObject()
	if !ok {
		if fn, isFn := recv.AsFunction(); isFn && fn.Props() != nil {
			o = fn.Props()
		} else {
			return i.throwTypeError(f, "Cannot set properties of "+recv.TypeOf())
		}
	}

	if off, ok := f.Feedback.LookupProperty(feedbackIdx, o.Shape()); ok {
		if existing := o.DescriptorAt(off); existing.Kind() == value.DataDescriptor {
			o.SetDescriptorAt(off, existing.WithValue(val))
			i.barrier.Record(o, refOf(val))
			return nil
		}
	}

	desc := value.NewDataProperty(val, value.ArrayElementAttrs())
	if existing, ok := o.GetOwnProperty(key); ok {
		desc = value.NewDataProperty(val, existing.Attrs())
	}
	if err := o.DefineOwnProperty(i.collector, key, desc); err != nil {
		return err
	}
	i.barrier.Record(o, refOf(val))
	if off, ok := o.Shape().Offset(key); ok {
		f.Feedback.RecordHit(feedbackIdx, o.Shape(), off)
	}
	return nil
}

// deleteProp implements DeleteProp dst, obj, name.
func (i *Interpreter) deleteProp(recv value.Value, key value.PropertyKey) value.Value {
	o, ok := recv.AsObject()
	if !ok {
		return value.True
	}
	return value.NewBool(o.DeleteOwnProperty(key))
}

// refOf returns v's heap reference for the write barrier, or nil for a
// non-heap Value (the barrier's Record treats a nil written pointer as
// "nothing to re-shade", and gc.ColorOf(nil) safely reports White).
func refOf(v value.Value) gc.Traceable {
	var ref gc.Traceable
	value.TraceValue(v, func(t gc.Traceable) { ref = t })
	return ref
}
