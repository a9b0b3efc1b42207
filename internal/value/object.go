package value

import "github.com/otterjs/otter/internal/gc"

// JsObject is the engine's single heap object type: it backs plain
// objects, arrays, functions, proxies, and typed arrays (spec §3.2). The
// distinction between those is carried in flags and internal slots rather
// than separate Go types, mirroring the spec's single-JsObject data
// model.
type JsObject struct {
	gc.Header

	shape       *Shape
	descriptors []PropertyDescriptor // parallel to shape.Keys()

	elements []Value // array-indexed storage; elements[i] is index key i

	isArray      bool
	isCallable   bool
	isExtensible bool
	isProxy      bool

	internalSlots map[string]any

	// deleted tombstones named keys removed by DeleteOwnProperty. Shapes
	// have no removal path (spec §3.2's transition cache assumes
	// monotonic growth), so a delete can't roll the object back to a
	// predecessor shape; this set is consulted by GetOwnProperty/OwnKeys
	// so a deleted key stays invisible even though the shape itself still
	// remembers its offset. Re-adding the same key via DefineOwnProperty
	// clears the tombstone and reuses the shape's existing offset.
	deleted map[PropertyKey]struct{}
}

// NewJsObject allocates a new object with the given starting shape
// (typically a realm's shared empty shape for some prototype).
func NewJsObject(c *gc.Collector, shape *Shape) (*JsObject, error) {
	o := &JsObject{shape: shape, isExtensible: true}
	if err := c.Track(o, 0); err != nil {
		return nil, err
	}
	return o, nil
}

// Trace implements gc.Traceable.
func (o *JsObject) Trace(visit func(gc.Traceable)) {
	if o.shape != nil {
		visit(o.shape)
	}
	for _, d := range o.descriptors {
		switch d.kind {
		case DataDescriptor:
			d.value.traceRef(visit)
		case AccessorDescriptor:
			if d.getter != nil {
				visit(d.getter)
			}
			if d.setter != nil {
				visit(d.setter)
			}
		}
	}
	for _, v := range o.elements {
		v.traceRef(visit)
	}
	for _, slot := range o.internalSlots {
		if t, ok := slot.(gc.Traceable); ok {
			visit(t)
		}
	}
}

// Elements returns the object's dense array-indexed storage directly,
// index order. Used by intrinsics (Array.prototype iteration, spread,
// Function.prototype.apply) that need every element without going
// through a PropertyKey per slot. Callers must not mutate the returned
// slice.
func (o *JsObject) Elements() []Value { return o.elements }

// SetElements replaces the object's dense array-indexed storage wholesale
// (Array.prototype mutators: push, pop, splice, sort) and keeps isArray
// set so the replaced storage still satisfies the array/property-view
// invariant GetOwnProperty/OwnKeys rely on.
func (o *JsObject) SetElements(elems []Value) { o.elements = elems }

// Proto returns the object's prototype value.
func (o *JsObject) Proto() Value { return o.shape.Proto() }

// Shape returns the object's current hidden class. Exposed so the
// interpreter's inline caches can compare it by identity (spec §4.6).
func (o *JsObject) Shape() *Shape { return o.shape }

// IsArray, IsCallable, IsExtensible, IsProxy report the object's flags
// (spec §3.2).
func (o *JsObject) IsArray() bool      { return o.isArray }
func (o *JsObject) IsCallable() bool   { return o.isCallable }
func (o *JsObject) IsExtensible() bool { return o.isExtensible }
func (o *JsObject) IsProxy() bool      { return o.isProxy }

// MarkArray, MarkCallable, and SetExtensible flip the corresponding flag;
// called once by the constructors/intrinsics that create arrays,
// functions, and proxies.
func (o *JsObject) MarkArray()             { o.isArray = true }
func (o *JsObject) MarkCallable()          { o.isCallable = true }
func (o *JsObject) MarkProxy()             { o.isProxy = true }
func (o *JsObject) SetExtensible(b bool)   { o.isExtensible = b }

// SetInternalSlot stores host-attached state under name (e.g. an
// ArrayBuffer's backing store, Temporal ISO fields, captured Error stack
// frames). Internal slots are never visible to GetOwnProperty.
func (o *JsObject) SetInternalSlot(name string, v any) {
	if o.internalSlots == nil {
		o.internalSlots = make(map[string]any)
	}
	o.internalSlots[name] = v
}

// InternalSlot retrieves a previously set internal slot.
func (o *JsObject) InternalSlot(name string) (any, bool) {
	v, ok := o.internalSlots[name]
	return v, ok
}

// DescriptorAt returns the descriptor stored at a shape offset directly,
// without a key lookup. This is the inline cache's fast path (spec §4.6):
// once a call site has cached (shape, offset) for this object's shape, a
// hit skips GetOwnProperty's map lookup entirely.
func (o *JsObject) DescriptorAt(offset int) PropertyDescriptor { return o.descriptors[offset] }

// SetDescriptorAt overwrites the descriptor at a shape offset directly,
// the inline cache's fast path for property writes.
func (o *JsObject) SetDescriptorAt(offset int, desc PropertyDescriptor) {
	o.descriptors[offset] = desc
}

// GetOwnProperty looks up key on this object only (no prototype walk),
// synthesizing the array-element view for Index keys so it agrees with
// what an equivalent integer-keyed property would report (spec §3.3).
func (o *JsObject) GetOwnProperty(key PropertyKey) (PropertyDescriptor, bool) {
	if key.Kind() == KeyIndex {
		idx := key.IndexValue()
		if int(idx) < len(o.elements) {
			return NewDataProperty(o.elements[idx], ArrayElementAttrs()), true
		}
		return PropertyDescriptor{}, false
	}
	if o.deleted != nil {
		if _, gone := o.deleted[key]; gone {
			return PropertyDescriptor{}, false
		}
	}
	off, ok := o.shape.Offset(key)
	if !ok {
		return PropertyDescriptor{}, false
	}
	return o.descriptors[off], true
}

// DefineOwnProperty installs desc at key, transitioning the object's shape
// if key is new. Index keys grow the dense element array instead of
// touching the shape, per the array/property equivalence invariant.
func (o *JsObject) DefineOwnProperty(c *gc.Collector, key PropertyKey, desc PropertyDescriptor) error {
	if key.Kind() == KeyIndex {
		idx := int(key.IndexValue())
		for len(o.elements) <= idx {
			o.elements = append(o.elements, Undef)
		}
		o.elements[idx] = desc.value
		return nil
	}

	if off, ok := o.shape.Offset(key); ok {
		if o.deleted != nil {
			delete(o.deleted, key)
		}
		o.descriptors[off] = desc
		return nil
	}

	next, err := o.shape.Transition(c, key)
	if err != nil {
		return err
	}
	o.shape = next
	o.descriptors = append(o.descriptors, desc)
	return nil
}

// DeleteOwnProperty removes key, if present and configurable. Reports
// whether a property was actually removed.
//
// Deleting a named property does not roll back to a prior shape (doing so
// would require shape-graph predecessors keyed by removal, which no real
// engine bothers with); the object instead keeps its current shape and
// the descriptor slot, but records key in o.deleted so GetOwnProperty and
// OwnKeys stop reporting it — consistent with how V8 and JavaScriptCore
// degrade a "dictionary mode" object after a delete, without requiring
// Shape itself to support removal.
func (o *JsObject) DeleteOwnProperty(key PropertyKey) bool {
	if key.Kind() == KeyIndex {
		idx := int(key.IndexValue())
		if idx < len(o.elements) {
			o.elements[idx] = Undef
			return true
		}
		return false
	}
	off, ok := o.shape.Offset(key)
	if !ok {
		return false
	}
	if o.deleted != nil {
		if _, gone := o.deleted[key]; gone {
			return false
		}
	}
	if !o.descriptors[off].attrs.Configurable {
		return false
	}
	o.descriptors[off] = PropertyDescriptor{}
	if o.deleted == nil {
		o.deleted = make(map[PropertyKey]struct{})
	}
	o.deleted[key] = struct{}{}
	return true
}

// OwnKeys returns every key this object directly owns, index keys first
// in ascending order followed by named keys in insertion order — the
// enumeration order JS requires. Named keys tombstoned by
// DeleteOwnProperty are skipped even though the shape still carries
// their offset.
func (o *JsObject) OwnKeys() []PropertyKey {
	shapeKeys := o.shape.Keys()
	keys := make([]PropertyKey, 0, len(o.elements)+len(shapeKeys))
	for i := range o.elements {
		keys = append(keys, IndexKey(uint32(i)))
	}
	for _, k := range shapeKeys {
		if o.deleted != nil {
			if _, gone := o.deleted[k]; gone {
				continue
			}
		}
		keys = append(keys, k)
	}
	return keys
}

// Get walks the prototype chain starting at this object, honoring
// accessors via the supplied call function (the interpreter's own Call
// primitive, passed in so this package never needs to know how to invoke
// a Closure). this is the receiver passed to any getter found.
func (o *JsObject) Get(key PropertyKey, this Value, call func(fn *Closure, this Value, args []Value) (Value, error)) (Value, error) {
	cur := o
	for cur != nil {
		if desc, ok := cur.GetOwnProperty(key); ok {
			switch desc.Kind() {
			case DataDescriptor:
				return desc.Value(), nil
			case AccessorDescriptor:
				if desc.Getter() == nil {
					return Undef, nil
				}
				return call(desc.Getter(), this, nil)
			}
		}
		proto, ok := cur.Proto().AsObject()
		if !ok {
			break
		}
		cur = proto
	}
	return Undef, nil
}
