package value

import "github.com/otterjs/otter/internal/gc"

// Shape is an object's hidden class: the implicit type determined by its
// prototype and the ordered set of its named (String/Symbol) property
// keys (spec §3.2 "Shapes (hidden classes)"). Two objects share a shape
// iff they share both. Shapes are GC-managed so the IC's cached shape
// pointers stay valid identity checks across collections.
type Shape struct {
	gc.Header
	proto       Value
	keys        []PropertyKey   // property insertion order; index is the slot offset
	offsets     map[PropertyKey]int
	transitions map[PropertyKey]*Shape // add-property cache, keyed by the added key
}

// RootShape returns the empty shape for objects with no named properties
// yet, parented at proto.
func RootShape(c *gc.Collector, proto Value) (*Shape, error) {
	s := &Shape{proto: proto, offsets: make(map[PropertyKey]int)}
	if err := c.Track(s, 0); err != nil {
		return nil, err
	}
	return s, nil
}

// Trace implements gc.Traceable. Only the prototype is a strong GC edge;
// the transition cache is intentionally not traced; it exists purely to
// dedupe "same sequence of additions lands on the same shape" (spec
// §3.2) and must not keep an otherwise-unreferenced child shape alive
// forever.
func (s *Shape) Trace(visit func(gc.Traceable)) {
	s.proto.traceRef(visit)
}

// Proto returns this shape's prototype value.
func (s *Shape) Proto() Value { return s.proto }

// Offset reports the property-table slot for key, if this shape has it.
func (s *Shape) Offset(key PropertyKey) (int, bool) {
	off, ok := s.offsets[key]
	return off, ok
}

// Keys returns the shape's property keys in insertion order. Callers must
// not mutate the returned slice.
func (s *Shape) Keys() []PropertyKey { return s.keys }

// Len reports how many named properties this shape describes.
func (s *Shape) Len() int { return len(s.keys) }

// Transition returns the shape reached by adding key to s, creating and
// caching a new Shape the first time this exact (s, key) pair is seen
// (spec §3.2: "transitions are cached so the same sequence of additions
// lands on the same shape").
func (s *Shape) Transition(c *gc.Collector, key PropertyKey) (*Shape, error) {
	if _, exists := s.offsets[key]; exists {
		return s, nil
	}
	if s.transitions == nil {
		s.transitions = make(map[PropertyKey]*Shape)
	}
	if next, ok := s.transitions[key]; ok {
		return next, nil
	}

	next := &Shape{
		proto:   s.proto,
		keys:    append(append([]PropertyKey(nil), s.keys...), key),
		offsets: make(map[PropertyKey]int, len(s.offsets)+1),
	}
	for k, off := range s.offsets {
		next.offsets[k] = off
	}
	next.offsets[key] = len(s.keys)

	if err := c.Track(next, 0); err != nil {
		return nil, err
	}
	s.transitions[key] = next
	return next, nil
}
