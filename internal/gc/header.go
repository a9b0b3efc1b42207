// Package gc implements the tracing collector described in spec §4.2: a
// precise, stop-the-world tri-color mark-sweep collector with a write
// barrier, a remembered set for an optional young-generation mode, and
// ephemeron tables for WeakMap/WeakSet semantics.
//
// The collector is type-erased: it knows nothing about JS values, shapes,
// or closures. Every heap type in package value embeds a Header and
// implements Traceable; the collector only ever calls back through that
// interface. This keeps the dependency arrow one-directional (value
// imports gc, never the reverse), matching how the engine's object model
// (L1) sits above memory & GC (L0).
package gc

// Color is the tri-color marking state of a heap object.
type Color uint8

const (
	// White objects have not been visited this cycle. Anything still
	// White at the end of mark is garbage.
	White Color = iota
	// Gray objects are reachable but their children haven't been scanned.
	Gray
	// Black objects have been fully scanned.
	Black
)

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Gray:
		return "gray"
	case Black:
		return "black"
	default:
		return "unknown"
	}
}

// Generation distinguishes young (nursery) objects from objects that have
// survived at least one minor collection, for the optional minor-GC mode
// (spec §4.2 "Minor GC").
type Generation uint8

const (
	Young Generation = iota
	Old
)

// Header is embedded (by value, as the first field) in every heap type
// the collector manages. It carries exactly the bookkeeping the mark-sweep
// algorithm needs and nothing domain-specific.
type Header struct {
	color      Color
	size       uint64
	generation Generation
}

// gcHeader satisfies the unexported half of Traceable. Any type embedding
// Header gets this promoted automatically, which is how JsObject et al.
// implement Traceable without gc needing to know their shape.
func (h *Header) gcHeader() *Header { return h }

// Size reports the number of bytes this object was booked for with the
// memory.Manager at allocation time.
func (h *Header) Size() uint64 { return h.size }

// SetSize is called once by the allocator that constructs the object.
func (h *Header) SetSize(n uint64) { h.size = n }

// Generation reports whether this object is still in the nursery.
func (h *Header) Generation() Generation { return h.generation }

// Promote flips an object's generation bit after it survives a minor
// collection.
func (h *Header) Promote() { h.generation = Old }
