// Package ic implements the interpreter's inline-cache feedback vectors
// (spec §4.6): per-call-site state for property reads/writes and binary
// arithmetic, consulted and updated on every GetProp*/SetProp*/binary-op
// instruction to keep the common case O(1).
package ic

import "github.com/otterjs/otter/internal/value"

// State is a feedback slot's observation state.
type State uint8

const (
	// Uninitialized: no observation yet.
	Uninitialized State = iota
	// Monomorphic: exactly one shape seen.
	Monomorphic
	// Polymorphic: 2–4 shapes seen; linear scan over Entries.
	Polymorphic
	// Megamorphic: too many shapes; caching disabled for this slot.
	Megamorphic
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Monomorphic:
		return "monomorphic"
	case Polymorphic:
		return "polymorphic"
	case Megamorphic:
		return "megamorphic"
	default:
		return "unknown"
	}
}

// polymorphicLimit is the number of distinct shapes a slot tracks before
// degrading to Megamorphic (spec §4.6: "Polymorphic(Vec<(shape, offset)>):
// 2–4 shapes").
const polymorphicLimit = 4

// shapeEntry pairs an observed shape with the property offset the lookup
// resolved to.
type shapeEntry struct {
	shape  *value.Shape
	offset int
}

// OperandKind classifies a binary operation's observed operand type for
// the fallback path's fast dispatch (spec §4.6 "Binary-op feedback").
type OperandKind uint8

const (
	KindUnknown OperandKind = iota
	KindInt32
	KindNumber
	KindString
	KindAny
)

// Slot is one feedback-vector entry. A given bytecode call site always
// uses a slot the same way — as a property IC or as binary-op feedback —
// since that's fixed by which instruction addresses it.
type Slot struct {
	state State
	shapes []shapeEntry

	lhsKind, rhsKind OperandKind
}

// FeedbackVector holds one function's per-call-site slots, sized to
// Function.FeedbackVectorSize at function-instantiation time (spec §4.3).
type FeedbackVector struct {
	slots []Slot
}

// NewFeedbackVector allocates size Uninitialized slots.
func NewFeedbackVector(size uint32) *FeedbackVector {
	return &FeedbackVector{slots: make([]Slot, size)}
}

// Len reports the number of slots.
func (fv *FeedbackVector) Len() int { return len(fv.slots) }

// LookupProperty implements the GetProp read contract's fast path (spec
// §4.6 step 1): if idx's cached shape matches shape, return its offset
// with ok=true in O(1). Callers fall back to a full prototype-chain walk
// on a miss and then call RecordHit.
func (fv *FeedbackVector) LookupProperty(idx uint32, shape *value.Shape) (offset int, ok bool) {
	s := &fv.slots[idx]
	switch s.state {
	case Monomorphic:
		if s.shapes[0].shape == shape {
			return s.shapes[0].offset, true
		}
	case Polymorphic:
		for _, e := range s.shapes {
			if e.shape == shape {
				return e.offset, true
			}
		}
	}
	return 0, false
}

// RecordHit updates slot idx after a full lookup resolved shape to
// offset: Uninitialized → Monomorphic, a new shape → Polymorphic (or
// Megamorphic past the limit), per spec §4.6 step 2.
func (fv *FeedbackVector) RecordHit(idx uint32, shape *value.Shape, offset int) {
	s := &fv.slots[idx]
	switch s.state {
	case Uninitialized:
		s.state = Monomorphic
		s.shapes = []shapeEntry{{shape: shape, offset: offset}}
	case Monomorphic:
		if s.shapes[0].shape == shape {
			s.shapes[0].offset = offset
			return
		}
		s.state = Polymorphic
		s.shapes = append(s.shapes, shapeEntry{shape: shape, offset: offset})
	case Polymorphic:
		for i, e := range s.shapes {
			if e.shape == shape {
				s.shapes[i].offset = offset
				return
			}
		}
		if len(s.shapes) >= polymorphicLimit {
			s.state = Megamorphic
			s.shapes = nil
			return
		}
		s.shapes = append(s.shapes, shapeEntry{shape: shape, offset: offset})
	case Megamorphic:
		// already disabled; nothing to record
	}
}

// State reports slot idx's current observation state.
func (fv *FeedbackVector) State(idx uint32) State {
	return fv.slots[idx].state
}

// RecordBinaryOperands updates slot idx's observed operand kinds for a
// binary arithmetic instruction.
func (fv *FeedbackVector) RecordBinaryOperands(idx uint32, lhs, rhs OperandKind) {
	s := &fv.slots[idx]
	s.lhsKind = mergeKind(s.lhsKind, lhs)
	s.rhsKind = mergeKind(s.rhsKind, rhs)
}

// BinaryOperands returns the merged operand-kind feedback recorded for
// slot idx, consulted by the arithmetic fallback to short-circuit the
// common Int32/Int32 or Number/Number case (spec §4.6).
func (fv *FeedbackVector) BinaryOperands(idx uint32) (lhs, rhs OperandKind) {
	s := &fv.slots[idx]
	return s.lhsKind, s.rhsKind
}

// mergeKind widens the recorded kind: the same kind stays stable, seeing
// anything else degrades to Any — a binary-op slot's own miniature
// monomorphic→megamorphic lattice.
func mergeKind(prev, observed OperandKind) OperandKind {
	if prev == KindUnknown {
		return observed
	}
	if prev == observed {
		return prev
	}
	return KindAny
}

// InvalidateShape drops every cached entry referencing shape from every
// slot in fv, reverting them to Uninitialized. The engine's discipline of
// making shape identity immutable once created (spec §4.6 "Invalidation")
// means this is never required for ordinary property transitions — it
// exists for the rare host-driven case of forcibly retiring a shape (e.g.
// a Proxy revocation invalidating cached traps).
func (fv *FeedbackVector) InvalidateShape(shape *value.Shape) {
	for i := range fv.slots {
		s := &fv.slots[i]
		if s.state == Uninitialized || s.state == Megamorphic {
			continue
		}
		kept := s.shapes[:0]
		for _, e := range s.shapes {
			if e.shape != shape {
				kept = append(kept, e)
			}
		}
		s.shapes = kept
		switch len(kept) {
		case 0:
			s.state = Uninitialized
		case 1:
			s.state = Monomorphic
		default:
			s.state = Polymorphic
		}
	}
}
