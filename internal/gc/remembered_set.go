package gc

// RememberedSet tracks old-generation objects that hold a pointer into the
// young generation, so a minor collection can treat them as extra roots
// without re-scanning the entire old generation (spec §4.2 "Minor GC").
//
// An object is added here by the same write barrier path as Record: an Old
// holder that gains a Young pointee is remembered until the next minor
// collection clears it.
type RememberedSet struct {
	entries map[Traceable]struct{}
}

// NewRememberedSet returns an empty remembered set.
func NewRememberedSet() *RememberedSet {
	return &RememberedSet{entries: make(map[Traceable]struct{})}
}

// Remember records that holder (an Old-generation object) now points at a
// Young-generation object and must be treated as a minor-GC root.
func (s *RememberedSet) Remember(holder Traceable) {
	s.entries[holder] = struct{}{}
}

// Each visits every remembered holder. Called by the collector at the
// start of a minor collection to seed the gray worklist.
func (s *RememberedSet) Each(fn func(Traceable)) {
	for t := range s.entries {
		fn(t)
	}
}

// Clear empties the set, called once a minor collection has finished
// scanning every remembered holder.
func (s *RememberedSet) Clear() {
	s.entries = make(map[Traceable]struct{})
}

// Len reports how many holders are currently remembered.
func (s *RememberedSet) Len() int { return len(s.entries) }

// noteMinorBarrier is the remembered-set half of the write barrier: called
// whenever an Old holder's slot is set to point at a Young object.
func (c *Collector) noteMinorBarrier(holder, written Traceable) {
	if headerOf(holder) == nil || headerOf(written) == nil {
		return
	}
	if holder.gcHeader().Generation() == Old && written.gcHeader().Generation() == Young {
		c.remembered.Remember(holder)
	}
}
