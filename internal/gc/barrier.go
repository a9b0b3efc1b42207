package gc

// WriteBarrier intercepts every heap pointer write so the collector stays
// sound while the mutator runs interleaved with mark (spec §4.2 "Write
// barrier"). It implements the Steele variant: a black object that gains a
// pointer to a white object re-grays the white object immediately rather
// than re-graying the writer, which keeps black objects black and avoids
// re-scanning them.
type WriteBarrier struct {
	collector *Collector
}

// Record must be called by every slot-mutating operation in the object
// model (JsObject.Set, Closure upvalue stores, array element stores, and
// so on) immediately after the store, passing the object whose slot was
// written (holder) and the new value now reachable from it (written).
//
// Record also feeds the remembered set: an Old holder that gains a Young
// pointee is remembered for the next minor collection. Outside of an
// active mark phase that is all it does.
func (b *WriteBarrier) Record(holder, written Traceable) {
	if b.collector == nil {
		return
	}
	b.collector.noteMinorBarrier(holder, written)
	if !b.collector.marking {
		return
	}
	if ColorOf(holder) != Black {
		return
	}
	if ColorOf(written) == White {
		b.collector.shade(written)
	}
}

// Barrier returns a write barrier bound to the collector, valid for the
// lifetime of the collector. Each call allocates a new WriteBarrier; all
// of them record into the same collector.
func (c *Collector) Barrier() *WriteBarrier {
	return &WriteBarrier{collector: c}
}
