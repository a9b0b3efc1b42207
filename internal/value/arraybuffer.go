package value

import "github.com/otterjs/otter/internal/gc"

// ArrayBuffer is the backing store for the typed-array family (spec §3.3,
// §4.7). It is not itself a JsObject; intrinsics wires one up as a
// JsObject internal slot ("arraybuffer") the same way browser engines
// keep the raw byte store off the fast object-property path.
type ArrayBuffer struct {
	gc.Header
	bytes []byte // nil means detached
}

// NewArrayBuffer allocates a buffer of the given length, zero-initialized.
func NewArrayBuffer(c *gc.Collector, length int) (*ArrayBuffer, error) {
	ab := &ArrayBuffer{bytes: make([]byte, length)}
	if err := c.Track(ab, uint64(length)); err != nil {
		return nil, err
	}
	return ab, nil
}

// Trace implements gc.Traceable. An ArrayBuffer holds no heap references;
// its backing store is raw bytes.
func (ab *ArrayBuffer) Trace(func(gc.Traceable)) {}

// Bytes returns the backing store, or nil if detached. Callers must not
// retain the returned slice past a Detach call.
func (ab *ArrayBuffer) Bytes() []byte { return ab.bytes }

// Len returns the buffer's length, 0 if detached.
func (ab *ArrayBuffer) Len() int { return len(ab.bytes) }

// Detached reports whether this buffer's backing store is gone (spec
// §3.3: "None (detached, length 0)").
func (ab *ArrayBuffer) Detached() bool { return ab.bytes == nil }

// Detach atomically clears the backing store, the terminal state of a
// Transfer. Spec §3.3 requires transfers detach atomically; in this
// single-threaded-per-realm engine that just means "as one uninterrupted
// bytecode step", which a plain assignment already is.
func (ab *ArrayBuffer) Detach() {
	ab.bytes = nil
}

// Transfer detaches ab and returns a new ArrayBuffer owning its former
// backing store, the mechanism behind ArrayBuffer.prototype.transfer.
func Transfer(c *gc.Collector, ab *ArrayBuffer) (*ArrayBuffer, error) {
	moved := ab.bytes
	ab.bytes = nil
	next := &ArrayBuffer{bytes: moved}
	if err := c.Track(next, uint64(len(moved))); err != nil {
		return nil, err
	}
	return next, nil
}
