package memory

// Tracked wraps a value whose size has been booked against a Manager. Go
// has no destructors, so unlike the Rust original's Drop-based release,
// callers must call Release explicitly. The collector does not use
// Tracked: its objects are booked through Collector.Track and their bytes
// are freed directly by its sweep phase (see package gc).
type Tracked[T any] struct {
	inner   T
	size    uint64
	manager *Manager
}

// NewTracked books size bytes against manager and wraps inner. It fails if
// the booking would exceed the manager's limit.
func NewTracked[T any](inner T, size uint64, manager *Manager) (*Tracked[T], error) {
	if err := manager.Alloc(size); err != nil {
		var zero T
		_ = zero
		return nil, err
	}
	return &Tracked[T]{inner: inner, size: size, manager: manager}, nil
}

// Inner returns the wrapped value.
func (t *Tracked[T]) Inner() T { return t.inner }

// Size returns the number of bytes booked for this value.
func (t *Tracked[T]) Size() uint64 { return t.size }

// Release returns the booked bytes to the manager. Calling it twice is a
// caller bug: the bytes would be freed twice.
func (t *Tracked[T]) Release() {
	t.manager.Free(t.size)
}
