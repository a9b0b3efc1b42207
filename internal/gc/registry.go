package gc

// Registry tracks every live allocation by identity so sweep can walk the
// full set without relying on language-level finalizers. Registration
// happens at allocation; removal happens at sweep (spec §4.2 "Allocation
// registry").
type Registry struct {
	live map[Traceable]struct{}
}

// NewRegistry returns an empty allocation registry.
func NewRegistry() *Registry {
	return &Registry{live: make(map[Traceable]struct{})}
}

// Register records a newly allocated object. Called once, at allocation.
func (r *Registry) Register(t Traceable) {
	r.live[t] = struct{}{}
}

// Unregister removes an object from the registry. Called once per object,
// from sweep.
func (r *Registry) Unregister(t Traceable) {
	delete(r.live, t)
}

// Len reports how many allocations the registry currently tracks.
func (r *Registry) Len() int { return len(r.live) }

// Each calls fn for every live allocation. The callback must not mutate
// the registry; sweep collects a worklist first and mutates afterward.
func (r *Registry) Each(fn func(Traceable)) {
	for t := range r.live {
		fn(t)
	}
}

// Contains reports whether t is currently registered. Exposed for tests
// asserting collector soundness (spec §8 "GC soundness").
func (r *Registry) Contains(t Traceable) bool {
	_, ok := r.live[t]
	return ok
}
