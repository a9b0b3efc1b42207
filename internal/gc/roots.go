package gc

// RootProvider is anything the collector must treat as a source of live
// references: the interpreter's register file and frame stack, the global
// object, and any HandleScope currently open across a host call (spec §4.2
// "Roots", §6 host embedding boundary).
type RootProvider interface {
	// Roots calls visit for every Traceable this provider references
	// directly. Called once per mark phase, before the gray worklist
	// drains.
	Roots(visit func(Traceable))
}

// HandleScope roots a set of values for the duration of a host call, the
// Go-side equivalent of the spec's rooted handles: values obtained through
// the embedding API (spec §6) are otherwise invisible to the interpreter's
// own root set and would be reclaimed mid-call without one.
//
// A HandleScope is not safe for concurrent use; each goroutine making host
// calls into the engine should open its own.
type HandleScope struct {
	collector *Collector
	handles   []Traceable
}

// NewHandleScope opens a scope registered with c. Callers must call Close
// when the host call returns.
func NewHandleScope(c *Collector) *HandleScope {
	hs := &HandleScope{collector: c}
	c.scopes = append(c.scopes, hs)
	return hs
}

// Root keeps t alive for the lifetime of the scope and returns t
// unchanged, so callers can root a freshly allocated object in place:
// scope.Root(obj), where obj is any Traceable such as a *value.JsObject.
func (hs *HandleScope) Root(t Traceable) Traceable {
	hs.handles = append(hs.handles, t)
	return t
}

// Close releases every handle rooted by this scope. After Close, objects
// reachable only through it may be reclaimed by the next collection.
func (hs *HandleScope) Close() {
	for i, s := range hs.collector.scopes {
		if s == hs {
			hs.collector.scopes = append(hs.collector.scopes[:i], hs.collector.scopes[i+1:]...)
			break
		}
	}
	hs.handles = nil
}

// Roots implements RootProvider.
func (hs *HandleScope) Roots(visit func(Traceable)) {
	for _, h := range hs.handles {
		visit(h)
	}
}
