package gc

// Traceable is implemented by every heap-allocated engine object. Trace
// must call visit once for every Traceable this object directly
// references — it is the trace_fn of spec §4.2's object header.
//
// Implementations embed Header (so they inherit gcHeader() for free) and
// write Trace by hand, the same way the teacher's wazero callEngine walks
// a function's explicit operand stack rather than relying on reflection.
type Traceable interface {
	Trace(visit func(Traceable))

	gcHeader() *Header
}

// headerOf extracts the Header embedded in any Traceable. Named to match
// the spec's header_of(ptr) = ptr - sizeof(Header) framing, even though in
// Go it's a method call rather than pointer arithmetic.
func headerOf(t Traceable) *Header {
	if t == nil {
		return nil
	}
	return t.gcHeader()
}

// ColorOf returns t's current mark color. Safe to call on a nil Traceable
// (reports White) so callers don't need to special-case unset slots.
func ColorOf(t Traceable) Color {
	h := headerOf(t)
	if h == nil {
		return White
	}
	return h.color
}
