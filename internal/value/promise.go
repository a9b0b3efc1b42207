package value

import "github.com/otterjs/otter/internal/gc"

// PromiseState is a Promise's settlement state (spec §4.7's Promise
// surface over the host microtask queue).
type PromiseState uint8

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

// PromiseReaction is one then/catch/finally registration waiting on a
// Promise to settle: the pair of callbacks supplied to then, and the
// JsObject backing the derived promise that callback's outcome settles.
type PromiseReaction struct {
	OnFulfilled *Closure
	OnRejected  *Closure
	Result      *JsObject
}

// PromiseData is the GC-tracked backing store for a Promise instance,
// split off the script-visible JsObject shell the same way MapData and
// ArrayBuffer keep their payload off the ordinary property table.
type PromiseData struct {
	gc.Header
	state     PromiseState
	result    Value
	reactions []PromiseReaction
}

// NewPromiseData allocates a pending promise's backing store.
func NewPromiseData(c *gc.Collector) (*PromiseData, error) {
	p := &PromiseData{state: PromisePending}
	if err := c.Track(p, 0); err != nil {
		return nil, err
	}
	return p, nil
}

// Trace implements gc.Traceable.
func (p *PromiseData) Trace(visit func(gc.Traceable)) {
	p.result.traceRef(visit)
	for _, r := range p.reactions {
		if r.OnFulfilled != nil {
			visit(r.OnFulfilled)
		}
		if r.OnRejected != nil {
			visit(r.OnRejected)
		}
		if r.Result != nil {
			visit(r.Result)
		}
	}
}

// State reports the promise's current settlement.
func (p *PromiseData) State() PromiseState { return p.state }

// Result returns the fulfillment value or rejection reason, valid once
// State() is no longer PromisePending.
func (p *PromiseData) Result() Value { return p.result }

// Settle transitions a pending promise to fulfilled or rejected, reporting
// the reactions that were waiting (for the caller to schedule as
// microtasks) and whether the settlement actually took effect — a promise
// that is already settled ignores a second Settle, per spec's "a promise
// can only be resolved/rejected once".
func (p *PromiseData) Settle(state PromiseState, v Value) ([]PromiseReaction, bool) {
	if p.state != PromisePending {
		return nil, false
	}
	p.state = state
	p.result = v
	reactions := p.reactions
	p.reactions = nil
	return reactions, true
}

// AddReaction registers a then/catch/finally callback pair against a
// still-pending promise. Callers must check State() first: a reaction
// added after settlement would never run.
func (p *PromiseData) AddReaction(r PromiseReaction) {
	p.reactions = append(p.reactions, r)
}
