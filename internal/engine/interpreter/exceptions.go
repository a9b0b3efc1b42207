package interpreter

import (
	"errors"

	"github.com/otterjs/otter/internal/value"
)

// errUnwind signals that an exception propagated out of the current
// frame with no handler found at this call depth; the interpreter's
// exception slot (i.exception) carries the thrown value itself, per spec
// §4.5's "an exception slot" — this sentinel only tells a caller's
// dispatch loop it must keep searching at its own depth.
var errUnwind = errors.New("otter/interpreter: unhandled exception")

// errCaught signals that an exception was raised and immediately caught
// within the current frame: f.PC has already been patched to the catch
// target by unwindToHandler, and the dispatch loop must re-fetch there
// rather than treat the call that produced this error as either an
// ordinary success or an escaping error. raise never returns a plain nil
// on its success path — doing so would be indistinguishable from the
// genuine "no exception occurred" nil every other helper in this package
// returns, and handleError needs to tell the two apart.
var errCaught = errors.New("otter/interpreter: exception caught locally")

// tryEntry is one interpreter-wide try-stack entry (spec §4.5 "a try
// stack recording (catch_pc, frame_depth)"). frameDepth is the call
// stack depth at the moment the owning PushTry executed.
type tryEntry struct {
	catchPC    int
	frameDepth int
}

// raise installs v as the pending exception and attempts to unwind to a
// handler in f's own frame. If one is found, f.PC is patched to the
// catch target and raise returns errCaught — the caller's dispatch loop
// should `continue` rather than advance PC or treat this as a returned
// value. Otherwise it returns errUnwind, and the caller must return it so
// the exception keeps propagating to the enclosing Call.
func (i *Interpreter) raise(f *Frame, v value.Value) error {
	i.exception = v
	i.hasException = true
	if i.unwindToHandler(f) {
		return errCaught
	}
	return errUnwind
}

// unwindToHandler implements spec §4.5's exception-propagation search:
// pop try entries belonging to frames deeper than the current one (those
// frames have already returned), stop and patch f.PC if an entry at the
// current depth is found, or report failure once the stack is exhausted
// or the topmost remaining entry belongs to a shallower frame.
func (i *Interpreter) unwindToHandler(f *Frame) bool {
	depth := i.stack.Depth()
	for len(i.tryStack) > 0 {
		top := i.tryStack[len(i.tryStack)-1]
		if top.frameDepth < depth {
			return false
		}
		i.tryStack = i.tryStack[:len(i.tryStack)-1]
		if top.frameDepth == depth {
			f.PC = top.catchPC
			i.hasException = false
			return true
		}
		// top.frameDepth > depth: a stale entry from an already-unwound
		// deeper frame; drop it and keep searching.
	}
	return false
}

// propagate is the helper that turns the *outcome of a completed nested
// Call/Construct/CallMethod* (never a raw raise()/throwTypeError() result
// from within the current frame — handleError filters those out via
// errCaught before they would reach here) into something f can act on: if
// err is nil there was no exception. If err is errUnwind, it tries to
// catch it in f; success means the caller's dispatch loop should
// `continue` with the already-patched PC. Any other error (StackOverflow,
// OutOfMemory, a host Interrupted that reached the top with no handler)
// is an engine-level condition and is returned unchanged for the caller
// to propagate raw.
func (i *Interpreter) propagate(f *Frame, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errUnwind) {
		if i.unwindToHandler(f) {
			return nil
		}
		return errUnwind
	}
	return err
}

// newError builds a bare {name, message} object to throw for
// interpreter-raised runtime errors (TypeError on calling a non-callable,
// property access on null/undefined, and similar). This is intentionally
// minimal — the full Error constructor family with prototypes and
// captured stacks belongs to the intrinsics layer; the interpreter only
// needs something throwable before that layer exists.
func (i *Interpreter) newError(name, message string) (value.Value, error) {
	obj, err := value.NewJsObject(i.collector, i.emptyShape)
	if err != nil {
		return value.Undef, err
	}
	nameStr, err := value.NewJsString(i.collector, name)
	if err != nil {
		return value.Undef, err
	}
	msgStr, err := value.NewJsString(i.collector, message)
	if err != nil {
		return value.Undef, err
	}
	if err := obj.DefineOwnProperty(i.collector, value.StringKey("name"), value.NewDataProperty(value.NewString(nameStr), value.MethodAttrs())); err != nil {
		return value.Undef, err
	}
	if err := obj.DefineOwnProperty(i.collector, value.StringKey("message"), value.NewDataProperty(value.NewString(msgStr), value.MethodAttrs())); err != nil {
		return value.Undef, err
	}
	return value.NewObject(obj), nil
}

// throwTypeError raises a TypeError at f's current position, returning
// errUnwind (or errCaught if immediately caught in f) the way every other
// raise path does.
func (i *Interpreter) throwTypeError(f *Frame, message string) error {
	v, err := i.newError("TypeError", message)
	if err != nil {
		return err
	}
	return i.raise(f, v)
}
