package intrinsics

import "github.com/otterjs/otter/internal/value"

// initPromise builds Promise (spec §4.7's "native then/catch/finally that
// enqueue microtasks in the host"), the one intrinsic family that talks
// directly to Interpreter.QueueMicrotask rather than doing all its work
// synchronously. async/await itself stays out of scope (no parser lives
// in this module to desugar it onto the generator primitive), but a host
// or a compiled-bytecode caller can drive this Promise the same way any
// JS engine's native constructor works.
func (r *Realm) initPromise() error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}
	r.PromiseProto = proto

	if err := r.method(proto, "then", func(this value.Value, args []value.Value) (value.Value, error) {
		onFulfilled, _ := arg(args, 0).AsFunction()
		onRejected, _ := arg(args, 1).AsFunction()
		return r.promiseThen(this, onFulfilled, onRejected)
	}); err != nil {
		return err
	}
	if err := r.method(proto, "catch", func(this value.Value, args []value.Value) (value.Value, error) {
		onRejected, _ := arg(args, 0).AsFunction()
		return r.promiseThen(this, nil, onRejected)
	}); err != nil {
		return err
	}
	if err := r.method(proto, "finally", func(this value.Value, args []value.Value) (value.Value, error) {
		onFinally, ok := arg(args, 0).AsFunction()
		if !ok {
			return r.promiseThen(this, nil, nil)
		}
		wrapFulfilled, err := value.NewNativeClosure(r.c, "", func(_ value.Value, a []value.Value) (value.Value, error) {
			if _, err := r.interp.Call(onFinally, value.Undef, nil, false); err != nil {
				return value.Undef, err
			}
			return arg(a, 0), nil
		})
		if err != nil {
			return value.Undef, err
		}
		wrapRejected, err := value.NewNativeClosure(r.c, "", func(_ value.Value, a []value.Value) (value.Value, error) {
			if _, err := r.interp.Call(onFinally, value.Undef, nil, false); err != nil {
				return value.Undef, err
			}
			return value.Undef, value.Throw(arg(a, 0))
		})
		if err != nil {
			return value.Undef, err
		}
		return r.promiseThen(this, wrapFulfilled, wrapRejected)
	}); err != nil {
		return err
	}

	ctor, ctorObj, err := r.constructor("Promise", proto, r.promiseConstructor(proto))
	if err != nil {
		return err
	}
	if err := r.dataProp(proto, "constructor", value.NewFunction(ctor)); err != nil {
		return err
	}

	if err := r.method(ctorObj, "resolve", func(this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if _, ok := r.promiseDataOf(v); ok {
			return v, nil
		}
		p, err := r.newPromise()
		if err != nil {
			return value.Undef, err
		}
		obj, _ := p.AsObject()
		pd, _ := r.promiseDataOf(p)
		r.resolvePromise(obj, pd, v)
		return p, nil
	}); err != nil {
		return err
	}
	if err := r.method(ctorObj, "reject", func(this value.Value, args []value.Value) (value.Value, error) {
		p, err := r.newPromise()
		if err != nil {
			return value.Undef, err
		}
		pd, _ := r.promiseDataOf(p)
		r.settlePromise(pd, value.PromiseRejected, arg(args, 0))
		return p, nil
	}); err != nil {
		return err
	}
	return nil
}

// promiseConstructor backs `new Promise(executor)`: runs executor
// synchronously with resolve/reject bound to this instance's backing
// store, rejecting if the executor itself throws (spec's "if the
// executor throws, the promise it would have produced is rejected with
// that exception" — the same contract every Promise implementation
// gives).
func (r *Realm) promiseConstructor(proto *value.JsObject) value.NativeFunc {
	return func(this value.Value, args []value.Value) (value.Value, error) {
		self, ok := this.AsObject()
		if !ok {
			obj, err := r.newObject(proto)
			if err != nil {
				return value.Undef, err
			}
			self = obj
		}
		pd, err := value.NewPromiseData(r.c)
		if err != nil {
			return value.Undef, err
		}
		self.SetInternalSlot("promisedata", pd)

		executor, ok := arg(args, 0).AsFunction()
		if !ok {
			return value.Undef, value.Throw(r.typeError("Promise resolver is not a function"))
		}
		resolveFn, err := value.NewNativeClosure(r.c, "resolve", func(_ value.Value, a []value.Value) (value.Value, error) {
			r.resolvePromise(self, pd, arg(a, 0))
			return value.Undef, nil
		})
		if err != nil {
			return value.Undef, err
		}
		rejectFn, err := value.NewNativeClosure(r.c, "reject", func(_ value.Value, a []value.Value) (value.Value, error) {
			r.settlePromise(pd, value.PromiseRejected, arg(a, 0))
			return value.Undef, nil
		})
		if err != nil {
			return value.Undef, err
		}

		executorArgs := []value.Value{value.NewFunction(resolveFn), value.NewFunction(rejectFn)}
		if _, err := r.interp.Call(executor, value.Undef, executorArgs, false); err != nil {
			r.settlePromise(pd, value.PromiseRejected, r.errToThrown(err))
		}
		return value.NewObject(self), nil
	}
}

// newPromise allocates a fresh, pending Promise instance — the shell
// `then`/`catch`/`finally`/`Promise.resolve`/`Promise.reject` each need to
// hand back a derived promise from.
func (r *Realm) newPromise() (value.Value, error) {
	obj, err := r.newObject(r.PromiseProto)
	if err != nil {
		return value.Undef, err
	}
	pd, err := value.NewPromiseData(r.c)
	if err != nil {
		return value.Undef, err
	}
	obj.SetInternalSlot("promisedata", pd)
	return value.NewObject(obj), nil
}

func (r *Realm) promiseDataOf(v value.Value) (*value.PromiseData, bool) {
	o, ok := v.AsObject()
	if !ok {
		return nil, false
	}
	slot, ok := o.InternalSlot("promisedata")
	if !ok {
		return nil, false
	}
	pd, ok := slot.(*value.PromiseData)
	return pd, ok
}

// promiseThen implements the shared then/catch machinery: build a derived
// promise, register a reaction against the source promise (queuing a
// microtask immediately if it's already settled, or waiting for
// resolvePromise/settlePromise to do so later).
func (r *Realm) promiseThen(this value.Value, onFulfilled, onRejected *value.Closure) (value.Value, error) {
	pd, ok := r.promiseDataOf(this)
	if !ok {
		return value.Undef, value.Throw(r.typeError("Promise.prototype.then called on a non-Promise"))
	}
	resultVal, err := r.newPromise()
	if err != nil {
		return value.Undef, err
	}
	resultObj, _ := resultVal.AsObject()
	react := value.PromiseReaction{OnFulfilled: onFulfilled, OnRejected: onRejected, Result: resultObj}
	if pd.State() == value.PromisePending {
		pd.AddReaction(react)
	} else {
		r.scheduleReaction(react, pd.State(), pd.Result())
	}
	return resultVal, nil
}

// resolvePromise implements [[Resolve]]: resolving with another pending
// promise adopts its eventual state instead of fulfilling immediately
// with the promise object itself (spec's thenable-adoption rule, narrowed
// here to "is this engine's own Promise shape" rather than the full
// generic-thenable protocol, which would need a property lookup back
// through the interpreter for every resolved value).
func (r *Realm) resolvePromise(self *value.JsObject, pd *value.PromiseData, v value.Value) {
	if innerPD, ok := r.promiseDataOf(v); ok && innerPD != pd {
		if innerPD.State() == value.PromisePending {
			innerPD.AddReaction(value.PromiseReaction{Result: self})
		} else {
			r.settlePromise(pd, innerPD.State(), innerPD.Result())
		}
		return
	}
	r.settlePromise(pd, value.PromiseFulfilled, v)
}

// settlePromise transitions pd and schedules every reaction it was
// holding as a microtask (spec §4.5's "drains any pending microtasks
// queued by the host" is what eventually runs each one).
func (r *Realm) settlePromise(pd *value.PromiseData, state value.PromiseState, v value.Value) {
	reactions, ok := pd.Settle(state, v)
	if !ok {
		return
	}
	for _, react := range reactions {
		r.scheduleReaction(react, state, v)
	}
}

// scheduleReaction queues one reaction's job: call whichever handler
// matches the settled state, feed its return value into the derived
// promise, or (no handler registered, the plain-passthrough case `catch`
// and `finally` rely on, and the adoption reaction resolvePromise
// installs on an inner thenable) propagate the state/value onto the
// derived promise directly.
func (r *Realm) scheduleReaction(react value.PromiseReaction, state value.PromiseState, v value.Value) {
	r.interp.QueueMicrotask(func() {
		resultPD, hasResult := r.promiseDataOf(value.NewObject(react.Result))

		var handler *value.Closure
		if state == value.PromiseFulfilled {
			handler = react.OnFulfilled
		} else {
			handler = react.OnRejected
		}

		if handler == nil {
			if !hasResult {
				return
			}
			if state == value.PromiseFulfilled {
				r.resolvePromise(react.Result, resultPD, v)
			} else {
				r.settlePromise(resultPD, value.PromiseRejected, v)
			}
			return
		}

		out, err := r.interp.Call(handler, value.Undef, []value.Value{v}, false)
		if err != nil {
			if hasResult {
				r.settlePromise(resultPD, value.PromiseRejected, r.errToThrown(err))
			}
			return
		}
		if hasResult {
			r.resolvePromise(react.Result, resultPD, out)
		}
	})
}

// errToThrown recovers the JS-level value behind a Call error: either the
// Thrown wrapper a native function returns directly, or whatever's left
// in the interpreter's exception slot when a bytecode closure's
// exception escaped uncaught (Call's errUnwind case).
func (r *Realm) errToThrown(err error) value.Value {
	if t, ok := err.(*value.Thrown); ok {
		return t.Value
	}
	if v, ok := r.interp.Exception(); ok {
		r.interp.ClearException()
		return v
	}
	return r.newError("Error", err.Error())
}
