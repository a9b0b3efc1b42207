package intrinsics

import "github.com/otterjs/otter/internal/value"

// initFunction builds Function.prototype (grounded on
// intrinsics_impl/function.rs's init_function_prototype: call/apply/bind
// plus a toString that reports a "[native code]" marker for native
// functions and an "[otter code]" placeholder, not the source text, for
// bytecode functions).
func (r *Realm) initFunction() error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}
	proto.MarkCallable()
	r.FunctionProto = proto

	if err := r.method(proto, "call", r.functionCall); err != nil {
		return err
	}
	if err := r.method(proto, "apply", r.functionApply); err != nil {
		return err
	}
	if err := r.method(proto, "bind", r.functionBind); err != nil {
		return err
	}
	if err := r.method(proto, "toString", r.functionToString); err != nil {
		return err
	}
	return nil
}

func (r *Realm) functionCall(this value.Value, args []value.Value) (value.Value, error) {
	fn, ok := this.AsFunction()
	if !ok {
		return value.Undef, value.Throw(r.typeError("not a function"))
	}
	var thisArg value.Value = value.Undef
	var rest []value.Value
	if len(args) > 0 {
		thisArg = args[0]
		rest = args[1:]
	}
	return r.interp.Call(fn, thisArg, rest, false)
}

func (r *Realm) functionApply(this value.Value, args []value.Value) (value.Value, error) {
	fn, ok := this.AsFunction()
	if !ok {
		return value.Undef, value.Throw(r.typeError("not a function"))
	}
	thisArg := arg(args, 0)
	var rest []value.Value
	if arr, ok := arg(args, 1).AsObject(); ok {
		rest = elementsOf(arr)
	}
	return r.interp.Call(fn, thisArg, rest, false)
}

func (r *Realm) functionBind(this value.Value, args []value.Value) (value.Value, error) {
	fn, ok := this.AsFunction()
	if !ok {
		return value.Undef, value.Throw(r.typeError("not a function"))
	}
	boundThis := arg(args, 0)
	boundArgs := append([]value.Value(nil), args[min(1, len(args)):]...)

	bound, err := value.NewNativeClosure(r.c, "bound "+fn.Name(), func(_ value.Value, callArgs []value.Value) (value.Value, error) {
		full := append(append([]value.Value(nil), boundArgs...), callArgs...)
		return r.interp.Call(fn, boundThis, full, false)
	})
	if err != nil {
		return value.Undef, err
	}
	return value.NewFunction(bound), nil
}

func (r *Realm) functionToString(this value.Value, args []value.Value) (value.Value, error) {
	if fn, ok := this.AsFunction(); ok {
		if fn.IsNative() {
			return r.string("function " + fn.Name() + "() { [native code] }"), nil
		}
		return r.string("function " + fn.Name() + "() { [otter code] }"), nil
	}
	return r.string("function () {}"), nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
