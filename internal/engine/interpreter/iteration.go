package interpreter

import "github.com/otterjs/otter/internal/value"

// wellKnownIteratorKey is the fallback property key getIterator consults
// before any realm has called Interpreter.SetIteratorKey with the real
// Symbol.iterator — keeps an interpreter usable (e.g. in this package's
// own unit tests) without requiring the full intrinsics bootstrap.
const wellKnownIteratorKey = "@@iterator"

// getIterator implements GetIterator dst, src (spec §4.4 Iteration):
// obtain src's iterator object, either because src already looks like one
// (has a callable "next") or by invoking its @@iterator method.
func (i *Interpreter) getIterator(f *Frame, src value.Value) (value.Value, error) {
	o, ok := src.AsObject()
	if !ok {
		return value.Undef, i.throwTypeError(f, "value is not iterable")
	}
	if _, ok := AsGenerator(o); ok {
		return src, nil
	}
	if nextFn, ok := o.GetOwnProperty(value.StringKey("next")); ok && nextFn.Kind() == value.DataDescriptor && nextFn.Value().IsCallable() {
		return src, nil
	}
	factory, err := o.Get(i.iteratorKey, src, i.callClosure)
	if err != nil {
		return value.Undef, err
	}
	if !factory.IsCallable() {
		return value.Undef, i.throwTypeError(f, "value is not iterable")
	}
	fn, _ := factory.AsFunction()
	iter, err := i.Call(fn, src, nil, false)
	if err != nil {
		return value.Undef, err
	}
	if _, ok := iter.AsObject(); !ok {
		return value.Undef, i.throwTypeError(f, "@@iterator did not return an object")
	}
	return iter, nil
}

// iteratorNext implements IteratorNext dst_value, dst_done, iter (spec
// §4.4): call iter.next(arg) and unpack the {value, done} result.
func (i *Interpreter) iteratorNext(f *Frame, iter value.Value, arg value.Value) (IterResult, error) {
	o, ok := iter.AsObject()
	if !ok {
		return IterResult{}, i.throwTypeError(f, "value is not an iterator")
	}
	if gen, ok := AsGenerator(o); ok {
		return i.resumeGenerator(f, gen, resumeNext, arg)
	}
	nextVal, err := o.Get(value.StringKey("next"), iter, i.callClosure)
	if err != nil {
		return IterResult{}, err
	}
	fn, ok := nextVal.AsFunction()
	if !ok {
		return IterResult{}, i.throwTypeError(f, "iterator.next is not a function")
	}
	res, err := i.Call(fn, iter, []value.Value{arg}, false)
	if err != nil {
		return IterResult{}, err
	}
	resObj, ok := res.AsObject()
	if !ok {
		return IterResult{}, i.throwTypeError(f, "iterator result is not an object")
	}
	doneVal, err := resObj.Get(value.StringKey("done"), res, i.callClosure)
	if err != nil {
		return IterResult{}, err
	}
	valueVal, err := resObj.Get(value.StringKey("value"), res, i.callClosure)
	if err != nil {
		return IterResult{}, err
	}
	return IterResult{Value: valueVal, Done: doneVal.ToBool()}, nil
}
