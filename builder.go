package otter

import (
	"github.com/otterjs/otter/api"
	"github.com/otterjs/otter/internal/value"
)

// HostFunctionBuilder defines one native function for a HostModuleBuilder
// (spec §6's register_native, bundled the way the teacher's
// HostFunctionBuilder bundles one WASM import at a time rather than
// installing it immediately).
//
// Here's an example of a "math" host module with one function:
//
//	engine.NewHostModuleBuilder("math").
//		NewFunctionBuilder().
//		WithFunc(func(this api.Value, args []api.Value) (api.Value, error) {
//			return api.Number(args[0].ToNumber() + args[1].ToNumber()), nil
//		}).
//		Export("add")
//
// # Notes
//
//   - This is an interface for decoupling, not third-party implementations.
//     All implementations are in otter.
type HostFunctionBuilder interface {
	// WithFunc sets the function body. The last call wins if called more
	// than once.
	WithFunc(fn api.NativeFunc) HostFunctionBuilder

	// Export registers fn under name on the owning HostModuleBuilder and
	// returns it, so further NewFunctionBuilder calls can chain off the
	// same module.
	Export(name string) HostModuleBuilder
}

// HostModuleBuilder bundles native functions into a single JS object,
// installed as one global binding by Instantiate — the Otter analogue
// of the teacher's HostModuleBuilder, which bundles host functions
// under one WASM import-module namespace instead of one JS global
// property.
//
// # Notes
//
//   - This is an interface for decoupling, not third-party implementations.
//     All implementations are in otter.
//   - HostModuleBuilder is mutable: each method returns the same instance
//     for chaining.
//   - Functions are installed in the order Export was called, matching
//     insertion order a host might rely on when iterating with
//     Object.keys.
type HostModuleBuilder interface {
	// NewFunctionBuilder begins the definition of one function belonging
	// to this module.
	NewFunctionBuilder() HostFunctionBuilder

	// Instantiate builds the module object and installs it as a global
	// binding under the module's name (e.g. NewHostModuleBuilder("os")
	// installs a global `os` object with every exported function as a
	// property).
	Instantiate() error
}

// hostModuleBuilder implements HostModuleBuilder.
type hostModuleBuilder struct {
	e           *Engine
	moduleName  string
	exportNames []string
	nameToFunc  map[string]api.NativeFunc
}

// NewHostModuleBuilder implements Engine.NewHostModuleBuilder.
func (e *Engine) NewHostModuleBuilder(moduleName string) HostModuleBuilder {
	return &hostModuleBuilder{
		e:          e,
		moduleName: moduleName,
		nameToFunc: map[string]api.NativeFunc{},
	}
}

// hostFunctionBuilder implements HostFunctionBuilder.
type hostFunctionBuilder struct {
	b  *hostModuleBuilder
	fn api.NativeFunc
}

// NewFunctionBuilder implements HostModuleBuilder.NewFunctionBuilder.
func (b *hostModuleBuilder) NewFunctionBuilder() HostFunctionBuilder {
	return &hostFunctionBuilder{b: b}
}

// WithFunc implements HostFunctionBuilder.WithFunc.
func (h *hostFunctionBuilder) WithFunc(fn api.NativeFunc) HostFunctionBuilder {
	h.fn = fn
	return h
}

// Export implements HostFunctionBuilder.Export.
func (h *hostFunctionBuilder) Export(name string) HostModuleBuilder {
	if _, ok := h.b.nameToFunc[name]; !ok {
		h.b.exportNames = append(h.b.exportNames, name)
	}
	h.b.nameToFunc[name] = h.fn
	return h.b
}

// Instantiate implements HostModuleBuilder.Instantiate.
func (b *hostModuleBuilder) Instantiate() error {
	e := b.e

	rootShape, err := value.RootShape(e.gc, value.NewObject(e.realm.ObjectProto))
	if err != nil {
		return err
	}
	obj, err := value.NewJsObject(e.gc, rootShape)
	if err != nil {
		return err
	}

	for _, name := range b.exportNames {
		fn := b.nameToFunc[name]
		native := func(this value.Value, args []value.Value) (value.Value, error) {
			ovArgs := make([]api.Value, len(args))
			for i, a := range args {
				ovArgs[i] = api.WrapValue(a)
			}
			result, err := fn(api.WrapValue(this), ovArgs)
			if err != nil {
				return value.Undef, err
			}
			return result.Unwrap(), nil
		}
		closure, err := value.NewNativeClosure(e.gc, name, native)
		if err != nil {
			return err
		}
		if err := obj.DefineOwnProperty(e.gc, value.StringKey(name),
			value.NewDataProperty(value.NewFunction(closure), value.MethodAttrs())); err != nil {
			return err
		}
	}

	return e.interp.Global().DefineOwnProperty(e.gc, value.StringKey(b.moduleName),
		value.NewDataProperty(value.NewObject(obj), value.MethodAttrs()))
}
