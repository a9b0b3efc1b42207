// Package otter implements the host embedding surface (spec §6): build
// an Engine from an EngineConfig, evaluate script or module source, and
// drive garbage collection and interruption from outside the
// interpreter's own goroutine. otter.go, config.go, builder.go, and
// cache.go together play the role the teacher's runtime.go,
// config.go, builder.go, and cache.go play for wazero — the
// WebAssembly-shaped API traded for a JavaScript-shaped one, same
// layering.
package otter

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/otterjs/otter/api"
	"github.com/otterjs/otter/internal/bytecode"
	"github.com/otterjs/otter/internal/engine/interpreter"
	"github.com/otterjs/otter/internal/gc"
	"github.com/otterjs/otter/internal/intrinsics"
	"github.com/otterjs/otter/internal/logging"
	"github.com/otterjs/otter/internal/memory"
	"github.com/otterjs/otter/internal/module"
	"github.com/otterjs/otter/internal/ottererr"
	"github.com/otterjs/otter/internal/value"
)

// Engine is one JavaScript execution context: its own heap, collector,
// call stack, and global object (spec §6 "Engine::new()"). Engines
// share no state; running two scripts that must share objects means
// running them through the same Engine.
type Engine struct {
	cfg    *EngineConfig
	mem    *memory.Manager
	gc     *gc.Collector
	interp *interpreter.Interpreter
	realm  *intrinsics.Realm

	resolver   module.Resolver
	loader     module.Loader
	transpiler module.Transpiler
	compiler   module.Compiler
	cache      *module.CompiledCache

	watchdogCancel context.CancelFunc
}

// NewEngine builds an Engine from cfg (spec §6). It wires the memory
// manager, the collector, a fresh global object, and the interpreter in
// the same order the teacher's NewRuntimeWithConfig wires a compilation
// cache, an engine, and a store — then bootstraps every intrinsic
// (Object, Array, Error, Map, console, ...) onto the new global via
// intrinsics.New, the one step with no wazero analogue: a fresh
// WebAssembly store starts empty by design, but a fresh JS realm must
// not.
func NewEngine(cfg *EngineConfig) (*Engine, error) {
	if cfg == nil {
		cfg = NewEngineConfig()
	}

	mem := memory.NewManager(cfg.memoryLimit)
	if cfg.gcThreshold != 0 {
		mem.SetGCThreshold(cfg.gcThreshold)
	}
	if cfg.gcAllocCount != 0 {
		mem.SetAllocationCountThreshold(cfg.gcAllocCount)
	}

	collector := gc.NewCollector(gc.NewRegistry(), mem)
	collector.SetLogger(cfg.logger)

	rootShape, err := value.RootShape(collector, value.Nul)
	if err != nil {
		return nil, err
	}
	global, err := value.NewJsObject(collector, rootShape)
	if err != nil {
		return nil, err
	}

	interp, err := interpreter.NewInterpreter(collector, mem, global, cfg.maxCallDepth)
	if err != nil {
		return nil, err
	}
	interp.SetLogger(cfg.logger)

	realm, err := intrinsics.New(interp)
	if err != nil {
		return nil, err
	}

	resolver := cfg.resolver
	if resolver == nil {
		resolver = module.NewDefaultResolver(nil, nil)
	}

	e := &Engine{
		cfg:        cfg,
		mem:        mem,
		gc:         collector,
		interp:     interp,
		realm:      realm,
		resolver:   resolver,
		loader:     cfg.loader,
		transpiler: cfg.transpiler,
		compiler:   cfg.compiler,
	}
	if cfg.cache != nil {
		e.cache = cfg.cache.compiled
	}

	if cfg.interruptAfter > 0 {
		e.startWatchdog(cfg.interruptAfter)
	}

	return e, nil
}

// startWatchdog arms a background timer that interrupts the engine
// after d unless Close is called first (the "watchdog" half of spec
// §5's interruption story described on EngineConfig.WithInterruptWatchdog).
func (e *Engine) startWatchdog(d time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	e.watchdogCancel = cancel
	go func() {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			e.interp.Interrupt()
		case <-ctx.Done():
		}
	}()
}

// Close releases the engine's background watchdog timer, if any. An
// Engine with no watchdog configured need not be closed.
func (e *Engine) Close() {
	if e.watchdogCancel != nil {
		e.watchdogCancel()
	}
}

// Eval compiles source under sourceURL (used only for diagnostics — no
// module resolution happens for a bare Eval) and runs its top-level
// code as a script (spec §6 "Engine::eval(source, source_url) ->
// Result<Value>").
func (e *Engine) Eval(source, sourceURL string) (api.Value, error) {
	if e.compiler == nil {
		return api.Undefined, &ottererr.CompileError{Message: "no compiler configured", File: sourceURL}
	}

	execID := uuid.New().String()[:8]
	e.cfg.logger.Log(logging.ScopeInterpreter, "eval started", "exec_id", execID, "source_url", sourceURL)

	mod, err := e.compileCached(source, sourceURL)
	if err != nil {
		return api.Undefined, err
	}
	return e.runEntry(mod)
}

// EvalModule resolves, loads, and (when needed) transpiles entry and
// its transitive dependencies, compiles each in dependency order, and
// runs the entry module's top-level code (spec §6 "Engine::eval_module
// (url) -> Result<Value>", §4.8's graph-building algorithm).
func (e *Engine) EvalModule(ctx context.Context, entryURL string) (api.Value, error) {
	if e.loader == nil {
		return api.Undefined, &ottererr.ModuleError{Kind: ottererr.ModuleResolution, URL: entryURL}
	}
	if e.compiler == nil {
		return api.Undefined, &ottererr.CompileError{Message: "no compiler configured", File: entryURL}
	}

	execID := uuid.New().String()[:8]
	e.cfg.logger.Log(logging.ScopeModuleGraph, "eval_module started", "exec_id", execID, "entry_url", entryURL)

	g := module.NewGraph(e.resolver, e.loader, e.transpiler)
	g.SetLogger(e.cfg.logger)
	if err := g.Load(ctx, entryURL); err != nil {
		return api.Undefined, err
	}

	canonicalEntry, err := e.resolver.Resolve(entryURL, "")
	if err != nil {
		return api.Undefined, err
	}

	var result api.Value
	for _, url := range g.ExecutionOrder() {
		node, ok := g.Get(url)
		if !ok {
			continue
		}
		mod, err := e.compileCached(node.ExecutableSource(), node.URL)
		if err != nil {
			return api.Undefined, err
		}
		v, err := e.runEntry(mod)
		if err != nil {
			return api.Undefined, err
		}
		if node.URL == canonicalEntry {
			result = v
		}
	}
	return result, nil
}

// compileCached consults the configured compilation cache before
// invoking the compiler, and populates it afterward (spec's
// supplemented source_hash cache-invalidation scheme described on
// EngineConfig.WithCompilationCache).
func (e *Engine) compileCached(source, sourceURL string) (*bytecode.Module, error) {
	if e.cache != nil {
		if mod, ok, err := e.cache.Get(source); err != nil {
			return nil, err
		} else if ok {
			return mod, nil
		}
	}

	mod, err := e.compiler.Compile(source, sourceURL)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		if err := e.cache.Put(source, mod); err != nil {
			return nil, err
		}
	}
	return mod, nil
}

// runEntry invokes a compiled module's designated entry function as a
// plain call against the global object, the mechanical step
// Engine.Eval and Engine.EvalModule both reduce to once source has
// become bytecode.
func (e *Engine) runEntry(mod *bytecode.Module) (api.Value, error) {
	closure, err := value.NewClosure(e.gc, mod, mod.EntryPoint, mod.SourceURL, nil)
	if err != nil {
		return api.Undefined, err
	}
	v, err := e.interp.Call(closure, value.NewObject(e.interp.Global()), nil, false)
	if err != nil {
		return api.Undefined, err
	}
	return api.WrapValue(v), nil
}

// InterruptFlag returns the atomic flag a host can flip from another
// goroutine to abort a long-running script (spec §6
// "Engine::interrupt_flag() -> AtomicBoolRef"), independent of whether
// WithInterruptWatchdog is configured.
func (e *Engine) InterruptFlag() *atomic.Bool {
	return e.interp.InterruptFlag()
}

// CollectGarbage forces an immediate full collection and returns the
// number of bytes reclaimed (spec §6 "Engine::collect_garbage() ->
// usize").
func (e *Engine) CollectGarbage() uint64 {
	stats := e.gc.Collect()
	e.mem.OnGCComplete(stats.LiveBytes)
	return stats.SweptBytes
}

// RegisterNative installs fn as a global function callable by name
// (spec §6 "Engine::register_native(name, fn)").
func (e *Engine) RegisterNative(name string, fn api.NativeFunc) error {
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
	return e.interp.Global().DefineOwnProperty(e.gc, value.StringKey(name),
		value.NewDataProperty(value.NewFunction(closure), value.MethodAttrs()))
}

// Global returns the engine's global object (spec §6
// "Engine::global() -> ObjectRef").
func (e *Engine) Global() api.Value {
	return api.WrapValue(value.NewObject(e.interp.Global()))
}
