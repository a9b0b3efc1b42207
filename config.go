package otter

import (
	"time"

	"github.com/otterjs/otter/internal/features"
	"github.com/otterjs/otter/internal/logging"
	"github.com/otterjs/otter/internal/module"
)

// defaultMaxCallDepth mirrors the interpreter package's own default
// (spec §4.5 "default max 10,000 frames"); kept here too so EngineConfig
// has a sane zero-value-free starting point independent of that
// package's constant ever changing.
const defaultMaxCallDepth = 10_000

// defaultMemoryLimit is an arbitrary but generous ceiling (256MiB) so a
// host that never calls WithMemoryLimit still gets OOM protection rather
// than the unbounded memory.NewUnbounded escape hatch tests use.
const defaultMemoryLimit = 256 * 1024 * 1024

// EngineConfig controls engine behavior, with the default implementation
// as NewEngineConfig (spec §10.3, adapted directly from the teacher's
// RuntimeConfig/config.go pattern: an immutable value built through
// chainable With* methods, passed to NewEngine).
type EngineConfig struct {
	memoryLimit    uint64
	maxCallDepth   int
	gcThreshold    uint64
	gcAllocCount   uint64
	features       map[string]bool
	logger         logging.Logger
	interruptAfter time.Duration
	resolver       module.Resolver
	loader         module.Loader
	transpiler     module.Transpiler
	compiler       module.Compiler
	cache          *cacheImpl
}

// NewEngineConfig returns the default configuration: a 256MiB heap limit,
// a 10,000-frame call stack, the adaptive GC threshold the memory
// manager itself defaults to, no logger (logging.Noop), and no interrupt
// watchdog.
func NewEngineConfig() *EngineConfig {
	return &EngineConfig{
		memoryLimit:  defaultMemoryLimit,
		maxCallDepth: defaultMaxCallDepth,
		features:     map[string]bool{},
		logger:       logging.Noop(),
	}
}

// clone ensures all fields are copied even if nil, the same defensive
// copy the teacher's RuntimeConfig.clone performs before every With*
// mutation so two configs derived from the same base never alias state.
func (c *EngineConfig) clone() *EngineConfig {
	feats := make(map[string]bool, len(c.features))
	for k, v := range c.features {
		feats[k] = v
	}
	return &EngineConfig{
		memoryLimit:    c.memoryLimit,
		maxCallDepth:   c.maxCallDepth,
		gcThreshold:    c.gcThreshold,
		gcAllocCount:   c.gcAllocCount,
		features:       feats,
		logger:         c.logger,
		interruptAfter: c.interruptAfter,
		resolver:       c.resolver,
		loader:         c.loader,
		transpiler:     c.transpiler,
		compiler:       c.compiler,
		cache:          c.cache,
	}
}

// WithMemoryLimit bounds the total bytes the memory manager will book
// against the heap before Alloc starts failing with OutOfMemory (spec
// §4.1, §7).
func (c *EngineConfig) WithMemoryLimit(bytes uint64) *EngineConfig {
	ret := c.clone()
	ret.memoryLimit = bytes
	return ret
}

// WithMaxCallStackDepth bounds the interpreter's call stack (spec
// §4.5); exceeding it raises StackOverflow.
func (c *EngineConfig) WithMaxCallStackDepth(depth int) *EngineConfig {
	ret := c.clone()
	ret.maxCallDepth = depth
	return ret
}

// WithGCThreshold sets the byte threshold past which the memory manager
// requests a collection at the next safepoint (spec §4.1 "decides when
// to collect"). Zero leaves the manager's own adaptive default in place.
func (c *EngineConfig) WithGCThreshold(bytes uint64) *EngineConfig {
	ret := c.clone()
	ret.gcThreshold = bytes
	return ret
}

// WithGCAllocationCountThreshold bounds how many allocations the engine
// performs between collections regardless of byte volume, the companion
// knob to WithGCThreshold (memory.Manager tracks both independently).
func (c *EngineConfig) WithGCAllocationCountThreshold(n uint64) *EngineConfig {
	ret := c.clone()
	ret.gcAllocCount = n
	return ret
}

// WithFeature toggles a named engine feature (mirrors the teacher's
// wasm.Features bitset gating WASM proposals). It records the flags named
// in internal/features, e.g. features.MinorGC and features.InlineCaches;
// no engine code reads them. Unrecognized names are accepted but have no
// effect, matching features.Enable's "unrecognized features are
// ignored" contract.
func (c *EngineConfig) WithFeature(name string, enabled bool) *EngineConfig {
	ret := c.clone()
	ret.features[name] = enabled
	if enabled {
		features.Enable(name)
	}
	return ret
}

// WithLogger installs the sink for GC/module-graph/interpreter log lines
// (spec §10.2). A nil logger installs logging.Noop.
func (c *EngineConfig) WithLogger(l logging.Logger) *EngineConfig {
	ret := c.clone()
	if l == nil {
		l = logging.Noop()
	}
	ret.logger = l
	return ret
}

// WithInterruptWatchdog arranges for a background timer to call
// Interrupt after d if the engine is still executing, the "watchdog"
// half of spec §5's interruption story (the other half, a host manually
// flipping InterruptFlag from another goroutine, always works
// regardless of this setting). Zero disables the watchdog (the
// default): only explicit host interruption applies.
func (c *EngineConfig) WithInterruptWatchdog(d time.Duration) *EngineConfig {
	ret := c.clone()
	ret.interruptAfter = d
	return ret
}

// WithModuleResolver installs the resolver consulted by EvalModule (spec
// §4.8's resolver contract). Defaults to
// module.NewDefaultResolver(nil, nil) (no import map, no remote
// specifiers permitted).
func (c *EngineConfig) WithModuleResolver(r module.Resolver) *EngineConfig {
	ret := c.clone()
	ret.resolver = r
	return ret
}

// WithModuleLoader installs the loader consulted by EvalModule (spec
// §4.8's loader contract / §6's "load(url) -> {source, media_type}").
func (c *EngineConfig) WithModuleLoader(l module.Loader) *EngineConfig {
	ret := c.clone()
	ret.loader = l
	return ret
}

// WithTranspiler installs the TypeScript transpiler consulted when a
// loaded module's MediaType is MediaTypeScript (spec §6's transpiler
// contract). A nil transpiler (the default) makes TypeScript sources
// fail to load with a ModuleTranspile error.
func (c *EngineConfig) WithTranspiler(t module.Transpiler) *EngineConfig {
	ret := c.clone()
	ret.transpiler = t
	return ret
}

// WithCompiler installs the source-to-bytecode compiler Eval and
// EvalModule use (spec §6 "compile + run"). Parsing and code generation
// from JS/TS source text are a host concern the engine core narrows to
// this one interface — see module.Compiler's doc comment. A nil
// compiler (the default) makes Eval/EvalModule fail with CompileError.
func (c *EngineConfig) WithCompiler(comp module.Compiler) *EngineConfig {
	ret := c.clone()
	ret.compiler = comp
	return ret
}

// WithCompilationCache wires a bytecode.Module cache keyed by SHA-256 of
// source text (spec §12.5's supplemented source_hash invalidation
// scheme) so EvalModule skips recompiling unchanged sources across
// Engine instances that share the same Cache.
func (c *EngineConfig) WithCompilationCache(cache Cache) *EngineConfig {
	ret := c.clone()
	if ci, ok := cache.(*cacheImpl); ok {
		ret.cache = ci
	}
	return ret
}
