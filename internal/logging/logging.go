// Package logging is a minimal structured-logging facade (spec §10.2):
// a scoped Logger interface with a no-op default, the way the teacher's
// own internal/logging decouples WASI call tracing from any particular
// logging backend so an embedding host can wire in its own. Otter's
// version drops the WASI-specific value-type formatting entirely — there
// is no wasm ABI here — and keeps only the scope/message/key-value shape,
// scoped to the subsystems the engine itself emits from: GC, the module
// graph, and the interpreter.
package logging

// Scope names the subsystem a log line originates from, so a host can
// filter ("only show me GC events") without parsing message text.
type Scope string

const (
	ScopeGC          Scope = "gc"
	ScopeModuleGraph Scope = "module"
	ScopeInterpreter Scope = "interpreter"
)

// Logger is the sink the engine writes scoped log lines to. Hosts that
// already own a structured logger (zap, slog, logrus) implement this
// with a one-line adapter; EngineConfig.WithLogger installs it.
type Logger interface {
	Log(scope Scope, msg string, kv ...any)
}

// noopLogger discards everything, the default until a host calls
// WithLogger (mirrors the teacher's own "logging is off unless asked
// for" default).
type noopLogger struct{}

func (noopLogger) Log(Scope, string, ...any) {}

// Noop returns the shared no-op Logger.
func Noop() Logger { return noopLogger{} }
