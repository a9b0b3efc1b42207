// Package ottererr is the engine-level error taxonomy (spec §7). These
// are distinct from JS-level exceptions, which are plain value.Values
// thrown and caught entirely inside bytecode; everything here is what
// crosses the host embedding boundary or signals an interpreter-internal
// condition (stack overflow, interruption, a compile-time syntax error).
package ottererr

import "fmt"

// CompileError reports a syntax error from the bytecode compiler/parser.
type CompileError struct {
	Message string
	File    string
	Line    int
	Column  int
}

func (e *CompileError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("CompileError: %s", e.Message)
	}
	return fmt.Sprintf("CompileError: %s (%s:%d:%d)", e.Message, e.File, e.Line, e.Column)
}

// StackOverflow reports that the call stack exceeded its configured
// maximum depth (spec §4.5: "default max 10,000 frames").
type StackOverflow struct {
	MaxDepth int
}

func (e *StackOverflow) Error() string {
	return fmt.Sprintf("StackOverflow: exceeded max call depth of %d", e.MaxDepth)
}

// OutOfMemory reports that an allocation would exceed the configured heap
// limit. Mirrors memory.ErrOutOfMemory but lives here too since it's also
// a host-visible engine-level error (spec §7), not only a memory-manager
// internal.
type OutOfMemory struct {
	Requested uint64
	Limit     uint64
}

func (e *OutOfMemory) Error() string {
	return fmt.Sprintf("OutOfMemory: requested %d bytes against a %d byte limit", e.Requested, e.Limit)
}

// Interrupted reports that the host's interrupt flag tripped and the
// interpreter unwound at the next safepoint (spec §4.5, §5).
type Interrupted struct{}

func (e *Interrupted) Error() string { return "Interrupted: execution was cancelled by the host" }

// ModuleErrorKind distinguishes the module-graph failure modes (spec
// §4.8).
type ModuleErrorKind uint8

const (
	ModuleResolution ModuleErrorKind = iota
	ModuleNotFound
	ModuleCircular
	ModuleTranspile
)

func (k ModuleErrorKind) String() string {
	switch k {
	case ModuleResolution:
		return "Resolution"
	case ModuleNotFound:
		return "NotFound"
	case ModuleCircular:
		return "Circular"
	case ModuleTranspile:
		return "Transpile"
	default:
		return "Unknown"
	}
}

// ModuleError reports a failure while resolving, loading, or linking a
// module graph node.
type ModuleError struct {
	Kind ModuleErrorKind
	URL  string
	// Cycle carries the active DFS stack path when Kind == ModuleCircular.
	Cycle []string
}

func (e *ModuleError) Error() string {
	if e.Kind == ModuleCircular {
		return fmt.Sprintf("ModuleError(%s): %s (cycle: %v)", e.Kind, e.URL, e.Cycle)
	}
	return fmt.Sprintf("ModuleError(%s): %s", e.Kind, e.URL)
}

// Internal reports an invariant violation — always a bug in the engine
// itself, never something a host or script can trigger legitimately.
type Internal struct {
	Message string
}

func (e *Internal) Error() string { return "Internal: " + e.Message }

// ScriptError is a host-facing structured error for a JS-level exception,
// with a formatted stack, the same shape the CLI's `ErrorName: message`
// plus `at func (file:line:col)` frame listing is built from. The engine
// does not construct it: Engine.Eval and EvalModule return the
// interpreter's error for an uncaught exception unchanged, without the
// thrown value.
type ScriptError struct {
	Name    string
	Message string
	Stack   []StackFrame
}

// StackFrame is one formatted call-stack entry (spec §4.7 "Error stack
// capture": "{function, file, line, column}").
type StackFrame struct {
	Function string
	File     string
	Line     int
	Column   int
}

func (e *ScriptError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Name, e.Message)
	for _, f := range e.Stack {
		msg += fmt.Sprintf("\n    at %s (%s:%d:%d)", f.Function, f.File, f.Line, f.Column)
	}
	return msg
}
