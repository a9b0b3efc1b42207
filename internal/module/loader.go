package module

import (
	"context"

	"github.com/otterjs/otter/internal/bytecode"
	"github.com/otterjs/otter/internal/ottererr"
)

// MediaType distinguishes how a loaded source must be processed before
// it can be compiled to bytecode (spec §4.8 "record its media type").
type MediaType uint8

const (
	MediaJavaScript MediaType = iota
	MediaTypeScript
	MediaJSON
)

// Source is one loaded module's raw text plus its media type, the
// payload the Loader contract hands back for a canonical URL.
type Source struct {
	URL       string
	Text      string
	MediaType MediaType
}

// Loader implements spec §4.8's loader contract: given a canonical URL,
// fetch the source text and record its media type. Implementations
// decide how "fetch" works (filesystem, HTTP, an in-memory map for
// tests); the graph only needs this interface.
type Loader interface {
	Load(ctx context.Context, canonicalURL string) (Source, error)
}

// Transpiler implements spec §6's transpiler contract, consumed by the
// graph when a loaded module's MediaType is MediaTypeScript.
type Transpiler interface {
	TranspileTypeScript(source string) (code string, sourceMap string, err error)
}

// Compiler turns already-transpiled JS source text into a bytecode
// Module (spec §4.3/§4.8). Parsing and code generation from source text
// are a host concern the same way the Transpiler is — the graph only
// ever hands a Compiler the ExecutableSource of nodes in
// Graph.ExecutionOrder; the engine core never inspects JS syntax
// itself. A nil Compiler on Engine means Eval/EvalModule fail with
// CompileError rather than panicking.
type Compiler interface {
	Compile(source, sourceURL string) (*bytecode.Module, error)
}

// MapLoader is an in-memory Loader, the shape test suites and the
// `node:`-builtin registry both want: a fixed table of URL to source.
type MapLoader map[string]Source

func (m MapLoader) Load(_ context.Context, canonicalURL string) (Source, error) {
	src, ok := m[canonicalURL]
	if !ok {
		return Source{}, &ottererr.ModuleError{Kind: ottererr.ModuleNotFound, URL: canonicalURL}
	}
	return src, nil
}
