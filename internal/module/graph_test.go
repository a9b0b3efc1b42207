package module

import (
	"context"
	"testing"

	"github.com/otterjs/otter/internal/ottererr"
	"github.com/stretchr/testify/require"
)

func TestGraph_LoadsLinearDependencyChain(t *testing.T) {
	loader := MapLoader{
		"/shapes.js": {URL: "/shapes.js", Text: `import { PI, square } from './utils.js';`},
		"/utils.js":  {URL: "/utils.js", Text: `export const PI = 3.14159;`},
	}
	g := NewGraph(NewDefaultResolver(nil, nil), loader, nil)
	require.NoError(t, g.Load(context.Background(), "/shapes.js"))
	require.Equal(t, 2, g.Len())

	order := g.ExecutionOrder()
	require.Equal(t, []string{"/utils.js", "/shapes.js"}, order)
}

func TestGraph_CircularDependencyDetected(t *testing.T) {
	loader := MapLoader{
		"/a.js": {URL: "/a.js", Text: `import './b.js';`},
		"/b.js": {URL: "/b.js", Text: `import './a.js';`},
	}
	g := NewGraph(NewDefaultResolver(nil, nil), loader, nil)
	err := g.Load(context.Background(), "/a.js")
	require.Error(t, err)

	var modErr *ottererr.ModuleError
	require.ErrorAs(t, err, &modErr)
	require.Equal(t, ottererr.ModuleCircular, modErr.Kind)
	require.Contains(t, modErr.Cycle, "/a.js")
	require.Contains(t, modErr.Cycle, "/b.js")
}

func TestGraph_NodeBuiltinSkipsImportScanning(t *testing.T) {
	loader := MapLoader{
		"/main.js": {URL: "/main.js", Text: `import fs from 'node:fs';`},
		"node:fs":  {URL: "node:fs", Text: ""},
	}
	g := NewGraph(NewDefaultResolver(nil, nil), loader, nil)
	require.NoError(t, g.Load(context.Background(), "/main.js"))

	node, ok := g.Get("node:fs")
	require.True(t, ok)
	require.Empty(t, node.Dependencies)
}

func TestGraph_MissingModuleFails(t *testing.T) {
	g := NewGraph(NewDefaultResolver(nil, nil), MapLoader{}, nil)
	err := g.Load(context.Background(), "/missing.js")
	require.Error(t, err)
	var modErr *ottererr.ModuleError
	require.ErrorAs(t, err, &modErr)
	require.Equal(t, ottererr.ModuleNotFound, modErr.Kind)
}

type stubTranspiler struct{}

func (stubTranspiler) TranspileTypeScript(source string) (string, string, error) {
	return "/* transpiled */ " + source, "", nil
}

func TestGraph_TranspilesTypeScriptSources(t *testing.T) {
	loader := MapLoader{
		"/main.ts": {URL: "/main.ts", Text: `const x: number = 1;`, MediaType: MediaTypeScript},
	}
	g := NewGraph(NewDefaultResolver(nil, nil), loader, stubTranspiler{})
	require.NoError(t, g.Load(context.Background(), "/main.ts"))

	node, ok := g.Get("/main.ts")
	require.True(t, ok)
	require.Contains(t, node.ExecutableSource(), "transpiled")
}

func TestGraph_TypeScriptWithoutTranspilerFails(t *testing.T) {
	loader := MapLoader{
		"/main.ts": {URL: "/main.ts", Text: `const x: number = 1;`, MediaType: MediaTypeScript},
	}
	g := NewGraph(NewDefaultResolver(nil, nil), loader, nil)
	err := g.Load(context.Background(), "/main.ts")
	require.Error(t, err)
	var modErr *ottererr.ModuleError
	require.ErrorAs(t, err, &modErr)
	require.Equal(t, ottererr.ModuleTranspile, modErr.Kind)
}
