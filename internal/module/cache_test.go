package module

import (
	"context"
	"testing"

	"github.com/otterjs/otter/internal/bytecode"
	"github.com/otterjs/otter/internal/compilationcache"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *CompiledCache {
	t.Helper()
	ctx := context.WithValue(context.Background(), compilationcache.FileCachePathKey{}, t.TempDir())
	return NewCompiledCache(compilationcache.NewFileCache(ctx))
}

func buildTestModule(t *testing.T) bytecode.Module {
	t.Helper()
	mb := bytecode.NewModuleBuilder("cache-test.js")
	fb := bytecode.NewFunctionBuilder("main")
	fn := fb.Build()
	idx := mb.AddFunction(fn)
	mb.WithEntryPoint(idx)
	return mb.Build()
}

func TestCompiledCache_MissThenHit(t *testing.T) {
	c := newTestCache(t)
	source := `const x = 1;`

	_, ok, err := c.Get(source)
	require.NoError(t, err)
	require.False(t, ok)

	mod := buildTestModule(t)
	require.NoError(t, c.Put(source, &mod))

	got, ok, err := c.Get(source)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, mod.SourceURL, got.SourceURL)
}

func TestCompiledCache_DifferentSourceDifferentKey(t *testing.T) {
	c := newTestCache(t)
	mod := buildTestModule(t)
	require.NoError(t, c.Put(`const x = 1;`, &mod))

	_, ok, err := c.Get(`const x = 2;`)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCompiledCache_NilBackingIsInert(t *testing.T) {
	c := NewCompiledCache(nil)
	mod := buildTestModule(t)
	require.NoError(t, c.Put("anything", &mod))
	_, ok, err := c.Get("anything")
	require.NoError(t, err)
	require.False(t, ok)
}
