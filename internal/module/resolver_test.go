package module

import (
	"testing"

	"github.com/otterjs/otter/internal/ottererr"
	"github.com/stretchr/testify/require"
)

func TestDefaultResolver_RelativeAgainstReferrer(t *testing.T) {
	r := NewDefaultResolver(nil, nil)
	got, err := r.Resolve("./utils.js", "/app/shapes.js")
	require.NoError(t, err)
	require.Equal(t, "/app/utils.js", got)
}

func TestDefaultResolver_NodeBuiltinPassesThrough(t *testing.T) {
	r := NewDefaultResolver(nil, nil)
	got, err := r.Resolve("node:fs", "/app/main.js")
	require.NoError(t, err)
	require.Equal(t, "node:fs", got)
}

func TestDefaultResolver_BareSpecifierUsesImportMap(t *testing.T) {
	r := NewDefaultResolver(ImportMap{"lodash": "https://esm.sh/lodash"}, func(u string) bool { return true })
	got, err := r.Resolve("lodash", "/app/main.js")
	require.NoError(t, err)
	require.Equal(t, "https://esm.sh/lodash", got)
}

func TestDefaultResolver_UnmappedBareSpecifierFails(t *testing.T) {
	r := NewDefaultResolver(nil, nil)
	_, err := r.Resolve("lodash", "/app/main.js")
	require.Error(t, err)
	var modErr *ottererr.ModuleError
	require.ErrorAs(t, err, &modErr)
	require.Equal(t, ottererr.ModuleResolution, modErr.Kind)
}

func TestDefaultResolver_RemoteSpecifierRejectedWithoutAllowlist(t *testing.T) {
	r := NewDefaultResolver(nil, nil)
	_, err := r.Resolve("https://evil.example/payload.js", "")
	require.Error(t, err)
}

func TestDefaultResolver_RemoteSpecifierAllowedByAllowlist(t *testing.T) {
	r := NewDefaultResolver(nil, func(u string) bool { return u == "https://esm.sh/bar" })
	got, err := r.Resolve("https://esm.sh/bar", "")
	require.NoError(t, err)
	require.Equal(t, "https://esm.sh/bar", got)
}
