package module

import (
	"bytes"
	"crypto/sha256"
	"io"

	"github.com/otterjs/otter/internal/bytecode"
	"github.com/otterjs/otter/internal/compilationcache"
)

// CompiledCache fronts a compilationcache.Cache, keyed by SHA-256 over
// source text (spec's supplemented "source_hash as SHA-256 over source
// text for module cache invalidation"): a graph load that re-encounters
// byte-identical source skips recompilation entirely, and source that
// changed even by one byte misses and recompiles.
type CompiledCache struct {
	backing compilationcache.Cache
}

// NewCompiledCache wraps an existing compilationcache.Cache (the
// teacher's own file-backed implementation, or any other Cache
// implementation) as a module bytecode cache.
func NewCompiledCache(backing compilationcache.Cache) *CompiledCache {
	return &CompiledCache{backing: backing}
}

// HashSource computes the cache key for a module's source text.
func HashSource(source string) compilationcache.Key {
	return sha256.Sum256([]byte(source))
}

// Get returns the previously-compiled module for source's hash, if any.
func (c *CompiledCache) Get(source string) (*bytecode.Module, bool, error) {
	if c.backing == nil {
		return nil, false, nil
	}
	key := HashSource(source)
	content, ok, err := c.backing.Get(key)
	if err != nil || !ok {
		return nil, false, err
	}
	defer content.Close()

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, false, err
	}
	mod, err := bytecode.Decode(data)
	if err != nil {
		return nil, false, err
	}
	return mod, true, nil
}

// Put stores mod under the hash of source, so a future Get for the same
// source text short-circuits compilation.
func (c *CompiledCache) Put(source string, mod *bytecode.Module) error {
	if c.backing == nil {
		return nil
	}
	key := HashSource(source)
	data, err := bytecode.Encode(mod)
	if err != nil {
		return err
	}
	return c.backing.Add(key, bytes.NewReader(data))
}
