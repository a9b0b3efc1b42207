package otter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/otterjs/otter/internal/compilationcache"
	"github.com/otterjs/otter/internal/module"
)

// Cache is the configuration for bytecode-compilation caching across
// Engine instances (spec §12.5's supplemented source_hash scheme),
// adapted from the teacher's Cache/cache.go: a directory-backed store
// keyed by SHA-256 of source text, shared across every Engine built with
// EngineConfig.WithCompilationCache(this).
//
// One Cache value may back any number of Engines; multiple Engines must
// not share the same directory unless they also share this Cache value.
type Cache interface {
	// WithCompilationCacheDirName configures the destination directory
	// of the compilation cache. If the directory doesn't exist, this
	// creates it.
	WithCompilationCacheDirName(dir string) error
}

// NewCache returns a new Cache to be passed to EngineConfig.WithCompilationCache.
func NewCache() Cache {
	return &cacheImpl{}
}

// cacheImpl implements Cache.
type cacheImpl struct {
	compiled *module.CompiledCache
}

// WithCompilationCacheDirName implements Cache.
func (c *cacheImpl) WithCompilationCacheDirName(dir string) error {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := mkdir(dir); err != nil {
		return err
	}
	ctx := context.WithValue(context.Background(), compilationcache.FileCachePathKey{}, dir)
	c.compiled = module.NewCompiledCache(compilationcache.NewFileCache(ctx))
	return nil
}

func mkdir(dirname string) error {
	if st, err := os.Stat(dirname); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirname, 0o700); err != nil {
			return fmt.Errorf("create directory %s: %v", dirname, err)
		}
	} else if err != nil {
		return err
	} else if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", dirname)
	}
	return nil
}
