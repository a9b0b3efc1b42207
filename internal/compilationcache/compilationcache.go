package compilationcache

import (
	"crypto/sha256"
	"io"
)

// Cache is the interface for compiled-module caches. The engine compiles
// source text down to this module's own bytecode (internal/bytecode); that
// compilation pass is the expensive step a host may want to skip across
// process restarts by persisting the result keyed on the source's hash.
// The in-process module cache (internal/module) always holds the compiled
// functions for as long as the owning Engine lives; this Cache is the
// optional layer underneath it that survives past that lifetime.
//
// Since these methods are concurrently accessed, implementations must be
// goroutine-safe.
//
// See NewFileCache for the example implementation.
type Cache interface {
	// Get is called when the engine is trying to get the cached content.
	// Implementations are supposed to return `content` which can be used to
	// read the content passed by Add as-is. Returns ok=true if the
	// content was found on the cache. That means the content is not empty
	// if and only if ok=true. In the case of not-found, this should return
	// ok=false with err=nil. content.Close() is automatically called by
	// the caller of this Get.
	//
	// Note: the returned content skips the validation pass applied when
	// bytecode is compiled from source without a cache hit. Implementors
	// that want the same guarantee back should add their own integrity
	// check — for example, sign the bytes passed to Add and verify the
	// signature of the stored cache before returning it from Get.
	Get(key Key) (content io.ReadCloser, ok bool, err error)
	// Add is called when the engine is trying to add a new cache entry.
	// The given `content` must be un-modified, and returned as-is in Get method.
	//
	// Note: `content` is only as trustworthy as whatever validation the
	// compiler already ran on the source it was compiled from.
	Add(key Key, content io.Reader) (err error)
	// Delete is called when the cache entry for `key` returned by Get is no
	// longer usable and must be purged — for example, when the engine's
	// bytecode format version has changed since the entry was written.
	Delete(key Key) (err error)
}

// Key represents the 256-bit unique identifier assigned to each cache content.
type Key = [sha256.Size]byte
