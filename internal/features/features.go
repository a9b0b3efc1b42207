// Package features implements the global feature-flagging mechanism behind
// EngineConfig.WithFeature (spec §10.3): properties of the engine that only
// make sense toggled process-wide, such as which GC mode the collector
// runs in, rather than threaded through every call site that cares.
package features

import (
	"os"
	"strings"
	"sync"
)

const (
	// EnvVarName is the name of the environment variable which contains the
	// list of feature flags.
	EnvVarName = "OTTERFEATURES"

	// MinorGC names the minor/generational collection mode. The flag is
	// recorded only: the collector does not read it, and safepoints always
	// run a full Collect.
	MinorGC = "minor-gc"
	// InlineCaches names the IC feedback-vector fast path (spec §4.6). The
	// flag is recorded only: the interpreter does not read it, and property
	// access always consults the feedback vector.
	InlineCaches = "ic"
)

var (
	lock sync.RWMutex
	list []string
)

// EnableFromEnvironment extracts the list of features enabled from the
// OTTERFEATURES environment variable.
func EnableFromEnvironment() {
	features := os.Getenv(EnvVarName)
	Enable(strings.Split(features, ",")...)
}

// Enable the list of features passed as arguments.
//
// The function is idempotent and atomic, features that are already present are
// skipped.
//
// Unrecognized features are ignored.
func Enable(features ...string) {
	lock.Lock()
	defer lock.Unlock()

	enabled := list

	for _, f := range features {
		if supported(f) && !have(enabled, f) {
			enabled = append(enabled, f)
		}
	}

	list = enabled
}

// List returns the current list of globally-enabled features.
//
// The program must treat the returned slice as read-only.
func List() []string {
	lock.RLock()
	defer lock.RUnlock()
	return list
}

// Have returns true if the given feature is enabled.
func Have(feature string) bool {
	lock.RLock()
	features := list
	lock.RUnlock()
	return have(features, feature)
}

func have(list []string, feature string) bool {
	for _, f := range list {
		if f == feature {
			return true
		}
	}
	return false
}

func supported(feature string) bool {
	switch feature {
	case MinorGC, InlineCaches:
		return true
	default:
		return false
	}
}
