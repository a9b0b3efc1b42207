package otter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/otterjs/otter/internal/features"
	"github.com/otterjs/otter/internal/logging"
	"github.com/otterjs/otter/internal/module"
)

func TestEngineConfig_Defaults(t *testing.T) {
	c := NewEngineConfig()
	require.Equal(t, uint64(defaultMemoryLimit), c.memoryLimit)
	require.Equal(t, defaultMaxCallDepth, c.maxCallDepth)
	require.Equal(t, time.Duration(0), c.interruptAfter)
	require.Nil(t, c.resolver)
	require.Nil(t, c.loader)
	require.Nil(t, c.compiler)
	require.NotNil(t, c.logger)
}

func TestEngineConfig_WithMethodsReturnNewValue(t *testing.T) {
	tests := []struct {
		name string
		with func(*EngineConfig) *EngineConfig
		want func(t *testing.T, c *EngineConfig)
	}{
		{
			name: "WithMemoryLimit",
			with: func(c *EngineConfig) *EngineConfig { return c.WithMemoryLimit(1024) },
			want: func(t *testing.T, c *EngineConfig) { require.Equal(t, uint64(1024), c.memoryLimit) },
		},
		{
			name: "WithMaxCallStackDepth",
			with: func(c *EngineConfig) *EngineConfig { return c.WithMaxCallStackDepth(64) },
			want: func(t *testing.T, c *EngineConfig) { require.Equal(t, 64, c.maxCallDepth) },
		},
		{
			name: "WithGCThreshold",
			with: func(c *EngineConfig) *EngineConfig { return c.WithGCThreshold(4096) },
			want: func(t *testing.T, c *EngineConfig) { require.Equal(t, uint64(4096), c.gcThreshold) },
		},
		{
			name: "WithGCAllocationCountThreshold",
			with: func(c *EngineConfig) *EngineConfig { return c.WithGCAllocationCountThreshold(100) },
			want: func(t *testing.T, c *EngineConfig) { require.Equal(t, uint64(100), c.gcAllocCount) },
		},
		{
			name: "WithInterruptWatchdog",
			with: func(c *EngineConfig) *EngineConfig { return c.WithInterruptWatchdog(5 * time.Second) },
			want: func(t *testing.T, c *EngineConfig) { require.Equal(t, 5*time.Second, c.interruptAfter) },
		},
		{
			name: "WithFeature enables the named feature globally",
			with: func(c *EngineConfig) *EngineConfig { return c.WithFeature(features.InlineCaches, true) },
			want: func(t *testing.T, c *EngineConfig) {
				require.True(t, c.features[features.InlineCaches])
				require.True(t, features.Have(features.InlineCaches))
			},
		},
		{
			name: "WithModuleResolver",
			with: func(c *EngineConfig) *EngineConfig {
				return c.WithModuleResolver(module.NewDefaultResolver(nil, nil))
			},
			want: func(t *testing.T, c *EngineConfig) { require.NotNil(t, c.resolver) },
		},
		{
			name: "WithModuleLoader",
			with: func(c *EngineConfig) *EngineConfig {
				return c.WithModuleLoader(module.MapLoader{})
			},
			want: func(t *testing.T, c *EngineConfig) { require.NotNil(t, c.loader) },
		},
		{
			name: "WithCompiler",
			with: func(c *EngineConfig) *EngineConfig {
				return c.WithCompiler(constCompiler{value: 1})
			},
			want: func(t *testing.T, c *EngineConfig) { require.NotNil(t, c.compiler) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			base := NewEngineConfig()
			got := tc.with(base)
			tc.want(t, got)
			// The base config is untouched: every With* returns a clone.
			require.Equal(t, NewEngineConfig().memoryLimit, base.memoryLimit)
		})
	}
}

func TestEngineConfig_WithLoggerNilInstallsNoop(t *testing.T) {
	c := NewEngineConfig().WithLogger(nil)
	require.Equal(t, logging.Noop(), c.logger)
}

func TestEngineConfig_WithCompilationCacheWiresCacheImpl(t *testing.T) {
	cache := NewCache()
	c := NewEngineConfig().WithCompilationCache(cache)
	require.NotNil(t, c.cache)
	require.Same(t, cache.(*cacheImpl), c.cache)
}
