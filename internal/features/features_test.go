package features_test

import (
	"os"
	"runtime"
	"testing"

	"github.com/otterjs/otter/internal/features"
	"github.com/stretchr/testify/require"
)

func init() {
	os.Setenv(features.EnvVarName, features.MinorGC+","+features.InlineCaches+",nope")
	features.EnableFromEnvironment()
}

func TestList(t *testing.T) {
	require.ElementsMatch(t, []string{features.MinorGC, features.InlineCaches}, features.List())
}

func TestHave(t *testing.T) {
	require.True(t, features.Have(features.MinorGC))
	require.True(t, features.Have(features.InlineCaches))
	require.False(t, features.Have("nope"))
}

func TestAllocsHaveEnabled(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("accessing features allocates memory on windows")
	}
	require.Equal(t, 0.0, testing.AllocsPerRun(100, func() {
		features.Have(features.InlineCaches)
	}))
}

func TestAllocsHaveDisabled(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("accessing features allocates memory on windows")
	}
	require.Equal(t, 0.0, testing.AllocsPerRun(100, func() {
		features.Have("nope")
	}))
}
