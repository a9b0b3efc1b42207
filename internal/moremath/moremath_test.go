package moremath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSCompatMin(t *testing.T) {
	require.Equal(t, JSCompatMin(-1.1, 123), -1.1)
	require.Equal(t, JSCompatMin(-1.1, math.Inf(1)), -1.1)
	require.Equal(t, JSCompatMin(math.Inf(-1), 123), math.Inf(-1))
	require.Equal(t, JSCompatMin(math.Copysign(0, -1), 0.0), math.Copysign(0, -1))
	require.Equal(t, JSCompatMin(0.0, math.Copysign(0, -1)), math.Copysign(0, -1))

	require.True(t, math.IsNaN(JSCompatMin(math.NaN(), 1.0)))
	require.True(t, math.IsNaN(JSCompatMin(1.0, math.NaN())))
	require.True(t, math.IsNaN(JSCompatMin(math.Inf(-1), math.NaN())))
	require.True(t, math.IsNaN(JSCompatMin(math.Inf(1), math.NaN())))
	require.True(t, math.IsNaN(JSCompatMin(math.NaN(), math.NaN())))
}

func TestJSCompatMax(t *testing.T) {
	require.Equal(t, JSCompatMax(-1.1, 123.1), 123.1)
	require.Equal(t, JSCompatMax(-1.1, math.Inf(1)), math.Inf(1))
	require.Equal(t, JSCompatMax(math.Inf(-1), 123.1), 123.1)
	require.Equal(t, JSCompatMax(math.Copysign(0, -1), 0.0), 0.0)
	require.Equal(t, JSCompatMax(0.0, math.Copysign(0, -1)), 0.0)

	require.True(t, math.IsNaN(JSCompatMax(math.NaN(), 1.0)))
	require.True(t, math.IsNaN(JSCompatMax(1.0, math.NaN())))
	require.True(t, math.IsNaN(JSCompatMax(math.Inf(-1), math.NaN())))
	require.True(t, math.IsNaN(JSCompatMax(math.Inf(1), math.NaN())))
	require.True(t, math.IsNaN(JSCompatMax(math.NaN(), math.NaN())))
}
