package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManager_AllocWithinLimit(t *testing.T) {
	m := NewManager(100)
	require.NoError(t, m.Alloc(40))
	require.Equal(t, uint64(40), m.Allocated())
	require.Equal(t, uint64(1), m.AllocationCount())
}

func TestManager_AllocOverLimitFails(t *testing.T) {
	m := NewManager(100)
	require.NoError(t, m.Alloc(80))
	err := m.Alloc(30)
	require.Error(t, err)
	require.Equal(t, uint64(80), m.Allocated(), "failed alloc must not mutate the counter")
}

func TestManager_FreeReducesAllocated(t *testing.T) {
	m := NewManager(100)
	require.NoError(t, m.Alloc(50))
	m.Free(20)
	require.Equal(t, uint64(30), m.Allocated())
}

func TestManager_ShouldCollect_ExplicitRequest(t *testing.T) {
	m := NewUnbounded()
	require.False(t, m.ShouldCollect())
	m.RequestGC()
	require.True(t, m.ShouldCollect())
}

func TestManager_ShouldCollect_AllocationCountThreshold(t *testing.T) {
	m := NewUnbounded()
	m.SetAllocationCountThreshold(3)
	for i := 0; i < 2; i++ {
		require.NoError(t, m.Alloc(1))
	}
	require.False(t, m.ShouldCollect())
	require.NoError(t, m.Alloc(1))
	require.True(t, m.ShouldCollect())
}

func TestManager_ShouldCollect_ByteThreshold(t *testing.T) {
	m := NewUnbounded()
	m.SetAllocationCountThreshold(1 << 30) // disable the count trigger
	require.NoError(t, m.Alloc(minThreshold+1))
	require.True(t, m.ShouldCollect())
}

func TestManager_OnGCComplete_ResetsAndAdapts(t *testing.T) {
	m := NewUnbounded()
	m.RequestGC()
	require.NoError(t, m.Alloc(10))

	m.OnGCComplete(10 * 1024 * 1024) // 10MiB live

	require.False(t, m.ShouldCollect())
	require.Equal(t, uint64(0), m.AllocationCount())
	require.Equal(t, uint64(10*1024*1024), m.LastLiveBytes())
	require.Equal(t, uint64(20*1024*1024), m.GCThreshold())
}

func TestManager_OnGCComplete_MinThresholdFloor(t *testing.T) {
	m := NewUnbounded()
	m.OnGCComplete(10) // tiny live set
	require.Equal(t, uint64(minThreshold), m.GCThreshold())
}

func TestTracked_ReleaseReturnsBytes(t *testing.T) {
	m := NewManager(100)
	tr, err := NewTracked("payload", 30, m)
	require.NoError(t, err)
	require.Equal(t, uint64(30), m.Allocated())
	require.Equal(t, "payload", tr.Inner())

	tr.Release()
	require.Equal(t, uint64(0), m.Allocated())
}

func TestTracked_NewTrackedFailsOverLimit(t *testing.T) {
	m := NewManager(10)
	_, err := NewTracked(1, 20, m)
	require.Error(t, err)
}
