package group

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Self(t *testing.T) {
	g, err := Init(os.Getpid(), false)
	require.NoError(t, err)
	defer g.Close()

	require.Len(t, g.Live, 1)
	assert.Equal(t, os.Getpid(), g.Live[0].PID)
}

func TestAggregateCPUUsage_UnmeasuredIsNegativeOne(t *testing.T) {
	g, err := Init(os.Getpid(), false)
	require.NoError(t, err)
	defer g.Close()

	assert.Equal(t, -1.0, g.AggregateCPUUsage(), "first cycle has no dt, so nothing is measured yet")
}

func TestUpdate_BelowMinDT_NeverMeasures(t *testing.T) {
	g, err := Init(os.Getpid(), false)
	require.NoError(t, err)
	defer g.Close()

	require.NoError(t, g.Update())
	assert.Equal(t, -1.0, g.AggregateCPUUsage(), "dt below MIN_DT must not advance smoothed usage")
}

func TestUpdate_AfterMinDT_Measures(t *testing.T) {
	g, err := Init(os.Getpid(), false)
	require.NoError(t, err)
	defer g.Close()

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, g.Update())

	usage := g.AggregateCPUUsage()
	assert.GreaterOrEqual(t, usage, 0.0)
}

func TestUpdate_NonexistentTarget_EmptiesGroup(t *testing.T) {
	g, err := Init(1<<30, false)
	require.NoError(t, err)
	defer g.Close()

	assert.Empty(t, g.Live)
}

func TestRemovePID_DropsFromLiveAndHistory(t *testing.T) {
	g, err := Init(os.Getpid(), false)
	require.NoError(t, err)
	defer g.Close()

	require.Len(t, g.Live, 1)
	g.RemovePID(os.Getpid())
	assert.Empty(t, g.Live)
	assert.Equal(t, 0, g.history.Len())
}

func TestClose_IsSafeToCallOnEmptyGroup(t *testing.T) {
	g, err := Init(1<<30, false)
	require.NoError(t, err)
	assert.NotPanics(t, func() { g.Close() })
}
