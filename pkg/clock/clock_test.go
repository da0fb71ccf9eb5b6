package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElapsedMS_Forward(t *testing.T) {
	t0 := Now()
	time.Sleep(15 * time.Millisecond)
	t1 := Now()

	got := ElapsedMS(t1, t0)
	require.Greater(t, got, 0.0)
	assert.InDelta(t, 15.0, got, 50.0, "should be roughly 15ms, allowing scheduler slack")
}

func TestElapsedMS_SameInstant(t *testing.T) {
	t0 := Now()
	assert.GreaterOrEqual(t, ElapsedMS(t0, t0), 0.0)
}

func TestBefore(t *testing.T) {
	t0 := Now()
	time.Sleep(time.Millisecond)
	t1 := Now()

	assert.True(t, t0.Before(t1))
	assert.False(t, t1.Before(t0))
}

func TestSleep_ZeroAndNegativeAreNoops(t *testing.T) {
	start := time.Now()
	Sleep(0)
	Sleep(-time.Second)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
