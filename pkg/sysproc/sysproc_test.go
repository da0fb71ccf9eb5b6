package sysproc

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenIterator_Self(t *testing.T) {
	self := os.Getpid()

	it, err := OpenIterator(Filter{PID: self, WantCommand: true})
	require.NoError(t, err)
	defer it.Close()

	snap, ok := it.Next()
	require.True(t, ok, "expected to find our own pid in the process table")
	assert.Equal(t, self, snap.PID)
	assert.Greater(t, snap.PPID, 0)
	assert.GreaterOrEqual(t, snap.CumulativeCPUTimeMS, int64(0))

	_, ok = it.Next()
	assert.False(t, ok, "single-pid fast path should yield exactly one snapshot")
}

func TestOpenIterator_All(t *testing.T) {
	self := os.Getpid()

	it, err := OpenIterator(Filter{})
	require.NoError(t, err)
	defer it.Close()

	found := false
	count := 0
	for {
		snap, ok := it.Next()
		if !ok {
			break
		}
		count++
		if snap.PID == self {
			found = true
		}
	}
	assert.True(t, found, "enumerating every process should include this one")
	assert.Greater(t, count, 1, "a live system has more than one process")
}

func TestParentOf_Self(t *testing.T) {
	self := os.Getpid()
	ppid, ok := ParentOf(self)
	require.True(t, ok)
	assert.Equal(t, os.Getppid(), ppid)
}

func TestParentOf_NonexistentPID(t *testing.T) {
	_, ok := ParentOf(1 << 30)
	assert.False(t, ok)
}

func TestIsDescendantOf_RejectsTrivialCases(t *testing.T) {
	assert.False(t, IsDescendantOf(1, 100))
	assert.False(t, IsDescendantOf(0, 100))
	assert.False(t, IsDescendantOf(100, 0))
	assert.False(t, IsDescendantOf(100, 100))
}

func TestIsDescendantOf_SelfIsDescendantOfParent(t *testing.T) {
	self := os.Getpid()
	parent := os.Getppid()
	if parent <= 1 {
		t.Skip("test runner's parent is init; nothing to assert")
	}
	assert.True(t, IsDescendantOf(self, parent))
}

func TestIsDescendantOf_EveryoneDescendsFromInit(t *testing.T) {
	self := os.Getpid()
	assert.True(t, IsDescendantOf(self, 1))
}
