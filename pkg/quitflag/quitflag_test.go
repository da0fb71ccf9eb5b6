package quitflag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSet_InitiallyFalse(t *testing.T) {
	reset()
	assert.False(t, IsSet())
}

func TestIsSet_TrueAfterStore(t *testing.T) {
	reset()
	flag.Store(1)
	assert.True(t, IsSet())
	reset()
}

func TestIsSet_NeverClearsItself(t *testing.T) {
	reset()
	flag.Store(1)
	assert.True(t, IsSet())
	assert.True(t, IsSet(), "latch must stay set across repeated polls")
	reset()
}
