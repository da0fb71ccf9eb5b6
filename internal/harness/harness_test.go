package harness

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_LocateMode_SelfTargetGuard(t *testing.T) {
	code := Run(context.Background(), Config{
		Mode:       Locate,
		PID:        os.Getpid(),
		LimitCores: 0.5,
		Lazy:       true,
	})
	assert.Equal(t, ExitFailure, code)
}

func TestRun_LocateMode_NotFound_LazyReturnsOK(t *testing.T) {
	code := Run(context.Background(), Config{
		Mode:       Locate,
		PID:        1 << 30,
		LimitCores: 0.5,
		Lazy:       true,
	})
	assert.Equal(t, ExitOK, code)
}

func TestRun_SpawnMode_NoCommand(t *testing.T) {
	code := Run(context.Background(), Config{
		Mode:       Spawn,
		LimitCores: 0.5,
	})
	assert.Equal(t, ExitFailure, code)
}

func TestRun_SpawnMode_TrueExitsZero(t *testing.T) {
	code := Run(context.Background(), Config{
		Mode:       Spawn,
		Command:    []string{"true"},
		LimitCores: 0.5,
		Lazy:       true,
	})
	assert.Equal(t, ExitOK, code)
}

func TestRun_SpawnMode_FalseExitsOne(t *testing.T) {
	code := Run(context.Background(), Config{
		Mode:       Spawn,
		Command:    []string{"false"},
		LimitCores: 0.5,
		Lazy:       true,
	})
	assert.Equal(t, 1, code)
}
