package harness

import (
	"os/exec"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitStatus_Nil(t *testing.T) {
	assert.Equal(t, ExitOK, exitStatus(nil))
}

func TestExitStatus_CleanExit(t *testing.T) {
	err := exec.Command("true").Run()
	assert.Equal(t, ExitOK, exitStatus(err))
}

func TestExitStatus_NonzeroExit(t *testing.T) {
	err := exec.Command("false").Run()
	require.Error(t, err)
	assert.Equal(t, 1, exitStatus(err))
}

func TestExitStatus_Signaled(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())

	require.NoError(t, cmd.Process.Signal(syscall.SIGTERM))
	err := cmd.Wait()
	require.Error(t, err)
	assert.Equal(t, 128+int(syscall.SIGTERM), exitStatus(err))
}

func TestExitStatus_NonExitError(t *testing.T) {
	_, err := exec.LookPath("definitely-not-a-real-binary-xyz")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, exitStatus(err))
}
