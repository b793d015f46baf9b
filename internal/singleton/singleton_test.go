package singleton

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "whenever.lock")
}

func TestAcquireWritesPID(t *testing.T) {
	path := lockPath(t)
	lock, err := Acquire(path)
	require.NoError(t, err)
	defer lock.Release()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestAcquireSecondFailsWithErrRunning(t *testing.T) {
	path := lockPath(t)
	lock, err := Acquire(path)
	require.NoError(t, err)
	defer lock.Release()

	_, err = Acquire(path)
	assert.ErrorIs(t, err, ErrRunning)
}

func TestReleaseAllowsReacquire(t *testing.T) {
	path := lockPath(t)
	lock, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, lock.Release())

	lock2, err := Acquire(path)
	require.NoError(t, err)
	lock2.Release()
}

func TestIsRunningFalseWhenUnlocked(t *testing.T) {
	path := lockPath(t)
	running, err := IsRunning(path)
	require.NoError(t, err)
	assert.False(t, running)

	// IsRunning must not itself hold the lock afterwards.
	lock, err := Acquire(path)
	require.NoError(t, err)
	lock.Release()
}

func TestIsRunningTrueWhileLocked(t *testing.T) {
	path := lockPath(t)
	lock, err := Acquire(path)
	require.NoError(t, err)
	defer lock.Release()

	running, err := IsRunning(path)
	require.NoError(t, err)
	assert.True(t, running)
}

func TestIsRunningFalseAfterRelease(t *testing.T) {
	path := lockPath(t)
	lock, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, lock.Release())

	running, err := IsRunning(path)
	require.NoError(t, err)
	assert.False(t, running)
}
