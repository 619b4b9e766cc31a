package lockfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStaleNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckdbd.pid")
	assert.NoError(t, CheckStale(path, false))
}

func TestCheckStaleLiveProcessBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckdbd.pid")
	require.NoError(t, WritePID(path)) // names our own pid, which is running

	err := CheckStale(path, false)
	assert.ErrorIs(t, err, ErrLocked)

	err = CheckStale(path, true)
	assert.ErrorIs(t, err, ErrLocked, "kill-stale must never clear a live process's lock")
}

func TestCheckStaleDeadPidWithoutKillStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckdbd.pid")
	require.NoError(t, os.WriteFile(path, []byte("999999\n"), 0o644))

	err := CheckStale(path, false)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "stale file must be left alone without -k")
}

func TestCheckStaleDeadPidWithKillStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckdbd.pid")
	require.NoError(t, os.WriteFile(path, []byte("999999\n"), 0o644))

	require.NoError(t, CheckStale(path, true))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "stale file must be removed with -k")
}

func TestWriteAndReadPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckdbd.pid")
	require.NoError(t, WritePID(path))

	pid, err := ReadPID(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestIsProcessRunning(t *testing.T) {
	assert.True(t, IsProcessRunning(os.Getpid()))
	assert.False(t, IsProcessRunning(999999))
}

func TestAcquireWritesOwnPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock")
	f, err := Acquire(path)
	require.NoError(t, err)
	defer f.Close()

	pid, err := ReadPID(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestAcquireBlocksSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock")
	f1, err := Acquire(path)
	require.NoError(t, err)
	defer f1.Close()

	_, err = Acquire(path)
	assert.ErrorIs(t, err, ErrLocked, "a second Acquire must observe the flock, not just pidfile content")
}

func TestAcquireSucceedsAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock")
	f1, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, f1.Close())

	f2, err := Acquire(path)
	require.NoError(t, err)
	defer f2.Close()
}
