// Package lockfile provides the single-instance guard ckdbd uses to refuse
// (or, with -k, forcibly clear) a stale pidfile left by a previous run
// (spec.md §6 "-k, --kill-stale").
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrLocked is returned when a lock cannot be acquired because it is held
// by another running process.
var ErrLocked = errors.New("daemon lock already held by another process")

// ErrLockBusy is returned when a non-blocking lock cannot be acquired
// because another process holds a conflicting lock.
var ErrLockBusy = errors.New("lock busy: held by another process")

// IsLocked reports whether err indicates the lock is held by another
// running process.
func IsLocked(err error) bool {
	return errors.Is(err, ErrLocked)
}

// IsProcessRunning reports whether a process with the given pid is alive.
func IsProcessRunning(pid int) bool {
	return isProcessRunning(pid)
}

// ReadPID reads a bare decimal pid from path, ignoring surrounding
// whitespace. It returns 0, nil if the file does not exist.
func ReadPID(path string) (int, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("lockfile: read %s: %w", path, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("lockfile: malformed pid in %s: %w", path, err)
	}
	return pid, nil
}

// WritePID writes the current process's pid to path, truncating any
// previous contents.
func WritePID(path string) error {
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}

// Acquire opens path (creating it if necessary) and takes an exclusive,
// non-blocking flock on it: a second, OS-enforced layer over CheckStale's
// content-based check. CheckStale can only reason about what a pidfile
// last had written to it; flock cannot be fooled by stale or wrong
// content, because the kernel releases it the instant the holding
// process exits for any reason, and a still-live holder's lock cannot be
// acquired by a second instance regardless of what either process has
// written to the file. On success the current pid is written into path
// and the open file is returned; the caller must keep it open for the
// life of the process and Close it at shutdown, which releases the lock.
func Acquire(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lockfile: open %s: %w", path, err)
	}
	if err := FlockExclusiveNonBlock(f); err != nil {
		f.Close()
		if errors.Is(err, ErrLockBusy) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("lockfile: flock %s: %w", path, err)
	}
	if err := f.Truncate(0); err != nil {
		f.Close()
		return nil, fmt.Errorf("lockfile: truncate %s: %w", path, err)
	}
	if _, err := f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("lockfile: write pid %s: %w", path, err)
	}
	return f, nil
}

// CheckStale reads the pidfile at path. If it names a process that is still
// running, startup must abort (ErrLocked) regardless of killStale — ckdbd
// never kills a live instance of itself. If it names a pid that is no
// longer running, the file is stale: with killStale it is removed and
// startup proceeds, otherwise CheckStale returns an error telling the
// operator to pass -k.
func CheckStale(path string, killStale bool) error {
	pid, err := ReadPID(path)
	if err != nil {
		return err
	}
	if pid == 0 {
		return nil
	}
	if IsProcessRunning(pid) {
		return ErrLocked
	}
	if !killStale {
		return fmt.Errorf("lockfile: stale pidfile %s names dead pid %d, rerun with -k to clear it", path, pid)
	}
	return os.Remove(path)
}
