// Package singleton enforces that at most one engine process runs
// against a given configuration at a time, and answers --check-running
// (§6.2). No example repo in the pack carries an equivalent concept, so
// this is built on raw syscall.Flock over a PID file rather than
// importing a dependency for three lines of locking.
package singleton

import (
	"fmt"
	"os"
	"syscall"
)

// Lock holds an acquired advisory lock on a PID file. Release releases it.
type Lock struct {
	file *os.File
}

// Acquire attempts to take an exclusive, non-blocking lock on path,
// writing the current PID into it on success. ErrRunning is returned if
// another process already holds the lock.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open pid file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		return nil, ErrRunning
	}
	if err := f.Truncate(0); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.WriteAt([]byte(fmt.Sprintf("%d\n", os.Getpid())), 0); err != nil {
		f.Close()
		return nil, err
	}
	return &Lock{file: f}, nil
}

// ErrRunning indicates another instance already holds the lock.
var ErrRunning = fmt.Errorf("another instance is already running")

// IsRunning reports whether another instance currently holds the lock
// on path, for --check-running. It never creates or truncates the file.
func IsRunning(path string) (bool, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open pid file: %w", err)
	}
	defer f.Close()
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		return true, nil
	}
	syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	return false, nil
}

func (l *Lock) Release() error {
	syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	return l.file.Close()
}
