//go:build !windows

// Package index guards the on-disk cache with a single-writer process lock.
package index

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
)

// LockFile is the lock file name inside the data directory.
const LockFile = "index.lock"

// Lock represents an exclusive lock on the cache.
type Lock struct {
	path string
	file *os.File
}

// AcquireLock takes a non-blocking exclusive flock on dataDir/index.lock
// and writes the current PID into it. A held lock yields errors.Locked.
func AcquireLock(dataDir string) (*Lock, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, LockFile)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()
		return nil, lockedError(path)
	}

	fail := func(step string, err error) (*Lock, error) {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()
		return nil, fmt.Errorf("%s lock file: %w", step, err)
	}
	if err := file.Truncate(0); err != nil {
		return fail("truncating", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return fail("seeking", err)
	}
	if _, err := file.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		return fail("writing PID to", err)
	}

	return &Lock{path: path, file: file}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release releases the lock and removes the lock file.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}

	_ = syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	_ = l.file.Close()
	_ = os.Remove(l.path)
	l.file = nil
}
