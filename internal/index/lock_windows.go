//go:build windows

// Package index guards the on-disk cache with a single-writer process lock.
package index

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// LockFile is the lock file name inside the data directory.
const LockFile = "index.lock"

// Lock represents an exclusive lock on the cache.
// Windows uses an exclusive-create PID file instead of flock.
type Lock struct {
	path string
	file *os.File
}

// AcquireLock creates dataDir/index.lock exclusively. A lock file left by
// a crashed process must be removed by hand.
func AcquireLock(dataDir string) (*Lock, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, LockFile)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, lockedError(path)
		}
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if _, err := file.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("writing PID to lock file: %w", err)
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

	_ = l.file.Close()
	_ = os.Remove(l.path)
	l.file = nil
}
