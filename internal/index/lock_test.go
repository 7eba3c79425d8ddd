//go:build !windows

package index

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"vdx/internal/errors"
)

func TestAcquireAndReleaseLock(t *testing.T) {
	tmpDir := t.TempDir()

	lock, err := AcquireLock(tmpDir)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	if lock == nil {
		t.Fatal("expected non-nil lock")
	}

	lockPath := filepath.Join(tmpDir, LockFile)
	if lock.Path() != lockPath {
		t.Errorf("Path() = %q, want %q", lock.Path(), lockPath)
	}
	content, err := os.ReadFile(lockPath)
	if err != nil {
		t.Fatalf("failed to read lock file: %v", err)
	}

	pid, err := strconv.Atoi(string(content))
	if err != nil {
		t.Fatalf("lock file should contain PID: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("PID: got %d, want %d", pid, os.Getpid())
	}
	if holder, ok := HolderPID(tmpDir); !ok || holder != os.Getpid() {
		t.Errorf("HolderPID() = %d, %v", holder, ok)
	}

	lock.Release()

	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("lock file should be removed after release")
	}
	if _, ok := HolderPID(tmpDir); ok {
		t.Error("HolderPID() should report nothing after release")
	}
	// Releasing twice is a no-op.
	lock.Release()
}

func TestAcquireLock_AlreadyLocked(t *testing.T) {
	tmpDir := t.TempDir()

	lock1, err := AcquireLock(tmpDir)
	if err != nil {
		t.Fatalf("first AcquireLock failed: %v", err)
	}
	defer lock1.Release()

	lock2, err := AcquireLock(tmpDir)
	if err == nil {
		lock2.Release()
		t.Fatal("second AcquireLock should fail when already locked")
	}
	if !errors.Is(err, errors.Locked) {
		t.Errorf("error = %v, want LOCKED", err)
	}
}

func TestAcquireLock_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, ".vdx")

	if _, err := os.Stat(dataDir); !os.IsNotExist(err) {
		t.Fatal("dataDir should not exist yet")
	}

	lock, err := AcquireLock(dataDir)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	defer lock.Release()

	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Error("dataDir should be created by AcquireLock")
	}
}

func TestReleaseLock_NilSafe(t *testing.T) {
	var lock *Lock
	lock.Release()
	if lock.Path() != "" {
		t.Error("nil lock should have empty path")
	}
}
