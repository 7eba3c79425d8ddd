package index

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"vdx/internal/errors"
)

// HolderPID reads the PID recorded in dataDir/index.lock.
func HolderPID(dataDir string) (int, bool) {
	content, err := os.ReadFile(filepath.Join(dataDir, LockFile))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, false
	}
	return pid, true
}

func lockedError(path string) error {
	details := map[string]interface{}{"lockFile": path}
	msg := "cache is locked by another process; another vdx watch may be running"
	if pid, ok := HolderPID(filepath.Dir(path)); ok {
		details["pid"] = pid
		msg = "cache is locked by another process (PID " + strconv.Itoa(pid) + "); another vdx watch may be running"
	}
	return errors.New(errors.Locked, msg).WithDetails(details)
}
