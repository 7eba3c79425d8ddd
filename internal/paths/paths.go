// Package paths resolves repo-relative canonical paths and the .vdx data directory layout.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DataDirName is the per-project directory holding the cache, config, logs and lock.
	DataDirName = ".vdx"

	// DataDirEnvVar overrides the data directory location.
	DataDirEnvVar = "VDX_DATA_DIR"

	dbFileName     = "vdx.db"
	configFileName = "config.json"
	logFileName    = "vdx.log"
)

// ResolveRoot returns the absolute, symlink-resolved form of a project root.
func ResolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return filepath.Clean(abs), nil
		}
		return "", err
	}
	return resolved, nil
}

// CanonicalizePath converts an absolute path to a repo-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to repo root
// - Returns repo-relative path with forward slashes
func CanonicalizePath(absolutePath string, repoRoot string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		// Deleted files no longer resolve
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	rootResolved, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		if os.IsNotExist(err) {
			rootResolved = repoRoot
		} else {
			return "", err
		}
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// RelativeTo returns p as a repo-relative forward-slash path. Relative inputs are
// cleaned and returned as-is; absolute inputs are canonicalized against repoRoot.
func RelativeTo(p string, repoRoot string) (string, error) {
	if !filepath.IsAbs(p) {
		return NormalizePath(filepath.Clean(p)), nil
	}
	return CanonicalizePath(p, repoRoot)
}

// IsWithinRepo checks if a repo-relative path stays inside the repository root
func IsWithinRepo(rel string) bool {
	return rel != ".." && !strings.HasPrefix(rel, "../") && !filepath.IsAbs(rel)
}

// NormalizePath converts backslashes to forward slashes and strips a leading "./"
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.TrimPrefix(path, "./")
}

// JoinRepoPath joins a repo root with a canonical path
func JoinRepoPath(repoRoot string, canonicalPath string) string {
	parts := strings.Split(NormalizePath(canonicalPath), "/")
	return filepath.Join(append([]string{repoRoot}, parts...)...)
}

// DataDir returns the data directory for a project root.
func DataDir(repoRoot string) string {
	if dir := os.Getenv(DataDirEnvVar); dir != "" {
		return dir
	}
	return filepath.Join(repoRoot, DataDirName)
}

// EnsureDataDir creates the data directory if needed and returns it.
func EnsureDataDir(repoRoot string) (string, error) {
	dir := DataDir(repoRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// DBPath returns the sqlite cache database path.
func DBPath(repoRoot string) string {
	return filepath.Join(DataDir(repoRoot), dbFileName)
}

// ConfigPath returns the config file path.
func ConfigPath(repoRoot string) string {
	return filepath.Join(DataDir(repoRoot), configFileName)
}

// LogPath returns the watch-mode log file path.
func LogPath(repoRoot string) string {
	return filepath.Join(DataDir(repoRoot), "logs", logFileName)
}
