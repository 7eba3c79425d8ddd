package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCanonicalizePath(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "Content", "UI")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sub, "Widgets.verse")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := CanonicalizePath(file, root)
	if err != nil {
		t.Fatalf("CanonicalizePath failed: %v", err)
	}
	if got != "Content/UI/Widgets.verse" {
		t.Errorf("CanonicalizePath = %q, want %q", got, "Content/UI/Widgets.verse")
	}

	// Deleted files still canonicalize
	missing := filepath.Join(root, "Gone.verse")
	got, err = CanonicalizePath(missing, root)
	if err != nil {
		t.Fatalf("CanonicalizePath(missing) failed: %v", err)
	}
	if got != "Gone.verse" {
		t.Errorf("CanonicalizePath(missing) = %q, want %q", got, "Gone.verse")
	}
}

func TestRelativeTo(t *testing.T) {
	root := t.TempDir()

	got, err := RelativeTo("./a/b.verse", root)
	if err != nil || got != "a/b.verse" {
		t.Errorf("RelativeTo(relative) = %q, %v", got, err)
	}

	got, err = RelativeTo(filepath.Join(root, "c.verse"), root)
	if err != nil || got != "c.verse" {
		t.Errorf("RelativeTo(absolute) = %q, %v", got, err)
	}
}

func TestIsWithinRepo(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a/b.verse", true},
		{"..", false},
		{"../x.verse", false},
		{"..foo/x.verse", true},
	}
	for _, tt := range tests {
		if got := IsWithinRepo(tt.path); got != tt.want {
			t.Errorf("IsWithinRepo(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	if got := NormalizePath(`.\Content\A.verse`); got != "Content/A.verse" {
		t.Errorf("NormalizePath = %q", got)
	}
}

func TestDataDirLayout(t *testing.T) {
	t.Setenv(DataDirEnvVar, "")
	root := "/proj"

	if got := DataDir(root); got != filepath.Join(root, DataDirName) {
		t.Errorf("DataDir = %q", got)
	}
	if !strings.HasSuffix(DBPath(root), "vdx.db") {
		t.Errorf("DBPath = %q", DBPath(root))
	}
	if !strings.HasSuffix(ConfigPath(root), "config.json") {
		t.Errorf("ConfigPath = %q", ConfigPath(root))
	}
	if !strings.HasSuffix(LogPath(root), filepath.Join("logs", "vdx.log")) {
		t.Errorf("LogPath = %q", LogPath(root))
	}

	custom := t.TempDir()
	t.Setenv(DataDirEnvVar, custom)
	dir, err := EnsureDataDir(root)
	if err != nil || dir != custom {
		t.Errorf("EnsureDataDir = %q, %v; want %q", dir, err, custom)
	}
}

func TestJoinRepoPath(t *testing.T) {
	got := JoinRepoPath("/root", "a/b/c.verse")
	if got != filepath.Join("/root", "a", "b", "c.verse") {
		t.Errorf("JoinRepoPath = %q", got)
	}
}

func TestResolveRoot(t *testing.T) {
	dir := t.TempDir()
	got, err := ResolveRoot(dir)
	if err != nil {
		t.Fatalf("ResolveRoot() error = %v", err)
	}
	want, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Errorf("ResolveRoot() = %q, want %q", got, want)
	}

	missing := filepath.Join(dir, "missing")
	got, err = ResolveRoot(missing)
	if err != nil {
		t.Fatalf("ResolveRoot(missing) error = %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("ResolveRoot(missing) = %q, want absolute", got)
	}
}
