package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vdx/internal/paths"
	"vdx/internal/slogutil"
	"vdx/internal/storage"
)

func newProject(t *testing.T) string {
	t.Helper()
	t.Setenv(paths.DataDirEnvVar, "")
	root, err := paths.ResolveRoot(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"vdx.toml":  "[project]\nname = \"Arena\"\n",
		"Foo.verse": "Bar<public> := module:\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestOpenEngineStores(t *testing.T) {
	tests := []struct {
		name           string
		corruptDB      bool
		memory         bool
		wantSQLite     bool
		wantPersistent bool
	}{
		{name: "sqlite", wantSQLite: true, wantPersistent: true},
		{name: "corrupt database falls back to memory", corruptDB: true},
		{name: "memory flag", memory: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newProject(t)
			if tt.corruptDB {
				dir := filepath.Join(root, paths.DataDirName)
				if err := os.MkdirAll(dir, 0755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(filepath.Join(dir, "vdx.db"), []byte("this is not a database file, just garbage bytes"), 0644); err != nil {
					t.Fatal(err)
				}
			}
			prev := memoryFlag
			memoryFlag = tt.memory
			defer func() { memoryFlag = prev }()

			e, err := openEngine(root, slogutil.NewDiscardLogger(), nil)
			if err != nil {
				t.Fatalf("openEngine() error = %v", err)
			}
			defer e.Close()

			if _, ok := e.store.(*storage.SQLiteStore); ok != tt.wantSQLite {
				t.Errorf("store = %T, want sqlite %v", e.store, tt.wantSQLite)
			}
			if err := e.manager.Initialize(context.Background()); err != nil {
				t.Fatalf("Initialize() error = %v", err)
			}
			stats := e.manager.GetStats()
			if stats.Persistent != tt.wantPersistent {
				t.Errorf("Persistent = %v, want %v", stats.Persistent, tt.wantPersistent)
			}
			if stats.FileCount != 1 {
				t.Errorf("FileCount = %d, want 1", stats.FileCount)
			}
		})
	}
}
