package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"vdx/internal/builder"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if !cfg.IncludePrivate {
		t.Error("IncludePrivate should default to true")
	}
	if cfg.DirectoryModules {
		t.Error("DirectoryModules should default to false")
	}
	if !reflect.DeepEqual(cfg.Include, builder.DefaultInclude) {
		t.Errorf("Include = %v", cfg.Include)
	}
	if cfg.Watch.DebounceMs != 500 {
		t.Errorf("Watch.DebounceMs = %d, want 500", cfg.Watch.DebounceMs)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("Storage.Backend = %q", cfg.Storage.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	root := t.TempDir()
	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".vdx")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := `{"version": 1, "includePrivate": false, "watch": {"debounceMs": 50}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.IncludePrivate {
		t.Error("IncludePrivate should be false from file")
	}
	if cfg.Watch.DebounceMs != 50 {
		t.Errorf("Watch.DebounceMs = %d, want 50", cfg.Watch.DebounceMs)
	}
	if cfg.Watch.QueueSize != 1024 {
		t.Errorf("Watch.QueueSize = %d, want default 1024", cfg.Watch.QueueSize)
	}
	if !reflect.DeepEqual(cfg.Exclude, builder.DefaultExclude) {
		t.Errorf("Exclude = %v, want defaults", cfg.Exclude)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("VDX_WATCH_DEBOUNCEMS", "75")
	t.Setenv("VDX_STORAGE_BACKEND", "memory")
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Watch.DebounceMs != 75 {
		t.Errorf("Watch.DebounceMs = %d, want 75", cfg.Watch.DebounceMs)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("Storage.Backend = %q, want memory", cfg.Storage.Backend)
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".vdx")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(root); err == nil {
		t.Error("LoadConfig() should fail on malformed JSON")
	}
}

func TestSaveAndLoad(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.ProjectName = "Arena"
	cfg.RootPrefix = "/Arena"
	cfg.DirectoryModules = true

	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", loaded, cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"version", func(c *Config) { c.Version = 9 }, "version"},
		{"no include", func(c *Config) { c.Include = nil }, "include"},
		{"blank pattern", func(c *Config) { c.Exclude = append(c.Exclude, " ") }, "include/exclude"},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -1 }, "watch.debounceMs"},
		{"zero queue", func(c *Config) { c.Watch.QueueSize = 0 }, "watch.queueSize"},
		{"backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"rotation", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			ce, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestBuilderOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IncludePrivate = false
	cfg.RootPrefix = "/Game"
	cfg.ProjectName = "Game"
	opts := cfg.BuilderOptions()
	if opts.Extract.IncludePrivate || opts.Extract.RootPrefix != "/Game" {
		t.Errorf("Extract = %+v", opts.Extract)
	}
	if opts.ProjectName != "Game" || !opts.UseGitignore {
		t.Errorf("options = %+v", opts)
	}
}

func TestResolvedPaths(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work", "game")
	cfg := DefaultConfig()
	if got := cfg.DBPath(root); got != filepath.Join(root, ".vdx", "vdx.db") {
		t.Errorf("DBPath() = %q", got)
	}
	cfg.Storage.Path = "cache/index.db"
	if got := cfg.DBPath(root); got != filepath.Join(root, "cache", "index.db") {
		t.Errorf("relative DBPath() = %q", got)
	}
	cfg.Logging.File = filepath.Join(string(filepath.Separator), "tmp", "vdx.log")
	if got := cfg.LogPath(root); got != cfg.Logging.File {
		t.Errorf("absolute LogPath() = %q", got)
	}
}
