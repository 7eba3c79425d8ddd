package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"vdx/internal/builder"
	"vdx/internal/extract"
	"vdx/internal/paths"
	"vdx/internal/watcher"
)

// CurrentVersion is the config schema version understood by this build
const CurrentVersion = 1

// EnvPrefix prefixes environment overrides, e.g. VDX_WATCH_DEBOUNCEMS
const EnvPrefix = "VDX"

// Config represents the complete vdx configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`
	// ProjectName overrides manifest detection when set
	ProjectName string `json:"projectName,omitempty" mapstructure:"projectName"`

	IncludePrivate   bool     `json:"includePrivate" mapstructure:"includePrivate"`
	DirectoryModules bool     `json:"directoryModules" mapstructure:"directoryModules"`
	RootPrefix       string   `json:"rootPrefix" mapstructure:"rootPrefix"`
	Include          []string `json:"include" mapstructure:"include"`
	Exclude          []string `json:"exclude" mapstructure:"exclude"`
	UseGitignore     bool     `json:"useGitignore" mapstructure:"useGitignore"`

	Watch   watcher.Config `json:"watch" mapstructure:"watch"`
	Storage StorageConfig  `json:"storage" mapstructure:"storage"`
	Logging LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Backend string `json:"backend" mapstructure:"backend"` // "sqlite" or "memory"
	Path    string `json:"path" mapstructure:"path"`       // empty means .vdx/vdx.db
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level        string `json:"level" mapstructure:"level"`
	File         string `json:"file" mapstructure:"file"` // empty means .vdx/logs/vdx.log
	MaxSizeBytes int64  `json:"maxSizeBytes" mapstructure:"maxSizeBytes"`
	MaxBackups   int    `json:"maxBackups" mapstructure:"maxBackups"`
}

// Storage backends
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:        CurrentVersion,
		IncludePrivate: true,
		Include:        append([]string(nil), builder.DefaultInclude...),
		Exclude:        append([]string(nil), builder.DefaultExclude...),
		UseGitignore:   true,
		Watch:          watcher.DefaultConfig(),
		Storage: StorageConfig{
			Backend: BackendSQLite,
		},
		Logging: LoggingConfig{
			Level:        "warn",
			MaxSizeBytes: 10 * 1024 * 1024,
			MaxBackups:   3,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("projectName", d.ProjectName)
	v.SetDefault("includePrivate", d.IncludePrivate)
	v.SetDefault("directoryModules", d.DirectoryModules)
	v.SetDefault("rootPrefix", d.RootPrefix)
	v.SetDefault("include", d.Include)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("useGitignore", d.UseGitignore)
	v.SetDefault("watch.enabled", d.Watch.Enabled)
	v.SetDefault("watch.debounceMs", d.Watch.DebounceMs)
	v.SetDefault("watch.queueSize", d.Watch.QueueSize)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSizeBytes", d.Logging.MaxSizeBytes)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
}

// LoadConfig loads configuration from .vdx/config.json, applying defaults
// for missing keys and VDX_* environment overrides.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(paths.DataDir(repoRoot))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration to .vdx/config.json
func (c *Config) Save(repoRoot string) error {
	if _, err := paths.EnsureDataDir(repoRoot); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(paths.ConfigPath(repoRoot), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	if len(c.Include) == 0 {
		return &ConfigError{Field: "include", Message: "at least one include pattern is required"}
	}
	for _, p := range append(append([]string(nil), c.Include...), c.Exclude...) {
		if strings.TrimSpace(p) == "" {
			return &ConfigError{Field: "include/exclude", Message: "patterns must not be empty"}
		}
	}
	if c.Watch.DebounceMs < 0 {
		return &ConfigError{Field: "watch.debounceMs", Message: "must not be negative"}
	}
	if c.Watch.QueueSize <= 0 {
		return &ConfigError{Field: "watch.queueSize", Message: "must be positive"}
	}
	switch c.Storage.Backend {
	case BackendSQLite, BackendMemory:
	default:
		return &ConfigError{Field: "storage.backend", Message: fmt.Sprintf("unknown backend %q", c.Storage.Backend)}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	if c.Logging.MaxSizeBytes < 0 || c.Logging.MaxBackups < 0 {
		return &ConfigError{Field: "logging", Message: "rotation limits must not be negative"}
	}
	return nil
}

// BuilderOptions maps the scan settings onto builder options
func (c *Config) BuilderOptions() builder.Options {
	return builder.Options{
		Include:      append([]string(nil), c.Include...),
		Exclude:      append([]string(nil), c.Exclude...),
		UseGitignore: c.UseGitignore,
		ProjectName:  c.ProjectName,
		Extract: extract.Options{
			IncludePrivate:   c.IncludePrivate,
			DirectoryModules: c.DirectoryModules,
			RootPrefix:       c.RootPrefix,
		},
	}
}

// DBPath resolves the sqlite database location for repoRoot
func (c *Config) DBPath(repoRoot string) string {
	return resolve(repoRoot, c.Storage.Path, paths.DBPath(repoRoot))
}

// LogPath resolves the watch-mode log file for repoRoot
func (c *Config) LogPath(repoRoot string) string {
	return resolve(repoRoot, c.Logging.File, paths.LogPath(repoRoot))
}

func resolve(repoRoot, configured, fallback string) string {
	if configured == "" {
		return fallback
	}
	if filepath.IsAbs(configured) {
		return configured
	}
	return filepath.Join(repoRoot, configured)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
