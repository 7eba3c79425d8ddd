package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"vdx/internal/builder"
	"vdx/internal/cache"
	"vdx/internal/config"
	"vdx/internal/errors"
	"vdx/internal/paths"
	"vdx/internal/slogutil"
	"vdx/internal/storage"
)

// engine bundles everything a command needs to talk to the cache.
type engine struct {
	root    string
	cfg     *config.Config
	logger  *slog.Logger
	store   storage.Store
	builder *builder.Builder
	manager *cache.Manager
}

// openEngine loads configuration for root, opens the configured store and
// constructs an uninitialized Manager.
func openEngine(root string, logger *slog.Logger, progress func(builder.Progress)) (*engine, error) {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		logger.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, durable := openStore(root, cfg, logger)

	opts := cfg.BuilderOptions()
	opts.Progress = progress
	b := builder.New(opts, logger)

	mcfg := cache.DefaultConfig(root)
	mcfg.Debounce = cfg.Watch.Debounce()
	mcfg.QueueSize = cfg.Watch.QueueSize
	mcfg.Ephemeral = !durable

	return &engine{
		root:    root,
		cfg:     cfg,
		logger:  logger,
		store:   store,
		builder: b,
		manager: cache.New(mcfg, store, b, logger),
	}, nil
}

// openStore opens the configured backend. When the database cannot be opened
// the cache continues in memory and durable is false.
func openStore(root string, cfg *config.Config, logger *slog.Logger) (store storage.Store, durable bool) {
	if memoryFlag || cfg.Storage.Backend == config.BackendMemory {
		return storage.NewMemoryStore(), false
	}
	if _, err := paths.EnsureDataDir(root); err != nil {
		logger.Warn("Cannot create data directory; continuing in memory", "error", err.Error())
		return storage.NewMemoryStore(), false
	}
	db, err := storage.OpenSQLite(cfg.DBPath(root), logger)
	if err != nil {
		logger.Warn("Cannot open cache database; continuing in memory",
			"path", cfg.DBPath(root),
			"error", err.Error(),
		)
		return storage.NewMemoryStore(), false
	}
	return db, true
}

// Close releases the store.
func (e *engine) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("Failed to close store", "error", err)
	}
}

// mustOpenEngine opens the engine and initializes the cache or exits.
func mustOpenEngine(ctx context.Context, progress func(builder.Progress)) *engine {
	root := mustGetRepoRoot()
	e, err := openEngine(root, newLogger(), progress)
	if err != nil {
		fail(err)
	}
	if err := e.manager.Initialize(ctx); err != nil {
		e.Close()
		fail(err)
	}
	return e
}

// getRepoRoot returns the canonical project root.
func getRepoRoot() (string, error) {
	root := repoFlag
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		root = wd
	}
	return paths.ResolveRoot(root)
}

// mustGetRepoRoot returns the project root or exits on error.
func mustGetRepoRoot() string {
	root, err := getRepoRoot()
	if err != nil {
		fail(err)
	}
	return root
}

// newLogger creates the stderr logger selected by -v and -q.
func newLogger() *slog.Logger {
	return slogutil.NewLogger(os.Stderr, slogutil.LevelFromVerbosity(verboseFlag, quietFlag))
}

// newContext returns a context cancelled on SIGINT or SIGTERM.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// fail prints err with its suggested fix and exits.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if fix := errors.SuggestedFix(errors.CodeOf(err)); fix != "" {
		fmt.Fprintf(os.Stderr, "  %s\n", fix)
	}
	os.Exit(1)
}

// printResponse renders resp in the selected format or exits.
func printResponse(resp interface{}) {
	out, err := FormatResponse(resp, OutputFormat(formatFlag))
	if err != nil {
		fail(err)
	}
	fmt.Println(out)
}
