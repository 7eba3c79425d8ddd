package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"vdx/internal/config"
	"vdx/internal/index"
	"vdx/internal/paths"
	"vdx/internal/slogutil"
	"vdx/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the declaration cache current while files change",
	Long: `Loads (or builds) the cache, then watches the project tree and applies
changes after each quiet period (watch.debounceMs, default 500ms).

Only one watch process may run per project; it holds .vdx/index.lock.
Logs go to stderr and to .vdx/logs/vdx.log.`,
	Run: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	ctx, cancel := newContext()
	defer cancel()

	root := mustGetRepoRoot()
	dataDir, err := paths.EnsureDataDir(root)
	if err != nil {
		fail(err)
	}

	lock, err := index.AcquireLock(dataDir)
	if err != nil {
		fail(err)
	}
	defer lock.Release()

	cfg, err := config.LoadConfig(root)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	logger, closeLog := watchLogger(cfg, root)
	defer closeLog()

	if !cfg.Watch.Enabled {
		logger.Warn("Watching is disabled in config (watch.enabled=false)")
		return
	}

	e, err := openEngine(root, logger, nil)
	if err != nil {
		lock.Release()
		fail(err)
	}
	defer e.Close()

	if err := e.manager.Initialize(ctx); err != nil {
		e.Close()
		lock.Release()
		fail(err)
	}

	fw, err := watcher.NewFSWatcher(root, e.builder.Matcher(root), e.manager.Notify, logger)
	if err != nil {
		e.Close()
		lock.Release()
		fail(err)
	}
	defer fw.Close()

	stats := e.manager.GetStats()
	logger.Info("Watching project",
		"project", stats.ProjectName,
		"files", stats.FileCount,
		"dirs", fw.WatchedDirs(),
		"debounce", cfg.Watch.Debounce().String(),
	)
	fmt.Fprintf(os.Stderr, "Watching %s (%d files). Press Ctrl+C to stop.\n", stats.ProjectName, stats.FileCount)

	runWatchLoop(ctx, cancel, fw, e, logger)
	logger.Info("Watch stopped")
}

// runWatchLoop runs the watcher and the cache consumer until either fails or
// ctx is cancelled.
func runWatchLoop(ctx context.Context, cancel context.CancelFunc, fw *watcher.FSWatcher, e *engine, logger *slog.Logger) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer cancel()
		if err := fw.Run(ctx); err != nil {
			logger.Error("File watcher stopped", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		if err := e.manager.Run(ctx); err != nil {
			logger.Error("Cache consumer stopped", "error", err)
		}
	}()
	wg.Wait()
}

// watchLogger tees the stderr logger with a rotating file under .vdx/logs.
func watchLogger(cfg *config.Config, root string) (*slog.Logger, func()) {
	stderrLogger := newLogger()
	path := cfg.LogPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		stderrLogger.Warn("Cannot create log directory", "error", err)
		return stderrLogger, func() {}
	}

	level := slogutil.LevelFromString(cfg.Logging.Level)
	if verboseFlag > 0 {
		level = slogutil.LevelFromVerbosity(verboseFlag, false)
	}
	fileLogger, closer, err := slogutil.NewRotatingFileLogger(path, level, cfg.Logging.MaxSizeBytes, cfg.Logging.MaxBackups)
	if err != nil {
		stderrLogger.Warn("Cannot open log file", "path", path, "error", err)
		return stderrLogger, func() {}
	}
	return slogutil.NewTeeLogger(stderrLogger.Handler(), fileLogger.Handler()), func() { _ = closer.Close() }
}
