package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"vdx/internal/paths"
)

// Filter selects the repo-relative paths worth reporting.
type Filter interface {
	Match(rel string) bool
	SkipDir(rel string) bool
}

// FSWatcher watches a project tree recursively with fsnotify.
type FSWatcher struct {
	root   string
	filter Filter
	sink   Sink
	logger *slog.Logger

	w    *fsnotify.Watcher
	mu   sync.Mutex
	dirs map[string]struct{} // watched directories, repo-relative
}

// NewFSWatcher registers every non-skipped directory under root.
func NewFSWatcher(root string, filter Filter, sink Sink, logger *slog.Logger) (*FSWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	fw := &FSWatcher{
		root:   root,
		filter: filter,
		sink:   sink,
		logger: logger,
		w:      w,
		dirs:   make(map[string]struct{}),
	}
	if err := fw.addRecursive(root, false); err != nil {
		_ = w.Close()
		return nil, err
	}
	return fw, nil
}

// WatchedDirs returns the number of directories under watch.
func (fw *FSWatcher) WatchedDirs() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return len(fw.dirs)
}

// addRecursive watches dir and its subdirectories. With announce, files
// already present are reported as created, covering files written before
// the directory watch was registered.
func (fw *FSWatcher) addRecursive(dir string, announce bool) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel := fw.rel(path)
		if !d.IsDir() {
			if announce && d.Type().IsRegular() && fw.filter.Match(rel) {
				fw.emit(EventCreate, rel)
			}
			return nil
		}
		if rel != "" && fw.filter.SkipDir(rel) {
			return filepath.SkipDir
		}
		if err := fw.w.Add(path); err != nil {
			fw.logger.Warn("Failed to watch directory", "path", path, "error", err.Error())
			return nil
		}
		fw.mu.Lock()
		fw.dirs[rel] = struct{}{}
		fw.mu.Unlock()
		return nil
	})
}

func (fw *FSWatcher) rel(path string) string {
	rel, err := filepath.Rel(fw.root, path)
	if err != nil || rel == "." {
		return ""
	}
	return paths.NormalizePath(rel)
}

func (fw *FSWatcher) emit(typ EventType, rel string) {
	fw.sink(Event{Type: typ, Path: rel, Timestamp: time.Now()})
}

// Run forwards events until ctx is cancelled.
func (fw *FSWatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.w.Events:
			if !ok {
				return nil
			}
			fw.handle(event)
		case err, ok := <-fw.w.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn("Watcher error", "error", err.Error())
		}
	}
}

func (fw *FSWatcher) handle(event fsnotify.Event) {
	rel := fw.rel(event.Name)
	if rel == "" || !paths.IsWithinRepo(rel) {
		return
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		fw.mu.Lock()
		_, wasDir := fw.dirs[rel]
		if wasDir {
			for d := range fw.dirs {
				if d == rel || strings.HasPrefix(d, rel+"/") {
					delete(fw.dirs, d)
				}
			}
		}
		fw.mu.Unlock()
		typ := EventDelete
		if event.Has(fsnotify.Rename) {
			typ = EventRename
		}
		if wasDir || fw.filter.Match(rel) {
			fw.emit(typ, rel)
		}
		return
	}

	if event.Has(fsnotify.Create) {
		info, err := os.Lstat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if !fw.filter.SkipDir(rel) {
				_ = fw.addRecursive(event.Name, true)
			}
			return
		}
		if info.Mode().IsRegular() && fw.filter.Match(rel) {
			fw.emit(EventCreate, rel)
		}
		return
	}

	if event.Has(fsnotify.Write) && fw.filter.Match(rel) {
		fw.emit(EventModify, rel)
	}
}

// Close stops the underlying watcher.
func (fw *FSWatcher) Close() error {
	return fw.w.Close()
}
