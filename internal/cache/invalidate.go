package cache

import (
	"context"
	"os"
	"sort"
	"strings"
	"time"

	"vdx/internal/errors"
	"vdx/internal/paths"
	"vdx/internal/watcher"
)

// InvalidateFiles re-extracts each path and swaps its declarations in place.
// A path that no longer exists is removed; an existing directory has its
// tracked files re-extracted. Invalidating an unchanged file leaves the tree
// equivalent to before.
func (m *Manager) InvalidateFiles(ctx context.Context, files []string) error {
	return m.mutate(ctx, files, false)
}

// RemoveFiles drops every declaration contributed by files. A path that is
// not tracked is treated as a directory and everything below it is removed.
func (m *Manager) RemoveFiles(ctx context.Context, files []string) error {
	return m.mutate(ctx, files, true)
}

func (m *Manager) mutate(ctx context.Context, files []string, removeOnly bool) error {
	if len(files) == 0 {
		return nil
	}
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.RLock()
	ready := m.loaded && m.tree != nil
	root := m.identity.RootPath
	m.mu.RUnlock()
	if !ready {
		return errors.New(errors.CacheNotReady, "declaration cache is not initialized")
	}

	m.setState(StateInvalidating)
	defer m.setState(StateReady)

	matcher := m.builder.Matcher(root)
	invalidated, removed := 0, 0
	for _, raw := range normalizeAll(files, root) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !paths.IsWithinRepo(raw) {
			m.logger.Warn("Ignoring path outside project", "path", raw)
			continue
		}

		if removeOnly {
			removed += m.removeLocked(raw)
			continue
		}
		if matcher.Match(raw) {
			inv, rem := m.refreshLocked(root, raw)
			invalidated += inv
			removed += rem
			continue
		}

		info, err := os.Stat(paths.JoinRepoPath(root, raw))
		switch {
		case err == nil && info.IsDir():
			// Re-extract what is tracked below a live directory; new files
			// arrive as their own events.
			for _, file := range m.trackedUnder(raw) {
				if !matcher.Match(file) {
					removed += m.removeLocked(file)
					continue
				}
				inv, rem := m.refreshLocked(root, file)
				invalidated += inv
				removed += rem
			}
		case err == nil || os.IsNotExist(err):
			removed += m.removeLocked(raw)
		default:
			m.logger.Warn("Cannot stat changed path", "path", raw, "error", err.Error())
		}
	}

	m.mu.Lock()
	m.tree.Touch()
	m.meta.IncrementalUpdates++
	m.meta.FilesInvalidated += invalidated
	m.meta.FilesRemoved += removed
	m.meta.LastIncremental = time.Now().UTC()
	m.meta.FileCount = len(m.tree.FileIndex)
	m.meta.IdentifierCount = m.index.Len()
	m.mu.Unlock()

	m.logger.Debug("Applied incremental update",
		"invalidated", invalidated,
		"removed", removed,
	)
	m.persist(ctx)
	return nil
}

// refreshLocked re-extracts one file, dropping it when it no longer exists.
// Callers hold writeMu.
func (m *Manager) refreshLocked(root, rel string) (invalidated, removed int) {
	nodes, exists, err := m.builder.ExtractFile(root, rel)
	if !exists {
		return 0, m.removeLocked(rel)
	}
	if err != nil {
		m.logger.Warn("Failed to extract file", "file", rel, "error", err.Error())
		nodes = nil
	}

	m.mu.Lock()
	m.index.RemoveFile(rel, m.tree.FileIndex[rel])
	m.tree.AddFile(rel, nodes)
	m.index.Add(nodes...)
	m.mu.Unlock()
	return 1, 0
}

// trackedUnder lists the tracked files below dir in sorted order.
func (m *Manager) trackedUnder(dir string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := strings.TrimSuffix(dir, "/") + "/"
	var files []string
	for file := range m.tree.FileIndex {
		if strings.HasPrefix(file, prefix) {
			files = append(files, file)
		}
	}
	sort.Strings(files)
	return files
}

// removeLocked strips rel, or every tracked file below rel when rel itself
// is not tracked. Callers hold writeMu.
func (m *Manager) removeLocked(rel string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	targets := []string{rel}
	if !m.tree.HasFile(rel) {
		targets = targets[:0]
		prefix := strings.TrimSuffix(rel, "/") + "/"
		for file := range m.tree.FileIndex {
			if strings.HasPrefix(file, prefix) {
				targets = append(targets, file)
			}
		}
		sort.Strings(targets)
	}

	for _, file := range targets {
		m.index.RemoveFile(file, m.tree.FileIndex[file])
		m.tree.RemoveFile(file)
	}
	return len(targets)
}

func normalizeAll(files []string, root string) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := paths.RelativeTo(f, root)
		if err != nil || rel == "" || rel == "." {
			continue
		}
		if _, dup := seen[rel]; dup {
			continue
		}
		seen[rel] = struct{}{}
		out = append(out, rel)
	}
	return out
}

// Notify queues a change notification without blocking. When the queue is
// full the path goes straight into the pending batch.
func (m *Manager) Notify(e watcher.Event) {
	select {
	case m.events <- e:
	default:
		m.logger.Debug("Change queue full; coalescing directly", "path", e.Path)
		m.coalescer.Add(e)
	}
}

// Run consumes notifications until ctx is cancelled, applying one batch per
// quiet period. Pending changes are dropped on exit.
func (m *Manager) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			m.coalescer.Cancel()
			return nil
		case e := <-m.events:
			m.coalescer.Add(e)
		case <-m.coalescer.Ready():
			m.apply(ctx, m.coalescer.Take())
		}
	}
}

func (m *Manager) apply(ctx context.Context, b watcher.Batch) {
	if b.Empty() {
		return
	}
	m.logger.Info("Applying file changes", "changed", len(b.Changed), "deleted", len(b.Deleted))
	if len(b.Deleted) > 0 {
		if err := m.RemoveFiles(ctx, b.Deleted); err != nil {
			m.logger.Warn("Failed to remove files", "error", err.Error())
		}
	}
	if len(b.Changed) > 0 {
		if err := m.InvalidateFiles(ctx, b.Changed); err != nil {
			m.logger.Warn("Failed to invalidate files", "error", err.Error())
		}
	}
}

// PendingChanges returns the number of paths waiting for the quiet period.
func (m *Manager) PendingChanges() int {
	return m.coalescer.Pending() + len(m.events)
}
