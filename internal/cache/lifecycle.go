package cache

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vdx/internal/decl"
	"vdx/internal/errors"
	"vdx/internal/paths"
	"vdx/internal/project"
	"vdx/internal/storage"
	"vdx/internal/version"
)

// Initialize loads the persisted tree when it matches the running schema
// version and the current project name, and rebuilds otherwise. When no
// project identity can be resolved the Manager is left Ready but empty and
// the identity error is returned.
func (m *Manager) Initialize(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.setState(StateLoading)
	defer m.setState(StateReady)

	id, err := m.builder.ResolveIdentity(m.cfg.Root)
	if err != nil {
		m.logger.Warn("Cannot resolve project identity", "root", m.cfg.Root, "error", err.Error())
		m.reset(project.Identity{})
		return err
	}
	m.mu.Lock()
	m.identity = id
	m.mu.Unlock()

	tree, meta, reason := m.loadPersisted(ctx, id)
	if tree != nil {
		m.mu.Lock()
		m.tree = tree
		m.index = decl.BuildLookupIndex(tree)
		m.meta = meta
		m.loaded = true
		m.mu.Unlock()
		m.logger.Info("Loaded declaration cache",
			"project", id.Name,
			"files", len(tree.FileIndex),
			"identifiers", m.index.Len(),
		)
		return nil
	}

	m.logger.Info("Rebuilding declaration cache", "project", id.Name, "reason", reason)
	return m.rebuildLocked(ctx)
}

// loadPersisted returns the stored tree and metadata, or nil and the reason
// the stored copy cannot be used.
func (m *Manager) loadPersisted(ctx context.Context, id project.Identity) (*decl.Tree, decl.CacheMetadata, string) {
	var tree decl.Tree
	found, err := storage.LoadJSON(ctx, m.store, id.RootPath, storage.KeyDeclarationTree, &tree)
	if err != nil {
		m.persistenceFailed("load", err)
		return nil, decl.CacheMetadata{}, "unreadable"
	}
	if !found {
		return nil, decl.CacheMetadata{}, "not cached"
	}
	if tree.Version != version.CacheSchemaVersion {
		return nil, decl.CacheMetadata{}, "schema version " + tree.Version
	}
	if tree.ProjectName != id.Name {
		return nil, decl.CacheMetadata{}, "project renamed from " + tree.ProjectName
	}
	if err := tree.Validate(); err != nil {
		m.logger.Warn("Discarding inconsistent cache", "error", err.Error())
		return nil, decl.CacheMetadata{}, "inconsistent"
	}

	var meta decl.CacheMetadata
	if _, err := storage.LoadJSON(ctx, m.store, id.RootPath, storage.KeyCacheMetadata, &meta); err != nil {
		m.logger.Warn("Ignoring unreadable cache metadata", "error", err.Error())
		meta = decl.CacheMetadata{}
	}
	meta.ProjectName = id.Name
	tree.ProjectRootPath = id.RootPath
	return &tree, meta, ""
}

// RebuildCache discards pending change batches and rescans the project.
func (m *Manager) RebuildCache(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return m.rebuildLocked(ctx)
}

func (m *Manager) rebuildLocked(ctx context.Context) error {
	// The rescan reads every file, covering anything still pending.
	m.coalescer.Cancel()

	m.setState(StateRebuilding)
	defer m.setState(StateReady)

	start := time.Now()
	tree, err := m.builder.BuildFullTree(ctx, m.cfg.Root)
	if err != nil {
		if errors.Is(err, errors.IdentityUnresolved) || errors.Is(err, errors.InvalidPath) {
			m.reset(project.Identity{})
		}
		return err
	}

	id, err := m.builder.ResolveIdentity(m.cfg.Root)
	if err != nil {
		m.reset(project.Identity{})
		return err
	}

	index := decl.BuildLookupIndex(tree)
	m.mu.Lock()
	m.identity = id
	m.tree = tree
	m.index = index
	m.meta.ProjectName = id.Name
	m.meta.LastScanID = uuid.NewString()
	m.meta.LastFullScan = time.Now().UTC()
	m.meta.LastScanDuration = time.Since(start)
	m.meta.FullScans++
	m.meta.FileCount = len(tree.FileIndex)
	m.meta.IdentifierCount = index.Len()
	m.loaded = true
	m.mu.Unlock()

	m.persist(ctx)
	return nil
}

// Clear drops the in-memory tree and the persisted entries.
func (m *Manager) Clear(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.coalescer.Cancel()
	scope := m.scope()
	if scope == "" {
		if root, err := paths.ResolveRoot(m.cfg.Root); err == nil {
			scope = root
		}
	}

	var firstErr error
	for _, key := range []string{storage.KeyDeclarationTree, storage.KeyCacheMetadata} {
		if err := m.store.Delete(ctx, scope, key); err != nil && firstErr == nil {
			firstErr = errors.Wrap(errors.PersistenceFailed, "failed to delete "+key, err)
		}
	}

	m.mu.RLock()
	id := m.identity
	m.mu.RUnlock()
	m.reset(id)
	m.setState(StateReady)
	m.logger.Info("Cleared declaration cache", "scope", scope)
	return firstErr
}

// reset empties the live state, keeping id.
func (m *Manager) reset(id project.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = id
	m.tree = nil
	m.index = decl.NewLookupIndex()
	m.meta = decl.CacheMetadata{ProjectName: id.Name}
	m.loaded = false
}

// persist writes the tree and metadata. Failures switch the Manager to
// in-memory operation until a later write succeeds. Callers hold writeMu,
// so the tree is not mutated while it is encoded.
func (m *Manager) persist(ctx context.Context) {
	m.mu.RLock()
	tree, meta, scope := m.tree, m.meta, m.identity.RootPath
	m.mu.RUnlock()
	if tree == nil || scope == "" {
		return
	}

	if err := storage.SaveJSON(ctx, m.store, scope, storage.KeyDeclarationTree, tree); err != nil {
		m.persistenceFailed("save", err)
		return
	}
	if err := storage.SaveJSON(ctx, m.store, scope, storage.KeyCacheMetadata, meta); err != nil {
		m.persistenceFailed("save", err)
		return
	}

	m.mu.Lock()
	restored := !m.persistent
	m.persistent = true
	m.mu.Unlock()
	if restored {
		m.logger.Info("Cache persistence restored", "scope", scope)
	}
}

func (m *Manager) persistenceFailed(op string, err error) {
	m.mu.Lock()
	wasPersistent := m.persistent
	m.persistent = false
	m.mu.Unlock()
	if wasPersistent {
		m.logger.Warn("Cache persistence failed; continuing in memory", "op", op, "error", err.Error())
	} else {
		m.logger.Debug("Cache persistence still failing", "op", op, "error", err.Error())
	}
}
