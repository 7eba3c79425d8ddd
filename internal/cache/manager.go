// Package cache owns the live declaration tree, its lookup index and the
// persisted copy, and keeps them current as files change.
package cache

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"vdx/internal/builder"
	"vdx/internal/decl"
	"vdx/internal/project"
	"vdx/internal/storage"
	"vdx/internal/watcher"
)

// Config configures a Manager.
type Config struct {
	// Root is the project directory.
	Root string
	// Debounce is the quiet period before queued changes are applied.
	Debounce time.Duration
	// QueueSize bounds the change notification channel.
	QueueSize int
	// Ephemeral marks a store that does not outlive the process. Stats never
	// report such a cache as persistent.
	Ephemeral bool
}

// DefaultConfig returns the stock settings for root.
func DefaultConfig(root string) Config {
	w := watcher.DefaultConfig()
	return Config{Root: root, Debounce: w.Debounce(), QueueSize: w.QueueSize}
}

// Manager is the single owner of the cached tree. Mutations are serialized
// by writeMu; readers take mu for reading.
type Manager struct {
	cfg     Config
	store   storage.Store
	builder *builder.Builder
	logger  *slog.Logger

	writeMu sync.Mutex

	mu         sync.RWMutex
	identity   project.Identity
	tree       *decl.Tree
	index      *decl.LookupIndex
	meta       decl.CacheMetadata
	loaded     bool
	persistent bool

	state     atomic.Int32
	events    chan watcher.Event
	coalescer *watcher.Coalescer
}

// New creates a Manager. A nil store keeps everything in memory.
func New(cfg Config, store storage.Store, b *builder.Builder, logger *slog.Logger) *Manager {
	def := DefaultConfig(cfg.Root)
	if cfg.Debounce <= 0 {
		cfg.Debounce = def.Debounce
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}
	return &Manager{
		cfg:        cfg,
		store:      store,
		builder:    b,
		logger:     logger,
		index:      decl.NewLookupIndex(),
		persistent: true,
		events:     make(chan watcher.Event, cfg.QueueSize),
		coalescer:  watcher.NewCoalescer(cfg.Debounce),
	}
}

// State reports the current lifecycle phase.
func (m *Manager) State() State {
	return State(m.state.Load())
}

func (m *Manager) setState(s State) {
	m.state.Store(int32(s))
}

// Identity returns the project identity resolved by the last Initialize
// or rebuild.
func (m *Manager) Identity() project.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity
}

// scope is the storage scope for the current project.
func (m *Manager) scope() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity.RootPath
}
