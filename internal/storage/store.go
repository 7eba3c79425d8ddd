// Package storage persists cache entries as scoped key/value JSON records.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Entry keys written by the cache manager.
const (
	KeyDeclarationTree = "declaration_tree"
	KeyCacheMetadata   = "cache_metadata"
)

// Store is the persistence boundary. Values are opaque JSON documents
// grouped under a scope, normally the canonical project root.
type Store interface {
	Get(ctx context.Context, scope, key string) ([]byte, bool, error)
	Put(ctx context.Context, scope, key string, value []byte) error
	Delete(ctx context.Context, scope, key string) error
	Close() error
}

// LoadJSON reads and decodes an entry. found is false when the entry is missing.
func LoadJSON(ctx context.Context, s Store, scope, key string, v interface{}) (bool, error) {
	data, found, err := s.Get(ctx, scope, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and writes it under key.
func SaveJSON(ctx context.Context, s Store, scope, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Put(ctx, scope, key, data)
}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]map[string][]byte
	closed  bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, scope, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, errStoreClosed
	}
	v, ok := m.entries[scope][key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Put(_ context.Context, scope, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errStoreClosed
	}
	if m.entries[scope] == nil {
		m.entries[scope] = make(map[string][]byte)
	}
	m.entries[scope][key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errStoreClosed
	}
	delete(m.entries[scope], key)
	if len(m.entries[scope]) == 0 {
		delete(m.entries, scope)
	}
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Keys lists the keys stored under scope, sorted.
func (m *MemoryStore) Keys(scope string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries[scope]))
	for k := range m.entries[scope] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var errStoreClosed = errors.New("store is closed")
