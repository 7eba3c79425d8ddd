package cache

import (
	"strings"
	"time"

	"vdx/internal/decl"
)

// LookupResult is the answer to an identifier lookup.
type LookupResult struct {
	Matches []*decl.Node `json:"matches"`
	// FromCache is true once the cache has been initialized; a miss is then
	// authoritative and no rescan happens.
	FromCache bool `json:"fromCache"`
}

// Stats summarizes the cache for status displays.
type Stats struct {
	Loaded           bool      `json:"loaded"`
	State            string    `json:"state"`
	ProjectName      string    `json:"projectName,omitempty"`
	ProjectRoot      string    `json:"projectRoot,omitempty"`
	IdentifierCount  int       `json:"identifierCount"`
	DeclarationCount int       `json:"declarationCount"`
	FileCount        int       `json:"fileCount"`
	GeneratedAt      time.Time `json:"generatedAt,omitempty"`
	Persistent       bool      `json:"persistent"`
	PendingChanges   int       `json:"pendingChanges"`
}

// LookupIdentifier finds declarations named name, ignoring case.
func (m *Manager) LookupIdentifier(name string) LookupResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return LookupResult{
		Matches:   decl.CloneNodes(m.index.Get(name)),
		FromCache: m.loaded,
	}
}

// LookupModulePath finds declarations whose path equals path or ends with
// it on a segment boundary. Matching ignores case, surrounding slashes and
// accepts dotted paths.
func (m *Manager) LookupModulePath(path string) []*decl.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return decl.CloneNodes(m.matchPath(path))
}

func (m *Manager) matchPath(path string) []*decl.Node {
	q := decl.NormalizeModulePath(path)
	if q == "" || m.tree == nil {
		return nil
	}
	var out []*decl.Node
	m.tree.Walk(func(n *decl.Node) bool {
		if pathMatches(n.NormalizedPath(), q) {
			out = append(out, n)
		}
		return true
	})
	return out
}

func pathMatches(np, q string) bool {
	return np == q || strings.HasSuffix(np, "/"+q)
}

// GetModuleContents lists the declarations directly inside every node
// matching path: tree children, plus nodes whose path is exactly one
// segment below the matched path.
func (m *Manager) GetModuleContents(path string) []*decl.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()

	parents := m.matchPath(path)
	if len(parents) == 0 {
		return nil
	}
	prefixes := make(map[string]struct{}, len(parents))
	seen := make(map[*decl.Node]struct{})
	var out []*decl.Node
	add := func(n *decl.Node) {
		if _, dup := seen[n]; dup {
			return
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	for _, p := range parents {
		prefixes[p.NormalizedPath()+"/"] = struct{}{}
		for _, c := range p.Children {
			add(c)
		}
	}
	m.tree.Walk(func(n *decl.Node) bool {
		np := n.NormalizedPath()
		for prefix := range prefixes {
			if strings.HasPrefix(np, prefix) && !strings.Contains(np[len(prefix):], "/") {
				add(n)
				break
			}
		}
		return true
	})
	return decl.CloneNodes(out)
}

// GetStats reports the cache summary.
func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Stats{
		Loaded:          m.loaded,
		State:           m.State().String(),
		ProjectName:     m.identity.Name,
		ProjectRoot:     m.identity.RootPath,
		IdentifierCount: m.index.Len(),
		Persistent:      m.persistent && !m.cfg.Ephemeral,
		PendingChanges:  m.PendingChanges(),
	}
	if m.tree != nil {
		s.DeclarationCount = m.tree.NodeCount()
		s.FileCount = len(m.tree.FileIndex)
		s.GeneratedAt = m.tree.GeneratedAt
	}
	return s
}

// Metadata returns a copy of the scan bookkeeping.
func (m *Manager) Metadata() decl.CacheMetadata {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meta
}

// Tree returns a deep copy of the live tree, or nil before initialization.
func (m *Manager) Tree() *decl.Tree {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree.Clone()
}
