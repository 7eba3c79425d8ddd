package decl

import "strings"

// LookupIndex maps lowercased identifier names to the nodes declaring them.
// It is derived from a Tree and can always be rebuilt from one.
type LookupIndex struct {
	byName map[string][]*Node
	refs   int
}

// NewLookupIndex creates an empty index.
func NewLookupIndex() *LookupIndex {
	return &LookupIndex{byName: make(map[string][]*Node)}
}

// BuildLookupIndex indexes every node of t.
func BuildLookupIndex(t *Tree) *LookupIndex {
	ix := NewLookupIndex()
	if t == nil {
		return ix
	}
	t.Walk(func(n *Node) bool {
		ix.add(n)
		return true
	})
	return ix
}

func lookupKey(name string) string {
	return strings.ToLower(name)
}

func (ix *LookupIndex) add(n *Node) {
	key := lookupKey(n.Name)
	ix.byName[key] = append(ix.byName[key], n)
	ix.refs++
}

// Add indexes nodes and their descendants.
func (ix *LookupIndex) Add(nodes ...*Node) {
	for _, n := range nodes {
		ix.add(n)
		ix.Add(n.Children...)
	}
}

// RemoveFile drops the entries for names whose node came from path.
func (ix *LookupIndex) RemoveFile(path string, names []string) {
	for _, name := range names {
		key := lookupKey(name)
		entries := ix.byName[key]
		if len(entries) == 0 {
			continue
		}
		kept := make([]*Node, 0, len(entries))
		for _, n := range entries {
			if n.SourceFile == path {
				ix.refs--
				continue
			}
			kept = append(kept, n)
		}
		if len(kept) == 0 {
			delete(ix.byName, key)
		} else {
			ix.byName[key] = kept
		}
	}
}

// Get returns the nodes named name, compared case-insensitively. The returned
// slice is a copy; the nodes are shared.
func (ix *LookupIndex) Get(name string) []*Node {
	entries := ix.byName[lookupKey(name)]
	if len(entries) == 0 {
		return nil
	}
	return append([]*Node(nil), entries...)
}

// Len returns the number of distinct identifiers.
func (ix *LookupIndex) Len() int {
	return len(ix.byName)
}

// Refs returns the total number of indexed nodes.
func (ix *LookupIndex) Refs() int {
	return ix.refs
}

// Keys returns every indexed lowercased identifier.
func (ix *LookupIndex) Keys() []string {
	keys := make([]string, 0, len(ix.byName))
	for k := range ix.byName {
		keys = append(keys, k)
	}
	return keys
}
