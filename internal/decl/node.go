// Package decl defines the declaration tree shared by the extractor, the
// tree builder and the cache manager.
//
// The tree is deliberately flat: declarations are children of one synthetic
// root and their module nesting lives in FullPath.
package decl

import "strings"

// Kind is the syntactic category of a declaration.
type Kind string

const (
	KindModule    Kind = "module"
	KindClass     Kind = "class"
	KindStruct    Kind = "struct"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
	KindFunction  Kind = "function"
	KindVariable  Kind = "variable"
)

// AllKinds lists every kind in extraction priority order.
var AllKinds = []Kind{KindModule, KindClass, KindStruct, KindInterface, KindEnum, KindFunction, KindVariable}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsContainer reports whether declarations of this kind can own members.
func (k Kind) IsContainer() bool {
	switch k {
	case KindModule, KindClass, KindStruct, KindInterface, KindEnum:
		return true
	}
	return false
}

// Visibility is the access specifier attached to a declaration.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
	VisibilityInternal  Visibility = "internal"
	VisibilityScoped    Visibility = "scoped"
)

// Node is one named declaration.
type Node struct {
	Name         string     `json:"name"`
	FullPath     string     `json:"fullPath"`
	Kind         Kind       `json:"kind"`
	IsPublic     bool       `json:"isPublic"`
	Visibility   Visibility `json:"visibility,omitempty"`
	IsExtension  bool       `json:"isExtension,omitempty"`
	ExtendedType string     `json:"extendedType,omitempty"`
	SourceFile   string     `json:"sourceFile,omitempty"`
	SourceLine   int        `json:"sourceLine,omitempty"`
	Children     []*Node    `json:"children,omitempty"`
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	} else {
		c.Children = nil
	}
	return &c
}

// NormalizedPath is FullPath lowercased without leading or trailing separators.
func (n *Node) NormalizedPath() string {
	return NormalizeModulePath(n.FullPath)
}

// NormalizeModulePath lowercases p, converts dots between segments to slashes
// and strips leading and trailing separators.
func NormalizeModulePath(p string) string {
	p = strings.TrimSpace(p)
	if !strings.Contains(p, "/") && strings.Contains(p, ".") {
		p = strings.ReplaceAll(p, ".", "/")
	}
	return strings.ToLower(strings.Trim(p, "/"))
}

// JoinPath appends name to a module path.
func JoinPath(parent, name string) string {
	if parent == "" || parent == "/" {
		return "/" + name
	}
	return strings.TrimSuffix(parent, "/") + "/" + name
}

// CloneNodes deep-copies a slice of nodes.
func CloneNodes(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// Names returns the distinct names of nodes in first-seen order.
func Names(nodes []*Node) []string {
	names := make([]string, 0, len(nodes))
	seen := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n.Name]; ok {
			continue
		}
		seen[n.Name] = struct{}{}
		names = append(names, n.Name)
	}
	return names
}
