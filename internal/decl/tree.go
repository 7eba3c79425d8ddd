package decl

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Tree is the aggregate root of the declaration index.
type Tree struct {
	Version         string              `json:"version"`
	ProjectRootPath string              `json:"projectRootPath"`
	ProjectName     string              `json:"projectName"`
	GeneratedAt     time.Time           `json:"generatedAt"`
	Root            *Node               `json:"root"`
	FileIndex       map[string][]string `json:"fileIndex"`
}

// NewTree creates an empty tree with a synthetic root.
func NewTree(version, projectName, projectRoot string) *Tree {
	return &Tree{
		Version:         version,
		ProjectRootPath: projectRoot,
		ProjectName:     projectName,
		GeneratedAt:     time.Now().UTC(),
		Root:            newRoot(projectName),
		FileIndex:       make(map[string][]string),
	}
}

func newRoot(projectName string) *Node {
	return &Node{Name: projectName, FullPath: "/", Kind: KindModule, IsPublic: true, Visibility: VisibilityPublic}
}

// ensure repairs nil containers left behind by deserialization.
func (t *Tree) ensure() {
	if t.Root == nil {
		t.Root = newRoot(t.ProjectName)
	}
	if t.FileIndex == nil {
		t.FileIndex = make(map[string][]string)
	}
}

// AddFile records the declarations of one file, replacing anything the file
// contributed before. A file without declarations is kept with an empty list.
func (t *Tree) AddFile(path string, nodes []*Node) {
	t.ensure()
	t.RemoveFile(path)
	for _, n := range nodes {
		n.SourceFile = path
	}
	t.Root.Children = append(t.Root.Children, nodes...)
	t.FileIndex[path] = Names(nodes)
}

// RemoveFile strips every root child attributed to path and drops the
// FileIndex entry. It returns the removed nodes.
func (t *Tree) RemoveFile(path string) []*Node {
	t.ensure()
	var removed []*Node
	kept := t.Root.Children[:0]
	for _, n := range t.Root.Children {
		if n.SourceFile == path {
			removed = append(removed, n)
			continue
		}
		kept = append(kept, n)
	}
	// Clear the tail so removed nodes are not retained by the backing array.
	for i := len(kept); i < len(t.Root.Children); i++ {
		t.Root.Children[i] = nil
	}
	t.Root.Children = kept
	delete(t.FileIndex, path)
	return removed
}

// HasFile reports whether path is tracked in the FileIndex.
func (t *Tree) HasFile(path string) bool {
	_, ok := t.FileIndex[path]
	return ok
}

// Files returns the tracked file paths in sorted order.
func (t *Tree) Files() []string {
	files := make([]string, 0, len(t.FileIndex))
	for f := range t.FileIndex {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Walk visits every node below the root depth-first. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(fn func(*Node) bool) {
	if t.Root == nil {
		return
	}
	var visit func(nodes []*Node)
	visit = func(nodes []*Node) {
		for _, n := range nodes {
			if fn(n) {
				visit(n.Children)
			}
		}
	}
	visit(t.Root.Children)
}

// NodeCount returns the number of declarations, excluding the root.
func (t *Tree) NodeCount() int {
	count := 0
	t.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Validate checks that FileIndex and the nodes agree: every node's source
// file is a FileIndex key listing its name, and every listed name is backed
// by at least one node from that file.
func (t *Tree) Validate() error {
	if t.Root == nil {
		return fmt.Errorf("tree has no root")
	}

	backed := make(map[string]map[string]bool, len(t.FileIndex))
	var problems []string

	t.Walk(func(n *Node) bool {
		names, ok := t.FileIndex[n.SourceFile]
		if !ok {
			problems = append(problems, fmt.Sprintf("node %s: source file %q missing from file index", n.FullPath, n.SourceFile))
			return true
		}
		if !contains(names, n.Name) {
			problems = append(problems, fmt.Sprintf("node %s: name not listed under %q", n.FullPath, n.SourceFile))
		}
		if backed[n.SourceFile] == nil {
			backed[n.SourceFile] = make(map[string]bool)
		}
		backed[n.SourceFile][n.Name] = true
		return true
	})

	for file, names := range t.FileIndex {
		for _, name := range names {
			if !backed[file][name] {
				problems = append(problems, fmt.Sprintf("file %q lists %q with no matching node", file, name))
			}
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("declaration tree inconsistent: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	c := *t
	c.Root = t.Root.Clone()
	c.FileIndex = make(map[string][]string, len(t.FileIndex))
	for k, v := range t.FileIndex {
		c.FileIndex[k] = append([]string(nil), v...)
	}
	return &c
}

// Touch bumps GeneratedAt.
func (t *Tree) Touch() {
	t.GeneratedAt = time.Now().UTC()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
