package builder

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"vdx/internal/paths"
)

// DefaultInclude selects Verse sources anywhere under the root.
var DefaultInclude = []string{"**/*.verse"}

// DefaultExclude skips VCS metadata, dependency folders, the vdx data
// directory and Unreal build output.
var DefaultExclude = []string{
	".git/",
	".hg/",
	".svn/",
	"node_modules/",
	"vendor/",
	".vdx/",
	"Intermediate/",
	"Saved/",
	"__ExternalActors__/",
	"__ExternalObjects__/",
}

// Matcher decides which repo-relative paths take part in a scan. All
// pattern lists use gitignore syntax.
type Matcher struct {
	include   *ignore.GitIgnore
	exclude   *ignore.GitIgnore
	gitignore *ignore.GitIgnore
}

// NewMatcher compiles the pattern lists. With useGitignore the root
// .gitignore is honoured as an extra exclude list when present.
func NewMatcher(root string, include, exclude []string, useGitignore bool) *Matcher {
	if len(include) == 0 {
		include = DefaultInclude
	}
	m := &Matcher{
		include: ignore.CompileIgnoreLines(include...),
	}
	if len(exclude) > 0 {
		m.exclude = ignore.CompileIgnoreLines(exclude...)
	}
	if useGitignore {
		path := filepath.Join(root, ".gitignore")
		if _, err := os.Stat(path); err == nil {
			if gi, err := ignore.CompileIgnoreFile(path); err == nil {
				m.gitignore = gi
			}
		}
	}
	return m
}

func (m *Matcher) excluded(rel string) bool {
	if m.exclude != nil && m.exclude.MatchesPath(rel) {
		return true
	}
	return m.gitignore != nil && m.gitignore.MatchesPath(rel)
}

// SkipDir reports whether a directory should not be descended into.
func (m *Matcher) SkipDir(rel string) bool {
	rel = strings.Trim(paths.NormalizePath(rel), "/")
	if rel == "" || rel == "." {
		return false
	}
	return m.excluded(rel + "/")
}

// Match reports whether a file takes part in the scan.
func (m *Matcher) Match(rel string) bool {
	rel = paths.NormalizePath(rel)
	if rel == "" || m.excluded(rel) {
		return false
	}
	return m.include.MatchesPath(rel)
}
