// Package builder produces a full declaration tree by scanning a project.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"vdx/internal/decl"
	"vdx/internal/errors"
	"vdx/internal/extract"
	"vdx/internal/paths"
	"vdx/internal/project"
	"vdx/internal/version"
)

// Progress is reported after every file of a full scan.
type Progress struct {
	Current int
	Total   int
	File    string
}

// Options configures discovery and extraction.
type Options struct {
	Include      []string
	Exclude      []string
	UseGitignore bool
	Extract      extract.Options
	// ProjectName overrides manifest detection when set.
	ProjectName string
	Progress    func(Progress)
}

// DefaultOptions returns the stock include/exclude lists with every
// declaration indexed.
func DefaultOptions() Options {
	return Options{
		Include:      append([]string(nil), DefaultInclude...),
		Exclude:      append([]string(nil), DefaultExclude...),
		UseGitignore: true,
		Extract:      extract.DefaultOptions(),
	}
}

// Builder scans a project root into a decl.Tree.
type Builder struct {
	opts      Options
	extractor *extract.Extractor
	logger    *slog.Logger
}

// New creates a Builder.
func New(opts Options, logger *slog.Logger) *Builder {
	return &Builder{
		opts:      opts,
		extractor: extract.New(opts.Extract),
		logger:    logger,
	}
}

// Options returns the builder's configuration.
func (b *Builder) Options() Options {
	return b.opts
}

// ResolveIdentity returns the project identity for root.
func (b *Builder) ResolveIdentity(root string) (project.Identity, error) {
	if b.opts.ProjectName != "" {
		return project.WithName(root, b.opts.ProjectName)
	}
	return project.ResolveIdentity(root)
}

// Matcher compiles the builder's patterns against root.
func (b *Builder) Matcher(root string) *Matcher {
	return NewMatcher(root, b.opts.Include, b.opts.Exclude, b.opts.UseGitignore)
}

// Discover lists matching files under root as sorted repo-relative paths.
// Symlinks are not followed.
func (b *Builder) Discover(root string) ([]string, error) {
	m := b.Matcher(root)
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			b.logger.Debug("Skipping unreadable path", "path", path, "error", err.Error())
			return nil
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = paths.NormalizePath(rel)

		if d.IsDir() {
			if m.SkipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 || !d.Type().IsRegular() {
			return nil
		}
		if m.Match(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// BuildFullTree scans root from scratch. It fails only when the project
// identity cannot be resolved or ctx is cancelled; per-file failures leave
// that file with zero declarations.
func (b *Builder) BuildFullTree(ctx context.Context, root string) (*decl.Tree, error) {
	id, err := b.ResolveIdentity(root)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	files, err := b.Discover(id.RootPath)
	if err != nil {
		return nil, err
	}

	tree := decl.NewTree(version.CacheSchemaVersion, id.Name, id.RootPath)
	failed := 0
	for i, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nodes, _, err := b.ExtractFile(id.RootPath, rel)
		if err != nil {
			failed++
			b.logger.Warn("Failed to extract file", "file", rel, "error", err.Error())
			nodes = nil
		}
		tree.AddFile(rel, nodes)
		if b.opts.Progress != nil {
			b.opts.Progress(Progress{Current: i + 1, Total: len(files), File: rel})
		}
	}

	b.logger.Info("Built declaration tree",
		"project", id.Name,
		"files", len(files),
		"failed", failed,
		"declarations", tree.NodeCount(),
		"duration", time.Since(start).String(),
	)
	return tree, nil
}

// ExtractFile re-reads and scans one repo-relative file. exists is false
// when the file is gone, which callers treat as a deletion.
func (b *Builder) ExtractFile(root, rel string) (nodes []*decl.Node, exists bool, err error) {
	rel = paths.NormalizePath(rel)
	if !paths.IsWithinRepo(rel) {
		return nil, false, errors.New(errors.InvalidPath, "path escapes project root").
			WithDetails(map[string]interface{}{"path": rel})
	}
	content, err := os.ReadFile(paths.JoinRepoPath(root, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, true, errors.Wrap(errors.ExtractionFailed, "cannot read "+rel, err)
	}

	defer func() {
		if r := recover(); r != nil {
			nodes = nil
			exists = true
			err = errors.New(errors.ExtractionFailed, fmt.Sprintf("extractor panic in %s: %v", rel, r))
		}
	}()
	return b.extractor.Extract(string(content), rel), true, nil
}
