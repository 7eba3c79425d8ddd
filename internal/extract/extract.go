// Package extract finds Verse declarations with a line-oriented scan.
//
// The scan is deliberately shallow: it recognises declaration shapes, tracks
// module nesting by indentation and skips comments, but performs no parsing
// or type checking. Unrecognised lines are ignored.
package extract

import (
	"path"
	"strings"

	"vdx/internal/decl"
)

const tabWidth = 4

// Options controls what Extract emits.
type Options struct {
	// IncludePrivate indexes non-public declarations too.
	IncludePrivate bool `json:"includePrivate" mapstructure:"includePrivate"`
	// DirectoryModules treats the directories of the file path as enclosing modules.
	DirectoryModules bool `json:"directoryModules" mapstructure:"directoryModules"`
	// RootPrefix is prepended to every path, e.g. "/MyProject".
	RootPrefix string `json:"rootPrefix,omitempty" mapstructure:"rootPrefix"`
}

// DefaultOptions returns options that index every declaration.
func DefaultOptions() Options {
	return Options{IncludePrivate: true}
}

// Extractor applies a fixed set of options to many files.
type Extractor struct {
	opts Options
}

// New creates an Extractor.
func New(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// Options returns the options in effect.
func (e *Extractor) Options() Options {
	return e.opts
}

// Extract runs the scan over content.
func (e *Extractor) Extract(content, filePath string) []*decl.Node {
	return Extract(content, filePath, e.opts)
}

type frame struct {
	path   string
	indent int
}

type scanner struct {
	opts     Options
	file     string
	base     string
	stack    []frame
	nodes    []*decl.Node
	comment  int // nesting depth of <# #> blocks
	indented int // indent of an open <#> comment, -1 when none
	body     int // indent of the enclosing function header, -1 when none
}

// Extract returns the declarations found in content, in source order.
// filePath is recorded on every node and, with DirectoryModules, supplies
// the implicit module prefix.
func Extract(content, filePath string, opts Options) []*decl.Node {
	file := strings.ReplaceAll(filePath, "\\", "/")
	s := &scanner{
		opts:     opts,
		file:     file,
		base:     basePath(file, opts),
		indented: -1,
		body:     -1,
	}
	for i, raw := range strings.Split(content, "\n") {
		s.line(strings.TrimRight(raw, "\r"), i+1)
	}
	return s.nodes
}

func basePath(file string, opts Options) string {
	base := "/"
	if prefix := strings.Trim(strings.ReplaceAll(opts.RootPrefix, "\\", "/"), "/"); prefix != "" {
		base = "/" + prefix
	}
	if !opts.DirectoryModules {
		return base
	}
	dir := path.Dir(file)
	if dir == "." || dir == "/" {
		return base
	}
	for _, seg := range strings.Split(strings.Trim(dir, "/"), "/") {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		base = decl.JoinPath(base, seg)
	}
	return base
}

func (s *scanner) parent() string {
	if len(s.stack) == 0 {
		return s.base
	}
	return s.stack[len(s.stack)-1].path
}

func (s *scanner) line(raw string, lineNo int) {
	indent := measureIndent(raw)
	text := s.stripComments(raw)
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	if s.indented >= 0 {
		if indent > s.indented {
			return
		}
		s.indented = -1
	}
	if trimmed == "<#>" {
		s.indented = indent
		return
	}

	if s.body >= 0 {
		if indent > s.body {
			return
		}
		s.body = -1
	}

	if strings.HasPrefix(trimmed, "using") && (len(trimmed) == 5 || !isIdentChar(trimmed[5])) {
		return
	}

	trimmed = stripAttributes(trimmed)
	if trimmed == "" {
		return
	}

	for _, p := range patterns {
		m := p.re.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		s.emit(p, m, indent, lineNo, trimmed)
		return
	}
}

func (s *scanner) emit(p pattern, m []string, indent, lineNo int, trimmed string) {
	var name, specifiers, extended string
	if p.extension {
		extended, name, specifiers = strings.TrimSpace(m[2]), m[3], m[4]
	} else {
		name, specifiers = m[1], m[2]
	}
	if _, reserved := keywords[name]; reserved {
		return
	}

	if p.kind == decl.KindModule {
		for len(s.stack) > 0 && s.stack[len(s.stack)-1].indent >= indent {
			s.stack = s.stack[:len(s.stack)-1]
		}
	}
	if p.kind == decl.KindVariable && strings.HasSuffix(trimmed, ",") {
		return
	}

	vis := resolveVisibility(specifiers)
	fullPath := decl.JoinPath(s.parent(), name)

	if p.kind == decl.KindModule {
		s.stack = append(s.stack, frame{path: fullPath, indent: indent})
	}
	if p.kind == decl.KindFunction && strings.HasSuffix(trimmed, "=") {
		s.body = indent
	}

	if vis != decl.VisibilityPublic && !s.opts.IncludePrivate {
		return
	}
	s.nodes = append(s.nodes, &decl.Node{
		Name:         name,
		FullPath:     fullPath,
		Kind:         p.kind,
		IsPublic:     vis == decl.VisibilityPublic,
		Visibility:   vis,
		IsExtension:  p.extension,
		ExtendedType: extended,
		SourceFile:   s.file,
		SourceLine:   lineNo,
	})
}

// stripComments removes line comments and block comments from raw, carrying
// block nesting across lines. String literals are left intact.
func (s *scanner) stripComments(raw string) string {
	var b strings.Builder
	inString := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if s.comment > 0 {
			switch {
			case c == '<' && i+1 < len(raw) && raw[i+1] == '#':
				s.comment++
				i++
			case c == '#' && i+1 < len(raw) && raw[i+1] == '>':
				s.comment--
				i++
			}
			continue
		}
		if inString {
			b.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(raw) {
					i++
					b.WriteByte(raw[i])
				}
			case '"':
				inString = false
			}
			continue
		}
		switch {
		case c == '"':
			inString = true
			b.WriteByte(c)
		case c == '<' && i+1 < len(raw) && raw[i+1] == '#':
			// "<#>" on its own opens an indented comment, handled by the caller.
			if strings.TrimSpace(raw) == "<#>" {
				return raw
			}
			s.comment++
			i++
		case c == '#':
			return b.String()
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func stripAttributes(line string) string {
	for strings.HasPrefix(line, "@") {
		loc := attributeRe.FindStringIndex(line)
		if loc == nil {
			return line
		}
		line = line[loc[1]:]
	}
	return line
}

func measureIndent(line string) int {
	n := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			n++
		case '\t':
			n += tabWidth
		default:
			return n
		}
	}
	return n
}

func isIdentChar(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
