// Package export writes the declaration tree as a SCIP index.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"vdx/internal/decl"
)

const (
	// ToolName is recorded in the SCIP metadata.
	ToolName = "vdx"
	// Scheme prefixes every exported symbol.
	Scheme = "vdx"
	// Language is the SCIP document language.
	Language = "verse"
)

// ToSCIP converts tree into a SCIP index with one document per source file
// and a definition occurrence per declaration.
func ToSCIP(tree *decl.Tree, toolVersion string) *scippb.Index {
	index := &scippb.Index{
		Metadata: &scippb.Metadata{
			Version: scippb.ProtocolVersion_UnspecifiedProtocolVersion,
			ToolInfo: &scippb.ToolInfo{
				Name:      ToolName,
				Version:   toolVersion,
				Arguments: []string{"export", "--scip"},
			},
			ProjectRoot:          fileURI(tree.ProjectRootPath),
			TextDocumentEncoding: scippb.TextEncoding_UTF8,
		},
	}

	byFile := make(map[string][]*decl.Node)
	tree.Walk(func(n *decl.Node) bool {
		byFile[n.SourceFile] = append(byFile[n.SourceFile], n)
		return true
	})

	for _, file := range tree.Files() {
		nodes := byFile[file]
		sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].SourceLine < nodes[j].SourceLine })

		doc := &scippb.Document{
			RelativePath: file,
			Language:     Language,
		}
		for _, n := range nodes {
			sym := Symbol(tree.ProjectName, n)
			doc.Occurrences = append(doc.Occurrences, &scippb.Occurrence{
				Range:       occurrenceRange(n),
				Symbol:      sym,
				SymbolRoles: int32(scippb.SymbolRole_Definition),
			})
			doc.Symbols = append(doc.Symbols, &scippb.SymbolInformation{
				Symbol:          sym,
				Kind:            symbolKind(n.Kind),
				DisplayName:     n.Name,
				Documentation:   documentation(n),
				EnclosingSymbol: enclosingSymbol(tree.ProjectName, n),
			})
		}
		index.Documents = append(index.Documents, doc)
	}
	return index
}

// WriteSCIP encodes tree and writes it to path.
func WriteSCIP(path string, tree *decl.Tree, toolVersion string) error {
	data, err := proto.Marshal(ToSCIP(tree, toolVersion))
	if err != nil {
		return fmt.Errorf("failed to encode SCIP index: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write SCIP index: %w", err)
	}
	return nil
}

// ReadSCIP decodes an index written by WriteSCIP.
func ReadSCIP(path string) (*scippb.Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var index scippb.Index
	if err := proto.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse SCIP index from %s: %w", path, err)
	}
	return &index, nil
}

// Symbol returns the SCIP symbol string for n, e.g.
// "vdx . Arena . Game/UI/button#".
func Symbol(projectName string, n *decl.Node) string {
	segments := splitPath(n.FullPath)
	if len(segments) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(packagePrefix(projectName))
	for _, seg := range segments[:len(segments)-1] {
		b.WriteString(escapeName(seg))
		b.WriteByte('/')
	}
	b.WriteString(descriptor(segments[len(segments)-1], n.Kind))
	return b.String()
}

func enclosingSymbol(projectName string, n *decl.Node) string {
	segments := splitPath(n.FullPath)
	if len(segments) < 2 {
		return ""
	}
	var b strings.Builder
	b.WriteString(packagePrefix(projectName))
	for _, seg := range segments[:len(segments)-1] {
		b.WriteString(escapeName(seg))
		b.WriteByte('/')
	}
	return b.String()
}

func packagePrefix(projectName string) string {
	name := projectName
	if name == "" {
		name = "."
	}
	return Scheme + " . " + strings.ReplaceAll(name, " ", "  ") + " . "
}

func descriptor(name string, kind decl.Kind) string {
	name = escapeName(name)
	switch {
	case kind == decl.KindModule:
		return name + "/"
	case kind.IsContainer():
		return name + "#"
	case kind == decl.KindFunction:
		return name + "()."
	default:
		return name + "."
	}
}

// escapeName backtick-quotes names that are not plain identifiers.
func escapeName(name string) string {
	for _, r := range name {
		if !(r == '_' || r == '+' || r == '-' || r == '$' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return "`" + strings.ReplaceAll(name, "`", "``") + "`"
		}
	}
	return name
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func symbolKind(k decl.Kind) scippb.SymbolInformation_Kind {
	switch k {
	case decl.KindModule:
		return scippb.SymbolInformation_Module
	case decl.KindClass:
		return scippb.SymbolInformation_Class
	case decl.KindStruct:
		return scippb.SymbolInformation_Struct
	case decl.KindInterface:
		return scippb.SymbolInformation_Interface
	case decl.KindEnum:
		return scippb.SymbolInformation_Enum
	case decl.KindFunction:
		return scippb.SymbolInformation_Function
	case decl.KindVariable:
		return scippb.SymbolInformation_Variable
	default:
		return scippb.SymbolInformation_UnspecifiedKind
	}
}

func documentation(n *decl.Node) []string {
	doc := fmt.Sprintf("%s %s (%s)", n.Kind, n.FullPath, visibility(n))
	if n.IsExtension {
		doc += " extends " + n.ExtendedType
	}
	return []string{doc}
}

func visibility(n *decl.Node) decl.Visibility {
	if n.Visibility == "" {
		return decl.VisibilityInternal
	}
	return n.Visibility
}

// occurrenceRange spans the declaration's name on its (zero-based) line.
func occurrenceRange(n *decl.Node) []int32 {
	line := int32(n.SourceLine - 1)
	if line < 0 {
		line = 0
	}
	return []int32{line, 0, int32(len(n.Name))}
}

func fileURI(root string) string {
	if root == "" {
		return ""
	}
	return "file://" + filepath.ToSlash(root)
}
