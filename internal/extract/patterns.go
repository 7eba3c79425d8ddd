package extract

import (
	"regexp"

	"vdx/internal/decl"
)

const (
	identRe      = `([A-Za-z_][A-Za-z0-9_]*)`
	specifiersRe = `((?:<[^<>]*>)*)`
	typeParamsRe = `(?:\([^()]*\))?`
)

// pattern classifies a single trimmed line. Patterns are tried in slice order
// and the first match consumes the line.
type pattern struct {
	kind      decl.Kind
	re        *regexp.Regexp
	extension bool
}

func typeDecl(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`^` + identRe + specifiersRe + `\s*` + typeParamsRe + `\s*:=\s*` + keyword + `\b`)
}

// Order matters: the variable shapes are substrings of every other shape.
var patterns = []pattern{
	{kind: decl.KindModule, re: typeDecl("module")},
	{kind: decl.KindClass, re: typeDecl("class")},
	{kind: decl.KindStruct, re: typeDecl("struct")},
	{kind: decl.KindInterface, re: typeDecl("interface")},
	{kind: decl.KindEnum, re: typeDecl("enum")},
	// (Self:type).Method<specs>(...)
	{kind: decl.KindFunction, extension: true, re: regexp.MustCompile(`^\(\s*` + identRe + `\s*:\s*([^()]+?)\s*\)\s*\.\s*` + identRe + specifiersRe + `\s*\(`)},
	// Name<specs>(params)<effects>:type = ...
	{kind: decl.KindFunction, re: regexp.MustCompile(`^` + identRe + specifiersRe + `\s*\(.*\)\s*(?:<[^<>]*>\s*)*(?::|=)`)},
	// var Name<specs>:type = value
	{kind: decl.KindVariable, re: regexp.MustCompile(`^(?:var\s+)?` + identRe + specifiersRe + `\s*:\s*([^=:\s][^=]*?)\s*(?:=.*)?$`)},
	// Name<specs> := value
	{kind: decl.KindVariable, re: regexp.MustCompile(`^(?:var\s+)?` + identRe + specifiersRe + `\s*:=\s*\S`)},
}

var (
	attributeRe  = regexp.MustCompile(`^@[A-Za-z_][A-Za-z0-9_]*(?:\{[^{}]*\})?(?:\([^()]*\))?\s*`)
	visibilityRe = regexp.MustCompile(`<\s*(public|protected|private|internal|scoped)\b[^<>]*>`)
)

// keywords never name a declaration.
var keywords = map[string]struct{}{
	"if": {}, "else": {}, "then": {}, "for": {}, "loop": {}, "while": {}, "case": {},
	"block": {}, "return": {}, "set": {}, "spawn": {}, "sync": {}, "race": {}, "rush": {},
	"branch": {}, "defer": {}, "break": {}, "using": {}, "not": {}, "and": {}, "or": {},
	"where": {}, "of": {}, "do": {}, "until": {}, "at": {}, "upon": {}, "when": {},
	"module": {}, "class": {}, "struct": {}, "interface": {}, "enum": {}, "var": {},
	"array": {}, "map": {}, "option": {}, "type": {}, "super": {}, "Self": {},
}

// resolveVisibility scans a specifier list such as "<public><override>".
func resolveVisibility(specifiers string) decl.Visibility {
	m := visibilityRe.FindStringSubmatch(specifiers)
	if m == nil {
		return decl.VisibilityInternal
	}
	return decl.Visibility(m[1])
}
