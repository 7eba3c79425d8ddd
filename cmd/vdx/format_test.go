package main

import (
	"strings"
	"testing"
	"time"

	"vdx/internal/cache"
	"vdx/internal/decl"
)

func TestFormatResponse_JSON(t *testing.T) {
	resp := map[string]interface{}{
		"key": "value",
		"num": 42,
	}

	result, err := FormatResponse(resp, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, `"key": "value"`) {
		t.Error("JSON output missing expected key")
	}
	if !strings.Contains(result, `"num": 42`) {
		t.Error("JSON output missing expected number")
	}
}

func TestFormatResponse_YAML(t *testing.T) {
	resp := &BuildResponseCLI{ProjectName: "Arena", Files: 3, Declarations: 12}

	result, err := FormatResponse(resp, FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"projectName: Arena", "files: 3", "declarations: 12"} {
		if !strings.Contains(result, want) {
			t.Errorf("YAML output missing %q:\n%s", want, result)
		}
	}
}

func TestFormatResponse_UnsupportedFormat(t *testing.T) {
	resp := map[string]string{"key": "value"}

	_, err := FormatResponse(resp, "xml")
	if err == nil {
		t.Error("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("error should mention unsupported format, got: %v", err)
	}
}

func TestFormatLookupHuman(t *testing.T) {
	tests := []struct {
		name string
		resp *LookupResponseCLI
		want []string
	}{
		{
			name: "no matches",
			resp: &LookupResponseCLI{Command: "lookup", Query: "nothing"},
			want: []string{"lookup: nothing", "No declarations found"},
		},
		{
			name: "matches",
			resp: &LookupResponseCLI{
				Command: "module",
				Query:   "Widgets",
				Declarations: []DeclarationCLI{
					{Name: "Widgets", FullPath: "/Game/UI/Widgets", Kind: "module", Visibility: "public", File: "UI/widgets.verse", Line: 1},
					{Name: "Hide", FullPath: "/Game/UI/Hide", Kind: "function", Visibility: "public", ExtendedType: "widget", File: "UI/widgets.verse", Line: 9},
				},
			},
			want: []string{"Found 2 declarations", "1. /Game/UI/Widgets (module, public)", "UI/widgets.verse:1", "function on widget"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := FormatResponse(tt.resp, FormatHuman)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestFormatStatsHuman(t *testing.T) {
	resp := statsResponse(cache.Stats{
		Loaded:           true,
		State:            "ready",
		ProjectName:      "Arena",
		ProjectRoot:      "/work/arena",
		IdentifierCount:  5,
		DeclarationCount: 6,
		FileCount:        2,
		GeneratedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Persistent:       false,
	}, decl.CacheMetadata{FullScans: 1, IncrementalUpdates: 4})

	out, err := FormatResponse(resp, FormatHuman)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"vdx Cache - Arena", "State: ready", "Storage: memory only", "Files: 2", "Declarations: 6", "Identifiers: 5", "2026-01-02T03:04:05Z", "Full scans: 1, incremental updates: 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatHumanFallsBackToJSON(t *testing.T) {
	out, err := FormatResponse(struct {
		Name string `json:"name"`
	}{"x"}, FormatHuman)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"name": "x"`) {
		t.Errorf("expected JSON fallback, got %s", out)
	}
}

func TestToDeclarations(t *testing.T) {
	got := toDeclarations([]*decl.Node{
		{Name: "a", FullPath: "/M/a", Kind: decl.KindVariable, SourceFile: "m.verse", SourceLine: 3},
		{Name: "b", FullPath: "/M/b", Kind: decl.KindFunction, Visibility: decl.VisibilityPublic, IsExtension: true, ExtendedType: "agent"},
	})
	if len(got) != 2 {
		t.Fatalf("got %d declarations, want 2", len(got))
	}
	if got[0].Visibility != "internal" || got[0].File != "m.verse" || got[0].Line != 3 {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Visibility != "public" || got[1].ExtendedType != "agent" {
		t.Errorf("second = %+v", got[1])
	}
	if toDeclarations(nil) == nil {
		t.Error("expected empty slice, not nil")
	}
}
