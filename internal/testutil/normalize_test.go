package testutil

import (
	"strings"
	"testing"
)

func TestMarshalNormalized(t *testing.T) {
	fixture := &FixtureContext{Name: "demo", Root: "/work/demo"}
	data := map[string]any{
		"generatedAt": "2026-01-01T00:00:00Z",
		"root":        "/work/demo/Game.verse",
		"windows":     `a\b`,
		"items":       []any{map[string]any{"b": 2, "a": 1, "timestamp": 5}},
	}

	got := string(MarshalNormalized(t, fixture, data))
	want := `{
  "items": [
    {
      "a": 1,
      "b": 2
    }
  ],
  "root": "$FIXTURE/Game.verse",
  "windows": "a/b"
}
`
	if got != want {
		t.Errorf("MarshalNormalized =\n%s\nwant\n%s", got, want)
	}
}

func TestUnifiedDiff(t *testing.T) {
	diff := unifiedDiff("a\nb\nc\n", "a\nx\nc\n", "golden.json")
	for _, want := range []string{"--- golden.json (expected)", "+++ golden.json (got)", "-b", "+x", " a"} {
		if !strings.Contains(diff, want) {
			t.Errorf("diff missing %q:\n%s", want, diff)
		}
	}
	if strings.Contains(diff, "-c") {
		t.Errorf("unchanged line reported:\n%s", diff)
	}
}

func TestLoadFixture(t *testing.T) {
	fixture := LoadFixture(t, "arena")
	if !strings.HasSuffix(fixture.ExpectedDir, "arena.expected") {
		t.Errorf("ExpectedDir = %s", fixture.ExpectedDir)
	}
	if !strings.HasSuffix(fixture.ExpectedPath("tree"), "tree.json") {
		t.Errorf("ExpectedPath = %s", fixture.ExpectedPath("tree"))
	}
}
