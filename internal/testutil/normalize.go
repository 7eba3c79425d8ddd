package testutil

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

// volatileFields are dropped before comparison.
var volatileFields = map[string]bool{
	"generatedAt":      true,
	"lastFullScan":     true,
	"lastIncremental":  true,
	"lastScanDuration": true,
	"lastScanId":       true,
	"timestamp":        true,
}

// Normalize round-trips data through JSON, drops volatile fields and replaces
// the fixture root with "$FIXTURE". Slice order is preserved.
func Normalize(t *testing.T, fixture *FixtureContext, data any) any {
	t.Helper()

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to marshal data for normalization: %v", err)
	}

	var generic any
	if err := json.Unmarshal(jsonBytes, &generic); err != nil {
		t.Fatalf("Failed to unmarshal data for normalization: %v", err)
	}

	return normalizeValue(generic, filepath.ToSlash(fixture.Root))
}

func normalizeValue(v any, root string) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, item := range val {
			if volatileFields[k] {
				continue
			}
			result[k] = normalizeValue(item, root)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = normalizeValue(item, root)
		}
		return result
	case string:
		s := strings.ReplaceAll(val, "\\", "/")
		if root != "" {
			s = strings.ReplaceAll(s, root, "$FIXTURE")
		}
		return s
	default:
		return v
	}
}

// MarshalNormalized normalizes data and marshals it to stable JSON bytes.
// Map keys are sorted by encoding/json; output uses 2-space indentation with
// a trailing newline.
func MarshalNormalized(t *testing.T, fixture *FixtureContext, data any) []byte {
	t.Helper()

	out, err := json.MarshalIndent(Normalize(t, fixture, data), "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal normalized data: %v", err)
	}
	return append(out, '\n')
}
