package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"vdx/internal/decl"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

// DeclarationCLI is the printed form of one declaration
type DeclarationCLI struct {
	Name         string `json:"name" yaml:"name"`
	FullPath     string `json:"fullPath" yaml:"fullPath"`
	Kind         string `json:"kind" yaml:"kind"`
	Visibility   string `json:"visibility" yaml:"visibility"`
	ExtendedType string `json:"extendedType,omitempty" yaml:"extendedType,omitempty"`
	File         string `json:"file" yaml:"file"`
	Line         int    `json:"line" yaml:"line"`
}

// LookupResponseCLI is the output of lookup, module and contents
type LookupResponseCLI struct {
	Command      string           `json:"command" yaml:"command"`
	Query        string           `json:"query" yaml:"query"`
	FromCache    bool             `json:"fromCache" yaml:"fromCache"`
	Declarations []DeclarationCLI `json:"declarations" yaml:"declarations"`
}

// StatsResponseCLI is the output of stats
type StatsResponseCLI struct {
	ProjectName        string    `json:"projectName" yaml:"projectName"`
	ProjectRoot        string    `json:"projectRoot" yaml:"projectRoot"`
	State              string    `json:"state" yaml:"state"`
	Loaded             bool      `json:"loaded" yaml:"loaded"`
	Persistent         bool      `json:"persistent" yaml:"persistent"`
	Files              int       `json:"files" yaml:"files"`
	Declarations       int       `json:"declarations" yaml:"declarations"`
	Identifiers        int       `json:"identifiers" yaml:"identifiers"`
	GeneratedAt        time.Time `json:"generatedAt" yaml:"generatedAt"`
	LastScanID         string    `json:"lastScanId,omitempty" yaml:"lastScanId,omitempty"`
	FullScans          int       `json:"fullScans" yaml:"fullScans"`
	IncrementalUpdates int       `json:"incrementalUpdates" yaml:"incrementalUpdates"`
}

// BuildResponseCLI is the output of build
type BuildResponseCLI struct {
	ProjectName  string `json:"projectName" yaml:"projectName"`
	ScanID       string `json:"scanId" yaml:"scanId"`
	Files        int    `json:"files" yaml:"files"`
	Declarations int    `json:"declarations" yaml:"declarations"`
	Identifiers  int    `json:"identifiers" yaml:"identifiers"`
	DurationMs   int64  `json:"durationMs" yaml:"durationMs"`
}

// ExportResponseCLI is the output of export
type ExportResponseCLI struct {
	Path      string `json:"path" yaml:"path"`
	Documents int    `json:"documents" yaml:"documents"`
	Symbols   int    `json:"symbols" yaml:"symbols"`
}

// MessageResponseCLI is a plain status message
type MessageResponseCLI struct {
	Message string `json:"message" yaml:"message"`
}

// toDeclarations converts nodes for printing
func toDeclarations(nodes []*decl.Node) []DeclarationCLI {
	out := make([]DeclarationCLI, 0, len(nodes))
	for _, n := range nodes {
		vis := n.Visibility
		if vis == "" {
			vis = decl.VisibilityInternal
		}
		out = append(out, DeclarationCLI{
			Name:         n.Name,
			FullPath:     n.FullPath,
			Kind:         string(n.Kind),
			Visibility:   string(vis),
			ExtendedType: n.ExtendedType,
			File:         n.SourceFile,
			Line:         n.SourceLine,
		})
	}
	return out
}

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatYAML formats the response as YAML
func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *LookupResponseCLI:
		return formatLookupHuman(v), nil
	case *StatsResponseCLI:
		return formatStatsHuman(v), nil
	case *BuildResponseCLI:
		return formatBuildHuman(v), nil
	case *ExportResponseCLI:
		return fmt.Sprintf("Wrote %s (%d documents, %d symbols)", v.Path, v.Documents, v.Symbols), nil
	case *MessageResponseCLI:
		return v.Message, nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatLookupHuman(resp *LookupResponseCLI) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s: %s\n", resp.Command, resp.Query))
	b.WriteString(strings.Repeat("=", 60) + "\n")
	if len(resp.Declarations) == 0 {
		b.WriteString("No declarations found")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Found %d declarations\n\n", len(resp.Declarations)))

	for i, d := range resp.Declarations {
		kind := d.Kind
		if d.ExtendedType != "" {
			kind += " on " + d.ExtendedType
		}
		b.WriteString(fmt.Sprintf("%d. %s (%s, %s)\n", i+1, d.FullPath, kind, d.Visibility))
		b.WriteString(fmt.Sprintf("   %s:%d\n", d.File, d.Line))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStatsHuman(resp *StatsResponseCLI) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("vdx Cache - %s\n", valueOr(resp.ProjectName, "(unresolved)")))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	loadedIcon := "✓"
	if !resp.Loaded {
		loadedIcon = "✗"
	}
	b.WriteString(fmt.Sprintf("%s State: %s\n", loadedIcon, resp.State))
	b.WriteString(fmt.Sprintf("  Root: %s\n", resp.ProjectRoot))
	mode := "persistent"
	if !resp.Persistent {
		mode = "memory only"
	}
	b.WriteString(fmt.Sprintf("  Storage: %s\n\n", mode))

	b.WriteString(fmt.Sprintf("  Files: %d\n", resp.Files))
	b.WriteString(fmt.Sprintf("  Declarations: %d\n", resp.Declarations))
	b.WriteString(fmt.Sprintf("  Identifiers: %d\n", resp.Identifiers))
	if !resp.GeneratedAt.IsZero() {
		b.WriteString(fmt.Sprintf("  Generated: %s\n", resp.GeneratedAt.Format(time.RFC3339)))
	}
	b.WriteString(fmt.Sprintf("  Full scans: %d, incremental updates: %d", resp.FullScans, resp.IncrementalUpdates))
	return b.String()
}

func formatBuildHuman(resp *BuildResponseCLI) string {
	return fmt.Sprintf("Indexed %s: %d files, %d declarations, %d identifiers in %.1fs",
		resp.ProjectName, resp.Files, resp.Declarations, resp.Identifiers, float64(resp.DurationMs)/1000)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
