package main

import (
	"github.com/spf13/cobra"

	"vdx/internal/cache"
	"vdx/internal/decl"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show declaration cache statistics",
	Run:   runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) {
	ctx, cancel := newContext()
	defer cancel()

	e := mustOpenEngine(ctx, nil)
	defer e.Close()

	printResponse(statsResponse(e.manager.GetStats(), e.manager.Metadata()))
}

func statsResponse(s cache.Stats, meta decl.CacheMetadata) *StatsResponseCLI {
	return &StatsResponseCLI{
		ProjectName:        s.ProjectName,
		ProjectRoot:        s.ProjectRoot,
		State:              s.State,
		Loaded:             s.Loaded,
		Persistent:         s.Persistent,
		Files:              s.FileCount,
		Declarations:       s.DeclarationCount,
		Identifiers:        s.IdentifierCount,
		GeneratedAt:        s.GeneratedAt,
		LastScanID:         meta.LastScanID,
		FullScans:          meta.FullScans,
		IncrementalUpdates: meta.IncrementalUpdates,
	}
}
