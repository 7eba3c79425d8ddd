package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"vdx/internal/builder"
)

var buildProgress bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Scan the project and rebuild the declaration cache",
	Long: `Discovers every .verse file under the project root, extracts its declarations
and replaces the persisted cache.

Examples:
  vdx build                 # Rebuild the cache for the current directory
  vdx build --repo ./Island # Rebuild another project
  vdx build --progress      # Print each file as it is scanned`,
	Run: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildProgress, "progress", false, "Print per-file progress to stderr")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) {
	ctx, cancel := newContext()
	defer cancel()

	var progress func(builder.Progress)
	if buildProgress {
		progress = func(p builder.Progress) {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", p.Current, p.Total, p.File)
		}
	}

	start := time.Now()
	e := mustOpenEngine(ctx, progress)
	defer e.Close()

	// Initialize only rescans when the stored cache was unusable.
	if e.manager.Metadata().LastFullScan.Before(start) {
		if err := e.manager.RebuildCache(ctx); err != nil {
			e.Close()
			fail(err)
		}
	}

	stats := e.manager.GetStats()
	printResponse(&BuildResponseCLI{
		ProjectName:  stats.ProjectName,
		ScanID:       e.manager.Metadata().LastScanID,
		Files:        stats.FileCount,
		Declarations: stats.DeclarationCount,
		Identifiers:  stats.IdentifierCount,
		DurationMs:   time.Since(start).Milliseconds(),
	})
}
