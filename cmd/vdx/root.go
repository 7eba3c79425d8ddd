package main

import (
	"github.com/spf13/cobra"

	"vdx/internal/version"
)

var (
	// repoFlag is the project root; empty means the working directory
	repoFlag string
	// verboseFlag raises the log level once per -v
	verboseFlag int
	// quietFlag silences logging entirely
	quietFlag bool
	// memoryFlag keeps the cache in memory instead of .vdx/vdx.db
	memoryFlag bool
	// formatFlag selects human, json or yaml output
	formatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "vdx",
	Short: "vdx - Verse declaration index",
	Long: `vdx indexes the declarations of a Verse project (modules, classes, structs,
interfaces, enums, functions and variables) and answers lookups by identifier
or module path from a persistent cache that follows file changes.`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("vdx version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "", "Project root (default: current directory)")
	rootCmd.PersistentFlags().CountVarP(&verboseFlag, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().BoolVar(&memoryFlag, "memory", false, "Keep the cache in memory only")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", string(FormatHuman), "Output format (human, json, yaml)")
}
