package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"vdx/internal/errors"
	"vdx/internal/export"
	"vdx/internal/version"
)

var exportSCIP string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the declaration cache",
	Long: `Writes the cached declarations as a SCIP index so that SCIP-aware tools can
browse Verse definitions.

Examples:
  vdx export --scip index.scip`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportSCIP, "scip", "", "Write a SCIP index to this file")
	_ = exportCmd.MarkFlagRequired("scip")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	ctx, cancel := newContext()
	defer cancel()

	e := mustOpenEngine(ctx, nil)
	defer e.Close()

	tree := e.manager.Tree()
	if tree == nil {
		e.Close()
		fail(errors.New(errors.CacheNotReady, "declaration cache is empty"))
	}

	path := exportSCIP
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	if err := export.WriteSCIP(path, tree, version.Version); err != nil {
		e.Close()
		fail(err)
	}

	printResponse(&ExportResponseCLI{Path: path, Documents: len(tree.FileIndex), Symbols: tree.NodeCount()})
}
