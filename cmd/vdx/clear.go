package main

import (
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the persisted declaration cache",
	Long: `Removes the stored declaration tree and scan metadata for the project. The next
command that reads the cache rebuilds it.`,
	Run: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) {
	ctx, cancel := newContext()
	defer cancel()

	root := mustGetRepoRoot()
	e, err := openEngine(root, newLogger(), nil)
	if err != nil {
		fail(err)
	}
	defer e.Close()

	if err := e.manager.Clear(ctx); err != nil {
		e.Close()
		fail(err)
	}
	printResponse(&MessageResponseCLI{Message: "Cleared declaration cache for " + root})
}
