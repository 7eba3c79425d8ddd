package main

import (
	"github.com/spf13/cobra"
)

var contentsCmd = &cobra.Command{
	Use:   "contents <path>",
	Short: "List the direct members of a module or type",
	Args:  cobra.ExactArgs(1),
	Run:   runContents,
}

func init() {
	rootCmd.AddCommand(contentsCmd)
}

func runContents(cmd *cobra.Command, args []string) {
	ctx, cancel := newContext()
	defer cancel()

	e := mustOpenEngine(ctx, nil)
	defer e.Close()

	printResponse(&LookupResponseCLI{
		Command:      "contents",
		Query:        args[0],
		FromCache:    e.manager.GetStats().Loaded,
		Declarations: toDeclarations(e.manager.GetModuleContents(args[0])),
	})
}
