package main

import (
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <name>",
	Short: "Find declarations by identifier",
	Long: `Case-insensitive exact lookup of an identifier in the declaration cache.

Examples:
  vdx lookup player_manager
  vdx lookup OnBegin --format json`,
	Args: cobra.ExactArgs(1),
	Run:  runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) {
	ctx, cancel := newContext()
	defer cancel()

	e := mustOpenEngine(ctx, nil)
	defer e.Close()

	result := e.manager.LookupIdentifier(args[0])
	printResponse(&LookupResponseCLI{
		Command:      "lookup",
		Query:        args[0],
		FromCache:    result.FromCache,
		Declarations: toDeclarations(result.Matches),
	})
}
