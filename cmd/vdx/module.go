package main

import (
	"github.com/spf13/cobra"
)

var moduleCmd = &cobra.Command{
	Use:   "module <path>",
	Short: "Find declarations by module path",
	Long: `Matches declarations whose full path equals the query or ends with it on a
segment boundary. "UI/Widgets" and "Widgets" both match /Game/UI/Widgets.

Examples:
  vdx module /Game/UI/Widgets
  vdx module Widgets`,
	Args: cobra.ExactArgs(1),
	Run:  runModule,
}

func init() {
	rootCmd.AddCommand(moduleCmd)
}

func runModule(cmd *cobra.Command, args []string) {
	ctx, cancel := newContext()
	defer cancel()

	e := mustOpenEngine(ctx, nil)
	defer e.Close()

	printResponse(&LookupResponseCLI{
		Command:      "module",
		Query:        args[0],
		FromCache:    e.manager.GetStats().Loaded,
		Declarations: toDeclarations(e.manager.LookupModulePath(args[0])),
	})
}
