package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vdx/internal/config"
	"vdx/internal/paths"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage vdx configuration",
	Long:  "View and manage vdx configuration stored in .vdx/config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after defaults and VDX_* environment overrides.

Examples:
  vdx config show
  VDX_WATCH_DEBOUNCEMS=200 vdx config show --format yaml`,
	Run: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to .vdx/config.json",
	Run:   runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigShowResponse is the response format for config show
type ConfigShowResponse struct {
	ConfigPath string         `json:"configPath" yaml:"configPath"`
	Exists     bool           `json:"exists" yaml:"exists"`
	Config     *config.Config `json:"config" yaml:"config"`
}

func runConfigShow(cmd *cobra.Command, args []string) {
	root := mustGetRepoRoot()

	cfg, err := config.LoadConfig(root)
	if err != nil {
		fail(err)
	}

	path := paths.ConfigPath(root)
	_, statErr := os.Stat(path)
	printResponse(&ConfigShowResponse{ConfigPath: path, Exists: statErr == nil, Config: cfg})
}

func runConfigInit(cmd *cobra.Command, args []string) {
	root := mustGetRepoRoot()

	path := paths.ConfigPath(root)
	if _, err := os.Stat(path); err == nil && !configForce {
		fail(fmt.Errorf("%s already exists (use --force to overwrite)", path))
	}
	if err := config.DefaultConfig().Save(root); err != nil {
		fail(fmt.Errorf("failed to write config: %w", err))
	}
	printResponse(&MessageResponseCLI{Message: "Wrote " + path})
}
