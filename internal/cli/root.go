package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vivekkundariya/lo1/internal/application/wiring"
	"github.com/vivekkundariya/lo1/internal/ui"
)

var (
	container *wiring.Container

	cliConfigPath string
	jsonOutput    bool
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:     "lo1",
	Short:   "lo1 - local multi-service development orchestrator",
	Long:    `lo1 starts a workspace's services and their dependencies in the right order, wiring env vars, reverse-proxy routing, and readiness gating between them.`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" {
			return nil
		}
		ui.SetVerbose(verbose)

		c, err := wiring.NewContainer(cliConfigPath)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		container = c
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cliConfigPath, "config", "", "path to lo1.yaml (overrides LO1_CONFIG and directory search)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "show debug-level logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(hostsCmd)
	rootCmd.AddCommand(tlsSetupCmd)
	rootCmd.AddCommand(logsCmd)
}

// resolveWorkspace resolves the manifest path + workspace directory for
// this invocation and rebinds the container's workspace-scoped
// collaborators to it.
func resolveWorkspace() (manifestPath, workspaceDir string, err error) {
	manifestPath, workspaceDir, err = container.Resolver.Resolve()
	if err != nil {
		return "", "", err
	}
	container.ForWorkspace(workspaceDir)
	return manifestPath, workspaceDir, nil
}
