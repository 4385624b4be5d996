package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vivekkundariya/lo1/internal/application/orchestrator"
	"github.com/vivekkundariya/lo1/internal/ui"
)

var downClean bool

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop the workspace's services and infrastructure",
	Long:  `Stop every service and infrastructure container lo1 started for this workspace, then remove the persisted state file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return fmt.Errorf("container not initialized")
		}

		manifestPath, workspaceDir, err := resolveWorkspace()
		if err != nil {
			return err
		}

		container.Events.Subscribe(printEvent)

		if err := container.Orchestrator.Stop(cmd.Context(), orchestrator.StopOptions{
			ManifestPath: manifestPath,
			WorkspaceDir: workspaceDir,
			Clean:        downClean,
		}); err != nil {
			return err
		}

		ui.Successf("workspace stopped")
		return nil
	},
}

func init() {
	downCmd.Flags().BoolVar(&downClean, "clean", false, "also remove named volumes and orphan containers")
}
