package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vivekkundariya/lo1/internal/application/orchestrator"
	"github.com/vivekkundariya/lo1/internal/config"
	"github.com/vivekkundariya/lo1/internal/ui"
)

var (
	upServices string
	upMode     string
	upDetach   bool
	upClean    bool
	upNoHosts  bool
)

var upCmd = &cobra.Command{
	Use:   "up [services...]",
	Short: "Start the workspace's services and their dependencies",
	Long:  `Start one or more services along with all their dependencies, in dependency order. With no services named, every service in the manifest is started.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return fmt.Errorf("container not initialized")
		}

		manifestPath, workspaceDir, err := resolveWorkspace()
		if err != nil {
			return err
		}

		container.Events.Subscribe(printEvent)

		filter := args
		if upServices != "" {
			filter = append(filter, strings.Split(upServices, ",")...)
		}

		var mode config.ServiceMode
		switch upMode {
		case "":
		case "dev":
			mode = config.ModeDev
		case "container":
			mode = config.ModeContainer
		default:
			return fmt.Errorf("invalid --mode %q, want dev or container", upMode)
		}

		_, err = container.Orchestrator.Start(cmd.Context(), orchestrator.StartOptions{
			ManifestPath:  manifestPath,
			WorkspaceDir:  workspaceDir,
			ModeOverride:  mode,
			ServiceFilter: filter,
			ApplyHosts:    !upNoHosts,
			Clean:         upClean,
		})
		if err != nil {
			return err
		}

		ui.Successf("workspace is ready")
		return nil
	},
}

func init() {
	upCmd.Flags().StringVar(&upServices, "services", "", "comma-separated list of services to start (with their dependencies); default is every service")
	upCmd.Flags().StringVar(&upMode, "mode", "", "override every non-skip service's mode: dev or container")
	upCmd.Flags().BoolVarP(&upDetach, "detach", "d", true, "run in the background (always true: up returns once the workspace is ready)")
	upCmd.Flags().BoolVar(&upClean, "clean", false, "remove named volumes and orphan containers if this run fails or is cancelled and tears down (stale-state cleanup always removes them)")
	upCmd.Flags().BoolVar(&upNoHosts, "no-hosts", false, "skip writing the /etc/hosts block for proxy domains")
}
