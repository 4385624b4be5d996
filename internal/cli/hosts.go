package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vivekkundariya/lo1/internal/ui"
)

var (
	hostsApply  bool
	hostsRemove bool
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Apply or remove the workspace's /etc/hosts proxy domains",
	Long:  `Writes (or removes) the marker-bracketed lo1 block in /etc/hosts that routes the manifest's proxy domains to localhost.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return fmt.Errorf("container not initialized")
		}
		if hostsApply && hostsRemove {
			return fmt.Errorf("--apply and --remove are mutually exclusive")
		}

		manifestPath, workspaceDir, err := resolveWorkspace()
		if err != nil {
			return err
		}

		if hostsRemove {
			if err := container.Orchestrator.Hosts.Remove(); err != nil {
				return err
			}
			ui.Successf("removed the lo1 hosts block")
			return nil
		}

		domains, err := container.Orchestrator.ProxyDomains(manifestPath, workspaceDir)
		if err != nil {
			return err
		}
		if len(domains) == 0 {
			ui.Infof("no proxy domains declared in the manifest")
			return nil
		}
		if err := container.Orchestrator.Hosts.Apply(domains); err != nil {
			return err
		}
		ui.Successf("applied hosts block for %d domain(s)", len(domains))
		return nil
	},
}

func init() {
	hostsCmd.Flags().BoolVar(&hostsApply, "apply", true, "write the hosts block (default)")
	hostsCmd.Flags().BoolVar(&hostsRemove, "remove", false, "remove the hosts block")
}
