package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vivekkundariya/lo1/internal/config"
	"github.com/vivekkundariya/lo1/internal/ui"
)

var tlsSetupCmd = &cobra.Command{
	Use:   "tls-setup",
	Short: "Trust the proxy's local CA certificate",
	Long:  `Extracts the Caddy-managed root certificate from the running proxy container and installs it into the host trust store, skipping reinstall when the on-disk hash already matches.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return fmt.Errorf("container not initialized")
		}

		manifestPath, _, err := resolveWorkspace()
		if err != nil {
			return err
		}

		wsCfg, err := config.Load(manifestPath)
		if err != nil {
			return err
		}

		if err := container.Orchestrator.Tls.TrustCaddyCa(config.ProxyServiceName(wsCfg.Name)); err != nil {
			return err
		}
		ui.Successf("trusted the lo1 proxy CA")
		return nil
	},
}
