package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vivekkundariya/lo1/internal/cli/prompts"
	"github.com/vivekkundariya/lo1/internal/config"
	"github.com/vivekkundariya/lo1/internal/infrastructure/git"
	"github.com/vivekkundariya/lo1/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a new lo1.yaml manifest in the current directory",
	Long: `Walks through an interactive setup and writes a lo1.yaml manifest:
workspace name, services, and optionally a repositories map whose
entries are cloned right after the manifest is written.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	manifestPath := filepath.Join(wd, config.ManifestFileName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("%s already exists in %s", config.ManifestFileName, wd)
	}

	cfg := &config.WorkspaceConfig{
		Version:  "1",
		Services: map[string]config.ServiceSpec{},
	}

	cfg.Name, err = prompts.Text("Workspace name", filepath.Base(wd))
	if err != nil {
		return err
	}

	if wantsRepos, err := prompts.Confirm("Declare repositories to clone on init?", false); err != nil {
		return err
	} else if wantsRepos {
		cfg.Repositories = map[string]string{}
		for {
			name, err := prompts.Text("Repository name (empty to finish)", "")
			if err != nil {
				return err
			}
			if name == "" {
				break
			}
			url, err := prompts.Text("  Clone URL for "+name, "")
			if err != nil {
				return err
			}
			if url != "" {
				cfg.Repositories[name] = url
			}
		}
	}

	if wantsProxy, err := prompts.Confirm("Enable the reverse proxy?", true); err != nil {
		return err
	} else if wantsProxy {
		tld, err := prompts.Text("Local TLD for proxy domains", "localtest.me")
		if err != nil {
			return err
		}
		cfg.Proxy = &config.ProxyConfig{Enabled: true, Port: 80, TLD: tld}
	}

	for {
		more, err := prompts.Confirm(fmt.Sprintf("Add a service%s?", serviceCountSuffix(len(cfg.Services))), len(cfg.Services) == 0)
		if err != nil {
			return err
		}
		if !more {
			break
		}
		name, spec, err := promptService(cfg)
		if err != nil {
			return err
		}
		cfg.Services[name] = spec
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render manifest: %w", err)
	}

	fmt.Println("\n--- Generated lo1.yaml ---")
	fmt.Println(string(data))
	fmt.Println("---")

	if write, err := prompts.Confirm("Write this configuration?", true); err != nil {
		return err
	} else if !write {
		ui.Infof("aborted")
		return nil
	}

	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.ManifestFileName, err)
	}
	ui.Successf("created %s", manifestPath)

	if len(cfg.Repositories) > 0 {
		cloner := git.New()
		for name, url := range cfg.Repositories {
			path := filepath.Join(wd, name)
			var skipped bool
			err := ui.ShowSpinner("cloning "+name, func() error {
				var cloneErr error
				skipped, cloneErr = cloner.Clone(name, url, path)
				return cloneErr
			})
			if err != nil {
				ui.Errorf("failed to clone %s: %v", name, err)
				continue
			}
			if skipped {
				ui.SubStep("%s already exists, skipped", name)
			}
		}
	}

	ui.Infof("next: run 'lo1 up' to start the workspace")
	return nil
}

func serviceCountSuffix(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf(" (%d added)", n)
}

func promptService(cfg *config.WorkspaceConfig) (string, config.ServiceSpec, error) {
	name, err := prompts.Text("  Service name", "")
	if err != nil {
		return "", config.ServiceSpec{}, err
	}

	typ, err := prompts.Select("  Type", append([]string{config.TypeService, config.TypeApp}, pluginTypes(cfg)...), config.TypeService)
	if err != nil {
		return "", config.ServiceSpec{}, err
	}

	mode, err := prompts.Select("  Mode", []string{string(config.ModeDev), string(config.ModeContainer)}, string(config.ModeDev))
	if err != nil {
		return "", config.ServiceSpec{}, err
	}

	port, err := prompts.Int("  Port (0 for none)", 0)
	if err != nil {
		return "", config.ServiceSpec{}, err
	}

	spec := config.ServiceSpec{Type: typ, Mode: config.ServiceMode(mode), Port: port}

	if mode == string(config.ModeDev) {
		spec.Command, err = prompts.Text("  Command", "")
		if err != nil {
			return "", config.ServiceSpec{}, err
		}
	} else {
		spec.ContainerImage, err = prompts.Text("  Container image", "")
		if err != nil {
			return "", config.ServiceSpec{}, err
		}
	}

	if len(cfg.Services) > 0 {
		deps, err := prompts.Text("  Depends on (comma-separated, or empty)", "")
		if err != nil {
			return "", config.ServiceSpec{}, err
		}
		if deps != "" {
			spec.DependsOn = splitAndTrim(deps)
		}
	}

	return name, spec, nil
}

// pluginTypes lists the plugin types already declared in cfg.Plugins, so
// a service can bind to one by name during the same init session.
func pluginTypes(cfg *config.WorkspaceConfig) []string {
	types := make([]string, 0, len(cfg.Plugins))
	for t := range cfg.Plugins {
		types = append(types, t)
	}
	return types
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
