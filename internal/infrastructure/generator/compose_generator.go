// Package generator emits the generated compose document (including the
// proxy service that mounts the Caddyfile rendered by internal/infrastructure/proxy)
// from a validated WorkspaceConfig, grounded on the
// teacher's ComposeGeneratorImpl: the same ComposeFile/ComposeService/
// ComposeHealth shape and writeComposeFile header-comment convention, now
// producing a single generated document per spec.md §6 instead of the
// teacher's one-file-per-service layout (the new manifest model has no
// per-service infrastructure.InfrastructureRequirements to require it).
package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vivekkundariya/lo1/internal/application/ports"
	"github.com/vivekkundariya/lo1/internal/config"
)

// ComposeFile mirrors the subset of the compose v3-ish schema lo1 emits.
type ComposeFile struct {
	Name     string                    `yaml:"name,omitempty"`
	Services map[string]ComposeService `yaml:"services"`
	Networks map[string]ComposeNetwork `yaml:"networks,omitempty"`
}

type ComposeService struct {
	Image       string            `yaml:"image,omitempty"`
	Ports       []string          `yaml:"ports,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
	Volumes     []string          `yaml:"volumes,omitempty"`
	Networks    []string          `yaml:"networks,omitempty"`
	Healthcheck *ComposeHealth    `yaml:"healthcheck,omitempty"`
	Command     []string          `yaml:"command,omitempty"`
	ExtraHosts  []string          `yaml:"extra_hosts,omitempty"`
}

type ComposeHealth struct {
	Test        []string `yaml:"test"`
	Interval    string   `yaml:"interval"`
	Timeout     string   `yaml:"timeout"`
	Retries     int      `yaml:"retries"`
	StartPeriod string   `yaml:"start_period,omitempty"`
}

type ComposeNetwork struct {
	Name string `yaml:"name,omitempty"`
}

// ComposeDocGenerator implements ports.ComposeDocGenerator.
type ComposeDocGenerator struct {
	WorkspaceDir string
}

func NewComposeDocGenerator(workspaceDir string) *ComposeDocGenerator {
	return &ComposeDocGenerator{WorkspaceDir: workspaceDir}
}

// Generate builds the single generated compose document: every
// container-mode builtin service plus every plugin compose contribution,
// all on one bridge network, plus the proxy service when enabled. It
// also partitions services into infraServices (proxy + plugin
// contributions + extraCompose init tasks) and appServices (container-
// mode builtin services and services with a per-service compose file),
// per spec.md §4.9 step 6.
func (g *ComposeDocGenerator) Generate(cfg *config.WorkspaceConfig, contributions map[string]ports.ComposeContribution) (*ports.ComposeFileSet, error) {
	network := config.NetworkName(cfg.Name)
	compose := &ComposeFile{
		Name:     config.ProjectName(cfg.Name),
		Services: map[string]ComposeService{},
		Networks: map[string]ComposeNetwork{
			"default": {Name: network},
		},
	}

	fileSet := &ports.ComposeFileSet{
		PerServicePaths: map[string]string{},
	}

	var infraServices, appServices []string

	// Plugin-contributed infrastructure services (localstack, postgres,
	// mongodb, redis, ...).
	var pluginTypes []string
	for t := range contributions {
		pluginTypes = append(pluginTypes, t)
	}
	sort.Strings(pluginTypes)
	for _, t := range pluginTypes {
		contrib := contributions[t]
		var names []string
		for name := range contrib.Services {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			frag := contrib.Services[name]
			svc, err := coerceComposeService(frag)
			if err != nil {
				return nil, &ports.ComposeError{Message: fmt.Sprintf("plugin %q service %q: %v", t, name, err)}
			}
			svc.Networks = []string{"default"}
			compose.Services[name] = svc
			infraServices = append(infraServices, name)
		}
	}

	var serviceNames []string
	for name := range cfg.Services {
		serviceNames = append(serviceNames, name)
	}
	sort.Strings(serviceNames)

	for _, name := range serviceNames {
		svc := cfg.Services[name]
		if svc.Mode == config.ModeSkip {
			continue
		}

		if svc.Compose != "" {
			absPath := svc.Compose
			if !filepath.IsAbs(absPath) {
				absPath = filepath.Join(g.WorkspaceDir, absPath)
			}
			fileSet.PerServicePaths[name] = absPath
			appServices = append(appServices, name)
			continue
		}

		if svc.Mode != config.ModeContainer || svc.ContainerImage == "" {
			continue
		}

		composeSvc := ComposeService{
			Image:       svc.ContainerImage,
			Environment: svc.Env,
			Networks:    []string{"default"},
		}
		if svc.Port > 0 {
			composeSvc.Ports = []string{fmt.Sprintf("%d:%d", svc.HostPort, svc.Port)}
		}
		if runtime.GOOS == "linux" {
			composeSvc.ExtraHosts = []string{"host.docker.internal:host-gateway"}
		}
		compose.Services[name] = composeSvc
		appServices = append(appServices, name)
	}

	if cfg.Proxy != nil && cfg.Proxy.Enabled {
		proxyName := config.ProxyServiceName(cfg.Name)
		ports := []string{"80:80"}
		if cfg.Proxy.TLS != nil && cfg.Proxy.TLS.Enabled {
			tlsPort := cfg.Proxy.TLS.Port
			if tlsPort == 0 {
				tlsPort = 443
			}
			ports = append(ports, fmt.Sprintf("%d:443", tlsPort))
		}
		proxySvc := ComposeService{
			Image:    "caddy:2-alpine",
			Ports:    ports,
			Networks: []string{"default"},
			Volumes:  []string{filepath.Join(g.WorkspaceDir, ".lo1", "Caddyfile") + ":/etc/caddy/Caddyfile"},
		}
		if runtime.GOOS == "linux" {
			proxySvc.ExtraHosts = []string{"host.docker.internal:host-gateway"}
		}
		compose.Services[proxyName] = proxySvc
		infraServices = append(infraServices, proxyName)
	}

	if cfg.ExtraCompose != nil && cfg.ExtraCompose.File != "" {
		absPath := cfg.ExtraCompose.File
		if !filepath.IsAbs(absPath) {
			absPath = filepath.Join(g.WorkspaceDir, absPath)
		}
		fileSet.ExtraComposePath = absPath
		infraServices = append(infraServices, cfg.ExtraCompose.InitTaskServices...)
	}

	outDir := filepath.Join(g.WorkspaceDir, ".lo1")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, &ports.ComposeError{Message: fmt.Sprintf("failed to create %s: %v", outDir, err)}
	}
	outPath := filepath.Join(outDir, "compose.generated.yaml")
	if err := writeComposeFile(outPath, compose); err != nil {
		return nil, err
	}
	fileSet.GeneratedPath = outPath

	sort.Strings(infraServices)
	sort.Strings(appServices)
	fileSet.InfraServices = infraServices
	fileSet.AppServices = appServices

	return fileSet, nil
}

func writeComposeFile(outputPath string, compose *ComposeFile) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return &ports.ComposeError{Message: fmt.Sprintf("failed to create compose file: %v", err)}
	}
	defer file.Close()

	fmt.Fprintf(file, "# generated by lo1 - do not edit\n")
	fmt.Fprintf(file, "# regenerate with: lo1 up\n\n")

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(compose); err != nil {
		return &ports.ComposeError{Message: fmt.Sprintf("failed to write compose file: %v", err)}
	}
	return nil
}

// coerceComposeService converts a plugin's raw compose fragment (built as
// map[string]any for portability) into a typed ComposeService by
// round-tripping through YAML, so plugins can author fragments with
// plain map/slice literals without depending on this package's types.
func coerceComposeService(frag any) (ComposeService, error) {
	data, err := yaml.Marshal(frag)
	if err != nil {
		return ComposeService{}, err
	}
	var svc ComposeService
	if err := yaml.Unmarshal(data, &svc); err != nil {
		return ComposeService{}, err
	}
	return svc, nil
}
