// Package wiring assembles the dependency-injection container the CLI
// layer drives: every infrastructure adapter built against a ports
// interface, plus the orchestrator that ties them together. Grounded on
// the teacher's NewContainer, restructured around the orchestrator/
// starter pair that replaced the teacher's command/query handlers.
package wiring

import (
	"strings"

	"github.com/vivekkundariya/lo1/internal/application/orchestrator"
	"github.com/vivekkundariya/lo1/internal/application/starter"
	"github.com/vivekkundariya/lo1/internal/config"
	"github.com/vivekkundariya/lo1/internal/events"
	"github.com/vivekkundariya/lo1/internal/infrastructure/compose"
	"github.com/vivekkundariya/lo1/internal/infrastructure/container"
	"github.com/vivekkundariya/lo1/internal/infrastructure/generator"
	"github.com/vivekkundariya/lo1/internal/infrastructure/git"
	"github.com/vivekkundariya/lo1/internal/infrastructure/hooks"
	"github.com/vivekkundariya/lo1/internal/infrastructure/hosts"
	"github.com/vivekkundariya/lo1/internal/infrastructure/plugin"
	"github.com/vivekkundariya/lo1/internal/infrastructure/process"
	"github.com/vivekkundariya/lo1/internal/infrastructure/proxy"
	"github.com/vivekkundariya/lo1/internal/infrastructure/readiness"
	"github.com/vivekkundariya/lo1/internal/infrastructure/state"
	"github.com/vivekkundariya/lo1/internal/infrastructure/tls"
	"github.com/vivekkundariya/lo1/internal/infrastructure/watch"
)

// Container holds every collaborator the CLI layer needs, resolved once
// per process from the workspace's manifest location.
type Container struct {
	Resolver     *config.ManifestResolver
	Orchestrator *orchestrator.Orchestrator
	Events       *events.Bus
	Cloner       *git.Cloner
}

// NewContainer resolves the manifest + workspace directory for the
// current invocation and wires every collaborator against it. cliConfig
// is the optional --config flag value (empty string if unset).
func NewContainer(cliConfigPath string) (*Container, error) {
	resolver, err := config.NewManifestResolver(cliConfigPath)
	if err != nil {
		return nil, err
	}

	bus := events.New()

	composeGen := generator.NewComposeDocGenerator("")
	proxyGen := proxy.NewGenerator("")
	hostsWriter := hosts.NewWriter()
	tlsTruster := tls.NewTruster("")
	pluginLoader := plugin.NewLoader()
	stateStore := state.New()
	composeCommand := resolver.GetDockerComposeCommand()
	composeRunner := compose.New(composeCommand)
	containerRunner := container.New(containerEngineBin(composeCommand))
	processRunner := process.New()

	svcStarter := starter.New(
		processRunner,
		containerRunner,
		hooks.New(),
		readiness.New(),
		watch.New(processRunner),
	)

	orch := orchestrator.New(
		composeGen,
		proxyGen,
		hostsWriter,
		tlsTruster,
		pluginLoader,
		stateStore,
		composeRunner,
		svcStarter,
		bus,
	)

	return &Container{
		Resolver:     resolver,
		Orchestrator: orch,
		Events:       bus,
		Cloner:       git.New(),
	}, nil
}

// containerEngineBin derives the standalone container-engine binary (for
// container.Runner, which shells single-binary docker/podman commands) from
// the configured compose command string. "docker compose" -> "docker";
// single-binary forms like "podman-compose" or "docker-compose" have their
// "-compose" suffix stripped to recover the engine name.
func containerEngineBin(composeCommand string) string {
	fields := strings.Fields(composeCommand)
	if len(fields) == 0 {
		return "docker"
	}
	return strings.TrimSuffix(fields[0], "-compose")
}

// ForWorkspace rebinds the workspace-directory-scoped collaborators
// (compose generator, proxy generator, TLS truster) to workspaceDir,
// which is only known once the manifest has been resolved.
func (c *Container) ForWorkspace(workspaceDir string) {
	c.Orchestrator.ComposeGen = generator.NewComposeDocGenerator(workspaceDir)
	c.Orchestrator.ProxyGen = proxy.NewGenerator(workspaceDir)
	c.Orchestrator.Tls = tls.NewTruster(workspaceDir + "/.lo1")
}
