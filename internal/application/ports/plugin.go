package ports

import (
	"context"

	"github.com/vivekkundariya/lo1/internal/config"
)

// ComposeContribution is a plugin-emitted set of compose service
// definitions plus env vars, merged into the generated compose document.
type ComposeContribution struct {
	Services map[string]any // raw compose service fragments, merged verbatim
	EnvVars  map[string]string
}

// ContainerConfig is what a plugin supplies when it owns the container
// configuration for a service directly, bypassing compose generation.
type ContainerConfig struct {
	Image      string
	Command    []string
	Binds      []string
	WorkingDir string
	Env        map[string]string
}

// Plugin is a compile-time-registered extension contributing a service
// type's infrastructure. Plugins are never dynamically loaded — the spec's
// dynamic-import semantics are replaced with a static registry (see
// infrastructure/plugin) keyed by the type name declared in
// WorkspaceConfig.Plugins.
type Plugin interface {
	// Type is the plugin type name, matched against ServiceSpec.Type.
	Type() string

	// ContributeCompose gathers services of this plugin's type and
	// returns compose fragments + env vars to merge into the generated
	// document. Returns ok=false when the plugin contributes nothing.
	ContributeCompose(cfg *config.WorkspaceConfig) (ComposeContribution, bool)

	// ContainerConfig returns a container configuration for a single
	// service of this plugin's type, when the plugin owns container
	// configuration directly instead of via compose. Returns ok=false
	// otherwise.
	ContainerConfig(serviceName string, svc config.ServiceSpec) (ContainerConfig, bool)

	// ProvisionInfra runs once infra services are up and ready, e.g.
	// creating LocalStack queues/buckets declared by the manifest.
	ProvisionInfra(ctx context.Context, cfg *config.WorkspaceConfig) error

	// SeedData runs after ProvisionInfra across all plugins has joined.
	SeedData(ctx context.Context, cfg *config.WorkspaceConfig) error
}

// PluginLoader resolves the plugin instance declared for a type name.
type PluginLoader interface {
	Load(typeName string) (Plugin, error)
	All(cfg *config.WorkspaceConfig) ([]Plugin, error)
}
