package orchestrator

import (
	"github.com/vivekkundariya/lo1/internal/config"
	"github.com/vivekkundariya/lo1/internal/domain/endpoint"
)

// ProxyDomains resolves the manifest's proxy domains without running a
// full Start, for the standalone `lo1 hosts --apply` command. It repeats
// Start's phase 7 registry/proxy-generation logic against the same
// collaborators.
func (o *Orchestrator) ProxyDomains(manifestPath, workspaceDir string) ([]string, error) {
	cfg, err := config.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	registry, err := endpoint.BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	registryURLs := make(map[string]string, len(registry))
	for name, ep := range registry {
		registryURLs[name] = ep.InternalURL
	}

	result, err := o.ProxyGen.Generate(cfg, registryURLs)
	if err != nil {
		return nil, err
	}
	return result.Domains, nil
}
