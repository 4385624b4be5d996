package plugin

import (
	"context"
	"fmt"

	"github.com/vivekkundariya/lo1/internal/application/ports"
	"github.com/vivekkundariya/lo1/internal/config"
)

const redisType = "redis"

func init() {
	Register(redisType, func(specifier string) ports.Plugin {
		return &Redis{}
	})
}

// Redis contributes a redis compose service. Grounded on the teacher's
// docker.RedisProvisioner, whose ProvisionRedis was already correctly a
// no-op ("Redis is ready to use once the container is healthy") — that
// part needed no change, only the container-naming and compose shape
// moved to the plugin model.
type Redis struct{}

func (r *Redis) Type() string { return redisType }

func (r *Redis) ContributeCompose(cfg *config.WorkspaceConfig) (ports.ComposeContribution, bool) {
	names := servicesOfType(cfg, redisType)
	if len(names) == 0 {
		return ports.ComposeContribution{}, false
	}
	services := map[string]any{}
	for _, name := range names {
		svc := cfg.Services[name]
		port := svc.Port
		if port == 0 {
			port = 6379
		}
		hostPort := svc.HostPort
		if hostPort == 0 {
			hostPort = port
		}
		services[name] = map[string]any{
			"image": "redis:7-alpine",
			"ports": []string{fmt.Sprintf("%d:%d", hostPort, port)},
			"healthcheck": map[string]any{
				"test":     []string{"CMD", "redis-cli", "ping"},
				"interval": "2s",
				"timeout":  "3s",
				"retries":  10,
			},
		}
	}
	return ports.ComposeContribution{Services: services}, true
}

func (r *Redis) ContainerConfig(serviceName string, svc config.ServiceSpec) (ports.ContainerConfig, bool) {
	return ports.ContainerConfig{}, false
}

func (r *Redis) ProvisionInfra(ctx context.Context, cfg *config.WorkspaceConfig) error {
	return nil
}

func (r *Redis) SeedData(ctx context.Context, cfg *config.WorkspaceConfig) error {
	return nil
}
