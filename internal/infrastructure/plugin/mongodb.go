package plugin

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"

	"github.com/vivekkundariya/lo1/internal/application/ports"
	"github.com/vivekkundariya/lo1/internal/config"
	"github.com/vivekkundariya/lo1/internal/ui"
)

const mongoType = "mongodb"

func init() {
	Register(mongoType, func(specifier string) ports.Plugin {
		return &MongoDB{}
	})
}

// MongoDB contributes a mongo compose service and runs migration/seed
// scripts against it via `docker exec ... mongosh`. Grounded the same
// way as Postgres: the teacher's docker.MongoDBProvisioner only ever
// stubbed "ProvisionMongoDB" ("TODO: Implement seeding logic") — the
// container-exec idiom is adapted from orchestrator.go, the script
// runner itself is new.
type MongoDB struct{}

func (m *MongoDB) Type() string { return mongoType }

func (m *MongoDB) ContributeCompose(cfg *config.WorkspaceConfig) (ports.ComposeContribution, bool) {
	names := servicesOfType(cfg, mongoType)
	if len(names) == 0 {
		return ports.ComposeContribution{}, false
	}
	services := map[string]any{}
	for _, name := range names {
		svc := cfg.Services[name]
		port := svc.Port
		if port == 0 {
			port = 27017
		}
		hostPort := svc.HostPort
		if hostPort == 0 {
			hostPort = port
		}
		services[name] = map[string]any{
			"image": "mongo:7",
			"ports": []string{fmt.Sprintf("%d:%d", hostPort, port)},
			"healthcheck": map[string]any{
				"test":     []string{"CMD", "mongosh", "--eval", "db.adminCommand('ping')"},
				"interval": "2s",
				"timeout":  "3s",
				"retries":  10,
			},
		}
	}
	return ports.ComposeContribution{Services: services}, true
}

func (m *MongoDB) ContainerConfig(serviceName string, svc config.ServiceSpec) (ports.ContainerConfig, bool) {
	return ports.ContainerConfig{}, false
}

func (m *MongoDB) ProvisionInfra(ctx context.Context, cfg *config.WorkspaceConfig) error {
	for _, name := range servicesOfType(cfg, mongoType) {
		svc := cfg.Services[name]
		db := stringOr(svc.PluginConfig["database"], "app")
		containerName := config.ContainerName(cfg.Name, name)

		migrations := stringSlice(svc.PluginConfig["migrations"])
		sort.Strings(migrations)
		for _, path := range migrations {
			ui.SubStep("Running mongodb migration %s on %s", path, name)
			if err := execMongoScript(ctx, containerName, db, path); err != nil {
				return fmt.Errorf("mongodb %q: migration %s: %w", name, path, err)
			}
		}
	}
	return nil
}

func (m *MongoDB) SeedData(ctx context.Context, cfg *config.WorkspaceConfig) error {
	for _, name := range servicesOfType(cfg, mongoType) {
		svc := cfg.Services[name]
		seed, _ := svc.PluginConfig["seed"].(string)
		if seed == "" {
			continue
		}
		db := stringOr(svc.PluginConfig["database"], "app")
		containerName := config.ContainerName(cfg.Name, name)
		ui.SubStep("Seeding mongodb data %s on %s", seed, name)
		if err := execMongoScript(ctx, containerName, db, seed); err != nil {
			return fmt.Errorf("mongodb %q: seed %s: %w", name, seed, err)
		}
	}
	return nil
}

func execMongoScript(ctx context.Context, containerName, db, hostPath string) error {
	cmd := exec.CommandContext(ctx, "docker", "exec", "-i", containerName, "mongosh", db)
	f, err := os.Open(hostPath)
	if err != nil {
		return err
	}
	defer f.Close()
	cmd.Stdin = f
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(out))
	}
	return nil
}
