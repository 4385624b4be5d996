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

const postgresType = "postgres"

func init() {
	Register(postgresType, func(specifier string) ports.Plugin {
		return &Postgres{}
	})
}

// Postgres contributes a postgres compose service and runs migrations
// and seed files against it via `docker exec ... psql`. The teacher's
// internal/infrastructure/docker.PostgresProvisioner only ever stubbed
// this out ("TODO: Implement migration and seeding logic") — the
// container-naming and docker-exec idiom is grounded on
// internal/infrastructure/docker/orchestrator.go's composeArgs/exec
// pattern, but the migration runner itself is new.
type Postgres struct{}

func (p *Postgres) Type() string { return postgresType }

func (p *Postgres) ContributeCompose(cfg *config.WorkspaceConfig) (ports.ComposeContribution, bool) {
	names := servicesOfType(cfg, postgresType)
	if len(names) == 0 {
		return ports.ComposeContribution{}, false
	}
	services := map[string]any{}
	for _, name := range names {
		svc := cfg.Services[name]
		db, user, password := postgresCredentials(svc.PluginConfig)
		port := svc.Port
		if port == 0 {
			port = 5432
		}
		hostPort := svc.HostPort
		if hostPort == 0 {
			hostPort = port
		}
		services[name] = map[string]any{
			"image": "postgres:16-alpine",
			"ports": []string{fmt.Sprintf("%d:%d", hostPort, port)},
			"environment": map[string]string{
				"POSTGRES_DB":       db,
				"POSTGRES_USER":     user,
				"POSTGRES_PASSWORD": password,
			},
			"healthcheck": map[string]any{
				"test":     []string{"CMD-SHELL", fmt.Sprintf("pg_isready -U %s -d %s", user, db)},
				"interval": "2s",
				"timeout":  "3s",
				"retries":  10,
			},
		}
	}
	return ports.ComposeContribution{Services: services}, true
}

func (p *Postgres) ContainerConfig(serviceName string, svc config.ServiceSpec) (ports.ContainerConfig, bool) {
	return ports.ContainerConfig{}, false
}

// ProvisionInfra runs every declared migration file, in lexical order,
// against the running container via `docker exec -i ... psql`, feeding
// each file on stdin.
func (p *Postgres) ProvisionInfra(ctx context.Context, cfg *config.WorkspaceConfig) error {
	for _, name := range servicesOfType(cfg, postgresType) {
		svc := cfg.Services[name]
		db, user, _ := postgresCredentials(svc.PluginConfig)
		containerName := config.ContainerName(cfg.Name, name)

		migrations := stringSlice(svc.PluginConfig["migrations"])
		sort.Strings(migrations)
		for _, path := range migrations {
			ui.SubStep("Running postgres migration %s on %s", path, name)
			if err := execSQLFile(ctx, containerName, user, db, path); err != nil {
				return fmt.Errorf("postgres %q: migration %s: %w", name, path, err)
			}
		}
	}
	return nil
}

// SeedData runs the optional seed SQL file after every plugin's
// ProvisionInfra has joined, so seed data can assume migrations across
// every infra service already ran.
func (p *Postgres) SeedData(ctx context.Context, cfg *config.WorkspaceConfig) error {
	for _, name := range servicesOfType(cfg, postgresType) {
		svc := cfg.Services[name]
		seed, _ := svc.PluginConfig["seed"].(string)
		if seed == "" {
			continue
		}
		db, user, _ := postgresCredentials(svc.PluginConfig)
		containerName := config.ContainerName(cfg.Name, name)
		ui.SubStep("Seeding postgres data %s on %s", seed, name)
		if err := execSQLFile(ctx, containerName, user, db, seed); err != nil {
			return fmt.Errorf("postgres %q: seed %s: %w", name, seed, err)
		}
	}
	return nil
}

func execSQLFile(ctx context.Context, containerName, user, db, hostPath string) error {
	cmd := exec.CommandContext(ctx, "docker", "exec", "-i", containerName, "psql", "-U", user, "-d", db, "-v", "ON_ERROR_STOP=1")
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

func postgresCredentials(pluginConfig map[string]any) (db, user, password string) {
	db = stringOr(pluginConfig["database"], "app")
	user = stringOr(pluginConfig["user"], "postgres")
	password = stringOr(pluginConfig["password"], "postgres")
	return
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func stringSlice(v any) []string {
	var out []string
	for _, raw := range asSlice(v) {
		if s, ok := raw.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
