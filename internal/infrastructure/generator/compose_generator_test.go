package generator

import (
	"os"
	"strings"
	"testing"

	"github.com/vivekkundariya/lo1/internal/application/ports"
	"github.com/vivekkundariya/lo1/internal/config"
)

func TestGenerate_PartitionsInfraAndAppServices(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.WorkspaceConfig{
		Name: "acme",
		Services: map[string]config.ServiceSpec{
			"api": {Type: config.TypeService, Mode: config.ModeDev, Command: "go run ."},
			"worker": {
				Type: config.TypeService, Mode: config.ModeContainer,
				ContainerImage: "acme/worker:latest", Port: 9000, HostPort: 9000,
			},
		},
	}

	g := NewComposeDocGenerator(dir)
	fileSet, err := g.Generate(cfg, nil)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if len(fileSet.AppServices) != 1 || fileSet.AppServices[0] != "worker" {
		t.Errorf("AppServices = %v, want [worker]", fileSet.AppServices)
	}
	if fileSet.GeneratedPath == "" {
		t.Error("expected a non-empty GeneratedPath")
	}
}

func TestGenerate_MergesPluginComposeContribution(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.WorkspaceConfig{
		Name:    "acme",
		Plugins: map[string]string{"postgres": ""},
		Services: map[string]config.ServiceSpec{
			"db": {Type: "postgres"},
		},
	}
	contributions := map[string]ports.ComposeContribution{
		"postgres": {
			Services: map[string]any{
				"db": map[string]any{"image": "postgres:16-alpine"},
			},
		},
	}

	g := NewComposeDocGenerator(dir)
	fileSet, err := g.Generate(cfg, contributions)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	found := false
	for _, name := range fileSet.InfraServices {
		if name == "db" {
			found = true
		}
	}
	if !found {
		t.Errorf("InfraServices = %v, want to contain db", fileSet.InfraServices)
	}
}

func TestGenerate_ProxyEnabledAddsProxyService(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.WorkspaceConfig{
		Name:     "acme",
		Proxy:    &config.ProxyConfig{Enabled: true, TLD: "localhost.dev"},
		Services: map[string]config.ServiceSpec{"api": {Type: config.TypeService, Mode: config.ModeDev, Command: "x"}},
	}
	g := NewComposeDocGenerator(dir)
	fileSet, err := g.Generate(cfg, nil)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	data, err := os.ReadFile(fileSet.GeneratedPath)
	if err != nil {
		t.Fatalf("reading generated compose: %v", err)
	}
	if !strings.Contains(string(data), "lo1-acme-proxy") {
		t.Errorf("expected generated compose to contain the proxy service name, got:\n%s", string(data))
	}
}
