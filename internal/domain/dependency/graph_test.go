package dependency

import (
	"strings"
	"testing"

	"github.com/vivekkundariya/lo1/internal/config"
)

func manifestOf(services map[string][]string) *config.WorkspaceConfig {
	specs := make(map[string]config.ServiceSpec, len(services))
	for name, deps := range services {
		specs[name] = config.ServiceSpec{DependsOn: deps}
	}
	return &config.WorkspaceConfig{Services: specs}
}

func flatten(layers []Layer) []string {
	var out []string
	for _, l := range layers {
		for _, n := range l {
			out = append(out, n.String())
		}
	}
	return out
}

func layerStrings(l Layer) []string {
	out := make([]string, len(l))
	for i, n := range l {
		out[i] = n.String()
	}
	return out
}

func equalSet(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	gotSet := make(map[string]bool)
	for _, g := range got {
		gotSet[g] = true
	}
	for _, w := range want {
		if !gotSet[w] {
			t.Fatalf("got %v, want %v (missing %q)", got, want, w)
		}
	}
}

func TestBuildDag_ThreeLayerLinear(t *testing.T) {
	cfg := manifestOf(map[string][]string{
		"db":  {},
		"api": {"db"},
		"web": {"api"},
	})

	layers, err := BuildDag(cfg)
	if err != nil {
		t.Fatalf("BuildDag() error: %v", err)
	}
	if len(layers) != 3 {
		t.Fatalf("expected 3 layers, got %d: %v", len(layers), layers)
	}
	equalSet(t, layerStrings(layers[0]), []string{"db"})
	equalSet(t, layerStrings(layers[1]), []string{"api"})
	equalSet(t, layerStrings(layers[2]), []string{"web"})
}

func TestBuildDag_Diamond(t *testing.T) {
	cfg := manifestOf(map[string][]string{
		"db":     {},
		"api":    {"db"},
		"worker": {"db"},
		"app":    {"api", "worker"},
	})

	layers, err := BuildDag(cfg)
	if err != nil {
		t.Fatalf("BuildDag() error: %v", err)
	}
	if len(layers) != 3 {
		t.Fatalf("expected 3 layers, got %d: %v", len(layers), layers)
	}
	equalSet(t, layerStrings(layers[0]), []string{"db"})
	equalSet(t, layerStrings(layers[1]), []string{"api", "worker"})
	equalSet(t, layerStrings(layers[2]), []string{"app"})
}

func TestBuildDag_CycleDiagnostic(t *testing.T) {
	cfg := manifestOf(map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
	})

	_, err := BuildDag(cfg)
	if err == nil {
		t.Fatal("expected cycle error, got nil")
	}
	msg := err.Error()
	for _, name := range []string{"a", "b", "c"} {
		if !strings.Contains(msg, name) {
			t.Errorf("cycle message %q does not name %q", msg, name)
		}
	}
	if !strings.Contains(msg, "→") {
		t.Errorf("cycle message %q does not contain an arrow path", msg)
	}
}

func TestBuildDag_UnknownDependency(t *testing.T) {
	cfg := manifestOf(map[string][]string{
		"api": {"missing"},
	})

	_, err := BuildDag(cfg)
	if err == nil {
		t.Fatal("expected unknown-dependency error, got nil")
	}
}

func TestBuildDag_UnionEqualsServiceSet(t *testing.T) {
	cfg := manifestOf(map[string][]string{
		"db":     {},
		"cache":  {},
		"api":    {"db", "cache"},
		"worker": {"db"},
		"web":    {"api"},
	})

	layers, err := BuildDag(cfg)
	if err != nil {
		t.Fatalf("BuildDag() error: %v", err)
	}

	got := flatten(layers)
	want := []string{"db", "cache", "api", "worker", "web"}
	equalSet(t, got, want)

	layerOf := make(map[string]int)
	for i, l := range layers {
		for _, n := range l {
			layerOf[n.String()] = i
		}
	}
	for name, spec := range cfg.Services {
		for _, dep := range spec.DependsOn {
			if layerOf[dep] >= layerOf[name] {
				t.Errorf("dependency %q of %q is not in a strictly earlier layer", dep, name)
			}
		}
	}
}

func TestBuildDag_LexicographicTieBreak(t *testing.T) {
	cfg := manifestOf(map[string][]string{
		"zebra": {},
		"alpha": {},
		"mid":   {},
	})

	layers, err := BuildDag(cfg)
	if err != nil {
		t.Fatalf("BuildDag() error: %v", err)
	}
	if len(layers) != 1 {
		t.Fatalf("expected a single layer, got %d", len(layers))
	}
	got := layerStrings(layers[0])
	want := []string{"alpha", "mid", "zebra"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("layer order = %v, want lexicographic %v", got, want)
		}
	}
}
