package plugin

import (
	"testing"

	"github.com/vivekkundariya/lo1/internal/config"
)

func manifestWith(services map[string]config.ServiceSpec, plugins map[string]string) *config.WorkspaceConfig {
	return &config.WorkspaceConfig{Name: "acme", Plugins: plugins, Services: services}
}

func TestLoader_All_ErrorsOnUndeclaredPluginType(t *testing.T) {
	cfg := manifestWith(map[string]config.ServiceSpec{
		"db": {Type: "postgres"},
	}, nil)

	l := NewLoader()
	if _, err := l.All(cfg); err == nil {
		t.Fatal("expected error for undeclared plugin type")
	}
}

func TestLoader_All_ResolvesDeclaredPlugins(t *testing.T) {
	cfg := manifestWith(map[string]config.ServiceSpec{
		"db": {Type: "postgres"},
	}, map[string]string{"postgres": ""})

	l := NewLoader()
	plugins, err := l.All(cfg)
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if len(plugins) != 1 || plugins[0].Type() != "postgres" {
		t.Fatalf("got %+v, want one postgres plugin", plugins)
	}
}

func TestLoader_All_SkipsBuiltinTypes(t *testing.T) {
	cfg := manifestWith(map[string]config.ServiceSpec{
		"api": {Type: config.TypeService},
		"web": {Type: config.TypeApp},
	}, nil)

	l := NewLoader()
	if _, err := l.All(cfg); err != nil {
		t.Fatalf("All() should not error on builtin types, got %v", err)
	}
}

func TestPostgres_ContributeCompose_UsesPluginConfigCredentials(t *testing.T) {
	cfg := manifestWith(map[string]config.ServiceSpec{
		"db": {
			Type: postgresType,
			Port: 5432,
			PluginConfig: map[string]any{
				"database": "orders",
				"user":     "orders_user",
				"password": "secret",
			},
		},
	}, map[string]string{postgresType: ""})

	p := &Postgres{}
	contrib, ok := p.ContributeCompose(cfg)
	if !ok {
		t.Fatal("expected ContributeCompose ok=true")
	}
	svc, ok := contrib.Services["db"].(map[string]any)
	if !ok {
		t.Fatalf("expected map service fragment, got %T", contrib.Services["db"])
	}
	env, ok := svc["environment"].(map[string]string)
	if !ok || env["POSTGRES_DB"] != "orders" || env["POSTGRES_USER"] != "orders_user" {
		t.Errorf("got env %+v, want orders/orders_user", env)
	}
}

func TestPostgres_ContributeCompose_NoServicesReturnsFalse(t *testing.T) {
	cfg := manifestWith(map[string]config.ServiceSpec{
		"api": {Type: config.TypeService},
	}, nil)
	p := &Postgres{}
	if _, ok := p.ContributeCompose(cfg); ok {
		t.Fatal("expected ok=false when no postgres-typed services exist")
	}
}

func TestParseQueues_SupportsBareStringAndDLQForm(t *testing.T) {
	pluginConfig := map[string]any{
		"queues": []any{
			"simple",
			map[string]any{"name": "orders", "dlq": true},
		},
	}
	queues := parseQueues(pluginConfig)
	if len(queues) != 2 {
		t.Fatalf("got %d queues, want 2", len(queues))
	}
	if queues[0].Name != "simple" || queues[0].DLQ {
		t.Errorf("got %+v, want {simple false}", queues[0])
	}
	if queues[1].Name != "orders" || !queues[1].DLQ {
		t.Errorf("got %+v, want {orders true}", queues[1])
	}
}

func TestParseBuckets_SupportsBareStringAndObjectForm(t *testing.T) {
	pluginConfig := map[string]any{
		"buckets": []any{"uploads", map[string]any{"name": "exports"}},
	}
	buckets := parseBuckets(pluginConfig)
	if len(buckets) != 2 || buckets[0] != "uploads" || buckets[1] != "exports" {
		t.Errorf("got %v, want [uploads exports]", buckets)
	}
}

func TestRedis_ContributeCompose_DefaultsPort(t *testing.T) {
	cfg := manifestWith(map[string]config.ServiceSpec{
		"cache": {Type: redisType},
	}, map[string]string{redisType: ""})
	r := &Redis{}
	contrib, ok := r.ContributeCompose(cfg)
	if !ok {
		t.Fatal("expected ok=true")
	}
	svc := contrib.Services["cache"].(map[string]any)
	ports := svc["ports"].([]string)
	if len(ports) != 1 || ports[0] != "6379:6379" {
		t.Errorf("got ports %v, want [6379:6379]", ports)
	}
}
