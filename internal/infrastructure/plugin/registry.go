// Package plugin implements spec.md §9's compile-time-registered plugin
// model: the spec's dynamic-import semantics are replaced with a static
// registry keyed by plugin type name, populated at process init instead of
// loaded at runtime.
package plugin

import (
	"fmt"
	"sort"

	"github.com/vivekkundariya/lo1/internal/application/ports"
	"github.com/vivekkundariya/lo1/internal/config"
)

// Factory constructs a Plugin instance for one declared manifest entry
// (the specifier string from WorkspaceConfig.Plugins, e.g. an endpoint or
// version — most builtin plugins ignore it).
type Factory func(specifier string) ports.Plugin

var registry = map[string]Factory{}

// Register adds a plugin factory under typeName. Called from each
// plugin's init().
func Register(typeName string, factory Factory) {
	registry[typeName] = factory
}

// Loader resolves plugin instances declared in a workspace manifest
// against the compile-time registry.
type Loader struct{}

func NewLoader() *Loader { return &Loader{} }

// Load resolves a single declared type name.
func (l *Loader) Load(typeName string) (ports.Plugin, error) {
	factory, ok := registry[typeName]
	if !ok {
		return nil, &ports.PluginError{Type: typeName, Message: "no plugin registered for this type"}
	}
	return factory(""), nil
}

// All resolves every plugin declared in cfg.Plugins, and validates that
// every service.type not a builtin has a declared plugin, per spec.md
// §4.9 step 4.
func (l *Loader) All(cfg *config.WorkspaceConfig) ([]ports.Plugin, error) {
	var names []string
	for typeName := range cfg.Plugins {
		names = append(names, typeName)
	}
	sort.Strings(names)

	plugins := make([]ports.Plugin, 0, len(names))
	for _, typeName := range names {
		factory, ok := registry[typeName]
		if !ok {
			return nil, &ports.PluginError{Type: typeName, Message: "declared in manifest but not registered"}
		}
		plugins = append(plugins, factory(cfg.Plugins[typeName]))
	}

	for serviceName, svc := range cfg.Services {
		if config.IsBuiltinType(svc.Type) {
			continue
		}
		if _, declared := cfg.Plugins[svc.Type]; !declared {
			return nil, &ports.PluginError{Type: svc.Type, Message: fmt.Sprintf("service %q uses an undeclared plugin type", serviceName)}
		}
	}

	return plugins, nil
}

// ForType returns the one plugin in plugins matching typeName, or nil.
func ForType(plugins []ports.Plugin, typeName string) ports.Plugin {
	for _, p := range plugins {
		if p.Type() == typeName {
			return p
		}
	}
	return nil
}
