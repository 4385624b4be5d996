package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the expected name of the workspace manifest.
const ManifestFileName = "lo1.yaml"

// ConfigError reports a manifest read/parse/validate failure with a
// breadcrumb naming the offending field path where one is known.
type ConfigError struct {
	Path    string
	Field   string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config %s: %s: %s", e.Path, e.Field, e.Message)
	}
	return fmt.Sprintf("config %s: %s", e.Path, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Load reads and parses the workspace manifest at path, applies documented
// defaults, and validates it against the structural invariants of the
// schema. It does not validate the dependency graph itself (see
// internal/domain/dependency) — only field-level invariants.
func Load(path string) (*WorkspaceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Message: "failed to read manifest", Cause: err}
	}

	var cfg WorkspaceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Path: path, Message: "failed to parse YAML", Cause: err}
	}

	cfg.applyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
