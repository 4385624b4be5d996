package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ManifestResolver resolves the path to lo1.yaml from multiple sources.
// Priority order (highest to lowest):
//  1. CLI flag (--config)
//  2. Environment variable (LO1_CONFIG)
//  3. lo1.yaml in the current directory or one of its first
//     maxParentSearchDepth parents (walked upward)
type ManifestResolver struct {
	CLIConfigPath string
	GlobalConfig  *GlobalConfig
}

// NewManifestResolver creates a resolver, loading the global config for
// collaborator defaults (docker compose command, LocalStack endpoint).
func NewManifestResolver(cliConfigPath string) (*ManifestResolver, error) {
	globalConfig, err := LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load global config: %w", err)
	}

	return &ManifestResolver{
		CLIConfigPath: cliConfigPath,
		GlobalConfig:  globalConfig,
	}, nil
}

// maxParentSearchDepth bounds the upward walk for an implicit lo1.yaml so a
// misplaced invocation fails fast instead of walking to the filesystem root.
const maxParentSearchDepth = 5

// Resolve returns the manifest's absolute path and the workspace directory
// (the manifest's containing directory).
func (r *ManifestResolver) Resolve() (manifestPath string, workspaceDir string, err error) {
	if r.CLIConfigPath != "" {
		return resolveExplicit(r.CLIConfigPath)
	}

	if envPath := os.Getenv(EnvManifestFile); envPath != "" {
		return resolveExplicit(envPath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", "", fmt.Errorf("failed to get working directory: %w", err)
	}

	dir := cwd
	for i := 0; i <= maxParentSearchDepth; i++ {
		candidate := filepath.Join(dir, ManifestFileName)
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", "", fmt.Errorf("%s not found in %s or its nearest parent directories\n\nRun 'lo1 init' to scaffold one, or pass --config", ManifestFileName, cwd)
}

func resolveExplicit(path string) (string, string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return "", "", fmt.Errorf("manifest not found: %s", absPath)
	}
	return absPath, filepath.Dir(absPath), nil
}

// GetDockerComposeCommand returns the configured compose invocation, e.g.
// "docker compose" or "podman-compose".
func (r *ManifestResolver) GetDockerComposeCommand() string {
	return r.GlobalConfig.Docker.ComposeCommand
}

// GetLocalStackEndpoint returns the configured LocalStack endpoint.
func (r *ManifestResolver) GetLocalStackEndpoint() string {
	return r.GlobalConfig.LocalStack.Endpoint
}

// GetLocalStackRegion returns the configured LocalStack region.
func (r *ManifestResolver) GetLocalStackRegion() string {
	return r.GlobalConfig.LocalStack.Region
}
