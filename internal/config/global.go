package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory for global lo1 configuration.
	GlobalConfigDir = ".lo1"

	// GlobalConfigFile is the global configuration file name.
	GlobalConfigFile = "config.yaml"

	// EnvManifestFile is the environment variable for a custom manifest path.
	EnvManifestFile = "LO1_CONFIG"

	// EnvHome is the environment variable overriding the lo1 home directory.
	EnvHome = "LO1_HOME"
)

// GlobalConfig is the user-wide configuration stored at ~/.lo1/config.yaml.
// It carries defaults that apply across workspaces and are not themselves
// part of any single workspace's lo1.yaml.
type GlobalConfig struct {
	Docker     DockerConfig     `yaml:"docker,omitempty"`
	LocalStack LocalStackConfig `yaml:"localstack,omitempty"`
}

type DockerConfig struct {
	ComposeCommand string `yaml:"compose_command,omitempty"`
}

type LocalStackConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Region   string `yaml:"region,omitempty"`
}

// GetHome returns the lo1 home directory: LO1_HOME env var, else ~/.lo1.
func GetHome() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(userHome, GlobalConfigDir), nil
}

// GetGlobalConfigPath returns the path to the global config file.
func GetGlobalConfigPath() (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalConfigFile), nil
}

// LoadGlobalConfig loads the global configuration, returning defaults if the
// file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	configPath, err := GetGlobalConfigPath()
	if err != nil {
		return DefaultGlobalConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultGlobalConfig(), nil
		}
		return nil, fmt.Errorf("failed to read global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse global config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// SaveGlobalConfig writes the global configuration.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	home, err := GetHome()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(home, GlobalConfigFile)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultGlobalConfig returns the default global configuration.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Docker: DockerConfig{
			ComposeCommand: "docker compose",
		},
		LocalStack: LocalStackConfig{
			Endpoint: "http://localhost:4566",
			Region:   "us-east-1",
		},
	}
}

func (c *GlobalConfig) applyDefaults() {
	defaults := DefaultGlobalConfig()
	if c.Docker.ComposeCommand == "" {
		c.Docker.ComposeCommand = defaults.Docker.ComposeCommand
	}
	if c.LocalStack.Endpoint == "" {
		c.LocalStack.Endpoint = defaults.LocalStack.Endpoint
	}
	if c.LocalStack.Region == "" {
		c.LocalStack.Region = defaults.LocalStack.Region
	}
}

// InitGlobalConfig creates the global config directory and file if absent.
func InitGlobalConfig() error {
	configPath, err := GetGlobalConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}
	return SaveGlobalConfig(DefaultGlobalConfig())
}

// GlobalConfigExists reports whether the global config file exists.
func GlobalConfigExists() bool {
	configPath, err := GetGlobalConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(configPath)
	return err == nil
}

// ForceInitGlobalConfig (re)writes the default global config, overwriting
// any existing one.
func ForceInitGlobalConfig() error {
	return SaveGlobalConfig(DefaultGlobalConfig())
}
