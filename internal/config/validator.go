package config

import "fmt"

// Validate checks the field-level invariants of a freshly-parsed manifest:
// dependsOn references exist, runner configuration is complete for the
// chosen mode, and ports are positive. It does not check for dependency
// cycles — that is internal/domain/dependency's job, since it needs the
// full graph rather than one service at a time.
func Validate(cfg *WorkspaceConfig) error {
	if cfg.Version == "" {
		return &ConfigError{Field: "version", Message: "is required"}
	}
	if cfg.Name == "" {
		return &ConfigError{Field: "name", Message: "is required"}
	}
	if len(cfg.Services) == 0 {
		return &ConfigError{Field: "services", Message: "at least one service is required"}
	}

	for name, svc := range cfg.Services {
		if err := validateService(cfg, name, svc); err != nil {
			return err
		}
	}

	return nil
}

func validateService(cfg *WorkspaceConfig, name string, svc ServiceSpec) error {
	field := fmt.Sprintf("services.%s", name)

	for _, dep := range svc.DependsOn {
		if _, ok := cfg.Services[dep]; !ok {
			return &ConfigError{Field: field + ".dependsOn", Message: fmt.Sprintf("unknown dependency %q", dep)}
		}
	}

	if svc.Port < 0 {
		return &ConfigError{Field: field + ".port", Message: "must be a positive integer"}
	}
	if svc.HostPort < 0 {
		return &ConfigError{Field: field + ".hostPort", Message: "must be a positive integer"}
	}

	hasPlugin := !IsBuiltinType(svc.Type)

	switch svc.Mode {
	case ModeContainer:
		if svc.ContainerImage == "" && svc.Compose == "" && !hasPlugin {
			return &ConfigError{Field: field, Message: "mode=container requires containerImage, compose, or a plugin-supplied container configuration"}
		}
	case ModeDev, "":
		if IsBuiltinType(svc.Type) && svc.Command == "" && !hasPlugin {
			return &ConfigError{Field: field + ".command", Message: "mode=dev builtin service requires a command"}
		}
	case ModeSkip:
		// nothing else required
	default:
		return &ConfigError{Field: field + ".mode", Message: fmt.Sprintf("unknown mode %q", svc.Mode)}
	}

	if !hasPlugin && cfg.Plugins != nil {
		// builtin types never need a plugin declaration
	} else if hasPlugin {
		if cfg.Plugins == nil {
			return &ConfigError{Field: field + ".type", Message: fmt.Sprintf("no plugin declared for type %q", svc.Type)}
		}
		if _, ok := cfg.Plugins[svc.Type]; !ok {
			return &ConfigError{Field: field + ".type", Message: fmt.Sprintf("no plugin declared for type %q", svc.Type)}
		}
	}

	return nil
}
