package config

// ServiceMode controls how a service is supervised.
type ServiceMode string

const (
	ModeDev       ServiceMode = "dev"
	ModeContainer ServiceMode = "container"
	ModeSkip      ServiceMode = "skip"
)

// WorkspaceConfig is the immutable, validated representation of lo1.yaml.
type WorkspaceConfig struct {
	Version      string                  `yaml:"version"`
	Name         string                  `yaml:"name"`
	Plugins      map[string]string       `yaml:"plugins,omitempty"`
	Repositories map[string]string       `yaml:"repositories,omitempty"`
	Proxy        *ProxyConfig            `yaml:"proxy,omitempty"`
	ExtraCompose *ExtraComposeConfig     `yaml:"extraCompose,omitempty"`
	Hooks        WorkspaceHooks          `yaml:"hooks,omitempty"`
	Services     map[string]ServiceSpec  `yaml:"services"`
}

type ProxyConfig struct {
	Enabled bool            `yaml:"enabled"`
	Port    int             `yaml:"port"`
	TLD     string          `yaml:"tld"`
	TLS     *ProxyTLSConfig `yaml:"tls,omitempty"`
}

type ProxyTLSConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// ExtraComposeConfig is either a bare path (File set, InitTaskServices empty)
// or the full form with an explicit init-task list.
type ExtraComposeConfig struct {
	File             string   `yaml:"file"`
	InitTaskServices []string `yaml:"initTaskServices,omitempty"`
}

type WorkspaceHooks struct {
	PostInfrastructure string `yaml:"postInfrastructure,omitempty"`
	PostSetup          string `yaml:"postSetup,omitempty"`
	PreStop            string `yaml:"preStop,omitempty"`
}

// ServiceSpec is one entry of the services map in lo1.yaml.
type ServiceSpec struct {
	Type           string          `yaml:"type"`
	Path           string          `yaml:"path,omitempty"`
	Port           int             `yaml:"port,omitempty"`
	HostPort       int             `yaml:"hostPort,omitempty"`
	Mode           ServiceMode     `yaml:"mode,omitempty"`
	Command        string          `yaml:"command,omitempty"`
	ContainerImage string          `yaml:"containerImage,omitempty"`
	Compose        string          `yaml:"compose,omitempty"`
	Env            map[string]string `yaml:"env,omitempty"`
	Proxy          *ServiceProxy   `yaml:"proxy,omitempty"`
	Hooks          ServiceHooks    `yaml:"hooks,omitempty"`
	DependsOn      []string        `yaml:"dependsOn,omitempty"`
	InitTask       bool            `yaml:"initTask,omitempty"`
	ReadinessProbe string          `yaml:"readinessProbe,omitempty"`
	HotReload      bool            `yaml:"hotReload,omitempty"`

	// PluginConfig carries plugin-type-specific settings (e.g. the
	// localstack plugin's queues/topics/buckets lists) verbatim as parsed
	// YAML. Builtin service/app types leave this empty.
	PluginConfig map[string]any `yaml:"config,omitempty"`
}

type ServiceProxy struct {
	Domain     string `yaml:"domain"`
	PathPrefix string `yaml:"pathPrefix,omitempty"`
}

type ServiceHooks struct {
	PreStart  string `yaml:"preStart,omitempty"`
	PostStart string `yaml:"postStart,omitempty"`
	PreStop   string `yaml:"preStop,omitempty"`
}

// Builtin service types that need no plugin.
const (
	TypeService = "service"
	TypeApp     = "app"
)

func IsBuiltinType(t string) bool {
	return t == TypeService || t == TypeApp || t == ""
}

// ProjectName derives the compose project name for a workspace.
func ProjectName(workspaceName string) string {
	return "lo1-" + workspaceName
}

// NetworkName derives the single bridge network name for a workspace.
func NetworkName(workspaceName string) string {
	return "lo1-" + workspaceName + "-network"
}

// ProxyServiceName derives the reverse-proxy container/service name.
func ProxyServiceName(workspaceName string) string {
	return "lo1-" + workspaceName + "-proxy"
}

// ContainerName derives the docker container name for a single-container service.
func ContainerName(workspaceName, serviceName string) string {
	return "lo1-" + workspaceName + "-" + serviceName
}

// applyDefaults mutates a freshly-parsed manifest with the spec's documented
// defaults: mode=dev, dependsOn=[], initTask=false, hostPort=port.
func (c *WorkspaceConfig) applyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	for name, svc := range c.Services {
		if svc.Mode == "" {
			svc.Mode = ModeDev
		}
		if svc.HostPort == 0 {
			svc.HostPort = svc.Port
		}
		c.Services[name] = svc
	}
}
