// Package endpoint derives per-service URLs and discovery environment
// variables from a workspace manifest, grounded on the service/host/port
// context construction the teacher's compose generator builds for env_refs
// resolution, generalized into the LO1_SERVICE_* contract.
package endpoint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vivekkundariya/lo1/internal/config"
)

// ConsumerMode selects which URL form a caller observes: a container on the
// workspace network sees the internal DNS name; a host process sees the
// published localhost port.
type ConsumerMode string

const (
	ConsumerHost      ConsumerMode = "host"
	ConsumerContainer ConsumerMode = "container"
)

// ServiceEndpoint is the resolved set of URLs for one service.
type ServiceEndpoint struct {
	Name        string
	Port        int
	HostPort    int
	InternalURL string
	ExternalURL string
	ProxyURL    string
	Mode        config.ServiceMode
}

// Registry maps service name to its resolved endpoint.
type Registry map[string]ServiceEndpoint

// BuildRegistry registers every service with a port and a non-skip mode.
func BuildRegistry(cfg *config.WorkspaceConfig) (Registry, error) {
	reg := make(Registry)

	scheme := "http"
	tld := ""
	if cfg.Proxy != nil {
		tld = cfg.Proxy.TLD
		if cfg.Proxy.TLS != nil && cfg.Proxy.TLS.Enabled {
			scheme = "https"
		}
	}

	for name, svc := range cfg.Services {
		if svc.Port == 0 || svc.Mode == config.ModeSkip {
			continue
		}

		hostPort := svc.HostPort
		if hostPort == 0 {
			hostPort = svc.Port
		}

		ep := ServiceEndpoint{
			Name:        name,
			Port:        svc.Port,
			HostPort:    hostPort,
			InternalURL: fmt.Sprintf("http://%s:%d", name, svc.Port),
			ExternalURL: fmt.Sprintf("http://localhost:%d", hostPort),
			Mode:        svc.Mode,
		}
		if tld != "" {
			ep.ProxyURL = fmt.Sprintf("%s://%s.%s.%s", scheme, name, cfg.Name, tld)
		}

		reg[name] = ep
	}

	return reg, nil
}

func upperSnake(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// BuildDiscoveryEnvVars emits LO1_SERVICE_<NAME>_{URL,PORT,PROXY_URL} for
// every registered endpoint, resolved for the given consumer.
func BuildDiscoveryEnvVars(reg Registry, consumerMode ConsumerMode) map[string]string {
	env := make(map[string]string)

	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ep := reg[name]
		prefix := "LO1_SERVICE_" + upperSnake(name)

		url := ep.ExternalURL
		port := ep.HostPort
		if consumerMode == ConsumerContainer {
			url = ep.InternalURL
			port = ep.Port
		}

		env[prefix+"_URL"] = url
		env[prefix+"_PORT"] = fmt.Sprintf("%d", port)
		if ep.ProxyURL != "" {
			env[prefix+"_PROXY_URL"] = ep.ProxyURL
		}
	}

	return env
}

// rewriteHostForm replaces every occurrence of "<service>:<port>" in value
// with "localhost:<hostPort>" for every registered service, the textual
// rewrite plugin env vars need when observed by a host consumer.
func rewriteHostForm(value string, reg Registry) string {
	for name, ep := range reg {
		containerForm := fmt.Sprintf("%s:%d", name, ep.Port)
		hostForm := fmt.Sprintf("localhost:%d", ep.HostPort)
		value = strings.ReplaceAll(value, containerForm, hostForm)
	}
	return value
}

// BuildServiceEnv assembles the full environment for one service: the two
// reserved vars, discovery env vars (rewritten for host consumers where
// plugin env vars reference other services by container address), plugin
// env vars, and finally the service's own static env — which always wins
// over anything generated, per the manifest's documented invariant.
func BuildServiceEnv(
	serviceName string,
	svcCfg config.ServiceSpec,
	cfg *config.WorkspaceConfig,
	reg Registry,
	pluginEnvVars map[string]string,
	consumerMode ConsumerMode,
) map[string]string {
	env := make(map[string]string)

	env["LO1_SERVICE_NAME"] = serviceName
	env["LO1_WORKSPACE_NAME"] = cfg.Name

	for k, v := range BuildDiscoveryEnvVars(reg, consumerMode) {
		env[k] = v
	}

	for k, v := range pluginEnvVars {
		if consumerMode == ConsumerHost {
			v = rewriteHostForm(v, reg)
		}
		env[k] = v
	}

	for k, v := range svcCfg.Env {
		env[k] = v
	}

	return env
}
