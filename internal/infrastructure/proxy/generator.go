// Package proxy emits a Caddy-style reverse-proxy config from the
// manifest's proxy + per-service proxy declarations. No teacher or pack
// precedent reaches for a reverse proxy, so this is new: the template
// approach mirrors the compose generator's plain-text/template idiom
// (text/template, one stdlib-only file) rather than introducing a new
// third-party templating dependency for a single small file.
package proxy

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/vivekkundariya/lo1/internal/application/ports"
	"github.com/vivekkundariya/lo1/internal/config"
)

const caddyfileTemplate = `{{range .Sites}}{{.Domain}} {
	{{- if .PathPrefix}}
	handle_path {{.PathPrefix}}/* {
		reverse_proxy {{.Upstream}}
	}
	{{- else}}
	reverse_proxy {{.Upstream}}
	{{- end}}
}
{{end}}`

type site struct {
	Domain     string
	PathPrefix string
	Upstream   string
}

// Generator implements ports.ProxyConfigGenerator.
type Generator struct {
	WorkspaceDir string
}

func NewGenerator(workspaceDir string) *Generator {
	return &Generator{WorkspaceDir: workspaceDir}
}

// Generate builds one Caddy `reverse_proxy` site block per service
// declaring `proxy.domain`, or a derived `<service>.<workspace>.<tld>`
// domain when the workspace proxy is enabled but the service itself
// doesn't override it. registry maps service name to its internal URL
// (host:port), matching the endpoint registry.
func (g *Generator) Generate(cfg *config.WorkspaceConfig, registry map[string]string) (*ports.ProxyConfigResult, error) {
	if cfg.Proxy == nil || !cfg.Proxy.Enabled {
		return &ports.ProxyConfigResult{}, nil
	}

	var names []string
	for name := range cfg.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	var sites []site
	var domains []string
	for _, name := range names {
		svc := cfg.Services[name]
		if svc.Mode == config.ModeSkip || svc.Port == 0 {
			continue
		}
		upstream, ok := registry[name]
		if !ok {
			continue
		}

		domain := name + "." + cfg.Name + "." + cfg.Proxy.TLD
		pathPrefix := ""
		if svc.Proxy != nil {
			if svc.Proxy.Domain != "" {
				domain = svc.Proxy.Domain
			}
			pathPrefix = svc.Proxy.PathPrefix
		}

		sites = append(sites, site{Domain: domain, PathPrefix: pathPrefix, Upstream: upstream})
		domains = append(domains, domain)
	}

	tmpl, err := template.New("Caddyfile").Parse(caddyfileTemplate)
	if err != nil {
		return nil, &ports.ComposeError{Message: fmt.Sprintf("failed to parse Caddyfile template: %v", err)}
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, struct{ Sites []site }{Sites: sites}); err != nil {
		return nil, &ports.ComposeError{Message: fmt.Sprintf("failed to render Caddyfile: %v", err)}
	}

	outDir := filepath.Join(g.WorkspaceDir, ".lo1")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, &ports.ComposeError{Message: fmt.Sprintf("failed to create %s: %v", outDir, err)}
	}
	outPath := filepath.Join(outDir, "Caddyfile")
	if err := os.WriteFile(outPath, []byte(buf.String()), 0644); err != nil {
		return nil, &ports.ComposeError{Message: fmt.Sprintf("failed to write Caddyfile: %v", err)}
	}

	return &ports.ProxyConfigResult{CaddyfilePath: outPath, Domains: domains}, nil
}
