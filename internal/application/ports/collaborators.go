package ports

import (
	"context"

	"github.com/vivekkundariya/lo1/internal/config"
)

// ComposeFileSet is the collection of generated/discovered compose files
// for one run, partitioned into infra and app services per spec.
type ComposeFileSet struct {
	GeneratedPath    string   // <workspaceDir>/.lo1/compose.generated.yaml
	ExtraComposePath string   // preprocessed absolute path, if extraCompose set
	PerServicePaths  map[string]string
	InfraServices    []string
	AppServices      []string
}

// AllPaths returns every compose file path that must be passed as -f args.
func (c *ComposeFileSet) AllPaths() []string {
	var paths []string
	if c.GeneratedPath != "" {
		paths = append(paths, c.GeneratedPath)
	}
	if c.ExtraComposePath != "" {
		paths = append(paths, c.ExtraComposePath)
	}
	for _, p := range c.PerServicePaths {
		paths = append(paths, p)
	}
	return paths
}

// ComposeDocGenerator emits the generated compose document and partitions
// services into infraServices/appServices per spec.md §4.9 step 6.
type ComposeDocGenerator interface {
	Generate(cfg *config.WorkspaceConfig, contributions map[string]ComposeContribution) (*ComposeFileSet, error)
}

// ProxyConfigResult is the outcome of generating the reverse-proxy config.
type ProxyConfigResult struct {
	CaddyfilePath string
	Domains       []string
}

// ProxyConfigGenerator emits a Caddy-style routing file from the manifest's
// proxy + per-service proxy declarations.
type ProxyConfigGenerator interface {
	Generate(cfg *config.WorkspaceConfig, registry map[string]string) (*ProxyConfigResult, error)
}

// HostsWriter applies/removes a marker-bracketed block in the system hosts
// file.
type HostsWriter interface {
	GenerateBlock(domains []string) string
	Apply(domains []string) error
	Remove() error
}

// TlsTruster extracts a root cert from the proxy container and installs it
// into the host trust store, idempotent via content hash.
type TlsTruster interface {
	TrustCaddyCa(containerName string) error
}

// RepoCloner clones the repositories declared in the manifest for `lo1
// init`, skipping paths that already exist.
type RepoCloner interface {
	Clone(name, url, path string) (skipped bool, err error)
}

// HotReloader restarts a mode=dev process handle on file changes under its
// working directory, for services with run.hotReload set. Watch takes
// ownership of handle: the returned ServiceHandle's Stop also tears down
// the underlying watcher.
type HotReloader interface {
	Watch(ctx context.Context, opts ProcessStartOptions, handle ServiceHandle) (ServiceHandle, error)
}
