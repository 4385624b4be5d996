package orchestrator

import (
	"github.com/vivekkundariya/lo1/internal/application/ports"
	"github.com/vivekkundariya/lo1/internal/config"
)

// ResolveFilter computes the transitive-dependency closure of requested
// over cfg's dependsOn edges via BFS, per spec.md §4.11. Calling with the
// full service set is the identity. Errors on any name not present in
// cfg.Services.
func ResolveFilter(cfg *config.WorkspaceConfig, requested []string) (map[string]bool, error) {
	closure := map[string]bool{}
	var queue []string

	for _, name := range requested {
		if _, ok := cfg.Services[name]; !ok {
			return nil, &ports.FilterError{Name: name}
		}
		if !closure[name] {
			closure[name] = true
			queue = append(queue, name)
		}
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, dep := range cfg.Services[name].DependsOn {
			if !closure[dep] {
				closure[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	return closure, nil
}
