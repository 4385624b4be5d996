// Package dependency builds the workspace's service dependency graph and
// derives deterministic, parallelizable execution layers from it.
package dependency

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vivekkundariya/lo1/internal/config"
	"github.com/vivekkundariya/lo1/internal/domain/service"
)

// Layer is a set of service names that may start in parallel because none
// of them depends on another member of the same layer.
type Layer []service.Name

// DagError reports an unknown dependency or a cycle, with the full cycle
// path reconstructed for diagnostics.
type DagError struct {
	Message string
}

func (e *DagError) Error() string {
	return e.Message
}

type node struct {
	name         service.Name
	dependencies []service.Name
	dependents   []service.Name
}

// BuildDag validates every dependsOn reference, rejects cycles, and
// produces the ordered list of execution layers. Within a layer, names are
// sorted lexicographically for reproducible logs and tests.
func BuildDag(cfg *config.WorkspaceConfig) ([]Layer, error) {
	nodes, err := buildNodes(cfg)
	if err != nil {
		return nil, err
	}

	if err := detectCycle(nodes); err != nil {
		return nil, err
	}

	return layer(nodes), nil
}

func buildNodes(cfg *config.WorkspaceConfig) (map[service.Name]*node, error) {
	nodes := make(map[service.Name]*node, len(cfg.Services))
	for name := range cfg.Services {
		nodes[service.Name(name)] = &node{name: service.Name(name)}
	}

	for name, spec := range cfg.Services {
		n := nodes[service.Name(name)]
		for _, dep := range spec.DependsOn {
			depNode, ok := nodes[service.Name(dep)]
			if !ok {
				return nil, &DagError{Message: fmt.Sprintf("service %q depends on unknown service %q", name, dep)}
			}
			n.dependencies = append(n.dependencies, service.Name(dep))
			depNode.dependents = append(depNode.dependents, service.Name(name))
		}
	}

	return nodes, nil
}

type color int

const (
	white color = iota
	gray
	black
)

// detectCycle runs a three-color DFS over every node so the diagnostic
// reports a real cycle even when it isn't reachable from the first node
// visited. On hitting a gray (in-progress) node it reconstructs the full
// path via the current DFS stack.
func detectCycle(nodes map[service.Name]*node) error {
	colors := make(map[service.Name]color, len(nodes))

	var names []service.Name
	for name := range nodes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	var stack []service.Name
	var visit func(service.Name) error
	visit = func(name service.Name) error {
		colors[name] = gray
		stack = append(stack, name)

		deps := append([]service.Name(nil), nodes[name].dependencies...)
		sort.Slice(deps, func(i, j int) bool { return deps[i] < deps[j] })

		for _, dep := range deps {
			switch colors[dep] {
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			case gray:
				cycleStart := 0
				for i, n := range stack {
					if n == dep {
						cycleStart = i
						break
					}
				}
				cycle := append(append([]service.Name(nil), stack[cycleStart:]...), dep)
				parts := make([]string, len(cycle))
				for i, n := range cycle {
					parts[i] = n.String()
				}
				return &DagError{Message: fmt.Sprintf("dependency cycle detected: %s", strings.Join(parts, " → "))}
			case black:
				// already fully explored, no cycle through it
			}
		}

		stack = stack[:len(stack)-1]
		colors[name] = black
		return nil
	}

	for _, name := range names {
		if colors[name] == white {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	return nil
}

// layer runs Kahn's algorithm: peel off all zero-in-degree nodes as a
// layer, decrement dependents' in-degree, repeat. Cycles have already been
// rejected by detectCycle, so this always terminates with every node
// assigned to a layer; the leftover check is defensive.
func layer(nodes map[service.Name]*node) []Layer {
	inDegree := make(map[service.Name]int, len(nodes))
	for name, n := range nodes {
		inDegree[name] = len(n.dependencies)
	}

	var layers []Layer
	remaining := len(nodes)

	for remaining > 0 {
		var current []service.Name
		for name, deg := range inDegree {
			if deg == 0 {
				current = append(current, name)
			}
		}
		if len(current) == 0 {
			// defensive: detectCycle should have already caught this
			break
		}
		sort.Slice(current, func(i, j int) bool { return current[i] < current[j] })

		for _, name := range current {
			delete(inDegree, name)
			remaining--
			for _, dependent := range nodes[name].dependents {
				if _, ok := inDegree[dependent]; ok {
					inDegree[dependent]--
				}
			}
		}

		layers = append(layers, Layer(current))
	}

	return layers
}
