package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/orckahq/orcka/internal/bake"
	"github.com/orckahq/orcka/internal/manifest"
)

// Graph is the dependency graph over target names. Nodes are the union of
// manifest target names and bake definition names. Edges point from a target
// to the targets it depends on.
type Graph struct {
	nodes map[string]bool
	edges map[string][]string // target -> dependencies, declaration order
}

// CycleError reports a dependency cycle with its full ordered path.
type CycleError struct {
	Path []string // first and last element are the same node
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency found: %s", strings.Join(e.Path, " -> "))
}

// MissingReference reports an edge whose destination is not a known target.
type MissingReference struct {
	From string // the referencing target
	Name string // the unknown dependency name
}

func (r MissingReference) Error() string {
	return fmt.Sprintf("target '%s', required by '%s', not found in any of the specified bake files", r.Name, r.From)
}

// Build constructs the graph from manifest specs and bake definitions.
// Explicit edges come from depends_on and resolves lists; implicit edges from
// contexts entries that reference another target.
func Build(specs map[string]manifest.TargetSpec, defs map[string]*bake.Definition) *Graph {
	g := &Graph{
		nodes: make(map[string]bool),
		edges: make(map[string][]string),
	}

	for name := range specs {
		g.nodes[name] = true
	}
	for name := range defs {
		g.nodes[name] = true
	}

	for name, spec := range specs {
		for _, dep := range spec.Resolves {
			g.addEdge(name, dep)
		}
	}
	for name, def := range defs {
		for _, dep := range def.DependsOn {
			g.addEdge(name, dep)
		}
		for _, key := range sortedKeys(def.Contexts) {
			if ref, ok := def.Contexts[key].TargetName(); ok {
				g.addEdge(name, ref)
			}
		}
	}

	return g
}

func (g *Graph) addEdge(from, to string) {
	for _, existing := range g.edges[from] {
		if existing == to {
			return
		}
	}
	g.edges[from] = append(g.edges[from], to)
}

// Nodes returns all node names in ascending order.
func (g *Graph) Nodes() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dependencies returns the dependency names of a target in ascending order.
func (g *Graph) Dependencies(name string) []string {
	deps := append([]string(nil), g.edges[name]...)
	sort.Strings(deps)
	return deps
}

// MissingReferences returns every edge whose destination is not a node,
// ordered by referencing target then dependency name.
func (g *Graph) MissingReferences() []MissingReference {
	var missing []MissingReference
	for _, from := range g.Nodes() {
		for _, to := range g.Dependencies(from) {
			if !g.nodes[to] {
				missing = append(missing, MissingReference{From: from, Name: to})
			}
		}
	}
	return missing
}

// FindCycle returns the first cycle found by depth-first traversal, or nil.
// The search order is name-sorted, so the reported cycle is stable between
// runs.
func (g *Graph) FindCycle() *CycleError {
	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[string]int, len(g.nodes))
	var stack []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		state[name] = onStack
		stack = append(stack, name)

		for _, dep := range g.Dependencies(name) {
			if !g.nodes[dep] {
				continue // reported separately as a missing reference
			}
			switch state[dep] {
			case unvisited:
				if visit(dep) {
					return true
				}
			case onStack:
				for i, s := range stack {
					if s == dep {
						cycle = append(append([]string(nil), stack[i:]...), dep)
						break
					}
				}
				return true
			}
		}

		stack = stack[:len(stack)-1]
		state[name] = done
		return false
	}

	for _, name := range g.Nodes() {
		if state[name] == unvisited && visit(name) {
			return &CycleError{Path: cycle}
		}
	}
	return nil
}

// Check returns the first structural error in the graph: a cycle, or any
// missing reference. A nil result means the graph is safe to process.
func (g *Graph) Check() error {
	if cycle := g.FindCycle(); cycle != nil {
		return cycle
	}
	if missing := g.MissingReferences(); len(missing) > 0 {
		return missing[0]
	}
	return nil
}

// TopoOrder returns a processing order in which every dependency precedes its
// dependents. Ties between independent targets break by ascending name, so
// the order is identical between runs. Returns the cycle as an error when no
// such order exists.
func (g *Graph) TopoOrder() ([]string, error) {
	if cycle := g.FindCycle(); cycle != nil {
		return nil, cycle
	}

	// Kahn's algorithm with a name-sorted ready set.
	dependents := make(map[string][]string, len(g.nodes))
	degree := make(map[string]int, len(g.nodes))
	for _, from := range g.Nodes() {
		for _, to := range g.Dependencies(from) {
			if !g.nodes[to] {
				continue
			}
			dependents[to] = append(dependents[to], from)
			degree[from]++
		}
	}

	var ready []string
	for _, name := range g.Nodes() {
		if degree[name] == 0 {
			ready = append(ready, name)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		sort.Strings(ready)
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		for _, dep := range dependents[name] {
			degree[dep]--
			if degree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	return order, nil
}

func sortedKeys(m map[string]bake.ContextValue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
