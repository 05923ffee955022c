package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

type edge struct {
	from InternedString
	to   InternedString
}

// DependencyGraph holds packages and the "depends on" edges between them.
// An edge from -> to means to must be installed before from.
type DependencyGraph struct {
	nodes map[InternedString]Package
	order []InternedString
	deps  map[InternedString][]InternedString
	edges map[edge]struct{}
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[InternedString]Package),
		deps:  make(map[InternedString][]InternedString),
		edges: make(map[edge]struct{}),
	}
}

// AddNode inserts pkg keyed by its name.
func (g *DependencyGraph) AddNode(pkg *Package) error {
	name := NewInternedString(pkg.Name)
	if _, exists := g.nodes[name]; exists {
		return zerr.With(zerr.Wrap(ErrDuplicateNode, ""), "package", pkg.Name)
	}
	g.nodes[name] = *pkg
	g.order = append(g.order, name)
	return nil
}

// AddDependency records that from depends on to.
// Recording the same edge twice is a no-op.
func (g *DependencyGraph) AddDependency(from, to string) error {
	f := NewInternedString(from)
	t := NewInternedString(to)
	for _, n := range []InternedString{f, t} {
		if _, exists := g.nodes[n]; !exists {
			return zerr.With(zerr.Wrap(ErrUnknownNode, ""), "package", n.String())
		}
	}

	e := edge{from: f, to: t}
	if _, exists := g.edges[e]; exists {
		return nil
	}
	g.edges[e] = struct{}{}
	g.deps[f] = append(g.deps[f], t)
	return nil
}

// HasPackage reports whether a node named name exists.
func (g *DependencyGraph) HasPackage(name string) bool {
	_, ok := g.nodes[NewInternedString(name)]
	return ok
}

// Package returns the node named name.
func (g *DependencyGraph) Package(name string) (Package, bool) {
	pkg, ok := g.nodes[NewInternedString(name)]
	return pkg, ok
}

// PackageNames returns the node names in insertion order.
func (g *DependencyGraph) PackageNames() []string {
	names := make([]string, len(g.order))
	for i, n := range g.order {
		names[i] = n.String()
	}
	return names
}

// Dependencies returns the direct dependencies of name in the order they were added.
func (g *DependencyGraph) Dependencies(name string) []string {
	deps := g.deps[NewInternedString(name)]
	names := make([]string, len(deps))
	for i, d := range deps {
		names[i] = d.String()
	}
	return names
}

// Len returns the number of nodes.
func (g *DependencyGraph) Len() int {
	return len(g.order)
}

// InstallationOrder returns every package such that each one comes after all of its dependencies.
// Roots and edges are walked in insertion order, so the result is deterministic.
func (g *DependencyGraph) InstallationOrder() ([]Package, error) {
	const (
		unvisited = iota
		visiting
		visited
	)

	type frame struct {
		name InternedString
		next int
	}

	state := make(map[InternedString]int, len(g.order))
	ordered := make([]Package, 0, len(g.order))

	for _, root := range g.order {
		if state[root] != unvisited {
			continue
		}

		state[root] = visiting
		stack := []frame{{name: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := g.deps[top.name]

			if top.next < len(deps) {
				dep := deps[top.next]
				top.next++

				switch state[dep] {
				case visiting:
					path := make([]string, 0, len(stack)+1)
					for _, f := range stack {
						path = append(path, f.name.String())
					}
					return nil, NewCircularDependencyError(append(path, dep.String()))
				case unvisited:
					state[dep] = visiting
					stack = append(stack, frame{name: dep})
				}
				continue
			}

			state[top.name] = visited
			ordered = append(ordered, g.nodes[top.name])
			stack = stack[:len(stack)-1]
		}
	}

	return ordered, nil
}

// NewCircularDependencyError builds a cycle error from an ancestor path ending in the repeated name.
// Only the cycle itself is kept: the path is trimmed to start at the first occurrence of its last element.
func NewCircularDependencyError(path []string) error {
	cycle := path
	if n := len(path); n > 0 {
		for i, name := range path[:n-1] {
			if name == path[n-1] {
				cycle = path[i:]
				break
			}
		}
	}
	cycle = append([]string(nil), cycle...)

	return zerr.With(
		zerr.Wrap(ErrCircularDependency, "cycle "+strings.Join(cycle, " -> ")),
		"path", cycle,
	)
}
