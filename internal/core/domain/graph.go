// Package domain contains the core domain models for projects, their dependency graph
// and the dependency records the engine reads and writes.
package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// AllProjects is the name of the implicit root node that depends on every project.
const AllProjects = "all"

// TraverseMode selects the direction, repetition and target handling of a traversal.
// The zero value walks top down, visits nodes once per incoming path and
// reports the start node.
type TraverseMode uint8

const (
	// BottomUp visits the dependencies of a node before the node itself.
	BottomUp TraverseMode = 1 << iota
	// Minimal visits every node at most once per traversal.
	Minimal
	// SkipTarget never reports the start node to the visitor.
	SkipTarget
)

const (
	// TopDown visits a node before its dependencies.
	TopDown TraverseMode = 0
	// Full revisits a node once per distinct incoming path.
	Full TraverseMode = 0
)

// Has reports whether all flags in f are set on m.
func (m TraverseMode) Has(f TraverseMode) bool {
	return m&f == f
}

// Visitor receives each visited node name together with its depth.
// Returning false stops the traversal.
type Visitor func(name string, depth int) bool

// Graph is the project dependency graph.
// Node 0 is the implicit AllProjects root which depends on every other node.
type Graph struct {
	names []string
	index map[InternedString]int
	edges [][]int
}

// NewGraph creates a graph holding only the implicit root.
func NewGraph() *Graph {
	g := &Graph{
		index: make(map[InternedString]int),
	}
	g.names = append(g.names, AllProjects)
	g.edges = append(g.edges, nil)
	g.index[nameKey(AllProjects)] = 0
	return g
}

func nameKey(name string) InternedString {
	return NewInternedString(strings.ToLower(name))
}

// AddNode adds a named node and returns its index.
// Names are compared case-insensitively.
func (g *Graph) AddNode(name string) (int, error) {
	if _, exists := g.index[nameKey(name)]; exists {
		return 0, zerr.With(zerr.Wrap(ErrDuplicateProjectName, "cannot add project"), "project", name)
	}

	idx := len(g.names)
	g.names = append(g.names, name)
	g.edges = append(g.edges, nil)
	g.index[nameKey(name)] = idx
	g.edges[0] = insertSorted(g.edges[0], idx)
	return idx, nil
}

// RecordEdge records that the node at from depends on the node named to.
// Recording the same edge twice has no effect.
func (g *Graph) RecordEdge(from int, to string) error {
	if from <= 0 || from >= len(g.names) {
		return zerr.With(zerr.Wrap(ErrProjectNotFound, "invalid node index"), "index", from)
	}

	target, ok := g.index[nameKey(to)]
	if !ok || target == 0 {
		return zerr.With(
			zerr.With(zerr.Wrap(ErrUnresolvedProjectDependency, "cannot record dependency"), "dependency", to),
			"project", g.names[from],
		)
	}

	g.edges[from] = insertSorted(g.edges[from], target)
	return nil
}

func insertSorted(list []int, v int) []int {
	pos, found := slices.BinarySearch(list, v)
	if found {
		return list
	}
	return slices.Insert(list, pos, v)
}

// Len returns the number of nodes, not counting the implicit root.
func (g *Graph) Len() int {
	return len(g.names) - 1
}

// Lookup returns the index of the named node.
func (g *Graph) Lookup(name string) (int, bool) {
	idx, ok := g.index[nameKey(name)]
	return idx, ok
}

// Name returns the name of the node at idx as it was added.
func (g *Graph) Name(idx int) string {
	return g.names[idx]
}

// DependenciesOf returns the direct dependencies of the named node in index order.
func (g *Graph) DependenciesOf(name string) []string {
	idx, ok := g.Lookup(name)
	if !ok {
		return nil
	}
	deps := make([]string, 0, len(g.edges[idx]))
	for _, d := range g.edges[idx] {
		deps = append(deps, g.names[d])
	}
	return deps
}

// DependsOn reports whether a directly depends on b.
func (g *Graph) DependsOn(a, b string) bool {
	ai, ok := g.Lookup(a)
	if !ok {
		return false
	}
	bi, ok := g.Lookup(b)
	if !ok {
		return false
	}
	_, found := slices.BinarySearch(g.edges[ai], bi)
	return found
}

// Validate checks the whole graph for dependency cycles.
func (g *Graph) Validate() error {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make([]int, len(g.names))
	var path []int

	var visit func(u int) error
	visit = func(u int) error {
		state[u] = visiting
		path = append(path, u)

		for _, dep := range g.edges[u] {
			switch state[dep] {
			case visiting:
				return g.buildCycleError(path, dep)
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		state[u] = visited
		path = path[:len(path)-1]
		return nil
	}

	for idx := 1; idx < len(g.names); idx++ {
		if state[idx] == unvisited {
			if err := visit(idx); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []int, dep int) error {
	start := slices.Index(path, dep)
	parts := make([]string, 0, len(path)-start+1)
	for _, node := range path[start:] {
		parts = append(parts, g.names[node])
	}
	parts = append(parts, g.names[dep])
	return zerr.With(zerr.Wrap(ErrCyclicDependency, "dependency cycle"), "cycle", strings.Join(parts, " -> "))
}

// Traverse walks the graph depth first from start, calling visit for each node.
// It returns false if the visitor stopped the walk. Starting at AllProjects walks
// every project with the top level at depth 1.
func (g *Graph) Traverse(start string, mode TraverseMode, visit Visitor) (bool, error) {
	at, ok := g.Lookup(start)
	if !ok {
		return false, zerr.With(zerr.Wrap(ErrProjectNotFound, "cannot traverse"), "project", start)
	}

	t := &traversal{
		graph:   g,
		visit:   visit,
		minimal: mode.Has(Minimal),
		done:    make([]bool, len(g.names)),
		onStack: make([]bool, len(g.names)),
		skip:    -1,
	}
	if mode.Has(SkipTarget) && at != 0 {
		t.skip = at
	}

	level := 1
	if at == 0 {
		level = 0
	}

	if mode.Has(BottomUp) {
		return t.bottomUp(at, level)
	}
	return t.topDown(at, level)
}

type traversal struct {
	graph   *Graph
	visit   Visitor
	minimal bool
	done    []bool
	onStack []bool
	stack   []int
	skip    int
}

func (t *traversal) push(cur int) {
	t.done[cur] = true
	t.onStack[cur] = true
	t.stack = append(t.stack, cur)
}

func (t *traversal) pop(cur int) {
	t.onStack[cur] = false
	t.stack = t.stack[:len(t.stack)-1]
}

// reports reports whether cur is passed to the visitor.
func (t *traversal) reports(cur int) bool {
	return cur != 0 && cur != t.skip
}

// children yields the dependencies of cur that have to be entered.
func (t *traversal) children(cur int) ([]int, error) {
	deps := t.graph.edges[cur]
	out := make([]int, 0, len(deps))
	for _, dep := range deps {
		if t.onStack[dep] {
			return nil, t.graph.buildCycleError(t.stack, dep)
		}
		if t.minimal && t.done[dep] {
			continue
		}
		out = append(out, dep)
	}
	return out, nil
}

func (t *traversal) bottomUp(cur, level int) (bool, error) {
	t.push(cur)
	defer t.pop(cur)

	deps, err := t.children(cur)
	if err != nil {
		return false, err
	}
	for _, dep := range deps {
		// An earlier sibling may have reached dep already.
		if t.minimal && t.done[dep] {
			continue
		}
		ok, err := t.bottomUp(dep, level+1)
		if !ok || err != nil {
			return ok, err
		}
	}

	if !t.reports(cur) {
		return true, nil
	}
	return t.visit(t.graph.names[cur], level), nil
}

func (t *traversal) topDown(cur, level int) (bool, error) {
	t.push(cur)
	defer t.pop(cur)

	if t.reports(cur) && !t.visit(t.graph.names[cur], level) {
		return false, nil
	}

	deps, err := t.children(cur)
	if err != nil {
		return false, err
	}
	for _, dep := range deps {
		if t.minimal && t.done[dep] {
			continue
		}
		ok, err := t.topDown(dep, level+1)
		if !ok || err != nil {
			return ok, err
		}
	}
	return true, nil
}
