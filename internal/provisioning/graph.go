package provisioning

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrDuplicateNode is returned when a node ID is added twice.
	ErrDuplicateNode = errors.New("duplicate node")
	// ErrUnknownDependency is returned when a node depends on a missing node.
	ErrUnknownDependency = errors.New("unknown dependency")
	// ErrCycle is returned when the dependencies form a cycle.
	ErrCycle = errors.New("dependency cycle")
)

// RunFunc performs a node's work. It receives copies of the handles of
// every node listed in DependsOn.
type RunFunc func(ctx context.Context, in Inputs) (Handle, error)

// Node is one provisioning step.
type Node struct {
	ID          string
	Kind        Kind
	Description string
	DependsOn   []string
	Run         RunFunc
}

// Graph is a set of nodes and the dependency edges between them.
type Graph struct {
	nodes map[string]Node
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]Node)}
}

// Add inserts a node. Dependencies may refer to nodes added later;
// Validate checks that they all exist.
func (g *Graph) Add(n Node) error {
	if n.ID == "" {
		return errors.New("node ID is required")
	}
	if n.Kind == "" {
		return fmt.Errorf("node %s: kind is required", n.ID)
	}
	if n.Run == nil {
		return fmt.Errorf("node %s: run function is required", n.ID)
	}
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}

	n.DependsOn = dedupe(n.DependsOn)
	g.nodes[n.ID] = n
	return nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// IDs returns all node IDs in sorted order.
func (g *Graph) IDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dependents returns the IDs of the nodes that consume id, sorted.
func (g *Graph) Dependents(id string) []string {
	var out []string
	for _, n := range g.nodes {
		for _, dep := range n.DependsOn {
			if dep == id {
				out = append(out, n.ID)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// Validate reports unknown dependencies and cycles.
func (g *Graph) Validate() error {
	for _, id := range g.IDs() {
		for _, dep := range g.nodes[id].DependsOn {
			if dep == id {
				return fmt.Errorf("%w: %s -> %s", ErrCycle, id, id)
			}
			if _, ok := g.nodes[dep]; !ok {
				return fmt.Errorf("%w: %s depends on %s", ErrUnknownDependency, id, dep)
			}
		}
	}

	if cycle := g.findCycle(); cycle != nil {
		return fmt.Errorf("%w: %s", ErrCycle, strings.Join(cycle, " -> "))
	}
	return nil
}

// findCycle returns one cycle as a path whose first and last element are
// the same node, or nil.
func (g *Graph) findCycle() []string {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(g.nodes))
	var stack []string

	var visit func(id string) []string
	visit = func(id string) []string {
		state[id] = inProgress
		stack = append(stack, id)

		deps := append([]string(nil), g.nodes[id].DependsOn...)
		sort.Strings(deps)
		for _, dep := range deps {
			switch state[dep] {
			case inProgress:
				for i, s := range stack {
					if s == dep {
						return append(append([]string(nil), stack[i:]...), dep)
					}
				}
			case unvisited:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = done
		return nil
	}

	for _, id := range g.IDs() {
		if state[id] == unvisited {
			if cycle := visit(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// Order returns a topological order of the node IDs. Among nodes that are
// ready at the same time, the smaller ID comes first, so the order is
// deterministic.
func (g *Graph) Order() ([]string, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	indegree := make(map[string]int, len(g.nodes))
	for id, n := range g.nodes {
		indegree[id] = len(n.DependsOn)
	}

	var ready []string
	for id, d := range indegree {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for _, dependent := range g.Dependents(id) {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = insertSorted(ready, dependent)
			}
		}
	}
	return order, nil
}

// Levels groups the nodes into stages. Every node in a stage depends only
// on nodes in earlier stages, so each stage could run concurrently.
func (g *Graph) Levels() ([][]string, error) {
	order, err := g.Order()
	if err != nil {
		return nil, err
	}

	level := make(map[string]int, len(order))
	maxLevel := -1
	for _, id := range order {
		l := 0
		for _, dep := range g.nodes[id].DependsOn {
			if level[dep]+1 > l {
				l = level[dep] + 1
			}
		}
		level[id] = l
		if l > maxLevel {
			maxLevel = l
		}
	}

	levels := make([][]string, maxLevel+1)
	for _, id := range order {
		levels[level[id]] = append(levels[level[id]], id)
	}
	for _, l := range levels {
		sort.Strings(l)
	}
	return levels, nil
}

// Reverse returns a graph with the same nodes and every edge flipped, so
// that consumers come before their producers. run supplies each node's
// run function in the new graph; a nil result makes the node a no-op.
func (g *Graph) Reverse(run func(Node) RunFunc) *Graph {
	reversed := NewGraph()
	for _, id := range g.IDs() {
		n := g.nodes[id]
		fn := run(n)
		if fn == nil {
			fn = noop(n)
		}
		reversed.nodes[id] = Node{
			ID:          n.ID,
			Kind:        n.Kind,
			Description: n.Description,
			DependsOn:   g.Dependents(id),
			Run:         fn,
		}
	}
	return reversed
}

func noop(n Node) RunFunc {
	return func(context.Context, Inputs) (Handle, error) {
		return Handle{Kind: n.Kind, ID: n.ID}, nil
	}
}

func insertSorted(ids []string, id string) []string {
	i := sort.SearchStrings(ids, id)
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
