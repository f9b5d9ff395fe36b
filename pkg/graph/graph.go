// Package graph implements the directed, metric-annotated dependency graph
// reconstructed by the graph builder (spec §4.C) and the graph algorithms
// the issue detector and reasoning pipeline run over it (spec §4.E, §4.F).
//
// Design note (spec §9): the examples this was grounded on show adjacency
// lists sized in the thousands of nodes at most for comparable traffic-map
// structures (kiali's graph.TrafficMap, grafana tempo's service graph
// processor); archlens follows the same straightforward representation
// rather than pulling in a general-purpose graph library.
package graph

import "github.com/archlens/archlens/pkg/spanmodel"

// Metrics holds the three aggregated values every node and edge carries.
type Metrics struct {
	CallCount    int64
	AvgLatencyMs float64
	ErrorRate    float64
}

// Node is a vertex in the reconstructed dependency graph.
type Node struct {
	ID      string
	Type    spanmodel.NodeType
	Metrics Metrics
}

// Edge is a directed arc, keyed by (source, target) per spec §3.
type Edge struct {
	Source  string
	Target  string
	Metrics Metrics
}

// Graph is a directed graph with node- and edge-attached metrics, built
// fresh per analysis from an immutable span snapshot (spec §5).
type Graph struct {
	nodes map[string]*Node
	// out[source][target] = edge
	out map[string]map[string]*Edge
	// in[target][source] = edge, maintained alongside out for O(1)
	// predecessor lookups without re-deriving them per call.
	in map[string]map[string]*Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		out:   make(map[string]map[string]*Edge),
		in:    make(map[string]map[string]*Edge),
	}
}

// UpsertNode adds n if absent; callers set metrics separately via SetNodeMetrics
// once the full span partition for that node is known.
func (g *Graph) UpsertNode(id string, t spanmodel.NodeType) *Node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &Node{ID: id, Type: t}
	g.nodes[id] = n
	g.out[id] = make(map[string]*Edge)
	g.in[id] = make(map[string]*Edge)
	return n
}

// SetNodeMetrics assigns the aggregated metrics computed for a node.
func (g *Graph) SetNodeMetrics(id string, m Metrics) {
	if n, ok := g.nodes[id]; ok {
		n.Metrics = m
	}
}

// UpsertEdge adds the (source, target) edge if absent. Both endpoints must
// already exist as nodes; self-loops (source == target, spec §4.C edge
// case) are not filtered.
func (g *Graph) UpsertEdge(source, target string) *Edge {
	if e, ok := g.out[source][target]; ok {
		return e
	}
	e := &Edge{Source: source, Target: target}
	g.out[source][target] = e
	if g.in[target] == nil {
		g.in[target] = make(map[string]*Edge)
	}
	g.in[target][source] = e
	return e
}

// SetEdgeMetrics assigns the aggregated metrics computed for an edge.
func (g *Graph) SetEdgeMetrics(source, target string, m Metrics) {
	if e, ok := g.out[source][target]; ok {
		e.Metrics = m
	}
}

// Node returns the node with the given id, or nil if absent.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Nodes returns every node. Iteration order is not part of the contract
// (spec §4.C determinism note); callers that need stable output order must
// sort explicitly.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// Edges returns every edge.
func (g *Graph) Edges() []*Edge {
	var out []*Edge
	for _, targets := range g.out {
		for _, e := range targets {
			out = append(out, e)
		}
	}
	return out
}

// Successors returns the node IDs reachable by a single outgoing edge from id.
func (g *Graph) Successors(id string) []string {
	var out []string
	for target := range g.out[id] {
		out = append(out, target)
	}
	return out
}

// Predecessors returns the node IDs with a single outgoing edge into id.
func (g *Graph) Predecessors(id string) []string {
	var out []string
	for source := range g.in[id] {
		out = append(out, source)
	}
	return out
}

// OutDegree is len(Successors(id)).
func (g *Graph) OutDegree(id string) int {
	return len(g.out[id])
}

// InDegree is len(Predecessors(id)).
func (g *Graph) InDegree(id string) int {
	return len(g.in[id])
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// HasNode reports whether id is present.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}
