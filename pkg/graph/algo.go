package graph

import "sort"

// SCCs computes the graph's strongly connected components via Tarjan's
// algorithm, returning each component as a sorted slice of node IDs. A
// single-node component with no self-loop is not a cycle; HasCycles below
// distinguishes the two.
func (g *Graph) SCCs() [][]string {
	t := &tarjan{
		graph:   g,
		index:   make(map[string]int),
		lowlink: make(map[string]int),
		onStack: make(map[string]bool),
	}
	for _, n := range g.Nodes() {
		if _, visited := t.index[n.ID]; !visited {
			t.strongConnect(n.ID)
		}
	}
	for _, comp := range t.components {
		sort.Strings(comp)
	}
	return t.components
}

type tarjan struct {
	graph      *Graph
	index      map[string]int
	lowlink    map[string]int
	onStack    map[string]bool
	stack      []string
	nextIndex  int
	components [][]string
}

func (t *tarjan) strongConnect(v string) {
	t.index[v] = t.nextIndex
	t.lowlink[v] = t.nextIndex
	t.nextIndex++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.graph.Successors(v) {
		if _, visited := t.index[w]; !visited {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var comp []string
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		t.components = append(t.components, comp)
	}
}

// HasCycles reports whether the graph contains any cycle: a strongly
// connected component of size > 1, or a single node with a self-loop.
func (g *Graph) HasCycles() bool {
	for _, comp := range g.SCCs() {
		if len(comp) > 1 {
			return true
		}
		id := comp[0]
		if _, selfLoop := g.out[id][id]; selfLoop {
			return true
		}
	}
	return false
}

// condensation maps each node to its component index and returns the DAG of
// components: successor component indices reachable from each component,
// deduplicated and excluding self-edges within a component.
func (g *Graph) condensation() (compOf map[string]int, compSuccessors map[int]map[int]bool) {
	sccs := g.SCCs()
	compOf = make(map[string]int, len(g.nodes))
	for i, comp := range sccs {
		for _, id := range comp {
			compOf[id] = i
		}
	}
	compSuccessors = make(map[int]map[int]bool, len(sccs))
	for i := range sccs {
		compSuccessors[i] = make(map[int]bool)
	}
	for _, e := range g.Edges() {
		cs, ct := compOf[e.Source], compOf[e.Target]
		if cs != ct {
			compSuccessors[cs][ct] = true
		}
	}
	return compOf, compSuccessors
}

// Depth implements spec §4.E Rule 2: the length (in edges) of the longest
// simple path originating at n, computed over the DAG obtained by
// condensing strongly connected components. Because the condensation is
// acyclic by construction, a memoized DFS gives the longest-path length
// without needing an explicit topological sort.
func (g *Graph) Depth(n string) int {
	if !g.HasNode(n) {
		return 0
	}
	compOf, compSuccessors := g.condensation()
	memo := make(map[int]int)
	var longest func(c int) int
	longest = func(c int) int {
		if v, ok := memo[c]; ok {
			return v
		}
		memo[c] = 0 // break recursion if revisited before computed (cannot happen on a DAG, but guards defensively)
		best := 0
		for succ := range compSuccessors[c] {
			if d := 1 + longest(succ); d > best {
				best = d
			}
		}
		memo[c] = best
		return best
	}
	return longest(compOf[n])
}

// BetweennessCentrality computes unweighted betweenness centrality via
// Brandes' algorithm for the requested subset of nodes (spec §4.F
// restricts this to nodes appearing in detected issues). Centrality is
// still computed over shortest paths spanning the whole graph; only the
// reported subset is filtered.
func (g *Graph) BetweennessCentrality(subset []string) map[string]float64 {
	centrality := make(map[string]float64, len(g.nodes))
	for id := range g.nodes {
		centrality[id] = 0
	}

	for _, s := range g.Nodes() {
		stack := []string{}
		pred := make(map[string][]string)
		sigma := make(map[string]float64)
		dist := make(map[string]int)
		for id := range g.nodes {
			sigma[id] = 0
			dist[id] = -1
		}
		sigma[s.ID] = 1
		dist[s.ID] = 0
		queue := []string{s.ID}

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, w := range g.Successors(v) {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		delta := make(map[string]float64)
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range pred[w] {
				if sigma[w] > 0 {
					delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
				}
			}
			if w != s.ID {
				centrality[w] += delta[w]
			}
		}
	}

	out := make(map[string]float64, len(subset))
	for _, id := range subset {
		out[id] = centrality[id]
	}
	return out
}

// LongestCriticalPath returns the node sequence of the longest simple chain
// of calls in the graph, used by the reasoning pipeline's analyze state
// (spec §4.F step 3) as a supporting measure.
func (g *Graph) LongestCriticalPath() []string {
	var best []string
	compOf, compSuccessors := g.condensation()
	sccs := g.SCCs()

	var walk func(c int, path []string) []string
	memoBest := make(map[int][]string)
	walk = func(c int, path []string) []string {
		if cached, ok := memoBest[c]; ok {
			return cached
		}
		longest := []string{sccs[c][0]}
		for succ := range compSuccessors[c] {
			candidate := append([]string{sccs[c][0]}, walk(succ, nil)...)
			if len(candidate) > len(longest) {
				longest = candidate
			}
		}
		memoBest[c] = longest
		return longest
	}

	for c := range sccs {
		candidate := walk(c, nil)
		if len(candidate) > len(best) {
			best = candidate
		}
	}
	_ = compOf
	return best
}
