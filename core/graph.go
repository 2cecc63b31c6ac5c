// Graph method implementations.
//
// All methods follow one locking rule: mutators (EnsureNode, AddEdge,
// RemoveArcs) take muAdj for writing, readers take it for reading. No
// method ever calls another locked method while holding the lock.

package core

// EnsureNode grows the adjacency table so that node is a valid index.
// It is a no-op when node already exists and never shrinks the table.
// Returns ErrNegativeNode for node < 0.
// Complexity: amortized O(1); O(node) when the table actually grows.
func (g *Graph) EnsureNode(node int) error {
	if node < 0 {
		return ErrNegativeNode
	}
	g.muAdj.Lock()
	defer g.muAdj.Unlock()

	g.growLocked(node)

	return nil
}

// growLocked extends adjacency to cover index node.
// Caller must hold muAdj for writing.
func (g *Graph) growLocked(node int) {
	for len(g.adjacency) <= node {
		g.adjacency = append(g.adjacency, nil)
	}
}

// AddEdge appends the directed arc from→to with the given weight, growing
// the table so both endpoints exist. No deduplication is performed: adding
// the same pair twice yields two independent parallel edges. Self-loops and
// negative weights are accepted (see package docs for the negative-weight
// caveat). Returns ErrNegativeNode if either endpoint is negative.
// Complexity: amortized O(1).
func (g *Graph) AddEdge(from, to int, weight float64) error {
	if from < 0 || to < 0 {
		return ErrNegativeNode
	}
	g.muAdj.Lock()
	defer g.muAdj.Unlock()

	// Grow once to the larger endpoint; covers both.
	if to > from {
		g.growLocked(to)
	} else {
		g.growLocked(from)
	}
	g.adjacency[from] = append(g.adjacency[from], Edge{To: to, Weight: weight})
	g.edgeCount++

	return nil
}

// NodeCount returns the number of registered nodes, i.e. the current
// adjacency table length. Valid node indices are [0, NodeCount()).
// Complexity: O(1).
func (g *Graph) NodeCount() int {
	g.muAdj.RLock()
	defer g.muAdj.RUnlock()

	return len(g.adjacency)
}

// EdgeCount returns the total number of stored arcs.
// Complexity: O(1).
func (g *Graph) EdgeCount() int {
	g.muAdj.RLock()
	defer g.muAdj.RUnlock()

	return g.edgeCount
}

// Neighbors returns the outgoing edges of node. The returned slice is the
// graph's internal storage: callers must treat it as read-only. For an
// out-of-range or negative node Neighbors returns nil rather than failing;
// the solvers bounds-check source and target before traversal.
// Complexity: O(1).
func (g *Graph) Neighbors(node int) []Edge {
	g.muAdj.RLock()
	defer g.muAdj.RUnlock()

	if node < 0 || node >= len(g.adjacency) {
		return nil
	}

	return g.adjacency[node]
}

// Edges returns every stored arc as a fully-qualified (From, To, Weight)
// triple, grouped by source node in insertion order. The slice is a fresh
// copy and safe for the caller to modify.
// Complexity: O(V + E).
func (g *Graph) Edges() []Arc {
	g.muAdj.RLock()
	defer g.muAdj.RUnlock()

	arcs := make([]Arc, 0, g.edgeCount)
	for from, out := range g.adjacency {
		for _, e := range out {
			arcs = append(arcs, Arc{From: from, To: e.To, Weight: e.Weight})
		}
	}

	return arcs
}

// Heuristic evaluates the graph's remaining-cost estimate from node to
// target. With the default ZeroHeuristic this is always 0.
// Complexity: O(1) plus the installed heuristic's own cost.
func (g *Graph) Heuristic(node, target int) float64 {
	return g.heuristic(node, target)
}

// IsolatedNode reports whether node has neither outgoing nor incoming arcs.
// Complexity: O(V + E) worst case (scans all adjacency for incoming arcs).
func (g *Graph) IsolatedNode(node int) bool {
	g.muAdj.RLock()
	defer g.muAdj.RUnlock()

	if node < 0 || node >= len(g.adjacency) {
		return false
	}
	if len(g.adjacency[node]) > 0 {
		return false
	}
	for _, out := range g.adjacency {
		for _, e := range out {
			if e.To == node {
				return false
			}
		}
	}

	return true
}

// RemoveArcs deletes every arc whose (From, To) pair is present in drop and
// returns the number of arcs removed. Parallel edges between a dropped pair
// are all removed. Node indices remain valid: the table never shrinks.
// Intended for between-query maintenance (quality fixes); must not run
// concurrently with path queries on the same graph.
// Complexity: O(V + E).
func (g *Graph) RemoveArcs(drop map[[2]int]struct{}) int {
	if len(drop) == 0 {
		return 0
	}
	g.muAdj.Lock()
	defer g.muAdj.Unlock()

	removed := 0
	for from, out := range g.adjacency {
		kept := out[:0]
		for _, e := range out {
			if _, gone := drop[[2]int{from, e.To}]; gone {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		g.adjacency[from] = kept
	}
	g.edgeCount -= removed

	return removed
}

// Clone returns a deep copy of the graph's adjacency table sharing the same
// heuristic. The copy is fully independent: mutating either graph leaves
// the other untouched.
// Complexity: O(V + E).
func (g *Graph) Clone() *Graph {
	g.muAdj.RLock()
	defer g.muAdj.RUnlock()

	cp := &Graph{
		adjacency: make([][]Edge, len(g.adjacency)),
		edgeCount: g.edgeCount,
		heuristic: g.heuristic,
	}
	for i, out := range g.adjacency {
		if out == nil {
			continue
		}
		dup := make([]Edge, len(out))
		copy(dup, out)
		cp.adjacency[i] = dup
	}

	return cp
}
