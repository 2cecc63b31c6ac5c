// Package quality analyzes a routing graph for structural defects and
// applies conservative automatic fixes.
//
// Two defect classes are detected:
//
//   - Isolated nodes: registered indices with neither outgoing nor
//     incoming arcs. They are harmless for correctness but usually signal
//     import mistakes.
//   - Zero-weight cycles: directed cycles whose every arc weighs ≈ 0
//     (|w| ≤ Epsilon). The solvers terminate on them (relaxation requires
//     strict improvement), but they make "shortest" ambiguous and usually
//     come from bad data. Detection is a bounded DFS over the ε-subgraph
//     with canonical cycle dedup, capped by MaxCycles and MaxDepth.
//
// Fix removes every arc participating in a reported zero-weight cycle.
// Isolated nodes are reported but not removed: the adjacency table never
// shrinks, so dropping an index would invalidate the dense-index contract.
package quality

import (
	"sort"
	"strconv"
	"strings"

	"github.com/routecore/routecore/core"
)

// Default analysis bounds, matching the upstream service.
const (
	// DefaultMaxCycles caps how many zero-weight cycles are reported.
	DefaultMaxCycles = 50

	// DefaultMaxDepth caps DFS depth while hunting cycles.
	DefaultMaxDepth = 10

	// DefaultEpsilon is the zero-weight tolerance.
	DefaultEpsilon = 1e-9
)

// Options bounds a quality analysis run.
type Options struct {
	MaxCycles int
	MaxDepth  int
	Epsilon   float64
}

// DefaultOptions returns the standard analysis bounds.
func DefaultOptions() Options {
	return Options{MaxCycles: DefaultMaxCycles, MaxDepth: DefaultMaxDepth, Epsilon: DefaultEpsilon}
}

// Report is the outcome of Analyze.
type Report struct {
	// IsolatedNodes lists indices with no incident arcs, ascending.
	IsolatedNodes []int `json:"isolated_nodes"`

	// ZeroWeightCycles lists detected cycles as node sequences; each
	// sequence closes back onto its first element.
	ZeroWeightCycles [][]int `json:"zero_weight_cycles"`

	// LimitReached is true when MaxCycles stopped the search early.
	LimitReached bool `json:"zero_cycle_limit_reached"`
}

// FixResult summarizes what Fix changed.
type FixResult struct {
	RemovedZeroWeightArcs int   `json:"removed_zero_weight_edges"`
	IsolatedNodes         []int `json:"isolated_nodes"`
}

// Analyze inspects g and reports isolated nodes and zero-weight cycles.
// The graph is only read; Analyze is safe alongside queries.
// Complexity: O(V + E) for isolation, bounded DFS for cycles.
func Analyze(g *core.Graph, opts Options) Report {
	if opts.MaxCycles <= 0 {
		opts.MaxCycles = DefaultMaxCycles
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = DefaultEpsilon
	}

	arcs := g.Edges()

	// 1) Isolated nodes: indices touched by no arc at all.
	touched := make(map[int]struct{}, len(arcs)*2)
	for _, a := range arcs {
		touched[a.From] = struct{}{}
		touched[a.To] = struct{}{}
	}
	var isolated []int
	for node := 0; node < g.NodeCount(); node++ {
		if _, ok := touched[node]; !ok {
			isolated = append(isolated, node)
		}
	}
	sort.Ints(isolated)

	// 2) Zero-weight cycles: DFS over arcs with |w| ≤ ε only.
	adj := make(map[int][]int)
	for _, a := range arcs {
		if a.Weight >= -opts.Epsilon && a.Weight <= opts.Epsilon {
			adj[a.From] = append(adj[a.From], a.To)
		}
	}

	finder := &cycleFinder{
		adj:       adj,
		maxCycles: opts.MaxCycles,
		maxDepth:  opts.MaxDepth,
		seen:      make(map[string]struct{}),
	}
	starts := make([]int, 0, len(adj))
	for node := range adj {
		starts = append(starts, node)
	}
	sort.Ints(starts) // deterministic reporting order
	for _, start := range starts {
		if finder.limitReached {
			break
		}
		finder.dfs(start, start, []int{start}, 0)
	}

	return Report{
		IsolatedNodes:    isolated,
		ZeroWeightCycles: finder.cycles,
		LimitReached:     finder.limitReached,
	}
}

// Fix removes every arc that belongs to a zero-weight cycle in report and
// returns what changed. Must not run concurrently with queries.
// Complexity: O(V + E).
func Fix(g *core.Graph, report Report) FixResult {
	drop := make(map[[2]int]struct{})
	for _, cycle := range report.ZeroWeightCycles {
		for i := range cycle {
			from := cycle[i]
			to := cycle[(i+1)%len(cycle)]
			drop[[2]int{from, to}] = struct{}{}
		}
	}

	removed := 0
	if len(drop) > 0 {
		removed = g.RemoveArcs(drop)
	}

	return FixResult{
		RemovedZeroWeightArcs: removed,
		IsolatedNodes:         report.IsolatedNodes,
	}
}

// cycleFinder holds bounded-DFS state for zero-cycle detection.
type cycleFinder struct {
	adj          map[int][]int
	maxCycles    int
	maxDepth     int
	seen         map[string]struct{}
	cycles       [][]int
	limitReached bool
}

// dfs walks ε-arcs from start; path holds [start..current]. A step back
// onto start closes a cycle, recorded once under its canonical rotation.
func (f *cycleFinder) dfs(start, current int, path []int, depth int) {
	if f.limitReached || depth >= f.maxDepth {
		return
	}

	for _, next := range f.adj[current] {
		if next == start {
			f.record(path)
			if f.limitReached {
				return
			}
			continue
		}
		if containsNode(path, next) {
			continue
		}
		f.dfs(start, next, append(path, next), depth+1)
		if f.limitReached {
			return
		}
	}
}

// record stores a cycle unless its canonical rotation was seen already.
func (f *cycleFinder) record(path []int) {
	if len(path) == 0 {
		return
	}
	key := canonicalKey(path)
	if _, dup := f.seen[key]; dup {
		return
	}
	f.seen[key] = struct{}{}

	cycle := make([]int, len(path))
	copy(cycle, path)
	f.cycles = append(f.cycles, cycle)
	if len(f.cycles) >= f.maxCycles {
		f.limitReached = true
	}
}

// canonicalKey rotates the cycle to start at its smallest node so the same
// cycle found from different entry points deduplicates.
func canonicalKey(cycle []int) string {
	minIdx := 0
	for i, v := range cycle {
		if v < cycle[minIdx] {
			minIdx = i
		}
	}
	var sb strings.Builder
	for i := 0; i < len(cycle); i++ {
		sb.WriteString(strconv.Itoa(cycle[(minIdx+i)%len(cycle)]))
		sb.WriteByte(',')
	}

	return sb.String()
}

func containsNode(path []int, node int) bool {
	for _, v := range path {
		if v == node {
			return true
		}
	}

	return false
}
