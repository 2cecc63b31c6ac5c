// Central types for the routing graph.
//
// This file declares Edge, Arc, PathResult, Heuristic, GraphOption and the
// sentinel errors shared by the service-layer packages. The Graph type and
// its methods live in graph.go.

package core

import (
	"errors"
	"math"
	"sync"
)

// Sentinel errors for graph-building operations. Path queries themselves
// never produce errors; they report failure through the PathResult sentinel
// (Distance == +Inf, empty Path).
var (
	// ErrNegativeNode indicates a negative node index was passed to a
	// graph-building operation.
	ErrNegativeNode = errors.New("core: node index must be non-negative")

	// ErrNilGraph indicates a nil *Graph was passed where a graph is required.
	ErrNilGraph = errors.New("core: graph is nil")
)

// Edge is a directed arc stored in a node's adjacency list.
// The source node is implied by the list the edge lives in.
type Edge struct {
	// To is the destination node index.
	To int

	// Weight is the traversal cost of this arc.
	Weight float64
}

// Arc is a fully-qualified directed edge (From, To, Weight), as returned by
// Graph.Edges. Service layers (scenarios, profiles, quality checks) operate
// on Arc lists and rebuild derived graphs from them.
type Arc struct {
	From   int
	To     int
	Weight float64
}

// PathResult is the outcome of a single shortest-path query.
//
// Distance is the accumulated edge weight along Path, or math.Inf(1) when
// no path exists (including queries whose source or target index is out of
// range). Path lists node indices from source to target inclusive and is
// empty exactly when Distance is infinite. A PathResult is immutable after
// construction and owned by the caller.
type PathResult struct {
	Distance float64
	Path     []int
}

// Unreachable is the sentinel PathResult for "no path / invalid index".
func Unreachable() PathResult {
	return PathResult{Distance: math.Inf(1), Path: nil}
}

// Reachable reports whether r describes an actual path.
func (r PathResult) Reachable() bool {
	return !math.IsInf(r.Distance, 1)
}

// Heuristic estimates the remaining cost from node to target.
//
// Implementations must be pure functions of (node, target) with no side
// effects: the A* solver may call them from many goroutines against the
// same graph. An admissible heuristic never overestimates the true
// remaining cost; ZeroHeuristic is trivially admissible.
type Heuristic func(node, target int) float64

// ZeroHeuristic always estimates zero remaining cost, which makes the
// heuristic-guided solver explore in exactly the uniform-cost order.
func ZeroHeuristic(_, _ int) float64 { return 0 }

// GraphOption configures a Graph at construction time.
type GraphOption func(*Graph)

// WithHeuristic installs h as the graph's remaining-cost estimate for the
// heuristic-guided solver. Passing nil restores ZeroHeuristic.
func WithHeuristic(h Heuristic) GraphOption {
	return func(g *Graph) {
		if h == nil {
			h = ZeroHeuristic
		}
		g.heuristic = h
	}
}

// Graph is the core routing graph: a growable adjacency table of directed
// weighted edges plus a pluggable heuristic.
//
// muAdj guards adjacency; readers take RLock, mutators take Lock. The
// heuristic is fixed at construction and needs no locking.
type Graph struct {
	muAdj     sync.RWMutex // guards adjacency
	adjacency [][]Edge     // adjacency[from] = outgoing edges of from
	edgeCount int          // total number of stored arcs
	heuristic Heuristic    // remaining-cost estimate for A*
}

// NewGraph creates an empty Graph. Without options the graph has no nodes
// and the zero heuristic.
// Complexity: O(len(opts)).
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{heuristic: ZeroHeuristic}
	for _, opt := range opts {
		opt(g)
	}

	return g
}
