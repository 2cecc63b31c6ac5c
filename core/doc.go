// Package core provides the in-memory routing graph shared by every solver
// in routecore: a directed, weighted adjacency list indexed by dense
// non-negative node indices.
//
// Model:
//
//   - Nodes are plain integers. A node exists as soon as the adjacency table
//     is large enough to index it; EnsureNode and AddEdge grow the table on
//     demand and it never shrinks.
//   - Edges are directed arcs (To, Weight) with float64 weights. Parallel
//     edges and self-loops are permitted; each parallel edge is considered
//     independently by the solvers.
//   - The heuristic used by the A* solver is a capability of the graph:
//     a pure function value (node, target) → float64 installed with
//     WithHeuristic. The default ZeroHeuristic makes A* behave exactly like
//     Dijkstra while leaving the slot open for coordinate-based estimates.
//
// Concurrency:
//
//   - A single sync.RWMutex (muAdj) guards the adjacency table. Mutators
//     (EnsureNode, AddEdge, RemoveArcs) take the write lock; readers
//     (NodeCount, Neighbors, Edges) take the read lock, so any number of
//     concurrent queries may share one graph.
//   - During a batch of path queries the graph is read-only by contract;
//     mutation happens only between query rounds.
//
// Results:
//
//   - PathResult carries (Distance, Path) for one query. Distance is
//     math.Inf(1) and Path is empty exactly when the target is unreachable
//     or a query index is out of range. This sentinel is the core's only
//     failure signal: path queries never return errors.
//
// Negative weights are accepted at insertion time. The shortest-path
// solvers are only guaranteed optimal for non-negative weights; behavior
// with negative weights is deterministic but unspecified.
package core
