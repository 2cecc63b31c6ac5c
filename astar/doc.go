// Package astar implements heuristic-guided shortest-path search (A*) over
// a core.Graph.
//
// The solver shares the uniform-cost solver's signature and output
// contract: ShortestPath(g, source, target) → core.PathResult, with the
// (math.Inf(1), empty path) sentinel for out-of-range indices and
// unreachable targets.
//
// It differs from package dijkstra in two ways only:
//
//   - The priority key is g(node) + h(node, target), where h is the graph's
//     installed heuristic (core.WithHeuristic). With the default
//     core.ZeroHeuristic the key degenerates to g alone and the search
//     order matches uniform-cost search exactly.
//   - The target check fires immediately on extraction, before any
//     staleness comparison: the first time the target leaves the queue the
//     search stops. This is correct for admissible, consistent heuristics
//     (the zero heuristic trivially is). Expanded nodes re-read their
//     current best g-score, so superseded queue entries only cost redundant
//     relaxation work, never wrong labels.
//
// If a non-zero heuristic is ever installed, revisit the discard
// discipline together with package dijkstra: an inconsistent heuristic
// needs either re-expansion or an explicit closed set to keep optimality.
//
// Complexity matches the uniform-cost solver with the zero heuristic:
// O((V + E) log V) time, O(V + E) space. Every query owns its working
// state, so concurrent calls against one read-only graph are safe.
package astar
