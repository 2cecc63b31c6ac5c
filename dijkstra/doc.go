// Package dijkstra implements single-source single-target uniform-cost
// search (Dijkstra's algorithm) over a core.Graph.
//
// Overview:
//
//   - ShortestPath computes the minimum-total-weight path between two node
//     indices and returns a core.PathResult. There is no error channel:
//     an out-of-range source or target, or an unreachable target, yields
//     the sentinel (math.Inf(1), empty path).
//   - The solver is a label-setting algorithm over a binary min-heap keyed
//     by tentative distance, with lazy deletion instead of decrease-key:
//     superseded heap entries stay in the queue and are discarded on pop
//     when their key exceeds the node's recorded best distance. Dropping
//     that staleness check would break termination, so keep it in any
//     rework.
//   - Search stops as soon as the target is popped with a fresh key; the
//     rest of the frontier is never finalized.
//
// Complexity:
//
//   - Time:  O((V + E) log V)
//   - Each node is expanded at most once: up to V fresh pops.
//   - Each relaxation may push one heap entry: up to E pushes.
//   - Every push/pop costs O(log N), N ≤ V + E, simplified to O(log V).
//   - Space: O(V + E)
//   - O(V) distance and predecessor slices per query.
//   - O(E) worst-case heap entries under lazy deletion.
//
// Optimality holds for non-negative edge weights only. Negative weights are
// not rejected (the graph accepts them); the result is then deterministic
// for a fixed graph but carries no optimality guarantee.
//
// Every query owns its heap, distance slice and predecessor slice, so any
// number of ShortestPath calls may run concurrently against one read-only
// graph.
package dijkstra
