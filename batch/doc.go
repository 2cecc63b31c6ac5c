// Package batch fans independent shortest-path queries out across a worker
// pool and collects the results in input order.
//
// Model:
//
//   - A batch is an ordered slice of (Source, Target) queries against one
//     shared read-only core.Graph. Each query runs exactly one solver
//     invocation (uniform-cost or heuristic-guided, chosen per batch) on
//     some worker goroutine.
//   - Workers share nothing but the graph: every solver call owns its heap
//     and label slices, so there is no cross-query state by construction
//     and no locking beyond the graph's read lock.
//   - Results land in a slice indexed by original query position, not by
//     completion order, so callers see exactly the order they submitted
//     regardless of scheduling.
//   - There is no cancellation or timeout: a submitted batch runs every
//     query to completion. A query's unreachable sentinel never affects
//     its neighbors; there are no partial-failure semantics.
//
// The pool is a panjf2000/ants goroutine pool sized with WithWorkers
// (default runtime.NumCPU()). An empty batch returns an empty, non-nil
// result slice.
package batch
