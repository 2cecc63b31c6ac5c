package batch

import (
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/routecore/routecore/astar"
	"github.com/routecore/routecore/core"
	"github.com/routecore/routecore/dijkstra"
)

// Run executes every query in queries against g with the chosen algorithm
// and returns one core.PathResult per query, index-correlated with the
// input regardless of worker completion order.
//
// Each result follows the single-query solver contract exactly: position i
// of the output equals what the solver would return for queries[i] called
// directly. Out-of-range and unreachable queries yield their sentinel
// without affecting the rest of the batch.
//
// If the ants pool cannot be created (never the case for a positive size),
// Run degrades to sequential execution rather than failing: the batch
// contract has no error channel.
//
// Complexity: O(Q · (V + E) log V) total work spread over the pool.
func Run(g *core.Graph, queries []Query, algo Algorithm, opts ...Option) []core.PathResult {
	// 1) Resolve options.
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Workers < 1 {
		cfg.Workers = DefaultOptions().Workers
	}

	// 2) Empty batch: empty (non-nil) result collection, not a failure.
	results := make([]core.PathResult, len(queries))
	if len(queries) == 0 {
		return results
	}

	solve := solverFor(algo)

	// 3) Spin up the pool. Each submitted task solves one query and writes
	//    its own output slot; slots are disjoint so no further
	//    synchronization is needed beyond the WaitGroup.
	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		for i, q := range queries {
			results[i] = solve(g, q.Source, q.Target)
		}

		return results
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range queries {
		i := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i] = solve(g, queries[i].Source, queries[i].Target)
		}
		if submitErr := pool.Submit(task); submitErr != nil {
			// Pool refused the task (released/overloaded): run it inline so
			// the slot is still filled.
			task()
		}
	}
	wg.Wait()

	return results
}

// solverFor maps the batch algorithm onto its single-query entry point.
func solverFor(algo Algorithm) func(*core.Graph, int, int) core.PathResult {
	if algo == AStar {
		return astar.ShortestPath
	}

	return dijkstra.ShortestPath
}
