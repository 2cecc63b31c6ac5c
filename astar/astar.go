package astar

import (
	"container/heap"
	"math"

	"github.com/routecore/routecore/core"
)

// ShortestPath computes a minimum-cost path from source to target in g,
// ordering exploration by g-score plus the graph's heuristic estimate.
//
// The contract is identical to dijkstra.ShortestPath: sentinel result for
// nil graphs, out-of-range indices and unreachable targets; distance 0 and
// path [source] when source == target; otherwise a minimum-cost path under
// an admissible heuristic. With the default zero heuristic the returned
// distances are provably equal to the uniform-cost solver's.
//
// Complexity: O((V + E) log V) time, O(V + E) space.
func ShortestPath(g *core.Graph, source, target int) core.PathResult {
	// 1) Validate inputs; invalid indices map onto the unreachable sentinel.
	if g == nil {
		return core.Unreachable()
	}
	n := g.NodeCount()
	if source < 0 || target < 0 || source >= n || target >= n {
		return core.Unreachable()
	}

	// 2) gScore[v] = best known cost source→v; prev[v] = predecessor.
	inf := math.Inf(1)
	gScore := make([]float64, n)
	prev := make([]int, n)
	for i := range gScore {
		gScore[i] = inf
		prev[i] = -1
	}
	gScore[source] = 0

	// 3) Seed the open set with the source keyed by its heuristic alone
	//    (g = 0, f = h(source, target)).
	open := make(openPQ, 0, 16)
	heap.Init(&open)
	heap.Push(&open, openItem{node: source, fCost: g.Heuristic(source, target)})

	// 4) Expand in increasing f order.
	for open.Len() > 0 {
		item := heap.Pop(&open).(openItem)

		// The target check fires on extraction, before anything else.
		if item.node == target {
			break
		}

		// Re-read the current best g-score rather than trusting the queue
		// entry; superseded entries then relax with up-to-date labels.
		currentG := gScore[item.node]
		if math.IsInf(currentG, 1) {
			continue
		}

		// 5) Relax outgoing edges under the combined key g + h.
		for _, e := range g.Neighbors(item.node) {
			tentativeG := currentG + e.Weight
			if tentativeG < gScore[e.To] {
				gScore[e.To] = tentativeG
				prev[e.To] = item.node
				heap.Push(&open, openItem{
					node:  e.To,
					fCost: tentativeG + g.Heuristic(e.To, target),
				})
			}
		}
	}

	// 6) Unlabeled target means no path.
	if math.IsInf(gScore[target], 1) {
		return core.Unreachable()
	}

	// 7) Reconstruct source→target by walking predecessors backward.
	path := []int{target}
	for at := target; at != source; {
		at = prev[at]
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return core.PathResult{Distance: gScore[target], Path: path}
}

// openItem is one open-set entry: a node and the f = g + h key it was
// pushed with.
type openItem struct {
	node  int
	fCost float64
}

// openPQ is a binary min-heap of openItem ordered by fCost ascending.
// Duplicates are allowed; expansion re-reads gScore so stale entries are
// harmless.
type openPQ []openItem

func (pq openPQ) Len() int            { return len(pq) }
func (pq openPQ) Less(i, j int) bool  { return pq[i].fCost < pq[j].fCost }
func (pq openPQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *openPQ) Push(x interface{}) { *pq = append(*pq, x.(openItem)) }
func (pq *openPQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
