package dijkstra

import (
	"container/heap"
	"math"

	"github.com/routecore/routecore/core"
)

// ShortestPath computes the minimum-cost path from source to target in g.
//
// Contract:
//
//   - nil graph, source < 0, target < 0 or either index ≥ g.NodeCount()
//     → core.Unreachable() immediately (sentinel, not an error).
//   - source == target → distance 0 with the single-node path [source].
//   - unreachable target → core.Unreachable().
//   - otherwise → exact minimum distance and one minimum-cost path from
//     source to target inclusive. When several minimum-cost paths exist the
//     choice among them is implementation-defined.
//
// Complexity: O((V + E) log V) time, O(V + E) space.
func ShortestPath(g *core.Graph, source, target int) core.PathResult {
	// 1) Validate inputs. Invalid indices share the unreachable sentinel
	//    with "no path exists" by contract.
	if g == nil {
		return core.Unreachable()
	}
	n := g.NodeCount()
	if source < 0 || target < 0 || source >= n || target >= n {
		return core.Unreachable()
	}

	// 2) dist[v] = best known distance from source; prev[v] = predecessor
	//    of v on that best path (-1 = none). Both are per-query state.
	dist := make([]float64, n)
	prev := make([]int, n)
	inf := math.Inf(1)
	for i := range dist {
		dist[i] = inf
		prev[i] = -1
	}
	dist[source] = 0

	// 3) Seed the min-heap with (0, source).
	pq := make(nodePQ, 0, 16)
	heap.Init(&pq)
	heap.Push(&pq, nodeItem{node: source, key: 0})

	// 4) Main loop: expand nodes in increasing distance order.
	for pq.Len() > 0 {
		item := heap.Pop(&pq).(nodeItem)

		// Lazy deletion: a popped key above the recorded best means a newer
		// entry for this node already went through. Skip it.
		if item.key > dist[item.node] {
			continue
		}

		// Early exit: the target's distance is final once popped fresh.
		if item.node == target {
			break
		}

		// 5) Relax every outgoing edge of the popped node.
		for _, e := range g.Neighbors(item.node) {
			candidate := item.key + e.Weight
			if candidate < dist[e.To] {
				dist[e.To] = candidate
				prev[e.To] = item.node
				heap.Push(&pq, nodeItem{node: e.To, key: candidate})
			}
		}
	}

	// 6) No finite label on the target means no path.
	if math.IsInf(dist[target], 1) {
		return core.Unreachable()
	}

	return core.PathResult{Distance: dist[target], Path: buildPath(prev, source, target)}
}

// buildPath walks predecessor links backward from target, then reverses the
// sequence into source→target order. prev[source] is -1 so the walk stops
// there naturally.
// Complexity: O(len(path)).
func buildPath(prev []int, source, target int) []int {
	path := []int{target}
	for at := target; at != source; {
		at = prev[at]
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}

// nodeItem is one priority-queue entry: a node and the tentative distance
// it was pushed with. Stale entries are detected on pop by comparing key
// against the node's current best distance.
type nodeItem struct {
	node int
	key  float64
}

// nodePQ is a binary min-heap of nodeItem ordered by key ascending, used
// with the lazy-deletion discipline: no decrease-key, duplicates allowed.
type nodePQ []nodeItem

func (pq nodePQ) Len() int            { return len(pq) }
func (pq nodePQ) Less(i, j int) bool  { return pq[i].key < pq[j].key }
func (pq nodePQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(nodeItem)) }
func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
