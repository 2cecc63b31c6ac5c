// Package astar_test validates the heuristic-guided solver: the shared
// sentinel contract, equivalence with uniform-cost search under the zero
// heuristic, and correct guidance under an admissible non-zero heuristic.
package astar_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routecore/routecore/astar"
	"github.com/routecore/routecore/core"
	"github.com/routecore/routecore/dijkstra"
)

func TestShortestPath_SentinelContract(t *testing.T) {
	require.False(t, astar.ShortestPath(nil, 0, 1).Reachable(), "nil graph")

	g := core.NewGraph()
	require.NoError(t, g.AddEdge(0, 1, 1))
	for _, q := range [][2]int{{0, 9}, {9, 0}, {-1, 1}, {1, -1}} {
		res := astar.ShortestPath(g, q[0], q[1])
		require.True(t, math.IsInf(res.Distance, 1), "query %v", q)
		require.Empty(t, res.Path, "query %v", q)
	}
}

func TestShortestPath_Triangle(t *testing.T) {
	g := core.NewGraph()
	require.NoError(t, g.AddEdge(0, 1, 1))
	require.NoError(t, g.AddEdge(1, 2, 2))
	require.NoError(t, g.AddEdge(0, 2, 5))

	res := astar.ShortestPath(g, 0, 2)
	require.Equal(t, 3.0, res.Distance)
	require.Equal(t, []int{0, 1, 2}, res.Path)
}

func TestShortestPath_SourceEqualsTarget(t *testing.T) {
	g := core.NewGraph()
	require.NoError(t, g.AddEdge(0, 1, 1))

	res := astar.ShortestPath(g, 0, 0)
	require.Zero(t, res.Distance)
	require.Equal(t, []int{0}, res.Path)
}

func TestShortestPath_Unreachable(t *testing.T) {
	g := core.NewGraph()
	require.NoError(t, g.EnsureNode(2))

	res := astar.ShortestPath(g, 0, 2)
	require.False(t, res.Reachable())
	require.Empty(t, res.Path)
}

// TestShortestPath_MatchesDijkstra_ZeroHeuristic checks the central
// equivalence property: with the default zero heuristic, A* distances are
// identical to uniform-cost distances for every (source, target) pair, and
// each returned path's cost equals the returned distance.
func TestShortestPath_MatchesDijkstra_ZeroHeuristic(t *testing.T) {
	g := core.NewGraph()
	type arc struct {
		from, to int
		w        float64
	}
	for _, a := range []arc{
		{0, 1, 2}, {0, 2, 1.5}, {1, 3, 2}, {2, 3, 3},
		{3, 4, 0.5}, {1, 4, 5}, {2, 1, 0.25}, {4, 0, 7},
		{0, 5, 10}, {5, 4, 0.1}, {2, 2, 1},
	} {
		require.NoError(t, g.AddEdge(a.from, a.to, a.w))
	}

	n := g.NodeCount()
	for s := 0; s < n; s++ {
		for tg := 0; tg < n; tg++ {
			ucs := dijkstra.ShortestPath(g, s, tg)
			guided := astar.ShortestPath(g, s, tg)
			require.Equal(t, ucs.Distance, guided.Distance, "query (%d,%d)", s, tg)
			if guided.Reachable() {
				require.Equal(t, guided.Distance, cost(g, guided.Path), "query (%d,%d)", s, tg)
			} else {
				require.Empty(t, guided.Path)
			}
		}
	}
}

// TestShortestPath_AdmissibleHeuristic installs a real remaining-cost
// estimate: nodes lie on a line with unit arcs, so |target-node| never
// overestimates. The result must stay exact.
func TestShortestPath_AdmissibleHeuristic(t *testing.T) {
	h := func(node, target int) float64 { return math.Abs(float64(target - node)) }
	g := core.NewGraph(core.WithHeuristic(h))
	for i := 0; i < 9; i++ {
		require.NoError(t, g.AddEdge(i, i+1, 1))
	}
	// A tempting but costly shortcut the heuristic must not be fooled by.
	require.NoError(t, g.AddEdge(0, 9, 20))

	res := astar.ShortestPath(g, 0, 9)
	require.Equal(t, 9.0, res.Distance)
	require.Len(t, res.Path, 10)
}

func TestShortestPath_NegativeWeight_Deterministic(t *testing.T) {
	// Same known-limitation pin as the uniform-cost solver.
	g := core.NewGraph()
	require.NoError(t, g.AddEdge(0, 1, -1))
	require.NoError(t, g.AddEdge(1, 2, 1))

	first := astar.ShortestPath(g, 0, 2)
	second := astar.ShortestPath(g, 0, 2)
	require.Equal(t, 0.0, first.Distance)
	require.Equal(t, first.Distance, second.Distance)
	require.Equal(t, first.Path, second.Path)
}

// cost sums the cheapest parallel arc for each hop of path.
func cost(g *core.Graph, path []int) float64 {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		best := math.Inf(1)
		for _, e := range g.Neighbors(path[i]) {
			if e.To == path[i+1] && e.Weight < best {
				best = e.Weight
			}
		}
		total += best
	}

	return total
}
