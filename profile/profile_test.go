// Package profile_test checks criteria blending: metadata lookup,
// fallbacks for missing fields and non-positive aggregates, and that
// profile choice actually changes routing decisions.
package profile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routecore/routecore/core"
	"github.com/routecore/routecore/dijkstra"
	"github.com/routecore/routecore/profile"
)

func fptr(v float64) *float64 { return &v }

func TestBuildGraph_NilBase(t *testing.T) {
	_, err := profile.BuildGraph(nil, profile.Profile{}, nil)
	require.ErrorIs(t, err, profile.ErrNilGraph)
}

func TestBuildGraph_TimeOnlyWithoutMetadata(t *testing.T) {
	// No metadata: base weight acts as the travel time.
	base := core.NewGraph()
	require.NoError(t, base.AddEdge(0, 1, 4))

	p := profile.Profile{Name: "fastest", WeightTime: 2}
	derived, err := profile.BuildGraph(base, p, nil)
	require.NoError(t, err)

	require.Equal(t, 8.0, derived.Neighbors(0)[0].Weight)
}

func TestBuildGraph_BlendsAllCriteria(t *testing.T) {
	base := core.NewGraph()
	require.NoError(t, base.AddEdge(0, 1, 1))

	meta := profile.IndexMetadata([]profile.EdgeMetadata{
		{From: 0, To: 1, TravelTime: fptr(10), Distance: fptr(3), Cost: fptr(2)},
	})
	p := profile.Profile{WeightTime: 1, WeightDistance: 2, WeightCost: 0.5}

	derived, err := profile.BuildGraph(base, p, meta)
	require.NoError(t, err)

	// 1*10 + 2*3 + 0.5*2 = 17
	require.Equal(t, 17.0, derived.Neighbors(0)[0].Weight)
}

func TestBuildGraph_NonPositiveAggregateFallsBack(t *testing.T) {
	base := core.NewGraph()
	require.NoError(t, base.AddEdge(0, 1, 6))
	require.NoError(t, base.AddEdge(1, 2, 0)) // zero base weight

	// All-zero coefficients make every aggregate 0.
	derived, err := profile.BuildGraph(base, profile.Profile{}, nil)
	require.NoError(t, err)

	require.Equal(t, 6.0, derived.Neighbors(0)[0].Weight, "fallback to base weight")
	require.Equal(t, 1.0, derived.Neighbors(1)[0].Weight, "fallback to 1 when base is non-positive")
}

func TestBuildGraph_ProfileChangesRoute(t *testing.T) {
	// Two ways from 0 to 2: fast-but-expensive via 1, slow-but-cheap direct.
	base := core.NewGraph()
	require.NoError(t, base.AddEdge(0, 1, 1))
	require.NoError(t, base.AddEdge(1, 2, 1))
	require.NoError(t, base.AddEdge(0, 2, 10))

	meta := profile.IndexMetadata([]profile.EdgeMetadata{
		{From: 0, To: 1, TravelTime: fptr(1), Cost: fptr(50)},
		{From: 1, To: 2, TravelTime: fptr(1), Cost: fptr(50)},
		{From: 0, To: 2, TravelTime: fptr(10), Cost: fptr(1)},
	})

	fastest := profile.Profile{WeightTime: 1}
	gFast, err := profile.BuildGraph(base, fastest, meta)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, dijkstra.ShortestPath(gFast, 0, 2).Path)

	cheapest := profile.Profile{WeightCost: 1}
	gCheap, err := profile.BuildGraph(base, cheapest, meta)
	require.NoError(t, err)
	require.Equal(t, []int{0, 2}, dijkstra.ShortestPath(gCheap, 0, 2).Path)
}

func TestIndexMetadata_LastRecordWins(t *testing.T) {
	idx := profile.IndexMetadata([]profile.EdgeMetadata{
		{From: 0, To: 1, Cost: fptr(1)},
		{From: 0, To: 1, Cost: fptr(9)},
	})
	require.Len(t, idx, 1)
	require.Equal(t, 9.0, *idx[[2]int{0, 1}].Cost)
}
