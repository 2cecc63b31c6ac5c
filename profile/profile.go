// Package profile derives routing graphs whose arc weights blend multiple
// cost criteria.
//
// An optimization profile carries three coefficients (time, distance,
// cost). For every base arc the derived weight is
//
//	w = WeightTime·travel_time + WeightDistance·distance + WeightCost·cost
//
// using per-arc metadata where available and falling back to the base
// weight (as travel time) where not. A non-positive aggregate falls back
// to the base weight, or to 1 when the base weight itself is non-positive,
// so the solvers keep their non-negative-weight guarantees.
package profile

import (
	"errors"

	"github.com/routecore/routecore/core"
)

// Sentinel errors for profile handling.
var (
	// ErrNotFound indicates the named profile does not exist.
	ErrNotFound = errors.New("profile: not found")

	// ErrNilGraph indicates a nil base graph was supplied.
	ErrNilGraph = errors.New("profile: base graph is nil")
)

// Profile weights the criteria an arc is judged by.
type Profile struct {
	ID             uint64  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	WeightTime     float64 `json:"weight_time"`
	WeightDistance float64 `json:"weight_distance"`
	WeightCost     float64 `json:"weight_cost"`
}

// EdgeMetadata carries the per-arc criteria values a profile combines.
// Nil fields mean "unknown"; TravelTime falls back to the arc's base
// weight, Distance and Cost fall back to zero.
type EdgeMetadata struct {
	From       int      `json:"from_node"`
	To         int      `json:"to_node"`
	EdgeType   string   `json:"edge_type,omitempty"`
	TravelTime *float64 `json:"travel_time,omitempty"`
	Distance   *float64 `json:"distance,omitempty"`
	Cost       *float64 `json:"cost,omitempty"`
	Capacity   *float64 `json:"capacity,omitempty"`
	IsOneWay   bool     `json:"is_one_way"`
}

// MetadataIndex maps arc pairs onto their metadata for O(1) lookup while
// deriving a graph.
type MetadataIndex map[[2]int]EdgeMetadata

// IndexMetadata builds a MetadataIndex from a metadata list; the last
// record for a pair wins.
func IndexMetadata(meta []EdgeMetadata) MetadataIndex {
	idx := make(MetadataIndex, len(meta))
	for _, m := range meta {
		idx[[2]int{m.From, m.To}] = m
	}

	return idx
}

// BuildGraph derives a graph from base whose arc weights follow p's
// criteria blend over meta. The base graph is untouched; its node count
// and heuristic carry over.
// Complexity: O(V + E).
func BuildGraph(base *core.Graph, p Profile, meta MetadataIndex) (*core.Graph, error) {
	if base == nil {
		return nil, ErrNilGraph
	}

	derived := core.NewGraph(core.WithHeuristic(base.Heuristic))
	if n := base.NodeCount(); n > 0 {
		if err := derived.EnsureNode(n - 1); err != nil {
			return nil, err
		}
	}

	for _, arc := range base.Edges() {
		weight := blend(p, arc, meta)
		if err := derived.AddEdge(arc.From, arc.To, weight); err != nil {
			return nil, err
		}
	}

	return derived, nil
}

// blend computes one arc's derived weight with the documented fallbacks.
func blend(p Profile, arc core.Arc, meta MetadataIndex) float64 {
	timeVal := arc.Weight
	distVal := 0.0
	costVal := 0.0

	if m, ok := meta[[2]int{arc.From, arc.To}]; ok {
		if m.TravelTime != nil {
			timeVal = *m.TravelTime
		}
		if m.Distance != nil {
			distVal = *m.Distance
		}
		if m.Cost != nil {
			costVal = *m.Cost
		}
	}

	agg := p.WeightTime*timeVal + p.WeightDistance*distVal + p.WeightCost*costVal
	if !(agg > 0) {
		if arc.Weight > 0 {
			return arc.Weight
		}

		return 1
	}

	return agg
}
