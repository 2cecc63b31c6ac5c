// Package scenario builds what-if variants of the base routing graph.
//
// A scenario is a named set of arc modifications: an arc can be disabled,
// given a replacement weight, or scaled by a traffic multiplier. Applying
// a scenario never touches the base graph; it produces a fresh derived
// core.Graph that queries run against, so scenarios compose cleanly with
// the read-only-during-query contract.
package scenario

import (
	"errors"

	"github.com/routecore/routecore/core"
)

// Sentinel errors for scenario handling.
var (
	// ErrNotFound indicates the requested scenario does not exist or is
	// inactive.
	ErrNotFound = errors.New("scenario: not found or inactive")

	// ErrNilGraph indicates a nil base graph was supplied.
	ErrNilGraph = errors.New("scenario: base graph is nil")
)

// Modification adjusts one (From, To) arc pair inside a scenario.
// Precedence per arc: Disable wins outright; otherwise NewWeight (when
// set) replaces the base weight, and WeightMultiplier (when set) scales
// whatever weight resulted. All parallel arcs of the pair are affected
// identically.
type Modification struct {
	From int `json:"from_node"`
	To   int `json:"to_node"`

	// Disable removes the arc pair from the scenario graph entirely.
	Disable bool `json:"disable"`

	// NewWeight, when non-nil, replaces the base weight.
	NewWeight *float64 `json:"new_weight,omitempty"`

	// WeightMultiplier, when non-nil, scales the (possibly replaced)
	// weight; 1.0 means unchanged.
	WeightMultiplier *float64 `json:"weight_multiplier,omitempty"`
}

// Scenario is a named, activatable modification set.
type Scenario struct {
	ID            uint64         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	IsActive      bool           `json:"is_active"`
	Modifications []Modification `json:"modifications"`
}

// BuildGraph derives a new graph from base with mods applied.
//
// Every base arc is looked up by its (From, To) pair: unmodified arcs copy
// over verbatim, disabled pairs are dropped, and weight overrides apply in
// the order replace-then-multiply. Node count is preserved even when a
// node loses all its arcs, so query indices stay valid across scenarios.
// The base graph's heuristic carries over to the derived graph.
//
// Complexity: O(V + E + len(mods)).
func BuildGraph(base *core.Graph, mods []Modification) (*core.Graph, error) {
	if base == nil {
		return nil, ErrNilGraph
	}

	// Index modifications by arc pair; the last modification for a pair
	// wins, matching upstream behavior.
	modByPair := make(map[[2]int]Modification, len(mods))
	for _, m := range mods {
		modByPair[[2]int{m.From, m.To}] = m
	}

	derived := core.NewGraph(core.WithHeuristic(base.Heuristic))
	if n := base.NodeCount(); n > 0 {
		if err := derived.EnsureNode(n - 1); err != nil {
			return nil, err
		}
	}

	for _, arc := range base.Edges() {
		mod, hit := modByPair[[2]int{arc.From, arc.To}]
		if !hit {
			if err := derived.AddEdge(arc.From, arc.To, arc.Weight); err != nil {
				return nil, err
			}
			continue
		}
		if mod.Disable {
			continue
		}
		weight := arc.Weight
		if mod.NewWeight != nil {
			weight = *mod.NewWeight
		}
		if mod.WeightMultiplier != nil {
			weight *= *mod.WeightMultiplier
		}
		if err := derived.AddEdge(arc.From, arc.To, weight); err != nil {
			return nil, err
		}
	}

	return derived, nil
}
