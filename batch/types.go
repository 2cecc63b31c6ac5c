// Query, algorithm and option types for batch execution.

package batch

import "runtime"

// Query is one independent (source, target) path request within a batch.
type Query struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// Algorithm selects which solver a batch runs.
type Algorithm int

const (
	// Dijkstra runs the uniform-cost solver for every query.
	Dijkstra Algorithm = iota

	// AStar runs the heuristic-guided solver; with the graph's default
	// zero heuristic its results equal Dijkstra's.
	AStar
)

// String returns the label used in logs and persisted query history.
func (a Algorithm) String() string {
	if a == AStar {
		return "a_star"
	}

	return "dijkstra"
}

// ParseAlgorithm maps an API label onto an Algorithm. Unknown labels fall
// back to Dijkstra, matching the upstream "default algorithm" behavior.
func ParseAlgorithm(label string) Algorithm {
	if label == "a_star" || label == "astar" {
		return AStar
	}

	return Dijkstra
}

// Options configures batch execution.
type Options struct {
	// Workers is the pool size. Values < 1 are replaced by runtime.NumCPU().
	Workers int
}

// Option is a functional option for Run.
type Option func(*Options)

// WithWorkers sets how many pool workers execute queries concurrently.
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// DefaultOptions returns the baseline configuration: one worker per CPU.
func DefaultOptions() Options {
	return Options{Workers: runtime.NumCPU()}
}
