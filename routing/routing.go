// Package routing orchestrates path queries for the HTTP API: it resolves
// the requested algorithm, applies optional scenario or profile overlays,
// runs the solvers (single or batched), and logs every query to the store.
//
// The core solver sentinel (+Inf, empty path) survives up through this
// layer as a response with Reachable=false and a nil TotalWeight; JSON has
// no +Inf, so unreachable routes serialize as null weight and empty node
// list rather than an error.
package routing

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/routecore/routecore/astar"
	"github.com/routecore/routecore/batch"
	"github.com/routecore/routecore/core"
	"github.com/routecore/routecore/dijkstra"
	"github.com/routecore/routecore/profile"
	"github.com/routecore/routecore/scenario"
	"github.com/routecore/routecore/store"
)

// Sentinel errors surfaced to the API layer.
var (
	// ErrScenarioProfileCombo indicates a request combined scenario_id and
	// profile, which is unsupported.
	ErrScenarioProfileCombo = errors.New("routing: scenario and profile cannot be combined")

	// ErrBatchOverlay indicates a batch request carried scenario or
	// profile overlays; batches run against the base graph only.
	ErrBatchOverlay = errors.New("routing: scenario/profile overlays are not supported in batch queries")
)

// Request is one route query as received from the API.
type Request struct {
	Source     int     `json:"source"`
	Target     int     `json:"target"`
	Algorithm  string  `json:"algorithm,omitempty"`
	ScenarioID *uint64 `json:"scenario_id,omitempty"`
	Profile    *string `json:"profile,omitempty"`
}

// Segment is one hop of a returned route with its traversed weight.
type Segment struct {
	FromNode int     `json:"from_node"`
	ToNode   int     `json:"to_node"`
	Weight   float64 `json:"weight"`
}

// Response is the outcome of one route query.
type Response struct {
	// TotalWeight is nil exactly when the target was unreachable (or an
	// index was out of range); JSON cannot carry +Inf.
	TotalWeight *float64  `json:"total_weight"`
	Reachable   bool      `json:"reachable"`
	Nodes       []int     `json:"nodes"`
	Segments    []Segment `json:"segments"`
	Algorithm   string    `json:"algorithm"`
	ExecutionMS float64   `json:"execution_time_ms"`
}

// BatchRequest carries an ordered list of independent queries.
type BatchRequest struct {
	Queries   []Request `json:"queries"`
	Algorithm string    `json:"algorithm,omitempty"`
}

// BatchItem pairs one batch query with its result, preserving input order.
type BatchItem struct {
	Request  Request  `json:"request"`
	Response Response `json:"response"`
}

// Service executes route queries against a shared base graph.
type Service struct {
	graph   *core.Graph
	store   *store.Store // nil disables history logging
	log     logrus.FieldLogger
	workers int
}

// NewService wires a Service. store may be nil (no history); logger may be
// nil (discard).
func NewService(g *core.Graph, st *store.Store, logger logrus.FieldLogger, workers int) *Service {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(nullWriter{})
		logger = l
	}

	return &Service{
		graph:   g,
		store:   st,
		log:     logger.WithField("module", "routing"),
		workers: workers,
	}
}

// Graph exposes the base graph for the graph-management endpoints.
func (s *Service) Graph() *core.Graph { return s.graph }

// FindRoute executes one query, honoring scenario or profile overlays.
//
// Overlay resolution errors (unknown scenario, unknown profile, forbidden
// combination) are returned as errors for the API layer to map onto 4xx
// responses. An unreachable result is NOT an error.
func (s *Service) FindRoute(req Request) (Response, error) {
	if req.ScenarioID != nil && req.Profile != nil {
		return Response{}, ErrScenarioProfileCombo
	}

	algo := batch.ParseAlgorithm(req.Algorithm)
	label := algo.String()

	g := s.graph
	var err error
	switch {
	case req.ScenarioID != nil:
		g, err = s.scenarioGraph(*req.ScenarioID)
		label += "_scenario"
	case req.Profile != nil:
		g, err = s.profileGraph(*req.Profile)
		label += "_profile"
	}

	start := time.Now()
	var result core.PathResult
	if err == nil {
		result = solve(g, algo, req.Source, req.Target)
	}
	execMS := float64(time.Since(start)) / float64(time.Millisecond)

	s.logQuery(req, label, result, execMS, err, false, "")
	if err != nil {
		return Response{}, err
	}

	return buildResponse(g, result, label, execMS), nil
}

// FindRoutesBatch runs every query of breq concurrently against the base
// graph and returns items in input order. Overlays are rejected up front;
// an empty query list yields an empty item list.
func (s *Service) FindRoutesBatch(breq BatchRequest) ([]BatchItem, error) {
	for _, q := range breq.Queries {
		if q.ScenarioID != nil || q.Profile != nil {
			return nil, ErrBatchOverlay
		}
	}

	algo := batch.ParseAlgorithm(breq.Algorithm)
	label := algo.String() + "_parallel_batch"

	queries := make([]batch.Query, len(breq.Queries))
	for i, q := range breq.Queries {
		queries[i] = batch.Query{Source: q.Source, Target: q.Target}
	}

	start := time.Now()
	results := batch.Run(s.graph, queries, algo, batch.WithWorkers(s.workers))
	execMS := float64(time.Since(start)) / float64(time.Millisecond)

	group := newGroupID()
	items := make([]BatchItem, len(results))
	for i, res := range results {
		s.logQuery(breq.Queries[i], label, res, execMS, nil, true, group)
		items[i] = BatchItem{
			Request:  breq.Queries[i],
			Response: buildResponse(s.graph, res, label, execMS),
		}
	}

	s.log.WithFields(logrus.Fields{
		"queries": len(items),
		"group":   group,
		"ms":      execMS,
	}).Debug("batch executed")

	return items, nil
}

// scenarioGraph loads an active scenario and derives its graph.
func (s *Service) scenarioGraph(id uint64) (*core.Graph, error) {
	if s.store == nil {
		return nil, scenario.ErrNotFound
	}
	rec, err := s.store.Scenario(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, scenario.ErrNotFound
		}

		return nil, err
	}
	if !rec.IsActive {
		return nil, scenario.ErrNotFound
	}

	return scenario.BuildGraph(s.graph, rec.Modifications)
}

// profileGraph loads a profile plus edge metadata and derives its graph.
func (s *Service) profileGraph(name string) (*core.Graph, error) {
	if s.store == nil {
		return nil, profile.ErrNotFound
	}
	rec, err := s.store.ProfileByName(name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, profile.ErrNotFound
		}

		return nil, err
	}
	meta, err := s.store.EdgeMetadata()
	if err != nil {
		return nil, err
	}

	return profile.BuildGraph(s.graph, rec.Profile(), profile.IndexMetadata(meta))
}

// logQuery appends one history record; logging failures are reported but
// never fail the query itself.
func (s *Service) logQuery(req Request, label string, res core.PathResult, execMS float64, queryErr error, isBatch bool, group string) {
	if s.store == nil {
		return
	}

	rec := &store.QueryRecord{
		SourceNode:  req.Source,
		TargetNode:  req.Target,
		Algorithm:   label,
		ScenarioID:  req.ScenarioID,
		ExecutionMS: execMS,
		Success:     queryErr == nil,
		IsBatch:     isBatch,
		BatchGroup:  group,
	}
	if req.Profile != nil {
		rec.Profile = *req.Profile
	}
	if queryErr != nil {
		rec.ErrorMessage = queryErr.Error()
	} else if res.Reachable() {
		w := res.Distance
		rec.TotalWeight = &w
	}

	if err := s.store.LogQuery(rec); err != nil {
		s.log.WithError(err).Warn("query history write failed")
	}
}

// solve dispatches one query to the selected solver.
func solve(g *core.Graph, algo batch.Algorithm, source, target int) core.PathResult {
	if algo == batch.AStar {
		return astar.ShortestPath(g, source, target)
	}

	return dijkstra.ShortestPath(g, source, target)
}

// buildResponse shapes one solver result for the API, materializing hop
// segments with the cheapest matching arc weight per hop.
func buildResponse(g *core.Graph, res core.PathResult, label string, execMS float64) Response {
	resp := Response{
		Reachable:   res.Reachable(),
		Nodes:       res.Path,
		Segments:    []Segment{},
		Algorithm:   label,
		ExecutionMS: execMS,
	}
	if resp.Nodes == nil {
		resp.Nodes = []int{}
	}
	if res.Reachable() {
		w := res.Distance
		resp.TotalWeight = &w
		for i := 0; i+1 < len(res.Path); i++ {
			resp.Segments = append(resp.Segments, Segment{
				FromNode: res.Path[i],
				ToNode:   res.Path[i+1],
				Weight:   hopWeight(g, res.Path[i], res.Path[i+1]),
			})
		}
	}

	return resp
}

// hopWeight returns the cheapest arc weight between two adjacent path
// nodes; the solver always traversed one of the parallel arcs with this
// weight.
func hopWeight(g *core.Graph, from, to int) float64 {
	best := math.Inf(1)
	for _, e := range g.Neighbors(from) {
		if e.To == to && e.Weight < best {
			best = e.Weight
		}
	}

	return best
}

// newGroupID returns a random 16-hex-character batch group identifier.
func newGroupID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// timestamp so the group is still non-empty.
		return fmt.Sprintf("g%x", time.Now().UnixNano())
	}

	return hex.EncodeToString(buf[:])
}

// nullWriter discards service logs when no logger is supplied.
type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }
