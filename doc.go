// Package routecore is a shortest-path routing toolkit and service.
//
// The module splits into two layers.
//
// Solver packages, usable as a plain library:
//
//	core/     — dense directed graph with float64 arc weights
//	dijkstra/ — uniform-cost shortest path
//	astar/    — heuristic-guided shortest path, same contract
//	batch/    — order-preserving parallel query execution
//	quality/  — isolated-node and zero-weight-cycle diagnostics
//
// Service packages, wired together by cmd/routecored:
//
//	scenario/ — derived graphs from edge modification sets
//	profile/  — derived graphs from weighted optimization criteria
//	csvio/    — bulk edge import with per-row error tolerance
//	store/    — embedded persistence for history, scenarios, profiles
//	routing/  — query orchestration, overlays, history logging
//	jobs/     — asynchronous batch execution with progress tracking
//	auth/     — accounts and bearer tokens
//	httpapi/  — the REST surface
//	config/   — environment-driven settings
//
// Library users who only need path computation import core plus a solver
// package and ignore the service layer entirely.
package routecore
