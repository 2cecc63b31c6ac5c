// Package csvio imports routing graph edges from header-driven CSV.
//
// The expected format is a header row plus data rows. Required columns
// (with accepted aliases):
//
//	from_node | from
//	to_node   | to
//	weight
//
// Optional columns:
//
//	edge_type | type
//	distance  | dist
//	time      | travel_time
//	cost
//	capacity
//	is_one_way | one_way     (truthy: 1/true/yes/y, falsy: 0/false/no/n)
//
// Row-level problems (empty required fields, unparsable numbers) skip the
// row and append a positioned message to the summary; they never abort the
// import. A missing header or missing required columns fails the whole
// import before any row is read.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/routecore/routecore/core"
	"github.com/routecore/routecore/profile"
)

// Sentinel errors for structurally unusable input.
var (
	// ErrNoHeader indicates the input has no header row at all.
	ErrNoHeader = errors.New("csvio: input has no header row")

	// ErrMissingColumns indicates one or more required columns are absent.
	ErrMissingColumns = errors.New("csvio: required columns missing")
)

// Summary reports what an import did.
type Summary struct {
	EdgesImported int      `json:"edges_imported"`
	SkippedRows   int      `json:"skipped_rows"`
	Errors        []string `json:"errors,omitempty"`
	RowsSeen      int      `json:"sample_rows"`
}

// Result bundles the parsed arcs, their optional metadata and the summary.
type Result struct {
	Arcs     []core.Arc
	Metadata []profile.EdgeMetadata
	Summary  Summary
}

// columns maps logical fields onto header positions (-1 = absent).
type columns struct {
	from, to, weight         int
	edgeType, distance, time int
	cost, capacity, oneWay   int
}

// ImportEdges parses r and returns every well-formed edge row.
// Complexity: O(rows).
func ImportEdges(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Optional columns make row widths legitimately uneven.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Result{}, ErrNoHeader
		}

		return Result{}, fmt.Errorf("csvio: reading header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return Result{}, err
	}

	var res Result
	rowNum := 1 // header was row 1
	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		rowNum++
		res.Summary.RowsSeen++
		if readErr != nil {
			res.Summary.SkippedRows++
			res.Summary.Errors = append(res.Summary.Errors,
				fmt.Sprintf("row %d: %v", rowNum, readErr))
			continue
		}

		arc, meta, rowErr := parseRow(record, cols)
		if rowErr != nil {
			res.Summary.SkippedRows++
			res.Summary.Errors = append(res.Summary.Errors,
				fmt.Sprintf("row %d: %v", rowNum, rowErr))
			continue
		}
		res.Arcs = append(res.Arcs, arc)
		res.Metadata = append(res.Metadata, meta)
		res.Summary.EdgesImported++
	}

	return res, nil
}

// ApplyTo adds every imported arc to g. Returns the first graph error
// encountered (negative indices are the only possibility).
func (r Result) ApplyTo(g *core.Graph) error {
	for _, arc := range r.Arcs {
		if err := g.AddEdge(arc.From, arc.To, arc.Weight); err != nil {
			return fmt.Errorf("csvio: adding edge %d→%d: %w", arc.From, arc.To, err)
		}
	}

	return nil
}

// resolveColumns locates required and optional columns in the header.
func resolveColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	find := func(names ...string) int {
		for _, n := range names {
			if i, ok := index[n]; ok {
				return i
			}
		}

		return -1
	}

	cols := columns{
		from:     find("from_node", "from"),
		to:       find("to_node", "to"),
		weight:   find("weight"),
		edgeType: find("edge_type", "type"),
		distance: find("distance", "dist"),
		time:     find("time", "travel_time"),
		cost:     find("cost"),
		capacity: find("capacity"),
		oneWay:   find("is_one_way", "one_way"),
	}

	var missing []string
	if cols.from < 0 {
		missing = append(missing, "from_node|from")
	}
	if cols.to < 0 {
		missing = append(missing, "to_node|to")
	}
	if cols.weight < 0 {
		missing = append(missing, "weight")
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return cols, nil
}

// parseRow turns one CSV record into an arc plus its metadata.
func parseRow(record []string, cols columns) (core.Arc, profile.EdgeMetadata, error) {
	get := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}

		return strings.TrimSpace(record[i])
	}

	rawFrom, rawTo, rawWeight := get(cols.from), get(cols.to), get(cols.weight)
	if rawFrom == "" || rawTo == "" || rawWeight == "" {
		return core.Arc{}, profile.EdgeMetadata{}, errors.New("empty required field")
	}

	from, err := strconv.Atoi(rawFrom)
	if err != nil {
		return core.Arc{}, profile.EdgeMetadata{}, fmt.Errorf("from: %w", err)
	}
	to, err := strconv.Atoi(rawTo)
	if err != nil {
		return core.Arc{}, profile.EdgeMetadata{}, fmt.Errorf("to: %w", err)
	}
	weight, err := strconv.ParseFloat(rawWeight, 64)
	if err != nil {
		return core.Arc{}, profile.EdgeMetadata{}, fmt.Errorf("weight: %w", err)
	}
	if from < 0 || to < 0 {
		return core.Arc{}, profile.EdgeMetadata{}, errors.New("negative node index")
	}

	meta := profile.EdgeMetadata{
		From:     from,
		To:       to,
		EdgeType: get(cols.edgeType),
		IsOneWay: parseBool(get(cols.oneWay), true),
	}
	if v, ok := parseOptionalFloat(get(cols.distance)); ok {
		meta.Distance = &v
	}
	if v, ok := parseOptionalFloat(get(cols.time)); ok {
		meta.TravelTime = &v
	}
	if v, ok := parseOptionalFloat(get(cols.cost)); ok {
		meta.Cost = &v
	}
	if v, ok := parseOptionalFloat(get(cols.capacity)); ok {
		meta.Capacity = &v
	}

	return core.Arc{From: from, To: to, Weight: weight}, meta, nil
}

// parseOptionalFloat returns (value, true) for a parsable non-empty cell.
func parseOptionalFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

// parseBool follows the upstream truthy/falsy table, defaulting otherwise.
func parseBool(s string, def bool) bool {
	switch strings.ToLower(s) {
	case "0", "false", "no", "n":
		return false
	case "1", "true", "yes", "y":
		return true
	default:
		return def
	}
}
