// Package store persists the service-layer state of routecore (query
// history, scenarios, optimization profiles, edge metadata, fix logs and
// user accounts) in a single embedded bolthold (bbolt) database.
//
// The core routing graph itself is NOT persisted here; it lives in memory
// and is rebuilt from imports. The store only carries the surrounding
// service records, JSON-encoded with auto-increment keys.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"

	"github.com/routecore/routecore/profile"
	"github.com/routecore/routecore/scenario"
)

// Sentinel errors.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("store: record not found")

	// ErrDuplicate indicates a unique constraint (scenario/profile name,
	// user email) would be violated.
	ErrDuplicate = errors.New("store: duplicate record")
)

// Store wraps the bolthold database with typed accessors.
type Store struct {
	db *bolthold.Store
}

// Open opens (creating if needed) the database file at path.
func Open(path string) (*Store, error) {
	db, err := bolthold.Open(path, 0o644, &bolthold.Options{
		Encoder: json.Marshal,
		Decoder: json.Unmarshal,
		Options: &bbolt.Options{
			Timeout:      5 * time.Second,
			NoGrowSync:   bbolt.DefaultOptions.NoGrowSync,
			FreelistType: bbolt.DefaultOptions.FreelistType,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// --- Query history ---

// LogQuery appends one query record, stamping CreatedAt (UnixNano, so
// same-second inserts still sort) if unset.
func (s *Store) LogQuery(rec *QueryRecord) error {
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().UnixNano()
	}

	return s.db.Insert(bolthold.NextSequence(), rec)
}

// HistoryFilter narrows QueryHistory results. Zero values mean "any".
type HistoryFilter struct {
	Algorithm   string
	OnlySuccess bool
	OnlyBatch   bool
	Limit       int
}

// QueryHistory returns logged queries, newest first, honoring f.
func (s *Store) QueryHistory(f HistoryFilter) ([]QueryRecord, error) {
	q := &bolthold.Query{}
	if f.Algorithm != "" {
		q = bolthold.Where("Algorithm").Eq(f.Algorithm).Index("Algorithm")
	}
	if f.OnlySuccess {
		q = q.And("Success").Eq(true)
	}
	if f.OnlyBatch {
		q = q.And("IsBatch").Eq(true)
	}
	q = q.SortBy("CreatedAt").Reverse()
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var records []QueryRecord
	if err := s.db.Find(&records, q); err != nil {
		return nil, fmt.Errorf("store: query history: %w", err)
	}

	return records, nil
}

// PerformanceStats aggregates logged queries per algorithm label.
type PerformanceStats struct {
	Algorithm    string  `json:"algorithm"`
	Count        int     `json:"count"`
	SuccessCount int     `json:"success_count"`
	AvgTimeMS    float64 `json:"avg_time_ms"`
	MinTimeMS    float64 `json:"min_time_ms"`
	MaxTimeMS    float64 `json:"max_time_ms"`
}

// QueryStats computes per-algorithm aggregates over the whole history.
func (s *Store) QueryStats() ([]PerformanceStats, error) {
	var records []QueryRecord
	if err := s.db.Find(&records, &bolthold.Query{}); err != nil {
		return nil, fmt.Errorf("store: stats scan: %w", err)
	}

	byAlgo := make(map[string]*PerformanceStats)
	for _, rec := range records {
		st, ok := byAlgo[rec.Algorithm]
		if !ok {
			st = &PerformanceStats{Algorithm: rec.Algorithm, MinTimeMS: rec.ExecutionMS, MaxTimeMS: rec.ExecutionMS}
			byAlgo[rec.Algorithm] = st
		}
		st.Count++
		if rec.Success {
			st.SuccessCount++
		}
		// Running mean keeps a single pass.
		st.AvgTimeMS += (rec.ExecutionMS - st.AvgTimeMS) / float64(st.Count)
		if rec.ExecutionMS < st.MinTimeMS {
			st.MinTimeMS = rec.ExecutionMS
		}
		if rec.ExecutionMS > st.MaxTimeMS {
			st.MaxTimeMS = rec.ExecutionMS
		}
	}

	stats := make([]PerformanceStats, 0, len(byAlgo))
	for _, st := range byAlgo {
		stats = append(stats, *st)
	}

	return stats, nil
}

// --- Scenarios ---

// CreateScenario inserts a scenario; names are unique.
func (s *Store) CreateScenario(rec *ScenarioRecord) error {
	if err := s.ensureUnique(&ScenarioRecord{}, "Name", rec.Name); err != nil {
		return err
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().UnixNano()
	}

	return s.db.Insert(bolthold.NextSequence(), rec)
}

// Scenario fetches one scenario by ID.
func (s *Store) Scenario(id uint64) (ScenarioRecord, error) {
	var rec ScenarioRecord
	if err := s.db.Get(id, &rec); err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return rec, ErrNotFound
		}

		return rec, fmt.Errorf("store: scenario %d: %w", id, err)
	}

	return rec, nil
}

// Scenarios lists every stored scenario.
func (s *Store) Scenarios() ([]ScenarioRecord, error) {
	var records []ScenarioRecord
	if err := s.db.Find(&records, (&bolthold.Query{}).SortBy("ID")); err != nil {
		return nil, fmt.Errorf("store: scenarios: %w", err)
	}

	return records, nil
}

// AppendModifications adds mods to an existing scenario and returns the
// updated record.
func (s *Store) AppendModifications(id uint64, mods []scenario.Modification) (ScenarioRecord, error) {
	rec, err := s.Scenario(id)
	if err != nil {
		return rec, err
	}
	rec.Modifications = append(rec.Modifications, mods...)
	if err := s.db.Update(id, &rec); err != nil {
		return rec, fmt.Errorf("store: updating scenario %d: %w", id, err)
	}

	return rec, nil
}

// --- Profiles ---

// CreateProfile inserts a profile; names are unique.
func (s *Store) CreateProfile(rec *ProfileRecord) error {
	if err := s.ensureUnique(&ProfileRecord{}, "Name", rec.Name); err != nil {
		return err
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().UnixNano()
	}

	return s.db.Insert(bolthold.NextSequence(), rec)
}

// ProfileByName fetches one profile by its unique name.
func (s *Store) ProfileByName(name string) (ProfileRecord, error) {
	var rec ProfileRecord
	err := s.db.FindOne(&rec, bolthold.Where("Name").Eq(name).Index("Name"))
	if err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return rec, ErrNotFound
		}

		return rec, fmt.Errorf("store: profile %q: %w", name, err)
	}

	return rec, nil
}

// Profiles lists every stored profile.
func (s *Store) Profiles() ([]ProfileRecord, error) {
	var records []ProfileRecord
	if err := s.db.Find(&records, (&bolthold.Query{}).SortBy("ID")); err != nil {
		return nil, fmt.Errorf("store: profiles: %w", err)
	}

	return records, nil
}

// --- Edge metadata ---

// SaveEdgeMetadata appends imported metadata records.
func (s *Store) SaveEdgeMetadata(meta []profile.EdgeMetadata) error {
	for _, m := range meta {
		if err := s.db.Insert(bolthold.NextSequence(), &EdgeMetadataRecord{Meta: m}); err != nil {
			return fmt.Errorf("store: edge metadata: %w", err)
		}
	}

	return nil
}

// EdgeMetadata returns every stored metadata record in insertion order.
func (s *Store) EdgeMetadata() ([]profile.EdgeMetadata, error) {
	var records []EdgeMetadataRecord
	if err := s.db.Find(&records, (&bolthold.Query{}).SortBy("ID")); err != nil {
		return nil, fmt.Errorf("store: edge metadata: %w", err)
	}

	meta := make([]profile.EdgeMetadata, len(records))
	for i, rec := range records {
		meta[i] = rec.Meta
	}

	return meta, nil
}

// --- Fix logs ---

// LogFix appends one quality-fix log entry.
func (s *Store) LogFix(rec *FixLogRecord) error {
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().UnixNano()
	}

	return s.db.Insert(bolthold.NextSequence(), rec)
}

// --- Users ---

// CreateUser inserts a user; emails are unique.
func (s *Store) CreateUser(rec *UserRecord) error {
	if err := s.ensureUnique(&UserRecord{}, "Email", rec.Email); err != nil {
		return err
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().UnixNano()
	}

	return s.db.Insert(bolthold.NextSequence(), rec)
}

// UserByEmail fetches one user account.
func (s *Store) UserByEmail(email string) (UserRecord, error) {
	var rec UserRecord
	err := s.db.FindOne(&rec, bolthold.Where("Email").Eq(email).Index("Email"))
	if err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return rec, ErrNotFound
		}

		return rec, fmt.Errorf("store: user %q: %w", email, err)
	}

	return rec, nil
}

// ensureUnique fails with ErrDuplicate when a record of result's type
// already holds value in field.
func (s *Store) ensureUnique(result interface{}, field, value string) error {
	err := s.db.FindOne(result, bolthold.Where(field).Eq(value))
	if err == nil {
		return fmt.Errorf("%w: %s=%q", ErrDuplicate, field, value)
	}
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil
	}

	return fmt.Errorf("store: uniqueness probe: %w", err)
}
