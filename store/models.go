// Persisted record types.
//
// All records use bolthold auto-increment keys and JSON encoding; index
// tags cover the fields the history and stats endpoints filter on.

package store

import (
	"github.com/routecore/routecore/profile"
	"github.com/routecore/routecore/scenario"
)

// QueryRecord is one logged shortest-path query, single or batch member.
type QueryRecord struct {
	ID         uint64  `json:"id" boltholdKey:"ID"`
	SourceNode int     `json:"source_node"`
	TargetNode int     `json:"target_node"`
	Algorithm  string  `json:"algorithm" boltholdIndex:"Algorithm"`
	Profile    string  `json:"profile,omitempty"`
	ScenarioID *uint64 `json:"scenario_id,omitempty"`

	// TotalWeight is nil for failed or unreachable-sentinel-free logging;
	// set only on success, mirroring the upstream schema.
	TotalWeight *float64 `json:"total_weight,omitempty"`

	ExecutionMS  float64 `json:"execution_time_ms"`
	Success      bool    `json:"success" boltholdIndex:"Success"`
	ErrorMessage string  `json:"error_message,omitempty"`
	IsBatch      bool    `json:"is_batch" boltholdIndex:"IsBatch"`
	BatchGroup   string  `json:"batch_group,omitempty" boltholdIndex:"BatchGroup"`
	CreatedAt    int64   `json:"created_at" boltholdIndex:"CreatedAt"`
}

// ScenarioRecord persists a scenario with its modifications inline.
// Embedding the modification list keeps reads single-fetch; scenario
// bodies are small.
type ScenarioRecord struct {
	ID            uint64                  `json:"id" boltholdKey:"ID"`
	Name          string                  `json:"name" boltholdIndex:"Name"`
	Description   string                  `json:"description,omitempty"`
	IsActive      bool                    `json:"is_active" boltholdIndex:"IsActive"`
	Modifications []scenario.Modification `json:"modifications"`
	CreatedAt     int64                   `json:"created_at"`
}

// Scenario converts the record into its domain shape.
func (r ScenarioRecord) Scenario() scenario.Scenario {
	return scenario.Scenario{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		IsActive:      r.IsActive,
		Modifications: r.Modifications,
	}
}

// ProfileRecord persists an optimization profile.
type ProfileRecord struct {
	ID             uint64  `json:"id" boltholdKey:"ID"`
	Name           string  `json:"name" boltholdIndex:"Name"`
	Description    string  `json:"description,omitempty"`
	WeightTime     float64 `json:"weight_time"`
	WeightDistance float64 `json:"weight_distance"`
	WeightCost     float64 `json:"weight_cost"`
	CreatedAt      int64   `json:"created_at"`
}

// Profile converts the record into its domain shape.
func (r ProfileRecord) Profile() profile.Profile {
	return profile.Profile{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		WeightTime:     r.WeightTime,
		WeightDistance: r.WeightDistance,
		WeightCost:     r.WeightCost,
	}
}

// EdgeMetadataRecord persists per-arc criteria values from CSV import.
type EdgeMetadataRecord struct {
	ID   uint64               `json:"id" boltholdKey:"ID"`
	Meta profile.EdgeMetadata `json:"meta"`
}

// FixLogRecord persists one automatic quality-fix run.
type FixLogRecord struct {
	ID          uint64 `json:"id" boltholdKey:"ID"`
	FixType     string `json:"fix_type"`
	Description string `json:"description"`
	Details     string `json:"details"`
	CreatedAt   int64  `json:"created_at"`
}

// UserRecord persists an API account. PasswordHash is a bcrypt hash; the
// store encodes records as JSON, so the field needs a real name here and
// the HTTP layer maps records onto a view type that omits it.
type UserRecord struct {
	ID           uint64 `json:"id" boltholdKey:"ID"`
	Email        string `json:"email" boltholdIndex:"Email"`
	PasswordHash string `json:"password_hash"`
	IsActive     bool   `json:"is_active"`
	IsAdmin      bool   `json:"is_admin"`
	CreatedAt    int64  `json:"created_at"`
}
