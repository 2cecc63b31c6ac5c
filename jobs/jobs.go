// Package jobs runs batch route computations asynchronously.
//
// A Manager owns a bounded worker pool; Submit enqueues a batch request
// and immediately returns a job identifier, and Snapshot/Metrics expose
// progress without blocking the workers. Results of finished jobs stay in
// memory until the process exits.
package jobs

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/sirupsen/logrus"

	"github.com/routecore/routecore/routing"
)

// Status is the lifecycle state of one job.
type Status string

// Job lifecycle states.
const (
	StatusQueued   Status = "queued"
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
)

// Job is the externally visible state of one submitted batch.
type Job struct {
	ID           string              `json:"job_id"`
	Status       Status              `json:"status"`
	TotalQueries int                 `json:"total_queries"`
	CreatedAt    time.Time           `json:"created_at"`
	StartedAt    *time.Time          `json:"started_at,omitempty"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
	Error        string              `json:"error,omitempty"`
	Result       []routing.BatchItem `json:"result,omitempty"`
}

// Metrics is a point-in-time view of the manager.
type Metrics struct {
	QueueLength  int      `json:"queue_length"`
	Running      int      `json:"running"`
	Finished     int      `json:"finished"`
	Failed       int      `json:"failed"`
	Workers      int      `json:"workers"`
	AvgJobTimeMS *float64 `json:"avg_job_time_ms,omitempty"`
	CPUPercent   *float64 `json:"cpu_percent,omitempty"`
}

// Manager executes submitted batches on a fixed-size ants pool.
type Manager struct {
	svc  *routing.Service
	pool *ants.Pool
	log  logrus.FieldLogger

	mu        sync.Mutex
	jobs      map[string]*Job
	durations []float64 // ms per finished job
}

// DefaultWorkers sizes the pool from the host CPU count, clamped to
// [2, 32].
func DefaultWorkers() int {
	n := runtime.NumCPU() * 2
	if n < 2 {
		n = 2
	}
	if n > 32 {
		n = 32
	}

	return n
}

// NewManager starts a manager with the given pool size; workers<=0 uses
// DefaultWorkers.
func NewManager(svc *routing.Service, workers int, logger logrus.FieldLogger) (*Manager, error) {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("jobs: pool init: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Manager{
		svc:  svc,
		pool: pool,
		log:  logger.WithField("module", "jobs"),
		jobs: make(map[string]*Job),
	}, nil
}

// Close releases the worker pool. In-flight jobs finish; queued tasks are
// dropped by the pool.
func (m *Manager) Close() {
	m.pool.Release()
}

// Submit enqueues one batch request and returns the queued job snapshot.
func (m *Manager) Submit(req routing.BatchRequest) (Job, error) {
	job := &Job{
		ID:           newJobID(),
		Status:       StatusQueued,
		TotalQueries: len(req.Queries),
		CreatedAt:    time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	if err := m.pool.Submit(func() { m.run(job.ID, req) }); err != nil {
		m.mu.Lock()
		now := time.Now()
		job.Status = StatusFailed
		job.Error = err.Error()
		job.FinishedAt = &now
		snap := cloneJob(job)
		m.mu.Unlock()

		return snap, fmt.Errorf("jobs: submit: %w", err)
	}

	m.log.WithFields(logrus.Fields{
		"job":     job.ID,
		"queries": job.TotalQueries,
	}).Debug("job queued")

	return m.snapshotLocked(job.ID), nil
}

// Snapshot returns a copy of one job's state.
func (m *Manager) Snapshot(id string) (Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}

	return cloneJob(job), true
}

// Metrics reports queue depth, completion counters, mean job duration and
// current host CPU load. The CPU probe is best effort; on failure the
// field is simply omitted.
func (m *Manager) Metrics() Metrics {
	m.mu.Lock()
	var metrics Metrics
	metrics.Workers = m.pool.Cap()
	for _, job := range m.jobs {
		switch job.Status {
		case StatusQueued:
			metrics.QueueLength++
		case StatusRunning:
			metrics.Running++
		case StatusFinished:
			metrics.Finished++
		case StatusFailed:
			metrics.Failed++
		}
	}
	if len(m.durations) > 0 {
		var sum float64
		for _, d := range m.durations {
			sum += d
		}
		avg := sum / float64(len(m.durations))
		metrics.AvgJobTimeMS = &avg
	}
	m.mu.Unlock()

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		metrics.CPUPercent = &percents[0]
	}

	return metrics
}

// run executes one job on a pool worker.
func (m *Manager) run(id string, req routing.BatchRequest) {
	m.mu.Lock()
	job, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()

		return
	}
	started := time.Now()
	job.Status = StatusRunning
	job.StartedAt = &started
	m.mu.Unlock()

	items, err := m.svc.FindRoutesBatch(req)

	m.mu.Lock()
	finished := time.Now()
	job.FinishedAt = &finished
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
	} else {
		job.Status = StatusFinished
		job.Result = items
		m.durations = append(m.durations, float64(finished.Sub(started))/float64(time.Millisecond))
	}
	m.mu.Unlock()

	if err != nil {
		m.log.WithField("job", id).WithError(err).Warn("job failed")

		return
	}
	m.log.WithFields(logrus.Fields{
		"job": id,
		"ms":  finished.Sub(started).Milliseconds(),
	}).Debug("job finished")
}

// snapshotLocked re-reads a job under the lock; used right after insert,
// when the worker may already have started it.
func (m *Manager) snapshotLocked(id string) Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	return cloneJob(m.jobs[id])
}

// cloneJob copies a job so callers never share the manager's slices.
func cloneJob(job *Job) Job {
	snap := *job
	if job.Result != nil {
		snap.Result = make([]routing.BatchItem, len(job.Result))
		copy(snap.Result, job.Result)
	}

	return snap
}

// newJobID returns a 24-hex-character random identifier.
func newJobID() string {
	var buf [12]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("j%x", time.Now().UnixNano())
	}

	return hex.EncodeToString(buf[:])
}
