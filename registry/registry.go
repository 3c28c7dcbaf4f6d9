package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/lucentia/studyforge/core"
)

// Registry is the concurrency-safe store of job records and their per-stage
// status. It is the single source of truth for progress queries.
//
// All mutations are serialized under one lock; reads hand out deep copies so
// callers never observe registry-internal state mutating under them. Records
// are never deleted during the process lifetime and are not persisted across
// restarts.
type Registry struct {
	mu     sync.RWMutex
	jobs   map[string]*core.JobRecord
	logger *slog.Logger
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		jobs:   make(map[string]*core.JobRecord),
		logger: slog.Default().With("component", "registry"),
	}
}

// Register creates a job record with status queued and one queued stage
// snapshot per stage, in canonical stage order.
// Returns core.ErrDuplicateJob if the job id already exists.
func (r *Registry) Register(jobID, projectID string, metadata map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[jobID]; ok {
		return fmt.Errorf("%w: %s", core.ErrDuplicateJob, jobID)
	}

	stages := make([]core.StageSnapshot, len(core.StageOrder))
	for i, stage := range core.StageOrder {
		stages[i] = core.StageSnapshot{Stage: stage, Status: core.StageQueued}
	}

	r.jobs[jobID] = &core.JobRecord{
		JobID:     jobID,
		ProjectID: projectID,
		CreatedAt: time.Now().UTC(),
		Status:    core.JobQueued,
		Metadata:  metadata,
		Stages:    stages,
		Errors:    []string{},
	}
	return nil
}

// Get returns a copy of the named job record.
// Returns core.ErrJobNotFound if the job does not exist.
func (r *Registry) Get(jobID string) (*core.JobRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrJobNotFound, jobID)
	}
	return record.Clone(), nil
}

// List returns copies of all job records ordered by creation time, newest
// first.
func (r *Registry) List() []*core.JobRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*core.JobRecord, 0, len(r.jobs))
	for _, record := range r.jobs {
		records = append(records, record.Clone())
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records
}

// BeginStage marks the named stage running and the job processing.
// The stage's detail is replaced, its start time set and any previous finish
// time cleared. Fails with core.ErrJobTerminal if the job already completed
// or failed.
func (r *Registry) BeginStage(jobID string, stage core.Stage, detail string) error {
	now := time.Now().UTC()
	return r.updateStage(jobID, stage, func(s *core.StageSnapshot) {
		s.Status = core.StageRunning
		s.Detail = detail
		s.StartedAt = &now
		s.FinishedAt = nil
	}, func(record *core.JobRecord) {
		record.Status = core.JobProcessing
	})
}

// CompleteStage marks the named stage succeeded. A non-empty detail replaces
// the stage's detail text.
func (r *Registry) CompleteStage(jobID string, stage core.Stage, detail string) error {
	now := time.Now().UTC()
	return r.updateStage(jobID, stage, func(s *core.StageSnapshot) {
		s.Status = core.StageSucceeded
		if detail != "" {
			s.Detail = detail
		}
		s.FinishedAt = &now
	}, nil)
}

// FailStage marks the named stage failed, appends the message to the job's
// error list and flips the job to its terminal failed status.
func (r *Registry) FailStage(jobID string, stage core.Stage, message string) error {
	now := time.Now().UTC()
	return r.updateStage(jobID, stage, func(s *core.StageSnapshot) {
		s.Status = core.StageFailed
		s.Detail = message
		s.FinishedAt = &now
	}, func(record *core.JobRecord) {
		record.Errors = append(record.Errors, message)
		record.Status = core.JobFailed
	})
}

// SetStatus transitions the job status directly. Used by the runner to mark
// a job completed once every stage has succeeded.
func (r *Registry) SetStatus(jobID string, status core.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrJobNotFound, jobID)
	}
	if record.Status.Terminal() {
		return fmt.Errorf("%w: %s", core.ErrJobTerminal, jobID)
	}
	record.Status = status
	return nil
}

// AppendError records an out-of-stage failure (for example a panic escaping
// a stage handler) and forces the job into its terminal failed status.
func (r *Registry) AppendError(jobID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrJobNotFound, jobID)
	}
	record.Errors = append(record.Errors, message)
	record.Status = core.JobFailed
	return nil
}

// updateStage applies mutate to the named stage snapshot and, when non-nil,
// also to the owning record, under a single lock acquisition.
func (r *Registry) updateStage(jobID string, stage core.Stage, mutate func(*core.StageSnapshot), mutateRecord func(*core.JobRecord)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrJobNotFound, jobID)
	}
	if record.Status.Terminal() {
		return fmt.Errorf("%w: %s", core.ErrJobTerminal, jobID)
	}

	var snapshot *core.StageSnapshot
	for i := range record.Stages {
		if record.Stages[i].Stage == stage {
			snapshot = &record.Stages[i]
			break
		}
	}
	if snapshot == nil {
		return fmt.Errorf("%w: %s for job %s", core.ErrUnknownStage, stage, jobID)
	}

	mutate(snapshot)
	if mutateRecord != nil {
		mutateRecord(record)
	}
	return nil
}
