// Copyright 2025 Lucentia Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package studyforge

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/lucentia/studyforge/catalog"
	"github.com/lucentia/studyforge/core"
	"github.com/lucentia/studyforge/ingest"
	"github.com/lucentia/studyforge/notes"
	"github.com/lucentia/studyforge/pipeline"
	"github.com/lucentia/studyforge/registry"
)

// Service wires the registry, pipeline runner, export catalog and dispatch
// pool into one facade. One Service instance is created at process start;
// there is no teardown beyond Close at process exit.
type Service struct {
	registry *registry.Registry
	runner   *pipeline.Runner
	catalog  *catalog.Catalog
	pool     *ants.Pool
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	notesConfig   *notes.Config
	generator     notes.Generator
	extractors    *ingest.Set
	catalogPath   string
	catalogMemory bool
	poolSize      int
	maxChunkWords int
}

// WithNotesConfig sets the generation endpoint configuration.
func WithNotesConfig(cfg *notes.Config) ServiceOption {
	return func(o *serviceOptions) {
		if cfg != nil {
			o.notesConfig = cfg
		}
	}
}

// WithGenerator replaces the generation gateway, bypassing notes config.
// Used by tests and embedders that bring their own Generator.
func WithGenerator(generator notes.Generator) ServiceOption {
	return func(o *serviceOptions) {
		o.generator = generator
	}
}

// WithExtractors replaces the default ingest extractor set.
func WithExtractors(set *ingest.Set) ServiceOption {
	return func(o *serviceOptions) {
		o.extractors = set
	}
}

// WithCatalogPath enables the persistent export catalog at the given
// directory. Empty path leaves the catalog disabled.
func WithCatalogPath(path string) ServiceOption {
	return func(o *serviceOptions) {
		o.catalogPath = path
	}
}

// WithInMemoryCatalog enables an in-memory export catalog. Used by tests.
func WithInMemoryCatalog() ServiceOption {
	return func(o *serviceOptions) {
		o.catalogMemory = true
	}
}

// WithPoolSize sets the job dispatch pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) ServiceOption {
	return func(o *serviceOptions) {
		if size > 0 {
			o.poolSize = size
		}
	}
}

// WithMaxChunkWords sets the soft per-chunk word budget.
func WithMaxChunkWords(maxWords int) ServiceOption {
	return func(o *serviceOptions) {
		if maxWords > 0 {
			o.maxChunkWords = maxWords
		}
	}
}

// NewService creates a fully wired Service.
func NewService(opts ...ServiceOption) (*Service, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	options := &serviceOptions{
		notesConfig: notes.DefaultConfig(),
		poolSize:    poolSize,
	}
	for _, opt := range opts {
		opt(options)
	}

	generator := options.generator
	if generator == nil {
		var err error
		generator, err = notes.NewGateway(options.notesConfig)
		if err != nil {
			return nil, err
		}
	}

	var cat *catalog.Catalog
	if options.catalogMemory || options.catalogPath != "" {
		var err error
		cat, err = catalog.Open(options.catalogPath, options.catalogMemory)
		if err != nil {
			return nil, err
		}
	}

	reg := registry.New()

	runnerOpts := []pipeline.Option{}
	if options.extractors != nil {
		runnerOpts = append(runnerOpts, pipeline.WithExtractors(options.extractors))
	}
	if options.maxChunkWords > 0 {
		runnerOpts = append(runnerOpts, pipeline.WithMaxChunkWords(options.maxChunkWords))
	}
	if cat != nil {
		runnerOpts = append(runnerOpts, pipeline.WithRecorder(cat))
	}

	runner, err := pipeline.NewRunner(reg, generator, runnerOpts...)
	if err != nil {
		if cat != nil {
			cat.Close()
		}
		return nil, err
	}

	pool, err := ants.NewPool(options.poolSize)
	if err != nil {
		if cat != nil {
			cat.Close()
		}
		return nil, err
	}

	return &Service{
		registry: reg,
		runner:   runner,
		catalog:  cat,
		pool:     pool,
		logger:   slog.Default().With("component", "service"),
	}, nil
}

// Registry returns the job registry, the source of truth for progress
// queries.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// Catalog returns the export catalog, or nil when disabled.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Submission describes one job's raw inputs.
type Submission struct {
	// Label is the human-readable project label.
	Label string
	// ProjectDir is the provisioned project directory (see EnsureProjectDir).
	ProjectDir string
	// Files are the saved input files to ingest.
	Files []core.SourceFile
	// ReferenceURLs are reference links captured alongside the sources.
	ReferenceURLs []string
}

// Submit registers a job for the submission and dispatches its pipeline on
// the worker pool. Each job id is dispatched exactly once; distinct jobs
// run fully in parallel. The returned job id can be used against the
// registry immediately.
func (s *Service) Submit(ctx context.Context, sub Submission) (string, error) {
	jobID := uuid.NewString()
	projectID := uuid.NewString()

	refs, err := WriteReferences(sub.ProjectDir, sub.ReferenceURLs)
	if err != nil {
		return "", fmt.Errorf("writing references: %w", err)
	}

	metadata := map[string]any{
		"project_label": sub.Label,
		"project_dir":   sub.ProjectDir,
		"saved_files":   sub.Files,
		"references":    refs,
		"submitted_at":  time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.registry.Register(jobID, projectID, metadata); err != nil {
		return "", err
	}

	job := pipeline.Job{
		JobID:      jobID,
		ProjectID:  projectID,
		Label:      sub.Label,
		ProjectDir: sub.ProjectDir,
		Files:      sub.Files,
	}

	s.logger.Info("queueing job", "job_id", jobID, "project_id", projectID, "files", len(sub.Files))

	if err := s.pool.Submit(func() {
		s.execute(job)
	}); err != nil {
		if regErr := s.registry.AppendError(jobID, err.Error()); regErr != nil {
			s.logger.Error("failed to record dispatch error", "job_id", jobID, "err", regErr)
		}
		return jobID, err
	}
	return jobID, nil
}

// Wait blocks until the job reaches a terminal status or the context is
// cancelled, and returns the final record.
func (s *Service) Wait(ctx context.Context, jobID string) (*core.JobRecord, error) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		record, err := s.registry.Get(jobID)
		if err != nil {
			return nil, err
		}
		if record.Status.Terminal() {
			return record, nil
		}

		select {
		case <-ctx.Done():
			return record, ctx.Err()
		case <-ticker.C:
		}
	}
}

// execute runs one job on a pool worker. Panics escaping a stage handler
// are recorded through the registry and must not take down workers running
// other jobs.
func (s *Service) execute(job pipeline.Job) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("pipeline execution panicked", "job_id", job.JobID, "panic", rec)
			if err := s.registry.AppendError(job.JobID, fmt.Sprintf("pipeline execution failed: %v", rec)); err != nil {
				s.logger.Error("failed to record panic", "job_id", job.JobID, "err", err)
			}
		}
	}()

	if err := s.runner.Run(context.Background(), job); err != nil {
		s.logger.Error("pipeline execution failed", "job_id", job.JobID, "err", err)
		if regErr := s.registry.AppendError(job.JobID, err.Error()); regErr != nil {
			s.logger.Error("failed to record pipeline error", "job_id", job.JobID, "err", regErr)
		}
	}
}

// Close releases the dispatch pool and closes the catalog. In-flight jobs
// are not interrupted; callers should drain first via Wait.
func (s *Service) Close() error {
	s.pool.Release()
	if s.catalog != nil {
		return s.catalog.Close()
	}
	return nil
}
