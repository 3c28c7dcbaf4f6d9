package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lucentia/studyforge/chunker"
	"github.com/lucentia/studyforge/core"
	"github.com/lucentia/studyforge/ingest"
	"github.com/lucentia/studyforge/notes"
	"github.com/lucentia/studyforge/registry"
)

var (
	// ErrRegistryRequired is returned when a registry is not provided.
	ErrRegistryRequired = errors.New("registry required")

	// ErrGeneratorRequired is returned when a note generator is not provided.
	ErrGeneratorRequired = errors.New("note generator required")
)

// Recorder persists the terminal export record produced by the export
// stage. A nil recorder means metadata is only written to the artifact
// directory.
type Recorder interface {
	Record(ctx context.Context, record *core.ExportRecord) error
}

// handlerFunc executes one stage against the shared job-scoped context.
// A nil return means the stage succeeded; any error fails the stage and
// stops the pipeline.
type handlerFunc func(ctx context.Context, pc *Context) error

// stageDetails is the human-readable description recorded on each stage
// snapshot when the stage begins.
var stageDetails = map[core.Stage]string{
	core.StageIngest:     "Ingest source files and normalise text.",
	core.StageTranscribe: "Transcription stage (currently a passthrough for text sources).",
	core.StageChunk:      "Split documents into manageable analysis chunks.",
	core.StageSummarise:  "Generate chunk summaries and quote suggestions.",
	core.StageExport:     "Persist pipeline metadata.",
}

// Runner drives one job at a time through the fixed stage sequence,
// reporting every transition through the registry and halting on the first
// failure. Callers must not dispatch the same job id concurrently; the
// runner assumes a single writer per job.
type Runner struct {
	registry      *registry.Registry
	generator     notes.Generator
	extractors    *ingest.Set
	recorder      Recorder
	maxChunkWords int
	logger        *slog.Logger
	handlers      map[core.Stage]handlerFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithExtractors replaces the default extractor set.
func WithExtractors(set *ingest.Set) Option {
	return func(r *Runner) {
		if set != nil {
			r.extractors = set
		}
	}
}

// WithRecorder sets the export record sink.
func WithRecorder(recorder Recorder) Option {
	return func(r *Runner) {
		r.recorder = recorder
	}
}

// WithMaxChunkWords sets the soft per-chunk word budget.
// Default is chunker.DefaultMaxWords.
func WithMaxChunkWords(maxWords int) Option {
	return func(r *Runner) {
		if maxWords > 0 {
			r.maxChunkWords = maxWords
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a pipeline runner bound to the given registry and note
// generator.
func NewRunner(reg *registry.Registry, generator notes.Generator, opts ...Option) (*Runner, error) {
	if reg == nil {
		return nil, ErrRegistryRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	r := &Runner{
		registry:      reg,
		generator:     generator,
		extractors:    ingest.NewSet(),
		maxChunkWords: chunker.DefaultMaxWords,
		logger:        slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.handlers = map[core.Stage]handlerFunc{
		core.StageIngest:     r.ingestStage,
		core.StageTranscribe: r.transcribeStage,
		core.StageChunk:      r.chunkStage,
		core.StageSummarise:  r.summariseStage,
		core.StageExport:     r.exportStage,
	}
	return r, nil
}

// Run executes the fixed stage sequence exactly once for the given job.
//
// Stages without a bound handler are skipped with no registry updates. A
// stage failure is recorded on its snapshot and in the job's error list,
// flips the job to failed, and stops processing; Run then returns nil
// because the failure has been fully reported through the registry. A
// non-nil return indicates the registry itself rejected a transition.
func (r *Runner) Run(ctx context.Context, job Job) error {
	pc, err := newContext(job, r.logger)
	if err != nil {
		if regErr := r.registry.AppendError(job.JobID, err.Error()); regErr != nil {
			return regErr
		}
		return nil
	}

	if err := r.registry.SetStatus(job.JobID, core.JobProcessing); err != nil {
		return err
	}

	for _, stage := range core.StageOrder {
		handler, ok := r.handlers[stage]
		if !ok {
			continue
		}

		if err := r.registry.BeginStage(job.JobID, stage, stageDetails[stage]); err != nil {
			return err
		}

		if stageErr := handler(ctx, pc); stageErr != nil {
			if err := r.registry.FailStage(job.JobID, stage, stageErr.Error()); err != nil {
				return err
			}
			pc.logger.Error("stage failed", "stage", stage, "err", stageErr)
			return nil
		}

		if err := r.registry.CompleteStage(job.JobID, stage, ""); err != nil {
			return err
		}
		pc.log("stage complete", "stage", stage)
	}

	return r.registry.SetStatus(job.JobID, core.JobCompleted)
}
