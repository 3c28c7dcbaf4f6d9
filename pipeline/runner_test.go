package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucentia/studyforge/core"
	"github.com/lucentia/studyforge/notes"
	"github.com/lucentia/studyforge/registry"
)

// fakeGenerator is a notes.Generator with scriptable behaviour.
type fakeGenerator struct {
	mu        sync.Mutex
	chunkErr  error
	overErr   error
	summaries int
}

func (g *fakeGenerator) SummariseChunk(ctx context.Context, chunk core.Chunk) (core.Note, error) {
	g.mu.Lock()
	g.summaries++
	g.mu.Unlock()
	if g.chunkErr != nil {
		return core.Note{}, g.chunkErr
	}
	return core.Note{
		Summary:   fmt.Sprintf("Summary of %s chunk %d.", chunk.Document, chunk.Index),
		Insights:  []string{"an insight"},
		Questions: []string{"a question?"},
		Quotes:    []core.Quote{{Text: "a quotable line", Context: "mid-chunk"}},
	}, nil
}

func (g *fakeGenerator) SynthesiseOverview(ctx context.Context, summaries []string, label string) (core.Overview, error) {
	if g.overErr != nil {
		return core.Overview{}, g.overErr
	}
	return core.Overview{
		Overview:    "An overview of " + label + ".",
		Themes:      []string{"a theme"},
		ActionItems: []string{"an action"},
	}, nil
}

// captureRecorder remembers every export record it receives.
type captureRecorder struct {
	mu      sync.Mutex
	records []*core.ExportRecord
	err     error
}

func (r *captureRecorder) Record(ctx context.Context, record *core.ExportRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	return nil
}

// newTestJob provisions a project directory with the given source files and
// registers the job.
func newTestJob(t *testing.T, reg *registry.Registry, jobID string, sources map[string]string) Job {
	t.Helper()
	projectDir := t.TempDir()
	sourceDir := filepath.Join(projectDir, "source")
	require.NoError(t, os.MkdirAll(sourceDir, 0o755))

	files := make([]core.SourceFile, 0, len(sources))
	for name, content := range sources {
		path := filepath.Join(sourceDir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		files = append(files, core.SourceFile{Name: name, Path: path})
	}

	require.NoError(t, reg.Register(jobID, "project-"+jobID, nil))
	return Job{
		JobID:      jobID,
		ProjectID:  "project-" + jobID,
		Label:      "Test Project",
		ProjectDir: projectDir,
		Files:      files,
	}
}

func requireStageStatus(t *testing.T, reg *registry.Registry, jobID string, want map[core.Stage]core.StageStatus) {
	t.Helper()
	record, err := reg.Get(jobID)
	require.NoError(t, err)
	for stage, status := range want {
		snapshot, ok := record.StageSnapshot(stage)
		require.True(t, ok, "missing snapshot for stage %s", stage)
		assert.Equal(t, status, snapshot.Status, "stage %s", stage)
	}
}

func TestNewRunner_RequiresDependencies(t *testing.T) {
	_, err := NewRunner(nil, &fakeGenerator{})
	require.ErrorIs(t, err, ErrRegistryRequired)

	_, err = NewRunner(registry.New(), nil)
	require.ErrorIs(t, err, ErrGeneratorRequired)
}

func TestRun_HappyPath(t *testing.T) {
	reg := registry.New()
	recorder := &captureRecorder{}
	runner, err := NewRunner(reg, &fakeGenerator{}, WithRecorder(recorder))
	require.NoError(t, err)

	job := newTestJob(t, reg, "job-1", map[string]string{
		"lecture.txt": "First paragraph of the lecture.\n\nSecond paragraph with more detail.",
	})
	require.NoError(t, runner.Run(context.Background(), job))

	record, err := reg.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, core.JobCompleted, record.Status)
	assert.Empty(t, record.Errors)
	requireStageStatus(t, reg, "job-1", map[core.Stage]core.StageStatus{
		core.StageIngest:     core.StageSucceeded,
		core.StageTranscribe: core.StageSucceeded,
		core.StageChunk:      core.StageSucceeded,
		core.StageSummarise:  core.StageSucceeded,
		core.StageExport:     core.StageSucceeded,
	})

	artifactsDir := filepath.Join(job.ProjectDir, "artifacts")
	for _, name := range []string{
		"extracted/lecture.txt",
		"extracted/combined.txt",
		"chunks/lecture-chunk-000.txt",
		"chunks.json",
		"summary.md",
		"quotes.md",
		"chunk_summaries.json",
		"overview.json",
		"metadata.json",
	} {
		_, err := os.Stat(filepath.Join(artifactsDir, name))
		assert.NoError(t, err, "artifact %s", name)
	}

	// chunks.json round-trips to the in-memory chunk list.
	data, err := os.ReadFile(filepath.Join(artifactsDir, "chunks.json"))
	require.NoError(t, err)
	var chunks []core.Chunk
	require.NoError(t, json.Unmarshal(data, &chunks))
	require.Len(t, chunks, 1)
	assert.Equal(t, "lecture.txt", chunks[0].Document)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 10, chunks[0].WordCount)

	summary, err := os.ReadFile(filepath.Join(artifactsDir, "summary.md"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), `title: "Test Project"`)
	assert.Contains(t, string(summary), "Summary of lecture.txt chunk 0.")

	quotes, err := os.ReadFile(filepath.Join(artifactsDir, "quotes.md"))
	require.NoError(t, err)
	assert.Contains(t, string(quotes), "- **lecture.txt - Chunk 1**: a quotable line")

	require.Len(t, recorder.records, 1)
	assert.Equal(t, "job-1", recorder.records[0].JobID)
	assert.Equal(t, 1, recorder.records[0].ChunkCount)
	require.Len(t, recorder.records[0].Documents, 1)
	assert.Equal(t, core.Fingerprint("First paragraph of the lecture.\n\nSecond paragraph with more detail."), recorder.records[0].Documents[0].Fingerprint)
}

func TestRun_GenerationFailureFallsBack(t *testing.T) {
	reg := registry.New()
	generator := &fakeGenerator{
		chunkErr: &notes.GenerationError{Op: "chunk summary", Err: errors.New("connection refused")},
		overErr:  &notes.GenerationError{Op: "overview", Err: errors.New("connection refused")},
	}
	runner, err := NewRunner(reg, generator)
	require.NoError(t, err)

	job := newTestJob(t, reg, "job-1", map[string]string{
		"notes.txt": "A. B. C. D. E.",
	})
	require.NoError(t, runner.Run(context.Background(), job))

	record, err := reg.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, core.JobCompleted, record.Status)
	assert.Empty(t, record.Errors)

	summary, err := os.ReadFile(filepath.Join(job.ProjectDir, "artifacts", "summary.md"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "A. B. C.")
	assert.NotContains(t, string(summary), "A. B. C. D.")

	quotes, err := os.ReadFile(filepath.Join(job.ProjectDir, "artifacts", "quotes.md"))
	require.NoError(t, err)
	assert.Contains(t, string(quotes), "- No notable quotes found.")
}

func TestRun_NonGenerationErrorFailsStage(t *testing.T) {
	reg := registry.New()
	generator := &fakeGenerator{chunkErr: errors.New("programming error")}
	runner, err := NewRunner(reg, generator)
	require.NoError(t, err)

	job := newTestJob(t, reg, "job-1", map[string]string{"notes.txt": "Some text here."})
	require.NoError(t, runner.Run(context.Background(), job))

	record, err := reg.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, core.JobFailed, record.Status)
	assert.Equal(t, []string{"programming error"}, record.Errors)
	requireStageStatus(t, reg, "job-1", map[core.Stage]core.StageStatus{
		core.StageSummarise: core.StageFailed,
		core.StageExport:    core.StageQueued,
	})
}

func TestRun_NoUsableDocuments(t *testing.T) {
	reg := registry.New()
	runner, err := NewRunner(reg, &fakeGenerator{})
	require.NoError(t, err)

	job := newTestJob(t, reg, "job-1", map[string]string{"audio.mp3": "binary"})
	require.NoError(t, runner.Run(context.Background(), job))

	record, err := reg.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, core.JobFailed, record.Status)
	require.Len(t, record.Errors, 1)
	assert.Contains(t, record.Errors[0], "no textual documents")

	// Downstream stages never started.
	requireStageStatus(t, reg, "job-1", map[core.Stage]core.StageStatus{
		core.StageIngest:     core.StageFailed,
		core.StageTranscribe: core.StageQueued,
		core.StageChunk:      core.StageQueued,
		core.StageSummarise:  core.StageQueued,
		core.StageExport:     core.StageQueued,
	})
}

func TestRun_RecorderFailureFailsExport(t *testing.T) {
	reg := registry.New()
	recorder := &captureRecorder{err: errors.New("catalog unavailable")}
	runner, err := NewRunner(reg, &fakeGenerator{}, WithRecorder(recorder))
	require.NoError(t, err)

	job := newTestJob(t, reg, "job-1", map[string]string{"notes.txt": "Some text."})
	require.NoError(t, runner.Run(context.Background(), job))

	record, err := reg.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, core.JobFailed, record.Status)
	requireStageStatus(t, reg, "job-1", map[core.Stage]core.StageStatus{
		core.StageSummarise: core.StageSucceeded,
		core.StageExport:    core.StageFailed,
	})
}

func TestRun_ConcurrentJobs(t *testing.T) {
	reg := registry.New()
	runner, err := NewRunner(reg, &fakeGenerator{})
	require.NoError(t, err)

	jobs := []Job{
		newTestJob(t, reg, "job-a", map[string]string{"a.txt": "Alpha document text."}),
		newTestJob(t, reg, "job-b", map[string]string{"b.txt": "Beta document text."}),
	}

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			assert.NoError(t, runner.Run(context.Background(), job))
		}(job)
	}
	wg.Wait()

	for _, job := range jobs {
		record, err := reg.Get(job.JobID)
		require.NoError(t, err)
		assert.Equal(t, core.JobCompleted, record.Status)
	}
}

func TestRun_ChunkBudgetRespected(t *testing.T) {
	reg := registry.New()
	runner, err := NewRunner(reg, &fakeGenerator{}, WithMaxChunkWords(4))
	require.NoError(t, err)

	job := newTestJob(t, reg, "job-1", map[string]string{
		"notes.txt": "one two three\n\nfour five six\n\nseven eight",
	})
	require.NoError(t, runner.Run(context.Background(), job))

	data, err := os.ReadFile(filepath.Join(job.ProjectDir, "artifacts", "chunks.json"))
	require.NoError(t, err)
	var chunks []core.Chunk
	require.NoError(t, json.Unmarshal(data, &chunks))
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.LessOrEqual(t, chunk.WordCount, 4)
	}
}
