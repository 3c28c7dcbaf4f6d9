package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lucentia/studyforge/core"
)

// Job describes one submission handed to the runner. The caller constructs
// it with the raw inputs saved at submission time.
type Job struct {
	JobID      string
	ProjectID  string
	Label      string
	ProjectDir string
	Files      []core.SourceFile
}

// Document is one ingested source document held in the job-scoped context.
type Document struct {
	Name          string
	Text          string
	ExtractedPath string
}

// Context is the transient working state for a single run. It is never
// shared across jobs and is discarded when the run ends; all durable state
// lives in the registry and the artifact files.
type Context struct {
	Job          Job
	ArtifactsDir string
	Documents    []Document
	Chunks       []core.Chunk

	logger *slog.Logger
}

func newContext(job Job, logger *slog.Logger) (*Context, error) {
	projectDir, err := filepath.Abs(job.ProjectDir)
	if err != nil {
		return nil, fmt.Errorf("resolving project dir: %w", err)
	}
	job.ProjectDir = projectDir

	artifactsDir := filepath.Join(projectDir, "artifacts")
	if err := os.MkdirAll(artifactsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating artifacts dir: %w", err)
	}

	return &Context{
		Job:          job,
		ArtifactsDir: artifactsDir,
		logger:       logger.With("job_id", job.JobID, "project_dir", projectDir),
	}, nil
}

func (c *Context) log(msg string, args ...any) {
	c.logger.Info(msg, args...)
}

// writeArtifact writes one artifact file, creating parent directories as
// needed. Write failures are hard local faults and fail the calling stage.
func (c *Context) writeArtifact(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating artifact dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing artifact %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON writes v as an indented JSON artifact.
func (c *Context) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding artifact %s: %w", filepath.Base(path), err)
	}
	return c.writeArtifact(path, string(data))
}
