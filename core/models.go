package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Stage identifies one step of the fixed processing sequence.
type Stage string

const (
	StageIngest     Stage = "ingest"
	StageTranscribe Stage = "transcribe"
	StageChunk      Stage = "chunk"
	StageSummarise  Stage = "summarise"
	StageExport     Stage = "export"
)

// StageOrder is the canonical execution order. It is fixed at compile time;
// every JobRecord carries exactly one snapshot per stage, in this order.
var StageOrder = []Stage{
	StageIngest,
	StageTranscribe,
	StageChunk,
	StageSummarise,
	StageExport,
}

// StageStatus describes the lifecycle of a single stage within a job.
type StageStatus string

const (
	StageQueued    StageStatus = "queued"
	StageRunning   StageStatus = "running"
	StageSucceeded StageStatus = "succeeded"
	StageFailed    StageStatus = "failed"
)

// JobStatus describes the overall lifecycle of a job.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether the status permits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// StageSnapshot records the observed state of one stage of one job.
// Snapshots are created queued at registration time and mutated only by the
// registry on behalf of the pipeline runner.
type StageSnapshot struct {
	Stage      Stage       `json:"stage"`
	Status     StageStatus `json:"status"`
	Detail     string      `json:"detail,omitempty"`
	StartedAt  *time.Time  `json:"started_at,omitempty"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

// JobRecord tracks one end-to-end submission through all stages.
type JobRecord struct {
	JobID     string          `json:"job_id"`
	ProjectID string          `json:"project_id"`
	CreatedAt time.Time       `json:"created_at"`
	Status    JobStatus       `json:"status"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	Stages    []StageSnapshot `json:"stages"`
	Errors    []string        `json:"errors"`
}

// Clone returns an independent deep copy of the record. The registry hands
// out clones so callers can never mutate registry-internal state, and never
// observe a half-updated snapshot.
func (r *JobRecord) Clone() *JobRecord {
	cp := *r
	cp.Stages = make([]StageSnapshot, len(r.Stages))
	for i, s := range r.Stages {
		cp.Stages[i] = s
		if s.StartedAt != nil {
			t := *s.StartedAt
			cp.Stages[i].StartedAt = &t
		}
		if s.FinishedAt != nil {
			t := *s.FinishedAt
			cp.Stages[i].FinishedAt = &t
		}
	}
	cp.Errors = append([]string(nil), r.Errors...)
	if r.Metadata != nil {
		cp.Metadata = make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

// StageSnapshot returns a copy of the snapshot for the named stage.
func (r *JobRecord) StageSnapshot(stage Stage) (StageSnapshot, bool) {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s, true
		}
	}
	return StageSnapshot{}, false
}

// SourceFile is one user-submitted input file.
type SourceFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Chunk is a bounded-size contiguous slice of a document's normalised text.
// Chunks are immutable once produced; Index is contiguous per document
// starting at 0. The JSON field names are part of the chunks.json contract.
type Chunk struct {
	Document  string `json:"document"`
	Index     int    `json:"index"`
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
	Path      string `json:"path"`
}

// Quote is a notable excerpt with optional context explaining its
// significance.
type Quote struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}

// AttributedQuote is a quote traced back to the chunk it came from.
type AttributedQuote struct {
	Document string `json:"document"`
	Index    int    `json:"index"`
	Text     string `json:"text"`
	Context  string `json:"context"`
}

// Note holds the structured study notes generated for a single chunk.
type Note struct {
	Summary   string   `json:"summary"`
	Insights  []string `json:"insights"`
	Questions []string `json:"questions"`
	Quotes    []Quote  `json:"quotes"`
}

// ChunkNote pairs a chunk with its generated note.
type ChunkNote struct {
	Chunk Chunk
	Note  Note
}

// Overview is the job-level synthesis derived from all chunk notes.
type Overview struct {
	Overview    string   `json:"overview"`
	Themes      []string `json:"themes"`
	ActionItems []string `json:"action_items"`
}

// DocumentRef describes one ingested document in the export metadata.
type DocumentRef struct {
	Name          string `json:"name"`
	ExtractedPath string `json:"extracted_path"`
	Fingerprint   string `json:"fingerprint"`
}

// ExportRecord is the terminal metadata persisted by the export stage.
// Field names are part of the metadata.json contract.
type ExportRecord struct {
	JobID      string        `json:"job_id"`
	ProjectDir string        `json:"project_dir"`
	CreatedAt  time.Time     `json:"created_at"`
	Documents  []DocumentRef `json:"documents"`
	ChunkCount int           `json:"chunk_count"`
}

// Fingerprint returns a deterministic content hash for document text using
// BLAKE2b. Identical content always produces an identical fingerprint.
func Fingerprint(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
