package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucentia/studyforge/chunker"
	"github.com/lucentia/studyforge/core"
	"github.com/lucentia/studyforge/ingest"
	"github.com/lucentia/studyforge/notes"
)

// chunkSummaryRecord is one entry of the chunk_summaries.json artifact.
type chunkSummaryRecord struct {
	Document  string       `json:"document"`
	Index     int          `json:"index"`
	Summary   string       `json:"summary"`
	Insights  []string     `json:"insights"`
	Questions []string     `json:"questions"`
	Quotes    []core.Quote `json:"quotes"`
}

// ingestStage extracts text from every supported input file and writes the
// per-document and combined text artifacts. Unsupported or unreadable files
// are skipped; the stage fails only when no document yields usable text.
func (r *Runner) ingestStage(ctx context.Context, pc *Context) error {
	extractedDir := filepath.Join(pc.ArtifactsDir, "extracted")

	for _, file := range pc.Job.Files {
		text, err := r.extractors.Extract(file.Path)
		if err != nil {
			if errors.Is(err, ingest.ErrUnsupported) {
				pc.log("unsupported media type for ingest", "file", file.Path)
			} else {
				pc.logger.Warn("extraction failed, skipping file", "file", file.Path, "err", err)
			}
			continue
		}

		name := filepath.Base(file.Name)
		if name == "" || name == "." {
			name = filepath.Base(file.Path)
		}
		extractedPath := filepath.Join(extractedDir, stem(name)+".txt")
		if err := pc.writeArtifact(extractedPath, text); err != nil {
			return err
		}

		pc.Documents = append(pc.Documents, Document{
			Name:          name,
			Text:          text,
			ExtractedPath: extractedPath,
		})
	}

	if len(pc.Documents) == 0 {
		return core.ErrNoDocuments
	}

	texts := make([]string, len(pc.Documents))
	for i, doc := range pc.Documents {
		texts[i] = doc.Text
	}
	return pc.writeArtifact(filepath.Join(extractedDir, "combined.txt"), strings.Join(texts, "\n\n"))
}

// transcribeStage is a passthrough reserved for future audio and video
// handling. It must not alter the ingested documents.
func (r *Runner) transcribeStage(ctx context.Context, pc *Context) error {
	return nil
}

// chunkStage splits every document into bounded chunks and writes the
// per-chunk files plus the chunks.json artifact. An empty chunk list is
// accepted, not an error.
func (r *Runner) chunkStage(ctx context.Context, pc *Context) error {
	chunkDir := filepath.Join(pc.ArtifactsDir, "chunks")
	chunks := make([]core.Chunk, 0)

	for _, doc := range pc.Documents {
		for _, ct := range chunker.Split(doc.Name, doc.Text, r.maxChunkWords) {
			path := filepath.Join(chunkDir, fmt.Sprintf("%s-chunk-%03d.txt", stem(doc.Name), ct.Index))
			if err := pc.writeArtifact(path, ct.Text); err != nil {
				return err
			}
			chunks = append(chunks, core.Chunk{
				Document:  ct.Document,
				Index:     ct.Index,
				Text:      ct.Text,
				WordCount: ct.WordCount,
				Path:      path,
			})
		}
	}

	pc.Chunks = chunks
	return pc.writeJSON(filepath.Join(pc.ArtifactsDir, "chunks.json"), chunks)
}

// summariseStage generates a note per chunk and a job-level overview, then
// writes the markdown and JSON summary artifacts. Generation failures are
// replaced per-chunk and per-overview with deterministic fallback content;
// only artifact writes can fail the stage.
func (r *Runner) summariseStage(ctx context.Context, pc *Context) error {
	label := pc.Job.Label
	if label == "" {
		label = filepath.Base(pc.Job.ProjectDir)
	}
	createdAt := time.Now().UTC()

	chunkNotes := make([]core.ChunkNote, 0, len(pc.Chunks))
	aggregatedQuotes := make([]core.AttributedQuote, 0)

	for _, chunk := range pc.Chunks {
		note, err := r.generator.SummariseChunk(ctx, chunk)
		if err != nil {
			var genErr *notes.GenerationError
			if !errors.As(err, &genErr) {
				return err
			}
			pc.log("chunk summarisation fallback", "document", chunk.Document, "index", chunk.Index, "err", err)
			note = notes.FallbackNote(chunk.Text)
		}
		chunkNotes = append(chunkNotes, core.ChunkNote{Chunk: chunk, Note: note})
		aggregatedQuotes = append(aggregatedQuotes, notes.AttributeQuotes(chunk, note.Quotes)...)
	}

	summaries := make([]string, len(chunkNotes))
	for i, cn := range chunkNotes {
		summaries[i] = cn.Note.Summary
	}

	overview, err := r.generator.SynthesiseOverview(ctx, summaries, label)
	if err != nil {
		var genErr *notes.GenerationError
		if !errors.As(err, &genErr) {
			return err
		}
		pc.log("overview synthesis fallback", "err", err)
		overview = notes.FallbackOverview(summaries)
	}

	sourceFiles := make([]core.SourceFile, len(pc.Job.Files))
	copy(sourceFiles, pc.Job.Files)

	if err := pc.writeArtifact(filepath.Join(pc.ArtifactsDir, "summary.md"),
		notes.RenderSummary(label, createdAt, sourceFiles, overview, chunkNotes)); err != nil {
		return err
	}
	if err := pc.writeArtifact(filepath.Join(pc.ArtifactsDir, "quotes.md"),
		notes.RenderQuotes(label, createdAt, aggregatedQuotes)); err != nil {
		return err
	}

	records := make([]chunkSummaryRecord, len(chunkNotes))
	for i, cn := range chunkNotes {
		records[i] = chunkSummaryRecord{
			Document:  cn.Chunk.Document,
			Index:     cn.Chunk.Index,
			Summary:   cn.Note.Summary,
			Insights:  cn.Note.Insights,
			Questions: cn.Note.Questions,
			Quotes:    cn.Note.Quotes,
		}
	}
	if err := pc.writeJSON(filepath.Join(pc.ArtifactsDir, "chunk_summaries.json"), records); err != nil {
		return err
	}
	return pc.writeJSON(filepath.Join(pc.ArtifactsDir, "overview.json"), overview)
}

// exportStage persists the terminal metadata record for the job, both as
// the metadata.json artifact and through the configured recorder.
func (r *Runner) exportStage(ctx context.Context, pc *Context) error {
	documents := make([]core.DocumentRef, len(pc.Documents))
	for i, doc := range pc.Documents {
		documents[i] = core.DocumentRef{
			Name:          doc.Name,
			ExtractedPath: doc.ExtractedPath,
			Fingerprint:   core.Fingerprint(doc.Text),
		}
	}

	record := &core.ExportRecord{
		JobID:      pc.Job.JobID,
		ProjectDir: pc.Job.ProjectDir,
		CreatedAt:  time.Now().UTC(),
		Documents:  documents,
		ChunkCount: len(pc.Chunks),
	}

	if err := pc.writeJSON(filepath.Join(pc.ArtifactsDir, "metadata.json"), record); err != nil {
		return err
	}

	if r.recorder != nil {
		if err := r.recorder.Record(ctx, record); err != nil {
			return fmt.Errorf("recording export metadata: %w", err)
		}
	}
	return nil
}

// stem returns the file name without its extension.
func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
