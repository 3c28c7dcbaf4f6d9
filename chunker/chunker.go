package chunker

import "strings"

// DefaultMaxWords is the soft per-chunk word budget.
const DefaultMaxWords = 400

// Split turns a document's normalised text into bounded-size chunks of
// whole paragraphs. Paragraphs are delimited by blank lines; empty
// paragraphs are discarded.
//
// The budget is a soft cap with append-always-after-check semantics: before
// adding a paragraph, if the buffer is non-empty and would overflow
// maxWords, the buffer is flushed as one chunk; the paragraph is then
// appended regardless, so a single oversized paragraph is never split. The
// result is deterministic for identical input.
//
// Chunk indices are contiguous per document starting at 0. Text, word count
// and file path on the returned chunks are filled in; documents consisting
// only of blank text yield an empty slice, not an error.
func Split(document, text string, maxWords int) []ChunkText {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	var chunks []ChunkText
	var buffer []string
	wordCount := 0

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		chunks = append(chunks, ChunkText{
			Document:  document,
			Index:     len(chunks),
			Text:      strings.TrimSpace(strings.Join(buffer, "\n\n")),
			WordCount: wordCount,
		})
		buffer = nil
		wordCount = 0
	}

	for _, paragraph := range paragraphs(text) {
		words := len(strings.Fields(paragraph))
		if wordCount+words > maxWords && len(buffer) > 0 {
			flush()
		}
		buffer = append(buffer, paragraph)
		wordCount += words
	}
	flush()

	return chunks
}

// ChunkText is a produced chunk before it has been written to disk.
type ChunkText struct {
	Document  string
	Index     int
	Text      string
	WordCount int
}

// paragraphs splits text on blank-line boundaries, trimming each paragraph
// and dropping empty ones.
func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n\n")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
