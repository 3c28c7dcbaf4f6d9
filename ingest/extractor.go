package ingest

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupported indicates no extractor is registered for a file's type.
// Callers treat it as a skip, not a failure.
var ErrUnsupported = errors.New("unsupported media type for ingest")

// Extractor turns one source file into normalised text.
type Extractor interface {
	// Extract reads the file at path and returns its text content.
	// Returns ErrUnsupported when the file cannot be handled by this
	// extractor.
	Extract(path string) (string, error)
}

// Set selects an extractor by file extension.
type Set struct {
	byExt map[string]Extractor
}

// NewSet creates a selector with the default extractors registered:
// plain text and markdown are read raw, PDFs go through pdftotext.
func NewSet() *Set {
	s := &Set{byExt: make(map[string]Extractor)}
	text := &TextExtractor{}
	s.Register(".txt", text)
	s.Register(".md", text)
	s.Register(".markdown", text)
	s.Register(".pdf", &PDFExtractor{})
	return s
}

// Register binds an extractor to a file extension (including the dot).
// Registering replaces any previous binding for the extension.
func (s *Set) Register(ext string, extractor Extractor) {
	s.byExt[strings.ToLower(ext)] = extractor
}

// Extract selects an extractor for path by extension and runs it.
// Returns ErrUnsupported when no extractor is registered for the extension.
func (s *Set) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	extractor, ok := s.byExt[ext]
	if !ok {
		return "", ErrUnsupported
	}
	return extractor.Extract(path)
}
