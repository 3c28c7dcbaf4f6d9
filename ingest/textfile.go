package ingest

import "os"

// TextExtractor reads plain text and markdown files verbatim.
type TextExtractor struct{}

// Extract returns the file contents as UTF-8 text.
func (e *TextExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
