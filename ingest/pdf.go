package ingest

import (
	"bytes"
	"fmt"
	"os/exec"
)

// defaultPDFTool is the external full-text extraction binary.
const defaultPDFTool = "pdftotext"

// PDFExtractor extracts full text from PDF files by shelling out to
// pdftotext (poppler-utils).
type PDFExtractor struct {
	// Binary overrides the pdftotext executable path. Empty means the
	// default is resolved from PATH.
	Binary string
}

// Extract runs the extraction tool and returns its stdout as text.
func (e *PDFExtractor) Extract(path string) (string, error) {
	binary := e.Binary
	if binary == "" {
		binary = defaultPDFTool
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(binary, "-layout", path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdf extraction failed for %s: %w: %s", path, err, stderr.String())
	}
	return stdout.String(), nil
}
