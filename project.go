package studyforge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Slugify converts a project label into a filesystem-friendly slug:
// lowercase, runs of non-alphanumerics collapsed to single dashes.
// Returns "project" for labels with no usable characters.
func Slugify(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))

	var b strings.Builder
	lastDash := true
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "project"
	}
	return slug
}

// EnsureProjectDir provisions a fresh project directory under baseDir named
// after the slugified label, appending a numeric suffix on collision. The
// source/ and artifacts/ subdirectories are created. Returns the slug and
// the absolute project directory path.
func EnsureProjectDir(baseDir, label string) (string, string, error) {
	root, err := filepath.Abs(baseDir)
	if err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", "", err
	}

	var slug string
	if label != "" {
		slug = Slugify(label)
	} else {
		slug = "project-" + time.Now().UTC().Format("20060102-150405")
	}

	candidate := filepath.Join(root, slug)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			break
		}
		candidate = filepath.Join(root, fmt.Sprintf("%s-%02d", slug, counter+1))
	}

	for _, sub := range []string{"source", "artifacts"} {
		if err := os.MkdirAll(filepath.Join(candidate, sub), 0755); err != nil {
			return "", "", err
		}
	}
	return slug, candidate, nil
}

// Reference is one submitted reference link.
type Reference struct {
	URL        string    `json:"url"`
	CapturedAt time.Time `json:"captured_at"`
}

type referencesPayload struct {
	References  []Reference `json:"references"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// WriteReferences persists submitted reference URLs to
// source/references.json in the project directory. Nothing is written when
// urls is empty.
func WriteReferences(projectDir string, urls []string) ([]Reference, error) {
	refs := make([]Reference, 0, len(urls))
	now := time.Now().UTC()
	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		refs = append(refs, Reference{URL: url, CapturedAt: now})
	}
	if len(refs) == 0 {
		return refs, nil
	}

	payload := referencesPayload{References: refs, GeneratedAt: now}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}

	path := filepath.Join(projectDir, "source", "references.json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, err
	}
	return refs, nil
}
