package notes

import (
	"strings"

	"github.com/lucentia/studyforge/core"
)

const (
	fallbackSentences      = 3
	fallbackLineBudget     = 280
	overviewFallbackBudget = 600
)

// FallbackNote returns the deterministic substitute note used when the
// generation endpoint is unavailable or returned unusable output: the first
// three sentences of the chunk text as summary, with empty lists.
func FallbackNote(text string) core.Note {
	sentences := splitSentences(text)
	if len(sentences) > fallbackSentences {
		sentences = sentences[:fallbackSentences]
	}

	parts := make([]string, 0, len(sentences))
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s != "" {
			parts = append(parts, s)
		}
	}
	summary := strings.Join(parts, " ")

	if summary == "" {
		summary = truncate(firstLine(text), fallbackLineBudget)
	}

	return core.Note{
		Summary:   summary,
		Insights:  []string{},
		Questions: []string{},
		Quotes:    []core.Quote{},
	}
}

// FallbackOverview returns the deterministic substitute overview: the chunk
// summaries joined and truncated to a fixed character budget.
func FallbackOverview(summaries []string) core.Overview {
	combined := strings.Join(summaries, " ")
	return core.Overview{
		Overview:    truncate(combined, overviewFallbackBudget),
		Themes:      []string{},
		ActionItems: []string{},
	}
}

// splitSentences splits text into sentences on '.', '!' or '?' followed by
// whitespace. The terminating punctuation stays with its sentence and the
// separating whitespace is dropped.
func splitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		j := i + 1
		for j < len(runes) && isSpace(runes[j]) {
			j++
		}
		if j > i+1 {
			out = append(out, string(runes[start:i+1]))
			start = j
			i = j - 1
		}
	}

	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}

func truncate(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget])
}
