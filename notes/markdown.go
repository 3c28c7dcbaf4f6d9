package notes

import (
	"fmt"
	"strings"
	"time"

	"github.com/lucentia/studyforge/core"
)

// RenderSummary assembles the study-summary markdown document from the
// overview and per-chunk notes. The front-matter fields and section
// headings are part of the output contract consumed by downstream
// static-site tooling and must not change.
func RenderSummary(projectLabel string, createdAt time.Time, sourceFiles []core.SourceFile, overview core.Overview, chunkNotes []core.ChunkNote) string {
	lines := []string{
		"---",
		fmt.Sprintf("title: %q", projectLabel),
		`cover_image: ""`,
		`author_image: ""`,
		`source_publication: ""`,
		`publication_date: ""`,
		fmt.Sprintf("summary_created_at: %q", createdAt.UTC().Format(time.RFC3339)),
		"source_files:",
	}
	if len(sourceFiles) > 0 {
		for _, file := range sourceFiles {
			lines = append(lines, fmt.Sprintf("  - %q", file.Name))
		}
	} else {
		lines = append(lines, `  - "unknown"`)
	}
	lines = append(lines, "---", "")

	lines = append(lines, "# Overview", overview.Overview, "")

	if len(overview.Themes) > 0 {
		lines = append(lines, "## Key Themes")
		for _, theme := range overview.Themes {
			lines = append(lines, "- "+theme)
		}
		lines = append(lines, "")
	}

	if len(overview.ActionItems) > 0 {
		lines = append(lines, "## Recommended Study Actions")
		for _, action := range overview.ActionItems {
			lines = append(lines, "- "+action)
		}
		lines = append(lines, "")
	}

	lines = append(lines, "## Chunk Summaries")
	for _, cn := range chunkNotes {
		lines = append(lines, fmt.Sprintf("### %s - Chunk %d", cn.Chunk.Document, cn.Chunk.Index+1))
		summary := cn.Note.Summary
		if summary == "" {
			summary = "Summary unavailable."
		}
		lines = append(lines, summary)
		if len(cn.Note.Insights) > 0 {
			lines = append(lines, "#### Key Insights")
			for _, insight := range cn.Note.Insights {
				lines = append(lines, "- "+insight)
			}
		}
		if len(cn.Note.Questions) > 0 {
			lines = append(lines, "#### Follow-up Questions")
			for _, question := range cn.Note.Questions {
				lines = append(lines, "- "+question)
			}
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// RenderQuotes assembles the quotes markdown document from the aggregated,
// attributed quotes. Front-matter and headings are contract, as above.
func RenderQuotes(projectLabel string, createdAt time.Time, quotes []core.AttributedQuote) string {
	lines := []string{
		"---",
		fmt.Sprintf("title: %q", projectLabel+" Quotes"),
		`cover_image: ""`,
		`author_image: ""`,
		fmt.Sprintf("quotes_generated_at: %q", createdAt.UTC().Format(time.RFC3339)),
		"---",
		"",
		"# Suggested Quotes",
		"",
	}

	if len(quotes) == 0 {
		lines = append(lines, "- No notable quotes found.")
		return strings.Join(lines, "\n")
	}

	for _, quote := range quotes {
		lines = append(lines, fmt.Sprintf("- **%s - Chunk %d**: %s", quote.Document, quote.Index+1, quote.Text))
		if quote.Context != "" {
			lines = append(lines, fmt.Sprintf("  - _Context_: %s", quote.Context))
		}
	}
	return strings.Join(lines, "\n")
}
