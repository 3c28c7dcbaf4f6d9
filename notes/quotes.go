package notes

import (
	"encoding/json"
	"strings"

	"github.com/lucentia/studyforge/core"
)

// quoteObject captures the field-name variants seen in generation output.
// Upstream models are inconsistent about quote shapes, so text falls back
// to "quote" and context falls back to "explanation" then "source".
type quoteObject struct {
	Text        string `json:"text"`
	Quote       string `json:"quote"`
	Context     string `json:"context"`
	Explanation string `json:"explanation"`
	Source      string `json:"source"`
}

// NormalizeQuotes converts raw quote payloads into core.Quote values.
// Each element may be a bare string or an object; quotes with empty text
// after trimming are discarded. Always returns a non-nil slice.
func NormalizeQuotes(raw []json.RawMessage) []core.Quote {
	quotes := make([]core.Quote, 0, len(raw))

	for _, element := range raw {
		var text, context string

		var s string
		if err := json.Unmarshal(element, &s); err == nil {
			text = s
		} else {
			var obj quoteObject
			if err := json.Unmarshal(element, &obj); err != nil {
				continue
			}
			text = firstNonEmpty(obj.Text, obj.Quote)
			context = firstNonEmpty(obj.Context, obj.Explanation, obj.Source)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		quotes = append(quotes, core.Quote{Text: text, Context: strings.TrimSpace(context)})
	}

	return quotes
}

// AttributeQuotes traces a chunk's quotes back to their source document and
// chunk index for the aggregated quotes document.
func AttributeQuotes(chunk core.Chunk, quotes []core.Quote) []core.AttributedQuote {
	out := make([]core.AttributedQuote, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, core.AttributedQuote{
			Document: chunk.Document,
			Index:    chunk.Index,
			Text:     q.Text,
			Context:  q.Context,
		})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
