package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// paragraph builds a paragraph with exactly n words.
func paragraph(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(words, " ")
}

func TestSplit_EmptyText(t *testing.T) {
	assert.Empty(t, Split("doc.txt", "", 400))
	assert.Empty(t, Split("doc.txt", "\n\n  \n\n\t\n\n", 400))
}

func TestSplit_SingleParagraph(t *testing.T) {
	chunks := Split("doc.txt", "alpha beta gamma", 400)
	require.Len(t, chunks, 1)
	assert.Equal(t, "doc.txt", chunks[0].Document)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "alpha beta gamma", chunks[0].Text)
	assert.Equal(t, 3, chunks[0].WordCount)
}

func TestSplit_PacksParagraphsUpToBudget(t *testing.T) {
	text := strings.Join([]string{paragraph(150), paragraph(150), paragraph(150)}, "\n\n")

	chunks := Split("doc.txt", text, 400)
	require.Len(t, chunks, 2)
	assert.Equal(t, 300, chunks[0].WordCount)
	assert.Equal(t, 150, chunks[1].WordCount)
}

func TestSplit_OversizedParagraphStaysWhole(t *testing.T) {
	big := paragraph(900)
	text := strings.Join([]string{paragraph(100), big, paragraph(100)}, "\n\n")

	chunks := Split("doc.txt", text, 400)
	require.Len(t, chunks, 3)
	assert.Equal(t, 100, chunks[0].WordCount)
	assert.Equal(t, 900, chunks[1].WordCount)
	assert.Equal(t, big, chunks[1].Text)
	assert.Equal(t, 100, chunks[2].WordCount)
}

func TestSplit_WordCountPreserved(t *testing.T) {
	var parts []string
	total := 0
	for _, n := range []int{37, 250, 90, 412, 11, 180} {
		parts = append(parts, paragraph(n))
		total += n
	}
	text := strings.Join(parts, "\n\n")

	chunks := Split("doc.txt", text, 400)
	sum := 0
	for _, chunk := range chunks {
		sum += chunk.WordCount
		assert.Equal(t, len(strings.Fields(chunk.Text)), chunk.WordCount)
	}
	assert.Equal(t, total, sum)
}

func TestSplit_ContiguousIndices(t *testing.T) {
	text := strings.Join([]string{paragraph(300), paragraph(300), paragraph(300)}, "\n\n")

	chunks := Split("doc.txt", text, 400)
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Join([]string{paragraph(120), paragraph(350), paragraph(40)}, "\n\n")

	first := Split("doc.txt", text, 400)
	second := Split("doc.txt", text, 400)
	assert.Equal(t, first, second)
}

func TestSplit_NormalisesWindowsLineEndings(t *testing.T) {
	chunks := Split("doc.txt", "first paragraph\r\n\r\nsecond paragraph", 400)
	require.Len(t, chunks, 1)
	assert.Equal(t, "first paragraph\n\nsecond paragraph", chunks[0].Text)
	assert.Equal(t, 4, chunks[0].WordCount)
}

func TestSplit_DefaultBudget(t *testing.T) {
	text := strings.Join([]string{paragraph(350), paragraph(100)}, "\n\n")

	// A non-positive budget falls back to DefaultMaxWords.
	chunks := Split("doc.txt", text, 0)
	require.Len(t, chunks, 2)
	assert.Equal(t, 350, chunks[0].WordCount)
}
