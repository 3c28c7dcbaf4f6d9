package notes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackNote_FirstThreeSentences(t *testing.T) {
	note := FallbackNote("First point here. Second point follows! Third question raised? Fourth never appears.")
	assert.Equal(t, "First point here. Second point follows! Third question raised?", note.Summary)
	assert.Empty(t, note.Insights)
	assert.Empty(t, note.Questions)
	assert.Empty(t, note.Quotes)
}

func TestFallbackNote_FewerThanThreeSentences(t *testing.T) {
	note := FallbackNote("A. B. C.")
	assert.Equal(t, "A. B. C.", note.Summary)
}

func TestFallbackNote_SingleSentence(t *testing.T) {
	note := FallbackNote("Only one sentence without trailing punctuation")
	assert.Equal(t, "Only one sentence without trailing punctuation", note.Summary)
}

func TestFallbackNote_Empty(t *testing.T) {
	note := FallbackNote("")
	assert.Equal(t, "", note.Summary)
	require.NotNil(t, note.Insights)
	require.NotNil(t, note.Questions)
	require.NotNil(t, note.Quotes)
}

func TestFallbackNote_Deterministic(t *testing.T) {
	text := "Alpha is first. Beta is second. Gamma is third. Delta is fourth."
	assert.Equal(t, FallbackNote(text), FallbackNote(text))
}

func TestFallbackNote_AbbreviationsWithoutSpaceStayJoined(t *testing.T) {
	// A period not followed by whitespace is not a sentence boundary.
	note := FallbackNote("Version 1.2 shipped. Then 1.3 followed. A third note. A fourth note.")
	assert.Equal(t, "Version 1.2 shipped. Then 1.3 followed. A third note.", note.Summary)
}

func TestFallbackOverview_JoinsAndTruncates(t *testing.T) {
	overview := FallbackOverview([]string{"First chunk summary.", "Second chunk summary."})
	assert.Equal(t, "First chunk summary. Second chunk summary.", overview.Overview)
	require.NotNil(t, overview.Themes)
	require.NotNil(t, overview.ActionItems)
	assert.Empty(t, overview.Themes)
	assert.Empty(t, overview.ActionItems)
}

func TestFallbackOverview_Budget(t *testing.T) {
	long := strings.Repeat("x", 700)
	overview := FallbackOverview([]string{long})
	assert.Len(t, overview.Overview, 600)
}

func TestFallbackOverview_Empty(t *testing.T) {
	overview := FallbackOverview(nil)
	assert.Equal(t, "", overview.Overview)
}
