package studyforge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Distributed Systems", "distributed-systems"},
		{"  Already-Slugged  ", "already-slugged"},
		{"Notes: Week #3 (Draft)", "notes-week-3-draft"},
		{"UPPER case", "upper-case"},
		{"---", "project"},
		{"", "project"},
		{"日本語", "project"},
		{"mix 日本 42", "mix-42"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.label))
		})
	}
}

func TestEnsureProjectDir(t *testing.T) {
	base := t.TempDir()

	slug, dir, err := EnsureProjectDir(base, "My Study Project")
	require.NoError(t, err)
	assert.Equal(t, "my-study-project", slug)
	assert.Equal(t, filepath.Join(base, "my-study-project"), dir)

	for _, sub := range []string{"source", "artifacts"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestEnsureProjectDir_Collision(t *testing.T) {
	base := t.TempDir()

	_, first, err := EnsureProjectDir(base, "Notes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "notes"), first)

	_, second, err := EnsureProjectDir(base, "Notes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "notes-02"), second)

	_, third, err := EnsureProjectDir(base, "Notes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "notes-03"), third)
}

func TestEnsureProjectDir_EmptyLabel(t *testing.T) {
	base := t.TempDir()

	slug, dir, err := EnsureProjectDir(base, "")
	require.NoError(t, err)
	assert.Regexp(t, `^project-\d{8}-\d{6}$`, slug)
	assert.DirExists(t, dir)
}

func TestWriteReferences(t *testing.T) {
	dir := t.TempDir()

	refs, err := WriteReferences(dir, []string{"https://example.com/paper", "  ", "https://example.com/talk"})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "https://example.com/paper", refs[0].URL)
	assert.Equal(t, "https://example.com/talk", refs[1].URL)

	data, err := os.ReadFile(filepath.Join(dir, "source", "references.json"))
	require.NoError(t, err)

	var payload struct {
		References []Reference `json:"references"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	require.Len(t, payload.References, 2)
	assert.Equal(t, "https://example.com/paper", payload.References[0].URL)
}

func TestWriteReferences_EmptySkipsFile(t *testing.T) {
	dir := t.TempDir()

	refs, err := WriteReferences(dir, nil)
	require.NoError(t, err)
	assert.Empty(t, refs)

	_, err = os.Stat(filepath.Join(dir, "source", "references.json"))
	assert.True(t, os.IsNotExist(err))
}
