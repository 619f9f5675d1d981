package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexicalIndexFieldBoosts(t *testing.T) {
	idx := NewLexicalIndex([]Document{
		{ID: "a", Name: "parse", Summary: "reads a toml file", Path: "internal/config/config.go"},
		{ID: "b", Name: "loadWidgets", Summary: "parse config-like data", Path: "internal/widgets/widgets.go"},
	})

	hits := idx.Search("parse", 10)
	require.NotEmpty(t, hits)
	assert.Equal(t, "a", hits[0].ID, "name-field match should outrank a summary-only match")
}

func TestLexicalIndexNoMatchReturnsEmpty(t *testing.T) {
	idx := NewLexicalIndex([]Document{{ID: "a", Name: "foo", Summary: "bar", Path: "baz.go"}})
	hits := idx.Search("zzz_nonexistent_term", 10)
	assert.Empty(t, hits)
}

func TestLexicalIndexDeterministicTieBreak(t *testing.T) {
	idx := NewLexicalIndex([]Document{
		{ID: "b", Name: "widget", Summary: "", Path: ""},
		{ID: "a", Name: "widget", Summary: "", Path: ""},
	})
	hits := idx.Search("widget", 10)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
}
