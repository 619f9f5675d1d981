package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtxTextParsesDepthAndRejectsNonHeading(t *testing.T) {
	text, ok := atxText("## Overview")
	require.True(t, ok)
	assert.Equal(t, "Overview", text)

	_, ok = atxText("#comment-no-space")
	assert.False(t, ok)

	_, ok = atxText("plain text")
	assert.False(t, ok)

	_, ok = atxText("####### too-deep")
	assert.False(t, ok)
}

func TestSplitHeadingsChainsLineRanges(t *testing.T) {
	content := "intro text\n# First\nbody1\nbody2\n## Second\nbody3\n"
	headings := splitHeadings(content)
	require.Len(t, headings, 2)

	assert.Equal(t, "First", headings[0].text)
	assert.Equal(t, 2, headings[0].startLine)
	assert.Equal(t, 4, headings[0].endLine)

	assert.Equal(t, "Second", headings[1].text)
	assert.Equal(t, 5, headings[1].startLine)
	assert.Equal(t, 6, headings[1].endLine)
}

func TestSplitHeadingsNoHeadings(t *testing.T) {
	assert.Empty(t, splitHeadings("just some text\nmore text\n"))
}
