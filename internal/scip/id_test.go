package scip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileDocumentAndSectionIDs(t *testing.T) {
	assert.Equal(t, "proj:file:src/main.go", File("proj", "src/main.go"))
	assert.Equal(t, "proj:document:README.md", Document("proj", "README.md"))
	assert.Equal(t, "proj:section:README.md:Usage:10", Section("proj", "README.md", "Usage", 10))
}

func TestSymbolID(t *testing.T) {
	id := Symbol("proj", KindFunction, "src/main.go", "Parse", 12)
	assert.Equal(t, "proj:function:src/main.go:Parse:12", id)
}

func TestParseFileID(t *testing.T) {
	id, err := Parse("proj:file:src/main.go")
	require.NoError(t, err)
	assert.Equal(t, ID{ProjectID: "proj", Kind: KindFile, RelativePath: "src/main.go"}, id)
}

func TestParseSymbolIDWithoutStartLine(t *testing.T) {
	id, err := Parse("proj:function:src/main.go:Parse")
	require.NoError(t, err)
	assert.Equal(t, "Parse", id.Symbol)
	assert.False(t, id.HasStartLine)
}

func TestParseSymbolIDWithStartLine(t *testing.T) {
	id, err := Parse("proj:function:src/main.go:Parse:12")
	require.NoError(t, err)
	assert.Equal(t, "Parse", id.Symbol)
	assert.True(t, id.HasStartLine)
	assert.Equal(t, 12, id.StartLine)
}

func TestParseRejectsTooFewSegments(t *testing.T) {
	_, err := Parse("proj:file")
	assert.Error(t, err)
}

func TestParseRejectsNonIntegerStartLine(t *testing.T) {
	_, err := Parse("proj:function:src/main.go:Parse:notanumber")
	assert.Error(t, err)
}

func TestIDStringRoundTripsThroughParse(t *testing.T) {
	for _, original := range []string{
		"proj:file:src/main.go",
		"proj:function:src/main.go:Parse",
		"proj:function:src/main.go:Parse:12",
	} {
		id, err := Parse(original)
		require.NoError(t, err)
		assert.Equal(t, original, id.String())
	}
}
