package contextpack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankNodesSortsDescendingWithIDTiebreak(t *testing.T) {
	scores := map[string]float64{"b": 0.5, "a": 0.5, "c": 0.9}
	ranked := rankNodes(scores, 10)
	assert.Equal(t, []string{"c", "a", "b"}, ranked)
}

func TestRankNodesRespectsLimit(t *testing.T) {
	scores := map[string]float64{"a": 1, "b": 2, "c": 3}
	assert.Len(t, rankNodes(scores, 2), 2)
}

func TestToSeedSet(t *testing.T) {
	set := toSeedSet([]string{"x", "y"})
	assert.True(t, set["x"])
	assert.False(t, set["z"])
}

func TestReadSourceLinesExtractsInclusiveRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.go")
	require.NoError(t, os.WriteFile(path, []byte("line1\nline2\nline3\nline4\n"), 0o644))

	got := readSourceLines(path, 2, 3)
	assert.Equal(t, "line2\nline3", got)
}

func TestReadSourceLinesMissingFileReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", readSourceLines("/no/such/file", 1, 2))
}

func TestSummarizeNamesEntryPoint(t *testing.T) {
	summary := summarize("fix the bug", []CodeItem{{Name: "HandleRequest", Path: "/w/src/handler.go"}})
	assert.Contains(t, summary, "HandleRequest")
	assert.Contains(t, summary, "/w/src/handler.go")
}

func TestSummarizeNoCoreCode(t *testing.T) {
	summary := summarize("fix the bug", nil)
	assert.Contains(t, summary, "No strongly related code")
}
