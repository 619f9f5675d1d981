package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCircularImportsDetectsSimpleCycle(t *testing.T) {
	edges := []ImportEdge{
		{FromFileID: "a", ToFileID: "b"},
		{FromFileID: "b", ToFileID: "c"},
		{FromFileID: "c", ToFileID: "a"},
	}
	cycles := FindCircularImports(edges)
	require.Len(t, cycles, 1)
	assert.Equal(t, "a", cycles[0].Files[0])
}

func TestFindCircularImportsNoCycle(t *testing.T) {
	edges := []ImportEdge{
		{FromFileID: "a", ToFileID: "b"},
		{FromFileID: "b", ToFileID: "c"},
	}
	assert.Empty(t, FindCircularImports(edges))
}

func TestFindCircularImportsDedupesRotations(t *testing.T) {
	edges := []ImportEdge{
		{FromFileID: "a", ToFileID: "b"},
		{FromFileID: "b", ToFileID: "c"},
		{FromFileID: "c", ToFileID: "a"},
		{FromFileID: "x", ToFileID: "y"},
	}
	cycles := FindCircularImports(edges)
	require.Len(t, cycles, 1)
}
