package community

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
	"github.com/codegraphd/codegraphd/internal/graphstore"
)

func TestSeedByDirectoryGroupsSiblingFiles(t *testing.T) {
	files := []graphmodel.File{
		{ID: "a", Path: "/w/src/foo/a.go"},
		{ID: "b", Path: "/w/src/foo/b.go"},
		{ID: "c", Path: "/w/src/bar/c.go"},
	}
	groups := seedByDirectory(files)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 1) // /w/src/bar sorts before /w/src/foo
	assert.Len(t, groups[1], 2)
}

func TestMergeByDensityMergesDenselyConnectedGroups(t *testing.T) {
	groups := [][]graphmodel.File{
		{{ID: "a", Path: "/w/src/foo/a.go"}},
		{{ID: "b", Path: "/w/src/bar/b.go"}},
	}
	edges := []graphstore.FilePair{
		{FromPath: "/w/src/foo/a.go", ToPath: "/w/src/bar/b.go"},
	}
	merged := mergeByDensity(groups, edges)
	require.Len(t, merged, 1)
	assert.Len(t, merged[0], 2)
}

func TestMergeByDensityLeavesUnconnectedGroupsSeparate(t *testing.T) {
	groups := [][]graphmodel.File{
		{{ID: "a", Path: "/w/src/foo/a.go"}},
		{{ID: "b", Path: "/w/src/bar/b.go"}},
	}
	merged := mergeByDensity(groups, nil)
	assert.Len(t, merged, 2)
}

func TestPairKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, pairKey(1, 2), pairKey(2, 1))
}

func TestLabelAndSummary(t *testing.T) {
	members := []graphmodel.File{
		{Path: "/w/src/foo/a.go"},
		{Path: "/w/src/foo/b.go"},
	}
	assert.Equal(t, "/w/src/foo", label(members))
	assert.Contains(t, summary(members), "2 file(s)")
}
