package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuseCombinesRankedLists(t *testing.T) {
	lists := map[string]RankedList{
		"vector":  {{ID: "a", Score: 0.9}, {ID: "b", Score: 0.5}},
		"lexical": {{ID: "b", Score: 10}, {ID: "a", Score: 2}},
	}
	fused := Fuse(lists)
	require.Len(t, fused, 2)
	// a is rank0 in vector (1/61) + rank1 in lexical (1/62); b is rank1 in
	// vector (1/62) + rank0 in lexical (1/61) -> tied scores, both present.
	assert.InDelta(t, 1.0/61+1.0/62, fused[0].Score, 1e-9)
}

func TestFuseMissingEntryContributesZero(t *testing.T) {
	lists := map[string]RankedList{
		"vector": {{ID: "only-in-vector", Score: 1}},
	}
	fused := Fuse(lists)
	require.Len(t, fused, 1)
	assert.Equal(t, "only-in-vector", fused[0].ID)
	assert.InDelta(t, 1.0/61, fused[0].Score, 1e-9)
}

func TestFuseDeterministicOrdering(t *testing.T) {
	lists := map[string]RankedList{
		"vector": {{ID: "x", Score: 1}, {ID: "y", Score: 1}},
	}
	fused := Fuse(lists)
	// x and y are both rank-distinct (0 and 1) so not tied; just confirm
	// rank0 beats rank1 regardless of raw per-ranker score value.
	require.Len(t, fused, 2)
	assert.Equal(t, "x", fused[0].ID)
}
