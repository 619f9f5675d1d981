package episodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
)

func TestHasRationaleAcceptsRationaleOrReason(t *testing.T) {
	assert.True(t, hasRationale(map[string]any{"rationale": "because it scales"}))
	assert.True(t, hasRationale(map[string]any{"reason": "matches prior art"}))
	assert.False(t, hasRationale(map[string]any{"rationale": "   "}))
	assert.False(t, hasRationale(nil))
	assert.False(t, hasRationale(map[string]any{"other": "x"}))
}

func TestAddRejectsDecisionWithoutRationale(t *testing.T) {
	e := New(nil, nil, nil)
	_, err := e.Add(context.Background(), AddInput{
		Type:    "decision",
		Content: "use RRF for fusion",
	})
	assert.ErrorIs(t, err, ErrDecisionRequiresRationale)
}

func TestJaccardOverlap(t *testing.T) {
	a := toSet([]string{"x", "y", "z"})
	b := toSet([]string{"y", "z", "w"})
	assert.InDelta(t, 2.0/4.0, jaccard(a, b), 1e-9)
}

func TestJaccardBothEmpty(t *testing.T) {
	assert.Equal(t, 0.0, jaccard(toSet(nil), toSet(nil)))
}

func TestSortScoredDescending(t *testing.T) {
	items := []Scored{
		{Episode: graphmodel.Episode{ID: "low"}, Score: 0.1},
		{Episode: graphmodel.Episode{ID: "high"}, Score: 0.9},
		{Episode: graphmodel.Episode{ID: "mid"}, Score: 0.5},
	}
	sortScored(items)
	assert.Equal(t, []string{"high", "mid", "low"}, []string{items[0].Episode.ID, items[1].Episode.ID, items[2].Episode.ID})
}

func TestChainKeyDistinguishesAgentAndSession(t *testing.T) {
	assert.NotEqual(t, chainKey("agent-a", "sess-1"), chainKey("agent-b", "sess-1"))
	assert.NotEqual(t, chainKey("agent-a", "sess-1"), chainKey("agent-a", "sess-2"))
}
