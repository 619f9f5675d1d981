package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbedTextWithSummary(t *testing.T) {
	assert.Equal(t, "Parse: parses a source file", embedText("Parse", "parses a source file"))
}

func TestEmbedTextWithoutSummary(t *testing.T) {
	assert.Equal(t, "Parse", embedText("Parse", ""))
}

func TestJobNamesAreScopedToProject(t *testing.T) {
	assert.Equal(t, "embedding_regeneration:proj-1", (&EmbeddingRegeneration{ProjectID: "proj-1"}).Name())
	assert.Equal(t, "community_recomputation:proj-1", (&CommunityRecomputation{ProjectID: "proj-1"}).Name())
	assert.Equal(t, "stale_claim_sweep:proj-1", (&StaleClaimSweep{ProjectID: "proj-1"}).Name())
}
