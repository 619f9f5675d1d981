package coordination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
)

func closedClaim(agentID string) graphmodel.Claim {
	at := time.Now()
	return graphmodel.Claim{AgentID: agentID, ValidTo: &at, InvalidationReason: string(graphmodel.ClaimReleased)}
}

func activeClaim(agentID string) graphmodel.Claim {
	return graphmodel.Claim{AgentID: agentID}
}

func TestSplitClaimsPartitionsActiveAndClosed(t *testing.T) {
	claims := []graphmodel.Claim{activeClaim("a1"), closedClaim("a1"), activeClaim("a2")}
	active, closed := splitClaims(claims)
	assert.Len(t, active, 2)
	assert.Len(t, closed, 1)
}

func TestSplitClaimsEmptyInput(t *testing.T) {
	active, closed := splitClaims(nil)
	assert.Empty(t, active)
	assert.Empty(t, closed)
}

func TestGroupOverviewBucketsByAgentAndCountsActive(t *testing.T) {
	claims := []graphmodel.Claim{
		activeClaim("a1"),
		activeClaim("a1"),
		closedClaim("a1"),
		activeClaim("a2"),
	}
	out := groupOverview(claims)
	assert.Len(t, out.ByAgent["a1"], 3)
	assert.Len(t, out.ByAgent["a2"], 1)
	assert.Equal(t, 3, out.ActiveClaimCount)
}

func TestGroupOverviewEmptyInput(t *testing.T) {
	out := groupOverview(nil)
	assert.Empty(t, out.ByAgent)
	assert.Equal(t, 0, out.ActiveClaimCount)
}

func TestErrClaimNotFoundIsDistinctError(t *testing.T) {
	assert.ErrorIs(t, ErrClaimNotFound, ErrClaimNotFound)
	assert.Contains(t, ErrClaimNotFound.Error(), "claim not found")
}
