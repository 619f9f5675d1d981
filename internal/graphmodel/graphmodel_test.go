package graphmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTemporalCurrentAndValidAt(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	current := Temporal{ValidFrom: start}
	assert.True(t, current.Current())
	assert.True(t, current.ValidAt(start.Add(time.Hour)))
	assert.False(t, current.ValidAt(start.Add(-time.Hour)))

	closed := Temporal{ValidFrom: start, ValidTo: &end}
	assert.False(t, closed.Current())
	assert.True(t, closed.ValidAt(start.Add(time.Hour)))
	assert.False(t, closed.ValidAt(end))
	assert.False(t, closed.ValidAt(end.Add(time.Hour)))
}

func TestCloseVersionSetsValidToOnly(t *testing.T) {
	prev := Temporal{ValidFrom: time.Unix(0, 0), TxID: "tx-1"}
	at := time.Unix(100, 0)

	closed := CloseVersion(prev, at)
	assert.Equal(t, prev.ValidFrom, closed.ValidFrom)
	assert.Equal(t, prev.TxID, closed.TxID)
	assert.Equal(t, at, *closed.ValidTo)
}

func TestOpenVersionStartsUnclosed(t *testing.T) {
	at := time.Unix(100, 0)
	opened := OpenVersion(at, "tx-2")
	assert.Equal(t, at, opened.ValidFrom)
	assert.Equal(t, at, opened.CreatedAt)
	assert.Equal(t, "tx-2", opened.TxID)
	assert.Nil(t, opened.ValidTo)
}

func TestValidMonotonicRequiresContiguousHandoffAndDifferentTx(t *testing.T) {
	closedAt := time.Unix(100, 0)
	old := Temporal{ValidFrom: time.Unix(0, 0), ValidTo: &closedAt, TxID: "tx-1"}

	contiguous := Temporal{ValidFrom: closedAt, TxID: "tx-2"}
	assert.True(t, ValidMonotonic(old, contiguous))

	sameTx := Temporal{ValidFrom: closedAt, TxID: "tx-1"}
	assert.False(t, ValidMonotonic(old, sameTx))

	gap := Temporal{ValidFrom: closedAt.Add(time.Second), TxID: "tx-2"}
	assert.False(t, ValidMonotonic(old, gap))

	stillOpen := Temporal{ValidFrom: time.Unix(0, 0), TxID: "tx-1"}
	assert.False(t, ValidMonotonic(stillOpen, contiguous))
}

func TestNewSupersessionCarriesFields(t *testing.T) {
	at := time.Unix(100, 0)
	s := NewSupersession("old-id", "new-id", "tx-1", at)
	assert.Equal(t, Supersession{OldID: "old-id", NewID: "new-id", TxID: "tx-1", At: at}, s)
}

func TestAsOfFilterMatchesLiveVersion(t *testing.T) {
	closedAt := time.Unix(100, 0)
	f := AsOfFilter{At: time.Unix(50, 0)}
	assert.True(t, f.Match(Temporal{ValidFrom: time.Unix(0, 0), ValidTo: &closedAt}))
	assert.False(t, f.Match(Temporal{ValidFrom: time.Unix(60, 0)}))
}

func TestLatestReportsCurrentVersion(t *testing.T) {
	closedAt := time.Unix(100, 0)
	assert.True(t, Latest(Temporal{ValidFrom: time.Unix(0, 0)}))
	assert.False(t, Latest(Temporal{ValidFrom: time.Unix(0, 0), ValidTo: &closedAt}))
}

func TestNormalizeEpisodeTypeUppercases(t *testing.T) {
	assert.Equal(t, EpisodeDecision, NormalizeEpisodeType("decision"))
	assert.Equal(t, EpisodeDecision, NormalizeEpisodeType("Decision"))
	assert.Equal(t, EpisodeDecision, NormalizeEpisodeType("DECISION"))
}

func TestClaimActiveAndState(t *testing.T) {
	active := Claim{}
	assert.True(t, active.Active())
	assert.Equal(t, ClaimActive, active.State())

	at := time.Unix(0, 0)
	released := Claim{ValidTo: &at, InvalidationReason: string(ClaimReleased)}
	assert.False(t, released.Active())
	assert.Equal(t, ClaimReleased, released.State())

	codeChanged := Claim{ValidTo: &at, InvalidationReason: string(ClaimCodeChanged)}
	assert.Equal(t, ClaimCodeChanged, codeChanged.State())

	unknown := Claim{ValidTo: &at, InvalidationReason: "something_else"}
	assert.Equal(t, ClaimState("something_else"), unknown.State())
}
