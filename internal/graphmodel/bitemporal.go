package graphmodel

import "time"

// Supersession describes the SUPERSEDES edge created when a new version of
// a FILE, FUNCTION, or CLASS node replaces an older one (spec section 3,
// invariant #2): the edge points from the new version to the old one,
// (new)-[:SUPERSEDES]->(old). The monotonicity invariant is
// new.ValidFrom == old.ValidTo (the new version picks up exactly where the
// old one left off) and new.TxID != old.TxID (the two versions were
// written by different rebuilds).
type Supersession struct {
	OldID string
	NewID string
	TxID  string
	At    time.Time
}

// CloseVersion returns the Temporal for an outgoing (no-longer-current)
// version: ValidTo is set to at, everything else is unchanged. Called on
// the previous-current row when a rebuild detects a structural change at a
// SCIP id.
func CloseVersion(prev Temporal, at time.Time) Temporal {
	closed := prev
	closed.ValidTo = &at
	return closed
}

// OpenVersion constructs the Temporal for a new current version beginning
// at validFrom, written by transaction txID.
func OpenVersion(validFrom time.Time, txID string) Temporal {
	return Temporal{
		ValidFrom: validFrom,
		ValidTo:   nil,
		CreatedAt: validFrom,
		TxID:      txID,
	}
}

// NewSupersession builds the SUPERSEDES edge from newID (now current) to
// oldID (now closed), both written by the same rebuild transaction.
func NewSupersession(oldID, newID, txID string, at time.Time) Supersession {
	return Supersession{OldID: oldID, NewID: newID, TxID: txID, At: at}
}

// ValidMonotonic checks the invariant that a superseding version's
// ValidFrom equals the superseded version's ValidTo, and that the two
// versions were written by different transactions. Used by builder tests
// and by defensive checks after a rebuild.
func ValidMonotonic(old, new Temporal) bool {
	if old.ValidTo == nil {
		return false
	}
	if !old.ValidTo.Equal(new.ValidFrom) {
		return false
	}
	return old.TxID != new.TxID
}

// AsOfFilter is a predicate over Temporal for time-travel queries
// (spec section 4, "asOf" semantics): true when the version was live at t.
type AsOfFilter struct {
	At time.Time
}

// Match reports whether t was the live version at f.At.
func (f AsOfFilter) Match(t Temporal) bool { return t.ValidAt(f.At) }

// Latest reports whether t is the current (not-yet-superseded) version.
func Latest(t Temporal) bool { return t.Current() }
