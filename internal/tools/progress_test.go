package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPrefixMatchAcceptsTaskIDUnderFeature(t *testing.T) {
	assert.True(t, hasPrefixMatch("feat-auth-1", "feat-auth"))
	assert.False(t, hasPrefixMatch("feat-billing-1", "feat-auth"))
}

func TestHasPrefixMatchRejectsShorterTaskID(t *testing.T) {
	assert.False(t, hasPrefixMatch("ft", "feat-auth"))
}
