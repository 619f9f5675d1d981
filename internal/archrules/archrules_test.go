package archrules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPrefixMatchesSubstring(t *testing.T) {
	assert.True(t, hasPrefix("/repo/internal/mcp/server.go", "internal/mcp"))
	assert.False(t, hasPrefix("/repo/internal/builder/build.go", "internal/mcp"))
	assert.False(t, hasPrefix("/repo/internal/mcp/server.go", ""))
}

func TestLayerOfExtractsInternalPackage(t *testing.T) {
	assert.Equal(t, "internal/mcp", layerOf("/repo/internal/mcp/server.go"))
	assert.Equal(t, "internal/builder", layerOf("/repo/internal/builder/build.go"))
	assert.Equal(t, "", layerOf("/repo/cmd/codegraphd/main.go"))
}

func TestLoadMissingFileReturnsEmptyRules(t *testing.T) {
	rules, err := Load(t.TempDir())
	assert.NoError(t, err)
	assert.Empty(t, rules)
}

func TestRuleSeverityDefaultsToError(t *testing.T) {
	assert.Equal(t, Error, Rule{From: "a", To: "b"}.severity())
	assert.Equal(t, Error, Rule{From: "a", To: "b", Severity: "error"}.severity())
}

func TestRuleSeverityAcceptsWarningCaseInsensitive(t *testing.T) {
	assert.Equal(t, Warning, Rule{From: "a", To: "b", Severity: "warning"}.severity())
	assert.Equal(t, Warning, Rule{From: "a", To: "b", Severity: "WARNING"}.severity())
}

func TestSeverityStringMatchesLabel(t *testing.T) {
	assert.Equal(t, "ERROR", Error.String())
	assert.Equal(t, "WARNING", Warning.String())
}

func TestOutcomeFormatMessageEmptyWhenNoViolations(t *testing.T) {
	assert.Equal(t, "", Outcome{OK: true}.FormatMessage())
}

func TestOutcomeFormatMessageListsEachViolation(t *testing.T) {
	o := Outcome{
		OK: false,
		Violations: []Violation{
			{Rule: Rule{From: "internal/ui", To: "internal/graphstore"}, FromPath: "internal/ui/view.go", ToPath: "internal/graphstore/store.go", Severity: Error},
		},
	}
	msg := o.FormatMessage()
	assert.Contains(t, msg, "ERROR")
	assert.Contains(t, msg, "internal/ui/view.go")
	assert.Contains(t, msg, "internal/graphstore/store.go")
}
