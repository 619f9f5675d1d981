package episodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinFloat(t *testing.T) {
	assert.Equal(t, 1.0, minFloat(1.0, 2.0))
	assert.Equal(t, 1.0, minFloat(2.0, 1.0))
}

func TestFlattenSources(t *testing.T) {
	sources := map[string][]string{
		"file-a": {"ep1", "ep2"},
		"file-b": {"ep3"},
	}
	out := flattenSources(sources)
	assert.ElementsMatch(t, []string{"ep1", "ep2", "ep3"}, out)
}

func TestSummarizeReflectionCountsEachPattern(t *testing.T) {
	r := ReflectResult{
		Hotspots:       []Hotspot{{FileID: "a"}, {FileID: "b"}},
		RiskyDecisions: []RiskyDecision{{DecisionID: "d1"}},
	}
	summary := summarizeReflection(r)
	assert.Contains(t, summary, "2 hotspot")
	assert.Contains(t, summary, "1 risky decision")
	assert.Contains(t, summary, "0 wasted-reading")
}
