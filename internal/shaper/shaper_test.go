package shaper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraphd/codegraphd/internal/tooling"
)

var graphQuerySchema = tooling.OutputSchema{
	{Key: "results", Priority: tooling.PriorityRequired},
	{Key: "count", Priority: tooling.PriorityRequired},
	{Key: "warnings", Priority: tooling.PriorityLow},
}

func TestShapePreservesRequiredOverBudget(t *testing.T) {
	rows := make([]any, 50)
	for i := range rows {
		rows[i] = map[string]any{"label": "FUNCTION", "cnt": strings.Repeat("x", 200)}
	}
	env := tooling.Ok("50 rows", map[string]any{
		"results":  rows,
		"count":    50,
		"warnings": []any{"slow query"},
	})

	out := Shape(env, ProfileCompact, graphQuerySchema)

	require.Contains(t, out.Data, "results")
	require.Contains(t, out.Data, "count")
	assert.True(t, out.OK)
	assert.NotContains(t, out.Data, "warnings")
}

func TestShapeDropsLowPriorityFirst(t *testing.T) {
	env := tooling.Ok("ok", map[string]any{
		"results":  []any{1, 2, 3},
		"count":    3,
		"warnings": []any{strings.Repeat("w", 2000)},
	})
	out := Shape(env, ProfileCompact, graphQuerySchema)
	assert.NotContains(t, out.Data, "warnings")
	assert.Contains(t, out.Data, "results")
}

func TestShapeTruncatesArraysByProfile(t *testing.T) {
	items := make([]any, 30)
	for i := range items {
		items[i] = i
	}
	env := tooling.Ok("ok", map[string]any{"results": items, "count": 30})
	out := Shape(env, ProfileCompact, graphQuerySchema)
	assert.Len(t, out.Data["results"], 10)

	out2 := Shape(env, ProfileBalanced, graphQuerySchema)
	assert.Len(t, out2.Data["results"], 30)
}

func TestBudgetExceededWithNoRequiredFields(t *testing.T) {
	schema := tooling.OutputSchema{{Key: "note", Priority: tooling.PriorityLow}}
	env := tooling.Ok("ok", map[string]any{"blob": strings.Repeat("y", 5000)})
	out := Shape(env, ProfileCompact, schema)
	assert.False(t, out.OK)
	assert.Equal(t, "BUDGET_EXCEEDED", out.ErrorCode)
}

func TestTokenEstimateMatchesFormula(t *testing.T) {
	payload := map[string]any{"count": 1, "label": "x"}
	got := TokenEstimate(payload)
	assert.Equal(t, 6, got) // len(`{"count":1,"label":"x"}`) == 23 -> ceil(23/4) == 6
}
