package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraphd/codegraphd/internal/shaper"
	"github.com/codegraphd/codegraphd/internal/tooling"
)

func echoTool() Tool {
	return Tool{
		Name:     "impact_analyze",
		Synonyms: map[string]string{"changedFiles": "files"},
		Required: []string{"files"},
		Known:    []string{"files", "maxDepth"},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			return tooling.Ok("ok", map[string]any{"files": args["files"]}), nil
		},
	}
}

func TestCallNormalizesSynonymAndRecordsWarning(t *testing.T) {
	d := New()
	d.Register(echoTool())

	env := d.Call(context.Background(), "impact_analyze", map[string]any{"changedFiles": []string{"a.go"}}, shaper.ProfileDebug)
	require.True(t, env.OK)
	assert.Contains(t, env.ContractWarnings, "mapped changedFiles -> files")
	assert.Equal(t, []string{"a.go"}, env.Data["files"])
}

func TestCallUnknownToolReturnsToolNotFound(t *testing.T) {
	d := New()
	env := d.Call(context.Background(), "does_not_exist", nil, shaper.ProfileDebug)
	assert.False(t, env.OK)
	assert.Equal(t, "TOOL_NOT_FOUND", env.ErrorCode)
}

func TestCallContainsHandlerPanic(t *testing.T) {
	d := New()
	d.Register(Tool{
		Name: "boom",
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			panic("kaboom")
		},
	})
	env := d.Call(context.Background(), "boom", nil, shaper.ProfileDebug)
	assert.False(t, env.OK)
	assert.Equal(t, "INTERNAL_ERROR", env.ErrorCode)
}

func TestCallPropagatesDispatchErrorCode(t *testing.T) {
	d := New()
	d.Register(Tool{
		Name: "release_claim",
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			return tooling.Envelope{}, NewError("CLAIM_NOT_FOUND", "check agent_status for active claims", true, errors.New("no claim abc123"))
		},
	})
	env := d.Call(context.Background(), "release_claim", nil, shaper.ProfileDebug)
	assert.False(t, env.OK)
	assert.Equal(t, "CLAIM_NOT_FOUND", env.ErrorCode)
	assert.True(t, env.ErrorDetail.Recoverable)
}

func TestContractValidateReportsMissingAndExtra(t *testing.T) {
	d := New()
	d.Register(echoTool())

	report := d.ContractValidate("impact_analyze", map[string]any{"bogusField": 1})
	assert.False(t, report.Valid)
	assert.Equal(t, []string{"files"}, report.MissingRequired)
	assert.Equal(t, []string{"bogusField"}, report.ExtraFields)
}

func TestContractValidateAppliesSynonymsBeforeChecking(t *testing.T) {
	d := New()
	d.Register(echoTool())

	report := d.ContractValidate("impact_analyze", map[string]any{"changedFiles": []string{"a.go"}})
	assert.True(t, report.Valid)
	assert.Contains(t, report.Warnings, "mapped changedFiles -> files")
}

func TestRegisterDuplicatePanics(t *testing.T) {
	d := New()
	d.Register(echoTool())
	assert.Panics(t, func() { d.Register(echoTool()) })
}
