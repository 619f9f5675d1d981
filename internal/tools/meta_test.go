package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codegraphd/codegraphd/internal/dispatch"
	"github.com/codegraphd/codegraphd/internal/tooling"
)

func registerSampleTool(d *dispatch.Dispatcher) {
	d.Register(dispatch.Tool{
		Name:     "sample_tool",
		Category: "sample",
		Required: []string{"path"},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			return tooling.Ok("ok", nil), nil
		},
	})
}

func TestToolsListReportsRegisteredTools(t *testing.T) {
	d := dispatch.New()
	registerSampleTool(d)
	tool := toolsListTool(d)

	env, err := tool.Handler(context.Background(), nil)
	assert.NoError(t, err)
	assert.True(t, env.OK)

	listing := env.Data["tools"].([]map[string]any)
	assert.Len(t, listing, 1)
	assert.Equal(t, "sample_tool", listing[0]["name"])
	assert.Equal(t, "sample", listing[0]["category"])
}

func TestContractValidateToolRequiresToolName(t *testing.T) {
	d := dispatch.New()
	tool := contractValidateTool(d)

	_, err := tool.Handler(context.Background(), map[string]any{})
	assert.Error(t, err)
}

func TestContractValidateToolReportsMissingRequired(t *testing.T) {
	d := dispatch.New()
	registerSampleTool(d)
	tool := contractValidateTool(d)

	env, err := tool.Handler(context.Background(), map[string]any{
		"toolName":  "sample_tool",
		"arguments": map[string]any{},
	})
	assert.NoError(t, err)
	assert.True(t, env.OK)
	assert.Equal(t, false, env.Data["valid"])
	assert.Contains(t, env.Data["missingRequired"], "path")
}

func TestContractValidateToolAcceptsValidArguments(t *testing.T) {
	d := dispatch.New()
	registerSampleTool(d)
	tool := contractValidateTool(d)

	env, err := tool.Handler(context.Background(), map[string]any{
		"toolName":  "sample_tool",
		"arguments": map[string]any{"path": "main.go"},
	})
	assert.NoError(t, err)
	assert.Equal(t, true, env.Data["valid"])
}
