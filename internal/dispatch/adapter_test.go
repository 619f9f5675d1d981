package dispatch

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraphd/codegraphd/internal/mcp"
	"github.com/codegraphd/codegraphd/internal/tooling"
)

func TestRegisterAllExposesToolsThroughMCPRegistry(t *testing.T) {
	d := New()
	d.Register(Tool{
		Name:        "graph_query",
		Description: "runs a read-only cypher query",
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			return tooling.Ok("1 row", map[string]any{"count": 1}), nil
		},
	})

	registry := mcp.NewRegistry()
	RegisterAll(d, registry)

	tool := registry.Get("graph_query")
	require.NotNil(t, tool)

	result, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	var env tooling.Envelope
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &env))
	assert.True(t, env.OK)
	assert.Equal(t, "compact", env.Profile)
}
