package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name string
}

func (s stubTool) Name() string                 { return s.name }
func (s stubTool) Description() string          { return "stub tool " + s.name }
func (s stubTool) InputSchema() json.RawMessage { return json.RawMessage(`{}`) }
func (s stubTool) Execute(ctx context.Context, params json.RawMessage) (*ToolsCallResult, error) {
	return JSONResult(map[string]any{"name": s.name})
}

type stubPrompt struct {
	name string
}

func (s stubPrompt) Definition() PromptDefinition {
	return PromptDefinition{Name: s.name, Description: "stub prompt"}
}
func (s stubPrompt) Get(arguments map[string]string) (*PromptsGetResult, error) {
	return &PromptsGetResult{Messages: []PromptMessage{{Role: "user", Content: TextContent("hi")}}}, nil
}

type stubResource struct {
	uri string
}

func (s stubResource) Definition() ResourceDefinition {
	return ResourceDefinition{URI: s.uri, Name: "stub resource"}
}
func (s stubResource) Read() (*ResourcesReadResult, error) {
	return &ResourcesReadResult{Contents: []ResourceContent{{URI: s.uri, Text: "content"}}}, nil
}

func TestRegistryRegistersAndListsToolsInOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{name: "b_tool"})
	r.Register(stubTool{name: "a_tool"})

	defs := r.List()
	require.Len(t, defs, 2)
	assert.Equal(t, "b_tool", defs[0].Name)
	assert.Equal(t, "a_tool", defs[1].Name)
	assert.NotNil(t, r.Get("a_tool"))
	assert.Nil(t, r.Get("missing"))
}

func TestRegisterToolPanicsOnDuplicateName(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{name: "dup"})
	assert.Panics(t, func() { r.Register(stubTool{name: "dup"}) })
}

func TestRegistryPromptsRoundTrip(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.HasPrompts())

	r.RegisterPrompt(stubPrompt{name: "codegraphd-guide"})
	assert.True(t, r.HasPrompts())
	assert.NotNil(t, r.GetPrompt("codegraphd-guide"))
	assert.Len(t, r.ListPrompts(), 1)
}

func TestRegistryResourcesRoundTrip(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.HasResources())

	r.RegisterResource(stubResource{uri: "codegraphd://entity-model"})
	assert.True(t, r.HasResources())
	assert.NotNil(t, r.GetResource("codegraphd://entity-model"))
	assert.Len(t, r.ListResources(), 1)
}
