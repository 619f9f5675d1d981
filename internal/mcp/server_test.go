package mcp

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	registry := NewRegistry()
	registry.Register(stubTool{name: "graph_query"})
	registry.RegisterPrompt(stubPrompt{name: "codegraphd-guide"})
	registry.RegisterResource(stubResource{uri: "codegraphd://entity-model"})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(registry, ServerInfo{Name: "codegraphd", Version: "test"}, logger)
}

func request(id, method string, params string) []byte {
	msg := `{"jsonrpc":"2.0","id":"` + id + `","method":"` + method + `"`
	if params != "" {
		msg += `,"params":` + params
	}
	msg += `}`
	return []byte(msg)
}

func TestHandleMessageInitializeReportsCapabilities(t *testing.T) {
	s := newTestServer()
	resp := s.HandleMessage(context.Background(), request("1", "initialize", `{}`))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result := resp.Result.(*InitializeResult)
	assert.Equal(t, "codegraphd", result.ServerInfo.Name)
	assert.NotNil(t, result.Capabilities.Tools)
	assert.NotNil(t, result.Capabilities.Prompts)
	assert.NotNil(t, result.Capabilities.Resources)
}

func TestHandleMessageToolsListReturnsRegisteredTools(t *testing.T) {
	s := newTestServer()
	resp := s.HandleMessage(context.Background(), request("1", "tools/list", ""))
	require.Nil(t, resp.Error)

	result := resp.Result.(*ToolsListResult)
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "graph_query", result.Tools[0].Name)
}

func TestHandleMessageToolsCallDispatchesToTool(t *testing.T) {
	s := newTestServer()
	resp := s.HandleMessage(context.Background(), request("1", "tools/call", `{"name":"graph_query","arguments":{}}`))
	require.Nil(t, resp.Error)

	result := resp.Result.(*ToolsCallResult)
	require.Len(t, result.Content, 1)
	assert.False(t, result.IsError)
}

func TestHandleMessageToolsCallUnknownToolReturnsJSONRPCError(t *testing.T) {
	s := newTestServer()
	resp := s.HandleMessage(context.Background(), request("1", "tools/call", `{"name":"missing","arguments":{}}`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
}

func TestHandleMessagePromptsGetReturnsMessages(t *testing.T) {
	s := newTestServer()
	resp := s.HandleMessage(context.Background(), request("1", "prompts/get", `{"name":"codegraphd-guide"}`))
	require.Nil(t, resp.Error)

	result := resp.Result.(*PromptsGetResult)
	assert.Len(t, result.Messages, 1)
}

func TestHandleMessageResourcesReadReturnsContent(t *testing.T) {
	s := newTestServer()
	resp := s.HandleMessage(context.Background(), request("1", "resources/read", `{"uri":"codegraphd://entity-model"}`))
	require.Nil(t, resp.Error)

	result := resp.Result.(*ResourcesReadResult)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "content", result.Contents[0].Text)
}

func TestHandleMessageUnknownMethodReturnsMethodNotFound(t *testing.T) {
	s := newTestServer()
	resp := s.HandleMessage(context.Background(), request("1", "bogus/method", ""))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
}

func TestHandleMessageNotificationGetsNoResponse(t *testing.T) {
	s := newTestServer()
	resp := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	assert.Nil(t, resp)
}

func TestHandleMessageMalformedJSONReturnsParseError(t *testing.T) {
	s := newTestServer()
	resp := s.HandleMessage(context.Background(), []byte(`{not json`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeParse, resp.Error.Code)
}

func TestHandleMessageInvalidToolsCallParamsReturnsInvalidParams(t *testing.T) {
	s := newTestServer()
	resp := s.HandleMessage(context.Background(), request("1", "tools/call", `"not an object"`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidParams, resp.Error.Code)
}
