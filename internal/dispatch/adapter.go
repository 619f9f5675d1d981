package dispatch

import (
	"context"
	"encoding/json"

	"github.com/codegraphd/codegraphd/internal/mcp"
	"github.com/codegraphd/codegraphd/internal/shaper"
)

// adapter exposes one Dispatcher entry as an mcp.Tool, so internal/mcp's
// transport-level Registry can stay the single source of truth for
// tools/list and tools/call while every handler's normalization, error
// containment, and shaping go through the Dispatcher.
type adapter struct {
	dispatcher *Dispatcher
	name       string
	desc       string
	schema     json.RawMessage
}

// RegisterAll wraps every tool currently registered in d as an mcp.Tool
// and adds it to registry, under the tool's own name.
func RegisterAll(d *Dispatcher, registry *mcp.Registry) {
	for _, t := range d.List() {
		registry.Register(&adapter{dispatcher: d, name: t.Name, desc: t.Description, schema: t.InputSchema})
	}
}

func (a *adapter) Name() string        { return a.name }
func (a *adapter) Description() string { return a.desc }

func (a *adapter) InputSchema() json.RawMessage {
	if a.schema == nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return json.RawMessage(a.schema)
}

func (a *adapter) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var args map[string]any
	if len(params) > 0 {
		if err := json.Unmarshal(params, &args); err != nil {
			return mcp.ErrorResult("invalid arguments: " + err.Error()), nil
		}
	}

	env := a.dispatcher.Call(ctx, a.name, args, profileOf(args))
	return mcp.JSONResult(env)
}

// profileOf reads the requested shaper profile from args, defaulting to
// compact per spec.md's tool-signature defaults (e.g. graph_query's
// profile='compact').
func profileOf(args map[string]any) shaper.Profile {
	if p, ok := args["profile"].(string); ok {
		switch shaper.Profile(p) {
		case shaper.ProfileCompact, shaper.ProfileBalanced, shaper.ProfileDebug:
			return shaper.Profile(p)
		}
	}
	return shaper.ProfileCompact
}
