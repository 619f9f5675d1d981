// Package tools wires every domain engine into dispatch.Tool values and
// registers the full 39-tool surface (spec.md §6) onto a
// dispatch.Dispatcher. Each file groups the tools that share an engine,
// the way the teacher groups spec_new/spec_artifact/spec_archive under
// internal/tools/workflow and tasks/patterns/query under their own
// packages — one file per cohesive handler group rather than one file
// per tool.
package tools

import (
	"context"
	"fmt"

	"github.com/codegraphd/codegraphd/internal/archrules"
	"github.com/codegraphd/codegraphd/internal/builder"
	"github.com/codegraphd/codegraphd/internal/cmdexec"
	"github.com/codegraphd/codegraphd/internal/community"
	"github.com/codegraphd/codegraphd/internal/contextpack"
	"github.com/codegraphd/codegraphd/internal/coordination"
	"github.com/codegraphd/codegraphd/internal/dispatch"
	"github.com/codegraphd/codegraphd/internal/docs"
	"github.com/codegraphd/codegraphd/internal/episodes"
	"github.com/codegraphd/codegraphd/internal/graphstore"
	"github.com/codegraphd/codegraphd/internal/retrieval"
	"github.com/codegraphd/codegraphd/internal/scheduler"
	"github.com/codegraphd/codegraphd/internal/session"
	"github.com/codegraphd/codegraphd/internal/vectorstore"
	"github.com/codegraphd/codegraphd/internal/watcher"
)

// Deps bundles every engine and store a tool handler might need. Handlers
// close over the subset they use; Deps itself is constructed once in
// cmd/codegraphd's wiring.
type Deps struct {
	Sessions    *session.Manager
	Graph       *graphstore.Store
	Vectors     *vectorstore.Store
	Retriever   *retrieval.Retriever
	Builder     *builder.Builder
	Episodes    *episodes.Engine
	Coordinator *coordination.Engine
	ContextPack *contextpack.Builder
	Docs        *docs.Engine
	Communities *community.PathBased
	ArchRules   *archrules.Validator
	Commands    *cmdexec.Engine
	Scheduler   *scheduler.Scheduler
	Watchers    *watcher.Manager
}

// RegisterAll registers every tool group's dispatch.Tool values onto d.
func RegisterAll(d *dispatch.Dispatcher, deps Deps) {
	for _, t := range graphTools(deps) {
		d.Register(t)
	}
	for _, t := range codeTools(deps) {
		d.Register(t)
	}
	for _, t := range testingTools(deps) {
		d.Register(t)
	}
	for _, t := range archTools(deps) {
		d.Register(t)
	}
	for _, t := range progressTools(deps) {
		d.Register(t)
	}
	for _, t := range episodeTools(deps) {
		d.Register(t)
	}
	for _, t := range coordinationTools(deps) {
		d.Register(t)
	}
	for _, t := range contextPackTools(deps) {
		d.Register(t)
	}
	for _, t := range docsTools(deps) {
		d.Register(t)
	}
	for _, t := range setupTools(deps) {
		d.Register(t)
	}
	for _, t := range metaTools(d) {
		d.Register(t)
	}
}

// projectContext resolves the active session's ProjectContext, the first
// step every handler but graph_set_workspace takes (spec.md §5 "all
// handler logic takes sessionId as its first resolution step").
func projectContext(ctx context.Context, sessions *session.Manager) (*session.ProjectContext, error) {
	pc, ok := sessions.Get(session.SessionIDFrom(ctx))
	if !ok {
		return nil, dispatch.NewError("WORKSPACE_NOT_FOUND",
			"call graph_set_workspace first to select a project",
			true, fmt.Errorf("no workspace set for this session"))
	}
	return pc, nil
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func argBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func argInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func argStringSlice(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		if s, ok := args[key].([]string); ok {
			return s
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func argMap(args map[string]any, key string) map[string]any {
	m, _ := args[key].(map[string]any)
	return m
}
