// Package content provides the MCP prompts and resources codegraphd
// exposes alongside its tool surface: a usage guide and static reference
// material an agent can pull without spending a tool call's round-trip.
package content

import "github.com/codegraphd/codegraphd/internal/mcp"

// GuidePrompt is a general orientation prompt: how to select a
// workspace, build the graph, and reach for the right tool group.
type GuidePrompt struct{}

func (p *GuidePrompt) Definition() mcp.PromptDefinition {
	return mcp.PromptDefinition{
		Name:        "codegraphd-guide",
		Description: "Comprehensive usage guide: workspace setup, graph rebuilds, retrieval, coordination.",
		Arguments:   []mcp.PromptArgument{},
	}
}

func (p *GuidePrompt) Get(arguments map[string]string) (*mcp.PromptsGetResult, error) {
	return &mcp.PromptsGetResult{
		Description: "codegraphd usage guide",
		Messages: []mcp.PromptMessage{
			{Role: "user", Content: mcp.TextContent(guideText)},
		},
	}, nil
}

const guideText = `# codegraphd usage guide

codegraphd maintains a bi-temporal graph of a codebase plus a vector index
over its symbols, and exposes both through MCP tools. Every tool but
graph_set_workspace operates on the session's active workspace — set one
before calling anything else.

## Getting oriented

1. graph_set_workspace({workspaceRoot}) — selects the project. Returns a
   projectId and starts a file watcher if not already running for it.
2. graph_rebuild({mode: "full"}) — builds the initial graph. Subsequent
   edits are picked up incrementally by the watcher; call graph_rebuild
   again only to force a full re-index.
3. graph_health() — transaction counts, embeddingsReady, watcher state.

## Finding code

- semantic_search for natural-language queries over symbols and their
  summaries.
- code_explain once you have a symbolId, to read its source and callers.
- find_similar_code / code_clusters for structural neighbors.
- impact_analyze / test_select before editing, to find what a change
  would affect and which tests to run.

## Working alongside other agents

- agent_claim a file or symbol before editing it; releases and
  invalidations happen automatically on task completion or a superseding
  edit.
- coordination_overview / blocking_issues to see what's currently locked.

## Memory across sessions

- episode_add to record an observation, decision, or error as you work.
- context_pack({task}) to pull a budgeted bundle of relevant code,
  decisions, and history for a new task, instead of re-deriving it.
- reflect({taskId}) at the end of a task surfaces edit hotspots and risky
  decisions for the record.
`

// WorkflowPrompt is a step-by-step prompt for working a single task
// end-to-end with codegraphd's tools.
type WorkflowPrompt struct{}

func (p *WorkflowPrompt) Definition() mcp.PromptDefinition {
	return mcp.PromptDefinition{
		Name:        "codegraphd-workflow",
		Description: "Step-by-step workflow for claiming, implementing, and closing out one task.",
		Arguments: []mcp.PromptArgument{
			{Name: "taskId", Description: "The task identifier to work", Required: true},
		},
	}
}

func (p *WorkflowPrompt) Get(arguments map[string]string) (*mcp.PromptsGetResult, error) {
	taskID := arguments["taskId"]
	return &mcp.PromptsGetResult{
		Description: "Task workflow for " + taskID,
		Messages: []mcp.PromptMessage{
			{Role: "user", Content: mcp.TextContent(workflowText(taskID))},
		},
	}, nil
}

func workflowText(taskID string) string {
	return `# Working task ` + taskID + `

1. context_pack({task: "<describe ` + taskID + `>", taskId: "` + taskID + `"})
   to pull relevant code, prior decisions, and any blocking claims.
2. agent_claim on each file or symbol you intend to change.
3. Make the change; episode_add observations and decisions as you go,
   especially anything non-obvious a teammate or future session would
   want to know.
4. impact_analyze / test_select / test_run to verify the change.
5. task_update({taskId: "` + taskID + `", status: "completed"}) to close
   every active claim for the task and trigger reflect automatically.
`
}
