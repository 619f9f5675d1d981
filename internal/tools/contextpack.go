package tools

import (
	"context"
	"fmt"

	"github.com/codegraphd/codegraphd/internal/contextpack"
	"github.com/codegraphd/codegraphd/internal/dispatch"
	"github.com/codegraphd/codegraphd/internal/shaper"
	"github.com/codegraphd/codegraphd/internal/tooling"
)

// contextPackTools implements context_pack (spec.md §4.8): seed
// selection, relevance propagation, and budget-aware slot filling,
// entirely delegated to internal/contextpack.
func contextPackTools(deps Deps) []dispatch.Tool {
	return []dispatch.Tool{contextPackTool(deps)}
}

func contextPackTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "context_pack",
		Category:    "memory",
		Description: "Assemble a budget-shaped bundle of relevant code, dependencies, decisions, and episode history for a task.",
		Required:    []string{"task"},
		Known:       []string{"task", "taskId", "agentId", "profile", "includeDecisions", "includeEpisodes", "includeLearnings"},
		OutputSchema: tooling.OutputSchema{
			{Key: "summary", Priority: tooling.PriorityRequired},
			{Key: "coreCode", Priority: tooling.PriorityHigh},
			{Key: "dependencies", Priority: tooling.PriorityMedium},
			{Key: "decisions", Priority: tooling.PriorityMedium},
			{Key: "learnings", Priority: tooling.PriorityMedium},
			{Key: "episodeHistory", Priority: tooling.PriorityLow},
			{Key: "blockingClaims", Priority: tooling.PriorityHigh},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			task := argString(args, "task")
			if task == "" {
				return tooling.Envelope{}, dispatch.NewError("INVALID_ARGUMENT", "describe the task in natural language", true, fmt.Errorf("task is required"))
			}
			profile := shaper.Profile(argString(args, "profile"))
			if profile == "" {
				profile = shaper.ProfileCompact
			}
			pack, err := deps.ContextPack.Build(ctx, contextpack.Options{
				ProjectID:        pc.ProjectID,
				Task:             task,
				TaskID:           argString(args, "taskId"),
				AgentID:          argString(args, "agentId"),
				Profile:          profile,
				IncludeDecisions: argBool(args, "includeDecisions"),
				IncludeEpisodes:  argBool(args, "includeEpisodes"),
				IncludeLearnings: argBool(args, "includeLearnings"),
			})
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			return tooling.Ok(pack.Summary, map[string]any{
				"summary":        pack.Summary,
				"coreCode":       pack.CoreCode,
				"dependencies":   pack.Dependencies,
				"decisions":      pack.Decisions,
				"learnings":      pack.Learnings,
				"episodeHistory": pack.EpisodeHistory,
				"blockingClaims": pack.BlockingClaims,
			}), nil
		},
	}
}
