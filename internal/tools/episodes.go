package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/codegraphd/codegraphd/internal/dispatch"
	"github.com/codegraphd/codegraphd/internal/episodes"
	"github.com/codegraphd/codegraphd/internal/session"
	"github.com/codegraphd/codegraphd/internal/tooling"
)

// episodeTools implements episode_add, episode_recall, decision_query,
// and reflect (spec.md §4.6), all thin wraps over internal/episodes.
func episodeTools(deps Deps) []dispatch.Tool {
	return []dispatch.Tool{
		episodeAddTool(deps),
		episodeRecallTool(deps),
		decisionQueryTool(deps),
		reflectTool(deps),
	}
}

func episodeAddTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "episode_add",
		Category:    "memory",
		Description: "Record an episode (OBSERVATION, DECISION, ACTION, ERROR, or REFLECTION) in the current agent's session history.",
		Required:    []string{"agentId", "type", "content"},
		Known:       []string{"agentId", "taskId", "type", "content", "entities", "outcome", "metadata", "sensitive"},
		OutputSchema: tooling.OutputSchema{
			{Key: "episodeId", Priority: tooling.PriorityRequired},
			{Key: "type", Priority: tooling.PriorityHigh},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			agentID := argString(args, "agentId")
			if agentID == "" {
				return tooling.Envelope{}, dispatch.NewError("INVALID_ARGUMENT", "pass an agentId", true, fmt.Errorf("agentId is required"))
			}
			ep, err := deps.Episodes.Add(ctx, episodes.AddInput{
				ProjectID: pc.ProjectID,
				AgentID:   agentID,
				SessionID: session.SessionIDFrom(ctx),
				TaskID:    argString(args, "taskId"),
				Type:      argString(args, "type"),
				Content:   argString(args, "content"),
				Entities:  argStringSlice(args, "entities"),
				Outcome:   argString(args, "outcome"),
				Metadata:  argMap(args, "metadata"),
				Sensitive: argBool(args, "sensitive"),
			})
			if err != nil {
				if errors.Is(err, episodes.ErrDecisionRequiresRationale) {
					return tooling.Envelope{}, dispatch.NewError("EPISODE_DECISION_REQUIRES_RATIONALE", "pass metadata.rationale or metadata.reason for a DECISION episode", true, err)
				}
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			return tooling.Ok(fmt.Sprintf("recorded %s episode %s", ep.Type, ep.ID), map[string]any{
				"episodeId": ep.ID,
				"type":      ep.Type,
			}), nil
		},
	}
}

func episodeRecallTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "episode_recall",
		Category:    "memory",
		Description: "Recall past episodes ranked by cosine similarity, recency, and shared-entity overlap.",
		Required:    []string{"agentId", "query"},
		Known:       []string{"agentId", "query", "filterAgentId", "taskId", "types", "entities", "limit"},
		OutputSchema: tooling.OutputSchema{
			{Key: "episodes", Priority: tooling.PriorityRequired},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			scored, err := deps.Episodes.Recall(ctx, episodes.RecallInput{
				ProjectID:     pc.ProjectID,
				Query:         argString(args, "query"),
				CallerAgentID: argString(args, "agentId"),
				FilterAgentID: argString(args, "filterAgentId"),
				TaskID:        argString(args, "taskId"),
				Types:         argStringSlice(args, "types"),
				Entities:      argStringSlice(args, "entities"),
				Limit:         argInt(args, "limit", 0),
			})
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			return tooling.Ok(fmt.Sprintf("%d episodes recalled", len(scored)), map[string]any{"episodes": scored}), nil
		},
	}
}

func decisionQueryTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "decision_query",
		Category:    "memory",
		Description: "Recall prior DECISION episodes, weighting graph proximity higher when affectedFiles are supplied.",
		Required:    []string{"agentId", "query"},
		Known:       []string{"agentId", "query", "taskId", "affectedFiles", "limit"},
		OutputSchema: tooling.OutputSchema{
			{Key: "decisions", Priority: tooling.PriorityRequired},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			affectedFiles := argStringSlice(args, "affectedFiles")
			scored, err := deps.Episodes.DecisionQuery(ctx, episodes.RecallInput{
				ProjectID:     pc.ProjectID,
				Query:         argString(args, "query"),
				CallerAgentID: argString(args, "agentId"),
				TaskID:        argString(args, "taskId"),
				Limit:         argInt(args, "limit", 0),
			}, affectedFiles)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			return tooling.Ok(fmt.Sprintf("%d prior decisions found", len(scored)), map[string]any{"decisions": scored}), nil
		},
	}
}

func reflectTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "reflect",
		Category:    "memory",
		Description: "Scan a task's episode window for edit hotspots, risky decisions, and wasted re-reading, recording a REFLECTION episode and any resulting LEARNING nodes.",
		Required:    []string{"agentId"},
		Known:       []string{"agentId", "taskId", "limit"},
		OutputSchema: tooling.OutputSchema{
			{Key: "hotspots", Priority: tooling.PriorityHigh},
			{Key: "riskyDecisions", Priority: tooling.PriorityHigh},
			{Key: "wastedReading", Priority: tooling.PriorityMedium},
			{Key: "reflectionId", Priority: tooling.PriorityMedium},
			{Key: "learnings", Priority: tooling.PriorityMedium},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			result, err := deps.Episodes.Reflect(ctx, episodes.ReflectInput{
				ProjectID: pc.ProjectID,
				TaskID:    argString(args, "taskId"),
				AgentID:   argString(args, "agentId"),
				Limit:     argInt(args, "limit", 0),
			})
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			return tooling.Ok(fmt.Sprintf("%d hotspots, %d risky decisions, %d learnings", len(result.Hotspots), len(result.RiskyDecisions), len(result.Learnings)), map[string]any{
				"hotspots":       result.Hotspots,
				"riskyDecisions": result.RiskyDecisions,
				"wastedReading":  result.WastedReading,
				"reflectionId":   result.Reflection.ID,
				"learnings":      result.Learnings,
			}), nil
		},
	}
}
