package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/codegraphd/codegraphd/internal/coordination"
	"github.com/codegraphd/codegraphd/internal/dispatch"
	"github.com/codegraphd/codegraphd/internal/graphmodel"
	"github.com/codegraphd/codegraphd/internal/session"
	"github.com/codegraphd/codegraphd/internal/tooling"
)

// coordinationTools implements agent_claim, agent_release, agent_status,
// and coordination_overview (spec.md §4.7), all thin wraps over
// internal/coordination.
func coordinationTools(deps Deps) []dispatch.Tool {
	return []dispatch.Tool{
		agentClaimTool(deps),
		agentReleaseTool(deps),
		agentStatusTool(deps),
		coordinationOverviewTool(deps),
	}
}

func agentClaimTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "agent_claim",
		Category:    "coordination",
		Description: "Claim a target (file, symbol, or task) for exclusive work, reporting a conflict if another agent already holds it.",
		Required:    []string{"agentId", "claimType", "targetId", "intent"},
		Known:       []string{"agentId", "taskId", "claimType", "targetId", "intent"},
		OutputSchema: tooling.OutputSchema{
			{Key: "status", Priority: tooling.PriorityRequired},
			{Key: "claimId", Priority: tooling.PriorityHigh},
			{Key: "targetVersionSha", Priority: tooling.PriorityMedium},
			{Key: "conflict", Priority: tooling.PriorityHigh},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			result, err := deps.Coordinator.Claim(ctx, coordination.ClaimInput{
				ProjectID: pc.ProjectID,
				AgentID:   argString(args, "agentId"),
				SessionID: session.SessionIDFrom(ctx),
				TaskID:    argString(args, "taskId"),
				ClaimType: graphmodel.ClaimType(argString(args, "claimType")),
				TargetID:  argString(args, "targetId"),
				Intent:    argString(args, "intent"),
			})
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			summary := fmt.Sprintf("claim %s created", result.ClaimID)
			var conflict map[string]any
			if result.Status == "CONFLICT" {
				summary = fmt.Sprintf("target already claimed by %s", result.Conflict.AgentID)
				conflict = map[string]any{
					"agentId": result.Conflict.AgentID,
					"intent":  result.Conflict.Intent,
					"since":   result.Conflict.Since,
				}
			}
			return tooling.Ok(summary, map[string]any{
				"status":           result.Status,
				"claimId":          result.ClaimID,
				"targetVersionSha": result.TargetVersionSHA,
				"conflict":         conflict,
			}), nil
		},
	}
}

func agentReleaseTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "agent_release",
		Category:    "coordination",
		Description: "Release an active claim.",
		Required:    []string{"claimId"},
		OutputSchema: tooling.OutputSchema{
			{Key: "released", Priority: tooling.PriorityRequired},
			{Key: "alreadyClosed", Priority: tooling.PriorityMedium},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			claimID := argString(args, "claimId")
			if claimID == "" {
				return tooling.Envelope{}, dispatch.NewError("INVALID_ARGUMENT", "pass a claimId", true, fmt.Errorf("claimId is required"))
			}
			result, err := deps.Coordinator.Release(ctx, claimID)
			if err != nil {
				if errors.Is(err, coordination.ErrClaimNotFound) {
					return tooling.Envelope{}, dispatch.NewError("CLAIM_NOT_FOUND", "pass a claimId from a prior agent_claim result", true, err)
				}
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			summary := "claim released"
			if result.AlreadyClosed {
				summary = "claim was already closed"
			}
			return tooling.Ok(summary, map[string]any{
				"released":      result.Released,
				"alreadyClosed": result.AlreadyClosed,
			}), nil
		},
	}
}

func agentStatusTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "agent_status",
		Category:    "coordination",
		Description: "List an agent's active and closed claims.",
		Required:    []string{"agentId"},
		OutputSchema: tooling.OutputSchema{
			{Key: "activeClaims", Priority: tooling.PriorityRequired},
			{Key: "closedClaims", Priority: tooling.PriorityMedium},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			agentID := argString(args, "agentId")
			status, err := deps.Coordinator.Status(ctx, pc.ProjectID, agentID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			return tooling.Ok(fmt.Sprintf("%s: %d active, %d closed claims", agentID, len(status.ActiveClaims), len(status.ClosedClaims)), map[string]any{
				"activeClaims": status.ActiveClaims,
				"closedClaims": status.ClosedClaims,
			}), nil
		},
	}
}

func coordinationOverviewTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "coordination_overview",
		Category:    "coordination",
		Description: "List every claim in the active project grouped by agent.",
		OutputSchema: tooling.OutputSchema{
			{Key: "byAgent", Priority: tooling.PriorityRequired},
			{Key: "activeClaimCount", Priority: tooling.PriorityHigh},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			overview, err := deps.Coordinator.CoordinationOverview(ctx, pc.ProjectID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			return tooling.Ok(fmt.Sprintf("%d active claims across %d agents", overview.ActiveClaimCount, len(overview.ByAgent)), map[string]any{
				"byAgent":          overview.ByAgent,
				"activeClaimCount": overview.ActiveClaimCount,
			}), nil
		},
	}
}
