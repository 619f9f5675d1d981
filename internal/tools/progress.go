package tools

import (
	"context"
	"fmt"

	"github.com/codegraphd/codegraphd/internal/dispatch"
	"github.com/codegraphd/codegraphd/internal/graphmodel"
	"github.com/codegraphd/codegraphd/internal/tooling"
)

// progressTools implements progress_query, task_update, feature_status,
// and blocking_issues. The graph model has no dedicated Task/Feature node
// types (spec.md §3 names CLAIM and EPISODE, not a task-tracking entity),
// so these four read the same signal agent_status and reflect already
// expose — claims scoped by taskId and DECISION/ERROR episodes — rather
// than inventing a parallel task graph.
func progressTools(deps Deps) []dispatch.Tool {
	return []dispatch.Tool{
		progressQueryTool(deps),
		taskUpdateTool(deps),
		featureStatusTool(deps),
		blockingIssuesTool(deps),
	}
}

func progressQueryTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "progress_query",
		Category:    "progress",
		Description: "Summarize a task's claim activity and recent decision/error episodes.",
		Required:    []string{"taskId"},
		OutputSchema: tooling.OutputSchema{
			{Key: "activeClaims", Priority: tooling.PriorityRequired},
			{Key: "closedClaims", Priority: tooling.PriorityMedium},
			{Key: "recentEpisodes", Priority: tooling.PriorityMedium},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			taskID := argString(args, "taskId")
			if taskID == "" {
				return tooling.Envelope{}, dispatch.NewError("INVALID_ARGUMENT", "pass a taskId", true, fmt.Errorf("taskId is required"))
			}
			claims, err := deps.Graph.AllClaims(ctx, pc.ProjectID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			var active, closed []graphmodel.Claim
			for _, c := range claims {
				if c.TaskID != taskID {
					continue
				}
				if c.Active() {
					active = append(active, c)
				} else {
					closed = append(closed, c)
				}
			}
			episodes, err := deps.Graph.QueryEpisodes(ctx, pc.ProjectID, nil, taskID, nil)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			return tooling.Ok(fmt.Sprintf("task %s: %d active claims, %d episodes", taskID, len(active), len(episodes)), map[string]any{
				"activeClaims":   active,
				"closedClaims":   closed,
				"recentEpisodes": episodes,
			}), nil
		},
	}
}

func taskUpdateTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "task_update",
		Category:    "progress",
		Description: "Record a task status change; status='completed' closes every active claim for the task and triggers reflect.",
		Required:    []string{"taskId", "agentId", "status"},
		OutputSchema: tooling.OutputSchema{
			{Key: "status", Priority: tooling.PriorityRequired},
			{Key: "claimsClosed", Priority: tooling.PriorityHigh},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			taskID := argString(args, "taskId")
			agentID := argString(args, "agentId")
			status := argString(args, "status")
			if status != "completed" {
				return tooling.Ok(fmt.Sprintf("task %s status recorded as %s", taskID, status), map[string]any{
					"status":       status,
					"claimsClosed": []string{},
				}), nil
			}
			closed, err := deps.Coordinator.CompleteTask(ctx, pc.ProjectID, taskID, agentID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			return tooling.Ok(fmt.Sprintf("task %s completed, %d claims closed", taskID, len(closed)), map[string]any{
				"status":       status,
				"claimsClosed": closed,
			}), nil
		},
	}
}

func featureStatusTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "feature_status",
		Category:    "progress",
		Description: "Summarize claim activity across every task sharing a feature prefix in taskId.",
		Required:    []string{"featureId"},
		OutputSchema: tooling.OutputSchema{
			{Key: "taskIds", Priority: tooling.PriorityRequired},
			{Key: "activeClaimCount", Priority: tooling.PriorityHigh},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			featureID := argString(args, "featureId")
			claims, err := deps.Graph.AllClaims(ctx, pc.ProjectID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			taskSet := map[string]bool{}
			activeCount := 0
			for _, c := range claims {
				if c.TaskID == "" || !hasPrefixMatch(c.TaskID, featureID) {
					continue
				}
				taskSet[c.TaskID] = true
				if c.Active() {
					activeCount++
				}
			}
			taskIDs := make([]string, 0, len(taskSet))
			for id := range taskSet {
				taskIDs = append(taskIDs, id)
			}
			return tooling.Ok(fmt.Sprintf("feature %s: %d tasks, %d active claims", featureID, len(taskIDs), activeCount), map[string]any{
				"taskIds":          taskIDs,
				"activeClaimCount": activeCount,
			}), nil
		},
	}
}

func hasPrefixMatch(taskID, featureID string) bool {
	if len(taskID) < len(featureID) {
		return false
	}
	return taskID[:len(featureID)] == featureID
}

func blockingIssuesTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "blocking_issues",
		Category:    "progress",
		Description: "List every currently active claim in the project, the set a new claim attempt could conflict with.",
		OutputSchema: tooling.OutputSchema{
			{Key: "activeClaims", Priority: tooling.PriorityRequired},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			claims, err := deps.Graph.AllClaims(ctx, pc.ProjectID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			var active []graphmodel.Claim
			for _, c := range claims {
				if c.Active() {
					active = append(active, c)
				}
			}
			return tooling.Ok(fmt.Sprintf("%d active claims", len(active)), map[string]any{"activeClaims": active}), nil
		},
	}
}
