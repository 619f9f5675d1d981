package tools

import (
	"context"
	"fmt"

	"github.com/codegraphd/codegraphd/internal/builder"
	"github.com/codegraphd/codegraphd/internal/dispatch"
	"github.com/codegraphd/codegraphd/internal/graphmodel"
	"github.com/codegraphd/codegraphd/internal/session"
	"github.com/codegraphd/codegraphd/internal/tooling"
)

func rebuildOptions(pc *session.ProjectContext, mode graphmodel.RebuildMode, changedFiles, ignorePatterns []string) builder.Options {
	return builder.Options{
		ProjectID:      pc.ProjectID,
		WorkspaceRoot:  pc.WorkspaceRoot,
		SourceDir:      pc.SourceDir,
		Mode:           mode,
		ChangedFiles:   changedFiles,
		IgnorePatterns: ignorePatterns,
	}
}

// graphTools implements graph_set_workspace, graph_query, graph_rebuild,
// graph_health, and diff_since (spec.md §4.2, §4.4).
func graphTools(deps Deps) []dispatch.Tool {
	return []dispatch.Tool{
		graphSetWorkspaceTool(deps),
		graphQueryTool(deps),
		graphRebuildTool(deps),
		graphHealthTool(deps),
		diffSinceTool(deps),
	}
}

func graphSetWorkspaceTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "graph_set_workspace",
		Category:    "graph",
		Description: "Resolve and select the active workspace/project for this session.",
		Required:    []string{"workspaceRoot"},
		Known:       []string{"workspaceRoot", "sourceDir", "projectId"},
		OutputSchema: tooling.OutputSchema{
			{Key: "workspaceRoot", Priority: tooling.PriorityRequired},
			{Key: "projectId", Priority: tooling.PriorityRequired},
			{Key: "sourceDir", Priority: tooling.PriorityHigh},
			{Key: "projectFingerprint", Priority: tooling.PriorityMedium},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			workspaceRoot := argString(args, "workspaceRoot")
			if workspaceRoot == "" {
				return tooling.Envelope{}, dispatch.NewError("INVALID_ARGUMENT", "pass an absolute or relative workspaceRoot path", true, fmt.Errorf("workspaceRoot is required"))
			}
			sessionID := session.SessionIDFrom(ctx)
			pc, previousProjectID, err := deps.Sessions.SetWorkspace(sessionID, workspaceRoot, argString(args, "sourceDir"), argString(args, "projectId"))
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("WORKSPACE_NOT_FOUND", "verify the path exists and is a directory", true, err)
			}
			if previousProjectID != "" && previousProjectID != pc.ProjectID && deps.Builder != nil {
				deps.Builder.InvalidateProject(previousProjectID)
			}
			if deps.Watchers != nil && deps.Builder != nil {
				projectID := pc.ProjectID
				sourceDir := pc.SourceDir
				if err := deps.Watchers.Ensure(ctx, projectID, sourceDir, nil, func(rebuildCtx context.Context, changedFiles []string) error {
					_, rebuildErr := deps.Builder.Rebuild(rebuildCtx, builder.Options{
						ProjectID:     projectID,
						WorkspaceRoot: pc.WorkspaceRoot,
						SourceDir:     sourceDir,
						Mode:          graphmodel.ModeIncremental,
						ChangedFiles:  changedFiles,
					})
					return rebuildErr
				}); err != nil {
					return tooling.Envelope{}, dispatch.NewError("WORKSPACE_NOT_FOUND", "verify sourceDir exists and is readable", false, err)
				}
			}
			return tooling.Ok(fmt.Sprintf("workspace set to %s (project %s)", pc.WorkspaceRoot, pc.ProjectID), map[string]any{
				"workspaceRoot":      pc.WorkspaceRoot,
				"sourceDir":          pc.SourceDir,
				"projectId":          pc.ProjectID,
				"projectFingerprint": pc.Fingerprint,
			}), nil
		},
	}
}

func graphQueryTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "graph_query",
		Category:    "graph",
		Description: "Run a read-only Cypher query scoped to the active project, the raw escape hatch below the hybrid retriever.",
		Required:    []string{"query"},
		Known:       []string{"query", "language", "profile"},
		OutputSchema: tooling.OutputSchema{
			{Key: "results", Priority: tooling.PriorityRequired},
			{Key: "count", Priority: tooling.PriorityRequired},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			query := argString(args, "query")
			if query == "" {
				return tooling.Envelope{}, dispatch.NewError("INVALID_ARGUMENT", "pass a Cypher query string", true, fmt.Errorf("query is required"))
			}
			rows, err := deps.Graph.ExecuteRead(ctx, query, map[string]any{"projectId": pc.ProjectID})
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "check the Cypher syntax against the graph schema", false, err)
			}
			results := make([]map[string]any, 0, len(rows))
			for _, r := range rows {
				results = append(results, map[string]any(r))
			}
			return tooling.Ok(fmt.Sprintf("query returned %d rows", len(results)), map[string]any{
				"results": results,
				"count":   len(results),
			}), nil
		},
	}
}

func graphRebuildTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "graph_rebuild",
		Category:    "graph",
		Description: "Trigger a full or incremental graph rebuild for the active project.",
		Synonyms:    map[string]string{"changedFiles": "files"},
		Known:       []string{"mode", "files", "ignorePatterns"},
		OutputSchema: tooling.OutputSchema{
			{Key: "status", Priority: tooling.PriorityRequired},
			{Key: "txId", Priority: tooling.PriorityRequired},
			{Key: "projectId", Priority: tooling.PriorityHigh},
			{Key: "filesAffected", Priority: tooling.PriorityMedium},
			{Key: "nodeCount", Priority: tooling.PriorityMedium},
			{Key: "durationMs", Priority: tooling.PriorityLow},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			mode := graphmodel.ModeFull
			if argString(args, "mode") == string(graphmodel.ModeIncremental) {
				mode = graphmodel.ModeIncremental
			}
			result, err := deps.Builder.Rebuild(ctx, rebuildOptions(pc, mode, argStringSlice(args, "files"), argStringSlice(args, "ignorePatterns")))
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "verify workspaceRoot and sourceDir exist on disk", false, err)
			}
			return tooling.Ok(fmt.Sprintf("rebuild %s: %d files affected", result.Status, len(result.FilesAffected)), map[string]any{
				"status":        result.Status,
				"txId":          result.TxID,
				"projectId":     result.ProjectID,
				"filesAffected": result.FilesAffected,
				"nodeCount":     result.NodeCount,
				"durationMs":    result.DurationMs,
			}), nil
		},
	}
}

func graphHealthTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "graph_health",
		Category:    "graph",
		Description: "Report graph transaction counts, the current node count, and watcher state. driftDetected is always false: no cached node count is kept to compare against.",
		OutputSchema: tooling.OutputSchema{
			{Key: "latestTxId", Priority: tooling.PriorityHigh},
			{Key: "txCount", Priority: tooling.PriorityHigh},
			{Key: "memgraphNodes", Priority: tooling.PriorityHigh},
			{Key: "embeddingsReady", Priority: tooling.PriorityMedium},
			{Key: "driftDetected", Priority: tooling.PriorityMedium},
			{Key: "watcherState", Priority: tooling.PriorityLow},
			{Key: "watcherPendingChanges", Priority: tooling.PriorityLow},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			stats, err := deps.Graph.LatestTxStats(ctx, pc.ProjectID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_DB_UNAVAILABLE", "check graph store connectivity", false, err)
			}
			nodeCount, err := deps.Graph.CurrentNodeCount(ctx, pc.ProjectID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_DB_UNAVAILABLE", "check graph store connectivity", false, err)
			}
			embeddingsReady := deps.Builder != nil && deps.Builder.EmbeddingsReady(pc.ProjectID)
			watcherState, watcherPending := "", 0
			if deps.Watchers != nil {
				if s, p, ok := deps.Watchers.State(pc.ProjectID); ok {
					watcherState, watcherPending = string(s), p
				}
			}
			return tooling.Ok(fmt.Sprintf("project %s: %d nodes across %d transactions", pc.ProjectID, nodeCount, stats.TxCount), map[string]any{
				"latestTxId":            stats.LatestTxID,
				"txCount":               stats.TxCount,
				"memgraphNodes":         nodeCount,
				"embeddingsReady":       embeddingsReady,
				"driftDetected":         false,
				"watcherState":          watcherState,
				"watcherPendingChanges": watcherPending,
			}), nil
		},
	}
}

func diffSinceTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "diff_since",
		Category:    "graph",
		Description: "List files changed since a given GRAPH_TX anchor.",
		Required:    []string{"txId"},
		OutputSchema: tooling.OutputSchema{
			{Key: "filesChanged", Priority: tooling.PriorityRequired},
			{Key: "sinceTxId", Priority: tooling.PriorityHigh},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			txID := argString(args, "txId")
			rows, err := deps.Graph.ExecuteRead(ctx, `
				MATCH (anchor:GRAPH_TX {id: $txId, projectId: $projectId})
				MATCH (t:GRAPH_TX {projectId: $projectId})
				WHERE t.timestamp > anchor.timestamp
				UNWIND t.filesAffected AS path
				RETURN DISTINCT path
			`, map[string]any{"txId": txID, "projectId": pc.ProjectID})
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			if len(rows) == 0 {
				anchorRows, aerr := deps.Graph.ExecuteRead(ctx, `MATCH (t:GRAPH_TX {id: $txId}) RETURN t.id AS id`, map[string]any{"txId": txID})
				if aerr == nil && len(anchorRows) == 0 {
					return tooling.Envelope{}, dispatch.NewError("DIFF_SINCE_ANCHOR_NOT_FOUND", "pass a txId from a prior graph_rebuild or graph_health result", true, fmt.Errorf("no GRAPH_TX with id %q", txID))
				}
			}
			files := make([]string, 0, len(rows))
			for _, r := range rows {
				if p, ok := r["path"].(string); ok {
					files = append(files, p)
				}
			}
			return tooling.Ok(fmt.Sprintf("%d files changed since %s", len(files), txID), map[string]any{
				"filesChanged": files,
				"sinceTxId":    txID,
			}), nil
		},
	}
}
