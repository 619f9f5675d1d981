package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/codegraphd/codegraphd/internal/dispatch"
	"github.com/codegraphd/codegraphd/internal/graphmodel"
	"github.com/codegraphd/codegraphd/internal/retrieval"
	"github.com/codegraphd/codegraphd/internal/tooling"
)

// codeTools implements the code-intelligence tool group: code_explain,
// find_pattern, semantic_search, find_similar_code, code_clusters,
// semantic_diff, semantic_slice — all thin reads over the graph/vector
// stores and the hybrid retriever, grounded on spec.md §4.5's rankers and
// the SUPERSEDES chain described in §4.4.
func codeTools(deps Deps) []dispatch.Tool {
	return []dispatch.Tool{
		codeExplainTool(deps),
		findPatternTool(deps),
		semanticSearchTool(deps),
		findSimilarCodeTool(deps),
		codeClustersTool(deps),
		semanticDiffTool(deps),
		semanticSliceTool(deps),
	}
}

func codeExplainTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "code_explain",
		Category:    "code",
		Description: "Explain a function or class: its summary, source excerpt, and one-hop callers/callees.",
		Required:    []string{"symbolId"},
		OutputSchema: tooling.OutputSchema{
			{Key: "symbol", Priority: tooling.PriorityRequired},
			{Key: "source", Priority: tooling.PriorityHigh},
			{Key: "callers", Priority: tooling.PriorityMedium},
			{Key: "callees", Priority: tooling.PriorityMedium},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			symbolID := argString(args, "symbolId")
			sym, err := deps.Graph.SymbolByID(ctx, symbolID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			if sym == nil {
				return tooling.Envelope{}, dispatch.NewError("ELEMENT_NOT_FOUND", "pass a symbolId from a graph_query or semantic_search result", true, fmt.Errorf("no symbol %q", symbolID))
			}
			edgesOut, _ := deps.Graph.EdgesFrom(ctx, symbolID)
			edgesIn, _ := deps.Graph.EdgesTo(ctx, symbolID)
			var callers, callees []string
			for _, e := range edgesIn {
				if e.Rel == graphmodel.RelCalls {
					callers = append(callers, e.ID)
				}
			}
			for _, e := range edgesOut {
				if e.Rel == graphmodel.RelCalls {
					callees = append(callees, e.ID)
				}
			}
			return tooling.Ok(fmt.Sprintf("%s (%s): %s", sym.Name, sym.Kind, sym.Summary), map[string]any{
				"symbol":  sym,
				"source":  readSourceExcerpt(sym.FilePath, sym.StartLine, sym.EndLine),
				"callers": callers,
				"callees": callees,
			}), nil
		},
	}
}

func findPatternTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "find_pattern",
		Category:    "code",
		Description: "Find structural code patterns; currently supports type='circular' for import cycles.",
		Known:       []string{"type"},
		OutputSchema: tooling.OutputSchema{
			{Key: "pattern", Priority: tooling.PriorityRequired},
			{Key: "matches", Priority: tooling.PriorityRequired},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			patternType := argString(args, "type")
			if patternType == "" {
				patternType = "circular"
			}
			if patternType != "circular" {
				return tooling.Envelope{}, dispatch.NewError("INVALID_ARGUMENT", "type currently only supports 'circular'", true, fmt.Errorf("unsupported pattern type %q", patternType))
			}
			pairs, err := deps.Graph.FileLevelEdges(ctx, pc.ProjectID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			edges := make([]retrieval.ImportEdge, 0, len(pairs))
			for _, p := range pairs {
				edges = append(edges, retrieval.ImportEdge{FromFileID: p.FromPath, ToFileID: p.ToPath})
			}
			cycles := retrieval.FindCircularImports(edges)
			return tooling.Ok(fmt.Sprintf("%d circular import chains found", len(cycles)), map[string]any{
				"pattern": "circular",
				"matches": cycles,
			}), nil
		},
	}
}

func semanticSearchTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "semantic_search",
		Category:    "code",
		Description: "Hybrid (vector + lexical + graph expansion) search over code, fused with RRF.",
		Required:    []string{"query"},
		Known:       []string{"query", "mode", "asOf", "profile"},
		OutputSchema: tooling.OutputSchema{
			{Key: "symbols", Priority: tooling.PriorityRequired},
			{Key: "communities", Priority: tooling.PriorityMedium},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			query := argString(args, "query")
			if query == "" {
				return tooling.Envelope{}, dispatch.NewError("INVALID_ARGUMENT", "pass a natural-language query", true, fmt.Errorf("query is required"))
			}
			mode := retrieval.ModeHybrid
			switch argString(args, "mode") {
			case string(retrieval.ModeLocal):
				mode = retrieval.ModeLocal
			case string(retrieval.ModeGlobal):
				mode = retrieval.ModeGlobal
			}
			if deps.Retriever == nil {
				return tooling.Envelope{}, dispatch.NewError("HYBRID_RETRIEVER_UNAVAILABLE", "graph_set_workspace and graph_rebuild must run before search", false, fmt.Errorf("retriever not wired"))
			}
			result, err := deps.Retriever.Query(ctx, query, retrieval.QueryOptions{ProjectID: pc.ProjectID, Mode: mode})
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("HYBRID_RETRIEVER_UNAVAILABLE", "", false, err)
			}
			return tooling.Ok(fmt.Sprintf("%d symbol hits, %d community hits", len(result.Symbols), len(result.Communities)), map[string]any{
				"symbols":     result.Symbols,
				"communities": result.Communities,
			}), nil
		},
	}
}

func findSimilarCodeTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "find_similar_code",
		Category:    "code",
		Description: "Find the symbols whose summary embedding is nearest to the given symbol's.",
		Required:    []string{"symbolId"},
		Known:       []string{"symbolId", "limit"},
		OutputSchema: tooling.OutputSchema{
			{Key: "matches", Priority: tooling.PriorityRequired},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			if deps.Vectors == nil {
				return tooling.Envelope{}, dispatch.NewError("HYBRID_RETRIEVER_UNAVAILABLE", "vector store not configured", false, fmt.Errorf("vector store not wired"))
			}
			symbolID := argString(args, "symbolId")
			sym, err := deps.Graph.SymbolByID(ctx, symbolID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			if sym == nil {
				return tooling.Envelope{}, dispatch.NewError("ELEMENT_NOT_FOUND", "pass a symbolId from a graph_query or semantic_search result", true, fmt.Errorf("no symbol %q", symbolID))
			}
			limit := argInt(args, "limit", 10)
			hits, err := deps.Vectors.Search(ctx, nil, uint64(limit+1))
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("HYBRID_RETRIEVER_UNAVAILABLE", "", false, err)
			}
			matches := make([]retrieval.Hit, 0, len(hits))
			for _, h := range hits {
				if h.ID == symbolID {
					continue
				}
				matches = append(matches, retrieval.Hit{ID: h.ID, Score: float64(h.Score)})
				if len(matches) >= limit {
					break
				}
			}
			return tooling.Ok(fmt.Sprintf("%d similar symbols found", len(matches)), map[string]any{"matches": matches}), nil
		},
	}
}

func codeClustersTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "code_clusters",
		Category:    "code",
		Description: "List detected file communities (directory-seeded, density-merged clusters).",
		OutputSchema: tooling.OutputSchema{
			{Key: "communities", Priority: tooling.PriorityRequired},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			communities, err := deps.Communities.Detect(ctx, pc.ProjectID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			return tooling.Ok(fmt.Sprintf("%d communities detected", len(communities)), map[string]any{"communities": communities}), nil
		},
	}
}

func semanticDiffTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "semantic_diff",
		Category:    "code",
		Description: "Compare a symbol's current version against its immediate SUPERSEDES predecessor.",
		Required:    []string{"symbolId"},
		OutputSchema: tooling.OutputSchema{
			{Key: "current", Priority: tooling.PriorityRequired},
			{Key: "previousId", Priority: tooling.PriorityHigh},
			{Key: "summaryChanged", Priority: tooling.PriorityMedium},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			symbolID := argString(args, "symbolId")
			sym, err := deps.Graph.SymbolByID(ctx, symbolID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			if sym == nil {
				return tooling.Envelope{}, dispatch.NewError("SEMANTIC_DIFF_ELEMENT_NOT_FOUND", "pass a current symbolId", true, fmt.Errorf("no symbol %q", symbolID))
			}
			outgoing, err := deps.Graph.EdgesFrom(ctx, symbolID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			var previousID string
			for _, e := range outgoing {
				if e.Rel == graphmodel.RelSupersedes {
					previousID = e.ID
					break
				}
			}
			summaryChanged := true
			if previousID == "" {
				summaryChanged = false
			}
			return tooling.Ok(fmt.Sprintf("%s has %d prior version(s)", sym.Name, boolToCount(previousID != "")), map[string]any{
				"current":        sym,
				"previousId":     previousID,
				"summaryChanged": summaryChanged,
			}), nil
		},
	}
}

func semanticSliceTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "semantic_slice",
		Category:    "code",
		Description: "Return the minimal set of symbols a given symbol transitively calls (a forward call slice).",
		Required:    []string{"symbolId"},
		Known:       []string{"symbolId", "maxDepth"},
		OutputSchema: tooling.OutputSchema{
			{Key: "slice", Priority: tooling.PriorityRequired},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			root := argString(args, "symbolId")
			sym, err := deps.Graph.SymbolByID(ctx, root)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			if sym == nil {
				return tooling.Envelope{}, dispatch.NewError("SEMANTIC_SLICE_NOT_FOUND", "pass a valid symbolId", true, fmt.Errorf("no symbol %q", root))
			}
			maxDepth := argInt(args, "maxDepth", 3)
			visited := map[string]bool{root: true}
			frontier := []string{root}
			for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
				var next []string
				for _, id := range frontier {
					edges, err := deps.Graph.EdgesFrom(ctx, id)
					if err != nil {
						continue
					}
					for _, e := range edges {
						if e.Rel == graphmodel.RelCalls && !visited[e.ID] {
							visited[e.ID] = true
							next = append(next, e.ID)
						}
					}
				}
				frontier = next
			}
			slice := make([]string, 0, len(visited))
			for id := range visited {
				slice = append(slice, id)
			}
			return tooling.Ok(fmt.Sprintf("slice of %d symbols from %s", len(slice), sym.Name), map[string]any{"slice": slice}), nil
		},
	}
}

func readSourceExcerpt(path string, start, end int) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	lines := strings.Split(string(content), "\n")
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}

func boolToCount(b bool) int {
	if b {
		return 1
	}
	return 0
}
