package tools

import (
	"context"
	"fmt"

	"github.com/codegraphd/codegraphd/internal/dispatch"
	"github.com/codegraphd/codegraphd/internal/tooling"
)

// docsTools implements index_docs, search_docs, and ref_query (SPEC_FULL.md
// §4.10), wrapping internal/docs' Markdown ingestion and BM25-Plus search.
func docsTools(deps Deps) []dispatch.Tool {
	return []dispatch.Tool{
		indexDocsTool(deps),
		searchDocsTool(deps),
		refQueryTool(deps),
	}
}

func indexDocsTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "index_docs",
		Category:    "docs",
		Description: "Ingest Markdown files or directories, splitting each document into SECTION nodes on ATX headings.",
		Required:    []string{"paths"},
		Synonyms:    map[string]string{"path": "paths"},
		OutputSchema: tooling.OutputSchema{
			{Key: "indexed", Priority: tooling.PriorityRequired},
			{Key: "failures", Priority: tooling.PriorityHigh},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			paths := argStringSlice(args, "paths")
			if len(paths) == 0 {
				return tooling.Envelope{}, dispatch.NewError("INVALID_ARGUMENT", "pass at least one file or directory path", true, fmt.Errorf("paths is required"))
			}
			result, err := deps.Docs.Ingest(ctx, pc.ProjectID, paths, "")
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			env := tooling.Ok(fmt.Sprintf("%d documents indexed, %d failed", len(result.Indexed), len(result.Failures)), map[string]any{
				"indexed":  result.Indexed,
				"failures": result.Failures,
			})
			if len(result.Indexed) == 0 && len(result.Failures) > 0 {
				env.OK = false
				env.ErrorCode = "INDEX_DOCS_ALL_FAILED"
			}
			return env, nil
		},
	}
}

func searchDocsTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "search_docs",
		Category:    "docs",
		Description: "Search ingested documentation sections with the shared BM25-Plus ranker.",
		Required:    []string{"query"},
		Known:       []string{"query", "limit"},
		OutputSchema: tooling.OutputSchema{
			{Key: "results", Priority: tooling.PriorityRequired},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			query := argString(args, "query")
			if query == "" {
				return tooling.Envelope{}, dispatch.NewError("INVALID_ARGUMENT", "pass a search query", true, fmt.Errorf("query is required"))
			}
			results := deps.Docs.Search(query, argInt(args, "limit", 0))
			return tooling.Ok(fmt.Sprintf("%d documentation sections matched", len(results)), map[string]any{"results": results}), nil
		},
	}
}

func refQueryTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "ref_query",
		Category:    "docs",
		Description: "List every ingested document and the sections of the one identified by documentId.",
		Known:       []string{"documentId"},
		OutputSchema: tooling.OutputSchema{
			{Key: "documents", Priority: tooling.PriorityRequired},
			{Key: "sections", Priority: tooling.PriorityMedium},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			documents, err := deps.Graph.AllDocuments(ctx, pc.ProjectID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			documentID := argString(args, "documentId")
			if documentID == "" {
				return tooling.Ok(fmt.Sprintf("%d documents indexed", len(documents)), map[string]any{"documents": documents}), nil
			}
			sections, err := deps.Graph.SectionsForDocument(ctx, documentID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			return tooling.Ok(fmt.Sprintf("%d sections in document %s", len(sections), documentID), map[string]any{
				"documents": documents,
				"sections":  sections,
			}), nil
		},
	}
}
