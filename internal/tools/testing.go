package tools

import (
	"context"
	"fmt"

	"github.com/codegraphd/codegraphd/internal/cmdexec"
	"github.com/codegraphd/codegraphd/internal/dispatch"
	"github.com/codegraphd/codegraphd/internal/tooling"
)

// testingTools implements test_run, test_select, test_categorize,
// impact_analyze, and suggest_tests (SPEC_FULL.md §4.12), all thin
// wrappers over internal/cmdexec and its graphstore impact-analysis
// queries.
func testingTools(deps Deps) []dispatch.Tool {
	return []dispatch.Tool{
		testRunTool(deps),
		testSelectTool(deps),
		testCategorizeTool(deps),
		impactAnalyzeTool(deps),
		suggestTestsTool(deps),
	}
}

func testRunTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "test_run",
		Category:    "testing",
		Description: "Run a shell command under a timeout, capturing truncated stdout/stderr.",
		Required:    []string{"command"},
		Known:       []string{"command", "cwd", "timeoutMs"},
		OutputSchema: tooling.OutputSchema{
			{Key: "exitCode", Priority: tooling.PriorityRequired},
			{Key: "stdout", Priority: tooling.PriorityHigh},
			{Key: "stderr", Priority: tooling.PriorityHigh},
			{Key: "durationMs", Priority: tooling.PriorityMedium},
			{Key: "truncated", Priority: tooling.PriorityLow},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			command := argString(args, "command")
			if command == "" {
				return tooling.Envelope{}, dispatch.NewError("INVALID_ARGUMENT", "pass a shell command string", true, fmt.Errorf("command is required"))
			}
			result, err := deps.Commands.Run(ctx, cmdexec.RunInput{
				Command:   command,
				Cwd:       argString(args, "cwd"),
				TimeoutMS: argInt(args, "timeoutMs", 0),
			})
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("COMMAND_EXECUTION_FAILED", "check the command is runnable from the workspace root", false, err)
			}
			env := tooling.Ok(fmt.Sprintf("exit %d in %dms", result.ExitCode, result.DurationMS), map[string]any{
				"exitCode":   result.ExitCode,
				"stdout":     result.Stdout,
				"stderr":     result.Stderr,
				"durationMs": result.DurationMS,
				"truncated":  result.Truncated,
			})
			if result.ContractWarning != "" {
				env = env.WithWarning(result.ContractWarning)
			}
			return env, nil
		},
	}
}

func testSelectTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "test_select",
		Category:    "testing",
		Description: "Select candidate test files that import (directly or at depth 2) a set of changed files.",
		Required:    []string{"affectedPaths"},
		Synonyms:    map[string]string{"changedFiles": "affectedPaths", "files": "affectedPaths"},
		OutputSchema: tooling.OutputSchema{
			{Key: "tests", Priority: tooling.PriorityRequired},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			paths := argStringSlice(args, "affectedPaths")
			if len(paths) == 0 {
				return tooling.Envelope{}, dispatch.NewError("INVALID_ARGUMENT", "pass at least one affected file path", true, fmt.Errorf("affectedPaths is required"))
			}
			tests, err := deps.Commands.Select(ctx, cmdexec.SelectInput{ProjectID: pc.ProjectID, AffectedPaths: paths})
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			return tooling.Ok(fmt.Sprintf("%d candidate test files selected", len(tests)), map[string]any{"tests": tests}), nil
		},
	}
}

func testCategorizeTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "test_categorize",
		Category:    "testing",
		Description: "Report whether a path is a recognized test file and which language convention matched.",
		Required:    []string{"path"},
		OutputSchema: tooling.OutputSchema{
			{Key: "isTest", Priority: tooling.PriorityRequired},
			{Key: "language", Priority: tooling.PriorityHigh},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			path := argString(args, "path")
			if path == "" {
				return tooling.Envelope{}, dispatch.NewError("INVALID_ARGUMENT", "pass a file path", true, fmt.Errorf("path is required"))
			}
			lang, ok := deps.Commands.Categorize(path)
			summary := fmt.Sprintf("%s is not a recognized test file", path)
			if ok {
				summary = fmt.Sprintf("%s categorized as a %s test", path, lang)
			}
			return tooling.Ok(summary, map[string]any{"isTest": ok, "language": lang}), nil
		},
	}
}

func impactAnalyzeTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "impact_analyze",
		Category:    "testing",
		Description: "List files that transitively import a set of changed files, up to a bounded depth.",
		Required:    []string{"changedFiles"},
		Synonyms:    map[string]string{"files": "changedFiles", "affectedPaths": "changedFiles"},
		Known:       []string{"changedFiles", "maxDepth"},
		OutputSchema: tooling.OutputSchema{
			{Key: "affectedFiles", Priority: tooling.PriorityRequired},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			changed := argStringSlice(args, "changedFiles")
			if len(changed) == 0 {
				return tooling.Envelope{}, dispatch.NewError("INVALID_ARGUMENT", "pass at least one changed file path", true, fmt.Errorf("changedFiles is required"))
			}
			maxDepth := argInt(args, "maxDepth", 2)
			affected, err := deps.Graph.ImportersOf(ctx, pc.ProjectID, changed, maxDepth)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			return tooling.Ok(fmt.Sprintf("%d files transitively import the changed set", len(affected)), map[string]any{"affectedFiles": affected}), nil
		},
	}
}

func suggestTestsTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "suggest_tests",
		Category:    "testing",
		Description: "Suggest test names for exported functions with no detected test coverage.",
		OutputSchema: tooling.OutputSchema{
			{Key: "suggestions", Priority: tooling.PriorityRequired},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			suggestions, err := deps.Commands.Suggest(ctx, cmdexec.SuggestInput{ProjectID: pc.ProjectID})
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			return tooling.Ok(fmt.Sprintf("%d uncovered exported functions", len(suggestions)), map[string]any{"suggestions": suggestions}), nil
		},
	}
}
