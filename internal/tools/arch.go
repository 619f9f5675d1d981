package tools

import (
	"context"
	"fmt"

	"github.com/codegraphd/codegraphd/internal/archrules"
	"github.com/codegraphd/codegraphd/internal/dispatch"
	"github.com/codegraphd/codegraphd/internal/tooling"
)

// archTools implements arch_validate and arch_suggest (SPEC_FULL.md
// §4.13), loading the declared rule file fresh on every call so edits to
// .codegraphd/arch-rules.toml take effect without a restart.
func archTools(deps Deps) []dispatch.Tool {
	return []dispatch.Tool{
		archValidateTool(deps),
		archSuggestTool(deps),
	}
}

func archValidateTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "arch_validate",
		Category:    "architecture",
		Description: "Check the current import graph against .codegraphd/arch-rules.toml's forbidden-layer rules.",
		OutputSchema: tooling.OutputSchema{
			{Key: "ok", Priority: tooling.PriorityRequired},
			{Key: "violations", Priority: tooling.PriorityHigh},
			{Key: "message", Priority: tooling.PriorityMedium},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			rules, err := archrules.Load(pc.WorkspaceRoot)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("ARCH_RULES_INVALID", "fix the TOML syntax in .codegraphd/arch-rules.toml", true, err)
			}
			outcome, err := deps.ArchRules.Validate(ctx, pc.ProjectID, rules)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			summary := "no architecture rule violations"
			if len(outcome.Violations) > 0 {
				summary = fmt.Sprintf("%d architecture rule violation(s)", len(outcome.Violations))
			}
			return tooling.Ok(summary, map[string]any{
				"ok":         outcome.OK,
				"violations": outcome.Violations,
				"message":    outcome.FormatMessage(),
			}), nil
		},
	}
}

func archSuggestTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "arch_suggest",
		Category:    "architecture",
		Description: "Propose a forbidden-layer rule set by scanning the current graph for cross-layer imports.",
		OutputSchema: tooling.OutputSchema{
			{Key: "rules", Priority: tooling.PriorityRequired},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			rules, err := deps.ArchRules.Suggest(ctx, pc.ProjectID)
			if err != nil {
				return tooling.Envelope{}, dispatch.NewError("GRAPH_QUERY_FAILED", "", false, err)
			}
			return tooling.Ok(fmt.Sprintf("%d candidate rules proposed", len(rules)), map[string]any{"rules": rules}), nil
		},
	}
}
