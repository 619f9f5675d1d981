package tools

import (
	"context"
	"fmt"

	"github.com/codegraphd/codegraphd/internal/dispatch"
	"github.com/codegraphd/codegraphd/internal/tooling"
)

// metaTools implements contract_validate and tools_list, the two tools
// that operate on the dispatcher itself rather than a domain engine.
func metaTools(d *dispatch.Dispatcher) []dispatch.Tool {
	return []dispatch.Tool{
		contractValidateTool(d),
		toolsListTool(d),
	}
}

func contractValidateTool(d *dispatch.Dispatcher) dispatch.Tool {
	return dispatch.Tool{
		Name:        "contract_validate",
		Category:    "meta",
		Description: "Check a proposed tool call's arguments against its declared contract without invoking it.",
		Required:    []string{"toolName", "arguments"},
		OutputSchema: tooling.OutputSchema{
			{Key: "valid", Priority: tooling.PriorityRequired},
			{Key: "missingRequired", Priority: tooling.PriorityHigh},
			{Key: "extraFields", Priority: tooling.PriorityMedium},
			{Key: "warnings", Priority: tooling.PriorityMedium},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			toolName := argString(args, "toolName")
			if toolName == "" {
				return tooling.Envelope{}, dispatch.NewError("INVALID_ARGUMENT", "pass the toolName to validate", true, fmt.Errorf("toolName is required"))
			}
			report := d.ContractValidate(toolName, argMap(args, "arguments"))
			summary := "contract satisfied"
			if !report.Valid {
				summary = "contract violated"
			}
			return tooling.Ok(summary, map[string]any{
				"valid":           report.Valid,
				"missingRequired": report.MissingRequired,
				"extraFields":     report.ExtraFields,
				"warnings":        report.Warnings,
			}), nil
		},
	}
}

func toolsListTool(d *dispatch.Dispatcher) dispatch.Tool {
	return dispatch.Tool{
		Name:        "tools_list",
		Category:    "meta",
		Description: "List every tool registered on this dispatcher, with category and description.",
		OutputSchema: tooling.OutputSchema{
			{Key: "tools", Priority: tooling.PriorityRequired},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			var listing []map[string]any
			for _, t := range d.List() {
				listing = append(listing, map[string]any{
					"name":        t.Name,
					"category":    t.Category,
					"description": t.Description,
				})
			}
			return tooling.Ok(fmt.Sprintf("%d tools registered", len(listing)), map[string]any{"tools": listing}), nil
		},
	}
}
