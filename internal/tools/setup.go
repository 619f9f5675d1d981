package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codegraphd/codegraphd/internal/archrules"
	"github.com/codegraphd/codegraphd/internal/dispatch"
	"github.com/codegraphd/codegraphd/internal/tooling"
)

// setupTools implements init_project_setup and setup_copilot_instructions:
// workspace bootstrap tools with no graph-model equivalent, so they write
// plain files under workspaceRoot the way internal/config resolves and
// creates its own config directory.
func setupTools(deps Deps) []dispatch.Tool {
	return []dispatch.Tool{
		initProjectSetupTool(deps),
		setupCopilotInstructionsTool(deps),
	}
}

const defaultArchRulesTemplate = `# forbidden import rules (arch_validate, arch_suggest)
# [[forbidden]]
# from = "internal/handlers"
# to = "internal/storage"
# severity = "error" # or "warning"
`

func initProjectSetupTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "init_project_setup",
		Category:    "setup",
		Description: "Create the .codegraphd config directory and a starter arch-rules.toml under the active workspace.",
		OutputSchema: tooling.OutputSchema{
			{Key: "created", Priority: tooling.PriorityRequired},
			{Key: "skipped", Priority: tooling.PriorityMedium},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			configDir := filepath.Join(pc.WorkspaceRoot, ".codegraphd")
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				return tooling.Envelope{}, dispatch.NewError("WORKSPACE_NOT_FOUND", "verify workspaceRoot is writable", false, err)
			}
			rulesPath := filepath.Join(pc.WorkspaceRoot, archrules.RulesFile)
			var created, skipped []string
			if _, err := os.Stat(rulesPath); os.IsNotExist(err) {
				if err := os.WriteFile(rulesPath, []byte(defaultArchRulesTemplate), 0o644); err != nil {
					return tooling.Envelope{}, dispatch.NewError("WORKSPACE_NOT_FOUND", "verify workspaceRoot is writable", false, err)
				}
				created = append(created, archrules.RulesFile)
			} else {
				skipped = append(skipped, archrules.RulesFile)
			}
			return tooling.Ok(fmt.Sprintf("project setup complete for %s", pc.WorkspaceRoot), map[string]any{
				"created": created,
				"skipped": skipped,
			}), nil
		},
	}
}

const copilotInstructionsTemplate = `# Copilot instructions

This workspace is indexed by codegraphd. Prefer its MCP tools over ad-hoc
shell search when exploring or modifying this codebase:

- graph_query / semantic_search / find_similar_code for locating code
- code_explain for understanding a function or class before changing it
- impact_analyze / test_select before editing, to find affected tests
- agent_claim / agent_release when working alongside other agents
- context_pack to pull a budgeted bundle of relevant code and history for a task
`

func setupCopilotInstructionsTool(deps Deps) dispatch.Tool {
	return dispatch.Tool{
		Name:        "setup_copilot_instructions",
		Category:    "setup",
		Description: "Write a .github/copilot-instructions.md pointing editor agents at this server's tool surface.",
		Known:       []string{"overwrite"},
		OutputSchema: tooling.OutputSchema{
			{Key: "path", Priority: tooling.PriorityRequired},
			{Key: "written", Priority: tooling.PriorityHigh},
		},
		Handler: func(ctx context.Context, args map[string]any) (tooling.Envelope, error) {
			pc, err := projectContext(ctx, deps.Sessions)
			if err != nil {
				return tooling.Envelope{}, err
			}
			dir := filepath.Join(pc.WorkspaceRoot, ".github")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return tooling.Envelope{}, dispatch.NewError("WORKSPACE_NOT_FOUND", "verify workspaceRoot is writable", false, err)
			}
			path := filepath.Join(dir, "copilot-instructions.md")
			written := true
			if _, err := os.Stat(path); err == nil && !argBool(args, "overwrite") {
				written = false
			} else if err := os.WriteFile(path, []byte(copilotInstructionsTemplate), 0o644); err != nil {
				return tooling.Envelope{}, dispatch.NewError("WORKSPACE_NOT_FOUND", "verify workspaceRoot is writable", false, err)
			}
			summary := "copilot instructions written"
			if !written {
				summary = "copilot instructions already present, left unchanged"
			}
			return tooling.Ok(summary, map[string]any{
				"path":    path,
				"written": written,
			}), nil
		},
	}
}
