package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// runInfo handles the "codegraphd info" subcommand.
// It prints general MCP configuration information and, with flags,
// client-specific configuration snippets.
func runInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	opencode := fs.Bool("opencode", false, "show OpenCode MCP client configuration")
	claude := fs.Bool("claude", false, "show Claude Desktop MCP client configuration")
	cursor := fs.Bool("cursor", false, "show Cursor MCP client configuration")
	fs.Parse(args)

	switch {
	case *opencode:
		printOpenCodeConfig()
	case *claude:
		printClaudeConfig()
	case *cursor:
		printCursorConfig()
	default:
		printGeneralInfo()
	}
}

func printGeneralInfo() {
	fmt.Fprintf(os.Stdout, `codegraphd %s — agent-memory and code-intelligence MCP server

codegraphd indexes a codebase into a bi-temporal property graph (Memgraph)
plus a vector index (Qdrant), and serves it to AI coding agents through a
Model Context Protocol tool surface: hybrid code retrieval, architecture
validation, test selection, episodic memory, and multi-agent claim
coordination, all scoped to a session's active workspace.

TRANSPORT MODES

  stdio (default)
    Communicates over stdin/stdout using JSON-RPC 2.0. Used when launched
    as a subprocess by an MCP client. A single implicit session.

  http
    Runs as a standalone HTTP server (MCP Streamable HTTP transport,
    spec 2025-03-26), one workspace per Mcp-Session-Id header.

    Endpoint:       POST/GET /mcp
    Health check:   GET /health
    Agent card:     GET /.well-known/agent.json
    Default port:   21452 (codegraphd.toml [transport], or $CODEGRAPHD_PORT)

TOOLS (39)

  Graph (5):         graph_query, graph_rebuild, graph_set_workspace,
                      graph_health, diff_since
  Code (7):          code_explain, find_pattern, semantic_search,
                      find_similar_code, code_clusters, semantic_diff,
                      semantic_slice
  Architecture (2):  arch_validate, arch_suggest
  Testing (5):       test_select, test_categorize, impact_analyze,
                      test_run, suggest_tests
  Progress (4):      progress_query, task_update, feature_status,
                      blocking_issues
  Memory (4):        episode_add, episode_recall, decision_query, reflect
  Coordination (4):  agent_claim, agent_release, agent_status,
                      coordination_overview
  Context (1):       context_pack
  Docs (3):          index_docs, search_docs, ref_query
  Setup (2):         init_project_setup, setup_copilot_instructions
  Meta (2):          contract_validate, tools_list

PROMPTS (2)

  codegraphd-guide      Workspace setup, graph rebuilds, retrieval,
                        coordination
  codegraphd-workflow   Step-by-step guide for working one task

RESOURCES (3)

  codegraphd://entity-model         Node/relationship/bi-temporal reference
  codegraphd://contract-reference   Response envelope and error code reference
  codegraphd://tool-reference       Quick reference for all 39 tools

GETTING STARTED

  1. Bootstrap (once per workspace):
     - init_project_setup         creates .codegraphd/ and a starter
                                   arch-rules.toml
     - setup_copilot_instructions writes .github/copilot-instructions.md

  2. Select a workspace:          graph_set_workspace

  3. Build the graph:             graph_rebuild (mode=full the first time;
                                   the file watcher keeps it current after)

  4. Work the codebase:           semantic_search / code_explain /
                                   impact_analyze / context_pack, claiming
                                   files with agent_claim before editing

CLIENT CONFIGURATION

  To see configuration for a specific MCP client, run:

    codegraphd info --opencode    OpenCode (.opencode.json)
    codegraphd info --claude      Claude Desktop (claude_desktop_config.json)
    codegraphd info --cursor      Cursor (.cursor/mcp.json)
`, Version)
}

func printOpenCodeConfig() {
	printStdioConfig("OpenCode", ".opencode.json or opencode.json", `{
  "mcpServers": {
    "codegraphd": {
      "command": "codegraphd"
    }
  }
}`)

	printHTTPConfig("OpenCode", ".opencode.json or opencode.json", `{
  "mcpServers": {
    "codegraphd": {
      "type": "streamable-http",
      "url": "http://your-codegraphd-server:21452/mcp"
    }
  }
}`)
}

func printClaudeConfig() {
	printStdioConfig("Claude Desktop", "claude_desktop_config.json", `{
  "mcpServers": {
    "codegraphd": {
      "command": "codegraphd"
    }
  }
}`)

	printHTTPConfig("Claude Desktop", "claude_desktop_config.json", `{
  "mcpServers": {
    "codegraphd": {
      "type": "streamable-http",
      "url": "http://your-codegraphd-server:21452/mcp"
    }
  }
}`)
}

func printCursorConfig() {
	printStdioConfig("Cursor", ".cursor/mcp.json", `{
  "mcpServers": {
    "codegraphd": {
      "command": "codegraphd"
    }
  }
}`)

	printHTTPConfig("Cursor", ".cursor/mcp.json", `{
  "mcpServers": {
    "codegraphd": {
      "type": "streamable-http",
      "url": "http://your-codegraphd-server:21452/mcp"
    }
  }
}`)
}

func printStdioConfig(client, file, config string) {
	fmt.Fprintf(os.Stdout, `%s — stdio mode
%s

Add to %s:

%s

codegraphd runs as a subprocess — no separate server to manage. The
client calls graph_set_workspace first to select the project; other
tools report an error until it has.

`, client, strings.Repeat("─", len(client)+14), file, config)
}

func printHTTPConfig(client, file, config string) {
	fmt.Fprintf(os.Stdout, `%s — HTTP mode (remote server)
%s

Add to %s:

%s

Each client connection gets its own Mcp-Session-Id and its own active
workspace; call graph_set_workspace before any other tool.

`, client, strings.Repeat("─", len(client)+30), file, config)
}
