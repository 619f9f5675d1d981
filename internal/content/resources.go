package content

import "github.com/codegraphd/codegraphd/internal/mcp"

// --- codegraphd://entity-model resource ---

// EntityModelResource exposes the graph's node and relationship vocabulary
// as a reference resource. Agents can read this to write graph_query
// Cypher directly instead of guessing label names.
type EntityModelResource struct{}

func (r *EntityModelResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "codegraphd://entity-model",
		Name:        "codegraphd Entity Model",
		Description: "Node labels, relationship types, and bi-temporal fields used in the codegraphd graph",
		MimeType:    "text/markdown",
	}
}

func (r *EntityModelResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{URI: "codegraphd://entity-model", MimeType: "text/markdown", Text: entityModelContent},
		},
	}, nil
}

const entityModelContent = `# codegraphd entity model

## Node labels

| Label      | Identity                          | Notes |
|------------|------------------------------------|-------|
| FILE       | path + projectId                   | bi-temporal, content-hashed |
| FUNCTION   | SCIP symbol id                     | bi-temporal, has a Summary |
| CLASS      | SCIP symbol id                     | bi-temporal, has a Summary |
| IMPORT     | source string + fileId              | points at a resolved FILE when known |
| DOCUMENT   | relativePath + projectId            | Markdown source |
| SECTION    | documentId + heading                | split on ATX headings |
| EPISODE    | uuid                                | OBSERVATION / DECISION / ERROR |
| LEARNING   | uuid                                | produced by reflect |
| CLAIM      | uuid                                | agent lock on a target symbol/file |
| COMMUNITY  | projectId:community:n               | produced by code_clusters |
| GRAPH_TX   | uuid                                | one per rebuild |

## Bi-temporal fields (FILE, FUNCTION, CLASS)

Every version carries validFrom/validTo (application time) and
createdAt/txId (system time). The current version of a symbol or file
has validTo IS NULL. A rebuild never deletes a node: it closes the
current version (sets validTo) and writes a new one, linked by
SUPERSEDES.

## Relationship types

CONTAINS, IMPORTS, REFERENCES, CALLS, EXPORTS, INVOLVES, NEXT_EPISODE,
APPLIES_TO, TARGETS, SUPERSEDES, BELONGS_TO, AFFECTS, DOC_DESCRIBES,
NEXT_SECTION, SECTION_OF, DERIVED_FROM.

SUPERSEDES points from the new current version to the closed old one:
(new)-[:SUPERSEDES {txId}]->(old). To find a symbol's predecessor, follow
an outgoing SUPERSEDES edge, not an incoming one.
`

// --- codegraphd://contract-reference resource ---

// ContractReferenceResource documents the response envelope and output
// schema contract every tool follows, the generalization of the
// teacher's guardrail reference (tool output shape rather than
// commit-time policy checks).
type ContractReferenceResource struct{}

func (r *ContractReferenceResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "codegraphd://contract-reference",
		Name:        "codegraphd Tool Contract Reference",
		Description: "The response envelope, error codes, and budget profiles every tool follows",
		MimeType:    "text/markdown",
	}
}

func (r *ContractReferenceResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{URI: "codegraphd://contract-reference", MimeType: "text/markdown", Text: contractReferenceContent},
		},
	}, nil
}

const contractReferenceContent = `# codegraphd tool contract reference

Every tool call returns the same envelope shape: ok, summary, profile,
tokenEstimate, data, and on failure hint/errorCode/recoverable instead of
data.

## Profiles

- compact (default) — only PriorityRequired and PriorityHigh fields
- balanced — adds PriorityMedium fields
- debug — every field, including PriorityLow

## Common error codes

WORKSPACE_NOT_FOUND, INVALID_ARGUMENT, GRAPH_QUERY_FAILED,
GRAPH_DB_UNAVAILABLE, CLAIM_NOT_FOUND, EPISODE_DECISION_REQUIRES_RATIONALE,
ARCH_RULES_INVALID, DIFF_SINCE_ANCHOR_NOT_FOUND, INDEX_DOCS_ALL_FAILED.

Each error carries a hint (what to do next) and a recoverable flag
(whether retrying with corrected arguments makes sense, as opposed to a
backend outage).

## Contract warnings

A successful call can still carry contractWarnings, e.g.
COMMAND_OUTPUT_TRUNCATED when test_run's captured output exceeded the
configured size limit. Use contract_validate to check a proposed call's
arguments against a tool's declared Required/Known fields before making
it, without invoking the tool.
`

// --- codegraphd://tool-reference resource ---

// ToolReferenceResource exposes a quick-reference card for all 39 tools.
type ToolReferenceResource struct{}

func (r *ToolReferenceResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "codegraphd://tool-reference",
		Name:        "codegraphd Tool Reference",
		Description: "Quick reference of all 39 tools grouped by category",
		MimeType:    "text/markdown",
	}
}

func (r *ToolReferenceResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{URI: "codegraphd://tool-reference", MimeType: "text/markdown", Text: toolReferenceContent},
		},
	}, nil
}

const toolReferenceContent = `# codegraphd tool reference

## Graph
graph_set_workspace, graph_query, graph_rebuild, graph_health, diff_since

## Code
code_explain, find_pattern, semantic_search, find_similar_code,
code_clusters, semantic_diff, semantic_slice

## Architecture
arch_validate, arch_suggest

## Testing
test_select, test_categorize, impact_analyze, test_run, suggest_tests

## Progress
progress_query, task_update, feature_status, blocking_issues

## Memory
episode_add, episode_recall, decision_query, reflect

## Coordination
agent_claim, agent_release, agent_status, coordination_overview

## Context
context_pack

## Docs
index_docs, search_docs, ref_query

## Setup
init_project_setup, setup_copilot_instructions

## Meta
contract_validate, tools_list
`
