package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuidePromptDefinitionAndContent(t *testing.T) {
	p := &GuidePrompt{}
	def := p.Definition()
	assert.Equal(t, "codegraphd-guide", def.Name)

	result, err := p.Get(nil)
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	assert.Contains(t, result.Messages[0].Content.Text, "graph_set_workspace")
}

func TestWorkflowPromptRequiresTaskIDArgument(t *testing.T) {
	p := &WorkflowPrompt{}
	def := p.Definition()
	require.Len(t, def.Arguments, 1)
	assert.Equal(t, "taskId", def.Arguments[0].Name)
	assert.True(t, def.Arguments[0].Required)
}

func TestWorkflowPromptEmbedsTaskIDInContent(t *testing.T) {
	p := &WorkflowPrompt{}
	result, err := p.Get(map[string]string{"taskId": "task-42"})
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	assert.Contains(t, result.Messages[0].Content.Text, "task-42")
	assert.Contains(t, result.Description, "task-42")
}

func TestEntityModelResourceReadsMarkdown(t *testing.T) {
	r := &EntityModelResource{}
	def := r.Definition()
	assert.Equal(t, "codegraphd://entity-model", def.URI)

	result, err := r.Read()
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Contains(t, result.Contents[0].Text, "SUPERSEDES")
}

func TestContractReferenceResourceReadsMarkdown(t *testing.T) {
	r := &ContractReferenceResource{}
	result, err := r.Read()
	require.NoError(t, err)
	assert.Contains(t, result.Contents[0].Text, "contract_validate")
}

func TestToolReferenceResourceListsCategories(t *testing.T) {
	r := &ToolReferenceResource{}
	result, err := r.Read()
	require.NoError(t, err)
	assert.Contains(t, result.Contents[0].Text, "graph_set_workspace")
	assert.Contains(t, result.Contents[0].Text, "agent_claim")
}
