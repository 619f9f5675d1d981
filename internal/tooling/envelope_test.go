package tooling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputSchemaRequiredKeys(t *testing.T) {
	schema := OutputSchema{
		{Key: "summary", Priority: PriorityRequired},
		{Key: "details", Priority: PriorityLow},
		{Key: "id", Priority: PriorityRequired},
	}
	assert.Equal(t, []string{"summary", "id"}, schema.RequiredKeys())
}

func TestOutputSchemaKeysAtPriority(t *testing.T) {
	schema := OutputSchema{
		{Key: "summary", Priority: PriorityRequired},
		{Key: "details", Priority: PriorityLow},
		{Key: "extra", Priority: PriorityLow},
		{Key: "path", Priority: PriorityMedium},
	}
	assert.Equal(t, []string{"details", "extra"}, schema.KeysAtPriority(PriorityLow))
	assert.Equal(t, []string{"path"}, schema.KeysAtPriority(PriorityMedium))
	assert.Empty(t, schema.KeysAtPriority(PriorityHigh))
}

func TestOkBuildsSuccessfulEnvelope(t *testing.T) {
	env := Ok("done", map[string]any{"count": 1})
	assert.True(t, env.OK)
	assert.Equal(t, "done", env.Summary)
	assert.Equal(t, map[string]any{"count": 1}, env.Data)
	assert.Nil(t, env.ErrorDetail)
}

func TestErrBuildsFailedEnvelope(t *testing.T) {
	env := Err("INVALID_ARGUMENT", "bad input", "fix the path", true)
	assert.False(t, env.OK)
	assert.Equal(t, "INVALID_ARGUMENT", env.ErrorCode)
	assert.Equal(t, "fix the path", env.Hint)
	assert.NotNil(t, env.ErrorDetail)
	assert.True(t, env.ErrorDetail.Recoverable)
}

func TestWithWarningAppends(t *testing.T) {
	env := Ok("done", nil).WithWarning("first").WithWarning("second")
	assert.Equal(t, []string{"first", "second"}, env.ContractWarnings)
}
