package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgStringReturnsEmptyForMissingOrWrongType(t *testing.T) {
	assert.Equal(t, "main.go", argString(map[string]any{"path": "main.go"}, "path"))
	assert.Equal(t, "", argString(map[string]any{"path": 5}, "path"))
	assert.Equal(t, "", argString(nil, "path"))
}

func TestArgBoolDefaultsFalse(t *testing.T) {
	assert.True(t, argBool(map[string]any{"force": true}, "force"))
	assert.False(t, argBool(map[string]any{"force": "true"}, "force"))
	assert.False(t, argBool(nil, "force"))
}

func TestArgIntHandlesJSONFloatAndNativeInt(t *testing.T) {
	assert.Equal(t, 3, argInt(map[string]any{"depth": float64(3)}, "depth", 1))
	assert.Equal(t, 3, argInt(map[string]any{"depth": 3}, "depth", 1))
	assert.Equal(t, 1, argInt(map[string]any{}, "depth", 1))
}

func TestArgStringSliceHandlesAnySliceAndStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, argStringSlice(map[string]any{"paths": []any{"a", "b"}}, "paths"))
	assert.Equal(t, []string{"a", "b"}, argStringSlice(map[string]any{"paths": []string{"a", "b"}}, "paths"))
	assert.Nil(t, argStringSlice(map[string]any{}, "paths"))
}

func TestArgStringSliceIgnoresNonStringElements(t *testing.T) {
	assert.Equal(t, []string{"a"}, argStringSlice(map[string]any{"paths": []any{"a", 5}}, "paths"))
}

func TestArgMapReturnsEmptyWhenMissing(t *testing.T) {
	assert.Nil(t, argMap(map[string]any{}, "arguments"))
	assert.Equal(t, map[string]any{"x": 1}, argMap(map[string]any{"arguments": map[string]any{"x": 1}}, "arguments"))
}
