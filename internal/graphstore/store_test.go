package graphstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldRetry(t *testing.T) {
	assert.False(t, shouldRetry(nil))
	assert.True(t, shouldRetry(errors.New("EOF")))
	assert.True(t, shouldRetry(errors.New("broken pipe")))
	assert.False(t, shouldRetry(errors.New("syntax error in Cypher")))
}

func TestFirstWords(t *testing.T) {
	assert.Equal(t, "MATCH (n:FILE", firstWords("MATCH (n:FILE {id: $id}) RETURN n", 2))
	assert.Equal(t, "RETURN n", firstWords("RETURN n", 4))
}
