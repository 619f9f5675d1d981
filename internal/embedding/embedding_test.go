package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbedIsDeterministic(t *testing.T) {
	h := NewHashing(64)
	a, err := h.Embed(context.Background(), "func Parse(src string) (*Node, error)")
	assert.NoError(t, err)
	b, err := h.Embed(context.Background(), "func Parse(src string) (*Node, error)")
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbedDiffersForDifferentText(t *testing.T) {
	h := NewHashing(64)
	a, _ := h.Embed(context.Background(), "parse the input file")
	b, _ := h.Embed(context.Background(), "serialize the output stream")
	assert.NotEqual(t, a, b)
}

func TestEmbedIsUnitNormalized(t *testing.T) {
	h := NewHashing(64)
	vec, err := h.Embed(context.Background(), "hybrid retrieval over symbols and summaries")
	assert.NoError(t, err)

	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-5)
}

func TestEmbedEmptyTextYieldsZeroVector(t *testing.T) {
	h := NewHashing(32)
	vec, err := h.Embed(context.Background(), "")
	assert.NoError(t, err)
	assert.Len(t, vec, 32)
	for _, v := range vec {
		assert.Equal(t, float32(0), v)
	}
}

func TestNewHashingDefaultsDimensions(t *testing.T) {
	h := NewHashing(0)
	assert.Equal(t, 256, h.Dimensions)

	h2 := NewHashing(-5)
	assert.Equal(t, 256, h2.Dimensions)
}

func TestTrigramsShortWordYieldsNone(t *testing.T) {
	assert.Nil(t, trigrams("go"))
	assert.Equal(t, []string{"fns"}, trigrams("fns"))
	assert.Equal(t, []string{"fun", "unc"}, trigrams("func"))
}

func TestTokenizeIncludesWordsAndTrigrams(t *testing.T) {
	tokens := tokenize("the cat")
	assert.Contains(t, tokens, "the")
	assert.Contains(t, tokens, "cat")
}
