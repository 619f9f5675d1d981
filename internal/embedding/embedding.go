// Package embedding provides the deterministic feature-hashing embedder
// used when no remote embedding provider is configured. No example repo
// in the pack imports an embedding-API client (OpenAI, Vertex, Cohere),
// so this stays a stdlib hash rather than an invented third-party
// dependency (DESIGN.md).
package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// Hashing turns text into a fixed-size vector by feature-hashing
// whitespace tokens and trigram shingles into buckets, then L2-normalizing.
// Same text always maps to the same vector, and similar text maps to
// nearby vectors in cosine distance, which is all the hybrid retriever and
// episode recall require of the Embedder boundary.
type Hashing struct {
	Dimensions int
}

// NewHashing constructs a Hashing embedder with the given vector width.
func NewHashing(dimensions int) *Hashing {
	if dimensions <= 0 {
		dimensions = 256
	}
	return &Hashing{Dimensions: dimensions}
}

// Embed satisfies retrieval.Embedder and episodes.Embedder.
func (h *Hashing) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, h.Dimensions)
	for _, tok := range tokenize(text) {
		idx, sign := h.bucket(tok)
		vec[idx] += sign
	}
	normalize(vec)
	return vec, nil
}

func (h *Hashing) bucket(token string) (int, float32) {
	sum := fnv.New32a()
	_, _ = sum.Write([]byte(token))
	n := sum.Sum32()
	idx := int(n % uint32(h.Dimensions))
	sign := float32(1)
	if n&1 == 0 {
		sign = -1
	}
	return idx, sign
}

func tokenize(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(words)*2)
	tokens = append(tokens, words...)
	for _, w := range words {
		for _, tri := range trigrams(w) {
			tokens = append(tokens, tri)
		}
	}
	return tokens
}

func trigrams(word string) []string {
	if len(word) < 3 {
		return nil
	}
	out := make([]string, 0, len(word)-2)
	for i := 0; i+3 <= len(word); i++ {
		out = append(out, word[i:i+3])
	}
	return out
}

func normalize(vec []float32) {
	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSquares))
	for i := range vec {
		vec[i] /= norm
	}
}
