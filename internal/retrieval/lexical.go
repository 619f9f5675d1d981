// Package retrieval implements the hybrid retriever described in
// spec.md §4.5: a BM25-Plus lexical ranker built and queried fully
// in-process, a vector ranker delegating to internal/vectorstore, graph
// expansion delegating to internal/graphstore, and reciprocal rank fusion
// combining the three.
package retrieval

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Document is one indexable unit for the lexical ranker: a FUNCTION,
// CLASS, or FILE node reduced to its {name, summary, path} fields.
type Document struct {
	ID      string
	Name    string
	Summary string
	Path    string
}

var tokenRe = regexp.MustCompile(`[A-Za-z0-9_]+`)

func tokenize(s string) []string {
	lower := strings.ToLower(s)
	return tokenRe.FindAllString(lower, -1)
}

// fieldTokens returns the document's tokens with field boosts applied by
// repetition: name x3, summary x2, path x1 (spec.md §4.5).
func fieldTokens(d Document) []string {
	var out []string
	name := tokenize(d.Name)
	for i := 0; i < 3; i++ {
		out = append(out, name...)
	}
	summary := tokenize(d.Summary)
	for i := 0; i < 2; i++ {
		out = append(out, summary...)
	}
	out = append(out, tokenize(d.Path)...)
	return out
}

// LexicalIndex is an in-process inverted index implementing the BM25-Plus
// scoring variant (k1=1.2, b=0.75, delta=0.25).
type LexicalIndex struct {
	k1    float64
	b     float64
	delta float64

	docs       map[string]Document
	docLength  map[string]int
	postings   map[string]map[string]int // term -> docID -> term frequency
	avgDocLen  float64
	totalDocs  int
}

// NewLexicalIndex builds an index over docs.
func NewLexicalIndex(docs []Document) *LexicalIndex {
	idx := &LexicalIndex{
		k1:        1.2,
		b:         0.75,
		delta:     0.25,
		docs:      make(map[string]Document, len(docs)),
		docLength: make(map[string]int, len(docs)),
		postings:  make(map[string]map[string]int),
	}
	var totalLen int
	for _, d := range docs {
		idx.docs[d.ID] = d
		tokens := fieldTokens(d)
		idx.docLength[d.ID] = len(tokens)
		totalLen += len(tokens)
		seen := make(map[string]int)
		for _, t := range tokens {
			seen[t]++
		}
		for term, tf := range seen {
			if idx.postings[term] == nil {
				idx.postings[term] = make(map[string]int)
			}
			idx.postings[term][d.ID] = tf
		}
	}
	idx.totalDocs = len(docs)
	if idx.totalDocs > 0 {
		idx.avgDocLen = float64(totalLen) / float64(idx.totalDocs)
	}
	return idx
}

// Hit is one scored result from a ranker.
type Hit struct {
	ID    string
	Score float64
}

// Search scores every document containing at least one query term and
// returns hits sorted by descending BM25-Plus score.
func (idx *LexicalIndex) Search(query string, limit int) []Hit {
	terms := tokenize(query)
	scores := make(map[string]float64)
	for _, term := range terms {
		postings, ok := idx.postings[term]
		if !ok {
			continue
		}
		idf := idx.idf(len(postings))
		for docID, tf := range postings {
			dl := float64(idx.docLength[docID])
			denom := float64(tf) + idx.k1*(1-idx.b+idx.b*dl/idx.avgDocLen)
			score := idf * (((idx.k1+1)*float64(tf))/denom + idx.delta)
			scores[docID] += score
		}
	}
	return topHits(scores, limit)
}

// idf is the BM25-Plus idf term: ln((N+1)/df).
func (idx *LexicalIndex) idf(df int) float64 {
	if df == 0 {
		return 0
	}
	return math.Log(float64(idx.totalDocs+1) / float64(df))
}

func topHits(scores map[string]float64, limit int) []Hit {
	hits := make([]Hit, 0, len(scores))
	for id, s := range scores {
		hits = append(hits, Hit{ID: id, Score: s})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID // deterministic tie-break
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
