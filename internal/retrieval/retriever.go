package retrieval

import (
	"context"
	"time"

	"github.com/codegraphd/codegraphd/internal/graphstore"
	"github.com/codegraphd/codegraphd/internal/vectorstore"
)

// Mode selects which sections of the hybrid result are populated
// (spec.md §4.5).
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeGlobal Mode = "global"
	ModeHybrid Mode = "hybrid"
)

// Embedder turns free text into the same vector space as indexed nodes.
// The out-of-scope collaborator boundary named in spec.md §1; a trivial
// deterministic embedder would be supplied for tests, a real one in
// production wiring.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever composes the vector, lexical, and graph-expansion rankers and
// fuses them with RRF.
type Retriever struct {
	graph    *graphstore.Store
	vectors  *vectorstore.Store
	embedder Embedder
	lexicon  *LexicalIndex // rebuilt by the embedding-regeneration job after each full rebuild
}

// New constructs a Retriever. lexicon may be nil until the first rebuild
// completes; Query degrades to vector+graph only until then.
func New(graph *graphstore.Store, vectors *vectorstore.Store, embedder Embedder, lexicon *LexicalIndex) *Retriever {
	return &Retriever{graph: graph, vectors: vectors, embedder: embedder, lexicon: lexicon}
}

// SetLexicon swaps in a freshly built lexical index, called by
// jobs.EmbeddingRegeneration after a full rebuild.
func (r *Retriever) SetLexicon(lexicon *LexicalIndex) {
	r.lexicon = lexicon
}

// QueryOptions parameterizes a hybrid Query call.
type QueryOptions struct {
	ProjectID string
	Mode      Mode
	AsOf      *time.Time
	TopN      int // per-ranker candidate count before fusion, default 20
}

// CommunityResult is one COMMUNITY hit contributed in global/hybrid mode.
type CommunityResult struct {
	ID      string
	Summary string
}

// Result is the hybrid retriever's response: fused symbol hits (local
// mode and hybrid mode) plus community hits (global and hybrid mode).
type Result struct {
	Symbols     []Fused
	Communities []CommunityResult
}

// Query runs the vector ranker, lexical ranker, and one-hop graph
// expansion from their combined top-5 seeds, then fuses all three with
// RRF (spec.md §4.5).
func (r *Retriever) Query(ctx context.Context, query string, opts QueryOptions) (Result, error) {
	topN := opts.TopN
	if topN <= 0 {
		topN = 20
	}

	lists := make(map[string]RankedList)

	if r.embedder != nil && r.vectors != nil {
		vec, err := r.embedder.Embed(ctx, query)
		if err == nil {
			hits, err := r.vectors.Search(ctx, vec, uint64(topN))
			if err == nil {
				var rl RankedList
				for _, h := range hits {
					rl = append(rl, Hit{ID: h.ID, Score: float64(h.Score)})
				}
				lists["vector"] = rl
			}
		}
	}

	var lexicalHits []Hit
	if r.lexicon != nil {
		lexicalHits = r.lexicon.Search(query, topN)
		lists["lexical"] = lexicalHits
	}

	seeds := topSeeds(lists["vector"], lexicalHits, 5)
	if len(seeds) > 0 && r.graph != nil {
		expanded, err := r.graphExpand(ctx, seeds)
		if err == nil {
			lists["graph"] = expanded
		}
	}

	if opts.Mode == ModeGlobal {
		communities, err := r.queryCommunities(ctx, opts.ProjectID, query)
		if err != nil {
			return Result{}, err
		}
		return Result{Communities: communities}, nil
	}

	fused := Fuse(lists)

	result := Result{Symbols: fused}
	if opts.Mode == ModeHybrid {
		communities, err := r.queryCommunities(ctx, opts.ProjectID, query)
		if err == nil {
			result.Communities = communities
		}
	}
	return result, nil
}

func topSeeds(a, b []Hit, n int) []string {
	combined := append(append([]Hit{}, a...), b...)
	seen := make(map[string]bool)
	var out []string
	for _, h := range combined {
		if seen[h.ID] {
			continue
		}
		seen[h.ID] = true
		out = append(out, h.ID)
		if len(out) >= n {
			break
		}
	}
	return out
}

// graphExpand expands one hop along CONTAINS, IMPORTS, REFERENCES, CALLS
// from the given seeds, weighting results by edge type so a CALLS
// neighbour outranks a CONTAINS neighbour at the same hop distance.
func (r *Retriever) graphExpand(ctx context.Context, seeds []string) (RankedList, error) {
	rows, err := r.graph.ExecuteRead(ctx, `
		UNWIND $seeds AS seedId
		MATCH (s {id: seedId})-[rel:CONTAINS|IMPORTS|REFERENCES|CALLS]-(n)
		RETURN DISTINCT n.id AS id, type(rel) AS relType
	`, map[string]any{"seeds": seeds})
	if err != nil {
		return nil, err
	}
	weights := map[string]float64{"CALLS": 0.9, "IMPORTS": 0.7, "CONTAINS": 0.5, "REFERENCES": 0.6}
	scores := make(map[string]float64)
	var order []string
	for _, row := range rows {
		id, _ := row["id"].(string)
		relType, _ := row["relType"].(string)
		if id == "" {
			continue
		}
		if _, ok := scores[id]; !ok {
			order = append(order, id)
		}
		if w, ok := weights[relType]; ok && w > scores[id] {
			scores[id] = w
		}
	}
	hits := make([]Hit, 0, len(order))
	for _, id := range order {
		hits = append(hits, Hit{ID: id, Score: scores[id]})
	}
	return topHits(scoresFromHits(hits), len(hits)), nil
}

func scoresFromHits(hits []Hit) map[string]float64 {
	m := make(map[string]float64, len(hits))
	for _, h := range hits {
		m[h.ID] = h.Score
	}
	return m
}

func (r *Retriever) queryCommunities(ctx context.Context, projectID, query string) ([]CommunityResult, error) {
	rows, err := r.graph.ExecuteRead(ctx, `
		MATCH (c:COMMUNITY {projectId: $projectId})
		RETURN c.id AS id, c.summary AS summary
	`, map[string]any{"projectId": projectID})
	if err != nil {
		return nil, err
	}
	index := make([]Document, 0, len(rows))
	for _, row := range rows {
		id, _ := row["id"].(string)
		summary, _ := row["summary"].(string)
		index = append(index, Document{ID: id, Summary: summary})
	}
	idx := NewLexicalIndex(index)
	hits := idx.Search(query, 10)
	summaryByID := make(map[string]string, len(index))
	for _, d := range index {
		summaryByID[d.ID] = d.Summary
	}
	out := make([]CommunityResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, CommunityResult{ID: h.ID, Summary: summaryByID[h.ID]})
	}
	return out, nil
}
