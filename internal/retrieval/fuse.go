package retrieval

import "sort"

// RRFConstant is the k in score(d) = sum(1 / (k + rank_i(d))).
const RRFConstant = 60

// RankedList is one ranker's ordered output (rank 1 = best).
type RankedList []Hit

// Fused is one document's combined score plus the per-ranker scores that
// produced it, kept for the debug profile.
type Fused struct {
	ID          string
	Score       float64
	PerRanker   map[string]float64 // ranker name -> raw score, debug only
}

// Fuse combines named ranked lists with Reciprocal Rank Fusion. A document
// missing from a list contributes 0 for that list. The result is sorted by
// descending fused score, ties broken by ID for determinism.
func Fuse(lists map[string]RankedList) []Fused {
	totals := make(map[string]float64)
	perRanker := make(map[string]map[string]float64)

	for name, list := range lists {
		for rank, hit := range list {
			totals[hit.ID] += 1.0 / float64(RRFConstant+rank+1)
			if perRanker[hit.ID] == nil {
				perRanker[hit.ID] = make(map[string]float64)
			}
			perRanker[hit.ID][name] = hit.Score
		}
	}

	out := make([]Fused, 0, len(totals))
	for id, score := range totals {
		out = append(out, Fused{ID: id, Score: score, PerRanker: perRanker[id]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}
