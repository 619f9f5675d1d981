// Package contextpack implements context_pack (spec.md §4.8): seed
// selection via the hybrid retriever, Personalized-PageRank-style
// relevance propagation over the local neighborhood, and budget-aware
// slot allocation across code, dependencies, decisions, plan, and
// episode history.
package contextpack

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/codegraphd/codegraphd/internal/episodes"
	"github.com/codegraphd/codegraphd/internal/graphmodel"
	"github.com/codegraphd/codegraphd/internal/graphstore"
	"github.com/codegraphd/codegraphd/internal/retrieval"
	"github.com/codegraphd/codegraphd/internal/shaper"
)

const (
	dampingFactor = 0.85
	pprIterations = 20
	maxNodes      = 50
	maxSubgraph   = 300 // BFS expansion cap before scoring, independent of the final 50-node result cap
)

var edgeWeights = map[graphmodel.Relationship]float64{
	graphmodel.RelCalls:     0.9,
	graphmodel.RelImports:   0.7,
	graphmodel.RelContains:  0.5,
	graphmodel.RelInvolves:  0.3,
	graphmodel.RelAppliesTo: 0.4,
}

// Builder composes the stores and engines context_pack reads from.
type Builder struct {
	graph     *graphstore.Store
	retriever *retrieval.Retriever
	episodes  *episodes.Engine
}

// New constructs a context pack Builder.
func New(graph *graphstore.Store, retriever *retrieval.Retriever, episodesEngine *episodes.Engine) *Builder {
	return &Builder{graph: graph, retriever: retriever, episodes: episodesEngine}
}

// Options is context_pack's normalized argument set.
type Options struct {
	ProjectID        string
	Task             string
	TaskID           string
	AgentID          string
	Profile          shaper.Profile
	IncludeDecisions bool
	IncludeEpisodes  bool
	IncludeLearnings bool
}

// CodeItem is one selected code node with its source excerpt.
type CodeItem struct {
	ID     string
	Name   string
	Path   string
	Source string
	Score  float64
}

// BlockingClaim names another agent's active claim on a selected node.
type BlockingClaim struct {
	TargetID string
	AgentID  string
	Intent   string
}

// Pack is context_pack's response.
type Pack struct {
	Summary        string
	CoreCode       []CodeItem
	Dependencies   []CodeItem
	Decisions      []episodes.Scored
	Learnings      []graphmodel.Learning
	EpisodeHistory []episodes.Scored
	BlockingClaims []BlockingClaim
}

// Build implements context_pack per spec.md §4.8's eight steps.
func (b *Builder) Build(ctx context.Context, opts Options) (Pack, error) {
	seeds, err := b.selectSeeds(ctx, opts)
	if err != nil {
		return Pack{}, err
	}
	if len(seeds) == 0 {
		return Pack{Summary: fmt.Sprintf("no matching code found for %q", opts.Task)}, nil
	}

	scores, err := b.propagate(ctx, seeds)
	if err != nil {
		return Pack{}, err
	}
	ranked := rankNodes(scores, maxNodes)

	budget := shaper.Budget(opts.Profile)
	slots := map[string]int{
		"coreCode":       int(float64(budget) * 0.40),
		"dependencies":   int(float64(budget) * 0.25),
		"decisions":      int(float64(budget) * 0.20),
		"plan":           int(float64(budget) * 0.10),
		"episodeHistory": int(float64(budget) * 0.05),
	}

	seedSet := toSeedSet(seeds)
	var coreCandidates, depCandidates []string
	for _, id := range ranked {
		if seedSet[id] {
			coreCandidates = append(coreCandidates, id)
		} else {
			depCandidates = append(depCandidates, id)
		}
	}

	coreCode := b.fillCodeSlot(ctx, coreCandidates, scores, slots["coreCode"])
	dependencies := b.fillCodeSlot(ctx, depCandidates, scores, slots["dependencies"])

	var blocking []BlockingClaim
	for _, item := range append(append([]CodeItem{}, coreCode...), dependencies...) {
		claim, err := b.graph.ActiveClaimOnTarget(ctx, item.ID)
		if err == nil && claim != nil && claim.AgentID != opts.AgentID {
			blocking = append(blocking, BlockingClaim{TargetID: item.ID, AgentID: claim.AgentID, Intent: claim.Intent})
		}
	}

	pack := Pack{
		CoreCode:       coreCode,
		Dependencies:   dependencies,
		BlockingClaims: blocking,
	}

	selectedIDs := make([]string, 0, len(coreCode)+len(dependencies))
	for _, item := range coreCode {
		selectedIDs = append(selectedIDs, item.ID)
	}
	for _, item := range dependencies {
		selectedIDs = append(selectedIDs, item.ID)
	}

	if opts.IncludeDecisions && b.episodes != nil {
		decisions, err := b.episodes.DecisionQuery(ctx, episodes.RecallInput{
			ProjectID:     opts.ProjectID,
			Query:         opts.Task,
			CallerAgentID: opts.AgentID,
			TaskID:        opts.TaskID,
			Limit:         5,
		}, selectedIDs)
		if err == nil {
			pack.Decisions = decisions
		}
	}
	if opts.IncludeLearnings {
		if learnings, err := b.graph.LearningsForTargets(ctx, selectedIDs); err == nil {
			pack.Learnings = learnings
		}
	}
	if opts.IncludeEpisodes && b.episodes != nil {
		history, err := b.episodes.Recall(ctx, episodes.RecallInput{
			ProjectID:     opts.ProjectID,
			Query:         opts.Task,
			CallerAgentID: opts.AgentID,
			TaskID:        opts.TaskID,
			Limit:         5,
		})
		if err == nil {
			pack.EpisodeHistory = history
		}
	}

	pack.Summary = summarize(opts.Task, coreCode)
	return pack, nil
}

func (b *Builder) selectSeeds(ctx context.Context, opts Options) ([]string, error) {
	result, err := b.retriever.Query(ctx, opts.Task, retrieval.QueryOptions{ProjectID: opts.ProjectID, Mode: retrieval.ModeLocal})
	if err != nil {
		return nil, err
	}
	seeds := make([]string, 0, 5)
	for i, s := range result.Symbols {
		if i >= 5 {
			break
		}
		seeds = append(seeds, s.ID)
	}
	return seeds, nil
}

// propagate runs a Personalized-PageRank-style spread over the local
// neighborhood discovered by bounded BFS from seeds: iterate pprIterations
// times with dampingFactor, weighting edges per edgeWeights, restarting to
// the uniform seed distribution each step.
func (b *Builder) propagate(ctx context.Context, seeds []string) (map[string]float64, error) {
	adjacency, err := b.expandSubgraph(ctx, seeds)
	if err != nil {
		return nil, err
	}

	restart := make(map[string]float64, len(seeds))
	for _, s := range seeds {
		restart[s] = 1.0 / float64(len(seeds))
	}

	scores := make(map[string]float64, len(adjacency))
	for id := range adjacency {
		scores[id] = restart[id]
	}

	outWeight := make(map[string]float64, len(adjacency))
	for id, edges := range adjacency {
		var total float64
		for _, e := range edges {
			total += edgeWeights[e.Rel]
		}
		outWeight[id] = total
	}

	incoming := make(map[string][]graphstore.Edge)
	for id, edges := range adjacency {
		for _, e := range edges {
			incoming[e.ID] = append(incoming[e.ID], graphstore.Edge{Rel: e.Rel, ID: id})
		}
	}

	for iter := 0; iter < pprIterations; iter++ {
		next := make(map[string]float64, len(scores))
		for id := range scores {
			sum := 0.0
			for _, in := range incoming[id] {
				w := edgeWeights[in.Rel]
				if outWeight[in.ID] > 0 {
					sum += w * scores[in.ID] / outWeight[in.ID]
				}
			}
			next[id] = (1-dampingFactor)*restart[id] + dampingFactor*sum
		}
		scores = next
	}
	return scores, nil
}

func (b *Builder) expandSubgraph(ctx context.Context, seeds []string) (map[string][]graphstore.Edge, error) {
	adjacency := make(map[string][]graphstore.Edge)
	queue := append([]string{}, seeds...)
	visited := make(map[string]bool)

	for len(queue) > 0 && len(adjacency) < maxSubgraph {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		edges, err := b.graph.EdgesFrom(ctx, id)
		if err != nil {
			continue
		}
		var kept []graphstore.Edge
		for _, e := range edges {
			if _, weighted := edgeWeights[e.Rel]; weighted {
				kept = append(kept, e)
				if !visited[e.ID] {
					queue = append(queue, e.ID)
				}
			}
		}
		adjacency[id] = kept
	}
	for id := range adjacency {
		if _, ok := adjacency[id]; !ok {
			adjacency[id] = nil
		}
	}
	return adjacency, nil
}

func rankNodes(scores map[string]float64, limit int) []string {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

func toSeedSet(seeds []string) map[string]bool {
	m := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		m[s] = true
	}
	return m
}

// fillCodeSlot greedily fills a budget slot (in estimated tokens) with the
// highest-scored candidates whose JSON cost still fits, per spec.md §4.8
// step 4.
func (b *Builder) fillCodeSlot(ctx context.Context, candidates []string, scores map[string]float64, tokenBudget int) []CodeItem {
	var out []CodeItem
	spent := 0
	for _, id := range candidates {
		sym, err := b.graph.SymbolByID(ctx, id)
		if err != nil || sym == nil {
			continue
		}
		source := readSourceLines(sym.FilePath, sym.StartLine, sym.EndLine)
		item := CodeItem{ID: sym.ID, Name: sym.Name, Path: sym.FilePath, Source: source, Score: scores[id]}
		cost := shaper.TokenEstimate(item)
		if spent+cost > tokenBudget && len(out) > 0 {
			break
		}
		out = append(out, item)
		spent += cost
	}
	return out
}

func readSourceLines(path string, start, end int) string {
	if path == "" || start <= 0 || end < start {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	lines := strings.Split(string(data), "\n")
	if start > len(lines) {
		return ""
	}
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start-1:end], "\n")
}

func summarize(task string, core []CodeItem) string {
	if len(core) == 0 {
		return fmt.Sprintf("No strongly related code found for: %s", task)
	}
	return fmt.Sprintf("Entry point is %s (%s). This task likely touches %d related symbol(s); review dependencies and any active claims before editing.",
		core[0].Name, core[0].Path, len(core))
}
