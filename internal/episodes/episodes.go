// Package episodes implements the episodic memory engine described in
// spec.md §4.6: episode_add, episode_recall, decision_query, and reflect.
package episodes

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
	"github.com/codegraphd/codegraphd/internal/graphstore"
	"github.com/codegraphd/codegraphd/internal/vectorstore"
)

// ErrDecisionRequiresRationale is returned by Add when type=DECISION and
// neither metadata.rationale nor metadata.reason is present.
var ErrDecisionRequiresRationale = fmt.Errorf("episodes: DECISION requires metadata.rationale")

// Embedder mirrors retrieval.Embedder; episodes embeds its own content
// independent of code-node embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Engine wires the graph store, the shared vector store (episode points are
// tagged with projectId and kind "episode"; there is no per-project
// collection), and an embedder together.
type Engine struct {
	graph    *graphstore.Store
	vectors  *vectorstore.Store
	embedder Embedder

	lastEpisode map[string]string // (agentId|sessionId) -> last episode id, in-process hint only
}

// New constructs an episode Engine.
func New(graph *graphstore.Store, vectors *vectorstore.Store, embedder Embedder) *Engine {
	return &Engine{graph: graph, vectors: vectors, embedder: embedder, lastEpisode: make(map[string]string)}
}

// AddInput is episode_add's normalized argument set.
type AddInput struct {
	ProjectID string
	AgentID   string
	SessionID string
	TaskID    string
	Type      string
	Content   string
	Entities  []string
	Outcome   string
	Metadata  map[string]any
	Sensitive bool
}

func chainKey(agentID, sessionID string) string { return agentID + "|" + sessionID }

// Add creates a new EPISODE node, chains it to the agent's last episode in
// this session via NEXT_EPISODE, links INVOLVES edges to resolvable
// entities, and upserts an embedding of the content into the shared vector
// store with a {projectId, kind: "episode"} payload; no per-project
// collection is created.
func (e *Engine) Add(ctx context.Context, in AddInput) (graphmodel.Episode, error) {
	epType := graphmodel.NormalizeEpisodeType(in.Type)
	if epType == graphmodel.EpisodeDecision {
		if !hasRationale(in.Metadata) {
			return graphmodel.Episode{}, ErrDecisionRequiresRationale
		}
	}

	ep := graphmodel.Episode{
		ID:        uuid.NewString(),
		AgentID:   in.AgentID,
		SessionID: in.SessionID,
		TaskID:    in.TaskID,
		Type:      epType,
		Content:   in.Content,
		Timestamp: time.Now(),
		Outcome:   in.Outcome,
		Sensitive: in.Sensitive,
		Metadata:  in.Metadata,
		ProjectID: in.ProjectID,
	}

	if err := e.graph.UpsertEpisode(ctx, ep); err != nil {
		return graphmodel.Episode{}, err
	}

	key := chainKey(in.AgentID, in.SessionID)
	if prev, ok := e.lastEpisode[key]; ok {
		if err := e.graph.CreateEdge(ctx, graphmodel.RelNextEpisode, prev, ep.ID, nil); err != nil {
			return graphmodel.Episode{}, err
		}
	} else if prevID, err := e.graph.LastEpisodeID(ctx, in.ProjectID, in.AgentID, in.SessionID); err == nil && prevID != "" {
		if err := e.graph.CreateEdge(ctx, graphmodel.RelNextEpisode, prevID, ep.ID, nil); err != nil {
			return graphmodel.Episode{}, err
		}
	}
	e.lastEpisode[key] = ep.ID

	for _, entityID := range in.Entities {
		_ = e.graph.CreateEdge(ctx, graphmodel.RelInvolves, ep.ID, entityID, nil)
	}

	if e.embedder != nil && e.vectors != nil {
		if vec, err := e.embedder.Embed(ctx, ep.Content); err == nil {
			_ = e.vectors.Upsert(ctx, []vectorstore.Point{{
				ID:      ep.ID,
				Vector:  vec,
				Payload: map[string]any{"projectId": ep.ProjectID, "kind": "episode"},
			}})
		}
	}

	return ep, nil
}

func hasRationale(metadata map[string]any) bool {
	if metadata == nil {
		return false
	}
	if v, ok := metadata["rationale"]; ok {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return true
		}
	}
	if v, ok := metadata["reason"]; ok {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// RecallInput is episode_recall's normalized argument set.
type RecallInput struct {
	ProjectID      string
	Query          string
	CallerAgentID  string
	FilterAgentID  string
	TaskID         string
	Types          []string
	Entities       []string
	Limit          int
	Since          *time.Time
	GraphProximity float64 // entity-overlap (jaccard) weight override used by decision_query
}

// Scored is one recalled episode with its component scores.
type Scored struct {
	Episode graphmodel.Episode
	Score   float64
	Cosine  float64
	Recency float64
	Jaccard float64
}

// Recall scores candidate episodes as
// 0.50*cosine + 0.30*exp(-0.05*age_days) + 0.20*jaccard(query_entities, ep.entities),
// filters sensitive episodes unless the caller is the original agent, and
// returns the top Limit (default 5).
func (e *Engine) Recall(ctx context.Context, in RecallInput) ([]Scored, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = 5
	}
	cosineWeight, recencyWeight, jaccardWeight := 0.50, 0.30, 0.20
	if in.GraphProximity > 0 {
		jaccardWeight = in.GraphProximity
		cosineWeight, recencyWeight = (1-jaccardWeight)*0.625, (1-jaccardWeight)*0.375
	}

	candidates, err := e.graph.QueryEpisodes(ctx, in.ProjectID, in.Types, in.TaskID, in.Since)
	if err != nil {
		return nil, err
	}

	var queryVec []float32
	if e.embedder != nil {
		queryVec, _ = e.embedder.Embed(ctx, in.Query)
	}
	queryEntities := toSet(in.Entities)

	out := make([]Scored, 0, len(candidates))
	for _, ep := range candidates {
		if ep.Sensitive && ep.AgentID != in.CallerAgentID {
			continue
		}
		if in.FilterAgentID != "" && ep.AgentID != in.FilterAgentID {
			continue
		}
		cos := e.cosineToEpisode(ctx, queryVec, ep)
		ageDays := time.Since(ep.Timestamp).Hours() / 24
		recency := math.Exp(-0.05 * ageDays)
		entities, _ := e.graph.EpisodeEntities(ctx, ep.ID)
		jac := jaccard(queryEntities, toSet(entities))

		score := cosineWeight*cos + recencyWeight*recency + jaccardWeight*jac
		out = append(out, Scored{Episode: ep, Score: score, Cosine: cos, Recency: recency, Jaccard: jac})
	}

	sortScored(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (e *Engine) cosineToEpisode(ctx context.Context, queryVec []float32, ep graphmodel.Episode) float64 {
	if e.vectors == nil || queryVec == nil {
		return 0
	}
	hits, err := e.vectors.Search(ctx, queryVec, 50)
	if err != nil {
		return 0
	}
	for _, h := range hits {
		if h.ID == ep.ID {
			return float64(h.Score)
		}
	}
	return 0
}

// DecisionQuery is Recall scoped to DECISION episodes. When affectedFiles
// are supplied they join the query entities and the entity-overlap
// (jaccard) weight is raised to 0.50, so decisions whose INVOLVES entities
// overlap those files rank higher.
func (e *Engine) DecisionQuery(ctx context.Context, in RecallInput, affectedFiles []string) ([]Scored, error) {
	in.Types = []string{string(graphmodel.EpisodeDecision)}
	if len(affectedFiles) > 0 {
		in.Entities = append(in.Entities, affectedFiles...)
		in.GraphProximity = 0.50
	}
	return e.Recall(ctx, in)
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, i := range items {
		m[i] = true
	}
	return m
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func sortScored(items []Scored) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j-1].Score < items[j].Score; j-- {
			items[j-1], items[j] = items[j], items[j-1]
		}
	}
}
