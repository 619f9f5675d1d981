// Package jobs implements the three post-rebuild background tasks
// SPEC_FULL.md §4.4 names: embedding regeneration, community
// recomputation, and stale-claim invalidation. Each is a scheduler.Job,
// run once via Scheduler.RunOnce from builder.AfterRebuild.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codegraphd/codegraphd/internal/builder"
	"github.com/codegraphd/codegraphd/internal/community"
	"github.com/codegraphd/codegraphd/internal/coordination"
	"github.com/codegraphd/codegraphd/internal/graphstore"
	"github.com/codegraphd/codegraphd/internal/retrieval"
	"github.com/codegraphd/codegraphd/internal/vectorstore"
)

// EmbeddingRegeneration re-embeds every current symbol in a project and
// rebuilds the lexical index over the same set, then flips the project's
// embeddingsReady flag.
type EmbeddingRegeneration struct {
	Graph     *graphstore.Store
	Vectors   *vectorstore.Store
	Retriever *retrieval.Retriever
	Builder   *builder.Builder
	Embedder  retrieval.Embedder
	ProjectID string
	Logger    *slog.Logger
}

func (j *EmbeddingRegeneration) Name() string { return "embedding_regeneration:" + j.ProjectID }

// embedText is the text embedded for a symbol: its name, plus its summary
// when one has been generated.
func embedText(name, summary string) string {
	if summary == "" {
		return name
	}
	return name + ": " + summary
}

func (j *EmbeddingRegeneration) Run(ctx context.Context) error {
	symbols, err := j.Graph.CurrentSymbols(ctx, j.ProjectID)
	if err != nil {
		return fmt.Errorf("jobs: listing current symbols: %w", err)
	}

	points := make([]vectorstore.Point, 0, len(symbols))
	docs := make([]retrieval.Document, 0, len(symbols))
	for _, sym := range symbols {
		vec, err := j.Embedder.Embed(ctx, embedText(sym.Name, sym.Summary))
		if err != nil {
			j.Logger.Warn("jobs: embedding symbol failed", "symbol", sym.ID, "error", err)
			continue
		}
		points = append(points, vectorstore.Point{
			ID:     sym.ID,
			Vector: vec,
			Payload: map[string]any{
				"name":      sym.Name,
				"filePath":  sym.FilePath,
				"kind":      string(sym.Kind),
				"projectId": sym.ProjectID,
			},
		})
		docs = append(docs, retrieval.Document{ID: sym.ID, Name: sym.Name, Summary: sym.Summary, Path: sym.FilePath})
	}
	if err := j.Vectors.Upsert(ctx, points); err != nil {
		return fmt.Errorf("jobs: upserting embeddings: %w", err)
	}
	if j.Retriever != nil {
		j.Retriever.SetLexicon(retrieval.NewLexicalIndex(docs))
	}
	j.Builder.MarkEmbeddingsReady(j.ProjectID)
	j.Logger.Info("embedding regeneration complete", "project", j.ProjectID, "symbols", len(points))
	return nil
}

// CommunityRecomputation reruns code_clusters' path-based detector so
// code_clusters serves fresh results right after a rebuild instead of
// stale ones from before the files changed.
type CommunityRecomputation struct {
	Communities *community.PathBased
	ProjectID   string
	Logger      *slog.Logger
}

func (j *CommunityRecomputation) Name() string { return "community_recomputation:" + j.ProjectID }

func (j *CommunityRecomputation) Run(ctx context.Context) error {
	communities, err := j.Communities.Detect(ctx, j.ProjectID)
	if err != nil {
		return fmt.Errorf("jobs: recomputing communities: %w", err)
	}
	j.Logger.Info("community recomputation complete", "project", j.ProjectID, "communities", len(communities))
	return nil
}

// StaleClaimSweep closes every active claim whose target now has a newer
// version, per spec.md §4.7.
type StaleClaimSweep struct {
	Coordinator *coordination.Engine
	ProjectID   string
	Logger      *slog.Logger
}

func (j *StaleClaimSweep) Name() string { return "stale_claim_sweep:" + j.ProjectID }

func (j *StaleClaimSweep) Run(ctx context.Context) error {
	closed, err := j.Coordinator.InvalidateStale(ctx, j.ProjectID)
	if err != nil {
		return fmt.Errorf("jobs: sweeping stale claims: %w", err)
	}
	j.Logger.Info("stale claim sweep complete", "project", j.ProjectID, "closed", len(closed))
	return nil
}
