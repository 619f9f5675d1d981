// Package vectorstore wraps a Qdrant collection with the operations the
// hybrid retriever needs: upserting embeddings for FUNCTION/CLASS/DOCUMENT/
// SECTION nodes and running cosine-similarity search.
package vectorstore

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// Config holds the connection parameters for a Qdrant instance.
type Config struct {
	Host           string
	Port           int
	CollectionName string
	VectorSize     uint64
}

// DefaultConfig returns the connection defaults used when env vars are
// unset.
func DefaultConfig() Config {
	return Config{
		Host:           "127.0.0.1",
		Port:           6334,
		CollectionName: "codegraphd",
		VectorSize:     1536,
	}
}

// Store wraps the Qdrant gRPC client for a single collection.
type Store struct {
	conn       *grpc.ClientConn
	points     qdrant.PointsClient
	collection qdrant.CollectionsClient
	cfg        Config
	logger     *slog.Logger
}

// Open dials Qdrant and ensures the configured collection exists, creating
// it with cosine distance if absent.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("vectorstore: dialing %s: %w", addr, err)
	}
	s := &Store{
		conn:       conn,
		points:     qdrant.NewPointsClient(conn),
		collection: qdrant.NewCollectionsClient(conn),
		cfg:        cfg,
		logger:     logger,
	}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) ensureCollection(ctx context.Context) error {
	_, err := s.collection.Get(ctx, &qdrant.GetCollectionInfoRequest{CollectionName: s.cfg.CollectionName})
	if err == nil {
		return nil
	}
	s.logger.Info("creating qdrant collection", "collection", s.cfg.CollectionName, "size", s.cfg.VectorSize)
	_, err = s.collection.Create(ctx, &qdrant.CreateCollection{
		CollectionName: s.cfg.CollectionName,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     s.cfg.VectorSize,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("vectorstore: creating collection %s: %w", s.cfg.CollectionName, err)
	}
	return nil
}

// Point is a single embedding for a node, keyed by its SCIP id.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// Upsert writes or replaces the embeddings for the given points.
func (s *Store) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	pbPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		pbPoints = append(pbPoints, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(stableUint64(p.ID)),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: toPayload(p.Payload, p.ID),
		})
	}
	_, err := s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.CollectionName,
		Points:         pbPoints,
	})
	if err != nil {
		return fmt.Errorf("vectorstore: upserting %d points: %w", len(points), err)
	}
	return nil
}

// SearchResult is a single hit from Search, with the original SCIP id and
// cosine similarity score.
type SearchResult struct {
	ID    string
	Score float32
}

// Search returns the topK nearest neighbors to query by cosine similarity.
func (s *Store) Search(ctx context.Context, query []float32, topK uint64) ([]SearchResult, error) {
	withPayload := qdrant.NewWithPayload(true)
	resp, err := s.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: s.cfg.CollectionName,
		Vector:         query,
		Limit:          topK,
		WithPayload:    withPayload,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: searching: %w", err)
	}
	out := make([]SearchResult, 0, len(resp.GetResult()))
	for _, hit := range resp.GetResult() {
		id := ""
		if hit.GetPayload() != nil {
			if v, ok := hit.GetPayload()["scipId"]; ok {
				id = v.GetStringValue()
			}
		}
		out = append(out, SearchResult{ID: id, Score: hit.GetScore()})
	}
	return out, nil
}

// Count returns the number of points currently stored.
func (s *Store) Count(ctx context.Context) (uint64, error) {
	exact := true
	resp, err := s.points.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.cfg.CollectionName,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("vectorstore: counting: %w", err)
	}
	return resp.GetResult().GetCount(), nil
}

func toPayload(extra map[string]any, scipID string) map[string]*qdrant.Value {
	out := map[string]*qdrant.Value{
		"scipId": qdrant.NewValueString(scipID),
	}
	for k, v := range extra {
		if s, ok := v.(string); ok {
			out[k] = qdrant.NewValueString(s)
		}
	}
	return out
}

// stableUint64 hashes a SCIP id into Qdrant's numeric point id space with
// FNV-1a, since Qdrant point ids must be a u64 or UUID and our ids are
// structural strings.
func stableUint64(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}
