package graphstore

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
)

// Edge is a lightweight (relationship, neighbor id) pair used by relevance
// propagation and neighbor expansion; it carries no temporal information.
type Edge struct {
	Rel graphmodel.Relationship
	ID  string
}

// EdgesFrom returns the outgoing current-graph edges from id.
func (s *Store) EdgesFrom(ctx context.Context, id string) ([]Edge, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (a {id: $id})-[r]->(b)
		RETURN type(r) AS rel, b.id AS id
	`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	return decodeEdges(rows), nil
}

// EdgesTo returns the incoming current-graph edges into id.
func (s *Store) EdgesTo(ctx context.Context, id string) ([]Edge, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (a)-[r]->(b {id: $id})
		RETURN type(r) AS rel, a.id AS id
	`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	return decodeEdges(rows), nil
}

func decodeEdges(rows []Record) []Edge {
	out := make([]Edge, 0, len(rows))
	for _, row := range rows {
		out = append(out, Edge{Rel: graphmodel.Relationship(str(row["rel"])), ID: str(row["id"])})
	}
	return out
}

// SymbolByID fetches a FUNCTION or CLASS node by id regardless of label.
func (s *Store) SymbolByID(ctx context.Context, id string) (*graphmodel.Symbol, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (n {id: $id})
		WHERE n.validTo IS NULL AND (n:FUNCTION OR n:CLASS)
		RETURN n, labels(n) AS labels
		LIMIT 1
	`, map[string]any{"id": id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	node, ok := rows[0]["n"].(dbtype.Node)
	if !ok {
		return nil, nil
	}
	kind := graphmodel.LabelFunction
	if labels, ok := rows[0]["labels"].([]any); ok {
		for _, l := range labels {
			if str(l) == string(graphmodel.LabelClass) {
				kind = graphmodel.LabelClass
			}
		}
	}
	sym := graphmodel.Symbol{
		ID:         str(node.Props["id"]),
		Name:       str(node.Props["name"]),
		FilePath:   str(node.Props["filePath"]),
		StartLine:  intVal(node.Props["startLine"]),
		EndLine:    intVal(node.Props["endLine"]),
		Kind:       kind,
		IsExported: boolVal(node.Props["isExported"]),
		Summary:    str(node.Props["summary"]),
		ProjectID:  str(node.Props["projectId"]),
	}
	return &sym, nil
}

// CurrentSymbols returns every current (validTo IS NULL) FUNCTION and
// CLASS node in projectID, for the embedding-regeneration job to re-index.
func (s *Store) CurrentSymbols(ctx context.Context, projectID string) ([]graphmodel.Symbol, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (n)
		WHERE n.validTo IS NULL AND (n:FUNCTION OR n:CLASS) AND n.projectId = $projectId
		RETURN n, labels(n) AS labels
	`, map[string]any{"projectId": projectID})
	if err != nil {
		return nil, err
	}
	out := make([]graphmodel.Symbol, 0, len(rows))
	for _, row := range rows {
		node, ok := row["n"].(dbtype.Node)
		if !ok {
			continue
		}
		kind := graphmodel.LabelFunction
		if labels, ok := row["labels"].([]any); ok {
			for _, l := range labels {
				if str(l) == string(graphmodel.LabelClass) {
					kind = graphmodel.LabelClass
				}
			}
		}
		out = append(out, graphmodel.Symbol{
			ID:         str(node.Props["id"]),
			Name:       str(node.Props["name"]),
			FilePath:   str(node.Props["filePath"]),
			StartLine:  intVal(node.Props["startLine"]),
			EndLine:    intVal(node.Props["endLine"]),
			Kind:       kind,
			IsExported: boolVal(node.Props["isExported"]),
			Summary:    str(node.Props["summary"]),
			ProjectID:  str(node.Props["projectId"]),
		})
	}
	return out, nil
}

// LearningsForTargets returns LEARNING nodes with an APPLIES_TO edge into
// any of targetIDs.
func (s *Store) LearningsForTargets(ctx context.Context, targetIDs []string) ([]graphmodel.Learning, error) {
	if len(targetIDs) == 0 {
		return nil, nil
	}
	rows, err := s.ExecuteRead(ctx, `
		MATCH (l:LEARNING)-[:APPLIES_TO]->(t)
		WHERE t.id IN $ids
		RETURN DISTINCT l
	`, map[string]any{"ids": targetIDs})
	if err != nil {
		return nil, err
	}
	out := make([]graphmodel.Learning, 0, len(rows))
	for _, row := range rows {
		if node, ok := row["l"].(dbtype.Node); ok {
			out = append(out, graphmodel.Learning{
				ID:          str(node.Props["id"]),
				Content:     str(node.Props["content"]),
				Confidence:  floatVal(node.Props["confidence"]),
				ExtractedAt: timeVal(node.Props["extractedAt"]),
				ProjectID:   str(node.Props["projectId"]),
			})
		}
	}
	return out, nil
}

func intVal(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func floatVal(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}
