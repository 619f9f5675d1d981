package graphstore

import (
	"context"
)

// TxStats summarizes the GRAPH_TX audit trail for graph_health.
type TxStats struct {
	LatestTxID string
	TxCount    int
}

// LatestTxStats returns the most recent GRAPH_TX id (by timestamp) and the
// total count of GRAPH_TX nodes for projectID. An empty graph reports a
// zero TxStats, not an error.
func (s *Store) LatestTxStats(ctx context.Context, projectID string) (TxStats, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (t:GRAPH_TX {projectId: $projectId})
		RETURN t.id AS id, t.timestamp AS ts
		ORDER BY t.timestamp DESC
	`, map[string]any{"projectId": projectID})
	if err != nil {
		return TxStats{}, err
	}
	if len(rows) == 0 {
		return TxStats{}, nil
	}
	return TxStats{LatestTxID: str(rows[0]["id"]), TxCount: len(rows)}, nil
}

// CurrentNodeCount counts every current (validTo IS NULL) FILE, FUNCTION,
// and CLASS node in projectID, reported by graph_health as memgraphNodes.
// No in-memory cached count is kept to compare it against.
func (s *Store) CurrentNodeCount(ctx context.Context, projectID string) (int, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (n {projectId: $projectId})
		WHERE (n:FILE OR n:FUNCTION OR n:CLASS) AND n.validTo IS NULL
		RETURN count(n) AS cnt
	`, map[string]any{"projectId": projectID})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return intVal(rows[0]["cnt"]), nil
}
