package graphstore

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
)

// UpsertFile writes a new current version of a FILE node. If a current
// version already exists at the same id, the caller must have already
// closed it via CloseVersion/Supersede — UpsertFile always MERGEs on
// (id, validFrom) so two calls for the same id but different validFrom
// never collide.
func (s *Store) UpsertFile(ctx context.Context, f graphmodel.File) error {
	_, err := s.ExecuteWrite(ctx, `
		MERGE (n:FILE {id: $id, validFrom: $validFrom})
		SET n.path = $path, n.language = $language, n.contentHash = $contentHash, n.projectId = $projectId,
		    n.validTo = $validTo, n.createdAt = $createdAt, n.txId = $txId
	`, map[string]any{
		"id": f.ID, "path": f.Path, "language": f.Language, "contentHash": f.ContentHash, "projectId": f.ProjectID,
		"validFrom": f.ValidFrom, "validTo": timePtr(f.ValidTo), "createdAt": f.CreatedAt, "txId": f.TxID,
	})
	return err
}

// UpsertSymbol writes a new current version of a FUNCTION or CLASS node.
func (s *Store) UpsertSymbol(ctx context.Context, sym graphmodel.Symbol) error {
	_, err := s.ExecuteWrite(ctx, fmt.Sprintf(`
		MERGE (n:%s {id: $id, validFrom: $validFrom})
		SET n.name = $name, n.filePath = $filePath, n.startLine = $startLine,
		    n.endLine = $endLine, n.isExported = $isExported, n.summary = $summary,
		    n.projectId = $projectId, n.validTo = $validTo, n.createdAt = $createdAt, n.txId = $txId
	`, string(sym.Kind)), map[string]any{
		"id": sym.ID, "name": sym.Name, "filePath": sym.FilePath,
		"startLine": sym.StartLine, "endLine": sym.EndLine, "isExported": sym.IsExported,
		"summary": sym.Summary, "projectId": sym.ProjectID,
		"validFrom": sym.ValidFrom, "validTo": timePtr(sym.ValidTo), "createdAt": sym.CreatedAt, "txId": sym.TxID,
	})
	return err
}

// CloseCurrent sets validTo on the current (validTo IS NULL) version at id,
// the first half of a supersession.
func (s *Store) CloseCurrent(ctx context.Context, label, id string, at time.Time) error {
	_, err := s.ExecuteWrite(ctx, fmt.Sprintf(`
		MATCH (n:%s {id: $id})
		WHERE n.validTo IS NULL
		SET n.validTo = $at
	`, label), map[string]any{"id": id, "at": at})
	return err
}

// Supersede writes the SUPERSEDES edge from the new current version to the
// now-closed old version, both stamped with the rebuild's transaction id.
func (s *Store) Supersede(ctx context.Context, label string, sup graphmodel.Supersession) error {
	_, err := s.ExecuteWrite(ctx, fmt.Sprintf(`
		MATCH (old:%s {id: $oldId}), (new:%s {id: $newId})
		WHERE old.validTo = $at AND new.validFrom = $at
		MERGE (new)-[r:SUPERSEDES {txId: $txId}]->(old)
	`, label, label), map[string]any{
		"oldId": sup.OldID, "newId": sup.NewID, "at": sup.At, "txId": sup.TxID,
	})
	return err
}

// CreateEdge writes a generic relationship between two existing nodes,
// matched by id regardless of label.
func (s *Store) CreateEdge(ctx context.Context, rel graphmodel.Relationship, fromID, toID string, props map[string]any) error {
	params := map[string]any{"fromId": fromID, "toId": toID}
	for k, v := range props {
		params[k] = v
	}
	_, err := s.ExecuteWrite(ctx, fmt.Sprintf(`
		MATCH (a {id: $fromId}), (b {id: $toId})
		MERGE (a)-[r:%s]->(b)
		SET r += $props
	`, rel), map[string]any{"fromId": fromID, "toId": toID, "props": props})
	return err
}

// UpsertTx writes an immutable GRAPH_TX audit record.
func (s *Store) UpsertTx(ctx context.Context, tx graphmodel.Tx) error {
	_, err := s.ExecuteWrite(ctx, `
		CREATE (t:GRAPH_TX {
			id: $id, type: $type, agentId: $agentId, sessionId: $sessionId,
			gitCommit: $gitCommit, timestamp: $timestamp, mode: $mode,
			filesAffected: $filesAffected, nodeCount: $nodeCount,
			durationMs: $durationMs, projectId: $projectId
		})
	`, map[string]any{
		"id": tx.ID, "type": tx.Type, "agentId": tx.AgentID, "sessionId": tx.SessionID,
		"gitCommit": tx.GitCommit, "timestamp": tx.Timestamp, "mode": string(tx.Mode),
		"filesAffected": tx.FilesAffected, "nodeCount": tx.NodeCount,
		"durationMs": tx.DurationMs, "projectId": tx.ProjectID,
	})
	return err
}

// UpdateTxStats fills in the fields a GRAPH_TX node only knows after the
// parse+MERGE loop completes: which files changed, how many nodes were
// written, and how long it took (spec.md §4.4 step 4).
func (s *Store) UpdateTxStats(ctx context.Context, txID string, filesAffected []string, nodeCount int, durationMs int64) error {
	_, err := s.ExecuteWrite(ctx, `
		MATCH (t:GRAPH_TX {id: $id})
		SET t.filesAffected = $filesAffected, t.nodeCount = $nodeCount, t.durationMs = $durationMs
	`, map[string]any{
		"id": txID, "filesAffected": filesAffected, "nodeCount": nodeCount, "durationMs": durationMs,
	})
	return err
}

// CurrentByPath finds the current FILE node at an absolute path, if any.
func (s *Store) CurrentByPath(ctx context.Context, projectID, path string) (*graphmodel.File, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (n:FILE {projectId: $projectId, path: $path})
		WHERE n.validTo IS NULL
		RETURN n
		LIMIT 1
	`, map[string]any{"projectId": projectID, "path": path})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	f := decodeFile(rows[0]["n"])
	return &f, nil
}

func timePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func decodeFile(v any) graphmodel.File {
	node, ok := v.(dbtype.Node)
	if !ok {
		return graphmodel.File{}
	}
	return graphmodel.File{
		ID:          str(node.Props["id"]),
		Path:        str(node.Props["path"]),
		Language:    str(node.Props["language"]),
		ContentHash: str(node.Props["contentHash"]),
		ProjectID:   str(node.Props["projectId"]),
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
