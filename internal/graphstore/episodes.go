package graphstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
)

// UpsertEpisode writes an immutable EPISODE node (spec.md §3 invariant #9:
// episodes are never rewritten, only created).
func (s *Store) UpsertEpisode(ctx context.Context, ep graphmodel.Episode) error {
	metadataJSON := "{}"
	if ep.Metadata != nil {
		if b, err := json.Marshal(ep.Metadata); err == nil {
			metadataJSON = string(b)
		}
	}
	_, err := s.ExecuteWrite(ctx, `
		CREATE (e:EPISODE {
			id: $id, agentId: $agentId, sessionId: $sessionId, taskId: $taskId,
			type: $type, content: $content, timestamp: $timestamp, outcome: $outcome,
			sensitive: $sensitive, metadata: $metadata, projectId: $projectId
		})
	`, map[string]any{
		"id": ep.ID, "agentId": ep.AgentID, "sessionId": ep.SessionID, "taskId": ep.TaskID,
		"type": string(ep.Type), "content": ep.Content, "timestamp": ep.Timestamp,
		"outcome": ep.Outcome, "sensitive": ep.Sensitive, "metadata": metadataJSON, "projectId": ep.ProjectID,
	})
	return err
}

// LastEpisodeID returns the most recent episode id for (agentId, sessionId)
// in projectId, or "" if none exists. Used to anchor a fresh NEXT_EPISODE
// chain when the in-process hint map has no entry (e.g. after a restart).
func (s *Store) LastEpisodeID(ctx context.Context, projectID, agentID, sessionID string) (string, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (e:EPISODE {projectId: $projectId, agentId: $agentId, sessionId: $sessionId})
		RETURN e.id AS id
		ORDER BY e.timestamp DESC
		LIMIT 1
	`, map[string]any{"projectId": projectID, "agentId": agentID, "sessionId": sessionID})
	if err != nil || len(rows) == 0 {
		return "", err
	}
	id, _ := rows[0]["id"].(string)
	return id, nil
}

// QueryEpisodes returns episodes in projectId, optionally filtered by type
// and/or taskId and/or a since timestamp, most recent first.
func (s *Store) QueryEpisodes(ctx context.Context, projectID string, types []string, taskID string, since *time.Time) ([]graphmodel.Episode, error) {
	cypher := `
		MATCH (e:EPISODE {projectId: $projectId})
		WHERE ($types IS NULL OR e.type IN $types)
		  AND ($taskId = '' OR e.taskId = $taskId)
		  AND ($since IS NULL OR e.timestamp >= $since)
		RETURN e
		ORDER BY e.timestamp DESC
	`
	var typesParam any
	if len(types) > 0 {
		typesParam = types
	}
	var sinceParam any
	if since != nil {
		sinceParam = *since
	}
	rows, err := s.ExecuteRead(ctx, cypher, map[string]any{
		"projectId": projectID, "types": typesParam, "taskId": taskID, "since": sinceParam,
	})
	if err != nil {
		return nil, err
	}
	out := make([]graphmodel.Episode, 0, len(rows))
	for _, row := range rows {
		out = append(out, decodeEpisode(row["e"]))
	}
	return out, nil
}

// EpisodeEntities returns the ids of nodes linked from an episode by
// INVOLVES.
func (s *Store) EpisodeEntities(ctx context.Context, episodeID string) ([]string, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (e:EPISODE {id: $id})-[:INVOLVES]->(n)
		RETURN n.id AS id
	`, map[string]any{"id": episodeID})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if id, ok := row["id"].(string); ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func decodeEpisode(v any) graphmodel.Episode {
	node, ok := v.(dbtype.Node)
	if !ok {
		return graphmodel.Episode{}
	}
	var metadata map[string]any
	if raw := str(node.Props["metadata"]); raw != "" {
		_ = json.Unmarshal([]byte(raw), &metadata)
	}
	return graphmodel.Episode{
		ID:        str(node.Props["id"]),
		AgentID:   str(node.Props["agentId"]),
		SessionID: str(node.Props["sessionId"]),
		TaskID:    str(node.Props["taskId"]),
		Type:      graphmodel.EpisodeType(str(node.Props["type"])),
		Content:   str(node.Props["content"]),
		Timestamp: timeVal(node.Props["timestamp"]),
		Outcome:   str(node.Props["outcome"]),
		Sensitive: boolVal(node.Props["sensitive"]),
		Metadata:  metadata,
		ProjectID: str(node.Props["projectId"]),
	}
}

// UpsertLearning writes a LEARNING node produced by reflect().
func (s *Store) UpsertLearning(ctx context.Context, l graphmodel.Learning) error {
	_, err := s.ExecuteWrite(ctx, `
		CREATE (l:LEARNING {
			id: $id, content: $content, confidence: $confidence,
			extractedAt: $extractedAt, projectId: $projectId
		})
	`, map[string]any{
		"id": l.ID, "content": l.Content, "confidence": l.Confidence,
		"extractedAt": l.ExtractedAt, "projectId": l.ProjectID,
	})
	return err
}

func timeVal(v any) time.Time {
	t, _ := v.(time.Time)
	return t
}

func boolVal(v any) bool {
	b, _ := v.(bool)
	return b
}
