package graphstore

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
)

// ActiveClaimOnTarget returns the active (validTo IS NULL) CLAIM on targetId,
// if any, regardless of who holds it. agent_claim's conflict check compares
// its AgentID against the caller.
func (s *Store) ActiveClaimOnTarget(ctx context.Context, targetID string) (*graphmodel.Claim, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (c:CLAIM {targetId: $targetId})
		WHERE c.validTo IS NULL
		RETURN c
		LIMIT 1
	`, map[string]any{"targetId": targetID})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	c := decodeClaim(rows[0]["c"])
	return &c, nil
}

// TryCreateClaim implements agent_claim's conflict-check-and-create as one
// Cypher write (spec.md §5): it reads the active claim on targetId (if any)
// and the target's current contentHash, and only creates c's CLAIM node and
// TARGETS edge when no other agent already holds an active claim there. The
// check and the create happen inside the same transaction, so two
// concurrent calls for the same target can never both create a claim — one
// of them always observes the other's row and is turned into a conflict.
// The returned conflict is non-nil exactly when the create was skipped; the
// returned contentHash is always the target's snapshot at the time of the
// call, for use as the claim's targetVersionSHA.
func (s *Store) TryCreateClaim(ctx context.Context, c graphmodel.Claim) (conflict *graphmodel.Claim, contentHash string, err error) {
	rows, err := s.ExecuteWrite(ctx, `
		MATCH (t {id: $targetId})
		OPTIONAL MATCH (existing:CLAIM {targetId: $targetId})
		WHERE existing.validTo IS NULL
		WITH t, existing, t.contentHash AS contentHash
		FOREACH (ignoreMe IN CASE WHEN existing IS NULL OR existing.agentId = $agentId THEN [1] ELSE [] END |
			CREATE (c:CLAIM {
				id: $id, agentId: $agentId, sessionId: $sessionId, taskId: $taskId,
				claimType: $claimType, targetId: $targetId, intent: $intent,
				validFrom: $validFrom, validTo: $validTo, targetVersionSHA: contentHash,
				projectId: $projectId
			})-[:TARGETS]->(t)
		)
		RETURN existing AS existing, contentHash AS contentHash
	`, map[string]any{
		"id": c.ID, "agentId": c.AgentID, "sessionId": c.SessionID, "taskId": c.TaskID,
		"claimType": string(c.ClaimType), "targetId": c.TargetID, "intent": c.Intent,
		"validFrom": c.ValidFrom, "validTo": timePtr(c.ValidTo),
		"projectId": c.ProjectID,
	})
	if err != nil {
		return nil, "", err
	}
	if len(rows) == 0 {
		return nil, "", nil
	}
	if rows[0]["existing"] != nil {
		ex := decodeClaim(rows[0]["existing"])
		if ex.AgentID != c.AgentID {
			conflict = &ex
		}
	}
	return conflict, str(rows[0]["contentHash"]), nil
}

// ClaimByID fetches a single claim regardless of state.
func (s *Store) ClaimByID(ctx context.Context, claimID string) (*graphmodel.Claim, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (c:CLAIM {id: $id})
		RETURN c
		LIMIT 1
	`, map[string]any{"id": claimID})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	c := decodeClaim(rows[0]["c"])
	return &c, nil
}

// CloseClaim closes an active claim with the given reason. It only applies
// the write if the claim is still active (validTo IS NULL), making the
// check-then-close atomic from the caller's perspective.
func (s *Store) CloseClaim(ctx context.Context, claimID, reason string, at time.Time) (bool, error) {
	rows, err := s.ExecuteWrite(ctx, `
		MATCH (c:CLAIM {id: $id})
		WHERE c.validTo IS NULL
		SET c.validTo = $at, c.invalidationReason = $reason
		RETURN c.id AS id
	`, map[string]any{"id": claimID, "at": at, "reason": reason})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// CloseClaimsForTask closes every active claim for taskId with the given
// reason (task-completion hook, spec.md §4.7).
func (s *Store) CloseClaimsForTask(ctx context.Context, taskID, reason string, at time.Time) ([]string, error) {
	rows, err := s.ExecuteWrite(ctx, `
		MATCH (c:CLAIM {taskId: $taskId})
		WHERE c.validTo IS NULL
		SET c.validTo = $at, c.invalidationReason = $reason
		RETURN c.id AS id
	`, map[string]any{"taskId": taskID, "at": at, "reason": reason})
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

// InvalidateStaleClaims implements the post-rebuild sweep: any active claim
// whose target has a newer version than the claim's validFrom is closed
// with reason "code_changed".
func (s *Store) InvalidateStaleClaims(ctx context.Context, projectID string, at time.Time) ([]string, error) {
	rows, err := s.ExecuteWrite(ctx, `
		MATCH (c:CLAIM {projectId: $projectId})-[:TARGETS]->(t)
		WHERE c.validTo IS NULL AND t.validFrom > c.validFrom
		SET c.validTo = $at, c.invalidationReason = 'code_changed'
		RETURN c.id AS id
	`, map[string]any{"projectId": projectID, "at": at})
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

// ClaimsByAgent returns every claim (any state) belonging to agentId.
func (s *Store) ClaimsByAgent(ctx context.Context, projectID, agentID string) ([]graphmodel.Claim, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (c:CLAIM {projectId: $projectId, agentId: $agentId})
		RETURN c
		ORDER BY c.validFrom DESC
	`, map[string]any{"projectId": projectID, "agentId": agentID})
	if err != nil {
		return nil, err
	}
	return decodeClaims(rows), nil
}

// AllClaims returns every claim (any state) in projectId, for
// coordination_overview.
func (s *Store) AllClaims(ctx context.Context, projectID string) ([]graphmodel.Claim, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (c:CLAIM {projectId: $projectId})
		RETURN c
		ORDER BY c.validFrom DESC
	`, map[string]any{"projectId": projectID})
	if err != nil {
		return nil, err
	}
	return decodeClaims(rows), nil
}

func decodeClaims(rows []Record) []graphmodel.Claim {
	out := make([]graphmodel.Claim, 0, len(rows))
	for _, row := range rows {
		out = append(out, decodeClaim(row["c"]))
	}
	return out
}

func decodeClaim(v any) graphmodel.Claim {
	node, ok := v.(dbtype.Node)
	if !ok {
		return graphmodel.Claim{}
	}
	var validTo *time.Time
	if t, ok := node.Props["validTo"].(time.Time); ok {
		validTo = &t
	}
	return graphmodel.Claim{
		ID:                 str(node.Props["id"]),
		AgentID:            str(node.Props["agentId"]),
		SessionID:          str(node.Props["sessionId"]),
		TaskID:             str(node.Props["taskId"]),
		ClaimType:          graphmodel.ClaimType(str(node.Props["claimType"])),
		TargetID:           str(node.Props["targetId"]),
		Intent:             str(node.Props["intent"]),
		ValidFrom:          timeVal(node.Props["validFrom"]),
		ValidTo:            validTo,
		InvalidationReason: str(node.Props["invalidationReason"]),
		TargetVersionSHA:   str(node.Props["targetVersionSHA"]),
		ProjectID:          str(node.Props["projectId"]),
	}
}
