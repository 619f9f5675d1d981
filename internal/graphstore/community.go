package graphstore

import (
	"context"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
)

// FilesForProject returns every current FILE node in projectId.
func (s *Store) FilesForProject(ctx context.Context, projectID string) ([]graphmodel.File, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (n:FILE {projectId: $projectId})
		WHERE n.validTo IS NULL
		RETURN n
	`, map[string]any{"projectId": projectID})
	if err != nil {
		return nil, err
	}
	out := make([]graphmodel.File, 0, len(rows))
	for _, row := range rows {
		out = append(out, decodeFile(row["n"]))
	}
	return out, nil
}

// FilePair is one file-to-file connection discovered via an IMPORTS or
// CALLS-through-CONTAINS edge, used by the community detector as a proxy
// for inter-file coupling.
type FilePair struct {
	FromPath string
	ToPath   string
}

// FileLevelEdges returns every file-to-file edge in the project, derived
// from FILE-IMPORTS->IMPORT-REFERENCES->FILE (explicit import resolution)
// and FUNCTION-CALLS->FUNCTION lifted to their containing FILEs via
// CONTAINS (call coupling).
func (s *Store) FileLevelEdges(ctx context.Context, projectID string) ([]FilePair, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (a:FILE {projectId: $projectId})-[:IMPORTS]->(:IMPORT)-[:REFERENCES]->(b:FILE {projectId: $projectId})
		WHERE a.validTo IS NULL AND b.validTo IS NULL AND a <> b
		RETURN DISTINCT a.path AS fromPath, b.path AS toPath
		UNION
		MATCH (a:FILE {projectId: $projectId})-[:CONTAINS]->(:FUNCTION)-[:CALLS]->(:FUNCTION)<-[:CONTAINS]-(b:FILE {projectId: $projectId})
		WHERE a.validTo IS NULL AND b.validTo IS NULL AND a <> b
		RETURN DISTINCT a.path AS fromPath, b.path AS toPath
	`, map[string]any{"projectId": projectID})
	if err != nil {
		return nil, err
	}
	out := make([]FilePair, 0, len(rows))
	for _, row := range rows {
		out = append(out, FilePair{FromPath: str(row["fromPath"]), ToPath: str(row["toPath"])})
	}
	return out, nil
}

// UpsertCommunity writes a COMMUNITY node, replacing any prior members by
// first dropping its BELONGS_TO edges, then linking memberFileIDs.
func (s *Store) UpsertCommunity(ctx context.Context, c graphmodel.Community, memberFileIDs []string) error {
	_, err := s.ExecuteWrite(ctx, `
		MERGE (n:COMMUNITY {id: $id})
		SET n.label = $label, n.summary = $summary, n.memberCount = $memberCount, n.projectId = $projectId
		WITH n
		OPTIONAL MATCH (n)<-[r:BELONGS_TO]-()
		DELETE r
	`, map[string]any{
		"id": c.ID, "label": c.Label, "summary": c.Summary, "memberCount": c.MemberCount, "projectId": c.ProjectID,
	})
	if err != nil {
		return err
	}
	for _, fileID := range memberFileIDs {
		if err := s.CreateEdge(ctx, graphmodel.RelBelongsTo, fileID, c.ID, nil); err != nil {
			return err
		}
	}
	return nil
}
