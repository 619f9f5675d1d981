package graphstore

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
)

// UpsertDocument writes a new current version of a DOCUMENT node.
func (s *Store) UpsertDocument(ctx context.Context, d graphmodel.Document) error {
	_, err := s.ExecuteWrite(ctx, `
		MERGE (n:DOCUMENT {id: $id, validFrom: $validFrom})
		SET n.relativePath = $relativePath, n.kind = $kind, n.title = $title,
		    n.projectId = $projectId, n.validTo = $validTo, n.createdAt = $createdAt, n.txId = $txId
	`, map[string]any{
		"id": d.ID, "relativePath": d.RelativePath, "kind": d.Kind, "title": d.Title,
		"projectId": d.ProjectID, "validFrom": d.ValidFrom, "validTo": timePtr(d.ValidTo),
		"createdAt": d.CreatedAt, "txId": d.TxID,
	})
	return err
}

// UpsertSection writes a SECTION node and its SECTION_OF edge to documentID.
func (s *Store) UpsertSection(ctx context.Context, sec graphmodel.Section) error {
	_, err := s.ExecuteWrite(ctx, `
		MERGE (n:SECTION {id: $id})
		SET n.heading = $heading, n.relativePath = $relativePath, n.startLine = $startLine,
		    n.endLine = $endLine, n.projectId = $projectId, n.documentId = $documentId
		WITH n
		MATCH (d:DOCUMENT {id: $documentId})
		MERGE (n)-[:SECTION_OF]->(d)
	`, map[string]any{
		"id": sec.ID, "heading": sec.Heading, "relativePath": sec.RelativePath,
		"startLine": sec.StartLine, "endLine": sec.EndLine, "projectId": sec.ProjectID,
		"documentId": sec.DocumentID,
	})
	return err
}

// SectionsForDocument returns a document's SECTION nodes (for search_docs
// result hydration / index rebuilds).
func (s *Store) SectionsForDocument(ctx context.Context, documentID string) ([]graphmodel.Section, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (n:SECTION {documentId: $documentId})
		RETURN n
		ORDER BY n.startLine
	`, map[string]any{"documentId": documentID})
	if err != nil {
		return nil, err
	}
	out := make([]graphmodel.Section, 0, len(rows))
	for _, row := range rows {
		if node, ok := row["n"].(dbtype.Node); ok {
			out = append(out, graphmodel.Section{
				ID:           str(node.Props["id"]),
				Heading:      str(node.Props["heading"]),
				RelativePath: str(node.Props["relativePath"]),
				StartLine:    intVal(node.Props["startLine"]),
				EndLine:      intVal(node.Props["endLine"]),
				ProjectID:    str(node.Props["projectId"]),
				DocumentID:   str(node.Props["documentId"]),
			})
		}
	}
	return out, nil
}

// AllDocuments returns every current DOCUMENT node in projectId.
func (s *Store) AllDocuments(ctx context.Context, projectID string) ([]graphmodel.Document, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (n:DOCUMENT {projectId: $projectId})
		WHERE n.validTo IS NULL
		RETURN n
	`, map[string]any{"projectId": projectID})
	if err != nil {
		return nil, err
	}
	out := make([]graphmodel.Document, 0, len(rows))
	for _, row := range rows {
		if node, ok := row["n"].(dbtype.Node); ok {
			out = append(out, graphmodel.Document{
				ID:           str(node.Props["id"]),
				RelativePath: str(node.Props["relativePath"]),
				Kind:         str(node.Props["kind"]),
				Title:        str(node.Props["title"]),
				ProjectID:    str(node.Props["projectId"]),
			})
		}
	}
	return out, nil
}
