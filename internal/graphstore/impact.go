package graphstore

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
)

// ImportersOf returns every current FILE that imports one of affectedPaths,
// directly or transitively through one intermediate FILE (depth 2), via
// FILE-IMPORTS->IMPORT-REFERENCES->FILE resolution.
func (s *Store) ImportersOf(ctx context.Context, projectID string, affectedPaths []string, maxDepth int) ([]graphmodel.File, error) {
	if len(affectedPaths) == 0 {
		return nil, nil
	}
	rows, err := s.ExecuteRead(ctx, `
		MATCH (a:FILE {projectId: $projectId})-[:IMPORTS]->(:IMPORT)-[:REFERENCES]->(b:FILE {projectId: $projectId})
		WHERE a.validTo IS NULL AND b.validTo IS NULL AND b.path IN $paths
		RETURN DISTINCT a AS n
		UNION
		MATCH (a:FILE {projectId: $projectId})-[:IMPORTS]->(:IMPORT)-[:REFERENCES]->(mid:FILE {projectId: $projectId})-[:IMPORTS]->(:IMPORT)-[:REFERENCES]->(b:FILE {projectId: $projectId})
		WHERE $maxDepth >= 2 AND a.validTo IS NULL AND mid.validTo IS NULL AND b.validTo IS NULL AND b.path IN $paths
		RETURN DISTINCT a AS n
	`, map[string]any{"projectId": projectID, "paths": affectedPaths, "maxDepth": maxDepth})
	if err != nil {
		return nil, err
	}
	out := make([]graphmodel.File, 0, len(rows))
	for _, row := range rows {
		out = append(out, decodeFile(row["n"]))
	}
	return out, nil
}

// UncoveredExportedFunctions returns exported FUNCTION nodes with no
// incoming CALLS edge from a function defined in a file matching one of
// testPathSuffixes (e.g. "_test.go"), used to seed suggest_tests.
func (s *Store) UncoveredExportedFunctions(ctx context.Context, projectID string, testPathSuffixes []string) ([]graphmodel.Symbol, error) {
	rows, err := s.ExecuteRead(ctx, `
		MATCH (f:FUNCTION {projectId: $projectId, isExported: true})
		WHERE f.validTo IS NULL
		OPTIONAL MATCH (caller:FUNCTION)-[:CALLS]->(f)
		WHERE caller.validTo IS NULL AND any(suffix IN $suffixes WHERE caller.filePath ENDS WITH suffix)
		WITH f, count(caller) AS testCallers
		WHERE testCallers = 0
		RETURN f
	`, map[string]any{"projectId": projectID, "suffixes": testPathSuffixes})
	if err != nil {
		return nil, err
	}
	out := make([]graphmodel.Symbol, 0, len(rows))
	for _, row := range rows {
		node, ok := row["f"].(dbtype.Node)
		if !ok {
			continue
		}
		out = append(out, graphmodel.Symbol{
			ID:         str(node.Props["id"]),
			Name:       str(node.Props["name"]),
			FilePath:   str(node.Props["filePath"]),
			StartLine:  intVal(node.Props["startLine"]),
			EndLine:    intVal(node.Props["endLine"]),
			Kind:       graphmodel.LabelFunction,
			IsExported: boolVal(node.Props["isExported"]),
			Summary:    str(node.Props["summary"]),
			ProjectID:  str(node.Props["projectId"]),
		})
	}
	return out, nil
}
