// Package scip builds and parses the SCIP-style node identifiers used
// throughout the graph model: {projectId}:{kind}:{relativePath}[:{symbolName}[:{startLine}]].
//
// Identifiers are content-addressed by structural position, not by hash, so
// a rename produces a new ID and the old one is retired via temporal
// invalidation rather than updated in place.
package scip

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates the node kinds that participate in the SCIP ID scheme.
type Kind string

const (
	KindFile     Kind = "file"
	KindFunction Kind = "function"
	KindClass    Kind = "class"
	KindDocument Kind = "document"
	KindSection  Kind = "section"
)

// ID is a parsed SCIP identifier.
type ID struct {
	ProjectID    string
	Kind         Kind
	RelativePath string
	Symbol       string // empty for FILE/DOCUMENT
	StartLine    int    // 0 when absent
	HasStartLine bool
}

// File builds a FILE-kind SCIP ID: {projectId}:file:{relativePath}
func File(projectID, relativePath string) string {
	return fmt.Sprintf("%s:%s:%s", projectID, KindFile, relativePath)
}

// Document builds a DOCUMENT-kind SCIP ID: {projectId}:document:{relativePath}
func Document(projectID, relativePath string) string {
	return fmt.Sprintf("%s:%s:%s", projectID, KindDocument, relativePath)
}

// Symbol builds a FUNCTION/CLASS-kind SCIP ID:
// {projectId}:{kind}:{relativePath}:{symbolName}:{startLine}
func Symbol(projectID string, kind Kind, relativePath, symbolName string, startLine int) string {
	return fmt.Sprintf("%s:%s:%s:%s:%d", projectID, kind, relativePath, symbolName, startLine)
}

// Section builds a SECTION-kind SCIP ID, keyed by heading and start line
// like Symbol since a document can repeat a heading text.
func Section(projectID, relativePath, heading string, startLine int) string {
	return Symbol(projectID, KindSection, relativePath, heading, startLine)
}

// Parse decomposes a SCIP ID produced by File, Document, or Symbol.
// Relative paths themselves never contain ':' (callers must reject such
// paths during ingest), so a fixed split count is safe.
func Parse(id string) (ID, error) {
	parts := strings.SplitN(id, ":", 5)
	if len(parts) < 3 {
		return ID{}, fmt.Errorf("scip: malformed id %q: expected at least projectId:kind:path", id)
	}

	out := ID{
		ProjectID:    parts[0],
		Kind:         Kind(parts[1]),
		RelativePath: parts[2],
	}

	switch len(parts) {
	case 3:
		return out, nil
	case 4:
		out.Symbol = parts[3]
		return out, nil
	case 5:
		out.Symbol = parts[3]
		line, err := strconv.Atoi(parts[4])
		if err != nil {
			return ID{}, fmt.Errorf("scip: malformed id %q: start line not an integer: %w", id, err)
		}
		out.StartLine = line
		out.HasStartLine = true
		return out, nil
	default:
		return ID{}, fmt.Errorf("scip: malformed id %q: too many segments", id)
	}
}

// String reconstructs the canonical string form of the ID.
func (id ID) String() string {
	switch {
	case id.HasStartLine:
		return Symbol(id.ProjectID, id.Kind, id.RelativePath, id.Symbol, id.StartLine)
	case id.Symbol != "":
		return fmt.Sprintf("%s:%s:%s:%s", id.ProjectID, id.Kind, id.RelativePath, id.Symbol)
	default:
		return fmt.Sprintf("%s:%s:%s", id.ProjectID, id.Kind, id.RelativePath)
	}
}
