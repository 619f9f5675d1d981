// Package docs implements index_docs and search_docs (spec.md §3's SECTION
// row, expanded in SPEC_FULL.md §4.10): Markdown ingestion split on ATX
// headings into SECTION nodes, and BM25-Plus search scoped to
// DOCUMENT/SECTION content.
package docs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
	"github.com/codegraphd/codegraphd/internal/graphstore"
	"github.com/codegraphd/codegraphd/internal/retrieval"
	"github.com/codegraphd/codegraphd/internal/scip"
)

// Engine indexes and searches Markdown documentation.
type Engine struct {
	graph    *graphstore.Store
	sections []retrieval.Document
	lexicon  *retrieval.LexicalIndex
}

// New constructs a docs Engine with an empty lexical index. Ingest rebuilds
// the index after each call.
func New(graph *graphstore.Store) *Engine {
	return &Engine{graph: graph, lexicon: retrieval.NewLexicalIndex(nil)}
}

// heading is one parsed ATX heading and the line range of its body, which
// ends on the line before the next heading of any depth (or on the last
// line of the file).
type heading struct {
	text      string
	startLine int
	endLine   int
}

// IngestFailure names a single file that failed to ingest.
type IngestFailure struct {
	Path  string
	Error string
}

// IngestResult is index_docs's response shape.
type IngestResult struct {
	Indexed  []string
	Failures []IngestFailure
}

// Ingest walks paths (files or directories containing .md files), splits
// each document on ATX headings into SECTION nodes chained by
// NEXT_SECTION and linked to their DOCUMENT by SECTION_OF, and feeds the
// lexical index. Partial failures are collected per file; the caller
// decides ok=false only when every file failed (spec.md §4.10).
func (e *Engine) Ingest(ctx context.Context, projectID string, paths []string, txID string) (IngestResult, error) {
	var result IngestResult
	for _, root := range paths {
		files, err := markdownFiles(root)
		if err != nil {
			result.Failures = append(result.Failures, IngestFailure{Path: root, Error: err.Error()})
			continue
		}
		for _, path := range files {
			if err := e.ingestFile(ctx, projectID, path, txID); err != nil {
				result.Failures = append(result.Failures, IngestFailure{Path: path, Error: err.Error()})
				continue
			}
			result.Indexed = append(result.Indexed, path)
		}
	}
	e.lexicon = retrieval.NewLexicalIndex(e.sections)
	return result, nil
}

func markdownFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	var out []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.EqualFold(filepath.Ext(path), ".md") {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

func (e *Engine) ingestFile(ctx context.Context, projectID, path string, txID string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("docs: reading %s: %w", path, err)
	}
	headings := splitHeadings(string(data))

	now := time.Now()
	docID := scip.Document(projectID, path)
	title := path
	if len(headings) > 0 {
		title = headings[0].text
	}
	doc := graphmodel.Document{
		ID:           docID,
		RelativePath: path,
		Kind:         "markdown",
		Title:        title,
		ProjectID:    projectID,
		Temporal:     graphmodel.OpenVersion(now, txID),
	}
	if err := e.graph.UpsertDocument(ctx, doc); err != nil {
		return err
	}

	var prevSectionID string
	for _, h := range headings {
		secID := scip.Section(projectID, path, h.text, h.startLine)
		sec := graphmodel.Section{
			ID:           secID,
			Heading:      h.text,
			RelativePath: path,
			StartLine:    h.startLine,
			EndLine:      h.endLine,
			ProjectID:    projectID,
			DocumentID:   docID,
		}
		if err := e.graph.UpsertSection(ctx, sec); err != nil {
			return err
		}
		if prevSectionID != "" {
			_ = e.graph.CreateEdge(ctx, graphmodel.RelNextSection, prevSectionID, secID, nil)
		}
		prevSectionID = secID

		e.sections = append(e.sections, retrieval.Document{
			ID:   secID,
			Name: h.text,
			Path: path,
		})
	}
	return nil
}

// splitHeadings splits Markdown content on ATX headings (`#` through
// `######`). Content before the first heading is not represented as a
// section, matching the SECTION node's requirement of a heading.
func splitHeadings(content string) []heading {
	lines := strings.Split(content, "\n")
	var out []heading
	var current *heading
	for i, line := range lines {
		lineNo := i + 1
		if text, ok := atxText(line); ok {
			if current != nil {
				current.endLine = lineNo - 1
				out = append(out, *current)
			}
			current = &heading{text: text, startLine: lineNo}
		}
	}
	if current != nil {
		end := len(lines)
		if strings.HasSuffix(content, "\n") {
			end--
		}
		current.endLine = end
		out = append(out, *current)
	}
	return out
}

func atxText(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " ")
	depth := 0
	for depth < len(trimmed) && trimmed[depth] == '#' {
		depth++
	}
	if depth == 0 || depth > 6 {
		return "", false
	}
	if depth == len(trimmed) {
		return "", false
	}
	if trimmed[depth] != ' ' {
		return "", false
	}
	return strings.TrimSpace(trimmed[depth:]), true
}

// SearchResult is one search_docs hit.
type SearchResult struct {
	SectionID string
	Heading   string
	Path      string
	Score     float64
}

// Search runs the shared BM25-Plus ranker (internal/retrieval) scoped to
// ingested DOCUMENT/SECTION content.
func (e *Engine) Search(query string, limit int) []SearchResult {
	if limit <= 0 {
		limit = 10
	}
	hits := e.lexicon.Search(query, limit)
	out := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, SearchResult{SectionID: h.ID, Score: h.Score})
	}
	return out
}
