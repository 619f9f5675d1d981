// Package archrules implements arch_validate and arch_suggest
// (SPEC_FULL.md §4.13): a small declarative import-layer rule set,
// evaluated against the current IMPORT->REFERENCES edges. The
// error/warning severity split is adapted from the teacher's
// internal/guards package (HARD_BLOCK/SOFT_BLOCK/WARNING/SUGGESTION
// collapsed to the two that apply to a single rule kind); rule lookup
// itself follows internal/validation's registry-of-validators shape.
package archrules

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/codegraphd/codegraphd/internal/graphstore"
)

// RulesFile is the workspace-relative path rules load from. Its absence
// is not an error: arch_validate then reports ok=true with no violations.
const RulesFile = ".codegraphd/arch-rules.toml"

// Severity indicates whether a Violation fails arch_validate's ok check
// or is merely advisory.
type Severity int

const (
	// Warning violations are reported but do not flip ok to false.
	Warning Severity = iota
	// Error violations flip arch_validate's ok to false.
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "ERROR"
	}
	return "WARNING"
}

// Rule forbids files under From from importing files under To.
type Rule struct {
	From     string `toml:"from"`
	To       string `toml:"to"`
	Severity string `toml:"severity"` // "error" (default) or "warning"
}

func (r Rule) severity() Severity {
	if strings.EqualFold(r.Severity, "warning") {
		return Warning
	}
	return Error
}

type ruleDoc struct {
	Forbidden []Rule `toml:"forbidden"`
}

// Load reads RulesFile under workspaceRoot. A missing file returns an
// empty, non-error rule set.
func Load(workspaceRoot string) ([]Rule, error) {
	path := filepath.Join(workspaceRoot, RulesFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var doc ruleDoc
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("archrules: decode %s: %w", path, err)
	}
	return doc.Forbidden, nil
}

// Violation is one import edge that breaks a Rule.
type Violation struct {
	Rule     Rule
	FromPath string
	ToPath   string
	Severity Severity
	Message  string
}

// Outcome is arch_validate's aggregated result, mirroring the teacher's
// guards.Outcome shape: OK is false only when an Error-severity
// violation fired, matching arch_validate's documented ok semantics.
type Outcome struct {
	OK         bool
	Violations []Violation
}

// FormatMessage renders a human-readable summary of Violations, in the
// teacher's guards.Outcome.FormatBlockMessage style.
func (o Outcome) FormatMessage() string {
	if len(o.Violations) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Architecture rule violations:\n")
	for _, v := range o.Violations {
		sb.WriteString(fmt.Sprintf("\n[%s] %s imports %s (forbidden: %s -> %s)",
			v.Severity, v.FromPath, v.ToPath, v.Rule.From, v.Rule.To))
	}
	return sb.String()
}

// Validator evaluates rules against a project's import graph.
type Validator struct {
	graph *graphstore.Store
}

// New constructs a Validator over graph.
func New(graph *graphstore.Store) *Validator {
	return &Validator{graph: graph}
}

// Validate checks every current FILE-IMPORTS->IMPORT-REFERENCES->FILE edge
// in projectID against rules, returning every edge that violates one.
func (v *Validator) Validate(ctx context.Context, projectID string, rules []Rule) (Outcome, error) {
	if len(rules) == 0 {
		return Outcome{OK: true}, nil
	}
	edges, err := v.graph.FileLevelEdges(ctx, projectID)
	if err != nil {
		return Outcome{}, err
	}
	outcome := Outcome{OK: true}
	for _, e := range edges {
		for _, r := range rules {
			if hasPrefix(e.FromPath, r.From) && hasPrefix(e.ToPath, r.To) {
				sev := r.severity()
				if sev == Error {
					outcome.OK = false
				}
				outcome.Violations = append(outcome.Violations, Violation{
					Rule:     r,
					FromPath: e.FromPath,
					ToPath:   e.ToPath,
					Severity: sev,
				})
			}
		}
	}
	return outcome, nil
}

func hasPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	idx := strings.Index(path, prefix)
	return idx >= 0
}

// Suggest proposes one forbidden rule per distinct ordered pair of layers
// (as named by layerOf, e.g. "internal/mcp") that the current file-level
// edges already connect, sorted by From then To, used to bootstrap a rule
// file from an existing codebase. The current graph violates every rule
// it returns.
func (v *Validator) Suggest(ctx context.Context, projectID string) ([]Rule, error) {
	edges, err := v.graph.FileLevelEdges(ctx, projectID)
	if err != nil {
		return nil, err
	}
	seen := make(map[Rule]bool)
	var rules []Rule
	for _, e := range edges {
		from, to := layerOf(e.FromPath), layerOf(e.ToPath)
		if from == "" || to == "" || from == to {
			continue
		}
		r := Rule{From: from, To: to}
		if !seen[r] {
			seen[r] = true
			rules = append(rules, r)
		}
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].From != rules[j].From {
			return rules[i].From < rules[j].From
		}
		return rules[i].To < rules[j].To
	})
	return rules, nil
}

// layerOf returns the path segment naming a file's layer, e.g.
// "/repo/internal/mcp/server.go" -> "internal/mcp".
func layerOf(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for i, p := range parts {
		if p == "internal" && i+1 < len(parts) {
			return "internal/" + parts[i+1]
		}
	}
	return ""
}
