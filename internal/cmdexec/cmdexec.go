// Package cmdexec implements test_run, test_select, test_categorize, and
// suggest_tests (SPEC_FULL.md §4.12). These four tools are named in
// spec.md §6 but never given graph-model semantics, so this package is
// additive rather than a generalization of an existing module.
package cmdexec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
	"github.com/codegraphd/codegraphd/internal/graphstore"
)

// DefaultTimeout is used when RunInput.TimeoutMS is zero.
const DefaultTimeout = 120 * time.Second

// DefaultOutputLimit caps the captured bytes of stdout and of stderr, each
// stream truncated separately.
const DefaultOutputLimit = 1 << 20 // 1 MiB

// languageTestSuffixes maps a short language tag to the filename suffix
// that marks a file as a test file for that language.
var languageTestSuffixes = map[string]string{
	"go":         "_test.go",
	"python":     "_test.py",
	"typescript": ".spec.ts",
	"javascript": ".spec.js",
}

// Engine executes commands and derives test targets from the graph.
type Engine struct {
	graph        *graphstore.Store
	timeout      time.Duration
	outputLimit  int
	testSuffixes map[string]string
}

// Config tunes the engine's defaults; zero values fall back to the
// package defaults.
type Config struct {
	Timeout      time.Duration
	OutputLimit  int
	TestSuffixes map[string]string
}

// New constructs an Engine over graph.
func New(graph *graphstore.Store, cfg Config) *Engine {
	e := &Engine{
		graph:        graph,
		timeout:      cfg.Timeout,
		outputLimit:  cfg.OutputLimit,
		testSuffixes: cfg.TestSuffixes,
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if e.outputLimit <= 0 {
		e.outputLimit = DefaultOutputLimit
	}
	if e.testSuffixes == nil {
		e.testSuffixes = languageTestSuffixes
	}
	return e
}

// RunInput is test_run's argument shape.
type RunInput struct {
	Command   string
	Cwd       string
	TimeoutMS int
}

// RunResult is test_run's return shape.
type RunResult struct {
	ExitCode        int
	Stdout          string
	Stderr          string
	DurationMS      int64
	Truncated       bool
	ContractWarning string
}

// Run shells the command out via sh -c, enforcing a timeout and an output
// byte cap, in the manner of a generic command-execution tool: build an
// *exec.Cmd bound to a context.WithTimeout, capture stdout/stderr into
// separate buffers, and report exit code rather than erroring on a
// non-zero exit (a failing test run is a normal result, not a tool
// failure).
func (e *Engine) Run(ctx context.Context, in RunInput) (RunResult, error) {
	if strings.TrimSpace(in.Command) == "" {
		return RunResult{}, fmt.Errorf("cmdexec: command is required")
	}
	timeout := e.timeout
	if in.TimeoutMS > 0 {
		timeout = time.Duration(in.TimeoutMS) * time.Millisecond
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", in.Command)
	if in.Cwd != "" {
		cmd.Dir = in.Cwd
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	out, outTruncated := truncate(stdout.String(), e.outputLimit)
	errOut, errTruncated := truncate(stderr.String(), e.outputLimit)

	result := RunResult{
		Stdout:     out,
		Stderr:     errOut,
		DurationMS: duration.Milliseconds(),
		Truncated:  outTruncated || errTruncated,
	}
	if result.Truncated {
		result.ContractWarning = fmt.Sprintf("COMMAND_OUTPUT_TRUNCATED: output exceeded the %s capture limit", humanize.Bytes(uint64(e.outputLimit)))
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return result, fmt.Errorf("cmdexec: command timed out after %s", timeout)
	}
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if runErr != nil {
		return result, fmt.Errorf("cmdexec: command failed to start: %w", runErr)
	}
	return result, nil
}

func truncate(s string, limit int) (string, bool) {
	if len(s) <= limit {
		return s, false
	}
	return s[:limit], true
}

// SelectInput is test_select's argument shape: the set of files impact
// analysis flagged as affected.
type SelectInput struct {
	ProjectID     string
	AffectedPaths []string
}

// SelectedTest is one candidate test file, categorized by naming
// convention.
type SelectedTest struct {
	FilePath string
	Language string
}

// Select derives candidate test targets: FILE nodes that import, directly
// or transitively up to depth 2, one of in.AffectedPaths, filtered down to
// files whose name matches a known test-suffix convention.
func (e *Engine) Select(ctx context.Context, in SelectInput) ([]SelectedTest, error) {
	importers, err := e.graph.ImportersOf(ctx, in.ProjectID, in.AffectedPaths, 2)
	if err != nil {
		return nil, err
	}
	var out []SelectedTest
	for _, f := range importers {
		if lang, ok := e.categorize(f.Path); ok {
			out = append(out, SelectedTest{FilePath: f.Path, Language: lang})
		}
	}
	return out, nil
}

// Categorize reports the language a path's naming convention identifies
// it as a test for, e.g. "_test.go" -> "go".
func (e *Engine) Categorize(path string) (string, bool) {
	return e.categorize(path)
}

func (e *Engine) categorize(path string) (string, bool) {
	base := filepath.Base(path)
	for lang, suffix := range e.testSuffixes {
		if strings.HasSuffix(base, suffix) {
			return lang, true
		}
	}
	return "", false
}

// SuggestInput is suggest_tests' argument shape.
type SuggestInput struct {
	ProjectID string
}

// Suggestion proposes a test name for an exported function with no
// detected test coverage.
type Suggestion struct {
	FunctionID    string
	FunctionName  string
	FilePath      string
	SuggestedName string
}

// Suggest composes Select's coverage signal with the graph's exported
// FUNCTION nodes: a function is "uncovered" when no FUNCTION defined in a
// file matching a test-suffix convention calls it.
func (e *Engine) Suggest(ctx context.Context, in SuggestInput) ([]Suggestion, error) {
	suffixes := make([]string, 0, len(e.testSuffixes))
	for _, suffix := range e.testSuffixes {
		suffixes = append(suffixes, suffix)
	}
	uncovered, err := e.graph.UncoveredExportedFunctions(ctx, in.ProjectID, suffixes)
	if err != nil {
		return nil, err
	}
	out := make([]Suggestion, 0, len(uncovered))
	for _, fn := range uncovered {
		out = append(out, Suggestion{
			FunctionID:    fn.ID,
			FunctionName:  fn.Name,
			FilePath:      fn.FilePath,
			SuggestedName: suggestedTestName(fn),
		})
	}
	return out, nil
}

func suggestedTestName(fn graphmodel.Symbol) string {
	if fn.Name == "" {
		return "Test"
	}
	return "Test" + strings.ToUpper(fn.Name[:1]) + fn.Name[1:]
}
