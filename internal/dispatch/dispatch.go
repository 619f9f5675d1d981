// Package dispatch implements the tool dispatcher and registry
// (SPEC_FULL.md §4.3): a flat name->handler table, the per-tool argument
// synonym table, panic/error containment, and contract_validate's
// standalone input-shape check. It sits between internal/mcp's JSON-RPC
// transport and the domain engines (graphstore, retrieval, episodes,
// coordination, ...), generalizing the teacher's per-tool mcp.Tool
// structs into one table so every tool shares normalization, error
// containment, and response shaping instead of repeating them.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/codegraphd/codegraphd/internal/shaper"
	"github.com/codegraphd/codegraphd/internal/tooling"
)

// Handler runs a tool against normalized arguments. A failure comes back
// either as a non-ok Envelope or as a returned error: a *Error (used for
// semantic failures such as a bad target ID as well as for infrastructure
// faults) supplies its own errorCode, hint and recoverable flag, and any
// other error becomes a non-recoverable INTERNAL_ERROR. Either way the
// caller receives an ok=false Envelope, never a transport-level error.
type Handler func(ctx context.Context, args map[string]any) (tooling.Envelope, error)

// Tool is one entry in the dispatcher's registry: name, category,
// declared input/output shape, the argument-synonym table, and the
// handler function. It mirrors spec.md §4.3's
// "toolName -> {category, description, inputShape, impl}" map as a flat
// struct rather than the teacher's one-struct-per-tool hierarchy, since
// every tool here shares the same cross-cutting concerns (normalize,
// shape, contain).
type Tool struct {
	Name        string
	Category    string
	Description string
	// Synonyms maps an accepted alias argument name to its canonical
	// name, e.g. {"changedFiles": "files"} for impact_analyze.
	Synonyms map[string]string
	// Required lists canonical argument names contract_validate treats
	// as mandatory.
	Required []string
	// Known lists every canonical argument name this tool recognizes.
	// A nil/empty Known disables extra-field reporting for this tool.
	Known        []string
	InputSchema  []byte
	OutputSchema tooling.OutputSchema
	Handler      Handler
}

// Error lets a handler attach a specific errorCode/hint/recoverable triple
// to a failure, the generalization of the teacher's guard-driven
// ErrorResult messages. A handler that returns a plain error instead gets
// wrapped as a non-recoverable INTERNAL_ERROR.
type Error struct {
	Code        string
	Hint        string
	Recoverable bool
	Err         error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// NewError builds a dispatch.Error.
func NewError(code, hint string, recoverable bool, err error) *Error {
	return &Error{Code: code, Hint: hint, Recoverable: recoverable, Err: err}
}

// Dispatcher is the static tool registry callTool dispatches through.
type Dispatcher struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	order []string
}

// New constructs an empty dispatcher.
func New() *Dispatcher {
	return &Dispatcher{tools: make(map[string]*Tool)}
}

// Register adds a tool. Panics on duplicate registration, since that is
// always a wiring bug caught at startup, never at runtime.
func (d *Dispatcher) Register(t Tool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.tools[t.Name]; exists {
		panic(fmt.Sprintf("dispatch: tool %q already registered", t.Name))
	}
	tc := t
	d.tools[t.Name] = &tc
	d.order = append(d.order, t.Name)
}

// Get returns the named tool, or false if unregistered.
func (d *Dispatcher) Get(name string) (*Tool, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.tools[name]
	return t, ok
}

// List returns every registered tool in registration order (tools_list).
func (d *Dispatcher) List() []*Tool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Tool, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.tools[name])
	}
	return out
}

// Call normalizes args, invokes the named tool's handler with panic/error
// containment, and shapes the result for profile. A missing tool produces
// a TOOL_NOT_FOUND envelope rather than an error, per §4.3 step 1.
func (d *Dispatcher) Call(ctx context.Context, name string, rawArgs map[string]any, profile shaper.Profile) tooling.Envelope {
	tool, ok := d.Get(name)
	if !ok {
		return tooling.Err("TOOL_NOT_FOUND", fmt.Sprintf("tool %q not found", name),
			"call tools_list to see the available tool names", true)
	}

	normalized, warnings := normalizeArgs(rawArgs, tool.Synonyms)
	env := d.invoke(ctx, tool, normalized)
	for _, w := range warnings {
		env = env.WithWarning(w)
	}
	return shaper.Shape(env, profile, tool.OutputSchema)
}

// invoke calls tool.Handler, converting a panic or plain error into an
// error Envelope so a single bad tool call never crashes the server.
func (d *Dispatcher) invoke(ctx context.Context, tool *Tool, args map[string]any) (env tooling.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			env = tooling.Err("INTERNAL_ERROR",
				fmt.Sprintf("tool %q panicked: %v", tool.Name, r),
				"this is a server-side bug, not a bad argument", false)
		}
	}()

	e, err := tool.Handler(ctx, args)
	if err != nil {
		var de *Error
		if errors.As(err, &de) {
			return tooling.Err(de.Code, de.Error(), de.Hint, de.Recoverable)
		}
		return tooling.Err("INTERNAL_ERROR", err.Error(), "", false)
	}
	return e
}

// normalizeArgs rewrites synonym keys to their canonical name, appending a
// "mapped X -> Y" line per substitution. Unknown keys pass through
// unchanged.
func normalizeArgs(raw map[string]any, synonyms map[string]string) (map[string]any, []string) {
	normalized := make(map[string]any, len(raw))
	var warnings []string
	for k, v := range raw {
		canon, mapped := synonyms[k]
		if mapped && canon != k {
			normalized[canon] = v
			warnings = append(warnings, fmt.Sprintf("mapped %s -> %s", k, canon))
			continue
		}
		normalized[k] = v
	}
	return normalized, warnings
}

// ContractReport is contract_validate's result shape.
type ContractReport struct {
	Valid           bool     `json:"valid"`
	MissingRequired []string `json:"missingRequired,omitempty"`
	ExtraFields     []string `json:"extraFields,omitempty"`
	Errors          []string `json:"errors,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// ContractValidate runs the full input-shape check against args without
// invoking the tool, per §4.3's contract_validate description.
func (d *Dispatcher) ContractValidate(toolName string, args map[string]any) ContractReport {
	tool, ok := d.Get(toolName)
	if !ok {
		return ContractReport{Valid: false, Errors: []string{fmt.Sprintf("tool %q not found", toolName)}}
	}

	normalized, warnings := normalizeArgs(args, tool.Synonyms)

	var missing []string
	for _, r := range tool.Required {
		if _, present := normalized[r]; !present {
			missing = append(missing, r)
		}
	}

	var extra []string
	if len(tool.Known) > 0 {
		known := make(map[string]bool, len(tool.Known))
		for _, k := range tool.Known {
			known[k] = true
		}
		keys := make([]string, 0, len(normalized))
		for k := range normalized {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !known[k] {
				extra = append(extra, k)
			}
		}
	}

	return ContractReport{
		Valid:           len(missing) == 0,
		MissingRequired: missing,
		ExtraFields:     extra,
		Warnings:        warnings,
	}
}
