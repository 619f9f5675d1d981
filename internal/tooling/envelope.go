// Package tooling defines the response envelope and output-schema types
// shared by every tool handler, mirroring the teacher's mcp.JSONResult/
// ErrorResult helpers but generalized to carry the response-shaping fields
// every handler's result is required to have.
package tooling

// Priority is the drop order the shaper uses when a response exceeds its
// token budget: low first, then medium, then high. Required fields are
// never dropped.
type Priority string

const (
	PriorityRequired Priority = "required"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Field describes one key of a tool's data object for shaping purposes.
type Field struct {
	Key      string
	Priority Priority
}

// OutputSchema is the ordered field-priority declaration a tool attaches to
// its result, consulted by the shaper when a profile's budget is exceeded.
type OutputSchema []Field

// RequiredKeys returns the subset of keys marked required, in declaration
// order.
func (s OutputSchema) RequiredKeys() []string {
	var keys []string
	for _, f := range s {
		if f.Priority == PriorityRequired {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// KeysAtPriority returns the keys whose priority is exactly p, in schema
// order — used by the shaper to peel off one priority tier at a time.
func (s OutputSchema) KeysAtPriority(p Priority) []string {
	var keys []string
	for _, f := range s {
		if f.Priority == p {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// Error carries the machine-readable failure detail of a non-ok envelope.
type Error struct {
	Recoverable bool `json:"recoverable"`
}

// Envelope is the shape every tool handler's result takes before and after
// shaping. Summary and, per the tool's OutputSchema, Required fields in
// Data survive pruning even if that pushes TokenEstimate past the budget.
type Envelope struct {
	OK               bool           `json:"ok"`
	Summary          string         `json:"summary"`
	Profile          string         `json:"profile"`
	TokenEstimate    int            `json:"_tokenEstimate"`
	Data             map[string]any `json:"data,omitempty"`
	Hint             string         `json:"hint,omitempty"`
	ErrorCode        string         `json:"errorCode,omitempty"`
	ContractWarnings []string       `json:"contractWarnings,omitempty"`
	ErrorDetail      *Error         `json:"error,omitempty"`
}

// Ok builds a successful envelope around data, to be shaped before it
// leaves the dispatcher.
func Ok(summary string, data map[string]any) Envelope {
	return Envelope{OK: true, Summary: summary, Data: data}
}

// Err builds a failed envelope. recoverable should be true when the caller
// can fix the input; false when it signals an infrastructure fault.
func Err(errorCode, summary, hint string, recoverable bool) Envelope {
	return Envelope{
		OK:          false,
		Summary:     summary,
		ErrorCode:   errorCode,
		Hint:        hint,
		ErrorDetail: &Error{Recoverable: recoverable},
	}
}

// WithWarning appends a contractWarnings line (e.g. an argument-synonym
// mapping note) and returns the envelope for chaining.
func (e Envelope) WithWarning(w string) Envelope {
	e.ContractWarnings = append(e.ContractWarnings, w)
	return e
}
