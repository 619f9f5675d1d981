// Package shaper enforces the token envelope described in spec section
// 4.1: every tool result passes through Shape before it reaches a
// transport, which estimates its encoded size, prunes data fields by
// declared priority, and truncates arrays, while always preserving summary
// and the tool's required fields even if that means exceeding the nominal
// budget.
package shaper

import (
	"encoding/json"
	"math"

	"github.com/codegraphd/codegraphd/internal/tooling"
)

// Profile is a named token budget.
type Profile string

const (
	ProfileCompact  Profile = "compact"
	ProfileBalanced Profile = "balanced"
	ProfileDebug    Profile = "debug"
)

// Budget returns the hard token budget for a profile. Debug is
// unbounded, represented as math.MaxInt32.
func Budget(p Profile) int {
	switch p {
	case ProfileCompact:
		return 300
	case ProfileBalanced:
		return 1200
	default:
		return math.MaxInt32
	}
}

// ArrayLimit returns the maximum number of array elements kept inside
// data for a profile. Debug is untrimmed.
func ArrayLimit(p Profile) int {
	switch p {
	case ProfileCompact:
		return 10
	case ProfileBalanced:
		return 50
	default:
		return math.MaxInt32
	}
}

// TokenEstimate is the conservative token-count estimate used throughout:
// ceil(len(json)/4).
func TokenEstimate(v any) int {
	b, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return int(math.Ceil(float64(len(b)) / 4))
}

// Shape prunes env.Data to fit the profile's token budget, in priority
// order low -> medium -> high, truncating arrays first. Required fields
// (per schema) and the envelope's non-Data fields are never dropped; if
// required fields alone exceed the budget, Shape keeps them and returns an
// ok envelope over budget. A BUDGET_EXCEEDED error envelope is returned
// only when the schema declares no required field and the envelope still
// exceeds the budget after every schema-listed key has been dropped.
func Shape(env tooling.Envelope, profile Profile, schema tooling.OutputSchema) tooling.Envelope {
	env.Profile = string(profile)
	limit := ArrayLimit(profile)
	budget := Budget(profile)

	if env.Data != nil {
		env.Data = truncateArrays(env.Data, limit)
	}

	env.TokenEstimate = TokenEstimate(env)
	if env.TokenEstimate <= budget || env.Data == nil {
		return env
	}

	for _, tier := range []tooling.Priority{tooling.PriorityLow, tooling.PriorityMedium, tooling.PriorityHigh} {
		for _, key := range schema.KeysAtPriority(tier) {
			if _, ok := env.Data[key]; !ok {
				continue
			}
			delete(env.Data, key)
			env.TokenEstimate = TokenEstimate(env)
			if env.TokenEstimate <= budget {
				return env
			}
		}
	}

	required := schema.RequiredKeys()
	if len(required) == 0 {
		// Nothing left that the schema protects from pruning and the
		// envelope still exceeds budget: this is the BUDGET_EXCEEDED case.
		env.TokenEstimate = TokenEstimate(env)
		if env.TokenEstimate <= budget {
			return env
		}
		return tooling.Envelope{
			OK:            false,
			Summary:       env.Summary,
			Profile:       string(profile),
			ErrorCode:     "BUDGET_EXCEEDED",
			Hint:          "response exceeds the " + string(profile) + " budget; retry with a wider profile",
			ErrorDetail:   &tooling.Error{Recoverable: true},
			TokenEstimate: 0,
		}
	}

	// Required fields are preserved even if this pushes the estimate past
	// the nominal budget (spec section 4.1's required-field override
	// invariant, exercised by graph_query under the compact profile).
	onlyRequired := map[string]any{}
	for _, k := range required {
		if v, ok := env.Data[k]; ok {
			onlyRequired[k] = v
		}
	}
	env.Data = onlyRequired
	env.TokenEstimate = TokenEstimate(env)
	return env
}

// truncateArrays recursively truncates any []any value to limit elements,
// first-N, preserving order, and recurses into map/array elements.
func truncateArrays(data map[string]any, limit int) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = truncateValue(v, limit)
	}
	return out
}

func truncateValue(v any, limit int) any {
	switch t := v.(type) {
	case []any:
		n := len(t)
		if n > limit {
			n = limit
		}
		out := make([]any, n)
		for i := 0; i < n; i++ {
			out[i] = truncateValue(t[i], limit)
		}
		return out
	case map[string]any:
		return truncateArrays(t, limit)
	default:
		return v
	}
}
