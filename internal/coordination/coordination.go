// Package coordination implements the multi-agent claim engine described in
// spec.md §4.7: agent_claim, agent_release, the stale-claim invalidation
// sweep run after every rebuild, the task-completion hook, agent_status, and
// coordination_overview.
package coordination

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
	"github.com/codegraphd/codegraphd/internal/graphstore"
)

// ErrClaimNotFound is returned by Release when claimId doesn't exist.
var ErrClaimNotFound = fmt.Errorf("coordination: claim not found")

// Reflector is the subset of episodes.Engine the task-completion hook
// invokes; kept as an interface so coordination doesn't import episodes
// directly (episodes already imports graphstore/vectorstore, and neither
// package needs to know about the other's full surface). The wiring in
// cmd/codegraphd adapts *episodes.Engine to this interface.
type Reflector interface {
	Reflect(ctx context.Context, projectID, taskID, agentID string) error
}

// Engine wires the graph store and an optional reflector together.
type Engine struct {
	graph     *graphstore.Store
	reflector Reflector
}

// New constructs a coordination Engine. reflector may be nil; the
// task-completion hook then simply skips invoking reflect.
func New(graph *graphstore.Store, reflector Reflector) *Engine {
	return &Engine{graph: graph, reflector: reflector}
}

// ClaimInput is agent_claim's normalized argument set.
type ClaimInput struct {
	ProjectID string
	AgentID   string
	SessionID string
	TaskID    string
	ClaimType graphmodel.ClaimType
	TargetID  string
	Intent    string
}

// ClaimConflict describes the existing holder when a claim attempt fails.
type ClaimConflict struct {
	AgentID string
	Intent  string
	Since   time.Time
}

// ClaimResult is agent_claim's outcome: either a fresh claim or a conflict.
type ClaimResult struct {
	Status           string // "ok" or "CONFLICT"
	ClaimID          string
	TargetVersionSHA string
	Conflict         *ClaimConflict
}

// Claim implements agent_claim (spec.md §4.7): atomically check for a
// conflicting active claim on the same target from a different agent and,
// if none exists, create the claim and its TARGETS edge, in a single graph
// write (spec.md §5) — two concurrent calls on the same target can't both
// land an active claim.
func (e *Engine) Claim(ctx context.Context, in ClaimInput) (ClaimResult, error) {
	claim := graphmodel.Claim{
		ID:        uuid.NewString(),
		AgentID:   in.AgentID,
		SessionID: in.SessionID,
		TaskID:    in.TaskID,
		ClaimType: in.ClaimType,
		TargetID:  in.TargetID,
		Intent:    in.Intent,
		ValidFrom: time.Now(),
		ProjectID: in.ProjectID,
	}

	conflict, sha, err := e.graph.TryCreateClaim(ctx, claim)
	if err != nil {
		return ClaimResult{}, err
	}
	if conflict != nil {
		return ClaimResult{
			Status: "CONFLICT",
			Conflict: &ClaimConflict{
				AgentID: conflict.AgentID,
				Intent:  conflict.Intent,
				Since:   conflict.ValidFrom,
			},
		}, nil
	}

	return ClaimResult{Status: "ok", ClaimID: claim.ID, TargetVersionSHA: sha}, nil
}

// ReleaseResult is agent_release's outcome.
type ReleaseResult struct {
	Released      bool
	AlreadyClosed bool
	NotFound      bool
}

// Release implements agent_release (spec.md §4.7 and §7): verifies the
// claim is still active and closes it with reason "released". Releasing
// an unknown claim is a semantic error (ErrClaimNotFound), not a success
// with released=false, so the caller's envelope ends up ok=false.
func (e *Engine) Release(ctx context.Context, claimID string) (ReleaseResult, error) {
	existing, err := e.graph.ClaimByID(ctx, claimID)
	if err != nil {
		return ReleaseResult{}, err
	}
	if existing == nil {
		return ReleaseResult{}, ErrClaimNotFound
	}
	if !existing.Active() {
		return ReleaseResult{AlreadyClosed: true}, nil
	}

	closed, err := e.graph.CloseClaim(ctx, claimID, string(graphmodel.ClaimReleased), time.Now())
	if err != nil {
		return ReleaseResult{}, err
	}
	if !closed {
		// Lost a race with another closer between the ClaimByID check and
		// CloseClaim's conditional write.
		return ReleaseResult{AlreadyClosed: true}, nil
	}
	return ReleaseResult{Released: true}, nil
}

// InvalidateStale runs the post-rebuild sweep (spec.md §4.7): every active
// claim whose target now has a newer version is closed with reason
// "code_changed".
func (e *Engine) InvalidateStale(ctx context.Context, projectID string) ([]string, error) {
	return e.graph.InvalidateStaleClaims(ctx, projectID, time.Now())
}

// CompleteTask implements the task-completion hook (spec.md §4.7):
// invalidate every active claim for taskId with reason "task_completed",
// then invoke reflect({taskId}).
func (e *Engine) CompleteTask(ctx context.Context, projectID, taskID, agentID string) ([]string, error) {
	closed, err := e.graph.CloseClaimsForTask(ctx, taskID, string(graphmodel.ClaimTaskCompleted), time.Now())
	if err != nil {
		return nil, err
	}
	if e.reflector != nil {
		_ = e.reflector.Reflect(ctx, projectID, taskID, agentID)
	}
	return closed, nil
}

// AgentStatus is agent_status's response shape.
type AgentStatus struct {
	AgentID      string
	ActiveClaims []graphmodel.Claim
	ClosedClaims []graphmodel.Claim
}

// Status implements agent_status(agentId): queries CLAIM nodes directly,
// no in-memory cache (spec.md §4.7).
func (e *Engine) Status(ctx context.Context, projectID, agentID string) (AgentStatus, error) {
	claims, err := e.graph.ClaimsByAgent(ctx, projectID, agentID)
	if err != nil {
		return AgentStatus{}, err
	}
	active, closed := splitClaims(claims)
	return AgentStatus{AgentID: agentID, ActiveClaims: active, ClosedClaims: closed}, nil
}

// splitClaims partitions claims into those still open and those closed.
func splitClaims(claims []graphmodel.Claim) (active, closed []graphmodel.Claim) {
	for _, c := range claims {
		if c.Active() {
			active = append(active, c)
		} else {
			closed = append(closed, c)
		}
	}
	return active, closed
}

// Overview is coordination_overview's response shape: every claim in the
// project grouped by agent, plus a flat active-claim count.
type Overview struct {
	ByAgent          map[string][]graphmodel.Claim
	ActiveClaimCount int
}

// CoordinationOverview implements coordination_overview(): queries CLAIM
// nodes directly across the whole project (spec.md §4.7).
func (e *Engine) CoordinationOverview(ctx context.Context, projectID string) (Overview, error) {
	claims, err := e.graph.AllClaims(ctx, projectID)
	if err != nil {
		return Overview{}, err
	}
	return groupOverview(claims), nil
}

// groupOverview buckets claims by agent and counts the still-active ones.
func groupOverview(claims []graphmodel.Claim) Overview {
	out := Overview{ByAgent: make(map[string][]graphmodel.Claim)}
	for _, c := range claims {
		out.ByAgent[c.AgentID] = append(out.ByAgent[c.AgentID], c)
		if c.Active() {
			out.ActiveClaimCount++
		}
	}
	return out
}
