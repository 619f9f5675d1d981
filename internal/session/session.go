// Package session is the generalization of the teacher's
// emergent.ClientFactory + context-token pattern: instead of resolving a
// per-request Emergent auth token, it resolves a per-session
// ProjectContext keyed by an Mcp-Session-Id (HTTP) or a single implicit
// session (stdio).
package session

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"
)

type contextKey struct{}

// WithSessionID attaches sessionID to ctx, the way the teacher's
// emergent.WithToken attaches a bearer token — tool handlers downstream
// read it back with SessionIDFrom to look up their ProjectContext.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, contextKey{}, sessionID)
}

// SessionIDFrom returns the session ID attached to ctx, or StdioSessionID
// if none (or an empty one) was attached.
func SessionIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok && id != "" {
		return id
	}
	return StdioSessionID
}

// ProjectContext is the active workspace a session is operating against.
type ProjectContext struct {
	WorkspaceRoot string
	SourceDir     string
	ProjectID     string
	Fingerprint   string
}

// StdioSessionID is the fixed singleton session identifier used under the
// stdio transport, which has no per-request session header.
const StdioSessionID = "stdio"

// Manager holds the per-session project-context map, the single piece of
// shared mutable state session lookups go through (spec.md §9's "global
// mutable state" design note).
type Manager struct {
	mu       sync.RWMutex
	contexts map[string]*ProjectContext
}

// NewManager constructs an empty session manager.
func NewManager() *Manager {
	return &Manager{contexts: make(map[string]*ProjectContext)}
}

// Get returns the ProjectContext for sessionID, if one has been set.
func (m *Manager) Get(sessionID string) (*ProjectContext, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ctx, ok := m.contexts[sessionID]
	return ctx, ok
}

// ErrWorkspaceNotFound is returned by SetWorkspace when workspaceRoot does
// not resolve to an existing directory.
type ErrWorkspaceNotFound struct{ Path string }

func (e *ErrWorkspaceNotFound) Error() string {
	return fmt.Sprintf("workspace root %q does not exist or is not a directory", e.Path)
}

// SetWorkspace resolves workspaceRoot to an absolute path, verifies it
// exists, defaults sourceDir to <workspaceRoot>/src, derives projectID from
// the basename when unset, and stores the resulting context for sessionID.
// It returns the new context and the projectId the session pointed at
// before this call ("" if it had none, and the same id again if it is
// unchanged); callers use this to invalidate engine caches.
func (m *Manager) SetWorkspace(sessionID, workspaceRoot, sourceDir, projectID string) (*ProjectContext, string, error) {
	abs, err := filepath.Abs(workspaceRoot)
	if err != nil {
		return nil, "", &ErrWorkspaceNotFound{Path: workspaceRoot}
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, "", &ErrWorkspaceNotFound{Path: abs}
	}

	if sourceDir == "" {
		sourceDir = filepath.Join(abs, "src")
	} else if !filepath.IsAbs(sourceDir) {
		sourceDir = filepath.Join(abs, sourceDir)
	}
	if projectID == "" {
		projectID = filepath.Base(abs)
	}

	ctx := &ProjectContext{
		WorkspaceRoot: abs,
		SourceDir:     sourceDir,
		ProjectID:     projectID,
		Fingerprint:   Fingerprint(abs),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var previousProjectID string
	if old, ok := m.contexts[sessionID]; ok {
		previousProjectID = old.ProjectID
	}
	m.contexts[sessionID] = ctx
	return ctx, previousProjectID, nil
}

// Fingerprint computes the stable 4-character workspace fingerprint:
// base36(sha256(workspaceRoot)[0..24 bits]), zero-padded or cut to its
// first 4 characters.
// Used to detect workspace moves across rebuilds.
func Fingerprint(workspaceRoot string) string {
	sum := sha256.Sum256([]byte(workspaceRoot))
	// first 3 bytes = 24 bits
	n := new(big.Int).SetBytes(sum[:3])
	s := n.Text(36)
	for len(s) < 4 {
		s = "0" + s
	}
	return s[:4]
}
