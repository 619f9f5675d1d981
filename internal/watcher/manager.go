package watcher

import (
	"context"
	"log/slog"
	"sync"
)

// Manager tracks one Watcher per active project, the way session.Manager
// tracks one ProjectContext per active session. graph_set_workspace calls
// Ensure on every invocation; a project whose sourceDir hasn't changed
// keeps its existing Watcher running rather than restarting it.
type Manager struct {
	mu       sync.Mutex
	logger   *slog.Logger
	watchers map[string]*entry
}

type entry struct {
	sourceDir string
	w         *Watcher
}

// NewManager constructs an empty watcher manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{logger: logger, watchers: make(map[string]*entry)}
}

// Ensure starts watching sourceDir for projectID if no watcher is running
// for it yet, or restarts it if sourceDir changed (e.g. graph_set_workspace
// pointed the same projectId at a different checkout). onChange is invoked
// once the debounce window fires with the accumulated changed paths.
func (m *Manager) Ensure(ctx context.Context, projectID, sourceDir string, ignorePatterns []string, onChange Rebuild) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.watchers[projectID]; ok {
		if e.sourceDir == sourceDir {
			return nil
		}
		e.w.Stop()
		delete(m.watchers, projectID)
	}

	w, err := New(Config{SourceDir: sourceDir, IgnorePatterns: ignorePatterns}, onChange, m.logger)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	m.watchers[projectID] = &entry{sourceDir: sourceDir, w: w}
	return nil
}

// State reports the running watcher's lifecycle state and pending-change
// count for projectID, for graph_health. ok is false if no watcher has
// been started for that project yet.
func (m *Manager) State(projectID string) (state State, pending int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, found := m.watchers[projectID]
	if !found {
		return "", 0, false
	}
	return e.w.State(), e.w.PendingChanges(), true
}

// StopAll stops every tracked watcher, for graceful shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.watchers {
		e.w.Stop()
		delete(m.watchers, id)
	}
}
