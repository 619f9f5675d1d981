package watcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func noopRebuild(ctx context.Context, changedFiles []string) error { return nil }

func TestEnsureStartsAndTracksWatcher(t *testing.T) {
	m := NewManager(nil)
	defer m.StopAll()

	dir := t.TempDir()
	err := m.Ensure(context.Background(), "proj-1", dir, nil, noopRebuild)
	assert.NoError(t, err)

	state, pending, ok := m.State("proj-1")
	assert.True(t, ok)
	assert.Equal(t, StateIdle, state)
	assert.Equal(t, 0, pending)
}

func TestEnsureIsNoOpWhenSourceDirUnchanged(t *testing.T) {
	m := NewManager(nil)
	defer m.StopAll()

	dir := t.TempDir()
	assert.NoError(t, m.Ensure(context.Background(), "proj-1", dir, nil, noopRebuild))
	first := m.watchers["proj-1"].w

	assert.NoError(t, m.Ensure(context.Background(), "proj-1", dir, nil, noopRebuild))
	second := m.watchers["proj-1"].w

	assert.Same(t, first, second)
}

func TestEnsureRestartsWatcherWhenSourceDirChanges(t *testing.T) {
	m := NewManager(nil)
	defer m.StopAll()

	dirA := t.TempDir()
	dirB := t.TempDir()
	assert.NoError(t, m.Ensure(context.Background(), "proj-1", dirA, nil, noopRebuild))
	first := m.watchers["proj-1"].w

	assert.NoError(t, m.Ensure(context.Background(), "proj-1", dirB, nil, noopRebuild))
	second := m.watchers["proj-1"].w

	assert.NotSame(t, first, second)
	assert.Equal(t, dirB, m.watchers["proj-1"].sourceDir)
}

func TestStateUnknownProjectReportsNotOK(t *testing.T) {
	m := NewManager(nil)
	_, _, ok := m.State("missing")
	assert.False(t, ok)
}

func TestStopAllClearsTrackedWatchers(t *testing.T) {
	m := NewManager(nil)
	dir := t.TempDir()
	assert.NoError(t, m.Ensure(context.Background(), "proj-1", dir, nil, noopRebuild))

	m.StopAll()
	assert.Empty(t, m.watchers)
}
