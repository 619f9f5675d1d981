package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIgnoredMatchesBasenameGlob(t *testing.T) {
	w := &Watcher{cfg: Config{IgnorePatterns: []string{"*.log"}}}
	assert.True(t, w.ignored("/w/src/debug.log"))
	assert.False(t, w.ignored("/w/src/main.go"))
}

func TestIgnoredMatchesPathSegment(t *testing.T) {
	w := &Watcher{cfg: Config{IgnorePatterns: []string{"node_modules"}}}
	assert.True(t, w.ignored("/w/src/node_modules/pkg/index.js"))
	assert.False(t, w.ignored("/w/src/app/index.js"))
}

func TestStateAndPendingChangesDefaults(t *testing.T) {
	w := &Watcher{state: StateIdle, pending: make(map[string]bool)}
	assert.Equal(t, StateIdle, w.State())
	assert.Equal(t, 0, w.PendingChanges())
}
