package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
	"github.com/codegraphd/codegraphd/internal/session"
)

func TestRebuildOptionsCopiesProjectContext(t *testing.T) {
	pc := &session.ProjectContext{
		WorkspaceRoot: "/w",
		SourceDir:     "/w/src",
		ProjectID:     "proj-1",
	}
	opts := rebuildOptions(pc, graphmodel.ModeIncremental, []string{"a.go"}, []string{"*.log"})
	assert.Equal(t, "proj-1", opts.ProjectID)
	assert.Equal(t, "/w", opts.WorkspaceRoot)
	assert.Equal(t, "/w/src", opts.SourceDir)
	assert.Equal(t, graphmodel.ModeIncremental, opts.Mode)
	assert.Equal(t, []string{"a.go"}, opts.ChangedFiles)
	assert.Equal(t, []string{"*.log"}, opts.IgnorePatterns)
}
