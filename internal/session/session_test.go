package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionIDFromDefaultsToStdio(t *testing.T) {
	assert.Equal(t, StdioSessionID, SessionIDFrom(context.Background()))
}

func TestSessionIDFromReturnsAttachedID(t *testing.T) {
	ctx := WithSessionID(context.Background(), "abc123")
	assert.Equal(t, "abc123", SessionIDFrom(ctx))
}

func TestSetWorkspaceDefaultsSourceDirAndProjectID(t *testing.T) {
	m := NewManager()
	dir := t.TempDir()

	ctx, prevProject, err := m.SetWorkspace("sess1", dir, "", "")
	require.NoError(t, err)
	assert.Equal(t, "", prevProject)
	assert.Equal(t, dir+"/src", ctx.SourceDir)
	assert.NotEmpty(t, ctx.ProjectID)
	assert.Len(t, ctx.Fingerprint, 4)

	got, ok := m.Get("sess1")
	require.True(t, ok)
	assert.Equal(t, ctx, got)
}

func TestSetWorkspaceReportsPreviousProjectID(t *testing.T) {
	m := NewManager()
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	_, _, err := m.SetWorkspace("sess1", dir1, "", "alpha")
	require.NoError(t, err)

	_, prev, err := m.SetWorkspace("sess1", dir2, "", "beta")
	require.NoError(t, err)
	assert.Equal(t, "alpha", prev)
}

func TestSetWorkspaceMissingDirFails(t *testing.T) {
	m := NewManager()
	_, _, err := m.SetWorkspace("sess1", "/definitely/not/a/real/path/xyz", "", "")
	require.Error(t, err)
	var notFound *ErrWorkspaceNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestFingerprintStableAndDistinct(t *testing.T) {
	a := Fingerprint("/w/one")
	b := Fingerprint("/w/one")
	c := Fingerprint("/w/two")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 4)
}
