package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadSourceExcerptReturnsRequestedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	assert.NoError(t, os.WriteFile(path, []byte("line1\nline2\nline3\nline4\n"), 0o644))

	assert.Equal(t, "line2\nline3", readSourceExcerpt(path, 2, 3))
}

func TestReadSourceExcerptClampsOutOfRangeBounds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	assert.NoError(t, os.WriteFile(path, []byte("line1\nline2\n"), 0o644))

	assert.Equal(t, "line1\nline2", readSourceExcerpt(path, 0, 100))
}

func TestReadSourceExcerptReturnsEmptyForMissingFile(t *testing.T) {
	assert.Equal(t, "", readSourceExcerpt("/does/not/exist.go", 1, 2))
}

func TestReadSourceExcerptReturnsEmptyWhenStartAfterEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	assert.NoError(t, os.WriteFile(path, []byte("line1\nline2\n"), 0o644))

	assert.Equal(t, "", readSourceExcerpt(path, 3, 1))
}

func TestBoolToCount(t *testing.T) {
	assert.Equal(t, 1, boolToCount(true))
	assert.Equal(t, 0, boolToCount(false))
}
