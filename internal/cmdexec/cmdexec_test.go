package cmdexec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
)

func TestRunCapturesStdoutAndExitCode(t *testing.T) {
	e := New(nil, Config{})
	res, err := e.Run(context.Background(), RunInput{Command: "echo hello"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "hello")
	assert.False(t, res.Truncated)
}

func TestRunReportsNonZeroExitWithoutError(t *testing.T) {
	e := New(nil, Config{})
	res, err := e.Run(context.Background(), RunInput{Command: "exit 3"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRunRejectsEmptyCommand(t *testing.T) {
	e := New(nil, Config{})
	_, err := e.Run(context.Background(), RunInput{Command: "  "})
	assert.Error(t, err)
}

func TestRunTimesOut(t *testing.T) {
	e := New(nil, Config{Timeout: 10 * time.Millisecond})
	_, err := e.Run(context.Background(), RunInput{Command: "sleep 1"})
	assert.Error(t, err)
}

func TestTruncateMarksOversizeOutput(t *testing.T) {
	out, truncated := truncate("0123456789", 5)
	assert.True(t, truncated)
	assert.Equal(t, "01234", out)
}

func TestTruncateLeavesSmallOutputAlone(t *testing.T) {
	out, truncated := truncate("hi", 5)
	assert.False(t, truncated)
	assert.Equal(t, "hi", out)
}

func TestCategorizeMatchesKnownSuffixes(t *testing.T) {
	e := New(nil, Config{})
	lang, ok := e.Categorize("/repo/internal/foo_test.go")
	require.True(t, ok)
	assert.Equal(t, "go", lang)

	_, ok = e.Categorize("/repo/internal/foo.go")
	assert.False(t, ok)
}

func TestSuggestedTestNameCapitalizesFunction(t *testing.T) {
	assert.Equal(t, "TestParseConfig", suggestedTestName(graphmodel.Symbol{Name: "parseConfig"}))
	assert.Equal(t, "Test", suggestedTestName(graphmodel.Symbol{Name: ""}))
}
