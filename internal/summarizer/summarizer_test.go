package summarizer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicPrefersDocComment(t *testing.T) {
	s := Heuristic{}
	summary, err := s.Summarize(context.Background(), "Parse", "parses a source file", "func Parse() {")
	require.NoError(t, err)
	assert.Equal(t, "parses a source file", summary)
}

func TestHeuristicFallsBackToFirstLine(t *testing.T) {
	s := Heuristic{}
	summary, err := s.Summarize(context.Background(), "Parse", "", "func Parse() {")
	require.NoError(t, err)
	assert.Equal(t, "func Parse() {", summary)
}

func TestHeuristicFallsBackToGenericSummary(t *testing.T) {
	s := Heuristic{}
	summary, err := s.Summarize(context.Background(), "Parse", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Parse implementation", summary)
}

func TestRemoteWithEmptyURLUsesFallback(t *testing.T) {
	r := NewRemote("")
	summary, err := r.Summarize(context.Background(), "Parse", "parses things", "")
	require.NoError(t, err)
	assert.Equal(t, "parses things", summary)
}

func TestRemoteUsesEndpointSummaryOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"summary":"remote summary"}`))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL)
	summary, err := r.Summarize(context.Background(), "Parse", "doc", "")
	require.NoError(t, err)
	assert.Equal(t, "remote summary", summary)
}

func TestRemoteFallsBackOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRemote(srv.URL)
	summary, err := r.Summarize(context.Background(), "Parse", "doc comment", "")
	require.NoError(t, err)
	assert.Equal(t, "doc comment", summary)
}

func TestRemoteFallsBackOnMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL)
	summary, err := r.Summarize(context.Background(), "Parse", "doc comment", "")
	require.NoError(t, err)
	assert.Equal(t, "doc comment", summary)
}

func TestRemoteFallsBackOnEmptySummaryField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"summary":""}`))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL)
	summary, err := r.Summarize(context.Background(), "Parse", "doc comment", "")
	require.NoError(t, err)
	assert.Equal(t, "doc comment", summary)
}
