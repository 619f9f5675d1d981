// Package summarizer produces the one-line summary stored on FUNCTION and
// CLASS nodes and indexed as their vector embedding (spec.md §4.4, §3
// invariant #10: embeddings index summary, never raw code). It tries an
// optional remote LLM endpoint first and falls back to a heuristic.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Summarizer produces a short natural-language summary for source text.
type Summarizer interface {
	Summarize(ctx context.Context, name, docComment, firstLine string) (string, error)
}

// Heuristic implements the fallback used when no remote endpoint is
// configured or the endpoint call fails: prefer the preceding doc
// comment, then the first non-blank non-comment line, then a generic
// "{name} implementation" summary.
type Heuristic struct{}

func (Heuristic) Summarize(_ context.Context, name, docComment, firstLine string) (string, error) {
	if docComment != "" {
		return docComment, nil
	}
	if firstLine != "" {
		return firstLine, nil
	}
	return fmt.Sprintf("%s implementation", name), nil
}

// Remote calls an HTTP endpoint exposing `summarize(text) -> string`, the
// out-of-scope collaborator named in spec.md §1. On any failure it falls
// back to Heuristic so summary generation never blocks a rebuild.
type Remote struct {
	URL      string
	Client   *http.Client
	Fallback Summarizer
}

// NewRemote builds a Remote summarizer with a bounded HTTP client and the
// heuristic as its fallback.
func NewRemote(url string) *Remote {
	return &Remote{
		URL:      url,
		Client:   &http.Client{Timeout: 10 * time.Second},
		Fallback: Heuristic{},
	}
}

type summarizeRequest struct {
	Text string `json:"text"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

func (r *Remote) Summarize(ctx context.Context, name, docComment, firstLine string) (string, error) {
	if r.URL == "" {
		return r.Fallback.Summarize(ctx, name, docComment, firstLine)
	}
	text := strings.TrimSpace(docComment + "\n" + firstLine)
	if text == "" {
		text = name
	}
	body, err := json.Marshal(summarizeRequest{Text: text})
	if err != nil {
		return r.Fallback.Summarize(ctx, name, docComment, firstLine)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return r.Fallback.Summarize(ctx, name, docComment, firstLine)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return r.Fallback.Summarize(ctx, name, docComment, firstLine)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return r.Fallback.Summarize(ctx, name, docComment, firstLine)
	}

	var out summarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Summary == "" {
		return r.Fallback.Summarize(ctx, name, docComment, firstLine)
	}
	return out.Summary, nil
}
