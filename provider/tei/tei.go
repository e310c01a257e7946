// Package tei implements codex.EmbeddingProvider against a
// text-embeddings-inference HTTP endpoint (the usual way to serve
// sentence-transformers models such as all-MiniLM-L6-v2).
//
// The model itself is opaque to the pipeline: deterministic for a fixed
// model version, text in, fixed-length vector out. Every failure is
// surfaced as a *codex.EmbedError so callers treat it as retryable I/O.
package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	codex "github.com/nevindra/codex"
)

// Embedding implements codex.EmbeddingProvider over the /embed endpoint.
type Embedding struct {
	baseURL    string
	dims       int
	httpClient *http.Client
}

var _ codex.EmbeddingProvider = (*Embedding)(nil)

// Option configures an Embedding.
type Option func(*Embedding)

// WithHTTPClient replaces the default client (30-second timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(e *Embedding) { e.httpClient = c }
}

// New creates a provider for the server at baseURL producing vectors of
// the given dimension.
func New(baseURL string, dims int, opts ...Option) *Embedding {
	e := &Embedding{
		baseURL:    strings.TrimRight(baseURL, "/"),
		dims:       dims,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Name returns "tei".
func (e *Embedding) Name() string { return "tei" }

// Dimensions returns the configured embedding dimensionality.
func (e *Embedding) Dimensions() int { return e.dims }

// Embed sends all texts in one request and returns one vector per text.
func (e *Embedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(map[string]any{
		"inputs":   texts,
		"truncate": true,
	})
	if err != nil {
		return nil, e.wrapErr(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, e.wrapErr(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, e.wrapErr(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, e.wrapErr(fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, e.wrapErr(fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var embeddings [][]float32
	if err := json.Unmarshal(body, &embeddings); err != nil {
		return nil, e.wrapErr(fmt.Errorf("parse response: %w", err))
	}
	if len(embeddings) != len(texts) {
		return nil, e.wrapErr(fmt.Errorf("got %d embeddings for %d texts", len(embeddings), len(texts)))
	}
	for i, v := range embeddings {
		if len(v) != e.dims {
			return nil, e.wrapErr(fmt.Errorf("embedding %d has %d dimensions, want %d", i, len(v), e.dims))
		}
	}
	return embeddings, nil
}

func (e *Embedding) wrapErr(err error) error {
	return &codex.EmbedError{Provider: "tei", Err: err}
}
