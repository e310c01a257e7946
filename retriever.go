package codex

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Retriever turns a natural-language query into ranked chunks: embed the
// query, ask the store for nearest neighbors, return them unmodified.
//
// No re-ranking is applied; the store's similarity order is the contract.
// Callers that want recency or section weighting layer it on top.
type Retriever struct {
	store     ChunkStore
	embedding EmbeddingProvider
}

// NewRetriever creates a Retriever over the given store and embedding
// provider. Both are injected; the Retriever owns neither.
func NewRetriever(store ChunkStore, embedding EmbeddingProvider) *Retriever {
	return &Retriever{store: store, embedding: embedding}
}

// Retrieve returns up to k chunks ranked by descending similarity to the
// query. Returns ErrEmptyQuery for an empty or whitespace-only query
// before any embedding or store call.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]ScoredChunk, error) {
	query = strings.TrimSpace(norm.NFC.String(query))
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		return nil, &ConfigError{Param: "k", Message: "must be positive"}
	}

	embs, err := r.embedding.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embs) == 0 {
		return nil, &EmbedError{Provider: r.embedding.Name(), Err: fmt.Errorf("no embedding returned")}
	}

	results, err := r.store.Nearest(ctx, embs[0], k)
	if err != nil {
		return nil, fmt.Errorf("nearest: %w", err)
	}
	return results, nil
}
