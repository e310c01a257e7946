package codex

import "context"

// EmbeddingProvider abstracts text embedding. Implementations are expected
// to be deterministic for a fixed model version and free of side effects
// visible to the pipeline. Failures must be reported as *EmbedError so
// callers can treat them as retryable I/O.
type EmbeddingProvider interface {
	// Embed returns one vector per input text, each of length Dimensions().
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the embedding vector size.
	Dimensions() int
	// Name returns the provider name (e.g. "tei").
	Name() string
}
