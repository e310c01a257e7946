package codex

import "context"

// ChunkStore abstracts durable chunk persistence plus the nearest-neighbor
// primitive used by retrieval.
//
// Re-ingesting a site without calling DeleteSource first produces duplicate
// rows. The store does not deduplicate by content; callers wanting
// idempotent re-ingestion clear the source first.
type ChunkStore interface {
	// InsertChunks persists a batch atomically: either every chunk in the
	// batch becomes visible or none does. Returns the number inserted.
	InsertChunks(ctx context.Context, chunks []Chunk) (int, error)

	// Count returns the number of stored chunks. A non-empty sourceType
	// restricts the count to that source.
	Count(ctx context.Context, sourceType string) (int, error)

	// Nearest returns up to k chunks ranked by descending cosine
	// similarity to the query vector.
	Nearest(ctx context.Context, embedding []float32, k int) ([]ScoredChunk, error)

	// DeleteSource removes all chunks for a source and reports how many
	// rows were deleted. Used to make re-ingestion idempotent.
	DeleteSource(ctx context.Context, sourceType string) (int, error)

	// Lifecycle.
	Init(ctx context.Context) error
	Close() error
}
