// Package memory implements codex.ChunkStore entirely in process, using
// brute-force cosine similarity. It exists for tests and demos; nothing
// survives a restart.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	codex "github.com/nevindra/codex"
)

// Store is an in-memory codex.ChunkStore. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	dimension int
	nextID    int64
	chunks    []codex.Chunk
}

var _ codex.ChunkStore = (*Store)(nil)

// New creates a Store expecting embeddings of the given dimension.
func New(dimension int) *Store {
	return &Store{dimension: dimension, nextID: 1}
}

// Init is a no-op; the store is ready on construction.
func (s *Store) Init(context.Context) error { return nil }

// InsertChunks appends a batch. The whole batch is validated before any
// chunk becomes visible, so a bad row rejects the batch atomically.
func (s *Store) InsertChunks(_ context.Context, chunks []codex.Chunk) (int, error) {
	for _, c := range chunks {
		if len(c.Embedding) != s.dimension {
			return 0, &codex.StoreError{
				Op:  "insert chunks",
				Err: fmt.Errorf("%s page %d: embedding has %d dimensions, want %d", c.DocumentName, c.Page, len(c.Embedding), s.dimension),
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range chunks {
		chunks[i].ID = s.nextID
		s.nextID++
		s.chunks = append(s.chunks, chunks[i])
	}
	return len(chunks), nil
}

// Count returns the number of stored chunks, optionally restricted to one
// source type.
func (s *Store) Count(_ context.Context, sourceType string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sourceType == "" {
		return len(s.chunks), nil
	}
	n := 0
	for _, c := range s.chunks {
		if c.SourceType == sourceType {
			n++
		}
	}
	return n, nil
}

// Nearest ranks all chunks by cosine similarity to the query vector and
// returns the top k.
func (s *Store) Nearest(_ context.Context, embedding []float32, k int) ([]codex.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]codex.ScoredChunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		results = append(results, codex.ScoredChunk{
			Chunk: c,
			Score: cosineSimilarity(embedding, c.Embedding),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// DeleteSource removes all chunks for a source type.
func (s *Store) DeleteSource(_ context.Context, sourceType string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.chunks[:0]
	deleted := 0
	for _, c := range s.chunks {
		if c.SourceType == sourceType {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	s.chunks = kept
	return deleted, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
