// Package sqlite implements codex.ChunkStore using pure-Go SQLite with
// in-process brute-force vector search. Zero CGO required.
//
// Embeddings are stored as JSON text and ranked by cosine similarity
// computed in-process, so it suits local corpora and tests rather than
// large deployments. The similarity metric matches store/postgres.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	codex "github.com/nevindra/codex"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// StoreOption configures a SQLite Store.
type StoreOption func(*Store)

// WithLogger sets a structured logger for the store. When set, the store
// emits debug logs for every operation including timing and row counts.
// If not set, no logs are emitted.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithDimension sets the expected embedding dimension (default 384).
// Batches carrying a different dimension are rejected whole.
func WithDimension(dim int) StoreOption {
	return func(s *Store) { s.dimension = dim }
}

// Store implements codex.ChunkStore backed by a local SQLite file.
type Store struct {
	db        *sql.DB
	dimension int
	logger    *slog.Logger
}

var _ codex.ChunkStore = (*Store)(nil)

// New creates a Store using a local SQLite file at dbPath.
// It opens a single shared connection pool with SetMaxOpenConns(1) so that
// all goroutines serialize through one connection, eliminating SQLITE_BUSY
// errors caused by concurrent writers opening independent connections.
func New(dbPath string, opts ...StoreOption) *Store {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		// sql.Open only fails when the driver is not registered; with the
		// blank import above that never happens.
		panic(fmt.Sprintf("sqlite: open driver: %v", err))
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db, dimension: 384, logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(s)
	}
	s.logger.Debug("sqlite: store opened", "path", dbPath)
	return s
}

// Init creates the rag_chunks table.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS rag_chunks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_name TEXT NOT NULL,
		page INTEGER NOT NULL,
		chunk_text TEXT NOT NULL,
		embedding TEXT,
		source_type TEXT NOT NULL DEFAULT '',
		section_name TEXT,
		url TEXT,
		is_overlap INTEGER NOT NULL DEFAULT 0
	)`)
	if err != nil {
		return &codex.StoreError{Op: "init", Err: err}
	}
	if _, err := s.db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS rag_chunks_source_idx ON rag_chunks(source_type)`); err != nil {
		return &codex.StoreError{Op: "init", Err: err}
	}
	return nil
}

// InsertChunks writes a batch inside one transaction: all rows or none.
// Store-assigned IDs are written back into the passed chunks.
func (s *Store) InsertChunks(ctx context.Context, chunks []codex.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	for _, c := range chunks {
		if len(c.Embedding) != s.dimension {
			return 0, &codex.StoreError{
				Op:  "insert chunks",
				Err: fmt.Errorf("%s page %d: embedding has %d dimensions, want %d", c.DocumentName, c.Page, len(c.Embedding), s.dimension),
			}
		}
	}

	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &codex.StoreError{Op: "begin tx", Err: err}
	}
	defer tx.Rollback() //nolint:errcheck

	for i := range chunks {
		c := &chunks[i]
		emb, err := json.Marshal(c.Embedding)
		if err != nil {
			return 0, &codex.StoreError{Op: "marshal embedding", Err: err}
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO rag_chunks (document_name, page, chunk_text, embedding, source_type, section_name, url, is_overlap)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.DocumentName, c.Page, c.Text, string(emb),
			c.SourceType, nullable(c.SectionName), nullable(c.URL), c.IsOverlap)
		if err != nil {
			return 0, &codex.StoreError{Op: "insert chunks", Err: err}
		}
		if id, err := res.LastInsertId(); err == nil {
			c.ID = id
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, &codex.StoreError{Op: "commit tx", Err: err}
	}
	s.logger.Debug("sqlite: batch inserted", "chunks", len(chunks), "took", time.Since(start))
	return len(chunks), nil
}

// Count returns the number of stored chunks, optionally restricted to one
// source type.
func (s *Store) Count(ctx context.Context, sourceType string) (int, error) {
	var n int
	var err error
	if sourceType == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rag_chunks`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rag_chunks WHERE source_type = ?`, sourceType).Scan(&n)
	}
	if err != nil {
		return 0, &codex.StoreError{Op: "count", Err: err}
	}
	return n, nil
}

// Nearest performs brute-force cosine similarity search over all chunks.
func (s *Store) Nearest(ctx context.Context, embedding []float32, k int) ([]codex.ScoredChunk, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_name, page, chunk_text, embedding, source_type, section_name, url, is_overlap
		 FROM rag_chunks WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, &codex.StoreError{Op: "nearest", Err: err}
	}
	defer rows.Close()

	var results []codex.ScoredChunk
	for rows.Next() {
		var sc codex.ScoredChunk
		var embJSON string
		var section, url sql.NullString
		if err := rows.Scan(&sc.ID, &sc.DocumentName, &sc.Page, &sc.Text, &embJSON, &sc.SourceType, &section, &url, &sc.IsOverlap); err != nil {
			return nil, &codex.StoreError{Op: "scan chunk", Err: err}
		}
		var stored []float32
		if err := json.Unmarshal([]byte(embJSON), &stored); err != nil {
			continue
		}
		sc.SectionName = section.String
		sc.URL = url.String
		sc.Embedding = stored
		sc.Score = cosineSimilarity(embedding, stored)
		results = append(results, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, &codex.StoreError{Op: "iterate chunks", Err: err}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	s.logger.Debug("sqlite: nearest", "k", k, "results", len(results), "took", time.Since(start))
	return results, nil
}

// DeleteSource removes all chunks for a source type.
func (s *Store) DeleteSource(ctx context.Context, sourceType string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rag_chunks WHERE source_type = ?`, sourceType)
	if err != nil {
		return 0, &codex.StoreError{Op: "delete source", Err: err}
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// cosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 when either vector is zero or the lengths differ.
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
