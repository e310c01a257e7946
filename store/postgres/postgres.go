// Package postgres implements codex.ChunkStore using PostgreSQL with
// pgvector. Nearest-neighbor search uses an HNSW index with cosine
// distance; scores returned to callers are cosine similarity (1 - distance).
//
// The Store accepts an externally-owned *pgxpool.Pool via constructor
// injection. The caller creates and closes the pool.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	codex "github.com/nevindra/codex"
)

// Store implements codex.ChunkStore backed by PostgreSQL with pgvector.
type Store struct {
	pool *pgxpool.Pool
	cfg  pgConfig
}

// pgConfig holds store configuration set via Option functions.
type pgConfig struct {
	embeddingDimension int // vector column dimension
	hnswM              int // 0 = pgvector default (16)
	hnswEFConstruction int // 0 = pgvector default (64)
	hnswEFSearch       int // 0 = pgvector default (40)
}

// Option configures a PostgreSQL Store.
type Option func(*pgConfig)

// WithEmbeddingDimension sets the vector column dimension. A typed
// vector(N) column catches dimension mismatches at insert time, before a
// partially-valid batch could commit. Only affects new table creation.
func WithEmbeddingDimension(dim int) Option {
	return func(c *pgConfig) { c.embeddingDimension = dim }
}

// WithHNSWM sets the HNSW m parameter (max connections per node).
// Higher values improve recall at the cost of memory. Default: pgvector's 16.
func WithHNSWM(m int) Option {
	return func(c *pgConfig) { c.hnswM = m }
}

// WithEFConstruction sets the HNSW ef_construction parameter (build-time
// candidate list size). Default: pgvector's 64.
func WithEFConstruction(ef int) Option {
	return func(c *pgConfig) { c.hnswEFConstruction = ef }
}

// WithEFSearch sets the HNSW ef_search parameter (query-time candidate
// list size). Default: pgvector's 40. Applied during Init.
func WithEFSearch(ef int) Option {
	return func(c *pgConfig) { c.hnswEFSearch = ef }
}

var _ codex.ChunkStore = (*Store)(nil)

// DefaultDimension matches the all-MiniLM-L6-v2 embedding model.
const DefaultDimension = 384

// New creates a Store using an existing pgxpool.Pool.
// The caller owns the pool and is responsible for closing it.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	cfg := pgConfig{embeddingDimension: DefaultDimension}
	for _, o := range opts {
		o(&cfg)
	}
	return &Store{pool: pool, cfg: cfg}
}

// hnswWithClause returns the WITH (...) clause for HNSW index creation,
// or an empty string if no tuning params are set.
func (s *Store) hnswWithClause() string {
	var parts []string
	if s.cfg.hnswM > 0 {
		parts = append(parts, fmt.Sprintf("m = %d", s.cfg.hnswM))
	}
	if s.cfg.hnswEFConstruction > 0 {
		parts = append(parts, fmt.Sprintf("ef_construction = %d", s.cfg.hnswEFConstruction))
	}
	if len(parts) == 0 {
		return ""
	}
	return " WITH (" + strings.Join(parts, ", ") + ")"
}

// Init creates the pgvector extension, the rag_chunks table, and its
// indexes. Safe to call multiple times (all statements are idempotent).
func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS rag_chunks (
			id BIGSERIAL PRIMARY KEY,
			document_name TEXT NOT NULL,
			page INTEGER NOT NULL,
			chunk_text TEXT NOT NULL,
			embedding vector(%d),
			source_type TEXT NOT NULL DEFAULT '',
			section_name TEXT,
			url TEXT,
			is_overlap BOOLEAN NOT NULL DEFAULT FALSE
		)`, s.cfg.embeddingDimension),
		`CREATE INDEX IF NOT EXISTS rag_chunks_source_idx ON rag_chunks(source_type)`,
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS rag_chunks_embedding_idx ON rag_chunks USING hnsw (embedding vector_cosine_ops)%s`, s.hnswWithClause()),
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return &codex.StoreError{Op: "init", Err: err}
		}
	}

	if s.cfg.hnswEFSearch > 0 {
		if _, err := s.pool.Exec(ctx, fmt.Sprintf("SET hnsw.ef_search = %d", s.cfg.hnswEFSearch)); err != nil {
			return &codex.StoreError{Op: "set ef_search", Err: err}
		}
	}

	return nil
}

// InsertChunks writes a batch inside a single transaction: either every
// chunk becomes visible or none does. Store-assigned IDs are written back
// into the passed chunks. Returns the number inserted.
func (s *Store) InsertChunks(ctx context.Context, chunks []codex.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	for _, c := range chunks {
		if len(c.Embedding) != s.cfg.embeddingDimension {
			return 0, &codex.StoreError{
				Op:  "insert chunks",
				Err: fmt.Errorf("%s page %d: embedding has %d dimensions, want %d", c.DocumentName, c.Page, len(c.Embedding), s.cfg.embeddingDimension),
			}
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, &codex.StoreError{Op: "begin tx", Err: err}
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for i := range chunks {
		c := &chunks[i]
		err := tx.QueryRow(ctx,
			`INSERT INTO rag_chunks (document_name, page, chunk_text, embedding, source_type, section_name, url, is_overlap)
			 VALUES ($1, $2, $3, $4::vector, $5, $6, $7, $8)
			 RETURNING id`,
			c.DocumentName, c.Page, c.Text, pgvector.NewVector(c.Embedding),
			c.SourceType, nullable(c.SectionName), nullable(c.URL), c.IsOverlap,
		).Scan(&c.ID)
		if err != nil {
			return 0, &codex.StoreError{Op: "insert chunks", Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, &codex.StoreError{Op: "commit tx", Err: err}
	}
	return len(chunks), nil
}

// Count returns the number of stored chunks, optionally restricted to one
// source type.
func (s *Store) Count(ctx context.Context, sourceType string) (int, error) {
	var n int
	var err error
	if sourceType == "" {
		err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rag_chunks`).Scan(&n)
	} else {
		err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rag_chunks WHERE source_type = $1`, sourceType).Scan(&n)
	}
	if err != nil {
		return 0, &codex.StoreError{Op: "count", Err: err}
	}
	return n, nil
}

// Nearest performs vector similarity search using pgvector's cosine
// distance operator with the HNSW index, returning up to k chunks ordered
// by descending similarity.
func (s *Store) Nearest(ctx context.Context, embedding []float32, k int) ([]codex.ScoredChunk, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, document_name, page, chunk_text, source_type, section_name, url, is_overlap,
		        1 - (embedding <=> $1::vector) AS score
		 FROM rag_chunks
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1::vector
		 LIMIT $2`,
		pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, &codex.StoreError{Op: "nearest", Err: err}
	}
	defer rows.Close()

	var results []codex.ScoredChunk
	for rows.Next() {
		var sc codex.ScoredChunk
		var section, url *string
		if err := rows.Scan(&sc.ID, &sc.DocumentName, &sc.Page, &sc.Text, &sc.SourceType, &section, &url, &sc.IsOverlap, &sc.Score); err != nil {
			return nil, &codex.StoreError{Op: "scan chunk", Err: err}
		}
		if section != nil {
			sc.SectionName = *section
		}
		if url != nil {
			sc.URL = *url
		}
		results = append(results, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, &codex.StoreError{Op: "iterate chunks", Err: err}
	}
	return results, nil
}

// DeleteSource removes all chunks for a source type and reports how many
// rows went away. Callers use it before re-ingesting a site to keep
// counts idempotent.
func (s *Store) DeleteSource(ctx context.Context, sourceType string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM rag_chunks WHERE source_type = $1`, sourceType)
	if err != nil {
		return 0, &codex.StoreError{Op: "delete source", Err: err}
	}
	return int(tag.RowsAffected()), nil
}

// Close is a no-op. The caller owns the pool and manages its lifecycle.
func (s *Store) Close() error {
	return nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
