// Package codex is the core of a documentation retrieval service: it
// ingests text from external sources, splits it into overlapping
// retrievable chunks, embeds each chunk into a fixed-dimension vector
// space, and persists text and vector for similarity-based retrieval.
//
// # Quick Start
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	store := postgres.New(pool, postgres.WithEmbeddingDimension(384))
//	embedding := tei.New("http://localhost:8080", 384)
//
//	ing, _ := ingest.New(store, embedding,
//		ingest.WithChunkSize(1500),
//		ingest.WithOverlap(100),
//	)
//	ing.Register(web.NewBook("think_python",
//		web.ChapterURLs(baseURL, "chap%02d.html", 20)))
//
//	written, err := ing.Ingest(ctx, "think_python")
//
//	ret := codex.NewRetriever(store, embedding)
//	hits, err := ret.Retrieve(ctx, "how do list comprehensions work?", 5)
//
// # Core Interfaces
//
// The root package defines the contracts all components implement:
//
//   - [EmbeddingProvider]: text-to-vector embedding (opaque external model)
//   - [ChunkStore]: durable chunk persistence with nearest-neighbor search
//   - [Source]: fetches the documents of one named site
//   - [Retriever]: query embedding plus ranked nearest-neighbor lookup
//
// # Included Implementations
//
// Stores: store/postgres (pgvector, HNSW cosine), store/sqlite (pure-Go,
// brute-force cosine), store/memory (in-process, for tests and demos).
// Embedding: provider/tei (text-embeddings-inference HTTP endpoint).
// Sources: source/web (scraped HTML books and section-split pages),
// source/pdf (per-page PDF), source/markdown (local markdown corpora).
// Observability: observer (OTEL traces, metrics, and logs around the
// embedding provider, the store, and whole ingestion runs).
//
// See cmd/codex for a complete wired binary.
package codex
