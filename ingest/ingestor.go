package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/text/unicode/norm"

	codex "github.com/nevindra/codex"
)

// Ingestor drives one ingestion run end-to-end for a named site:
// fetch → chunk → embed → store, returning the count of chunks written.
//
// Chunking is pure CPU work; embedding and store calls are the suspension
// points, so concurrent runs for different sites may share one Ingestor.
// Runs for the same site are not coordinated here; callers serialize
// re-ingestion of a site themselves, clearing prior rows first
// (ChunkStore.DeleteSource) if they want idempotent counts.
type Ingestor struct {
	store     codex.ChunkStore
	embedding codex.EmbeddingProvider
	chunker   *WindowChunker
	sources   map[string]codex.Source

	batchSize    int
	embedRetries int
	logger       *slog.Logger
}

// New creates an Ingestor with the default window parameters
// (1500-rune chunks, 100-rune overlap) and a 64-chunk embed batch size.
func New(store codex.ChunkStore, embedding codex.EmbeddingProvider, opts ...Option) (*Ingestor, error) {
	chunker, err := NewWindowChunker(1500, 100)
	if err != nil {
		return nil, err
	}
	ing := &Ingestor{
		store:        store,
		embedding:    embedding,
		chunker:      chunker,
		sources:      make(map[string]codex.Source),
		batchSize:    64,
		embedRetries: 1,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		if err := o(ing); err != nil {
			return nil, err
		}
	}
	return ing, nil
}

// Register makes a source ingestible under its Site name. A later
// registration for the same site replaces the earlier one.
func (ing *Ingestor) Register(src codex.Source) {
	ing.sources[src.Site()] = src
}

// Ingest runs one ingestion for site and returns the number of chunks
// written. Returns *codex.UnknownSiteError when no source is registered
// for site. On any other error the returned count is unreliable; callers
// must query the store's Count to learn the true state.
func (ing *Ingestor) Ingest(ctx context.Context, site string) (int, error) {
	src, ok := ing.sources[site]
	if !ok {
		return 0, &codex.UnknownSiteError{Site: site}
	}

	runID := codex.NewRunID()
	log := ing.logger.With("run_id", runID, "site", site)
	log.Info("ingest: run started")

	docs, err := src.Fetch(ctx)
	if err != nil {
		return 0, asFetchError(site, err)
	}

	total := 0
	for _, doc := range docs {
		chunks := ing.chunkDocument(site, doc)
		if len(chunks) == 0 {
			log.Debug("ingest: document empty", "document", doc.Name)
			continue
		}

		if err := ing.embedChunks(ctx, chunks); err != nil {
			return total, fmt.Errorf("embed %s/%s: %w", site, doc.Name, err)
		}

		n, err := ing.store.InsertChunks(ctx, chunks)
		if err != nil {
			return total, fmt.Errorf("insert %s/%s: %w", site, doc.Name, err)
		}
		total += n
		log.Debug("ingest: document stored", "document", doc.Name, "chunks", n)
	}

	log.Info("ingest: run finished", "chunks_written", total)
	return total, nil
}

// chunkDocument cuts one fetched document into chunks, page by page,
// in document order. Page text is NFC-normalized before windowing so
// equivalent fetches segment identically.
func (ing *Ingestor) chunkDocument(site string, doc codex.SourceDocument) []codex.Chunk {
	var chunks []codex.Chunk
	for _, page := range doc.Pages {
		for _, w := range ing.chunker.Chunk(norm.NFC.String(page.Text)) {
			chunks = append(chunks, codex.Chunk{
				DocumentName: doc.Name,
				Page:         page.Number,
				Text:         w.Text,
				SourceType:   site,
				SectionName:  doc.SectionName,
				URL:          doc.URL,
				IsOverlap:    w.IsOverlap,
			})
		}
	}
	return chunks
}

// embedChunks fills in the Embedding of every chunk, in batches. A failed
// batch is retried chunk by chunk so one bad call cannot discard the
// embeddings of its neighbors; chunks that already embedded successfully
// are never re-embedded.
func (ing *Ingestor) embedChunks(ctx context.Context, chunks []codex.Chunk) error {
	for i := 0; i < len(chunks); i += ing.batchSize {
		end := i + ing.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Text
		}

		embs, err := ing.embedding.Embed(ctx, texts)
		if err != nil {
			if err := ing.embedSingly(ctx, batch); err != nil {
				return err
			}
			continue
		}
		if len(embs) != len(batch) {
			return &codex.EmbedError{
				Provider: ing.embedding.Name(),
				Err:      fmt.Errorf("got %d embeddings for %d texts", len(embs), len(batch)),
			}
		}
		for j := range batch {
			batch[j].Embedding = embs[j]
		}
	}
	return nil
}

// embedSingly retries a failed batch one chunk at a time, up to
// embedRetries extra attempts per chunk.
func (ing *Ingestor) embedSingly(ctx context.Context, batch []codex.Chunk) error {
	for j := range batch {
		var lastErr error
		for attempt := 0; attempt <= ing.embedRetries; attempt++ {
			embs, err := ing.embedding.Embed(ctx, []string{batch[j].Text})
			if err != nil {
				lastErr = err
				continue
			}
			if len(embs) != 1 {
				lastErr = &codex.EmbedError{
					Provider: ing.embedding.Name(),
					Err:      fmt.Errorf("got %d embeddings for 1 text", len(embs)),
				}
				continue
			}
			batch[j].Embedding = embs[0]
			lastErr = nil
			break
		}
		if lastErr != nil {
			return fmt.Errorf("page %d: %w", batch[j].Page, lastErr)
		}
	}
	return nil
}

// asFetchError preserves a fetcher's own *codex.FetchError and wraps
// anything else with the site context.
func asFetchError(site string, err error) error {
	if _, ok := err.(*codex.FetchError); ok {
		return err
	}
	return &codex.FetchError{Site: site, Err: err}
}
