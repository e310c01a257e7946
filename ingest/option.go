package ingest

import "log/slog"

// Option configures an Ingestor. Options that carry pipeline parameters
// validate them and return a *codex.ConfigError at construction time.
type Option func(*Ingestor) error

// WithChunkSize sets the window size in runes (default 1500).
func WithChunkSize(n int) Option {
	return func(ing *Ingestor) error {
		c, err := NewWindowChunker(n, ing.chunker.Overlap())
		if err != nil {
			return err
		}
		ing.chunker = c
		return nil
	}
}

// WithOverlap sets the window overlap in runes (default 100).
func WithOverlap(n int) Option {
	return func(ing *Ingestor) error {
		c, err := NewWindowChunker(ing.chunker.ChunkSize(), n)
		if err != nil {
			return err
		}
		ing.chunker = c
		return nil
	}
}

// WithChunker replaces the whole window chunker.
func WithChunker(c *WindowChunker) Option {
	return func(ing *Ingestor) error {
		ing.chunker = c
		return nil
	}
}

// WithBatchSize sets the number of chunks per Embed call (default 64).
func WithBatchSize(n int) Option {
	return func(ing *Ingestor) error {
		if n > 0 {
			ing.batchSize = n
		}
		return nil
	}
}

// WithEmbedRetries sets how many extra per-chunk attempts follow a failed
// embedding batch (default 1).
func WithEmbedRetries(n int) Option {
	return func(ing *Ingestor) error {
		if n >= 0 {
			ing.embedRetries = n
		}
		return nil
	}
}

// WithLogger sets a structured logger for run progress. If not set, no
// logs are emitted.
func WithLogger(l *slog.Logger) Option {
	return func(ing *Ingestor) error {
		ing.logger = l
		return nil
	}
}
