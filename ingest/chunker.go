package ingest

import (
	"strings"

	codex "github.com/nevindra/codex"
)

// Window is one chunk-sized slice of document text. The first window of a
// document is primary; every later window opens with the tail of its
// predecessor and is flagged IsOverlap.
type Window struct {
	Text      string
	IsOverlap bool
}

// WindowChunker splits text into fixed-size overlapping windows.
//
// Sizes are counted in runes. The window start advances by
// chunkSize-overlap each step, so the leading overlap runes of every
// window after the first duplicate the previous window's tail. The final
// window may be shorter than chunkSize; it is always emitted. The
// segmentation is deterministic: the same text and parameters always
// produce the same windows, in document order.
type WindowChunker struct {
	chunkSize int
	overlap   int
}

// NewWindowChunker validates the window parameters. chunkSize must be
// positive and overlap must be non-negative and strictly smaller than
// chunkSize (the window would never advance otherwise). Violations return
// a *codex.ConfigError.
func NewWindowChunker(chunkSize, overlap int) (*WindowChunker, error) {
	if chunkSize <= 0 {
		return nil, &codex.ConfigError{Param: "chunk_size", Message: "must be positive"}
	}
	if overlap < 0 {
		return nil, &codex.ConfigError{Param: "overlap_size", Message: "must be non-negative"}
	}
	if overlap >= chunkSize {
		return nil, &codex.ConfigError{Param: "overlap_size", Message: "must be smaller than chunk_size"}
	}
	return &WindowChunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize returns the configured window size in runes.
func (c *WindowChunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap in runes.
func (c *WindowChunker) Overlap() int { return c.overlap }

// Chunk splits text into windows. Empty or whitespace-only text yields
// zero windows. Text no longer than chunkSize yields exactly one primary
// window holding the text verbatim.
//
// Concatenating the first window with the non-overlap remainder of every
// later window (its text minus the leading overlap runes) reconstructs
// the input exactly.
func (c *WindowChunker) Chunk(text string) []Window {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= c.chunkSize {
		return []Window{{Text: text}}
	}

	step := c.chunkSize - c.overlap
	var windows []Window
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		windows = append(windows, Window{
			Text:      string(runes[start:end]),
			IsOverlap: start > 0,
		})
		if end == len(runes) {
			break
		}
	}
	return windows
}
