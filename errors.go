package codex

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery is returned by Retrieve when the query is empty or
// whitespace-only. No embedding or store call is made.
var ErrEmptyQuery = errors.New("codex: empty query")

// ConfigError reports invalid pipeline parameters (chunk sizes, dimensions).
// It is raised at construction time, never mid-run.
type ConfigError struct {
	Param   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("codex: config %s: %s", e.Param, e.Message)
}

// UnknownSiteError reports an ingestion request for a site no fetcher
// is registered for. No partial state is created.
type UnknownSiteError struct {
	Site string
}

func (e *UnknownSiteError) Error() string {
	return fmt.Sprintf("codex: unknown site %q", e.Site)
}

// FetchError reports a failure in the external fetch collaborator.
// Retryable by the caller; Site and Document locate the failing fetch.
type FetchError struct {
	Site     string
	Document string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Document != "" {
		return fmt.Sprintf("codex: fetch %s/%s: %v", e.Site, e.Document, e.Err)
	}
	return fmt.Sprintf("codex: fetch %s: %v", e.Site, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// EmbedError reports a failed or timed-out embedding call. It is an I/O
// error, retryable per chunk; never a data-validity error.
type EmbedError struct {
	Provider string
	Err      error
}

func (e *EmbedError) Error() string {
	return fmt.Sprintf("codex: embed (%s): %v", e.Provider, e.Err)
}

func (e *EmbedError) Unwrap() error { return e.Err }

// StoreError reports a persistence failure. Fatal for the current batch;
// the batch is never left partially visible.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("codex: store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
