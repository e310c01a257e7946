package codex

import "context"

// Source fetches the documents for one named site. Implementations wrap
// external collaborators (web scrapers, local files) and report failures
// as *FetchError with enough context to retry safely.
type Source interface {
	// Site returns the logical source name (e.g. "think_python", "pep8").
	// It becomes the SourceType of every chunk produced from this source.
	Site() string
	// Fetch returns the site's documents as raw text plus provenance.
	Fetch(ctx context.Context) ([]SourceDocument, error)
}
