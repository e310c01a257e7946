// Package pdf implements codex.Source for local PDF files. Each file
// becomes one SourceDocument with one page of text per PDF page, so
// chunk provenance carries real page numbers.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	codex "github.com/nevindra/codex"
)

// Source reads one or more PDF files from disk.
type Source struct {
	site  string
	paths []string
}

var _ codex.Source = (*Source)(nil)

// New creates a PDF source for the given file paths.
func New(site string, paths ...string) *Source {
	return &Source{site: site, paths: paths}
}

// Site returns the source name.
func (s *Source) Site() string { return s.site }

// Fetch reads every file and extracts text page by page. Pages with no
// extractable text are skipped; a file with no text at all yields no
// document rather than an error.
func (s *Source) Fetch(_ context.Context) ([]codex.SourceDocument, error) {
	var docs []codex.SourceDocument
	for _, path := range s.paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, &codex.FetchError{Site: s.site, Document: filepath.Base(path), Err: err}
		}
		pages, err := extractPages(content)
		if err != nil {
			return nil, &codex.FetchError{Site: s.site, Document: filepath.Base(path), Err: err}
		}
		if len(pages) == 0 {
			continue
		}
		docs = append(docs, codex.SourceDocument{
			Name:  filepath.Base(path),
			Pages: pages,
		})
	}
	return docs, nil
}

// extractPages pulls plain text out of a PDF, one entry per page that
// has any text.
func extractPages(content []byte) ([]codex.Page, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("empty PDF content")
	}
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var pages []codex.Page
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, codex.Page{Number: i, Text: text})
	}
	return pages, nil
}
