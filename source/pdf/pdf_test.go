package pdf

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	codex "github.com/nevindra/codex"
)

func TestExtractEmptyContent(t *testing.T) {
	_, err := extractPages(nil)
	if err == nil {
		t.Error("expected error for empty content")
	}
}

func TestExtractGarbageContent(t *testing.T) {
	_, err := extractPages([]byte("not a pdf at all"))
	if err == nil {
		t.Error("expected error for non-PDF content")
	}
}

func TestFetchMissingFile(t *testing.T) {
	src := New("reports", filepath.Join(t.TempDir(), "absent.pdf"))
	if src.Site() != "reports" {
		t.Errorf("Site() = %q", src.Site())
	}

	_, err := src.Fetch(context.Background())
	var fetchErr *codex.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Document != "absent.pdf" {
		t.Errorf("Document = %q, want absent.pdf", fetchErr.Document)
	}
}
