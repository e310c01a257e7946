package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	codex "github.com/nevindra/codex"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "test.db"), WithDimension(3))
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func chunk(source, text string, embedding ...float32) codex.Chunk {
	return codex.Chunk{
		DocumentName: "doc",
		Page:         1,
		SourceType:   source,
		Text:         text,
		Embedding:    embedding,
	}
}

func TestInitIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Init(context.Background()); err != nil {
		t.Errorf("second Init: %v", err)
	}
}

func TestInsertAndCount(t *testing.T) {
	s := newTestStore(t)

	chunks := []codex.Chunk{
		chunk("think_python", "variables", 1, 0, 0),
		chunk("think_python", "functions", 0, 1, 0),
		chunk("pep8", "naming", 0, 0, 1),
	}
	n, err := s.InsertChunks(context.Background(), chunks)
	if err != nil {
		t.Fatalf("InsertChunks: %v", err)
	}
	if n != 3 {
		t.Errorf("inserted %d, want 3", n)
	}
	for i, c := range chunks {
		if c.ID == 0 {
			t.Errorf("chunk %d: ID not written back", i)
		}
	}

	total, err := s.Count(context.Background(), "")
	if err != nil || total != 3 {
		t.Errorf("Count() = %d, %v; want 3, nil", total, err)
	}
	pep8, err := s.Count(context.Background(), "pep8")
	if err != nil || pep8 != 1 {
		t.Errorf("Count(pep8) = %d, %v; want 1, nil", pep8, err)
	}
}

func TestInsertEmptyBatch(t *testing.T) {
	s := newTestStore(t)
	n, err := s.InsertChunks(context.Background(), nil)
	if err != nil || n != 0 {
		t.Errorf("InsertChunks(nil) = %d, %v; want 0, nil", n, err)
	}
}

func TestInsertRejectsDimensionMismatch(t *testing.T) {
	s := newTestStore(t)

	_, err := s.InsertChunks(context.Background(), []codex.Chunk{
		chunk("a", "good", 1, 0, 0),
		chunk("a", "bad", 1, 0), // two dims, store expects three
	})
	var storeErr *codex.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %v", err)
	}

	count, _ := s.Count(context.Background(), "")
	if count != 0 {
		t.Errorf("Count = %d after rejected batch, want 0", count)
	}
}

func TestNearestOrdering(t *testing.T) {
	s := newTestStore(t)
	s.InsertChunks(context.Background(), []codex.Chunk{
		chunk("a", "orthogonal", 0, 1, 0),
		chunk("a", "exact", 1, 0, 0),
		chunk("a", "close", 0.9, 0.1, 0),
	})

	results, err := s.Nearest(context.Background(), []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Text != "exact" || results[1].Text != "close" {
		t.Errorf("order = [%s, %s], want [exact, close]", results[0].Text, results[1].Text)
	}
	if results[0].Score <= results[1].Score {
		t.Error("scores not strictly descending")
	}
}

func TestNearestRoundTripsMetadata(t *testing.T) {
	s := newTestStore(t)
	in := codex.Chunk{
		DocumentName: "chap03.html",
		Page:         3,
		Text:         "functions and parameters",
		SourceType:   "think_python",
		SectionName:  "Functions",
		URL:          "https://example.com/chap03.html",
		IsOverlap:    true,
		Embedding:    []float32{1, 0, 0},
	}
	if _, err := s.InsertChunks(context.Background(), []codex.Chunk{in}); err != nil {
		t.Fatal(err)
	}

	results, err := s.Nearest(context.Background(), []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	got := results[0]
	if got.DocumentName != in.DocumentName || got.Page != in.Page || got.Text != in.Text ||
		got.SourceType != in.SourceType || got.SectionName != in.SectionName ||
		got.URL != in.URL || !got.IsOverlap {
		t.Errorf("round trip mismatch: %+v", got.Chunk)
	}
}

func TestDeleteSource(t *testing.T) {
	s := newTestStore(t)
	s.InsertChunks(context.Background(), []codex.Chunk{
		chunk("old", "a", 1, 0, 0),
		chunk("old", "b", 0, 1, 0),
		chunk("kept", "c", 0, 0, 1),
	})

	deleted, err := s.DeleteSource(context.Background(), "old")
	if err != nil {
		t.Fatalf("DeleteSource: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted %d, want 2", deleted)
	}
	count, _ := s.Count(context.Background(), "")
	if count != 1 {
		t.Errorf("Count = %d after delete, want 1", count)
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persist.db")

	s := New(path, WithDimension(2))
	if err := s.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertChunks(context.Background(), []codex.Chunk{
		{DocumentName: "d", Page: 1, Text: "t", SourceType: "a", Embedding: []float32{1, 0}},
	}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2 := New(path, WithDimension(2))
	defer s2.Close()
	count, err := s2.Count(context.Background(), "")
	if err != nil || count != 1 {
		t.Errorf("Count after reopen = %d, %v; want 1, nil", count, err)
	}
}
