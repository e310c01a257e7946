package observer

import (
	"context"
	"errors"
	"testing"

	codex "github.com/nevindra/codex"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

// mockEmbedding for observer tests.
type mockEmbedding struct {
	name    string
	dims    int
	vectors [][]float32
	err     error
	calls   int
}

func (m *mockEmbedding) Name() string    { return m.name }
func (m *mockEmbedding) Dimensions() int { return m.dims }
func (m *mockEmbedding) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vectors[:len(texts)], nil
}

// mockStore for observer tests.
type mockStore struct {
	inserted []codex.Chunk
	results  []codex.ScoredChunk
	err      error
}

func (m *mockStore) InsertChunks(_ context.Context, chunks []codex.Chunk) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.inserted = append(m.inserted, chunks...)
	return len(chunks), nil
}
func (m *mockStore) Count(_ context.Context, _ string) (int, error) {
	return len(m.inserted), m.err
}
func (m *mockStore) Nearest(_ context.Context, _ []float32, k int) ([]codex.ScoredChunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	if k > len(m.results) {
		k = len(m.results)
	}
	return m.results[:k], nil
}
func (m *mockStore) DeleteSource(_ context.Context, _ string) (int, error) {
	n := len(m.inserted)
	m.inserted = nil
	return n, m.err
}
func (m *mockStore) Init(_ context.Context) error { return m.err }
func (m *mockStore) Close() error                 { return nil }

// testInstruments builds instruments against the default no-op OTEL providers.
func testInstruments(t *testing.T) *Instruments {
	t.Helper()
	inst, err := newInstruments()
	if err != nil {
		t.Fatalf("newInstruments: %v", err)
	}
	return inst
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestWrapEmbeddingPassesThrough(t *testing.T) {
	mock := &mockEmbedding{
		name:    "tei",
		dims:    3,
		vectors: [][]float32{{1, 0, 0}, {0, 1, 0}},
	}
	wrapped := WrapEmbedding(mock, "all-MiniLM-L6-v2", testInstruments(t))

	if wrapped.Name() != "tei" {
		t.Errorf("Name() = %q, want tei", wrapped.Name())
	}
	if wrapped.Dimensions() != 3 {
		t.Errorf("Dimensions() = %d, want 3", wrapped.Dimensions())
	}

	vecs, err := wrapped.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
	if mock.calls != 1 {
		t.Errorf("inner called %d times, want 1", mock.calls)
	}
}

func TestWrapEmbeddingPropagatesError(t *testing.T) {
	wantErr := errors.New("endpoint down")
	wrapped := WrapEmbedding(&mockEmbedding{name: "tei", err: wantErr}, "m", testInstruments(t))

	_, err := wrapped.Embed(context.Background(), []string{"a"})
	if !errors.Is(err, wantErr) {
		t.Errorf("Embed error = %v, want %v", err, wantErr)
	}
}

func TestWrapStorePassesThrough(t *testing.T) {
	mock := &mockStore{
		results: []codex.ScoredChunk{
			{Chunk: codex.Chunk{ID: 1, Text: "hello"}, Score: 0.9},
		},
	}
	wrapped := WrapStore(mock, testInstruments(t))

	n, err := wrapped.InsertChunks(context.Background(), []codex.Chunk{
		{Text: "a", Embedding: []float32{1, 0}},
		{Text: "b", Embedding: []float32{0, 1}},
	})
	if err != nil {
		t.Fatalf("InsertChunks: %v", err)
	}
	if n != 2 {
		t.Errorf("inserted %d, want 2", n)
	}

	got, err := wrapped.Nearest(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if len(got) != 1 || got[0].Text != "hello" {
		t.Errorf("Nearest = %+v, want one chunk %q", got, "hello")
	}

	count, err := wrapped.Count(context.Background(), "")
	if err != nil || count != 2 {
		t.Errorf("Count = %d, %v; want 2, nil", count, err)
	}

	deleted, err := wrapped.DeleteSource(context.Background(), "think_python")
	if err != nil || deleted != 2 {
		t.Errorf("DeleteSource = %d, %v; want 2, nil", deleted, err)
	}
}

func TestWrapStorePropagatesError(t *testing.T) {
	wantErr := errors.New("connection refused")
	wrapped := WrapStore(&mockStore{err: wantErr}, testInstruments(t))

	if _, err := wrapped.InsertChunks(context.Background(), nil); !errors.Is(err, wantErr) {
		t.Errorf("InsertChunks error = %v, want %v", err, wantErr)
	}
	if _, err := wrapped.Nearest(context.Background(), nil, 1); !errors.Is(err, wantErr) {
		t.Errorf("Nearest error = %v, want %v", err, wantErr)
	}
}
