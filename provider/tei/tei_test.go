package tei

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	codex "github.com/nevindra/codex"
)

func TestEmbed(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode([][]float32{{0.1, 0.2}, {0.3, 0.4}})
	}))
	defer srv.Close()

	e := New(srv.URL, 2)
	vecs, err := e.Embed(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if gotPath != "/embed" {
		t.Errorf("path = %q, want /embed", gotPath)
	}
	inputs, _ := gotBody["inputs"].([]any)
	if len(inputs) != 2 || inputs[0] != "hello" {
		t.Errorf("inputs = %v", gotBody["inputs"])
	}
	if gotBody["truncate"] != true {
		t.Error("truncate flag not set")
	}
	if len(vecs) != 2 || vecs[0][0] != 0.1 || vecs[1][1] != 0.4 {
		t.Errorf("vectors = %v", vecs)
	}
}

func TestEmbedNoTexts(t *testing.T) {
	e := New("http://unused", 2)
	vecs, err := e.Embed(context.Background(), nil)
	if err != nil || vecs != nil {
		t.Errorf("Embed(nil) = %v, %v; want nil, nil", vecs, err)
	}
}

func TestEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 2).Embed(context.Background(), []string{"x"})
	var embedErr *codex.EmbedError
	if !errors.As(err, &embedErr) {
		t.Fatalf("expected EmbedError, got %v", err)
	}
	if embedErr.Provider != "tei" {
		t.Errorf("Provider = %q, want tei", embedErr.Provider)
	}
}

func TestEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([][]float32{{0.1, 0.2}})
	}))
	defer srv.Close()

	_, err := New(srv.URL, 2).Embed(context.Background(), []string{"a", "b"})
	var embedErr *codex.EmbedError
	if !errors.As(err, &embedErr) {
		t.Fatalf("expected EmbedError on count mismatch, got %v", err)
	}
}

func TestEmbedDimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([][]float32{{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	_, err := New(srv.URL, 2).Embed(context.Background(), []string{"a"})
	var embedErr *codex.EmbedError
	if !errors.As(err, &embedErr) {
		t.Fatalf("expected EmbedError on dimension mismatch, got %v", err)
	}
}

func TestEmbedInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := New(srv.URL, 2).Embed(context.Background(), []string{"a"})
	var embedErr *codex.EmbedError
	if !errors.As(err, &embedErr) {
		t.Fatalf("expected EmbedError on bad payload, got %v", err)
	}
}

func TestTrailingSlashTrimmed(t *testing.T) {
	e := New("http://host:8080/", 384)
	if e.baseURL != "http://host:8080" {
		t.Errorf("baseURL = %q, want trailing slash removed", e.baseURL)
	}
	if e.Dimensions() != 384 {
		t.Errorf("Dimensions() = %d, want 384", e.Dimensions())
	}
	if e.Name() != "tei" {
		t.Errorf("Name() = %q, want tei", e.Name())
	}
}
