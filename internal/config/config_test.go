package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Embedding.Model != "all-MiniLM-L6-v2" {
		t.Errorf("expected all-MiniLM-L6-v2, got %s", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("expected 384, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Chunking.ChunkSize != 1500 || cfg.Chunking.Overlap != 100 {
		t.Errorf("expected 1500/100, got %d/%d", cfg.Chunking.ChunkSize, cfg.Chunking.Overlap)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("expected port 5432, got %d", cfg.Database.Port)
	}
}

func TestLoadFromTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.toml")
	os.WriteFile(path, []byte(`
[database]
host = "db.internal"
password = "secret"

[chunking]
chunk_size = 400
overlap = 50
`), 0644)

	cfg := Load(path)
	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected db.internal, got %s", cfg.Database.Host)
	}
	if cfg.Chunking.ChunkSize != 400 || cfg.Chunking.Overlap != 50 {
		t.Errorf("expected 400/50, got %d/%d", cfg.Chunking.ChunkSize, cfg.Chunking.Overlap)
	}
	// Defaults preserved
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("default should be preserved, got %d", cfg.Embedding.Dimensions)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "env-host")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("POSTGRES_PASSWORD", "env-pass")
	t.Setenv("CODEX_EMBEDDING_ENDPOINT", "http://tei:80")

	cfg := Load("/nonexistent/path.toml")
	if cfg.Database.Host != "env-host" {
		t.Errorf("expected env-host, got %s", cfg.Database.Host)
	}
	if cfg.Database.Port != 5433 {
		t.Errorf("expected 5433, got %d", cfg.Database.Port)
	}
	if cfg.Embedding.Endpoint != "http://tei:80" {
		t.Errorf("expected http://tei:80, got %s", cfg.Embedding.Endpoint)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "localhost", Port: 5432, Name: "codex", User: "postgres", Password: "pw"}
	want := "postgres://postgres:pw@localhost:5432/codex"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
