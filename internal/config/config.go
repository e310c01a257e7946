package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Search    SearchConfig    `toml:"search"`
	Sources   SourcesConfig   `toml:"sources"`
	Observer  ObserverConfig  `toml:"observer"`
}

type DatabaseConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Name     string `toml:"name"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	SQLite   string `toml:"sqlite_path"`
}

// DSN renders the Postgres connection string for pgxpool.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", d.User, d.Password, d.Host, d.Port, d.Name)
}

type EmbeddingConfig struct {
	Endpoint   string `toml:"endpoint"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
}

type ChunkingConfig struct {
	ChunkSize int `toml:"chunk_size"`
	Overlap   int `toml:"overlap"`
}

type SearchConfig struct {
	TopK int `toml:"top_k"`
}

type SourcesConfig struct {
	ThinkPythonBaseURL  string `toml:"think_python_base_url"`
	ThinkPythonChapters int    `toml:"think_python_chapters"`
	PEP8URL             string `toml:"pep8_url"`
}

type ObserverConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Host: "localhost",
			Port: 5432,
			Name: "codex",
			User: "postgres",
		},
		Embedding: EmbeddingConfig{
			Endpoint:   "http://localhost:8080",
			Model:      "all-MiniLM-L6-v2",
			Dimensions: 384,
		},
		Chunking: ChunkingConfig{ChunkSize: 1500, Overlap: 100},
		Search:   SearchConfig{TopK: 5},
		Sources: SourcesConfig{
			ThinkPythonBaseURL:  "https://www.greenteapress.com/thinkpython/html/",
			ThinkPythonChapters: 20,
			PEP8URL:             "https://peps.python.org/pep-0008/",
		},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "codex.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	// Env overrides
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil && port > 0 {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("POSTGRES_DB"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("POSTGRES_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("CODEX_EMBEDDING_ENDPOINT"); v != "" {
		cfg.Embedding.Endpoint = v
	}
	if v := os.Getenv("CODEX_SQLITE_PATH"); v != "" {
		cfg.Database.SQLite = v
	}
	if os.Getenv("CODEX_OBSERVER_ENABLED") == "true" || os.Getenv("CODEX_OBSERVER_ENABLED") == "1" {
		cfg.Observer.Enabled = true
	}

	return cfg
}
