// Command codex ingests documentation sites into a vector store and
// answers similarity searches against them.
//
// Usage:
//
//	codex ingest <site>...        scrape, chunk, embed, and store a site
//	codex search [-k N] <query>   print the chunks nearest to the query
//	codex count [-source TYPE]    print stored chunk counts
//	codex delete <site>           remove all chunks for a site
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	codex "github.com/nevindra/codex"
	"github.com/nevindra/codex/ingest"
	"github.com/nevindra/codex/internal/config"
	"github.com/nevindra/codex/observer"
	"github.com/nevindra/codex/provider/tei"
	"github.com/nevindra/codex/source/web"
	"github.com/nevindra/codex/store/postgres"
	"github.com/nevindra/codex/store/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load(os.Getenv("CODEX_CONFIG"))

	var err error
	switch os.Args[1] {
	case "ingest":
		err = runIngest(ctx, cfg, os.Args[2:])
	case "search":
		err = runSearch(ctx, cfg, os.Args[2:])
	case "count":
		err = runCount(ctx, cfg, os.Args[2:])
	case "delete":
		err = runDelete(ctx, cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: codex {ingest <site>... | search [-k N] <query> | count [-source TYPE] | delete <site>}")
}

// deps holds the wired pipeline shared by every subcommand.
type deps struct {
	store     codex.ChunkStore
	embedding codex.EmbeddingProvider
	shutdown  func(context.Context) error
}

func setup(ctx context.Context, cfg config.Config) (*deps, error) {
	var embedding codex.EmbeddingProvider = tei.New(cfg.Embedding.Endpoint, cfg.Embedding.Dimensions)

	var store codex.ChunkStore
	if cfg.Database.SQLite != "" {
		store = sqlite.New(cfg.Database.SQLite, sqlite.WithDimension(cfg.Embedding.Dimensions))
	} else {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store = postgres.New(pool, postgres.WithEmbeddingDimension(cfg.Embedding.Dimensions))
	}

	d := &deps{store: store, embedding: embedding, shutdown: func(context.Context) error { return nil }}

	if cfg.Observer.Enabled {
		inst, shutdown, err := observer.Init(ctx)
		if err != nil {
			return nil, fmt.Errorf("init observer: %w", err)
		}
		d.embedding = observer.WrapEmbedding(embedding, cfg.Embedding.Model, inst)
		d.store = observer.WrapStore(store, inst)
		d.shutdown = shutdown
	}

	if err := d.store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	return d, nil
}

func (d *deps) close(ctx context.Context) {
	if err := d.store.Close(); err != nil {
		log.Printf("close store: %v", err)
	}
	if err := d.shutdown(ctx); err != nil {
		log.Printf("shutdown observer: %v", err)
	}
}

func runIngest(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("ingest: at least one site required")
	}

	d, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.close(ctx)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ing, err := ingest.New(d.store, d.embedding,
		ingest.WithChunkSize(cfg.Chunking.ChunkSize),
		ingest.WithOverlap(cfg.Chunking.Overlap),
		ingest.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ing.Register(web.NewBook("think_python",
		web.ChapterURLs(cfg.Sources.ThinkPythonBaseURL, "chap%02d.html", cfg.Sources.ThinkPythonChapters)))
	ing.Register(web.NewSectioned("pep8", cfg.Sources.PEP8URL))

	for _, site := range fs.Args() {
		written, err := ing.Ingest(ctx, site)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", site, err)
		}
		fmt.Printf("%s: %d chunks written\n", site, written)
	}
	return nil
}

func runSearch(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	k := fs.Int("k", cfg.Search.TopK, "number of results")
	fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("search: query required")
	}

	d, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.close(ctx)

	retriever := codex.NewRetriever(d.store, d.embedding)
	results, err := retriever.Retrieve(ctx, fs.Arg(0), *k)
	if err != nil {
		return err
	}
	for i, r := range results {
		fmt.Printf("%d. [%.4f] %s p.%d (%s)\n%s\n\n", i+1, r.Score, r.DocumentName, r.Page, r.SourceType, r.Text)
	}
	return nil
}

func runCount(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("count", flag.ExitOnError)
	source := fs.String("source", "", "restrict to one source type")
	fs.Parse(args)

	d, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.close(ctx)

	n, err := d.store.Count(ctx, *source)
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func runDelete(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("delete: exactly one site required")
	}

	d, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.close(ctx)

	n, err := d.store.DeleteSource(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d chunks\n", n)
	return nil
}
