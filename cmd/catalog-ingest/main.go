// Command catalog-ingest bulk-loads supplier catalog feeds into the products
// table. Feeds are gzip-compressed JSON lines files, one product per line.
// Names already present in any feed processed earlier in the run are skipped,
// so overlapping supplier catalogs do not produce duplicate rows.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bodegamx/storefront/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
	copyBatchSize = 5_000
)

type feedProduct struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Style       string          `json:"style"`
	Origin      string          `json:"origin"`
	Country     string          `json:"country"`
}

func (p feedProduct) valid() bool {
	return p.Name != "" && p.Style != "" && p.Origin != "" && p.Country != "" && p.Price.IsPositive()
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing catalog-*.jsonl.gz feed files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	feeds, err := filepath.Glob(filepath.Join(dataDir, "catalog-*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob feed files")
	}
	if len(feeds) == 0 {
		return errors.Errorf("no catalog-*.jsonl.gz files in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("parsing supplier feeds", slog.Int("feeds", len(feeds)))

	// Feeds are parsed concurrently; a single collector goroutine dedupes and
	// batches. The bloom filter may rarely flag an unseen name as seen, which
	// drops a product from the load; acceptable for bulk imports, where rerun
	// with a fixed feed is cheap.
	products := make(chan feedProduct, 1024)

	g, gctx := errgroup.WithContext(ctx)

	// Parsers run in their own group so the channel can be closed exactly
	// once, after the last parser exits. The closer and the writer share the
	// outer group: a writer failure cancels gctx and with it pctx, unblocking
	// any parser stuck sending on a full channel.
	parsers, pctx := errgroup.WithContext(gctx)
	for i, feed := range feeds {
		parsers.Go(parseFeed(pctx, i, feed, products))
	}

	g.Go(func() error {
		defer close(products)
		if err := parsers.Wait(); err != nil {
			return errors.Wrap(err, "parse feeds")
		}
		return nil
	})
	g.Go(func() error {
		if err := writeProducts(gctx, pool, products); err != nil {
			return errors.Wrap(err, "write products")
		}
		return nil
	})

	return g.Wait()
}

// parseFeed streams one gzipped JSON lines feed, sending every well-formed
// product to out.
func parseFeed(ctx context.Context, idx int, path string, out chan<- feedProduct) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var total, skipped uint64
		scanner := bufio.NewScanner(gz)
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var p feedProduct
			if err := json.Unmarshal(scanner.Bytes(), &p); err != nil || !p.valid() {
				skipped++
				continue
			}

			total++
			if total%progressEvery == 0 {
				slog.Info("feed progress",
					slog.Int("feed", idx+1),
					slog.Uint64("products", total),
				)
			}

			select {
			case out <- p:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("feed complete",
			slog.Int("feed", idx+1),
			slog.Uint64("products", total),
			slog.Uint64("malformed", skipped),
		)
		return nil
	}
}

// writeProducts dedupes incoming products by name and copies them into the
// products table in batches.
func writeProducts(ctx context.Context, pool *pgxpool.Pool, in <-chan feedProduct) error {
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)

	// Names already in the catalog are also duplicates.
	rows, err := pool.Query(ctx, `SELECT name FROM products`)
	if err != nil {
		return errors.Wrap(err, "load existing product names")
	}
	existing, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return errors.Wrap(err, "collect existing product names")
	}
	for _, name := range existing {
		seen.AddString(name)
	}

	var batch [][]any
	var written, duplicates uint64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := pool.CopyFrom(ctx,
			pgx.Identifier{"products"},
			[]string{"name", "description", "price", "image", "style", "origin", "country"},
			pgx.CopyFromRows(batch),
		)
		if err != nil {
			return errors.Wrap(err, "copy batch")
		}
		written += uint64(n)
		slog.Info("write progress", slog.Uint64("written", written))
		batch = batch[:0]
		return nil
	}

	for p := range in {
		if seen.TestOrAddString(p.Name) {
			duplicates++
			continue
		}

		batch = append(batch, []any{
			p.Name, p.Description, p.Price, p.Image, p.Style, p.Origin, p.Country,
		})
		if len(batch) >= copyBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	slog.Info("write complete",
		slog.Uint64("written", written),
		slog.Uint64("duplicates", duplicates),
	)
	return nil
}
