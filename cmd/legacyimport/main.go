// Command legacyimport copies authors, icons and articles from the legacy
// backend into the local cardpress database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgallion1/cardpress/internal/articles"
	"github.com/dgallion1/cardpress/internal/docsync"
	"github.com/dgallion1/cardpress/internal/doctree"
	"github.com/dgallion1/cardpress/internal/htmlio"
	"github.com/dgallion1/cardpress/internal/storage"
	"github.com/dgallion1/cardpress/internal/upstream"
)

type options struct {
	upstreamURL   string
	apiKey        string
	dbPath        string
	timeout       time.Duration
	normalize     bool
	preserveOrder bool
}

// summary counts what one run wrote.
type summary struct {
	Authors, Icons, Created, Updated, Skipped int
}

func main() {
	var opts options
	flag.StringVar(&opts.upstreamURL, "upstream", os.Getenv("UPSTREAM_URL"), "legacy backend base URL")
	flag.StringVar(&opts.apiKey, "api-key", os.Getenv("UPSTREAM_API_KEY"), "legacy backend bearer token")
	flag.StringVar(&opts.dbPath, "db", "data/cardpress.db", "SQLite database path")
	flag.DurationVar(&opts.timeout, "timeout", 15*time.Second, "per-request timeout")
	flag.BoolVar(&opts.normalize, "normalize", false, "rebuild every body through the document tree before storing")
	flag.BoolVar(&opts.preserveOrder, "preserve-order", false, "keep headings in place when normalizing")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if opts.upstreamURL == "" {
		fmt.Fprintln(os.Stderr, "usage: legacyimport -upstream URL [-db PATH] [-normalize]")
		os.Exit(2)
	}

	sum, err := run(context.Background(), opts, log)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	log.Info("import finished",
		"authors", sum.Authors,
		"icons", sum.Icons,
		"created", sum.Created,
		"updated", sum.Updated,
		"skipped", sum.Skipped,
	)
}

func run(ctx context.Context, opts options, log *slog.Logger) (summary, error) {
	var sum summary

	db, err := storage.Open(opts.dbPath)
	if err != nil {
		return sum, err
	}
	defer db.Close()

	client := upstream.NewClient(opts.upstreamURL, opts.apiKey, opts.timeout, log)
	defer client.Close()

	syncer := docsync.New(log, docsync.Options{PreserveOrder: opts.preserveOrder})

	authors, err := client.ListAuthors(ctx)
	if err != nil {
		return sum, err
	}
	for i := range authors {
		if err := db.SaveAuthor(ctx, &authors[i]); err != nil {
			return sum, err
		}
		sum.Authors++
	}

	icons, err := client.ListIcons(ctx)
	if err != nil {
		return sum, err
	}
	for i := range icons {
		if err := db.SaveIcon(ctx, &icons[i]); err != nil {
			return sum, err
		}
		sum.Icons++
	}

	list, err := client.ListArticles(ctx)
	if err != nil {
		return sum, err
	}
	now := time.Now().UTC()
	for i := range list {
		a := &list[i]
		log := log.With("slug", a.Slug)

		if a.Slug == "" {
			a.Slug = articles.Slugify(a.Title)
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = a.CreatedAt
		}
		if opts.normalize {
			body, err := normalize(syncer, a.Content)
			if err != nil {
				log.Warn("normalize failed, keeping original body", "error", err)
			} else {
				a.Content = body
			}
		}
		if err := articles.Validate(a); err != nil {
			log.Warn("skipping invalid article", "error", err)
			sum.Skipped++
			continue
		}

		_, err := db.GetArticle(ctx, a.Slug)
		switch {
		case errors.Is(err, articles.ErrNotFound):
			if err := db.CreateArticle(ctx, a); err != nil {
				return sum, err
			}
			sum.Created++
		case err != nil:
			return sum, err
		default:
			if err := db.UpdateArticle(ctx, a.Slug, a); err != nil {
				return sum, err
			}
			sum.Updated++
		}
		log.Debug("article imported")
	}
	return sum, nil
}

// normalize rebuilds body the way the editor would load and save it.
func normalize(syncer *docsync.Syncer, body string) (string, error) {
	ed := doctree.NewEditor()
	if err := syncer.Reconstruct(ed, htmlio.Sanitize(body)); err != nil {
		return "", err
	}
	return syncer.Export(ed)
}
