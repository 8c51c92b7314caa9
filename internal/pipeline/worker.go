package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/cardpress/internal/articles"
	"github.com/dgallion1/cardpress/internal/doctree"
	"github.com/dgallion1/cardpress/internal/excerpt"
	"github.com/dgallion1/cardpress/internal/parser"
)

// Importer stores a parsed document as an article body.
type Importer interface {
	Import(ctx context.Context, slug, title string, root *doctree.Node) (*articles.Article, error)
}

// Worker processes a single import job.
type Worker struct {
	importer  Importer
	parseOpts parser.Options
	log       *slog.Logger
}

func NewWorker(importer Importer, parseOpts parser.Options, log *slog.Logger) *Worker {
	return &Worker{
		importer:  importer,
		parseOpts: parseOpts,
		log:       log,
	}
}

// Process parses the upload, checks the resulting tree and hands it to the
// importer.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename, "slug", job.Slug)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parseOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetTitle(doc.Title)

	// Phase 2: Check the tree renders.
	job.SetStatus(StatusRendering, "rendering")
	stats := excerpt.Measure(doc.Root)
	job.SetShape(stats.Blocks, stats.Headings, stats.Words)
	log.Info("parsed document", "blocks", stats.Blocks, "headings", stats.Headings, "words", stats.Words)

	if stats.Blocks == 0 {
		log.Warn("no blocks produced")
		job.AddError("no importable content")
		job.SetStatus(StatusFailed, "rendering")
		return
	}
	if err := doctree.Validate(doc.Root); err != nil {
		log.Error("invalid tree", "error", err)
		job.AddError(fmt.Sprintf("render: %s", err))
		job.SetStatus(StatusFailed, "rendering")
		return
	}

	// Phase 3: Save
	job.SetStatus(StatusSaving, "saving")
	snap := job.Snapshot()
	a, err := w.importer.Import(ctx, job.Slug, snap.Title, doc.Root)
	if err != nil {
		log.Error("save failed", "error", err)
		job.AddError(fmt.Sprintf("save: %s", err))
		job.SetStatus(StatusFailed, "saving")
		return
	}
	job.SetArticle(a.Slug)
	job.SetFileData(nil)

	log.Info("import complete", "article", a.Slug)
	job.SetStatus(StatusCompleted, "done")
}
