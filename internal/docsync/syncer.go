// Package docsync converts between persisted article HTML and the editor's
// document tree. It seeds new documents with default content, rebuilds
// trees from saved HTML and exports trees back to HTML.
package docsync

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/dgallion1/cardpress/internal/doctree"
	"github.com/dgallion1/cardpress/internal/htmlio"
)

// ErrNotReady is returned when an operation is given no editor.
var ErrNotReady = errors.New("docsync: editor not ready")

// Options controls the sync policy.
type Options struct {
	// PreserveOrder emits headings in place instead of after all other
	// content. Off by default: stored articles were saved with headings
	// relocated and re-saving must not reorder them.
	PreserveOrder bool
	// SeedNew fills empty documents with the welcome content on mount.
	SeedNew bool
}

// Syncer applies one sync policy to any number of editors.
type Syncer struct {
	log  *slog.Logger
	opts Options
	once sync.Once
}

// New returns a Syncer. A nil logger discards output.
func New(log *slog.Logger, opts Options) *Syncer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Syncer{log: log, opts: opts}
}

// Options returns the policy this syncer was built with.
func (s *Syncer) Options() Options {
	return s.opts
}

// Initialize logs the active policy. Only the first call has an effect.
func (s *Syncer) Initialize() {
	s.once.Do(func() {
		attrs := []any{
			"preserve_heading_order", s.opts.PreserveOrder,
			"seed_new_documents", s.opts.SeedNew,
		}
		if s.opts.SeedNew {
			s.log.Warn("new documents are seeded with placeholder content; replace it before publishing", attrs...)
			return
		}
		s.log.Info("document sync initialized", attrs...)
	})
}

// Seed fills an empty document with the default content. It reports whether
// anything was added; a document with content is left alone.
func (s *Syncer) Seed(ed *doctree.Editor) (bool, error) {
	if ed == nil {
		return false, ErrNotReady
	}
	var seeded bool
	ed.Update(func(root *doctree.Node) {
		seeded = seed(root)
	})
	if seeded {
		s.log.Debug("seeded default content")
	}
	return seeded, nil
}

// Reconstruct replaces the document's content with the tree rebuilt from
// src. Empty or unparseable input leaves the document empty.
func (s *Syncer) Reconstruct(ed *doctree.Editor, src string) error {
	if ed == nil {
		return ErrNotReady
	}
	var candidates []*doctree.Node
	if dom, err := htmlio.ParseDOM(src); err != nil {
		s.log.Warn("unparseable document body, clearing", "error", err)
	} else {
		candidates = htmlio.NodesFromDOM(dom)
	}

	var headings int
	ed.Update(func(root *doctree.Node) {
		headings = rebuild(root, candidates, s.opts.PreserveOrder)
	})
	s.log.Debug("document reconstructed",
		"blocks", len(candidates),
		"headings", headings,
		"preserve_order", s.opts.PreserveOrder,
	)
	return nil
}

// Export renders the document to HTML from a consistent snapshot.
func (s *Syncer) Export(ed *doctree.Editor) (string, error) {
	if ed == nil {
		return "", ErrNotReady
	}
	var out string
	ed.Read(func(root *doctree.Node) {
		out = htmlio.Render(root)
	})
	return out, nil
}

var defaultSyncer = New(nil, Options{})

// SeedDefaultContent seeds ed when its root has no children.
func SeedDefaultContent(ed *doctree.Editor) error {
	_, err := defaultSyncer.Seed(ed)
	return err
}

// ReconstructFromHTML rebuilds ed from src with headings relocated after
// all other content.
func ReconstructFromHTML(ed *doctree.Editor, src string) error {
	return defaultSyncer.Reconstruct(ed, src)
}

// ExportToHTML renders ed to HTML. A nil editor yields "".
func ExportToHTML(ed *doctree.Editor) string {
	out, _ := defaultSyncer.Export(ed)
	return out
}

type headingEntry struct {
	node  *doctree.Node
	level doctree.HeadingLevel
}

// headingLevels remembers deferred heading candidates in the order they
// were first seen.
type headingLevels []headingEntry

func (h *headingLevels) set(n *doctree.Node, level doctree.HeadingLevel) {
	for i := range *h {
		if (*h)[i].node == n {
			(*h)[i].level = level
			return
		}
	}
	*h = append(*h, headingEntry{node: n, level: level})
}

// rebuild clears root and refills it from candidates. Candidates that came
// from h1-h3 become headings; everything else is wrapped in a paragraph.
// Unless preserveOrder is set, headings are appended after everything else
// in the order they were encountered. It returns the number of headings.
func rebuild(root *doctree.Node, candidates []*doctree.Node, preserveOrder bool) int {
	root.Clear()

	var deferred headingLevels
	count := 0
	for _, c := range candidates {
		level := doctree.LevelFromTag(c.SourceTag)
		if !level.Valid() {
			root.Append(wrap(doctree.NewParagraph(), c))
			continue
		}
		count++
		if preserveOrder {
			root.Append(wrap(doctree.NewHeading(level), c))
			continue
		}
		deferred.set(c, level)
	}
	for _, h := range deferred {
		root.Append(wrap(doctree.NewHeading(h.level), h.node))
	}
	return count
}

func wrap(block, candidate *doctree.Node) *doctree.Node {
	block.SourceTag = candidate.SourceTag
	return block.Append(inlineContent(candidate)...)
}

// inlineContent returns the inline nodes a candidate contributes to the block
// wrapping it. List items are separated by newline runs.
func inlineContent(n *doctree.Node) []*doctree.Node {
	switch n.Type {
	case doctree.KindText, doctree.KindLink:
		return []*doctree.Node{n}
	case doctree.KindList, doctree.KindListItem:
		var out []*doctree.Node
		for _, c := range n.Children {
			parts := inlineContent(c)
			if len(parts) == 0 {
				continue
			}
			if len(out) > 0 && !c.IsInline() {
				out = append(out, doctree.NewText("\n"))
			}
			out = append(out, parts...)
		}
		return out
	}
	var out []*doctree.Node
	for _, c := range n.Children {
		if c.IsInline() {
			out = append(out, c)
			continue
		}
		out = append(out, inlineContent(c)...)
	}
	return out
}
