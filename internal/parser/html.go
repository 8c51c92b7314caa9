package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/cardpress/internal/docsync"
	"github.com/dgallion1/cardpress/internal/doctree"
	"github.com/dgallion1/cardpress/internal/htmlio"
)

// HTMLParser handles HTML files. The body goes through the same
// reconstruction as stored article bodies, so an uploaded page and a saved
// article load identically.
type HTMLParser struct {
	Reconstruct func(ed *doctree.Editor, src string) error
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}

	doc := &Document{Title: baseTitle(filename)}
	dom, err := htmlio.ParseDOM(string(src))
	if err != nil {
		return nil, err
	}
	if title := htmlio.FindTitle(dom); title != "" {
		doc.Title = title
	}

	reconstruct := p.Reconstruct
	if reconstruct == nil {
		reconstruct = docsync.ReconstructFromHTML
	}
	ed := doctree.NewEditor()
	if err := reconstruct(ed, string(src)); err != nil {
		return nil, fmt.Errorf("reconstruct html: %w", err)
	}
	doc.Root = ed.Snapshot()
	return doc, nil
}
