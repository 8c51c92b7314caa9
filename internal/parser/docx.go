package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/cardpress/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Heading, title, quote and list paragraph
// styles map onto document blocks; bold and italic runs keep their format.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "cardpress-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	out := &Document{Title: baseTitle(filename), Root: doctree.NewRoot()}
	titled := false
	var list *doctree.Node

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		runs := docxRuns(para)
		if !hasText(runs) {
			continue
		}

		style := docxStyle(para)
		if docxIsList(style) {
			if list == nil {
				list = doctree.NewList(doctree.ListBullet)
				out.Root.Append(list)
			}
			list.Append(doctree.NewListItem().Append(runs...))
			continue
		}
		list = nil

		var block *doctree.Node
		switch level := docxHeadingLevel(style); {
		case level.Valid():
			block = doctree.NewHeading(level)
		case docxIsQuote(style):
			block = doctree.NewQuote()
		default:
			block = doctree.NewParagraph()
		}
		block.Append(runs...)
		if !titled && block.Level() == doctree.H1 {
			out.Title = strings.TrimSpace(block.TextContent())
			titled = true
		}
		out.Root.Append(block)
	}
	return out, nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
}

// docxHeadingLevel maps Title and Heading1-3 styles; deeper headings read
// as paragraphs.
func docxHeadingLevel(style string) doctree.HeadingLevel {
	switch style {
	case "title", "heading1":
		return doctree.H1
	case "heading2":
		return doctree.H2
	case "heading3":
		return doctree.H3
	}
	return 0
}

func docxIsQuote(style string) bool {
	return style == "quote" || style == "intensequote"
}

func docxIsList(style string) bool {
	return strings.HasPrefix(style, "list")
}

func docxRuns(para *docx.Paragraph) []*doctree.Node {
	var out []*doctree.Node
	for _, child := range para.Children {
		r, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		var f doctree.Format
		if props := r.RunProperties; props != nil {
			if props.Bold != nil {
				f |= doctree.FormatBold
			}
			if props.Italic != nil {
				f |= doctree.FormatItalic
			}
		}
		for _, rc := range r.Children {
			if t, ok := rc.(*docx.Text); ok && t.Text != "" {
				out = append(out, run(t.Text, f))
			}
		}
	}
	return doctree.MergeText(out)
}

func hasText(runs []*doctree.Node) bool {
	for _, r := range runs {
		if strings.TrimSpace(r.Text) != "" {
			return true
		}
	}
	return false
}
