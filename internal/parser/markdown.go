package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/dgallion1/cardpress/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. A front matter
// title wins over the first h1.
type MarkdownParser struct{}

type markdownMeta struct {
	Title string `yaml:"title" toml:"title" json:"title"`
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var meta markdownMeta
	if bytes.HasPrefix(src, []byte("---")) || bytes.HasPrefix(src, []byte("+++")) {
		src, err = frontmatter.Parse(bytes.NewReader(src), &meta)
		if err != nil {
			return nil, fmt.Errorf("front matter: %w", err)
		}
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	out := &Document{Title: baseTitle(filename), Root: doctree.NewRoot()}
	titled := false
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		block := mdBlock(n, src)
		if block == nil {
			continue
		}
		if !titled && block.Level() == doctree.H1 {
			if t := strings.TrimSpace(block.TextContent()); t != "" {
				out.Title = t
				titled = true
			}
		}
		out.Root.Append(block)
	}
	if t := strings.TrimSpace(meta.Title); t != "" {
		out.Title = t
	}
	return out, nil
}

// mdBlock converts one top-level goldmark block. Headings deeper than h3
// become paragraphs.
func mdBlock(n ast.Node, src []byte) *doctree.Node {
	switch node := n.(type) {
	case *ast.Heading:
		var block *doctree.Node
		if level := doctree.HeadingLevel(node.Level); level.Valid() {
			block = doctree.NewHeading(level)
		} else {
			block = doctree.NewParagraph()
		}
		return block.Append(mdInlines(node, src, 0)...)
	case *ast.Paragraph, *ast.TextBlock:
		return doctree.NewParagraph().Append(mdInlines(node, src, 0)...)
	case *ast.Blockquote:
		return doctree.NewQuote().Append(mdFlatten(node, src)...)
	case *ast.List:
		return mdList(node, src)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		code := strings.TrimRight(blockLines(n, src), "\n")
		if code == "" {
			return nil
		}
		return doctree.NewParagraph().Append(doctree.NewText(code).ToggleFormat(doctree.FormatCode))
	}
	return nil
}

func mdList(list *ast.List, src []byte) *doctree.Node {
	style := doctree.ListBullet
	if list.IsOrdered() {
		style = doctree.ListOrdered
	}
	out := doctree.NewList(style)
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		item := doctree.NewListItem()
		var runs []*doctree.Node
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			if nested, ok := c.(*ast.List); ok {
				item.Append(doctree.MergeText(runs)...)
				runs = nil
				item.Append(mdList(nested, src))
				continue
			}
			if len(runs) > 0 {
				runs = append(runs, doctree.NewText("\n"))
			}
			runs = append(runs, mdInlines(c, src, 0)...)
		}
		item.Append(doctree.MergeText(runs)...)
		out.Append(item)
	}
	return out
}

// mdFlatten collects the inline content of every block below n, one line
// per block.
func mdFlatten(n ast.Node, src []byte) []*doctree.Node {
	var out []*doctree.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		var runs []*doctree.Node
		switch c.(type) {
		case *ast.Paragraph, *ast.TextBlock, *ast.Heading:
			runs = mdInlines(c, src, 0)
		default:
			runs = mdFlatten(c, src)
		}
		if len(runs) == 0 {
			continue
		}
		if len(out) > 0 {
			out = append(out, doctree.NewText("\n"))
		}
		out = append(out, runs...)
	}
	return doctree.MergeText(out)
}

func mdInlines(n ast.Node, src []byte, f doctree.Format) []*doctree.Node {
	var out []*doctree.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, mdInline(c, src, f)...)
	}
	return doctree.MergeText(out)
}

func mdInline(n ast.Node, src []byte, f doctree.Format) []*doctree.Node {
	switch node := n.(type) {
	case *ast.Text:
		s := string(node.Segment.Value(src))
		switch {
		case node.HardLineBreak():
			s += "\n"
		case node.SoftLineBreak():
			s += " "
		}
		return []*doctree.Node{run(s, f)}
	case *ast.String:
		return []*doctree.Node{run(string(node.Value), f)}
	case *ast.CodeSpan:
		return mdInlines(node, src, f|doctree.FormatCode)
	case *ast.Emphasis:
		if node.Level >= 2 {
			return mdInlines(node, src, f|doctree.FormatBold)
		}
		return mdInlines(node, src, f|doctree.FormatItalic)
	case *ast.Link:
		link := doctree.NewLink(string(node.Destination))
		return []*doctree.Node{link.Append(mdInlines(node, src, f)...)}
	case *ast.AutoLink:
		link := doctree.NewLink(string(node.URL(src)))
		return []*doctree.Node{link.Append(run(string(node.Label(src)), f))}
	case *ast.Image, *ast.RawHTML:
		return nil
	}
	return mdInlines(n, src, f)
}

func run(s string, f doctree.Format) *doctree.Node {
	t := doctree.NewText(s)
	t.Format = f
	return t
}

func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return buf.String()
}
