package htmlio

import (
	"fmt"
	"strings"

	"github.com/dgallion1/cardpress/internal/doctree"
	"golang.org/x/net/html"
)

// SourceText marks a candidate built from bare inline content at body level.
const SourceText = "#text"

// ParseDOM parses an HTML string into a DOM document.
func ParseDOM(src string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// NodesFromDOM converts the body of a DOM document into a flat, ordered list
// of document nodes, one per top-level block. Each node records the tag it
// came from in SourceTag. Runs of inline content sitting directly in the
// body are gathered into one paragraph tagged SourceText.
func NodesFromDOM(doc *html.Node) []*doctree.Node {
	if doc == nil {
		return nil
	}
	body := findBody(doc)
	if body == nil {
		body = doc
	}
	c := &collector{}
	c.blocks(body)
	c.flushInline()
	return c.out
}

type collector struct {
	out    []*doctree.Node
	inline []*doctree.Node
}

func (c *collector) blocks(parent *html.Node) {
	for n := parent.FirstChild; n != nil; n = n.NextSibling {
		switch n.Type {
		case html.TextNode:
			if strings.TrimSpace(n.Data) == "" && len(c.inline) == 0 {
				continue
			}
			c.inline = appendInline(c.inline, n, 0)
		case html.ElementNode:
			c.element(n)
		}
	}
}

func (c *collector) element(n *html.Node) {
	tag := n.Data
	switch {
	case skipTag(tag):
		return
	case tag == "hr":
		c.flushInline()
		return
	case isContainerTag(tag):
		c.flushInline()
		c.blocks(n)
		return
	case !isBlockTag(tag):
		c.inline = appendInline(c.inline, n, 0)
		return
	}

	c.flushInline()
	var node *doctree.Node
	switch tag {
	case "h1", "h2", "h3":
		node = doctree.NewHeading(doctree.LevelFromTag(tag))
		node.Append(inlineChildren(n, 0)...)
	case "blockquote":
		node = doctree.NewQuote()
		node.Append(inlineChildren(n, 0)...)
	case "ul", "ol":
		node = listNode(n)
	case "pre":
		node = doctree.NewParagraph()
		if text := textContent(n); text != "" {
			node.Append(doctree.NewText(text).ToggleFormat(doctree.FormatCode))
		}
	default:
		node = doctree.NewParagraph()
		node.Append(inlineChildren(n, 0)...)
	}
	node.SourceTag = strings.ToUpper(tag)
	c.out = append(c.out, node)
}

func (c *collector) flushInline() {
	runs := doctree.MergeText(c.inline)
	c.inline = nil
	if !hasVisibleText(runs) {
		return
	}
	p := doctree.NewParagraph().Append(runs...)
	p.SourceTag = SourceText
	c.out = append(c.out, p)
}

func listNode(el *html.Node) *doctree.Node {
	style := doctree.ListBullet
	if el.Data == "ol" {
		style = doctree.ListOrdered
	}
	list := doctree.NewList(style)
	for li := el.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		item := doctree.NewListItem()
		var buf []*doctree.Node
		for ch := li.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type == html.ElementNode && (ch.Data == "ul" || ch.Data == "ol") {
				item.Append(doctree.MergeText(buf)...)
				buf = nil
				item.Append(listNode(ch))
				continue
			}
			buf = appendInline(buf, ch, 0)
		}
		item.Append(doctree.MergeText(buf)...)
		list.Append(item)
	}
	return list
}

func inlineChildren(n *html.Node, f doctree.Format) []*doctree.Node {
	var out []*doctree.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = appendInline(out, c, f)
	}
	return doctree.MergeText(out)
}

// appendInline converts n and its subtree to inline runs. Block elements met
// in inline context are flattened, separated from earlier content by a
// newline run.
func appendInline(out []*doctree.Node, n *html.Node, f doctree.Format) []*doctree.Node {
	switch n.Type {
	case html.TextNode:
		if n.Data == "" {
			return out
		}
		return append(out, textRun(n.Data, f))
	case html.ElementNode:
	default:
		return out
	}

	switch n.Data {
	case "br":
		return append(out, textRun("\n", f))
	case "strong", "b":
		f |= doctree.FormatBold
	case "em", "i":
		f |= doctree.FormatItalic
	case "code", "kbd", "samp":
		f |= doctree.FormatCode
	case "a":
		if href := attr(n, "href"); href != "" {
			link := doctree.NewLink(href)
			link.SourceTag = "A"
			var inner []*doctree.Node
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				inner = appendInline(inner, c, f)
			}
			link.Append(doctree.MergeText(textsOnly(inner))...)
			return append(out, link)
		}
	default:
		if skipTag(n.Data) {
			return out
		}
		if (isBlockTag(n.Data) || isContainerTag(n.Data)) && len(out) > 0 && !endsWithNewline(out) {
			out = append(out, textRun("\n", 0))
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = appendInline(out, c, f)
	}
	return out
}

func textRun(s string, f doctree.Format) *doctree.Node {
	t := doctree.NewText(s)
	t.Format = f
	return t
}

// textsOnly unwraps nested links; a link may only hold text.
func textsOnly(nodes []*doctree.Node) []*doctree.Node {
	var out []*doctree.Node
	for _, n := range nodes {
		if n.Type == doctree.KindLink {
			out = append(out, n.Children...)
			continue
		}
		out = append(out, n)
	}
	return out
}

func endsWithNewline(nodes []*doctree.Node) bool {
	last := nodes[len(nodes)-1]
	return last.Type == doctree.KindText && strings.HasSuffix(last.Text, "\n")
}

func hasVisibleText(nodes []*doctree.Node) bool {
	for _, n := range nodes {
		if n.Type == doctree.KindLink || strings.TrimSpace(n.Text) != "" {
			return true
		}
	}
	return false
}

func skipTag(tag string) bool {
	switch tag {
	case "script", "style", "template", "head", "title", "meta", "link", "noscript", "nav":
		return true
	}
	return false
}

func isContainerTag(tag string) bool {
	switch tag {
	case "div", "section", "article", "main", "header", "footer", "aside", "figure":
		return true
	}
	return false
}

func isBlockTag(tag string) bool {
	switch tag {
	case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "ul", "ol", "li",
		"pre", "table", "tr", "dl", "dt", "dd", "figcaption", "address":
		return true
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

// FindTitle returns the text of the document's <title> element, if any.
func FindTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return strings.TrimSpace(textContent(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := FindTitle(c); t != "" {
			return t
		}
	}
	return ""
}
