package htmlio

import (
	"bytes"
	"strings"

	"github.com/dgallion1/cardpress/internal/doctree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Render serializes the children of root to an HTML fragment. Text formats
// nest as <strong><em><code>, newlines inside text become <br>.
func Render(root *doctree.Node) string {
	if root == nil {
		return ""
	}
	var buf bytes.Buffer
	for _, child := range root.Children {
		for _, n := range toHTML(child) {
			// Writes to a bytes.Buffer cannot fail and no void element
			// is ever given children.
			_ = html.Render(&buf, n)
		}
	}
	return buf.String()
}

func toHTML(n *doctree.Node) []*html.Node {
	switch n.Type {
	case doctree.KindText:
		return textToHTML(n)
	case doctree.KindRoot:
		var out []*html.Node
		for _, c := range n.Children {
			out = append(out, toHTML(c)...)
		}
		return out
	}

	var el *html.Node
	switch n.Type {
	case doctree.KindHeading:
		if lvl := n.Level(); lvl.Valid() {
			el = element(lvl.Tag())
		} else {
			el = element("p")
		}
	case doctree.KindParagraph:
		el = element("p")
	case doctree.KindQuote:
		el = element("blockquote")
	case doctree.KindList:
		if n.ListType == doctree.ListOrdered {
			el = element("ol")
		} else {
			el = element("ul")
		}
	case doctree.KindListItem:
		el = element("li")
	case doctree.KindLink:
		el = element("a")
		el.Attr = []html.Attribute{{Key: "href", Val: n.URL}}
	default:
		return nil
	}
	for _, c := range n.Children {
		for _, h := range toHTML(c) {
			el.AppendChild(h)
		}
	}
	return []*html.Node{el}
}

func textToHTML(n *doctree.Node) []*html.Node {
	var inner []*html.Node
	for i, part := range strings.Split(n.Text, "\n") {
		if i > 0 {
			inner = append(inner, element("br"))
		}
		if part != "" {
			inner = append(inner, &html.Node{Type: html.TextNode, Data: part})
		}
	}
	for _, w := range []struct {
		flag doctree.Format
		tag  string
	}{
		{doctree.FormatCode, "code"},
		{doctree.FormatItalic, "em"},
		{doctree.FormatBold, "strong"},
	} {
		if !n.HasFormat(w.flag) || len(inner) == 0 {
			continue
		}
		el := element(w.tag)
		for _, c := range inner {
			el.AppendChild(c)
		}
		inner = []*html.Node{el}
	}
	return inner
}

func element(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}
