package doctree

import (
	"fmt"
	"strings"
)

// Kind identifies the type of a document node.
type Kind string

const (
	KindRoot      Kind = "root"
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindQuote     Kind = "quote"
	KindList      Kind = "list"
	KindListItem  Kind = "listitem"
	KindLink      Kind = "link"
	KindText      Kind = "text"
)

// HeadingLevel is the level of a heading node. Only 1-3 exist.
type HeadingLevel int

const (
	H1 HeadingLevel = 1
	H2 HeadingLevel = 2
	H3 HeadingLevel = 3
)

// Valid reports whether l is one of H1, H2 or H3.
func (l HeadingLevel) Valid() bool {
	return l >= H1 && l <= H3
}

// Tag returns the HTML tag for the level ("h1".."h3").
func (l HeadingLevel) Tag() string {
	return fmt.Sprintf("h%d", int(l))
}

// LevelFromTag maps "h1".."h3" (any case) to a level. Other tags return 0.
func LevelFromTag(tag string) HeadingLevel {
	switch strings.ToLower(tag) {
	case "h1":
		return H1
	case "h2":
		return H2
	case "h3":
		return H3
	}
	return 0
}

// ListStyle is the marker style of a list.
type ListStyle string

const (
	ListBullet  ListStyle = "bullet"
	ListOrdered ListStyle = "number"
)

// Format is a bitmask of inline text formats. The bit values match the
// editor's serialized state so trees can be exchanged as JSON unchanged.
type Format int

const (
	FormatBold   Format = 1
	FormatItalic Format = 1 << 1
	FormatCode   Format = 1 << 4
)

// Has reports whether every bit in f2 is set.
func (f Format) Has(f2 Format) bool {
	return f&f2 == f2
}

// Node is a single node of a document tree.
type Node struct {
	Type     Kind      `json:"type"`
	Tag      string    `json:"tag,omitempty"`      // headings: h1..h3
	ListType ListStyle `json:"listType,omitempty"` // lists
	URL      string    `json:"url,omitempty"`      // links
	Text     string    `json:"text,omitempty"`     // text runs
	Format   Format    `json:"format,omitempty"`   // text runs
	Children []*Node   `json:"children,omitempty"`

	// SourceTag is the upper-case name of the DOM element a node was
	// imported from ("H1", "P", "#text"). Empty for nodes built in code.
	SourceTag string `json:"-"`
}

// NewRoot returns an empty root node.
func NewRoot() *Node {
	return &Node{Type: KindRoot}
}

// NewHeading returns a heading of the given level.
func NewHeading(level HeadingLevel) *Node {
	return &Node{Type: KindHeading, Tag: level.Tag()}
}

// NewParagraph returns an empty paragraph.
func NewParagraph() *Node {
	return &Node{Type: KindParagraph}
}

// NewQuote returns an empty block quote.
func NewQuote() *Node {
	return &Node{Type: KindQuote}
}

// NewList returns an empty list of the given style.
func NewList(style ListStyle) *Node {
	return &Node{Type: KindList, ListType: style}
}

// NewListItem returns an empty list item.
func NewListItem() *Node {
	return &Node{Type: KindListItem}
}

// NewLink returns a link to url with no text yet.
func NewLink(url string) *Node {
	return &Node{Type: KindLink, URL: url}
}

// NewText returns an unformatted text run.
func NewText(content string) *Node {
	return &Node{Type: KindText, Text: content}
}

// Append adds children at the end and returns n for chaining.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// Clear removes all children.
func (n *Node) Clear() {
	n.Children = nil
}

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// Len returns the number of direct children.
func (n *Node) Len() int {
	return len(n.Children)
}

// ToggleFormat flips a format flag on a text node and returns n.
func (n *Node) ToggleFormat(f Format) *Node {
	n.Format ^= f
	return n
}

// HasFormat reports whether the text node carries f.
func (n *Node) HasFormat(f Format) bool {
	return n.Format.Has(f)
}

// Level returns the heading level, or 0 for non-headings.
func (n *Node) Level() HeadingLevel {
	if n.Type != KindHeading {
		return 0
	}
	return LevelFromTag(n.Tag)
}

// IsInline reports whether n may appear inside a paragraph.
func (n *Node) IsInline() bool {
	return n.Type == KindText || n.Type == KindLink
}

// IsBlock reports whether n may appear directly under the root.
func (n *Node) IsBlock() bool {
	switch n.Type {
	case KindHeading, KindParagraph, KindQuote, KindList:
		return true
	}
	return false
}

// TextContent concatenates all text below n. List items and top-level
// blocks are separated by a newline.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *Node) writeText(sb *strings.Builder) {
	if n.Type == KindText {
		sb.WriteString(n.Text)
		return
	}
	for i, c := range n.Children {
		if i > 0 && (c.IsBlock() || c.Type == KindListItem) {
			sb.WriteByte('\n')
		}
		c.writeText(sb)
	}
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := *n
	cp.Children = nil
	if len(n.Children) > 0 {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return &cp
}

// Walk visits n and its descendants depth-first, parents first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// MergeText joins adjacent text nodes that share a format. The first node
// of each run is modified in place.
func MergeText(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if len(out) > 0 {
			prev := out[len(out)-1]
			if prev.Type == KindText && n.Type == KindText && prev.Format == n.Format {
				prev.Text += n.Text
				continue
			}
		}
		out = append(out, n)
	}
	return out
}
