package doctree

import "fmt"

// Validate checks that root is a well-formed document: blocks under the
// root, list items under lists, inline nodes under text containers, text
// under links and nothing under text.
func Validate(root *Node) error {
	if root == nil {
		return fmt.Errorf("root: missing")
	}
	if root.Type != KindRoot {
		return fmt.Errorf("root: expected type %q, got %q", KindRoot, root.Type)
	}
	for i, c := range root.Children {
		path := fmt.Sprintf("root.children[%d]", i)
		if c == nil {
			return fmt.Errorf("%s: nil node", path)
		}
		if !c.IsBlock() {
			return fmt.Errorf("%s: %q is not allowed at the top level", path, c.Type)
		}
		if err := validateNode(c, path); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(n *Node, path string) error {
	switch n.Type {
	case KindHeading:
		if !n.Level().Valid() {
			return fmt.Errorf("%s: unsupported heading tag %q", path, n.Tag)
		}
		return validateChildren(n, path, inlineOnly)
	case KindParagraph, KindQuote:
		return validateChildren(n, path, inlineOnly)
	case KindList:
		if n.ListType != ListBullet && n.ListType != ListOrdered {
			return fmt.Errorf("%s: unsupported list type %q", path, n.ListType)
		}
		return validateChildren(n, path, func(c *Node) bool { return c.Type == KindListItem })
	case KindListItem:
		return validateChildren(n, path, func(c *Node) bool { return c.IsInline() || c.Type == KindList })
	case KindLink:
		if n.URL == "" {
			return fmt.Errorf("%s: link without url", path)
		}
		return validateChildren(n, path, func(c *Node) bool { return c.Type == KindText })
	case KindText:
		if len(n.Children) > 0 {
			return fmt.Errorf("%s: text node cannot have children", path)
		}
		return nil
	default:
		return fmt.Errorf("%s: unknown node type %q", path, n.Type)
	}
}

func inlineOnly(c *Node) bool {
	return c.IsInline()
}

func validateChildren(n *Node, path string, allowed func(*Node) bool) error {
	for i, c := range n.Children {
		cpath := fmt.Sprintf("%s.children[%d]", path, i)
		if c == nil {
			return fmt.Errorf("%s: nil node", cpath)
		}
		if !allowed(c) {
			return fmt.Errorf("%s: %q is not allowed inside %q", cpath, c.Type, n.Type)
		}
		if err := validateNode(c, cpath); err != nil {
			return err
		}
	}
	return nil
}
