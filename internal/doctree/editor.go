package doctree

import (
	"fmt"
	"sync"
)

// Editor owns one document root. All mutations go through Update so that at
// most one transaction touches the tree at a time.
type Editor struct {
	mu   sync.Mutex
	root *Node
}

// NewEditor returns an editor holding an empty root.
func NewEditor() *Editor {
	return &Editor{root: NewRoot()}
}

// NewEditorFromRoot validates root and wraps it in an editor. The editor
// takes ownership of root.
func NewEditorFromRoot(root *Node) (*Editor, error) {
	if err := Validate(root); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return &Editor{root: root}, nil
}

// Update runs fn with exclusive access to the root.
func (e *Editor) Update(fn func(root *Node)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.root)
}

// Read runs fn against the root. fn must not mutate the tree.
func (e *Editor) Read(fn func(root *Node)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.root)
}

// Snapshot returns a deep copy of the current root.
func (e *Editor) Snapshot() *Node {
	var cp *Node
	e.Read(func(root *Node) {
		cp = root.Clone()
	})
	return cp
}
