package docsync

import (
	"sync"

	"github.com/dgallion1/cardpress/internal/doctree"
)

// Session ties one editor to the article body loaded into it.
// Reconstruction waits until both an editor is mounted and a body is loaded,
// and runs again each time a body with a different ref arrives.
type Session struct {
	syncer *Syncer

	mu      sync.Mutex
	ed      *doctree.Editor
	ref     string
	body    string
	loaded  bool
	applied string
}

// NewSession returns a session with no editor and no body.
func (s *Syncer) NewSession() *Session {
	return &Session{syncer: s}
}

// Mount attaches ed. Empty documents are seeded first when seeding is on;
// a body that is already loaded then replaces the seed.
func (se *Session) Mount(ed *doctree.Editor) error {
	if ed == nil {
		return ErrNotReady
	}
	se.mu.Lock()
	defer se.mu.Unlock()

	se.ed = ed
	se.applied = ""
	if se.syncer.opts.SeedNew {
		if _, err := se.syncer.Seed(ed); err != nil {
			return err
		}
	}
	return se.sync()
}

// Load records the article body identified by ref. ref should change
// whenever the body does, e.g. slug plus update time.
func (se *Session) Load(ref, body string) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	se.ref, se.body, se.loaded = ref, body, true
	return se.sync()
}

// Editor returns the mounted editor, or nil.
func (se *Session) Editor() *doctree.Editor {
	se.mu.Lock()
	defer se.mu.Unlock()
	return se.ed
}

// Ready reports whether an editor is mounted and a body has been loaded.
func (se *Session) Ready() bool {
	se.mu.Lock()
	defer se.mu.Unlock()
	return se.ed != nil && se.loaded
}

func (se *Session) sync() error {
	if se.ed == nil || !se.loaded || se.body == "" {
		return nil
	}
	if se.applied == se.ref && se.applied != "" {
		return nil
	}
	if err := se.syncer.Reconstruct(se.ed, se.body); err != nil {
		return err
	}
	se.applied = se.ref
	return nil
}
