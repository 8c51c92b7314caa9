package articles

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/cardpress/internal/docsync"
	"github.com/dgallion1/cardpress/internal/doctree"
	"github.com/dgallion1/cardpress/internal/excerpt"
	"github.com/dgallion1/cardpress/internal/htmlio"
	"github.com/google/uuid"
)

// Store persists articles, authors and icons.
type Store interface {
	ListArticles(ctx context.Context) ([]Article, error)
	GetArticle(ctx context.Context, slug string) (*Article, error)
	CreateArticle(ctx context.Context, a *Article) error
	// UpdateArticle replaces the article stored under slug. a.Slug may differ
	// from slug when the article is renamed.
	UpdateArticle(ctx context.Context, slug string, a *Article) error
	DeleteArticle(ctx context.Context, slug string) error
	ListAuthors(ctx context.Context) ([]Author, error)
	SaveAuthor(ctx context.Context, a *Author) error
	ListIcons(ctx context.Context) ([]Icon, error)
	SaveIcon(ctx context.Context, i *Icon) error
}

// Publisher pushes saved articles to the public site backend.
type Publisher interface {
	UpdateArticle(ctx context.Context, slug string, a *Article) error
}

// Options tune the service.
type Options struct {
	MinifyHTML    bool
	ExcerptTokens int
}

// DocumentView is an article body as an editable tree.
type DocumentView struct {
	Slug  string        `json:"slug"`
	Root  *doctree.Node `json:"root"`
	Stats excerpt.Stats `json:"stats"`
}

// Service implements the article operations on top of a Store.
type Service struct {
	store  Store
	syncer *docsync.Syncer
	pub    Publisher
	log    *slog.Logger
	opts   Options
	now    func() time.Time
}

// NewService wires a service. syncer decides how bodies are seeded and
// rebuilt; pub may be nil.
func NewService(store Store, syncer *docsync.Syncer, pub Publisher, log *slog.Logger, opts Options) *Service {
	if opts.ExcerptTokens <= 0 {
		opts.ExcerptTokens = 60
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:  store,
		syncer: syncer,
		pub:    pub,
		log:    log,
		opts:   opts,
		now:    time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]Article, error) {
	return s.store.ListArticles(ctx)
}

func (s *Service) Get(ctx context.Context, slug string) (*Article, error) {
	return s.store.GetArticle(ctx, slug)
}

// Create stores a new article. The slug defaults to the slugified title, or
// to one derived from the new ID when the title has no usable characters.
// An empty description is generated from the body.
func (s *Service) Create(ctx context.Context, a *Article) (*Article, error) {
	a.Title = strings.TrimSpace(a.Title)
	a.ID = uuid.NewString()
	if a.Slug == "" && a.Title != "" {
		a.Slug = Slugify(a.Title)
		if a.Slug == "" {
			a.Slug = "article-" + a.ID[:8]
		}
	}
	a.Content = htmlio.Sanitize(a.Content)
	if strings.TrimSpace(a.Description) == "" {
		a.Description = s.describe(a.Content)
	}
	now := s.now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	if err := Validate(a); err != nil {
		return nil, err
	}
	if err := s.store.CreateArticle(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("article created", "slug", a.Slug, "id", a.ID)
	return a, nil
}

// Update replaces the article stored under slug, keeping its identity.
func (s *Service) Update(ctx context.Context, slug string, a *Article) (*Article, error) {
	old, err := s.store.GetArticle(ctx, slug)
	if err != nil {
		return nil, err
	}
	a.ID = old.ID
	a.CreatedAt = old.CreatedAt
	a.Title = strings.TrimSpace(a.Title)
	if a.Slug == "" {
		a.Slug = old.Slug
	}
	a.Content = htmlio.Sanitize(a.Content)
	a.Description = s.refreshDescription(old, a.Description, a.Content)
	a.UpdatedAt = s.now().UTC()

	if err := Validate(a); err != nil {
		return nil, err
	}
	if err := s.store.UpdateArticle(ctx, slug, a); err != nil {
		return nil, err
	}
	s.log.Info("article updated", "slug", a.Slug, "previous_slug", slug)
	return a, nil
}

func (s *Service) Delete(ctx context.Context, slug string) error {
	if err := s.store.DeleteArticle(ctx, slug); err != nil {
		return err
	}
	s.log.Info("article deleted", "slug", slug)
	return nil
}

// Document loads the article body into an editor the same way the admin
// UI does: mount, optionally seed, then rebuild from the stored HTML.
func (s *Service) Document(ctx context.Context, slug string) (*DocumentView, error) {
	a, err := s.store.GetArticle(ctx, slug)
	if err != nil {
		return nil, err
	}
	ed := doctree.NewEditor()
	session := s.syncer.NewSession()
	if err := session.Mount(ed); err != nil {
		return nil, err
	}
	if err := session.Load(a.Ref(), a.Content); err != nil {
		return nil, err
	}
	root := ed.Snapshot()
	return &DocumentView{Slug: a.Slug, Root: root, Stats: excerpt.Measure(root)}, nil
}

// SaveDocument exports root as the article's new body and publishes it
// when a publisher is configured. Publish failures are logged only.
func (s *Service) SaveDocument(ctx context.Context, slug string, root *doctree.Node) (*Article, error) {
	body, err := s.RenderDocument(root)
	if err != nil {
		return nil, err
	}
	body = htmlio.Sanitize(body)
	if s.opts.MinifyHTML {
		minified, err := htmlio.Minify(body)
		if err != nil {
			return nil, err
		}
		body = minified
	}

	a, err := s.store.GetArticle(ctx, slug)
	if err != nil {
		return nil, err
	}
	a.Description = s.refreshDescription(a, a.Description, body)
	a.Content = body
	a.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateArticle(ctx, slug, a); err != nil {
		return nil, err
	}
	s.log.Info("document saved", "slug", slug, "bytes", len(body))

	if s.pub != nil {
		if err := s.pub.UpdateArticle(ctx, a.Slug, a); err != nil {
			s.log.Error("publish failed", "slug", a.Slug, "error", err)
		} else {
			s.log.Info("article published", "slug", a.Slug)
		}
	}
	return a, nil
}

// DefaultDocument returns the welcome document for a new article.
func (s *Service) DefaultDocument() *doctree.Node {
	ed := doctree.NewEditor()
	_, _ = s.syncer.Seed(ed)
	return ed.Snapshot()
}

// RenderDocument validates root and exports it to HTML.
func (s *Service) RenderDocument(root *doctree.Node) (string, error) {
	ed, err := doctree.NewEditorFromRoot(root)
	if err != nil {
		return "", &ValidationError{Fields: []string{err.Error()}}
	}
	return s.syncer.Export(ed)
}

// ParseDocument sanitizes src and rebuilds it into a tree.
func (s *Service) ParseDocument(src string) (*doctree.Node, error) {
	ed := doctree.NewEditor()
	if err := s.syncer.Reconstruct(ed, htmlio.Sanitize(src)); err != nil {
		return nil, err
	}
	return ed.Snapshot(), nil
}

// Import stores a parsed document. With a slug the existing article's body
// is replaced; otherwise a new article titled title is created.
func (s *Service) Import(ctx context.Context, slug, title string, root *doctree.Node) (*Article, error) {
	if slug != "" {
		return s.SaveDocument(ctx, slug, root)
	}
	body, err := s.RenderDocument(root)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, &Article{Title: title, Content: body})
}

func (s *Service) ListAuthors(ctx context.Context) ([]Author, error) {
	return s.store.ListAuthors(ctx)
}

// SaveAuthor creates or replaces an author.
func (s *Service) SaveAuthor(ctx context.Context, a *Author) (*Author, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := Validate(a); err != nil {
		return nil, err
	}
	if err := s.store.SaveAuthor(ctx, a); err != nil {
		return nil, fmt.Errorf("save author: %w", err)
	}
	return a, nil
}

func (s *Service) ListIcons(ctx context.Context) ([]Icon, error) {
	return s.store.ListIcons(ctx)
}

// SaveIcon creates or replaces an icon.
func (s *Service) SaveIcon(ctx context.Context, i *Icon) (*Icon, error) {
	i.Name = strings.TrimSpace(i.Name)
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if err := Validate(i); err != nil {
		return nil, err
	}
	if err := s.store.SaveIcon(ctx, i); err != nil {
		return nil, fmt.Errorf("save icon: %w", err)
	}
	return i, nil
}

// refreshDescription regenerates the description when it is empty or was
// generated from the previous body.
func (s *Service) refreshDescription(old *Article, current, body string) string {
	current = strings.TrimSpace(current)
	if current == "" || current == s.describe(old.Content) {
		return s.describe(body)
	}
	return current
}

func (s *Service) describe(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	ed := doctree.NewEditor()
	if err := s.syncer.Reconstruct(ed, body); err != nil {
		return ""
	}
	return excerpt.Describe(ed.Snapshot(), s.opts.ExcerptTokens)
}
