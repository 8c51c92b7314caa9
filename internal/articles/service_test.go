package articles

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/cardpress/internal/docsync"
	"github.com/dgallion1/cardpress/internal/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu       sync.Mutex
	articles map[string]Article
	authors  map[string]Author
	icons    map[string]Icon
}

func newMemStore() *memStore {
	return &memStore{
		articles: map[string]Article{},
		authors:  map[string]Author{},
		icons:    map[string]Icon{},
	}
}

func (m *memStore) ListArticles(ctx context.Context) ([]Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Article
	for _, a := range m.articles {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *memStore) GetArticle(ctx context.Context, slug string) (*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *memStore) CreateArticle(ctx context.Context, a *Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[a.Slug]; ok {
		return ErrSlugTaken
	}
	m.articles[a.Slug] = *a
	return nil
}

func (m *memStore) UpdateArticle(ctx context.Context, slug string, a *Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[slug]; !ok {
		return ErrNotFound
	}
	if a.Slug != slug {
		if _, ok := m.articles[a.Slug]; ok {
			return ErrSlugTaken
		}
		delete(m.articles, slug)
	}
	m.articles[a.Slug] = *a
	return nil
}

func (m *memStore) DeleteArticle(ctx context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[slug]; !ok {
		return ErrNotFound
	}
	delete(m.articles, slug)
	return nil
}

func (m *memStore) ListAuthors(ctx context.Context) ([]Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Author
	for _, a := range m.authors {
		out = append(out, a)
	}
	return out, nil
}

func (m *memStore) SaveAuthor(ctx context.Context, a *Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authors[a.ID] = *a
	return nil
}

func (m *memStore) ListIcons(ctx context.Context) ([]Icon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Icon
	for _, i := range m.icons {
		out = append(out, i)
	}
	return out, nil
}

func (m *memStore) SaveIcon(ctx context.Context, i *Icon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.icons[i.ID] = *i
	return nil
}

type fakePublisher struct {
	err   error
	calls []string
}

func (p *fakePublisher) UpdateArticle(ctx context.Context, slug string, a *Article) error {
	p.calls = append(p.calls, slug)
	return p.err
}

func newTestService(t *testing.T, opts docsync.Options, pub Publisher) (*Service, *memStore) {
	t.Helper()
	store := newMemStore()
	svc := NewService(store, docsync.New(nil, opts), pub, nil, Options{MinifyHTML: true, ExcerptTokens: 20})
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, store
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Cartão Platinum: vale a pena?", "cartao-platinum-vale-a-pena"},
		{"  Nubank  Ultravioleta ", "nubank-ultravioleta"},
		{"C6 Carbon -- Black", "c6-carbon-black"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestValidate(t *testing.T) {
	a := &Article{
		Slug:    "Bad Slug",
		CTALink: "not a url",
		Ratings: Ratings{Taxes: 7},
	}
	err := Validate(a)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	msg := verr.Error()
	assert.Contains(t, msg, "title is required")
	assert.Contains(t, msg, "slug must contain only lowercase letters")
	assert.Contains(t, msg, "cta_link must be a valid URL")
	assert.Contains(t, msg, "ratings.taxes must be at most 5")

	ok := &Article{Title: "Gold", Slug: "gold", CTALink: "https://bank.example/apply"}
	assert.NoError(t, Validate(ok))
}

func TestRatingsAverage(t *testing.T) {
	r := Ratings{MainFeatures: 5, Taxes: 4, OtherFeatures: 3, CardBenefits: 2, IssuerBenefits: 1}
	assert.InDelta(t, 3.0, r.Average(), 0.0001)
}

func TestService_Create(t *testing.T) {
	svc, _ := newTestService(t, docsync.Options{}, nil)
	ctx := context.Background()

	a, err := svc.Create(ctx, &Article{
		Title:   "Cartão Gold",
		Content: `<h2>Fees</h2><p>No annual fee. Great cashback.</p><script>alert(1)</script>`,
	})
	require.NoError(t, err)
	assert.Equal(t, "cartao-gold", a.Slug)
	assert.NotEmpty(t, a.ID)
	assert.NotContains(t, a.Content, "script")
	assert.Equal(t, "No annual fee. Great cashback.", a.Description)
	assert.False(t, a.CreatedAt.IsZero())

	_, err = svc.Create(ctx, &Article{Title: "Cartão Gold"})
	assert.ErrorIs(t, err, ErrSlugTaken)

	_, err = svc.Create(ctx, &Article{})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestService_UpdateRefreshesGeneratedDescription(t *testing.T) {
	svc, _ := newTestService(t, docsync.Options{}, nil)
	ctx := context.Background()

	orig, err := svc.Create(ctx, &Article{Title: "Gold", Content: "<p>Old text.</p>"})
	require.NoError(t, err)
	id, created := orig.ID, orig.CreatedAt

	updated, err := svc.Update(ctx, "gold", &Article{Title: "Gold", Content: "<p>New text.</p>", Description: "Old text."})
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, created, updated.CreatedAt)
	assert.Equal(t, "New text.", updated.Description)

	manual, err := svc.Update(ctx, "gold", &Article{Title: "Gold", Content: "<p>Newer.</p>", Description: "Hand written"})
	require.NoError(t, err)
	assert.Equal(t, "Hand written", manual.Description)

	_, err = svc.Update(ctx, "missing", &Article{Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_DocumentRelocatesHeadings(t *testing.T) {
	svc, store := newTestService(t, docsync.Options{SeedNew: true}, nil)
	ctx := context.Background()
	store.articles["gold"] = Article{Slug: "gold", Title: "Gold", Content: "<h1>A</h1><p>B</p><h2>C</h2>"}

	view, err := svc.Document(ctx, "gold")
	require.NoError(t, err)
	require.Equal(t, 3, view.Root.Len())
	assert.Equal(t, doctree.KindParagraph, view.Root.Children[0].Type)
	assert.Equal(t, doctree.H1, view.Root.Children[1].Level())
	assert.Equal(t, doctree.H2, view.Root.Children[2].Level())
	assert.Equal(t, 2, view.Stats.Headings)

	_, err = svc.Document(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_DocumentSeedsEmptyBody(t *testing.T) {
	svc, store := newTestService(t, docsync.Options{SeedNew: true}, nil)
	store.articles["new"] = Article{Slug: "new", Title: "New"}

	view, err := svc.Document(context.Background(), "new")
	require.NoError(t, err)
	assert.Equal(t, 6, view.Root.Len())

	plain, store2 := newTestService(t, docsync.Options{}, nil)
	store2.articles["new"] = Article{Slug: "new", Title: "New"}
	view, err = plain.Document(context.Background(), "new")
	require.NoError(t, err)
	assert.Equal(t, 0, view.Root.Len())
}

func TestService_SaveDocument(t *testing.T) {
	pub := &fakePublisher{}
	svc, store := newTestService(t, docsync.Options{}, pub)
	ctx := context.Background()
	store.articles["gold"] = Article{Slug: "gold", Title: "Gold"}

	root := doctree.NewRoot().Append(
		doctree.NewParagraph().Append(doctree.NewText("Fee is "), doctree.NewText("zero").ToggleFormat(doctree.FormatBold)),
	)
	a, err := svc.SaveDocument(ctx, "gold", root)
	require.NoError(t, err)
	assert.Equal(t, "<p>Fee is <strong>zero</strong></p>", a.Content)
	assert.Equal(t, "Fee is zero", a.Description)
	assert.Equal(t, []string{"gold"}, pub.calls)

	stored, _ := store.GetArticle(ctx, "gold")
	assert.Equal(t, a.Content, stored.Content)
}

func TestService_SaveDocumentPublishFailureIsNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("upstream down")}
	svc, store := newTestService(t, docsync.Options{}, pub)
	store.articles["gold"] = Article{Slug: "gold", Title: "Gold"}

	root := doctree.NewRoot().Append(doctree.NewParagraph().Append(doctree.NewText("x")))
	_, err := svc.SaveDocument(context.Background(), "gold", root)
	assert.NoError(t, err)
	assert.Len(t, pub.calls, 1)
}

func TestService_SaveDocumentRejectsInvalidTree(t *testing.T) {
	svc, store := newTestService(t, docsync.Options{}, nil)
	store.articles["gold"] = Article{Slug: "gold", Title: "Gold"}

	bad := doctree.NewRoot().Append(doctree.NewText("loose"))
	_, err := svc.SaveDocument(context.Background(), "gold", bad)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "root.children[0]")
}

func TestService_SaveDocumentStripsUnsafeLinks(t *testing.T) {
	pub := &fakePublisher{}
	svc, store := newTestService(t, docsync.Options{}, pub)
	ctx := context.Background()
	store.articles["card"] = Article{Slug: "card", Title: "Card"}

	root := doctree.NewRoot().Append(
		doctree.NewParagraph().Append(doctree.NewLink("javascript:alert(1)").Append(doctree.NewText("x"))),
		doctree.NewParagraph().Append(doctree.NewLink("https://bank.test/apply").Append(doctree.NewText("apply"))),
	)
	a, err := svc.SaveDocument(ctx, "card", root)
	require.NoError(t, err)
	assert.NotContains(t, a.Content, "javascript")
	assert.Contains(t, a.Content, "<p>x</p>")
	assert.Contains(t, a.Content, `href="https://bank.test/apply"`)

	stored, _ := store.GetArticle(ctx, "card")
	assert.NotContains(t, stored.Content, "javascript")
}

func TestService_SaveDocumentKeepsWhitespace(t *testing.T) {
	svc, store := newTestService(t, docsync.Options{}, nil)
	ctx := context.Background()
	store.articles["card"] = Article{Slug: "card", Title: "Card"}

	root := doctree.NewRoot().Append(
		doctree.NewParagraph().Append(
			doctree.NewText("fee:  R$ 0"),
			doctree.NewText(" tail").ToggleFormat(doctree.FormatBold),
		),
	)
	_, err := svc.SaveDocument(ctx, "card", root)
	require.NoError(t, err)

	view, err := svc.Document(ctx, "card")
	require.NoError(t, err)
	assert.Equal(t, "fee:  R$ 0 tail", view.Root.TextContent())
}

func TestService_CreateFallsBackToGeneratedSlug(t *testing.T) {
	svc, _ := newTestService(t, docsync.Options{}, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, &Article{Title: "!!!"})
	require.NoError(t, err)
	assert.Regexp(t, `^article-[0-9a-f]{8}$`, first.Slug)

	second, err := svc.Create(ctx, &Article{Title: "???"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Slug, second.Slug)

	got, err := svc.Get(ctx, first.Slug)
	require.NoError(t, err)
	assert.Equal(t, "!!!", got.Title)

	_, err = svc.Create(ctx, &Article{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "slug is required")
}

func TestService_ParseAndRender(t *testing.T) {
	svc, _ := newTestService(t, docsync.Options{}, nil)

	root, err := svc.ParseDocument(`<p>safe</p><script>evil()</script><p><a href="javascript:x()">bad</a></p>`)
	require.NoError(t, err)
	assert.Equal(t, "safe\nbad", root.TextContent())

	html, err := svc.RenderDocument(root)
	require.NoError(t, err)
	assert.Equal(t, "<p>safe</p><p>bad</p>", html)

	def := svc.DefaultDocument()
	assert.Equal(t, 6, def.Len())
}

func TestService_ImportCreatesOrReplaces(t *testing.T) {
	svc, store := newTestService(t, docsync.Options{}, nil)
	ctx := context.Background()
	root := doctree.NewRoot().Append(doctree.NewParagraph().Append(doctree.NewText("Imported body.")))

	created, err := svc.Import(ctx, "", "Imported Card", root)
	require.NoError(t, err)
	assert.Equal(t, "imported-card", created.Slug)

	store.articles["gold"] = Article{Slug: "gold", Title: "Gold"}
	replaced, err := svc.Import(ctx, "gold", "ignored", root)
	require.NoError(t, err)
	assert.Equal(t, "Gold", replaced.Title)
	assert.Equal(t, "<p>Imported body.</p>", replaced.Content)
}

func TestService_AuthorsAndIcons(t *testing.T) {
	svc, _ := newTestService(t, docsync.Options{}, nil)
	ctx := context.Background()

	au, err := svc.SaveAuthor(ctx, &Author{Name: " Ana Souza "})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", au.Name)
	assert.NotEmpty(t, au.ID)

	_, err = svc.SaveAuthor(ctx, &Author{})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	icon, err := svc.SaveIcon(ctx, &Icon{Name: "Lounge", ImagePath: "icons/lounge.svg"})
	require.NoError(t, err)
	assert.NotEmpty(t, icon.ID)

	authors, _ := svc.ListAuthors(ctx)
	icons, _ := svc.ListIcons(ctx)
	assert.Len(t, authors, 1)
	assert.Len(t, icons, 1)
}
