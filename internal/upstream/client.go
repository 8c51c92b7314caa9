// Package upstream talks to the legacy article backend that the public site
// still reads from.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgallion1/cardpress/internal/articles"
	"github.com/hashicorp/go-retryablehttp"
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
}

// Client communicates with the legacy backend's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient returns a client that retries transient failures. apiKey may be
// empty; the legacy backend is usually reached on a private network.
func NewClient(baseURL, apiKey string, timeout time.Duration, log *slog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil
	if log != nil {
		rc.Logger = log
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: rc.StandardClient(),
	}
}

// ListArticles fetches every article with its full body.
func (c *Client) ListArticles(ctx context.Context) ([]articles.Article, error) {
	var raw []legacyArticle
	if err := c.getJSON(ctx, "list articles", "/new/articles/all", &raw); err != nil {
		return nil, err
	}
	out := make([]articles.Article, 0, len(raw))
	for _, la := range raw {
		out = append(out, la.toArticle())
	}
	return out, nil
}

// GetArticle fetches one article. A 404 maps to articles.ErrNotFound.
func (c *Client) GetArticle(ctx context.Context, slug string) (*articles.Article, error) {
	var raw legacyArticle
	if err := c.getJSON(ctx, "get article", "/new/articles/"+url.PathEscape(slug), &raw); err != nil {
		return nil, err
	}
	a := raw.toArticle()
	return &a, nil
}

// UpdateArticle pushes a to the backend under slug.
func (c *Client) UpdateArticle(ctx context.Context, slug string, a *articles.Article) error {
	body, err := json.Marshal(fromArticle(a))
	if err != nil {
		return fmt.Errorf("marshal article: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/articles/update/"+url.PathEscape(slug), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("update article "+slug, resp)
	}
	return nil
}

// ListAuthors fetches every author.
func (c *Client) ListAuthors(ctx context.Context) ([]articles.Author, error) {
	var raw []legacyAuthor
	if err := c.getJSON(ctx, "list authors", "/autores/todos", &raw); err != nil {
		return nil, err
	}
	out := make([]articles.Author, 0, len(raw))
	for _, la := range raw {
		out = append(out, articles.Author{ID: la.ID, Name: la.Name, Photo: la.Photo})
	}
	return out, nil
}

// ListIcons fetches every benefit icon.
func (c *Client) ListIcons(ctx context.Context) ([]articles.Icon, error) {
	var raw []legacyIcon
	if err := c.getJSON(ctx, "list icons", "/icons/", &raw); err != nil {
		return nil, err
	}
	out := make([]articles.Icon, 0, len(raw))
	for _, li := range raw {
		out = append(out, articles.Icon{ID: li.ID, Name: li.Name, ImagePath: li.ImagePath, Description: li.Description})
	}
	return out, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, articles.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return statusError(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

var _ articles.Publisher = (*Client)(nil)
