package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgallion1/cardpress/internal/articles"
)

const articleColumns = `id, slug, title, card_image, cta_link, writer_id, reviewer_id, checker_id,
	tags_json, ratings_json, icons_json, description, content, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*articles.Article, error) {
	var a articles.Article
	var tags, ratings, icons string
	err := row.Scan(
		&a.ID, &a.Slug, &a.Title, &a.CardImage, &a.CTALink,
		&a.Writer, &a.Reviewer, &a.Checker,
		&tags, &ratings, &icons,
		&a.Description, &a.Content, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of %s: %w", a.Slug, err)
	}
	if err := json.Unmarshal([]byte(ratings), &a.Ratings); err != nil {
		return nil, fmt.Errorf("decode ratings of %s: %w", a.Slug, err)
	}
	if err := json.Unmarshal([]byte(icons), &a.Icons); err != nil {
		return nil, fmt.Errorf("decode icons of %s: %w", a.Slug, err)
	}
	return &a, nil
}

func encodeJSON(a *articles.Article) (tags, ratings, icons string, err error) {
	t, err := json.Marshal(a.Tags)
	if err != nil {
		return "", "", "", err
	}
	r, err := json.Marshal(a.Ratings)
	if err != nil {
		return "", "", "", err
	}
	i, err := json.Marshal(a.Icons)
	if err != nil {
		return "", "", "", err
	}
	return string(t), string(r), string(i), nil
}

func (db *DB) ListArticles(ctx context.Context) ([]articles.Article, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+articleColumns+` FROM articles ORDER BY updated_at DESC, slug`)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var out []articles.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (db *DB) GetArticle(ctx context.Context, slug string) (*articles.Article, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = ?`, slug)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("article %q: %w", slug, articles.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}

func (db *DB) CreateArticle(ctx context.Context, a *articles.Article) error {
	tags, ratings, icons, err := encodeJSON(a)
	if err != nil {
		return fmt.Errorf("encode article: %w", err)
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO articles (`+articleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Slug, a.Title, a.CardImage, a.CTALink, a.Writer, a.Reviewer, a.Checker,
		tags, ratings, icons, a.Description, a.Content, a.CreatedAt, a.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("article %q: %w", a.Slug, articles.ErrSlugTaken)
	}
	if err != nil {
		return fmt.Errorf("create article: %w", err)
	}
	return nil
}

func (db *DB) UpdateArticle(ctx context.Context, slug string, a *articles.Article) error {
	tags, ratings, icons, err := encodeJSON(a)
	if err != nil {
		return fmt.Errorf("encode article: %w", err)
	}
	res, err := db.conn.ExecContext(ctx,
		`UPDATE articles SET slug = ?, title = ?, card_image = ?, cta_link = ?,
			writer_id = ?, reviewer_id = ?, checker_id = ?,
			tags_json = ?, ratings_json = ?, icons_json = ?,
			description = ?, content = ?, updated_at = ?
		WHERE slug = ?`,
		a.Slug, a.Title, a.CardImage, a.CTALink, a.Writer, a.Reviewer, a.Checker,
		tags, ratings, icons, a.Description, a.Content, a.UpdatedAt, slug,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("article %q: %w", a.Slug, articles.ErrSlugTaken)
	}
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return expectOne(res, "article", slug)
}

func (db *DB) DeleteArticle(ctx context.Context, slug string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM articles WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return expectOne(res, "article", slug)
}

func expectOne(res sql.Result, kind, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %q: %w", kind, key, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", kind, key, articles.ErrNotFound)
	}
	return nil
}
