package storage

import (
	"context"
	"fmt"

	"github.com/dgallion1/cardpress/internal/articles"
)

func (db *DB) ListAuthors(ctx context.Context) ([]articles.Author, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, name, photo FROM authors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	var out []articles.Author
	for rows.Next() {
		var a articles.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Photo); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveAuthor inserts a or replaces the author with the same ID.
func (db *DB) SaveAuthor(ctx context.Context, a *articles.Author) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO authors (id, name, photo) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, photo = excluded.photo`,
		a.ID, a.Name, a.Photo,
	)
	if err != nil {
		return fmt.Errorf("save author: %w", err)
	}
	return nil
}

func (db *DB) ListIcons(ctx context.Context) ([]articles.Icon, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, name, image_path, description FROM icons ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list icons: %w", err)
	}
	defer rows.Close()

	var out []articles.Icon
	for rows.Next() {
		var i articles.Icon
		if err := rows.Scan(&i.ID, &i.Name, &i.ImagePath, &i.Description); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// SaveIcon inserts i or replaces the icon with the same ID.
func (db *DB) SaveIcon(ctx context.Context, i *articles.Icon) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO icons (id, name, image_path, description) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, image_path = excluded.image_path,
			description = excluded.description`,
		i.ID, i.Name, i.ImagePath, i.Description,
	)
	if err != nil {
		return fmt.Errorf("save icon: %w", err)
	}
	return nil
}

var _ articles.Store = (*DB)(nil)
