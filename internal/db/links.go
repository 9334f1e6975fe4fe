package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const linkColumns = `id, label, url, created_at`

func scanLink(row pgx.Row) (*Link, error) {
	var l Link
	if err := row.Scan(&l.ID, &l.Label, &l.URL, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// ListLinks returns all links ordered by label
func (db *DB) ListLinks(ctx context.Context) ([]Link, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+linkColumns+` FROM links ORDER BY label ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	items := []Link{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		items = append(items, *l)
	}
	return items, rows.Err()
}

// CreateLink inserts a link
func (db *DB) CreateLink(ctx context.Context, in LinkInput) (*Link, error) {
	l, err := scanLink(db.pool.QueryRow(ctx,
		`INSERT INTO links (label, url) VALUES ($1, $2) RETURNING `+linkColumns,
		in.Label, in.URL))
	if err != nil {
		return nil, mapWriteError(err, "create link")
	}
	return l, nil
}

// UpdateLink overwrites a link
func (db *DB) UpdateLink(ctx context.Context, id uuid.UUID, in LinkInput) (*Link, error) {
	l, err := scanLink(db.pool.QueryRow(ctx,
		`UPDATE links SET label = $2, url = $3 WHERE id = $1 RETURNING `+linkColumns,
		id, in.Label, in.URL))
	if err != nil {
		return nil, mapWriteError(err, "update link")
	}
	return l, nil
}

// DeleteLink removes a link
func (db *DB) DeleteLink(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("link %s: %w", id, ErrNotFound)
	}
	return nil
}
