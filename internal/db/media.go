package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const mediaColumns = `id, title, public_id, media_type, created_at`

func scanMedia(row pgx.Row) (*Media, error) {
	var m Media
	if err := row.Scan(&m.ID, &m.Title, &m.PublicID, &m.MediaType, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMedia returns all media, newest first
func (db *DB) ListMedia(ctx context.Context) ([]Media, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+mediaColumns+` FROM media ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	defer rows.Close()

	items := []Media{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

// CreateMedia inserts a media reference
func (db *DB) CreateMedia(ctx context.Context, in MediaInput) (*Media, error) {
	mediaType := in.MediaType
	if mediaType == "" {
		mediaType = "image"
	}
	m, err := scanMedia(db.pool.QueryRow(ctx, `
		INSERT INTO media (title, public_id, media_type) VALUES ($1, $2, $3)
		RETURNING `+mediaColumns,
		in.Title, in.PublicID, mediaType))
	if err != nil {
		return nil, mapWriteError(err, "create media")
	}
	return m, nil
}

// UpdateMedia overwrites a media reference
func (db *DB) UpdateMedia(ctx context.Context, id uuid.UUID, in MediaInput) (*Media, error) {
	mediaType := in.MediaType
	if mediaType == "" {
		mediaType = "image"
	}
	m, err := scanMedia(db.pool.QueryRow(ctx, `
		UPDATE media SET title = $2, public_id = $3, media_type = $4 WHERE id = $1
		RETURNING `+mediaColumns,
		id, in.Title, in.PublicID, mediaType))
	if err != nil {
		return nil, mapWriteError(err, "update media")
	}
	return m, nil
}

// DeleteMedia removes a media reference. The stored object is left alone.
func (db *DB) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("media %s: %w", id, ErrNotFound)
	}
	return nil
}
