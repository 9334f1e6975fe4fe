package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const techColumns = `id, label, tech_group, COALESCE(level, ''), created_at`

func scanTech(row pgx.Row) (*Tech, error) {
	var t Tech
	if err := row.Scan(&t.ID, &t.Label, &t.Group, &t.Level, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTech returns the technology stack ordered by group, then label
func (db *DB) ListTech(ctx context.Context) ([]Tech, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+techColumns+` FROM tech ORDER BY tech_group ASC, label ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tech: %w", err)
	}
	defer rows.Close()

	items := []Tech{}
	for rows.Next() {
		t, err := scanTech(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tech: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// CreateTech inserts a tech entry
func (db *DB) CreateTech(ctx context.Context, in TechInput) (*Tech, error) {
	t, err := scanTech(db.pool.QueryRow(ctx, `
		INSERT INTO tech (label, tech_group, level) VALUES ($1, $2, $3)
		RETURNING `+techColumns,
		in.Label, in.Group, nullIfEmpty(in.Level)))
	if err != nil {
		return nil, mapWriteError(err, "create tech")
	}
	return t, nil
}

// UpdateTech overwrites a tech entry
func (db *DB) UpdateTech(ctx context.Context, id uuid.UUID, in TechInput) (*Tech, error) {
	t, err := scanTech(db.pool.QueryRow(ctx, `
		UPDATE tech SET label = $2, tech_group = $3, level = $4 WHERE id = $1
		RETURNING `+techColumns,
		id, in.Label, in.Group, nullIfEmpty(in.Level)))
	if err != nil {
		return nil, mapWriteError(err, "update tech")
	}
	return t, nil
}

// DeleteTech removes a tech entry
func (db *DB) DeleteTech(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM tech WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tech: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("tech %s: %w", id, ErrNotFound)
	}
	return nil
}
