package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const experienceColumns = `id, role, company, start_date, end_date, summary, highlights, created_at, updated_at`

func scanExperience(row pgx.Row) (*Experience, error) {
	var e Experience
	err := row.Scan(&e.ID, &e.Role, &e.Company, &e.StartDate, &e.EndDate,
		&e.Summary, &e.Highlights, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListExperiences returns all experiences, most recent first
func (db *DB) ListExperiences(ctx context.Context) ([]Experience, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+experienceColumns+` FROM experiences ORDER BY start_date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiences: %w", err)
	}
	defer rows.Close()

	experiences := []Experience{}
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan experience: %w", err)
		}
		experiences = append(experiences, *e)
	}
	return experiences, rows.Err()
}

// GetExperience retrieves an experience by ID
func (db *DB) GetExperience(ctx context.Context, id uuid.UUID) (*Experience, error) {
	e, err := scanExperience(db.pool.QueryRow(ctx,
		`SELECT `+experienceColumns+` FROM experiences WHERE id = $1`, id))
	if err != nil {
		return nil, mapWriteError(err, "get experience")
	}
	return e, nil
}

// CreateExperience inserts an experience
func (db *DB) CreateExperience(ctx context.Context, in ExperienceInput) (*Experience, error) {
	e, err := scanExperience(db.pool.QueryRow(ctx, `
		INSERT INTO experiences (role, company, start_date, end_date, summary, highlights)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+experienceColumns,
		in.Role, in.Company, in.StartDate, in.EndDate, in.Summary, in.Highlights,
	))
	if err != nil {
		return nil, mapWriteError(err, "create experience")
	}
	return e, nil
}

// UpdateExperience overwrites every column of an experience
func (db *DB) UpdateExperience(ctx context.Context, id uuid.UUID, in ExperienceInput) (*Experience, error) {
	e, err := scanExperience(db.pool.QueryRow(ctx, `
		UPDATE experiences SET
			role = $2, company = $3, start_date = $4, end_date = $5,
			summary = $6, highlights = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING `+experienceColumns,
		id, in.Role, in.Company, in.StartDate, in.EndDate, in.Summary, in.Highlights,
	))
	if err != nil {
		return nil, mapWriteError(err, "update experience")
	}
	return e, nil
}

// DeleteExperience removes an experience
func (db *DB) DeleteExperience(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM experiences WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete experience: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("experience %s: %w", id, ErrNotFound)
	}
	return nil
}
