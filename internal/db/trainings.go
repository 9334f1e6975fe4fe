package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const trainingColumns = `id, title, institution, start_date, end_date,
	COALESCE(description, ''), COALESCE(certificate, ''), sort_order, created_at, updated_at`

func scanTraining(row pgx.Row) (*Training, error) {
	var t Training
	err := row.Scan(&t.ID, &t.Title, &t.Institution, &t.StartDate, &t.EndDate,
		&t.Description, &t.Certificate, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTrainings returns all trainings in display order
func (db *DB) ListTrainings(ctx context.Context) ([]Training, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+trainingColumns+` FROM trainings ORDER BY sort_order ASC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list trainings: %w", err)
	}
	defer rows.Close()

	trainings := []Training{}
	for rows.Next() {
		t, err := scanTraining(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan training: %w", err)
		}
		trainings = append(trainings, *t)
	}
	return trainings, rows.Err()
}

// GetTraining retrieves a training by ID
func (db *DB) GetTraining(ctx context.Context, id uuid.UUID) (*Training, error) {
	t, err := scanTraining(db.pool.QueryRow(ctx,
		`SELECT `+trainingColumns+` FROM trainings WHERE id = $1`, id))
	if err != nil {
		return nil, mapWriteError(err, "get training")
	}
	return t, nil
}

// CreateTraining inserts a training at the end of the list unless an order
// is given.
func (db *DB) CreateTraining(ctx context.Context, in TrainingInput) (*Training, error) {
	t, err := scanTraining(db.pool.QueryRow(ctx, `
		INSERT INTO trainings (title, institution, start_date, end_date, description, certificate, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6,
			COALESCE($7, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM trainings)))
		RETURNING `+trainingColumns,
		in.Title, in.Institution, in.StartDate, in.EndDate,
		nullIfEmpty(in.Description), nullIfEmpty(in.Certificate), in.SortOrder,
	))
	if err != nil {
		return nil, mapWriteError(err, "create training")
	}
	return t, nil
}

// UpdateTraining overwrites a training's columns
func (db *DB) UpdateTraining(ctx context.Context, id uuid.UUID, in TrainingInput) (*Training, error) {
	t, err := scanTraining(db.pool.QueryRow(ctx, `
		UPDATE trainings SET
			title = $2, institution = $3, start_date = $4, end_date = $5,
			description = $6, certificate = $7, sort_order = COALESCE($8, sort_order),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+trainingColumns,
		id, in.Title, in.Institution, in.StartDate, in.EndDate,
		nullIfEmpty(in.Description), nullIfEmpty(in.Certificate), in.SortOrder,
	))
	if err != nil {
		return nil, mapWriteError(err, "update training")
	}
	return t, nil
}

// DeleteTraining removes a training
func (db *DB) DeleteTraining(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM trainings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete training: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("training %s: %w", id, ErrNotFound)
	}
	return nil
}

// ReorderTrainings applies all order updates atomically
func (db *DB) ReorderTrainings(ctx context.Context, updates []OrderUpdate) error {
	return db.reorder(ctx, "trainings", updates)
}
