package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const projectColumns = `id, title, slug, summary, description, tags,
	COALESCE(repo_url, ''), COALESCE(live_url, ''), COALESCE(cover_id, ''),
	media_ids, project_type, sort_order, created_at, updated_at`

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Summary, &p.Description, &p.Tags,
		&p.RepoURL, &p.LiveURL, &p.CoverID, &p.MediaIDs, &p.ProjectType,
		&p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns all projects in display order
func (db *DB) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY sort_order ASC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// GetProject retrieves a project by ID
func (db *DB) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	p, err := scanProject(db.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		return nil, mapWriteError(err, "get project")
	}
	return p, nil
}

// CreateProject inserts a project. An empty slug is derived from the title;
// without an explicit order the project goes to the end of the list.
func (db *DB) CreateProject(ctx context.Context, in ProjectInput) (*Project, error) {
	slug := in.Slug
	if slug == "" {
		slug = Slugify(in.Title)
	}
	projectType := in.ProjectType
	if projectType == "" {
		projectType = ProjectTypeDeveloped
	}

	p, err := scanProject(db.pool.QueryRow(ctx, `
		INSERT INTO projects (title, slug, summary, description, tags, repo_url, live_url,
			cover_id, media_ids, project_type, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			COALESCE($11, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM projects)))
		RETURNING `+projectColumns,
		in.Title, slug, in.Summary, in.Description, in.Tags,
		nullIfEmpty(in.RepoURL), nullIfEmpty(in.LiveURL), nullIfEmpty(in.CoverID),
		in.MediaIDs, projectType, in.SortOrder,
	))
	if err != nil {
		return nil, mapWriteError(err, "create project")
	}
	return p, nil
}

// UpdateProject overwrites a project's columns
func (db *DB) UpdateProject(ctx context.Context, id uuid.UUID, in ProjectInput) (*Project, error) {
	slug := in.Slug
	if slug == "" {
		slug = Slugify(in.Title)
	}
	projectType := in.ProjectType
	if projectType == "" {
		projectType = ProjectTypeDeveloped
	}

	p, err := scanProject(db.pool.QueryRow(ctx, `
		UPDATE projects SET
			title = $2, slug = $3, summary = $4, description = $5, tags = $6,
			repo_url = $7, live_url = $8, cover_id = $9, media_ids = $10,
			project_type = $11, sort_order = COALESCE($12, sort_order), updated_at = NOW()
		WHERE id = $1
		RETURNING `+projectColumns,
		id, in.Title, slug, in.Summary, in.Description, in.Tags,
		nullIfEmpty(in.RepoURL), nullIfEmpty(in.LiveURL), nullIfEmpty(in.CoverID),
		in.MediaIDs, projectType, in.SortOrder,
	))
	if err != nil {
		return nil, mapWriteError(err, "update project")
	}
	return p, nil
}

// DeleteProject removes a project
func (db *DB) DeleteProject(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

// ReorderProjects applies all order updates atomically
func (db *DB) ReorderProjects(ctx context.Context, updates []OrderUpdate) error {
	return db.reorder(ctx, "projects", updates)
}

// reorder is shared by the ordered tables. table is never user input.
func (db *DB) reorder(ctx context.Context, table string, updates []OrderUpdate) error {
	return db.withTx(ctx, func(tx pgx.Tx) error {
		for _, u := range updates {
			result, err := tx.Exec(ctx,
				`UPDATE `+table+` SET sort_order = $1, updated_at = NOW() WHERE id = $2`,
				u.Order, u.ID)
			if err != nil {
				return fmt.Errorf("failed to reorder %s: %w", table, err)
			}
			if result.RowsAffected() == 0 {
				return fmt.Errorf("%s %s: %w", table, u.ID, ErrNotFound)
			}
		}
		return nil
	})
}
