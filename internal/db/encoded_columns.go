package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jasonbahil/portfolio/internal/highlights"
)

// Encoded list collections that can be scanned and repaired
const (
	CollectionExperienceHighlights = "experience-highlights"
	CollectionProjectTags          = "project-tags"
	CollectionProjectMedia         = "project-media"
)

type encodedColumn struct {
	table  string
	column string
}

// encodedColumns is the fixed set of table/column pairs holding encoded
// lists. Table and column names are only ever taken from this map.
var encodedColumns = map[string]encodedColumn{
	CollectionExperienceHighlights: {table: "experiences", column: "highlights"},
	CollectionProjectTags:          {table: "projects", column: "tags"},
	CollectionProjectMedia:         {table: "projects", column: "media_ids"},
}

// EncodedCollections returns the names accepted by EncodedListColumn
func EncodedCollections() []string {
	names := make([]string, 0, len(encodedColumns))
	for name := range encodedColumns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EncodedListColumn returns a highlights.Store over one encoded list column.
// Unknown names return ErrNotFound.
func (db *DB) EncodedListColumn(name string) (highlights.Store, error) {
	col, ok := encodedColumns[name]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", name, ErrNotFound)
	}
	return &columnStore{db: db, col: col}, nil
}

type columnStore struct {
	db  *DB
	col encodedColumn
}

func (s *columnStore) ListEncoded(ctx context.Context) ([]highlights.Record, error) {
	rows, err := s.db.pool.Query(ctx, fmt.Sprintf(
		`SELECT id::text, COALESCE(%s, '') FROM %s ORDER BY id`, s.col.column, s.col.table))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s.%s: %w", s.col.table, s.col.column, err)
	}
	defer rows.Close()

	var records []highlights.Record
	for rows.Next() {
		var rec highlights.Record
		if err := rows.Scan(&rec.ID, &rec.Raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s.%s: %w", s.col.table, s.col.column, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateEncoded writes a single row's column in one statement. updated_at is
// left alone: a repair does not change the content.
func (s *columnStore) UpdateEncoded(ctx context.Context, id, value string) error {
	rowID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", id, err)
	}
	result, err := s.db.pool.Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET %s = $1 WHERE id = $2`, s.col.table, s.col.column), value, rowID)
	if err != nil {
		return fmt.Errorf("failed to update %s.%s: %w", s.col.table, s.col.column, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", s.col.table, id, ErrNotFound)
	}
	return nil
}
