package db

import (
	"context"
	"fmt"
)

// RecordVisit stores one page view
func (db *DB) RecordVisit(ctx context.Context, v Visit) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO visitors (ip_address, user_agent, referer) VALUES ($1, $2, $3)`,
		v.IPAddress, nullIfEmpty(v.UserAgent), nullIfEmpty(v.Referer))
	if err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}
	return nil
}

// VisitorStats counts all visits, distinct addresses, visits since midnight
// (database time zone) and visits in the last seven days.
func (db *DB) VisitorStats(ctx context.Context) (*VisitorStats, error) {
	var s VisitorStats
	err := db.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT ip_address),
			COUNT(*) FILTER (WHERE visited_at >= date_trunc('day', NOW())),
			COUNT(*) FILTER (WHERE visited_at >= NOW() - INTERVAL '7 days')
		FROM visitors`).Scan(&s.Total, &s.Unique, &s.Today, &s.Week)
	if err != nil {
		return nil, fmt.Errorf("failed to get visitor stats: %w", err)
	}
	return &s, nil
}
