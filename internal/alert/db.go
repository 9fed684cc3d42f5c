package alert

import (
	"context"
	"database/sql"
	"fmt"
)

// DBSink appends alerts to the alerts table so they survive a noisy
// ops channel.
type DBSink struct {
	db *sql.DB
}

func NewDBSink(db *sql.DB) *DBSink {
	return &DBSink{db: db}
}

func (s *DBSink) Alert(ctx context.Context, text string) error {
	query := "INSERT INTO alerts (text) VALUES ($1)"
	if _, err := s.db.ExecContext(ctx, query, text); err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// Recent returns the newest alerts, newest first.
func (s *DBSink) Recent(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT text FROM alerts ORDER BY created_at DESC, id DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}
