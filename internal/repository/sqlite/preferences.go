package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// preferences implements domain.Preferences using SQLite.
type preferences struct {
	db *sql.DB
}

func (p *preferences) Set(ctx context.Context, key, value string) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

func (p *preferences) Get(ctx context.Context, key string) (*string, error) {
	var value string
	err := p.db.QueryRowContext(ctx,
		"SELECT value FROM preferences WHERE key = ?", key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get preference %s: %w", key, err)
	}
	return &value, nil
}
