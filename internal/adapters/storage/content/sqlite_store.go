package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/adapters/storage"
)

// SQLiteStore implements Store using the content_section table.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new content store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get decodes the stored JSON body of key into dst.
func (s *SQLiteStore) Get(ctx context.Context, key string, dst any) error {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM content_section WHERE key = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get content %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return fmt.Errorf("decode content %s: %w", key, err)
	}
	return nil
}

// Put upserts key with the JSON encoding of v.
func (s *SQLiteStore) Put(ctx context.Context, key string, v any, now time.Time) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode content %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO content_section (key, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		key, string(body), now.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put content %s: %w", key, err)
	}
	return nil
}

// UpdatedAt returns the last write time of key.
func (s *SQLiteStore) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var ts string
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM content_section WHERE key = ?`, key).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, storage.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("content %s updated_at: %w", key, err)
	}
	return time.Parse(time.RFC3339Nano, ts)
}
