package audit

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/adapters/storage"
	domain "storefront/internal/domain/audit"
)

const timeLayout = time.RFC3339Nano

const selectColumns = `SELECT id, at, category, action, severity, actor, resource_type, resource_id, description, ip_address, user_agent FROM audit_entry`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new audit store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func question(int) string { return "?" }

// Save inserts e.
func (s *SQLiteStore) Save(ctx context.Context, e domain.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_entry (id, at, category, action, severity, actor, resource_type, resource_id, description, ip_address, user_agent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.At.UTC().Format(timeLayout), string(e.Category), string(e.Action), string(e.Severity),
		e.Actor, e.ResourceType, e.ResourceID, e.Description, e.IPAddress, e.UserAgent)
	if err != nil {
		return fmt.Errorf("save audit entry: %w", err)
	}
	return nil
}

// List returns a page of entries matching filter, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit, offset int) ([]domain.Entry, error) {
	where, args := filter.Where(question)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx, selectColumns+where+` ORDER BY at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns how many entries match filter.
func (s *SQLiteStore) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := filter.Where(question)
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_entry`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return n, nil
}

func scanEntry(row interface{ Scan(...any) error }) (domain.Entry, error) {
	var e domain.Entry
	var at string
	err := row.Scan(&e.ID, &at, &e.Category, &e.Action, &e.Severity, &e.Actor,
		&e.ResourceType, &e.ResourceID, &e.Description, &e.IPAddress, &e.UserAgent)
	if err != nil {
		return domain.Entry{}, err
	}
	if e.At, err = time.Parse(timeLayout, at); err != nil {
		return domain.Entry{}, fmt.Errorf("parse at %q: %w", at, err)
	}
	return e, nil
}
