package inquiry

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/adapters/storage"
	domain "storefront/internal/domain/inquiry"
)

const timeLayout = time.RFC3339Nano

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new inquiry store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// SaveContactMessage inserts m.
func (s *SQLiteStore) SaveContactMessage(ctx context.Context, m domain.ContactMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_message (id, name, email, subject, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Email, m.Subject, m.Message, m.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save contact message: %w", err)
	}
	return nil
}

// ListContactMessages returns up to limit messages, newest first.
func (s *SQLiteStore) ListContactMessages(ctx context.Context, limit int) ([]domain.ContactMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, subject, message, created_at FROM contact_message
		 ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	var out []domain.ContactMessage
	for rows.Next() {
		var m domain.ContactMessage
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		m.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Subscribe inserts sub unless the email exists, then returns the stored row.
func (s *SQLiteStore) Subscribe(ctx context.Context, sub domain.Subscription) (domain.Subscription, bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO subscription (id, email, created_at) VALUES (?, ?, ?) ON CONFLICT(email) DO NOTHING`,
		sub.ID, sub.Email, sub.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return domain.Subscription{}, false, fmt.Errorf("subscribe: %w", err)
	}
	n, _ := res.RowsAffected()

	var stored domain.Subscription
	var createdAt string
	err = s.db.QueryRowContext(ctx, `SELECT id, email, created_at FROM subscription WHERE email = ?`, sub.Email).
		Scan(&stored.ID, &stored.Email, &createdAt)
	if err != nil {
		return domain.Subscription{}, false, fmt.Errorf("subscribe: read back: %w", err)
	}
	stored.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return stored, n > 0, nil
}

// ListSubscriptions returns every subscription, oldest first.
func (s *SQLiteStore) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, email, created_at FROM subscription ORDER BY created_at ASC, email ASC`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		var createdAt string
		if err := rows.Scan(&sub.ID, &sub.Email, &createdAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		sub.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		out = append(out, sub)
	}
	return out, rows.Err()
}
