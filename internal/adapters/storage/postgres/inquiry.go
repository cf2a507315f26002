package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	inquirystore "storefront/internal/adapters/storage/inquiry"
	"storefront/internal/domain/inquiry"
)

// InquiryStore implements the inquiry Store on PostgreSQL.
type InquiryStore struct {
	pool *pgxpool.Pool
}

var _ inquirystore.Store = (*InquiryStore)(nil)

// NewInquiryStore creates an InquiryStore.
func NewInquiryStore(pool *pgxpool.Pool) *InquiryStore {
	return &InquiryStore{pool: pool}
}

// SaveContactMessage inserts m.
func (s *InquiryStore) SaveContactMessage(ctx context.Context, m inquiry.ContactMessage) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO contact_message (id, name, email, subject, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.Name, m.Email, m.Subject, m.Message, m.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("save contact message: %w", err)
	}
	return nil
}

// ListContactMessages returns up to limit messages, newest first.
func (s *InquiryStore) ListContactMessages(ctx context.Context, limit int) ([]inquiry.ContactMessage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, subject, message, created_at FROM contact_message
		ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	var out []inquiry.ContactMessage
	for rows.Next() {
		var m inquiry.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Subscribe inserts sub unless the email exists and returns the stored row.
func (s *InquiryStore) Subscribe(ctx context.Context, sub inquiry.Subscription) (inquiry.Subscription, bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO subscription (id, email, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING`,
		sub.ID, sub.Email, sub.CreatedAt.UTC())
	if err != nil {
		return inquiry.Subscription{}, false, fmt.Errorf("subscribe: %w", err)
	}
	var stored inquiry.Subscription
	err = s.pool.QueryRow(ctx, `SELECT id, email, created_at FROM subscription WHERE email = $1`, sub.Email).
		Scan(&stored.ID, &stored.Email, &stored.CreatedAt)
	if err != nil {
		return inquiry.Subscription{}, false, fmt.Errorf("subscribe: read back: %w", err)
	}
	return stored, tag.RowsAffected() > 0, nil
}

// ListSubscriptions returns every subscription, oldest first.
func (s *InquiryStore) ListSubscriptions(ctx context.Context) ([]inquiry.Subscription, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, email, created_at FROM subscription ORDER BY created_at ASC, email ASC`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []inquiry.Subscription
	for rows.Next() {
		var sub inquiry.Subscription
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}
