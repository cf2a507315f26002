package inquiry

import (
	"context"

	domain "storefront/internal/domain/inquiry"
)

// Store persists contact form messages and newsletter subscriptions.
type Store interface {
	// SaveContactMessage stores a new message.
	// PRE: m has been validated and carries an ID
	SaveContactMessage(ctx context.Context, m domain.ContactMessage) error

	// ListContactMessages returns up to limit messages, newest first.
	ListContactMessages(ctx context.Context, limit int) ([]domain.ContactMessage, error)

	// Subscribe stores s unless its email is already subscribed.
	// POST: returns the stored subscription and whether it was newly created
	Subscribe(ctx context.Context, s domain.Subscription) (domain.Subscription, bool, error)

	// ListSubscriptions returns every subscription, oldest first.
	ListSubscriptions(ctx context.Context) ([]domain.Subscription, error)
}
