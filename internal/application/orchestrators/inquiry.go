package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"storefront/internal/domain/inquiry"
	"storefront/internal/domain/outbox"
)

// InquiryStoreForOrchestrator defines the store interface needed by inquiry orchestrators.
type InquiryStoreForOrchestrator interface {
	SaveContactMessage(ctx context.Context, m inquiry.ContactMessage) error
	Subscribe(ctx context.Context, s inquiry.Subscription) (inquiry.Subscription, bool, error)
}

// OutboxStoreForOrchestrator defines the store interface used to enqueue outgoing mail.
type OutboxStoreForOrchestrator interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// ContactEmailPayload is the outbox payload for forwarding a contact message to the store inbox.
type ContactEmailPayload struct {
	MessageID string `json:"messageId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

// NewsletterWelcomePayload is the outbox payload for the welcome mail sent to a new subscriber.
type NewsletterWelcomePayload struct {
	SubscriptionID string `json:"subscriptionId"`
	Email          string `json:"email"`
}

// --- Submit Contact ---

// SubmitContactInput carries input for the contact form orchestrator.
type SubmitContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// SubmitContactDeps holds dependencies for SubmitContact.
type SubmitContactDeps struct {
	InquiryStore InquiryStoreForOrchestrator
	OutboxStore  OutboxStoreForOrchestrator
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSubmitContact stores a contact message and queues its forwarding email.
// PRE: none; input comes straight from the public form
// POST: on validation failure nothing is stored; on success the message is stored and,
// unless enqueueing fails (logged, not returned), an outbox entry is pending
func ExecuteSubmitContact(ctx context.Context, input SubmitContactInput, deps SubmitContactDeps) (inquiry.ContactMessage, error) {
	m := inquiry.ContactMessage{
		Name:    input.Name,
		Email:   input.Email,
		Subject: input.Subject,
		Message: input.Message,
	}.Normalize()
	if err := m.Validate(); err != nil {
		return inquiry.ContactMessage{}, err
	}

	now := deps.Now()
	m.ID = deps.GenerateID()
	m.CreatedAt = now
	if err := deps.InquiryStore.SaveContactMessage(ctx, m); err != nil {
		return inquiry.ContactMessage{}, err
	}
	slog.Info("inquiry_event", "event", "contact_received", "message_id", m.ID, "subject", m.Subject)

	enqueue(ctx, deps.OutboxStore, deps.GenerateID(), outbox.ActionTypeContactEmail, ContactEmailPayload{
		MessageID: m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
	}, now)
	return m, nil
}

// --- Subscribe Newsletter ---

// SubscribeNewsletterInput carries input for the newsletter orchestrator.
type SubscribeNewsletterInput struct {
	Email string
}

// SubscribeNewsletterDeps holds dependencies for SubscribeNewsletter.
type SubscribeNewsletterDeps struct {
	InquiryStore InquiryStoreForOrchestrator
	OutboxStore  OutboxStoreForOrchestrator
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSubscribeNewsletter subscribes an email address.
// POST: subscribing twice is not an error; the welcome mail is queued only for new subscribers
func ExecuteSubscribeNewsletter(ctx context.Context, input SubscribeNewsletterInput, deps SubscribeNewsletterDeps) (inquiry.Subscription, bool, error) {
	s := inquiry.Subscription{Email: input.Email}.Normalize()
	if err := s.Validate(); err != nil {
		return inquiry.Subscription{}, false, err
	}

	now := deps.Now()
	s.ID = deps.GenerateID()
	s.CreatedAt = now
	stored, created, err := deps.InquiryStore.Subscribe(ctx, s)
	if err != nil {
		return inquiry.Subscription{}, false, err
	}
	if !created {
		slog.Info("inquiry_event", "event", "newsletter_already_subscribed", "subscription_id", stored.ID)
		return stored, false, nil
	}

	slog.Info("inquiry_event", "event", "newsletter_subscribed", "subscription_id", stored.ID)
	enqueue(ctx, deps.OutboxStore, deps.GenerateID(), outbox.ActionTypeNewsletterWelcome, NewsletterWelcomePayload{
		SubscriptionID: stored.ID,
		Email:          stored.Email,
	}, now)
	return stored, true, nil
}

// enqueue saves an outbox entry. Failures are logged, not returned.
func enqueue(ctx context.Context, store OutboxStoreForOrchestrator, id, actionType string, payload any, now time.Time) {
	if store == nil {
		return
	}
	if err := saveOutboxEntry(ctx, store, id, actionType, payload, now); err != nil {
		slog.Error("outbox_enqueue_failed", "action_type", actionType, "error", err)
	}
}

func saveOutboxEntry(ctx context.Context, store OutboxStoreForOrchestrator, id, actionType string, payload any, now time.Time) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", actionType, err)
	}
	e := outbox.Entry{
		ID:         id,
		ActionType: actionType,
		Payload:    string(body),
		Status:     outbox.StatusPending,
		CreatedAt:  now,
	}
	if err := e.Validate(); err != nil {
		return err
	}
	return store.Save(ctx, e)
}
