package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/domain/event"
)

// EventStoreForOrchestrator defines the store interface needed by event orchestrators.
type EventStoreForOrchestrator interface {
	Create(ctx context.Context, d event.Draft, now time.Time) (event.Event, error)
	Update(ctx context.Context, id int64, d event.Draft) (event.Event, error)
	Delete(ctx context.Context, id int64) error
}

// --- Create Event ---

// CreateEventInput carries input for the create event orchestrator.
type CreateEventInput struct {
	Draft event.Draft
	Actor string // admin username, for the log
}

// CreateEventDeps holds dependencies for CreateEvent.
type CreateEventDeps struct {
	EventStore EventStoreForOrchestrator
	Now        func() time.Time
}

// ExecuteCreateEvent validates and stores a new event.
// PRE: caller passed the admin gate
// POST: on validation failure the store is untouched and validation.Errors returned;
// on success the event carries a store-assigned ID and CreatedAt
func ExecuteCreateEvent(ctx context.Context, input CreateEventInput, deps CreateEventDeps) (event.Event, error) {
	d := input.Draft.Normalize()
	if err := d.Validate(); err != nil {
		return event.Event{}, err
	}

	e, err := deps.EventStore.Create(ctx, d, deps.Now())
	if err != nil {
		return event.Event{}, err
	}

	slog.Info("event_event", "event", "event_created", "event_id", e.ID, "title", e.Title, "actor", input.Actor)
	return e, nil
}

// --- Update Event ---

// UpdateEventInput carries input for the update event orchestrator.
type UpdateEventInput struct {
	ID    int64
	Draft event.Draft
	Actor string
}

// UpdateEventDeps holds dependencies for UpdateEvent.
type UpdateEventDeps struct {
	EventStore EventStoreForOrchestrator
}

// ExecuteUpdateEvent replaces the mutable fields of an existing event.
// PRE: caller passed the admin gate
// POST: ID and CreatedAt unchanged; storage.ErrNotFound for unknown ids
func ExecuteUpdateEvent(ctx context.Context, input UpdateEventInput, deps UpdateEventDeps) (event.Event, error) {
	d := input.Draft.Normalize()
	if err := d.Validate(); err != nil {
		return event.Event{}, err
	}

	e, err := deps.EventStore.Update(ctx, input.ID, d)
	if err != nil {
		return event.Event{}, err
	}

	slog.Info("event_event", "event", "event_updated", "event_id", e.ID, "actor", input.Actor)
	return e, nil
}

// --- Delete Event ---

// DeleteEventInput carries input for the delete event orchestrator.
type DeleteEventInput struct {
	ID    int64
	Actor string
}

// DeleteEventDeps holds dependencies for DeleteEvent.
type DeleteEventDeps struct {
	EventStore EventStoreForOrchestrator
}

// ExecuteDeleteEvent removes an event.
// POST: storage.ErrNotFound for unknown ids
func ExecuteDeleteEvent(ctx context.Context, input DeleteEventInput, deps DeleteEventDeps) error {
	if err := deps.EventStore.Delete(ctx, input.ID); err != nil {
		return err
	}
	slog.Info("event_event", "event", "event_deleted", "event_id", input.ID, "actor", input.Actor)
	return nil
}
