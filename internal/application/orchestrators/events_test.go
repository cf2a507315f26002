package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/adapters/storage"
	"storefront/internal/domain/event"
	"storefront/internal/domain/validation"
)

// --- Mock event store ---

type mockEventStore struct {
	events map[int64]event.Event
	nextID int64
	calls  int
}

func newMockEventStore() *mockEventStore {
	return &mockEventStore{events: make(map[int64]event.Event), nextID: 1}
}

func (m *mockEventStore) Create(_ context.Context, d event.Draft, now time.Time) (event.Event, error) {
	m.calls++
	e := event.Event{ID: m.nextID, CreatedAt: now}.WithDraft(d)
	m.events[e.ID] = e
	m.nextID++
	return e, nil
}

func (m *mockEventStore) Update(_ context.Context, id int64, d event.Draft) (event.Event, error) {
	m.calls++
	e, ok := m.events[id]
	if !ok {
		return event.Event{}, storage.ErrNotFound
	}
	e = e.WithDraft(d)
	m.events[id] = e
	return e, nil
}

func (m *mockEventStore) Delete(_ context.Context, id int64) error {
	m.calls++
	if _, ok := m.events[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func harvestDraft() event.Draft {
	return event.Draft{
		Title:       "Fall Harvest Festival",
		Description: "Cider, pumpkins and local farms.",
		Month:       "OCT",
		Day:         "29",
		Time:        "12:00 PM - 3:00 PM",
		Location:    "Throughout Store",
		Color:       "accent",
	}
}

// TestExecuteCreateEvent tests the happy path.
func TestExecuteCreateEvent(t *testing.T) {
	store := newMockEventStore()
	e, err := ExecuteCreateEvent(context.Background(), CreateEventInput{Draft: harvestDraft(), Actor: "admin"},
		CreateEventDeps{EventStore: store, Now: fixedNow})
	if err != nil {
		t.Fatalf("ExecuteCreateEvent: %v", err)
	}
	if e.ID != 1 || !e.CreatedAt.Equal(testNow) || e.Draft() != harvestDraft() {
		t.Errorf("unexpected event: %+v", e)
	}
}

// TestExecuteCreateEvent_Normalizes tests trimming and case folding before storage.
func TestExecuteCreateEvent_Normalizes(t *testing.T) {
	store := newMockEventStore()
	d := harvestDraft()
	d.Title = "  Fall Harvest Festival "
	d.Month = "oct"
	d.Color = "Accent"
	e, err := ExecuteCreateEvent(context.Background(), CreateEventInput{Draft: d}, CreateEventDeps{EventStore: store, Now: fixedNow})
	if err != nil {
		t.Fatalf("ExecuteCreateEvent: %v", err)
	}
	if e.Draft() != harvestDraft() {
		t.Errorf("not normalized: %+v", e.Draft())
	}
}

// TestExecuteCreateEvent_ValidationBeforeStore tests that invalid drafts never reach the store.
func TestExecuteCreateEvent_ValidationBeforeStore(t *testing.T) {
	store := newMockEventStore()
	d := harvestDraft()
	d.Description = ""
	d.Day = "32"

	_, err := ExecuteCreateEvent(context.Background(), CreateEventInput{Draft: d}, CreateEventDeps{EventStore: store, Now: fixedNow})
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation.Errors, got %v", err)
	}
	if !verrs.Has("description") || !verrs.Has("day") || len(verrs) != 2 {
		t.Errorf("unexpected field errors: %+v", verrs)
	}
	if store.calls != 0 {
		t.Errorf("store called %d times, want 0", store.calls)
	}
}

// TestExecuteUpdateEvent tests replacement keeps identity.
func TestExecuteUpdateEvent(t *testing.T) {
	store := newMockEventStore()
	ctx := context.Background()
	created, _ := ExecuteCreateEvent(ctx, CreateEventInput{Draft: harvestDraft()}, CreateEventDeps{EventStore: store, Now: fixedNow})

	d := harvestDraft()
	d.Title = "Winter Market"
	got, err := ExecuteUpdateEvent(ctx, UpdateEventInput{ID: created.ID, Draft: d}, UpdateEventDeps{EventStore: store})
	if err != nil {
		t.Fatalf("ExecuteUpdateEvent: %v", err)
	}
	if got.ID != created.ID || !got.CreatedAt.Equal(created.CreatedAt) || got.Title != "Winter Market" {
		t.Errorf("unexpected event: %+v", got)
	}
}

// TestExecuteUpdateEvent_Errors tests not-found and validation on update.
func TestExecuteUpdateEvent_Errors(t *testing.T) {
	store := newMockEventStore()
	ctx := context.Background()

	if _, err := ExecuteUpdateEvent(ctx, UpdateEventInput{ID: 7, Draft: harvestDraft()}, UpdateEventDeps{EventStore: store}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown id: err = %v, want ErrNotFound", err)
	}

	calls := store.calls
	d := harvestDraft()
	d.Color = "purple"
	var verrs validation.Errors
	if _, err := ExecuteUpdateEvent(ctx, UpdateEventInput{ID: 7, Draft: d}, UpdateEventDeps{EventStore: store}); !errors.As(err, &verrs) || !verrs.Has("color") {
		t.Errorf("invalid color: err = %v", err)
	}
	if store.calls != calls {
		t.Error("invalid update reached the store")
	}
}

// TestExecuteDeleteEvent tests deletion and repeat deletion.
func TestExecuteDeleteEvent(t *testing.T) {
	store := newMockEventStore()
	ctx := context.Background()
	created, _ := ExecuteCreateEvent(ctx, CreateEventInput{Draft: harvestDraft()}, CreateEventDeps{EventStore: store, Now: fixedNow})
	deps := DeleteEventDeps{EventStore: store}

	if err := ExecuteDeleteEvent(ctx, DeleteEventInput{ID: created.ID}, deps); err != nil {
		t.Fatalf("ExecuteDeleteEvent: %v", err)
	}
	if err := ExecuteDeleteEvent(ctx, DeleteEventInput{ID: created.ID}, deps); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}
