package adminui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/content"
	"storefront/internal/domain/event"
	"storefront/internal/domain/validation"
)

// memoryEvents is an in-process event backend.
type memoryEvents struct {
	events  []event.Event
	nextID  int64
	failErr error         // returned by the next mutation, then cleared
	block   chan struct{} // when set, mutations wait on it
	started chan struct{}
}

func (b *memoryEvents) List(context.Context) ([]event.Event, error) {
	return append([]event.Event(nil), b.events...), nil
}

func (b *memoryEvents) mutate() error {
	if b.started != nil {
		b.started <- struct{}{}
	}
	if b.block != nil {
		<-b.block
	}
	err := b.failErr
	b.failErr = nil
	return err
}

func (b *memoryEvents) Create(_ context.Context, d event.Draft) (event.Event, error) {
	if err := b.mutate(); err != nil {
		return event.Event{}, err
	}
	b.nextID++
	e := event.Event{ID: b.nextID, CreatedAt: time.Now()}.WithDraft(d)
	b.events = append(b.events, e)
	return e, nil
}

func (b *memoryEvents) Update(_ context.Context, id int64, d event.Draft) (event.Event, error) {
	if err := b.mutate(); err != nil {
		return event.Event{}, err
	}
	for i, e := range b.events {
		if e.ID == id {
			b.events[i] = e.WithDraft(d)
			return b.events[i], nil
		}
	}
	return event.Event{}, errors.New("not found")
}

func (b *memoryEvents) Remove(_ context.Context, id int64) error {
	if err := b.mutate(); err != nil {
		return err
	}
	for i, e := range b.events {
		if e.ID == id {
			b.events = append(b.events[:i], b.events[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

var harvest = event.Draft{
	Title:       "Fall Harvest Festival",
	Description: "Local produce, cider tasting and pumpkin carving for the kids.",
	Month:       "OCT",
	Day:         "29",
	Time:        "12:00 PM - 3:00 PM",
	Location:    "Throughout Store",
	Color:       "accent",
}

func newEventManager(b *memoryEvents) *ListManager[event.Event, event.Draft] {
	return NewListManager[event.Event, event.Draft](b, ListConfig[event.Event, event.Draft]{
		Name:     "event",
		ID:       func(e event.Event) int64 { return e.ID },
		DraftOf:  event.Event.Draft,
		Validate: func(d event.Draft) error { return d.Normalize().Validate() },
	})
}

func yes(event.Event) bool { return true }

func TestListManager_AddFlow(t *testing.T) {
	b := &memoryEvents{}
	m := newEventManager(b)
	ctx := context.Background()
	require.NoError(t, m.Load(ctx))
	assert.Equal(t, Viewing, m.State().Mode)

	require.NoError(t, m.StartAdd())
	assert.Equal(t, Adding, m.State().Mode)
	require.NoError(t, m.EditDraft(func(d *event.Draft) { *d = harvest }))
	require.NoError(t, m.Submit(ctx))

	st := m.State()
	assert.Equal(t, Viewing, st.Mode)
	assert.Equal(t, event.Draft{}, st.Draft, "form is reset")
	require.Len(t, m.Items(), 1, "list is refreshed")
	last, ok := m.Notices().Last()
	require.True(t, ok)
	assert.Equal(t, NoticeSuccess, last.Kind)
	assert.Equal(t, "Event added", last.Message)
}

func TestListManager_EditFlow(t *testing.T) {
	b := &memoryEvents{}
	_, _ = b.Create(context.Background(), harvest)
	m := newEventManager(b)
	ctx := context.Background()
	require.NoError(t, m.Load(ctx))

	require.ErrorIs(t, m.StartEdit(99), ErrUnknownItem)
	require.NoError(t, m.StartEdit(1))
	st := m.State()
	assert.Equal(t, Editing, st.Mode)
	assert.Equal(t, int64(1), st.EditingID)
	assert.Equal(t, harvest, st.Draft, "form pre-populated from the record")

	require.NoError(t, m.EditDraft(func(d *event.Draft) { d.Title = "Harvest & Hayride" }))
	require.NoError(t, m.Submit(ctx))
	assert.Equal(t, Viewing, m.State().Mode)
	assert.Equal(t, "Harvest & Hayride", m.Items()[0].Title)
}

func TestListManager_OneFormAtATime(t *testing.T) {
	b := &memoryEvents{}
	_, _ = b.Create(context.Background(), harvest)
	m := newEventManager(b)
	require.NoError(t, m.Load(context.Background()))

	require.NoError(t, m.StartAdd())
	assert.ErrorIs(t, m.StartAdd(), ErrBusy)
	assert.ErrorIs(t, m.StartEdit(1), ErrBusy)
	assert.ErrorIs(t, m.Delete(context.Background(), 1, yes), ErrBusy)

	require.NoError(t, m.Cancel())
	assert.Equal(t, Viewing, m.State().Mode)
	assert.NoError(t, m.StartEdit(1))
}

func TestListManager_RequiredFields(t *testing.T) {
	b := &memoryEvents{}
	m := newEventManager(b)
	ctx := context.Background()

	require.NoError(t, m.StartAdd())
	require.NoError(t, m.EditDraft(func(d *event.Draft) { *d = harvest; d.Description = "" }))
	err := m.Submit(ctx)
	require.Error(t, err)

	assert.Equal(t, Adding, m.State().Mode, "form stays open")
	assert.Empty(t, b.events, "backend not called")
	last, _ := m.Notices().Last()
	assert.Equal(t, NoticeValidation, last.Kind)
	assert.True(t, last.Fields.Has("description"))
}

func TestListManager_SaveFailure(t *testing.T) {
	b := &memoryEvents{failErr: errors.New("500 Internal server error")}
	m := newEventManager(b)
	ctx := context.Background()

	require.NoError(t, m.StartAdd())
	require.NoError(t, m.EditDraft(func(d *event.Draft) { *d = harvest }))
	require.Error(t, m.Submit(ctx))

	st := m.State()
	assert.Equal(t, Error, st.Mode)
	assert.Equal(t, harvest, st.Draft, "form retained")
	assert.Error(t, st.Err)
	last, _ := m.Notices().Last()
	assert.Equal(t, NoticeError, last.Kind)
	assert.Contains(t, last.Message, "Could not save event")

	// resubmit succeeds
	require.NoError(t, m.Submit(ctx))
	assert.Equal(t, Viewing, m.State().Mode)
	assert.Len(t, m.Items(), 1)
}

func TestListManager_ServerValidation(t *testing.T) {
	fields := validation.Errors{{Field: "color", Message: "color must be one of primary, secondary, accent"}}
	b := &memoryEvents{failErr: fields}
	m := newEventManager(b)

	require.NoError(t, m.StartAdd())
	require.NoError(t, m.EditDraft(func(d *event.Draft) { *d = harvest }))
	require.Error(t, m.Submit(context.Background()))
	assert.Equal(t, Error, m.State().Mode)
	last, _ := m.Notices().Last()
	assert.Equal(t, NoticeValidation, last.Kind)
	assert.True(t, last.Fields.Has("color"))

	require.NoError(t, m.Cancel())
	assert.Equal(t, Viewing, m.State().Mode)
	assert.Equal(t, event.Draft{}, m.State().Draft)
}

func TestListManager_SavingIsExclusive(t *testing.T) {
	b := &memoryEvents{block: make(chan struct{}), started: make(chan struct{}, 1)}
	m := newEventManager(b)
	ctx := context.Background()
	require.NoError(t, m.StartAdd())
	require.NoError(t, m.EditDraft(func(d *event.Draft) { *d = harvest }))

	done := make(chan error, 1)
	go func() { done <- m.Submit(ctx) }()
	<-b.started

	assert.Equal(t, Saving, m.State().Mode)
	assert.ErrorIs(t, m.Submit(ctx), ErrBusy)
	assert.ErrorIs(t, m.Cancel(), ErrBusy)
	assert.ErrorIs(t, m.EditDraft(func(*event.Draft) {}), ErrBusy)
	assert.ErrorIs(t, m.StartAdd(), ErrBusy)

	close(b.block)
	require.NoError(t, <-done)
	assert.Equal(t, Viewing, m.State().Mode)
}

func TestListManager_Delete(t *testing.T) {
	b := &memoryEvents{}
	_, _ = b.Create(context.Background(), harvest)
	m := newEventManager(b)
	ctx := context.Background()
	require.NoError(t, m.Load(ctx))

	var asked event.Event
	err := m.Delete(ctx, 1, func(e event.Event) bool { asked = e; return false })
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Equal(t, harvest.Title, asked.Title)
	assert.Len(t, b.events, 1)
	assert.ErrorIs(t, m.Delete(ctx, 1, nil), ErrNotConfirmed)

	assert.ErrorIs(t, m.Delete(ctx, 7, yes), ErrUnknownItem)

	require.NoError(t, m.Delete(ctx, 1, yes))
	assert.Equal(t, Viewing, m.State().Mode)
	assert.Empty(t, m.Items())
	last, _ := m.Notices().Last()
	assert.Equal(t, "Event deleted", last.Message)
}

func TestListManager_DeleteFailure(t *testing.T) {
	b := &memoryEvents{}
	_, _ = b.Create(context.Background(), harvest)
	m := newEventManager(b)
	ctx := context.Background()
	require.NoError(t, m.Load(ctx))

	b.failErr = errors.New("connection refused")
	require.Error(t, m.Delete(ctx, 1, yes))
	assert.Equal(t, Viewing, m.State().Mode)
	last, _ := m.Notices().Last()
	assert.Equal(t, NoticeError, last.Kind)
}

func TestListManager_NoFormOpen(t *testing.T) {
	m := newEventManager(&memoryEvents{})
	assert.ErrorIs(t, m.Submit(context.Background()), ErrNotEditing)
	assert.ErrorIs(t, m.EditDraft(func(*event.Draft) {}), ErrNotEditing)
	assert.NoError(t, m.Cancel())
}

func TestNotices_Hook(t *testing.T) {
	m := newEventManager(&memoryEvents{})
	var seen []NoticeKind
	m.Notices().Hook = func(n Notice) { seen = append(seen, n.Kind) }

	require.NoError(t, m.StartAdd())
	require.Error(t, m.Submit(context.Background()))
	require.NoError(t, m.EditDraft(func(d *event.Draft) { *d = harvest }))
	require.NoError(t, m.Submit(context.Background()))
	assert.Equal(t, []NoticeKind{NoticeValidation, NoticeSuccess}, seen)
	assert.Len(t, m.Notices().All(), 2)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "editing", Editing.String())
	assert.Equal(t, "mode(9)", Mode(9).String())
}

// memorySlides exercises the manager with a content list.
type memorySlides struct{ items []content.CarouselSlide }

func (b *memorySlides) List(context.Context) ([]content.CarouselSlide, error) { return b.items, nil }

func (b *memorySlides) Create(_ context.Context, s content.CarouselSlide) (content.CarouselSlide, error) {
	s.ID = int64(len(b.items) + 1)
	b.items = append(b.items, s)
	return s, nil
}

func (b *memorySlides) Update(_ context.Context, id int64, s content.CarouselSlide) (content.CarouselSlide, error) {
	s.ID = id
	b.items[id-1] = s
	return s, nil
}

func (b *memorySlides) Remove(context.Context, int64) error { return nil }

func TestListManager_Slides(t *testing.T) {
	m := NewListManager[content.CarouselSlide, content.CarouselSlide](&memorySlides{}, ListConfig[content.CarouselSlide, content.CarouselSlide]{
		Name:     "slide",
		ID:       func(s content.CarouselSlide) int64 { return s.ID },
		DraftOf:  func(s content.CarouselSlide) content.CarouselSlide { return s },
		Validate: content.CarouselSlide.Validate,
	})
	ctx := context.Background()
	require.NoError(t, m.StartAdd())
	require.NoError(t, m.EditDraft(func(s *content.CarouselSlide) { s.Title = "Bakery" }))
	require.Error(t, m.Submit(ctx), "image is required")
	require.NoError(t, m.EditDraft(func(s *content.CarouselSlide) { s.Image = "https://example.com/b.jpg" }))
	require.NoError(t, m.Submit(ctx))
	assert.Len(t, m.Items(), 1)
}
