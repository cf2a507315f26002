// Package adminui holds the admin editor state machines. A ListManager drives one list of
// records (events, carousel slides, testimonials) and a FormManager drives a singleton
// section (about, contact). Both talk to a backend, so the same flow works over the HTTP
// client or an in-process store.
package adminui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/domain/validation"
)

// Mode is the editor state.
type Mode int

const (
	Viewing Mode = iota
	Adding
	Editing
	Saving
	Error
)

func (m Mode) String() string {
	switch m {
	case Viewing:
		return "viewing"
	case Adding:
		return "adding"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	case Error:
		return "error"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Editor errors.
var (
	ErrBusy         = errors.New("another change is in progress")
	ErrNotConfirmed = errors.New("delete not confirmed")
	ErrNotEditing   = errors.New("no form is open")
	ErrUnknownItem  = errors.New("item not found")
)

// Backend stores the records of one list.
type Backend[R any, D any] interface {
	List(ctx context.Context) ([]R, error)
	Create(ctx context.Context, d D) (R, error)
	Update(ctx context.Context, id int64, d D) (R, error)
	Remove(ctx context.Context, id int64) error
}

// ListConfig describes how a ListManager reads its records.
type ListConfig[R any, D any] struct {
	Name     string        // used in notices, e.g. "event"
	ID       func(R) int64 // record id
	DraftOf  func(R) D     // pre-populates the edit form
	Validate func(D) error // required-field check run before saving; optional
}

// State is a snapshot of a ListManager.
type State[D any] struct {
	Mode      Mode
	EditingID int64 // set while editing, and while saving or failing an edit
	Draft     D
	Err       error // last save failure, in Error mode
}

// ListManager is the state machine for one managed list:
// Viewing → Adding | Editing(id) → Saving → Viewing, or → Error → Saving | Viewing.
// INVARIANT: at most one form is open at a time.
type ListManager[R any, D any] struct {
	backend Backend[R, D]
	cfg     ListConfig[R, D]

	mu      sync.Mutex
	mode    Mode
	form    Mode // Adding or Editing while a form is open
	id      int64
	draft   D
	err     error
	items   []R
	notices Notices
}

// NewListManager creates a manager in Viewing mode with no items loaded.
func NewListManager[R any, D any](backend Backend[R, D], cfg ListConfig[R, D]) *ListManager[R, D] {
	if cfg.Name == "" {
		cfg.Name = "item"
	}
	return &ListManager[R, D]{backend: backend, cfg: cfg}
}

// State returns the current state.
func (m *ListManager[R, D]) State() State[D] {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := State[D]{Mode: m.mode, Draft: m.draft, Err: m.err}
	if m.form == Editing {
		st.EditingID = m.id
	}
	return st
}

// Items returns the last loaded list.
func (m *ListManager[R, D]) Items() []R {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]R(nil), m.items...)
}

// Notices returns the notification log.
func (m *ListManager[R, D]) Notices() *Notices {
	return &m.notices
}

// Load fetches the list from the backend.
func (m *ListManager[R, D]) Load(ctx context.Context) error {
	items, err := m.backend.List(ctx)
	if err != nil {
		m.notices.failure(fmt.Sprintf("Could not load %ss", m.cfg.Name), err)
		return err
	}
	m.mu.Lock()
	m.items = items
	m.mu.Unlock()
	return nil
}

// StartAdd opens an empty form.
// PRE: Viewing
func (m *ListManager[R, D]) StartAdd() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != Viewing {
		return ErrBusy
	}
	var zero D
	m.mode, m.form, m.id, m.draft, m.err = Adding, Adding, 0, zero, nil
	return nil
}

// StartEdit opens the form for record id, pre-populated from the record.
// PRE: Viewing
func (m *ListManager[R, D]) StartEdit(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != Viewing {
		return ErrBusy
	}
	for _, it := range m.items {
		if m.cfg.ID(it) == id {
			m.mode, m.form, m.id, m.draft, m.err = Editing, Editing, id, m.cfg.DraftOf(it), nil
			return nil
		}
	}
	return fmt.Errorf("%w: %s %d", ErrUnknownItem, m.cfg.Name, id)
}

// EditDraft changes the open form.
func (m *ListManager[R, D]) EditDraft(fn func(*D)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.mode {
	case Adding, Editing, Error:
		fn(&m.draft)
		return nil
	case Saving:
		return ErrBusy
	}
	return ErrNotEditing
}

// Cancel closes the form and discards the draft.
func (m *ListManager[R, D]) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.mode {
	case Saving:
		return ErrBusy
	case Viewing:
		return nil
	}
	m.reset()
	return nil
}

func (m *ListManager[R, D]) reset() {
	var zero D
	m.mode, m.form, m.id, m.draft, m.err = Viewing, Viewing, 0, zero, nil
}

// Submit validates the draft and saves it.
// POST: on success the form is reset, the list reloaded and the mode is Viewing;
// a failed required-field check keeps the form open in its current mode;
// a failed save moves to Error with the draft retained.
func (m *ListManager[R, D]) Submit(ctx context.Context) error {
	m.mu.Lock()
	switch m.mode {
	case Adding, Editing, Error:
	case Saving:
		m.mu.Unlock()
		return ErrBusy
	default:
		m.mu.Unlock()
		return ErrNotEditing
	}
	draft, form, id := m.draft, m.form, m.id
	if m.cfg.Validate != nil {
		if err := m.cfg.Validate(draft); err != nil {
			m.mu.Unlock()
			m.notices.invalid(err)
			return err
		}
	}
	m.mode = Saving
	m.mu.Unlock()

	var err error
	if form == Adding {
		_, err = m.backend.Create(ctx, draft)
	} else {
		_, err = m.backend.Update(ctx, id, draft)
	}

	if err != nil {
		m.mu.Lock()
		m.mode, m.err = Error, err
		m.mu.Unlock()
		if fields := fieldErrors(err); len(fields) > 0 {
			m.notices.invalid(err)
		} else {
			m.notices.failure(fmt.Sprintf("Could not save %s", m.cfg.Name), err)
		}
		return err
	}

	m.mu.Lock()
	m.reset()
	m.mu.Unlock()
	if form == Adding {
		m.notices.success(fmt.Sprintf("%s added", capitalize(m.cfg.Name)))
	} else {
		m.notices.success(fmt.Sprintf("%s updated", capitalize(m.cfg.Name)))
	}
	_ = m.Load(ctx)
	return nil
}

// Delete removes record id after confirm approves it. The mode is Saving during the call
// and Viewing afterwards, whatever the outcome.
// PRE: Viewing
func (m *ListManager[R, D]) Delete(ctx context.Context, id int64, confirm func(R) bool) error {
	m.mu.Lock()
	if m.mode != Viewing {
		m.mu.Unlock()
		return ErrBusy
	}
	var target *R
	for i := range m.items {
		if m.cfg.ID(m.items[i]) == id {
			it := m.items[i]
			target = &it
			break
		}
	}
	if target == nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s %d", ErrUnknownItem, m.cfg.Name, id)
	}
	m.mu.Unlock()

	if confirm == nil || !confirm(*target) {
		return ErrNotConfirmed
	}

	m.mu.Lock()
	if m.mode != Viewing {
		m.mu.Unlock()
		return ErrBusy
	}
	m.mode = Saving
	m.mu.Unlock()

	err := m.backend.Remove(ctx, id)

	m.mu.Lock()
	m.mode = Viewing
	m.mu.Unlock()
	if err != nil {
		m.notices.failure(fmt.Sprintf("Could not delete %s", m.cfg.Name), err)
		return err
	}
	m.notices.success(fmt.Sprintf("%s deleted", capitalize(m.cfg.Name)))
	_ = m.Load(ctx)
	return nil
}

// fieldErrors extracts field-level failures from local validation or an API error.
func fieldErrors(err error) validation.Errors {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return verrs
	}
	var fe interface{ FieldErrors() validation.Errors }
	if errors.As(err, &fe) {
		return fe.FieldErrors()
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
