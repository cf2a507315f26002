package adminui

import (
	"context"
	"fmt"
	"sync"
)

// SectionBackend stores a singleton section.
type SectionBackend[T any] interface {
	Get(ctx context.Context) (T, error)
	Save(ctx context.Context, v T) error
}

// FormManager is the state machine for a singleton section:
// Viewing → Editing → Saving → Viewing, or → Error → Saving | Viewing.
type FormManager[T any] struct {
	backend  SectionBackend[T]
	name     string
	validate func(T) error

	mu      sync.Mutex
	mode    Mode
	value   T
	draft   T
	err     error
	notices Notices
}

// NewFormManager creates a manager for the section called name. validate may be nil.
func NewFormManager[T any](backend SectionBackend[T], name string, validate func(T) error) *FormManager[T] {
	return &FormManager[T]{backend: backend, name: name, validate: validate}
}

// Mode returns the current mode.
func (f *FormManager[T]) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Value returns the last loaded or saved value.
func (f *FormManager[T]) Value() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Draft returns the form contents.
func (f *FormManager[T]) Draft() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Err returns the last save failure.
func (f *FormManager[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Notices returns the notification log.
func (f *FormManager[T]) Notices() *Notices {
	return &f.notices
}

// Load fetches the section.
func (f *FormManager[T]) Load(ctx context.Context) error {
	v, err := f.backend.Get(ctx)
	if err != nil {
		f.notices.failure(fmt.Sprintf("Could not load %s", f.name), err)
		return err
	}
	f.mu.Lock()
	f.value = v
	f.mu.Unlock()
	return nil
}

// StartEdit opens the form with the current value.
// PRE: Viewing
func (f *FormManager[T]) StartEdit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode != Viewing {
		return ErrBusy
	}
	f.mode, f.draft, f.err = Editing, f.value, nil
	return nil
}

// EditDraft changes the open form.
func (f *FormManager[T]) EditDraft(fn func(*T)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.mode {
	case Editing, Error:
		fn(&f.draft)
		return nil
	case Saving:
		return ErrBusy
	}
	return ErrNotEditing
}

// Cancel discards the draft.
func (f *FormManager[T]) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode == Saving {
		return ErrBusy
	}
	var zero T
	f.mode, f.draft, f.err = Viewing, zero, nil
	return nil
}

// Submit validates and saves the draft.
func (f *FormManager[T]) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch f.mode {
	case Editing, Error:
	case Saving:
		f.mu.Unlock()
		return ErrBusy
	default:
		f.mu.Unlock()
		return ErrNotEditing
	}
	draft := f.draft
	if f.validate != nil {
		if err := f.validate(draft); err != nil {
			f.mu.Unlock()
			f.notices.invalid(err)
			return err
		}
	}
	f.mode = Saving
	f.mu.Unlock()

	if err := f.backend.Save(ctx, draft); err != nil {
		f.mu.Lock()
		f.mode, f.err = Error, err
		f.mu.Unlock()
		if len(fieldErrors(err)) > 0 {
			f.notices.invalid(err)
		} else {
			f.notices.failure(fmt.Sprintf("Could not save %s", f.name), err)
		}
		return err
	}

	var zero T
	f.mu.Lock()
	f.mode, f.value, f.draft, f.err = Viewing, draft, zero, nil
	f.mu.Unlock()
	f.notices.success(fmt.Sprintf("%s saved", capitalize(f.name)))
	return nil
}
