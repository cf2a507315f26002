package outbox

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"storefront/internal/adapters/storage"
	domain "storefront/internal/domain/outbox"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLiteStore(db)
}

var base = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func newEntry(id string, created time.Time) domain.Entry {
	return domain.Entry{ID: id, ActionType: domain.ActionTypeContactEmail, Payload: `{"to":["a@b.c"]}`,
		Status: domain.StatusPending, MaxAttempts: 2, CreatedAt: created}
}

// TestSQLiteStore_SaveAndGet tests insert, update and read back.
func TestSQLiteStore_SaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e := newEntry("o1", base)
	if err := s.Save(ctx, e); err != nil {
		t.Fatalf("Save: %v", err)
	}
	e.MarkAttempt(base.Add(time.Minute))
	e.MarkSuccess("msg_123")
	if err := s.Save(ctx, e); err != nil {
		t.Fatalf("Save update: %v", err)
	}

	got, err := s.GetByID(ctx, "o1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.StatusDone || got.ExternalID != "msg_123" || got.Attempts != 1 {
		t.Errorf("unexpected entry: %+v", got)
	}
	if !got.LastAttemptedAt.Equal(base.Add(time.Minute)) || !got.CreatedAt.Equal(base) {
		t.Errorf("timestamps lost: %+v", got)
	}

	if _, err := s.GetByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestSQLiteStore_ListPendingAndFailed tests status filtering.
func TestSQLiteStore_ListPendingAndFailed(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	pending := newEntry("p", base)
	retrying := newEntry("r", base.Add(time.Second))
	retrying.MarkAttempt(base)
	failed := newEntry("f", base.Add(2*time.Second))
	failed.MarkAttempt(base)
	failed.MarkAttempt(base)
	failed.MarkFailed(errors.New("boom"))
	done := newEntry("d", base.Add(3*time.Second))
	done.MarkSuccess("x")
	for _, e := range []domain.Entry{pending, retrying, failed, done} {
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("Save %s: %v", e.ID, err)
		}
	}

	list, err := s.ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(list) != 2 || list[0].ID != "p" || list[1].ID != "r" {
		t.Errorf("ListPending = %+v", list)
	}

	failedList, err := s.ListFailed(ctx, 10)
	if err != nil {
		t.Fatalf("ListFailed: %v", err)
	}
	if len(failedList) != 1 || failedList[0].ErrorMessage != "boom" {
		t.Errorf("ListFailed = %+v", failedList)
	}

	counts, err := s.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[domain.StatusPending] != 1 || counts[domain.StatusRetrying] != 1 || counts[domain.StatusFailed] != 1 || counts[domain.StatusDone] != 1 {
		t.Errorf("counts = %v", counts)
	}

	if err := s.Delete(ctx, "d"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetByID(ctx, "d"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected deleted entry to be gone, got %v", err)
	}
}
