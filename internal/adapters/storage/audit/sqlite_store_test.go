package audit

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"storefront/internal/adapters/storage"
	domain "storefront/internal/domain/audit"
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

var base = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

// TestSQLiteStore_SaveThenList tests that entries read back newest first with every field intact.
func TestSQLiteStore_SaveThenList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	login := domain.New("admin", domain.CategoryAuth, domain.ActionLogin, base).WithRequest("10.0.0.1", "curl/8")
	create := domain.New("admin", domain.CategoryEvent, domain.ActionCreate, base.Add(time.Minute)).
		WithResource("event", "3").WithDescription("Fall Harvest Festival")
	for _, e := range []domain.Entry{login, create} {
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := s.List(ctx, Filter{}, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != create.ID || got[1].ID != login.ID {
		t.Fatalf("expected newest first, got %s then %s", got[0].Action, got[1].Action)
	}
	if !got[0].At.Equal(create.At) || got[0].ResourceID != "3" || got[0].Description != "Fall Harvest Festival" {
		t.Errorf("create entry did not round-trip: %+v", got[0])
	}
	if got[1].IPAddress != "10.0.0.1" || got[1].UserAgent != "curl/8" || got[1].Severity != domain.SeverityInfo {
		t.Errorf("login entry did not round-trip: %+v", got[1])
	}
}

// TestSQLiteStore_FilterAndPage tests category and actor filters with limit/offset paging.
func TestSQLiteStore_FilterAndPage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		e := domain.New("admin", domain.CategoryEvent, domain.ActionUpdate, base.Add(time.Duration(i)*time.Minute))
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	failed := domain.New("", domain.CategoryAuth, domain.ActionLoginFailed, base).WithSeverity(domain.SeverityWarning)
	if err := s.Save(ctx, failed); err != nil {
		t.Fatalf("save: %v", err)
	}

	cat := domain.CategoryEvent
	n, err := s.Count(ctx, Filter{Category: &cat})
	if err != nil || n != 5 {
		t.Fatalf("expected 5 event entries, got %d (%v)", n, err)
	}
	page, err := s.List(ctx, Filter{Category: &cat}, 2, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 || !page[0].At.Equal(base.Add(2*time.Minute)) {
		t.Errorf("unexpected page %+v", page)
	}

	anon := ""
	got, err := s.List(ctx, Filter{Actor: &anon}, 10, 0)
	if err != nil || len(got) != 1 || got[0].Severity != domain.SeverityWarning {
		t.Errorf("expected the failed login, got %+v (%v)", got, err)
	}
	if total, _ := s.Count(ctx, Filter{}); total != 6 {
		t.Errorf("expected 6 entries, got %d", total)
	}
}

func TestFilter_Where(t *testing.T) {
	cat := domain.CategoryOutbox
	actor := "admin"
	clause, args := Filter{Category: &cat, Actor: &actor}.Where(func(n int) string { return fmt.Sprintf("$%d", n) })
	if clause != " WHERE 1=1 AND category = $1 AND actor = $2" {
		t.Errorf("unexpected clause %q", clause)
	}
	if len(args) != 2 || args[0] != "outbox" || args[1] != "admin" {
		t.Errorf("unexpected args %v", args)
	}
}
