package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/adapters/email"
	outboxStore "storefront/internal/adapters/storage/outbox"
	"storefront/internal/domain/outbox"
)

type scriptedExecutor struct {
	errs  []error // returned in order; nil once exhausted
	calls int
}

func (e *scriptedExecutor) Execute(_ context.Context, _ string) (string, error) {
	e.calls++
	if len(e.errs) > 0 {
		err := e.errs[0]
		e.errs = e.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return "msg-ok", nil
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func newProcessorFixture(t *testing.T, exec ActionExecutor) (*OutboxProcessor, *outboxStore.SQLiteStore, *testClock) {
	store := outboxStore.NewSQLiteStore(openTestDB(t))
	clock := &testClock{t: testNow}
	p := NewOutboxProcessor(store, map[string]ActionExecutor{outbox.ActionTypeContactEmail: exec},
		WithBackoff(time.Minute, 10*time.Minute), WithClock(clock.Now))
	return p, store, clock
}

func queue(t *testing.T, store *outboxStore.SQLiteStore, id, action string, maxAttempts int) {
	t.Helper()
	e := outbox.Entry{ID: id, ActionType: action, Payload: `{}`, MaxAttempts: maxAttempts, CreatedAt: testNow}
	if err := e.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(context.Background(), e); err != nil {
		t.Fatal(err)
	}
}

// TestOutboxProcessor_Success tests delivery of a pending entry.
func TestOutboxProcessor_Success(t *testing.T) {
	exec := &scriptedExecutor{}
	p, store, _ := newProcessorFixture(t, exec)
	ctx := context.Background()
	queue(t, store, "o1", outbox.ActionTypeContactEmail, 3)

	res, err := p.ProcessPending(ctx)
	if err != nil || res.Succeeded != 1 || res.Attempted != 1 {
		t.Fatalf("ProcessPending = %+v, %v", res, err)
	}
	got, _ := store.GetByID(ctx, "o1")
	if got.Status != outbox.StatusDone || got.ExternalID != "msg-ok" || got.Attempts != 1 {
		t.Errorf("entry = %+v", got)
	}
	if res, _ := p.ProcessPending(ctx); res.Attempted != 0 {
		t.Errorf("done entries should not be retried: %+v", res)
	}
}

// TestOutboxProcessor_BackoffThenFail tests backoff skipping and exhaustion.
func TestOutboxProcessor_BackoffThenFail(t *testing.T) {
	boom := errors.New("provider down")
	exec := &scriptedExecutor{errs: []error{boom, boom}}
	p, store, clock := newProcessorFixture(t, exec)
	ctx := context.Background()
	queue(t, store, "o1", outbox.ActionTypeContactEmail, 2)

	res, _ := p.ProcessPending(ctx)
	if res.Failed != 1 {
		t.Fatalf("first pass = %+v", res)
	}
	got, _ := store.GetByID(ctx, "o1")
	if got.Status != outbox.StatusRetrying || got.ErrorMessage != "provider down" {
		t.Fatalf("after first failure: %+v", got)
	}

	// 2^1 * 1m backoff has not elapsed.
	clock.t = clock.t.Add(time.Minute)
	if res, _ := p.ProcessPending(ctx); res.Skipped != 1 || res.Attempted != 0 {
		t.Fatalf("expected skip during backoff, got %+v", res)
	}

	clock.t = clock.t.Add(time.Minute)
	if res, _ := p.ProcessPending(ctx); res.Failed != 1 {
		t.Fatalf("second attempt = %+v", res)
	}
	got, _ = store.GetByID(ctx, "o1")
	if got.Status != outbox.StatusFailed || !got.IsTerminal() {
		t.Errorf("entry should be failed: %+v", got)
	}
	if failed, _ := store.ListFailed(ctx, 10); len(failed) != 1 {
		t.Errorf("ListFailed = %d, want 1", len(failed))
	}
	if exec.calls != 2 {
		t.Errorf("executor calls = %d, want 2", exec.calls)
	}
}

// TestOutboxProcessor_UnknownAction tests that entries without an executor fail permanently.
func TestOutboxProcessor_UnknownAction(t *testing.T) {
	p, store, _ := newProcessorFixture(t, &scriptedExecutor{})
	ctx := context.Background()
	queue(t, store, "o1", "fax", 5)

	if res, _ := p.ProcessPending(ctx); res.Failed != 1 {
		t.Fatalf("ProcessPending = %+v", res)
	}
	got, _ := store.GetByID(ctx, "o1")
	if got.Status != outbox.StatusFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
}

// TestOutboxProcessor_ProcessSingleAndAbandon tests the admin retry and abandon actions.
func TestOutboxProcessor_ProcessSingleAndAbandon(t *testing.T) {
	boom := errors.New("provider down")
	exec := &scriptedExecutor{errs: []error{boom}}
	p, store, _ := newProcessorFixture(t, exec)
	ctx := context.Background()
	queue(t, store, "o1", outbox.ActionTypeContactEmail, 1)
	queue(t, store, "o2", outbox.ActionTypeContactEmail, 1)

	p.ProcessSingle(ctx, "o1")
	got, _ := store.GetByID(ctx, "o1")
	if got.Status != outbox.StatusFailed {
		t.Fatalf("after failing single attempt: %+v", got)
	}

	got, err := p.ProcessSingle(ctx, "o1")
	if err != nil || got.Status != outbox.StatusDone || got.Attempts != 2 {
		t.Errorf("manual retry = %+v, %v", got, err)
	}
	if _, err := p.ProcessSingle(ctx, "o1"); !errors.Is(err, ErrNotRetryable) {
		t.Errorf("retrying a done entry: got %v, want ErrNotRetryable", err)
	}

	if err := p.AbandonEntry(ctx, "o2"); err != nil {
		t.Fatalf("AbandonEntry: %v", err)
	}
	if pending, _ := store.ListPending(ctx, 10); len(pending) != 0 {
		t.Errorf("pending = %+v, want none", pending)
	}
}

// TestOutboxProcessor_MailEndToEnd tests the queued contact mail reaching the sender.
func TestOutboxProcessor_MailEndToEnd(t *testing.T) {
	db := openTestDB(t)
	sender := email.NewNoopSender()
	ob := outboxStore.NewSQLiteStore(db)
	ctx := context.Background()

	_, err := ExecuteSubmitContact(ctx, SubmitContactInput{Name: "Ann", Email: "ann@example.com", Subject: "Hours", Message: "Open late?"},
		SubmitContactDeps{InquiryStore: newInquiryStoreOn(db), OutboxStore: ob, GenerateID: sequentialIDs(), Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}

	p := NewOutboxProcessor(ob, MailExecutors(sender, MailConfig{StoreName: "Adams Shore Supermarket", Inbox: "info@example.com"}))
	if res, err := p.ProcessPending(ctx); err != nil || res.Succeeded != 1 {
		t.Fatalf("ProcessPending = %+v, %v", res, err)
	}
	sent := sender.Sent()
	if len(sent) != 1 || sent[0].To[0] != "info@example.com" || sent[0].ReplyTo != "ann@example.com" {
		t.Errorf("sent = %+v", sent)
	}
}
