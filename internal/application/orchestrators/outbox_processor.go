package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	outboxStore "storefront/internal/adapters/storage/outbox"
	domain "storefront/internal/domain/outbox"
)

// ErrNotRetryable is returned by ProcessSingle for delivered or abandoned entries.
var ErrNotRetryable = errors.New("outbox entry cannot be retried")

// ActionExecutor executes a specific type of external action.
type ActionExecutor interface {
	// Execute runs the external action with the given payload.
	// Returns the external ID (the provider message id) and any error.
	Execute(ctx context.Context, payload string) (string, error)
}

// OutboxProcessor delivers queued mail, retrying failures with exponential backoff.
type OutboxProcessor struct {
	store     outboxStore.Store
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	now       func() time.Time
}

// OutboxOption customises an OutboxProcessor.
type OutboxOption func(*OutboxProcessor)

// WithBackoff sets the retry delays.
func WithBackoff(base, max time.Duration) OutboxOption {
	return func(p *OutboxProcessor) {
		p.baseDelay, p.maxDelay = base, max
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) OutboxOption {
	return func(p *OutboxProcessor) { p.now = now }
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store outboxStore.Store, executors map[string]ActionExecutor, opts ...OutboxOption) *OutboxProcessor {
	p := &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: 30 * time.Second,
		maxDelay:  1 * time.Hour,
		batchSize: 25,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessResult summarises one ProcessPending pass.
type ProcessResult struct {
	Attempted int
	Succeeded int
	Failed    int
	Skipped   int // still backing off
}

// ProcessPending attempts every due pending or retrying entry.
// PRE: Context is valid
// POST: attempted entries are saved with their new status
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (ProcessResult, error) {
	var res ProcessResult
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return res, fmt.Errorf("list pending outbox entries: %w", err)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if !entry.IsDue(p.now(), p.baseDelay, p.maxDelay) {
			res.Skipped++
			continue
		}
		res.Attempted++
		ok, err := p.processEntry(ctx, entry)
		if err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err.Error())
		}
		if ok {
			res.Succeeded++
		} else {
			res.Failed++
		}
	}

	if res.Attempted > 0 {
		slog.Info("outbox_processed", "attempted", res.Attempted, "succeeded", res.Succeeded, "failed", res.Failed, "skipped", res.Skipped)
	}
	return res, nil
}

// processEntry attempts one entry and saves the outcome.
// POST: returns true when the action succeeded; the error covers save failures only
func (p *OutboxProcessor) processEntry(ctx context.Context, entry domain.Entry) (bool, error) {
	entry.MarkAttempt(p.now())

	executor, ok := p.executors[entry.ActionType]
	if !ok {
		// Unknown action types fail permanently.
		entry.Attempts = entry.MaxAttempts
		entry.MarkFailed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType))
		return false, p.store.Save(ctx, entry)
	}

	externalID, err := executor.Execute(ctx, entry.Payload)
	succeeded := err == nil
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "attempt", entry.Attempts, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}

	return succeeded, p.store.Save(ctx, entry)
}

// ProcessSingle processes one entry immediately, ignoring backoff (admin retry).
// PRE: entryID is non-empty
// POST: a failed entry gets one more attempt
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) (domain.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.Status == domain.StatusDone || entry.Status == domain.StatusAbandoned {
		return entry, fmt.Errorf("%w: entry %s is %s", ErrNotRetryable, entryID, entry.Status)
	}
	if entry.Attempts >= entry.MaxAttempts {
		entry.MaxAttempts = entry.Attempts + 1
	}

	if _, err := p.processEntry(ctx, entry); err != nil {
		return domain.Entry{}, err
	}
	return p.store.GetByID(ctx, entryID)
}

// AbandonEntry marks an entry as abandoned by admin.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}

	entry.MarkAbandoned()
	if err := p.store.Save(ctx, entry); err != nil {
		return err
	}
	slog.Info("outbox_entry_abandoned", "entry_id", entryID)
	return nil
}
