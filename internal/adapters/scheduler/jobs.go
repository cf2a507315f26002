package scheduler

import (
	"context"
	"log/slog"

	"storefront/internal/application/orchestrators"
)

// Job names.
const (
	JobSessionSweep = "session_sweep"
	JobOutbox       = "outbox"
)

// SessionSweeper purges expired admin sessions.
type SessionSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// OutboxRunner delivers due outbox entries.
type OutboxRunner interface {
	ProcessPending(ctx context.Context) (orchestrators.ProcessResult, error)
}

// SessionSweepJob removes expired sessions so the store does not grow without bound.
func SessionSweepJob(s SessionSweeper) JobFunc {
	return func(ctx context.Context) error {
		n, err := s.Sweep(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			slog.Info("sessions_swept", "count", n)
		}
		return nil
	}
}

// OutboxJob runs one outbox pass.
func OutboxJob(r OutboxRunner) JobFunc {
	return func(ctx context.Context) error {
		_, err := r.ProcessPending(ctx)
		return err
	}
}
