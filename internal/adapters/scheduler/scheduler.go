package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultJobTimeout bounds a single job run.
const DefaultJobTimeout = 5 * time.Minute

// JobFunc is one unit of background work.
type JobFunc func(ctx context.Context) error

// Scheduler runs named jobs on cron schedules.
// A job that is still running when its next tick fires is skipped.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	entries map[string]cron.EntryID
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithJobTimeout overrides DefaultJobTimeout.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

// New creates a stopped scheduler.
func New(opts ...Option) *Scheduler {
	logger := slogLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		timeout: DefaultJobTimeout,
		entries: make(map[string]cron.EntryID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers fn under name on spec (standard 5-field cron or @every/@hourly descriptors).
// PRE: name is unique
func (s *Scheduler) Add(name, spec string, fn JobFunc) error {
	if _, dup := s.entries[name]; dup {
		return fmt.Errorf("job %q already registered", name)
	}
	id, err := s.cron.AddFunc(spec, func() { s.run(name, fn) })
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.entries[name] = id
	slog.Info("job_scheduled", "job", name, "spec", spec)
	return nil
}

// Next returns when name runs next. Zero if unknown or not started.
func (s *Scheduler) Next(name string) time.Time {
	id, ok := s.entries[name]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

func (s *Scheduler) run(name string, fn JobFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	start := time.Now()
	if err := fn(ctx); err != nil {
		slog.Error("job_failed", "job", name, "error", err.Error(), "duration_ms", time.Since(start).Milliseconds())
		return
	}
	slog.Debug("job_done", "job", name, "duration_ms", time.Since(start).Milliseconds())
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		slog.Info("scheduler_stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for running jobs: %w", ctx.Err())
	}
}

// slogLogger adapts cron's logger to slog.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron_"+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron_"+msg, append([]any{"error", err}, keysAndValues...)...)
}
