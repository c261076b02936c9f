// Package scheduler runs periodic jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"energydash/internal"
)

// Job is a unit of periodic work. Returned errors are logged.
type Job func(ctx context.Context) error

// parser accepts five-field expressions and descriptors such as @hourly.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom |
	cron.Month | cron.Dow | cron.Descriptor)

// NextRun returns the first activation of spec after from.
func NextRun(spec string, from time.Time) (time.Time, error) {
	schedule, err := parser.Parse(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return schedule.Next(from), nil
}

// Scheduler runs registered jobs until stopped. A job still running when
// its next activation arrives is skipped for that activation.
type Scheduler struct {
	cron   *cron.Cron
	logger *internal.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler
func New(logger *internal.Logger) *Scheduler {
	if logger == nil {
		logger = internal.NopLogger()
	}
	logger = logger.With("scheduler")
	cl := cronLogger{logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job under name. Each run gets a context bounded by timeout
// (no bound when zero) and cancelled when the scheduler stops.
func (s *Scheduler) Add(name, spec string, timeout time.Duration, job Job) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}

	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, timeout, job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	s.logger.Info("scheduled %s (%s)", name, spec)
	return nil
}

// RunNow runs a registered job body immediately on the calling goroutine.
func (s *Scheduler) RunNow(name string, timeout time.Duration, job Job) {
	s.run(name, timeout, job)
}

func (s *Scheduler) run(name string, timeout time.Duration, job Job) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job(ctx); err != nil {
		s.logger.Error("job %s failed after %s: %v", name, time.Since(start).Round(time.Millisecond), err)
		return
	}
	s.logger.Debug("job %s finished in %s", name, time.Since(start).Round(time.Millisecond))
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	logger *internal.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Trace("%s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("%s: %v %v", msg, err, keysAndValues)
}
