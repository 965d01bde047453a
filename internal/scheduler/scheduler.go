package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Engine is the weekly generation entrypoint driven by the scheduler.
type Engine interface {
	Run(ctx context.Context, now time.Time) error
}

// Options tunes the weekly scheduler.
type Options struct {
	// PollInterval is how often the scheduler checks whether the weekly
	// window has opened. Defaults to one hour.
	PollInterval time.Duration
	// RunOnStart triggers a generation pass immediately when Start is
	// called, so a freshly deployed instance does not wait a week.
	RunOnStart bool
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Scheduler fires the insight engine once per week, on Monday at 02:00 in
// the local timezone. Catch-up is handled by the optional startup run; the
// poll loop itself never fires twice for the same week.
type Scheduler struct {
	engine  Engine
	opts    Options
	logger  zerolog.Logger
	stopped chan struct{}
}

func New(engine Engine, opts Options, logger zerolog.Logger) *Scheduler {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{
		engine:  engine,
		opts:    opts,
		logger:  logger.With().Str("component", "scheduler").Logger(),
		stopped: make(chan struct{}),
	}
}

// Start runs the scheduling loop until ctx is cancelled. It blocks, so
// callers typically run it in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	defer close(s.stopped)

	var lastFired time.Time
	if s.opts.RunOnStart {
		now := s.opts.Now()
		s.fire(ctx, now)
		if isWeeklySlot(now) {
			lastFired = now
		}
	}

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			now := s.opts.Now()
			if !isWeeklySlot(now) {
				continue
			}
			if sameSlot(lastFired, now) {
				continue
			}
			s.fire(ctx, now)
			lastFired = now
		}
	}
}

// Done is closed once Start has returned.
func (s *Scheduler) Done() <-chan struct{} {
	return s.stopped
}

func (s *Scheduler) fire(ctx context.Context, now time.Time) {
	s.logger.Info().Time("at", now).Msg("running weekly insight generation")
	if err := s.engine.Run(ctx, now); err != nil {
		s.logger.Error().Err(err).Msg("weekly insight generation failed")
	}
}

// isWeeklySlot reports whether now falls in the Monday 02:00 hour, local
// time. The poll interval is at most an hour, so checking the hour is enough
// to catch the slot exactly once.
func isWeeklySlot(now time.Time) bool {
	return now.Weekday() == time.Monday && now.Hour() == 2
}

func sameSlot(lastFired, now time.Time) bool {
	if lastFired.IsZero() {
		return false
	}
	y1, w1 := lastFired.ISOWeek()
	y2, w2 := now.ISOWeek()
	return y1 == y2 && w1 == w2
}
