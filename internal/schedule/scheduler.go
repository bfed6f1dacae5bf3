// Package schedule runs the daily reminder reset at a configured local time.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Resetter is a minimal interface for performing the daily reminder reset.
// repo.Repository satisfies this.
type Resetter interface {
	ResetDailyReminders(ctx context.Context) error
}

// resetTimeout bounds a single reset sweep.
const resetTimeout = 30 * time.Second

// Scheduler fires the daily reminder reset once per day at a fixed
// wall-clock time.
type Scheduler struct {
	resetter Resetter
	hour     int
	minute   int
	logger   *slog.Logger

	// now is swappable in tests.
	now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a scheduler that fires at the given "HH:MM" local time.
func New(resetter Resetter, at string, logger *slog.Logger) (*Scheduler, error) {
	hour, minute, err := ParseAt(at)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		resetter: resetter,
		hour:     hour,
		minute:   minute,
		logger:   logger,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// ParseAt parses a "HH:MM" wall-clock time. The layout matches what config
// validation accepts, so a configured value never fails here.
func ParseAt(at string) (hour, minute int, err error) {
	ts, err := time.Parse("15:04", at)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid reset time %q: want HH:MM", at)
	}
	return ts.Hour(), ts.Minute(), nil
}

// Start begins the scheduling loop in a goroutine.
// The loop runs until Stop() is called or the context is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop signals the loop to stop and waits for it to finish.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	for {
		wait := s.untilNext(s.now())
		timer := time.NewTimer(wait)
		s.logger.Debug("next daily reset scheduled", "in", wait.Round(time.Second))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stopCh:
			timer.Stop()
			return
		case <-timer.C:
			s.runReset(ctx)
		}
	}
}

// untilNext returns the duration from now to the next occurrence of the
// configured wall-clock time. A fire time earlier today rolls to tomorrow.
func (s *Scheduler) untilNext(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

func (s *Scheduler) runReset(ctx context.Context) {
	resetCtx, cancel := context.WithTimeout(ctx, resetTimeout)
	defer cancel()

	if err := s.resetter.ResetDailyReminders(resetCtx); err != nil {
		s.logger.Error("daily reminder reset failed", "error", err)
		return
	}
	s.logger.Info("daily reminders reset")
}
