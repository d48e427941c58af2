package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// PollScheduler paces the watcher loop with a constant delay between cycles.
// The delay is measured from the end of the previous cycle, not from its start,
// so a slow cycle never causes the next one to run early.
type PollScheduler struct {
	schedule cron.ConstantDelaySchedule
	now      func() time.Time
}

// NewPollScheduler creates a scheduler firing interval after each call to Wait.
// Intervals are truncated to whole seconds, with a one second minimum.
func NewPollScheduler(interval time.Duration) *PollScheduler {
	return &PollScheduler{
		schedule: cron.Every(interval),
		now:      time.Now,
	}
}

// Delay is the effective wait between cycles.
func (s *PollScheduler) Delay() time.Duration {
	return s.schedule.Delay
}

// Next reports when the next cycle is due if the current one ended now.
// Unlike schedule.Next it does not snap to a second boundary.
func (s *PollScheduler) Next() time.Time {
	return s.now().Add(s.schedule.Delay)
}

// Wait blocks for the full delay or until ctx is done.
func (s *PollScheduler) Wait(ctx context.Context) error {
	timer := time.NewTimer(s.schedule.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
