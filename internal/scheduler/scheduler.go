// Package scheduler runs the refresh cycle on a fixed, adjustable interval.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pfrederiksen/cricscore/internal/logger"
)

// Job is one refresh cycle
type Job func(ctx context.Context) error

// Scheduler runs a Job immediately and then once per interval
type Scheduler struct {
	job      Job
	mu       sync.Mutex
	interval time.Duration
	reset    chan time.Duration
}

// New creates a scheduler; interval must be positive
func New(job Job, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid refresh interval: %s", interval)
	}
	return &Scheduler{
		job:      job,
		interval: interval,
		reset:    make(chan time.Duration, 1),
	}, nil
}

// Interval returns the current refresh interval
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval changes the interval; the next run happens one new interval from now
func (s *Scheduler) SetInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("invalid refresh interval: %s", d)
	}

	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()

	// Only the latest pending change matters
	for {
		select {
		case s.reset <- d:
			return nil
		default:
			select {
			case <-s.reset:
			default:
			}
		}
	}
}

// Run executes the job until ctx is cancelled. A failing job is logged and
// the loop keeps going.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval())
	defer ticker.Stop()

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d := <-s.reset:
			ticker.Reset(d)
			logger.Info("refresh interval changed", logger.Fields{"interval": d.String()})
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	logger.IncrCounter("refresh.runs")
	start := time.Now()

	if err := s.job(ctx); err != nil {
		logger.IncrCounter("refresh.errors")
		logger.Error("refresh failed", logger.Fields{"duration": time.Since(start).String()}, err)
		return
	}

	logger.RecordTiming("refresh.cycle", time.Since(start))
}
