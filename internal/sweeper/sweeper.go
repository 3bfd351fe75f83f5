// Package sweeper runs the background job that removes expired stories.
package sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"socialhub/internal/observability"

	"github.com/go-co-op/gocron/v2"
)

const operation = "story.sweep"

// ExpiredSweeper deletes records past their expiry and reports how many went.
type ExpiredSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

type Sweeper struct {
	target    ExpiredSweeper
	interval  time.Duration
	timeout   time.Duration
	scheduler gocron.Scheduler
	stopOnce  sync.Once
	stopErr   error
}

func New(target ExpiredSweeper, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	timeout := interval
	if timeout > 5*time.Minute {
		timeout = 5 * time.Minute
	}
	return &Sweeper{target: target, interval: interval, timeout: timeout}
}

// Start schedules the sweep every interval, beginning immediately. The
// scheduler stops when ctx is cancelled or Shutdown is called.
func (s *Sweeper) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return fmt.Errorf("failed to create sweeper scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}
			s.RunOnce(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule story sweep: %w", err)
	}

	s.scheduler = scheduler
	scheduler.Start()

	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()
	return nil
}

// RunOnce performs a single sweep and returns the number of removed records.
func (s *Sweeper) RunOnce(ctx context.Context) int64 {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	started := time.Now()
	observability.LogAsyncOperationStart(runCtx, operation, nil)
	removed, err := s.target.SweepExpired(runCtx)
	fields := map[string]interface{}{
		"removed":     removed,
		"duration_ms": time.Since(started).Milliseconds(),
	}
	if err != nil {
		observability.LogAsyncOperationError(runCtx, operation, err, fields)
		return removed
	}
	observability.LogAsyncOperationEnd(runCtx, operation, fields)
	return removed
}

func (s *Sweeper) Shutdown() error {
	if s.scheduler == nil {
		return nil
	}
	s.stopOnce.Do(func() { s.stopErr = s.scheduler.Shutdown() })
	return s.stopErr
}
