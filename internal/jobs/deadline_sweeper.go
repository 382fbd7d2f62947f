// Package jobs runs background work next to the HTTP server.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper finalizes in-progress submissions whose deadline has passed.
// services.SubmissionService satisfies it.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// DeadlineSweeper calls SweepExpired on a fixed interval until stopped.
type DeadlineSweeper struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDeadlineSweeper(sweeper Sweeper, interval time.Duration, logger *slog.Logger) *DeadlineSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeadlineSweeper{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger.With("job", "deadline_sweeper"),
	}
}

// Start launches the ticker goroutine. A non-positive interval disables the job.
func (s *DeadlineSweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Deadline sweeper disabled")
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info("Deadline sweeper started", "interval", s.interval)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("Deadline sweeper stopped")
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce performs a single sweep and reports how many submissions it finalized.
func (s *DeadlineSweeper) RunOnce(ctx context.Context) int {
	finalized, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("Deadline sweep failed", "error", err, "finalized", finalized)
		return finalized
	}
	if finalized > 0 {
		s.logger.Info("Expired submissions auto-submitted", "finalized", finalized)
	}
	return finalized
}

// Stop cancels the ticker goroutine and waits for an in-flight sweep.
func (s *DeadlineSweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
