// Package scheduler runs the feed sync pipeline on a fixed interval.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/scanera/product-service/internal/importer"
)

// SyncFunc runs one fetch + import cycle.
type SyncFunc func(ctx context.Context) (importer.Summary, error)

// Scheduler triggers periodic feed syncs. Runs are strictly sequential;
// a tick that fires while a sync is still in flight waits for it.
type Scheduler struct {
	interval time.Duration
	sync     SyncFunc
	logger   zerolog.Logger
}

// New creates a Scheduler. A zero or negative interval disables it.
func New(interval time.Duration, sync SyncFunc, logger zerolog.Logger) *Scheduler {
	return &Scheduler{interval: interval, sync: sync, logger: logger}
}

// Start blocks, running a sync every interval until ctx is cancelled.
// Call it in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info().Msg("Feed sync scheduler disabled")
		return
	}

	s.logger.Info().Dur("interval", s.interval).Msg("Feed sync scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Feed sync scheduler stopped")
			return
		case <-ticker.C:
			summary, err := s.sync(ctx)
			if err != nil {
				s.logger.Error().Err(err).Msg("Scheduled feed sync failed")
				continue
			}
			s.logger.Info().
				Int("created", summary.Created).
				Int("updated", summary.Updated).
				Int("skipped", summary.Skipped).
				Msg("Scheduled feed sync completed")
		}
	}
}
