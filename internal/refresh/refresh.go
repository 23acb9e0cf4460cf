// Package refresh keeps the engine's hazard snapshot warm between requests.
package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hazard-advisory/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Target is refreshed on every tick.
type Target interface {
	RefreshHazards(ctx context.Context) error
}

// Refresher periodically refreshes a Target, retrying failed refreshes with
// exponential backoff.
type Refresher struct {
	target   Target
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Refresher. A nil clock uses the real clock.
func New(target Target, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Refresher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Refresher{
		target:   target,
		interval: interval,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run refreshes immediately and then on every interval until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("hazard refresher started", "interval", r.interval)
	r.metrics.RefreshRunning.Set(1)
	defer r.metrics.RefreshRunning.Set(0)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if !r.refreshWithBackoff(ctx) {
			r.logger.Info("hazard refresher stopping", "reason", ctx.Err())
			return nil
		}

		select {
		case <-ctx.Done():
			r.logger.Info("hazard refresher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// refreshWithBackoff retries until one refresh succeeds. It returns false if
// ctx ends first.
func (r *Refresher) refreshWithBackoff(ctx context.Context) bool {
	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		err := r.target.RefreshHazards(ctx)
		if err == nil {
			if attempt > 1 {
				r.logger.Info("hazard refresh recovered", "attempts", attempt)
			}
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		r.logger.Error("hazard refresh failed", "error", err, "attempt", attempt, "retry_in", backoff)
		if !sleepWithContext(ctx, r.clock, backoff) {
			return false
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

// sleepWithContext is retry.SleepWithContext driven by clock.
func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
