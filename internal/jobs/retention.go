// Package jobs holds the background work run by the worker process.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jusunglee/hangulize/internal/metrics"
)

// Pruner deletes history last used before a cutoff.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Retention removes transcriptions nobody asked for within MaxAge.
type Retention struct {
	pruner Pruner
	maxAge time.Duration
	log    *slog.Logger
	now    func() time.Time
}

func NewRetention(pruner Pruner, maxAge time.Duration, log *slog.Logger) *Retention {
	return &Retention{pruner: pruner, maxAge: maxAge, log: log, now: time.Now}
}

// RunOnce performs a single sweep and returns the number of rows removed.
func (r *Retention) RunOnce(ctx context.Context) (int64, error) {
	start := time.Now()
	defer func() {
		metrics.RetentionCycleDuration.Observe(time.Since(start).Seconds())
	}()

	cutoff := r.now().Add(-r.maxAge)
	n, err := r.pruner.Prune(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	metrics.RetentionDeleted.Add(float64(n))
	r.log.InfoContext(ctx, "retention sweep finished", "cutoff", cutoff, "deleted", n)
	return n, nil
}

// Run sweeps immediately and then every interval until ctx is done.
// Failed sweeps are logged and retried on the next tick.
func (r *Retention) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.log.ErrorContext(ctx, "retention sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			r.log.Info("retention stopped")
			return
		case <-ticker.C:
		}
	}
}
