package activity

import (
	"context"
	"log/slog"
	"time"

	"civreg/internal/platform/metrics"
)

// Worker runs the retention cleanup: entries older than the retention window
// are bulk-deleted on a fixed interval. Entries are otherwise immutable.
type Worker struct {
	store     Store
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewWorker(store Store, retention, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *Worker {
	return &Worker{
		store:     store,
		retention: retention,
		interval:  interval,
		logger:    logger,
		metrics:   m,
	}
}

// Run blocks until ctx is canceled, pruning once immediately and then on
// every interval tick.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.pruneOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.pruneOnce(ctx)
		}
	}
}

func (w *Worker) pruneOnce(ctx context.Context) {
	cutoff := time.Now().Add(-w.retention)
	removed, err := w.store.Prune(ctx, cutoff)
	if err != nil {
		w.logger.ErrorContext(ctx, "activity retention prune failed", "error", err)
		return
	}
	w.metrics.AddActivityPruned(removed)
	if removed > 0 {
		w.logger.InfoContext(ctx, "activity retention prune",
			"removed", removed,
			"cutoff", cutoff,
		)
	}
}
