package worker

import (
	"context"
	"log/slog"
	"time"
)

// PurgeStore defines the store operations needed by the auth purge worker.
type PurgeStore interface {
	PurgeExpiredAuth(ctx context.Context, now time.Time) (int64, error)
}

// AuthPurgeWorker periodically removes expired sessions and stale login
// tokens. Expired rows are already unusable, this just keeps the tables
// from growing without bound.
type AuthPurgeWorker struct {
	store    PurgeStore
	interval time.Duration
}

// NewAuthPurgeWorker creates a worker with the given store and interval.
func NewAuthPurgeWorker(store PurgeStore, interval time.Duration) *AuthPurgeWorker {
	return &AuthPurgeWorker{
		store:    store,
		interval: interval,
	}
}

// Run starts the worker loop. Blocks until ctx is cancelled.
// Does NOT run immediately on start.
func (w *AuthPurgeWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "auth-purge",
		"interval", w.interval.String(),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "auth-purge",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.runPurge(ctx)
		}
	}
}

// runPurge executes a single purge cycle.
func (w *AuthPurgeWorker) runPurge(ctx context.Context) {
	start := time.Now()

	purged, err := w.store.PurgeExpiredAuth(ctx, start.UTC())
	if err != nil {
		// Check for graceful shutdown
		if ctx.Err() != nil {
			return
		}
		slog.Error("auth purge failed",
			"component", "worker",
			"action", "purge_failed",
			"error", err,
		)
		return
	}

	slog.Info("auth purge completed",
		"component", "worker",
		"action", "purge_complete",
		"purged", purged,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
