package worker

import (
	"context"
	"log/slog"
	"time"
)

// RateRefresher is the part of the currency converter the worker drives.
type RateRefresher interface {
	EnsureFresh(ctx context.Context, maxAge time.Duration, suppressErrors bool) bool
	Refresh(ctx context.Context) bool
}

// RateWorker keeps exchange rates fresh in the background.
type RateWorker struct {
	rates    RateRefresher
	interval time.Duration
	maxAge   time.Duration
}

// NewRateWorker creates a new RateWorker.
func NewRateWorker(rates RateRefresher, interval, maxAge time.Duration) *RateWorker {
	return &RateWorker{
		rates:    rates,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Run starts the refresh loop. It blocks until the context is cancelled.
// While only fallback rates are available every tick retries the provider.
func (w *RateWorker) Run(ctx context.Context) {
	slog.Info("RateWorker: starting", "interval", w.interval, "max_age", w.maxAge)

	live := w.rates.EnsureFresh(ctx, w.maxAge, true)
	if !live {
		slog.Warn("RateWorker: initial refresh fell back to approximate rates")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("RateWorker: shutting down")
			return
		case <-ticker.C:
			if live {
				live = w.rates.EnsureFresh(ctx, w.maxAge, true)
			} else {
				live = w.rates.Refresh(ctx)
			}
			if live {
				slog.Debug("RateWorker: live rates in use")
			} else {
				slog.Warn("RateWorker: provider unavailable, using fallback rates")
			}
		}
	}
}
