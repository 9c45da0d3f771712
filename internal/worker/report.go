package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/mtlprog/assettrack/internal/report"
)

// ReportBuilder builds asset reports.
type ReportBuilder interface {
	Build(ctx context.Context) report.Report
}

// ReportPublisher receives each generated report.
type ReportPublisher interface {
	Write(ctx context.Context, r report.Report) error
}

// ReportWorker periodically rebuilds the asset report and publishes it.
type ReportWorker struct {
	builder   ReportBuilder
	publisher ReportPublisher
	interval  time.Duration
}

// NewReportWorker creates a new ReportWorker.
func NewReportWorker(builder ReportBuilder, publisher ReportPublisher, interval time.Duration) *ReportWorker {
	return &ReportWorker{
		builder:   builder,
		publisher: publisher,
		interval:  interval,
	}
}

func (w *ReportWorker) publish(ctx context.Context) {
	r := w.builder.Build(ctx)
	if err := w.publisher.Write(ctx, r); err != nil {
		slog.Error("ReportWorker: publish failed", "error", err)
		return
	}
	slog.Info("ReportWorker: report published", "assets", len(r.Rows), "live_rates", r.LiveRates)
}

// Run starts the report worker loop. It blocks until the context is cancelled.
func (w *ReportWorker) Run(ctx context.Context) {
	slog.Info("ReportWorker: starting", "interval", w.interval)

	// Publish immediately on startup
	w.publish(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ReportWorker: shutting down")
			return
		case <-ticker.C:
			w.publish(ctx)
		}
	}
}
