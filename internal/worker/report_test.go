package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mtlprog/assettrack/internal/report"
)

type mockReportBuilder struct {
	callCount atomic.Int32
}

func (m *mockReportBuilder) Build(_ context.Context) report.Report {
	m.callCount.Add(1)
	return report.Report{LiveRates: true}
}

type mockPublisher struct {
	callCount atomic.Int32
	err       error
}

func (m *mockPublisher) Write(_ context.Context, r report.Report) error {
	m.callCount.Add(1)
	return m.err
}

func TestReportWorkerRunsAndShutdown(t *testing.T) {
	builder := &mockReportBuilder{}
	publisher := &mockPublisher{}
	w := NewReportWorker(builder, publisher, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	if got := builder.callCount.Load(); got < 2 {
		t.Errorf("build count = %d, want >= 2", got)
	}
	if got, built := publisher.callCount.Load(), builder.callCount.Load(); got != built {
		t.Errorf("publish count = %d, want %d", got, built)
	}
}

func TestReportWorkerKeepsRunningAfterPublishError(t *testing.T) {
	builder := &mockReportBuilder{}
	publisher := &mockPublisher{err: errors.New("sheets unavailable")}
	w := NewReportWorker(builder, publisher, 30*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	if got := publisher.callCount.Load(); got < 2 {
		t.Errorf("publish count = %d, want >= 2", got)
	}
}
