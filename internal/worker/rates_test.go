package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type mockRefresher struct {
	live         atomic.Bool
	ensureCalls  atomic.Int32
	refreshCalls atomic.Int32
}

func (m *mockRefresher) EnsureFresh(_ context.Context, _ time.Duration, _ bool) bool {
	m.ensureCalls.Add(1)
	return m.live.Load()
}

func (m *mockRefresher) Refresh(_ context.Context) bool {
	m.refreshCalls.Add(1)
	return m.live.Load()
}

func TestRateWorkerRunsAndShutdown(t *testing.T) {
	mock := &mockRefresher{}
	mock.live.Store(true)
	w := NewRateWorker(mock, 20*time.Millisecond, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	if got := mock.ensureCalls.Load(); got < 2 {
		t.Errorf("EnsureFresh calls = %d, want >= 2", got)
	}
	if got := mock.refreshCalls.Load(); got != 0 {
		t.Errorf("Refresh calls = %d, want 0 while live", got)
	}
}

func TestRateWorkerRetriesWhileOnFallback(t *testing.T) {
	mock := &mockRefresher{}
	w := NewRateWorker(mock, 20*time.Millisecond, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	if got := mock.ensureCalls.Load(); got != 1 {
		t.Errorf("EnsureFresh calls = %d, want only the initial one", got)
	}
	if got := mock.refreshCalls.Load(); got < 1 {
		t.Errorf("Refresh calls = %d, want >= 1", got)
	}
}
