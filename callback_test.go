package scanboard

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWithRefreshCallback_InvokedOnRefresh(t *testing.T) {
	var callCount atomic.Int32

	sb := newTestBoard(t,
		WithRefreshCallback(func(r RefreshResult) { callCount.Add(1) }),
		WithRefreshInterval(50*time.Millisecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = sb.Start(ctx)

	// one country list and two summaries per cycle
	if callCount.Load() < 3 {
		t.Errorf("callback invoked %d times, want at least 3", callCount.Load())
	}
}

func TestWithRefreshCallback_ReceivesCorrectFields(t *testing.T) {
	var mu sync.Mutex
	results := make(map[string]RefreshResult)
	done := make(chan struct{})

	cb := func(r RefreshResult) {
		mu.Lock()
		defer mu.Unlock()
		if _, seen := results[r.Country]; seen {
			return
		}
		results[r.Country] = r
		if len(results) == 3 {
			close(done)
		}
	}

	sb := newTestBoard(t, WithRefreshCallback(cb))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = sb.Start(ctx)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for callbacks")
	}
	cancel()

	mu.Lock()
	defer mu.Unlock()

	list := results[""]
	if len(list.Countries) != 2 || list.Summary != nil {
		t.Errorf("country list result = %+v", list)
	}

	is := results["IS"]
	if is.Summary == nil {
		t.Fatal("IS result has no summary")
	}
	if is.Summary.IPsScanned != 100 || is.Summary.Country != "IS" {
		t.Errorf("IS summary = %+v", *is.Summary)
	}
	if is.RefreshedAt.IsZero() {
		t.Error("RefreshedAt should not be zero")
	}
	if is.Err != nil {
		t.Errorf("Err = %v, want nil", is.Err)
	}
}

func TestWithRefreshCallback_PanicRecovery(t *testing.T) {
	var normalCalled atomic.Bool

	// use a logger that captures output to verify panic was logged
	var logBuf bytes.Buffer
	var logMu sync.Mutex
	logger := slog.New(slog.NewTextHandler(&lockedWriter{w: &logBuf, mu: &logMu}, nil))

	sb := newTestBoard(t,
		WithRefreshCallback(func(r RefreshResult) { panic("intentional test panic") }),
		WithRefreshCallback(func(r RefreshResult) { normalCalled.Store(true) }),
		WithLogger(logger),
		WithRefreshInterval(50*time.Millisecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	// should not panic
	if err := sb.Start(ctx); err != nil {
		t.Errorf("Start() error = %v, want nil", err)
	}

	if !normalCalled.Load() {
		t.Error("subsequent callbacks should still run after panic")
	}

	logMu.Lock()
	defer logMu.Unlock()
	if !bytes.Contains(logBuf.Bytes(), []byte("refresh callback panicked")) {
		t.Error("panic should have been logged")
	}
}

func TestWithRefreshCallback_ExecutionOrder(t *testing.T) {
	var order []int
	var mu sync.Mutex

	record := func(n int) func(RefreshResult) {
		return func(RefreshResult) {
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
		}
	}

	sb := newTestBoard(t,
		WithRefreshCallback(record(1)),
		WithRefreshCallback(record(2)),
		WithRefreshCallback(record(3)),
		WithRefreshInterval(50*time.Millisecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_ = sb.Start(ctx)

	mu.Lock()
	defer mu.Unlock()

	if len(order) < 3 {
		t.Fatalf("expected at least 3 callback invocations, got %d", len(order))
	}

	// verify order is always 1, 2, 3, 1, 2, 3, ...
	for i := 0; i < len(order); i++ {
		expected := (i % 3) + 1
		if order[i] != expected {
			t.Errorf("order[%d] = %d, want %d (callbacks should execute in registration order)", i, order[i], expected)
		}
	}
}

func TestWithRefreshCallback_FailingSource(t *testing.T) {
	src := &stubSource{countries: []string{"IS"}}
	src.setFail(errors.New("summary table missing"))

	var result RefreshResult
	var mu sync.Mutex
	done := make(chan struct{})

	cb := func(r RefreshResult) {
		mu.Lock()
		defer mu.Unlock()
		if r.Country == "IS" && result.Country == "" {
			result = r
			close(done)
		}
	}

	sb, err := New(
		WithSource(src),
		WithRefreshCallback(cb),
		WithLogger(testLogger()),
		WithPort(freePort(t)),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = sb.Start(ctx)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for callback")
	}
	cancel()

	mu.Lock()
	defer mu.Unlock()

	if result.Err == nil {
		t.Error("Err should not be nil for a failing source")
	}
	if result.Summary != nil {
		t.Error("Summary should be nil for a failed refresh")
	}
}

// lockedWriter serializes writes so the buffer can be read after Start.
type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
