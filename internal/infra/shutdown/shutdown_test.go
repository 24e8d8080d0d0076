package shutdown

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"syscall"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunReverseOrder(t *testing.T) {
	h := NewHandler(5*time.Second, testLogger())

	var mu sync.Mutex
	var order []string
	record := func(name string) Hook {
		return func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	h.OnShutdown("store", record("store"))
	h.OnShutdown("registry", record("registry"))
	h.OnShutdown("http", record("http"))

	if err := h.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"http", "registry", "store"}
	if len(order) != len(want) {
		t.Fatalf("ran %d hooks, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestRunReturnsLastError(t *testing.T) {
	h := NewHandler(5*time.Second, testLogger())

	wantErr := errors.New("close failed")
	h.OnShutdown("first", func(context.Context) error { return wantErr })
	h.OnShutdown("second", func(context.Context) error { return nil })

	// first registered runs last, so its error is the one returned
	if err := h.Run(); !errors.Is(err, wantErr) {
		t.Errorf("Run() = %v, want %v", err, wantErr)
	}
}

func TestRunClosesDone(t *testing.T) {
	h := NewHandler(time.Second, testLogger())

	select {
	case <-h.Done():
		t.Fatal("done closed before Run")
	default:
	}

	if err := h.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	select {
	case <-h.Done():
	default:
		t.Error("done should be closed after Run")
	}
}

func TestWaitOnSignal(t *testing.T) {
	h := NewHandler(5*time.Second, testLogger())

	var called bool
	var mu sync.Mutex
	h.OnShutdown("hook", func(context.Context) error {
		mu.Lock()
		called = true
		mu.Unlock()
		return nil
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.Wait()
	}()

	time.Sleep(50 * time.Millisecond)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after signal")
	}

	mu.Lock()
	defer mu.Unlock()
	if !called {
		t.Error("hook was not called")
	}
}

func TestConcurrentRegistration(t *testing.T) {
	h := NewHandler(time.Second, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.OnShutdown("hook", func(context.Context) error { return nil })
		}()
	}
	wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.hooks) != 10 {
		t.Errorf("registered %d hooks, want 10", len(h.hooks))
	}
}
