package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Hook releases one resource during shutdown.
type Hook func(context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Handler coordinates graceful shutdown of the gateway. Hooks run in
// reverse registration order so dependents stop before their
// dependencies (HTTP server before registries, registries before
// stores).
type Handler struct {
	timeout time.Duration
	logger  *slog.Logger

	mu    sync.Mutex
	hooks []namedHook
	done  chan struct{}
}

// NewHandler creates a shutdown handler. The timeout bounds the total
// time spent running hooks.
func NewHandler(timeout time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		timeout: timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// OnShutdown registers a named hook.
func (h *Handler) OnShutdown(name string, fn Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, namedHook{name: name, fn: fn})
}

// Wait blocks until SIGINT or SIGTERM, then runs all hooks. It returns
// the last hook error, if any.
func (h *Handler) Wait() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	signal.Stop(sigCh)

	h.logger.Info("shutdown signal received", "signal", sig.String())
	return h.Run()
}

// Run executes all hooks immediately without waiting for a signal.
func (h *Handler) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	hooks := make([]namedHook, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	var lastErr error
	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		if err := hook.fn(ctx); err != nil {
			h.logger.Error("shutdown hook failed", "hook", hook.name, "error", err)
			lastErr = err
			continue
		}
		h.logger.Debug("shutdown hook completed", "hook", hook.name)
	}

	close(h.done)
	return lastErr
}

// Done closes when shutdown has finished.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
