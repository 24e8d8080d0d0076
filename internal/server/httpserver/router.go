package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/msjade/esriagol/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler is the gateway request handler with all routes mounted.
	Handler http.Handler

	// Logger for request logging.
	Logger *slog.Logger

	// Metrics records per-request counters and latencies.
	Metrics *metric.Metrics
}

// NewRouter wraps the gateway handler with the middleware stack.
// Order: Recover -> RequestID -> Observe -> Handler.
func NewRouter(cfg *RouterConfig) http.Handler {
	return Chain(cfg.Handler,
		Recover(cfg.Logger),
		RequestID(),
		Observe(cfg.Logger, cfg.Metrics),
	)
}
