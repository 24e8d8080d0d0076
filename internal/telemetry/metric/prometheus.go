package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all gateway metrics on a private Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts gateway requests by endpoint kind and
	// response status class.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration observes request latency by endpoint kind.
	RequestDuration *prometheus.HistogramVec

	// UpstreamRequestsTotal counts upstream calls by kind (auth, query,
	// style, tile) and outcome.
	UpstreamRequestsTotal *prometheus.CounterVec

	// TokenRefreshes counts upstream token exchanges.
	TokenRefreshes prometheus.Counter

	// TokenCacheHits counts token requests served from the cache.
	TokenCacheHits prometheus.Counter
}

// New creates the gateway metrics registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esriagol",
			Name:      "requests_total",
			Help:      "Gateway requests by endpoint and status class.",
		}, []string{"endpoint", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "esriagol",
			Name:      "request_duration_seconds",
			Help:      "Gateway request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		UpstreamRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esriagol",
			Name:      "upstream_requests_total",
			Help:      "Upstream calls by kind and outcome.",
		}, []string{"kind", "outcome"}),
		TokenRefreshes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "esriagol",
			Name:      "token_refreshes_total",
			Help:      "Upstream session token exchanges performed.",
		}),
		TokenCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "esriagol",
			Name:      "token_cache_hits_total",
			Help:      "Token requests served from the in-process cache.",
		}),
	}
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
