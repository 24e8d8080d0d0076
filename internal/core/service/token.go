package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/msjade/esriagol/internal/telemetry/metric"
)

// ExpiryMargin is the safety margin before the upstream expiry at which
// a cached token stops being considered usable.
const ExpiryMargin = 60 * time.Second

// TokenExchanger performs the upstream credential exchange.
type TokenExchanger interface {
	// ExchangeToken obtains a fresh upstream session token and its
	// absolute expiry time.
	ExchangeToken(ctx context.Context) (token string, expiresAt time.Time, err error)
}

// TokenManager caches the single upstream session token shared by all
// requests. The cache is mutex-guarded: concurrent callers observing a
// stale token serialize on the refresh, and all of them observe the
// newly cached token once the first exchange completes.
type TokenManager struct {
	exchanger TokenExchanger
	logger    *slog.Logger
	metrics   *metric.Metrics

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	now func() time.Time // injectable clock for tests
}

// NewTokenManager creates a token manager over the given exchanger.
// The metrics registry may be nil.
func NewTokenManager(exchanger TokenExchanger, logger *slog.Logger, metrics *metric.Metrics) *TokenManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenManager{
		exchanger: exchanger,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Token returns the cached upstream token, refreshing it first if it is
// absent or within ExpiryMargin of its expiry. A valid cache hit makes
// no network call.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.usable() {
		if m.metrics != nil {
			m.metrics.TokenCacheHits.Inc()
		}
		return m.token, nil
	}

	// A burst of callers with a stale cache collapses to a single
	// upstream exchange: the rest block on the mutex, then hit the
	// usable() check above with the fresh token.
	token, expiresAt, err := m.exchanger.ExchangeToken(ctx)
	if err != nil {
		return "", err
	}

	m.token = token
	m.expiresAt = expiresAt
	if m.metrics != nil {
		m.metrics.TokenRefreshes.Inc()
	}
	m.logger.Info("upstream session token refreshed", "expires_at", expiresAt.UTC().Format(time.RFC3339))
	return token, nil
}

// usable reports whether the cached token is still safe to hand out.
// Callers must hold m.mu.
func (m *TokenManager) usable() bool {
	return m.token != "" && m.now().Before(m.expiresAt.Add(-ExpiryMargin))
}
