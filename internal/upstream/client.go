package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/msjade/esriagol/internal/core/domain"
	"github.com/msjade/esriagol/internal/telemetry/metric"
)

// Config holds the upstream portal settings.
type Config struct {
	// Portal is the ArcGIS portal base URL (e.g. https://www.arcgis.com).
	Portal string

	// Referer is sent with the generateToken exchange; the issued token
	// is bound to it.
	Referer string

	// UsernameEnv and PasswordEnv name the environment variables the
	// credentials are read from at exchange time.
	UsernameEnv string
	PasswordEnv string

	// ExpirationMinutes is the token lifetime requested from the portal.
	ExpirationMinutes int

	// AuthTimeout bounds the credential exchange; DataTimeout bounds
	// query, style, and tile fetches.
	AuthTimeout time.Duration
	DataTimeout time.Duration
}

// Client calls the upstream ArcGIS REST APIs.
type Client struct {
	cfg        Config
	authClient *http.Client
	dataClient *http.Client
	logger     *slog.Logger
	metrics    *metric.Metrics
}

// RejectedError carries an upstream error payload verbatim so the
// dispatcher can pass it through to the client as a 400-class response.
type RejectedError struct {
	Body json.RawMessage
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	return domain.ErrUpstreamRejected.Error()
}

// Is lets errors.Is match the domain sentinel.
func (e *RejectedError) Is(target error) bool {
	return target == domain.ErrUpstreamRejected
}

// NewClient creates an upstream client. The metrics registry may be nil.
func NewClient(cfg Config, logger *slog.Logger, metrics *metric.Metrics) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AuthTimeout <= 0 {
		cfg.AuthTimeout = 30 * time.Second
	}
	if cfg.DataTimeout <= 0 {
		cfg.DataTimeout = 60 * time.Second
	}
	if cfg.ExpirationMinutes <= 0 {
		cfg.ExpirationMinutes = 60
	}
	return &Client{
		cfg:        cfg,
		authClient: &http.Client{Timeout: cfg.AuthTimeout},
		dataClient: &http.Client{Timeout: cfg.DataTimeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// tokenResponse is the generateToken payload.
type tokenResponse struct {
	Token   string          `json:"token"`
	Expires int64           `json:"expires"` // epoch milliseconds
	Error   json.RawMessage `json:"error"`
}

// ExchangeToken performs the generateToken credential exchange. It
// implements service.TokenExchanger.
func (c *Client) ExchangeToken(ctx context.Context) (string, time.Time, error) {
	username := os.Getenv(c.cfg.UsernameEnv)
	password := os.Getenv(c.cfg.PasswordEnv)
	if username == "" || password == "" {
		return "", time.Time{}, domain.ErrGatewayMisconfigured.WithDetails(
			fmt.Sprintf("upstream credentials not set (%s/%s)", c.cfg.UsernameEnv, c.cfg.PasswordEnv))
	}

	form := url.Values{
		"f":          {"json"},
		"username":   {username},
		"password":   {password},
		"client":     {"referer"},
		"referer":    {c.cfg.Referer},
		"expiration": {strconv.Itoa(c.cfg.ExpirationMinutes)},
	}

	tokenURL := strings.TrimRight(c.cfg.Portal, "/") + "/sharing/rest/generateToken"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, domain.ErrUpstreamAuth.WithCause(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.authClient.Do(req)
	if err != nil {
		c.observe("auth", "error")
		return "", time.Time{}, domain.ErrUpstreamUnavailable.WithDetails("token exchange failed").WithCause(err)
	}
	defer resp.Body.Close()

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.observe("auth", "error")
		return "", time.Time{}, domain.ErrUpstreamAuth.WithDetails("malformed token response").WithCause(err)
	}

	if len(payload.Error) > 0 {
		c.observe("auth", "rejected")
		return "", time.Time{}, domain.ErrUpstreamAuth.WithDetails(string(payload.Error))
	}
	if payload.Token == "" || payload.Expires == 0 {
		c.observe("auth", "error")
		return "", time.Time{}, domain.ErrUpstreamAuth.WithDetails("token response missing token or expires")
	}

	c.observe("auth", "ok")
	return payload.Token, time.UnixMilli(payload.Expires), nil
}

// QueryJSON issues a GET against a feature-layer query endpoint and
// decodes the JSON body. An upstream error payload is returned as a
// *RejectedError carrying the body verbatim.
func (c *Client) QueryJSON(ctx context.Context, queryURL string, params url.Values) (map[string]any, error) {
	return c.getJSON(ctx, "query", queryURL, params)
}

// FetchStyleJSON fetches the root style document from a vector tile
// server base URL.
func (c *Client) FetchStyleJSON(ctx context.Context, tileBase, token string) (map[string]any, error) {
	styleURL := strings.TrimRight(tileBase, "/") + "/resources/styles/root.json"
	return c.getJSON(ctx, "style", styleURL, url.Values{"f": {"json"}, "token": {token}})
}

func (c *Client) getJSON(ctx context.Context, kind, rawURL string, params url.Values) (map[string]any, error) {
	body, status, err := c.get(ctx, kind, rawURL, params)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		// A registered endpoint that 404s is a registry-integrity
		// problem, not a client error.
		c.observe(kind, "not_found")
		return nil, domain.ErrServiceMisconfigured.WithDetails("upstream endpoint not found")
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		c.observe(kind, "error")
		return nil, domain.ErrUpstreamUnavailable.WithDetails("malformed upstream response").WithCause(err)
	}

	// ArcGIS reports request-level failures inside a 200 body.
	if _, rejected := payload["error"]; rejected {
		c.observe(kind, "rejected")
		return nil, &RejectedError{Body: json.RawMessage(body)}
	}

	c.observe(kind, "ok")
	return payload, nil
}

// FetchBytes issues a GET and returns the raw body and status code.
// Callers pass 404 through; any other non-success status is an error.
func (c *Client) FetchBytes(ctx context.Context, kind, rawURL string, params url.Values) ([]byte, int, error) {
	body, status, err := c.get(ctx, kind, rawURL, params)
	if err != nil {
		return nil, 0, err
	}
	switch {
	case status == http.StatusNotFound:
		c.observe(kind, "not_found")
		return nil, status, nil
	case status < 200 || status > 299:
		c.observe(kind, "error")
		return nil, status, domain.ErrUpstreamUnavailable.WithDetails(
			fmt.Sprintf("upstream returned status %d", status))
	}
	c.observe(kind, "ok")
	return body, status, nil
}

func (c *Client) get(ctx context.Context, kind, rawURL string, params url.Values) ([]byte, int, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, 0, domain.ErrServiceMisconfigured.WithDetails("invalid upstream URL").WithCause(err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, domain.ErrUpstreamUnavailable.WithCause(err)
	}

	resp, err := c.dataClient.Do(req)
	if err != nil {
		c.observe(kind, "error")
		return nil, 0, domain.ErrUpstreamUnavailable.WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(kind, "error")
		return nil, 0, domain.ErrUpstreamUnavailable.WithCause(err)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) observe(kind, outcome string) {
	if c.metrics != nil {
		c.metrics.UpstreamRequestsTotal.WithLabelValues(kind, outcome).Inc()
	}
}
