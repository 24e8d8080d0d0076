// Package handler implements the gateway's HTTP endpoints: the keyed
// data plane (/v1, /tiles), the admin plane (/admin/v1), and the public
// health and metrics endpoints.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/msjade/esriagol/internal/core/domain"
	"github.com/msjade/esriagol/internal/core/service"
	"github.com/msjade/esriagol/internal/telemetry/metric"
	"github.com/msjade/esriagol/internal/upstream"
)

// ServiceRegistry is the service-registry surface the handler needs.
type ServiceRegistry interface {
	Get(ctx context.Context, alias string) (*domain.ServiceDefinition, error)
	All(ctx context.Context) (map[string]*domain.ServiceDefinition, error)
	Aliases(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, alias string, def *domain.ServiceDefinition) error
}

// ClientRegistry is the client-registry surface the handler needs.
type ClientRegistry interface {
	Get(ctx context.Context, key string) (*domain.ClientRecord, error)
	All(ctx context.Context) (map[string]*domain.ClientRecord, error)
	Create(ctx context.Context, key string, rec *domain.ClientRecord) error
	SetDisabled(ctx context.Context, key string, disabled bool) error
}

// TokenSource hands out the shared upstream session token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Upstream is the ArcGIS client surface the handler needs.
type Upstream interface {
	QueryJSON(ctx context.Context, queryURL string, params url.Values) (map[string]any, error)
	FetchStyleJSON(ctx context.Context, tileBase, token string) (map[string]any, error)
	FetchBytes(ctx context.Context, kind, rawURL string, params url.Values) ([]byte, int, error)
}

// Config holds gateway-level handler settings.
type Config struct {
	// PublicBase is the externally visible base URL used when rewriting
	// style documents. Style requests fail while it is unset.
	PublicBase string

	// AdminKey protects the /admin endpoints. Admin requests are
	// refused entirely while it is unset.
	AdminKey string
}

// Handler routes and serves all gateway endpoints.
type Handler struct {
	cfg      Config
	access   *service.AccessService
	services ServiceRegistry
	clients  ClientRegistry
	tokens   TokenSource
	upstream Upstream
	metrics  *metric.Metrics
	logger   *slog.Logger
	mux      *http.ServeMux
}

// New creates the gateway handler and mounts all routes.
func New(cfg Config, services ServiceRegistry, clients ClientRegistry, tokens TokenSource, up Upstream, metrics *metric.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		cfg:      cfg,
		access:   service.NewAccessService(clients),
		services: services,
		clients:  clients,
		tokens:   tokens,
		upstream: up,
		metrics:  metrics,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	h.routes()
	return h
}

func (h *Handler) routes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	if h.metrics != nil {
		h.mux.Handle("GET /metrics", h.metrics.Handler())
	}

	h.mux.HandleFunc("GET /v1/services", h.handleListServices)
	h.mux.HandleFunc("GET /v1/{alias}/query", h.handleQuery)
	h.mux.HandleFunc("GET /v1/{alias}/identify", h.handleIdentify)

	h.mux.HandleFunc("GET /tiles/{alias}/style.json", h.handleStyle)
	// The final segment carries the ".pbf" suffix; ServeMux wildcards
	// cannot express a literal suffix, so the handlers strip it.
	h.mux.HandleFunc("GET /tiles/{alias}/tile/{z}/{y}/{x}", h.handleTile)
	h.mux.HandleFunc("GET /tiles/{alias}/sprite/{key}/{resource}", h.handleSprite)
	h.mux.HandleFunc("GET /tiles/{alias}/fonts/{fontstack}/{range}", h.handleFont)

	h.mux.HandleFunc("GET /admin/v1/services", h.adminOnly(h.handleAdminListServices))
	h.mux.HandleFunc("POST /admin/v1/services", h.adminOnly(h.handleAdminRegisterService))
	h.mux.HandleFunc("GET /admin/v1/clients", h.adminOnly(h.handleAdminListClients))
	h.mux.HandleFunc("POST /admin/v1/clients", h.adminOnly(h.handleAdminCreateClient))
	h.mux.HandleFunc("POST /admin/v1/clients/{key}/status", h.adminOnly(h.handleAdminClientStatus))
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// clientKey extracts the caller's key from the X-API-Key header or the
// key query parameter. Resource URLs embedded in rewritten style
// documents can only carry the query form.
func clientKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	return r.URL.Query().Get("key")
}

// authorize validates the caller's key, resolves the service definition
// and checks the alias permission, in that order. The permission check
// always happens before any upstream traffic.
func (h *Handler) authorize(r *http.Request, alias string) (*domain.ClientRecord, *domain.ServiceDefinition, error) {
	return h.authorizeKey(r.Context(), clientKey(r), alias)
}

func (h *Handler) authorizeKey(ctx context.Context, key, alias string) (*domain.ClientRecord, *domain.ServiceDefinition, error) {
	rec, err := h.access.Authorize(ctx, key, "")
	if err != nil {
		return nil, nil, err
	}
	def, err := h.services.Get(ctx, alias)
	if err != nil {
		return nil, nil, err
	}
	if !rec.Allows(alias) {
		return nil, nil, domain.ErrServiceForbidden.WithDetails(alias)
	}
	// An empty whitelist would forward queries upstream unfiltered.
	// Registration forbids it, so hitting one here means the registry
	// was corrupted out of band.
	if len(def.AllowedOutFields) == 0 {
		return nil, nil, domain.ErrServiceMisconfigured.WithDetails("no field whitelist for " + alias)
	}
	return rec, def, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("response encoding failed", "error", err)
	}
}

// writeError maps a domain error onto an HTTP response. Upstream
// rejections pass the upstream body through verbatim.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var rejected *upstream.RejectedError
	if errors.As(err, &rejected) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write(rejected.Body)
		return
	}

	var domErr *domain.Error
	if !errors.As(err, &domErr) {
		h.logger.Error("unclassified error", "path", r.URL.Path, "error", err)
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Code:    "AG-SYS-5000",
			Message: "internal server error",
		})
		return
	}

	status := statusFor(domErr.Code)
	if status >= 500 {
		h.logger.Error("request failed", "path", r.URL.Path, "code", domErr.Code, "error", err)
	}
	h.writeJSON(w, status, ErrorResponse{
		Code:    domErr.Code,
		Message: domErr.Message,
		Details: domErr.Details,
	})
}

func statusFor(code string) int {
	switch code {
	case "AG-AUTH-4010", "AG-AUTH-4011", "AG-AUTH-4012", "AG-AUTH-4013":
		return http.StatusUnauthorized
	case "AG-AUTH-4030":
		return http.StatusForbidden
	case "AG-SVC-4040", "AG-CLI-4040":
		return http.StatusNotFound
	case "AG-ARG-4001", "AG-UPS-4000":
		return http.StatusBadRequest
	case "AG-UPS-5002":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
