package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/msjade/esriagol/internal/core/domain"
	"github.com/msjade/esriagol/pkg/token"
)

// adminKey extracts the admin credential from the X-Admin-Key header or
// the admin_key query parameter.
func adminKey(r *http.Request) string {
	if key := r.Header.Get("X-Admin-Key"); key != "" {
		return key
	}
	return r.URL.Query().Get("admin_key")
}

// adminOnly guards an admin endpoint. With no admin key configured the
// whole admin plane is refused rather than left open.
func (h *Handler) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.cfg.AdminKey == "" {
			h.writeError(w, r, domain.ErrGatewayMisconfigured.WithDetails("admin key is not configured"))
			return
		}
		if subtle.ConstantTimeCompare([]byte(adminKey(r)), []byte(h.cfg.AdminKey)) != 1 {
			h.writeError(w, r, domain.ErrInvalidAdminKey)
			return
		}
		next(w, r)
	}
}

// handleAdminListServices returns every registered service definition.
func (h *Handler) handleAdminListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.services.All(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, AdminServicesResponse{Services: services})
}

// handleAdminRegisterService registers or replaces a service definition.
func (h *Handler) handleAdminRegisterService(w http.ResponseWriter, r *http.Request) {
	var req RegisterServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.ErrInvalidArgument.WithDetails("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Alias) == "" {
		h.writeError(w, r, domain.ErrInvalidArgument.WithDetails("alias is required"))
		return
	}

	def := &domain.ServiceDefinition{
		FeatureQueryURL:  req.FeatureQueryURL,
		VectorTileBase:   req.VectorTileBase,
		AllowedOutFields: req.AllowedOutFields,
	}
	if err := h.services.Upsert(r.Context(), req.Alias, def); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("service registered", "alias", req.Alias)
	h.writeJSON(w, http.StatusCreated, def)
}

// handleAdminListClients lists registered clients with masked keys.
func (h *Handler) handleAdminListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.All(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	summaries := make([]ClientSummary, 0, len(clients))
	for key, rec := range clients {
		summaries = append(summaries, ClientSummary{
			Key:       maskClientKey(key),
			Name:      rec.Name,
			Services:  rec.AllowedServices,
			Disabled:  rec.Disabled,
			WhereLock: rec.WhereLock,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })

	h.writeJSON(w, http.StatusOK, ClientsResponse{Clients: summaries})
}

// handleAdminCreateClient mints a new client key. The full key appears
// in this response and nowhere else afterwards.
func (h *Handler) handleAdminCreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.ErrInvalidArgument.WithDetails("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.writeError(w, r, domain.ErrInvalidArgument.WithDetails("name is required"))
		return
	}

	key, err := token.GenerateWithPrefix(domain.ClientKeyPrefix)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rec := &domain.ClientRecord{
		Name:            req.Name,
		AllowedServices: req.Services,
		WhereLock:       req.WhereLock,
		Disabled:        req.Disabled,
	}
	if err := h.clients.Create(r.Context(), key, rec); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("client created", "name", req.Name, "client_key", key)
	h.writeJSON(w, http.StatusCreated, CreateClientResponse{
		Key:       key,
		Name:      rec.Name,
		Services:  rec.AllowedServices,
		WhereLock: rec.WhereLock,
	})
}

// handleAdminClientStatus enables or disables an existing client key.
func (h *Handler) handleAdminClientStatus(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var req ClientStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.ErrInvalidArgument.WithDetails("invalid request body"))
		return
	}

	if err := h.clients.SetDisabled(r.Context(), key, req.Disabled); err != nil {
		h.writeError(w, r, err)
		return
	}

	status := "enabled"
	if req.Disabled {
		status = "disabled"
	}
	h.logger.Info("client status changed", "client_key", key, "status", status)
	h.writeJSON(w, http.StatusOK, StatusResponse{Status: status})
}

// maskClientKey keeps the prefix and a short stub of a client key for
// listings.
func maskClientKey(key string) string {
	const visible = len(domain.ClientKeyPrefix) + 4
	if len(key) <= visible {
		return key
	}
	return key[:visible] + "****"
}
