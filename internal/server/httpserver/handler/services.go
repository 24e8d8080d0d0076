package handler

import (
	"net/http"

	"github.com/msjade/esriagol/internal/core/service"
)

// handleListServices returns the aliases the caller's key may reach.
func (h *Handler) handleListServices(w http.ResponseWriter, r *http.Request) {
	rec, err := h.access.Authorize(r.Context(), clientKey(r), "")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	registered, err := h.services.Aliases(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, ServicesResponse{
		Services: service.VisibleAliases(rec, registered),
	})
}
