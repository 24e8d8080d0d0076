package handler

import (
	"net/http"

	"github.com/msjade/esriagol/internal/infra/buildinfo"
)

// handleHealth reports liveness. It is unauthenticated and makes no
// registry or upstream calls.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: buildinfo.Get().Version,
	})
}
