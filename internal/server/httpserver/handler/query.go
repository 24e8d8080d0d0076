package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/msjade/esriagol/internal/core/domain"
	"github.com/msjade/esriagol/internal/core/service"
)

// Paging bounds for attribute queries.
const (
	defaultRecordCount = 200
	maxRecordCount     = 2000

	defaultIdentifyResults = 5
	maxIdentifyResults     = 20
)

// handleQuery proxies an attribute query to the service's feature
// layer. The field list is clamped to the whitelist, the where clause
// is conjoined with the client's row lock, and geometry never leaves
// the gateway.
func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	alias := r.PathValue("alias")
	rec, def, err := h.authorize(r, alias)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	where := q.Get("where")
	if where == "" {
		where = "1=1"
	}

	offset, err := parseIntParam(q, "resultOffset", 0, 0, -1)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	count, err := parseIntParam(q, "resultRecordCount", defaultRecordCount, 1, maxRecordCount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	distinct := false
	if raw := q.Get("returnDistinctValues"); raw != "" {
		distinct, err = strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, r, domain.ErrInvalidArgument.WithDetails("returnDistinctValues must be a boolean"))
			return
		}
	}

	token, err := h.tokens.Token(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	params := url.Values{
		"f":                 {"json"},
		"where":             {service.ApplyWhereLock(rec, alias, where)},
		"outFields":         {service.SanitizeOutFields(q.Get("outFields"), def.AllowedOutFields)},
		"returnGeometry":    {"false"},
		"resultOffset":      {strconv.Itoa(offset)},
		"resultRecordCount": {strconv.Itoa(count)},
		"token":             {token},
	}
	if distinct {
		params.Set("returnDistinctValues", "true")
	}
	if orderBy := q.Get("orderByFields"); orderBy != "" {
		params.Set("orderByFields", orderBy)
	}

	payload, err := h.upstream.QueryJSON(r.Context(), def.FeatureQueryURL, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	stripGeometry(payload)
	h.writeJSON(w, http.StatusOK, payload)
}

// handleIdentify runs a point-intersection query and returns only the
// whitelisted attributes of the matching features.
func (h *Handler) handleIdentify(w http.ResponseWriter, r *http.Request) {
	alias := r.PathValue("alias")
	rec, def, err := h.authorize(r, alias)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	lat, err := parseFloatParam(q, "lat")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	lon, err := parseFloatParam(q, "lon")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	maxResults, err := parseIntParam(q, "max_results", defaultIdentifyResults, 1, maxIdentifyResults)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.tokens.Token(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	geometry, err := json.Marshal(map[string]any{
		"x":                lon,
		"y":                lat,
		"spatialReference": map[string]any{"wkid": 4326},
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	params := url.Values{
		"f":                 {"json"},
		"geometry":          {string(geometry)},
		"geometryType":      {"esriGeometryPoint"},
		"inSR":              {"4326"},
		"spatialRel":        {"esriSpatialRelIntersects"},
		"where":             {service.ApplyWhereLock(rec, alias, "1=1")},
		"outFields":         {service.SanitizeOutFields("", def.AllowedOutFields)},
		"returnGeometry":    {"false"},
		"resultRecordCount": {strconv.Itoa(maxResults)},
		"token":             {token},
	}

	payload, err := h.upstream.QueryJSON(r.Context(), def.FeatureQueryURL, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Rebuild the result set from scratch so nothing beyond the
	// whitelist survives, whatever the upstream returned.
	results := make([]IdentifyResult, 0, maxResults)
	if features, ok := payload["features"].([]any); ok {
		for _, raw := range features {
			feature, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			attrs, _ := feature["attributes"].(map[string]any)
			results = append(results, IdentifyResult{
				Attributes: service.ScrubAttributes(attrs, def.AllowedOutFields),
			})
		}
	}

	h.writeJSON(w, http.StatusOK, IdentifyResponse{
		Count:   len(results),
		Results: results,
	})
}

// stripGeometry removes the per-feature geometry from an upstream query
// response in place. The rest of the payload passes through unchanged.
func stripGeometry(payload map[string]any) {
	features, ok := payload["features"].([]any)
	if !ok {
		return
	}
	for _, raw := range features {
		if feature, ok := raw.(map[string]any); ok {
			delete(feature, "geometry")
		}
	}
}

// parseIntParam reads an optional integer query parameter with bounds.
// A max of -1 means unbounded above.
func parseIntParam(q url.Values, name string, def, min, max int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || (max >= 0 && v > max) {
		return 0, domain.ErrInvalidArgument.WithDetails(name + " is out of range")
	}
	return v, nil
}

func parseFloatParam(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, domain.ErrInvalidArgument.WithDetails(name + " is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, domain.ErrInvalidArgument.WithDetails(name + " must be a number")
	}
	return v, nil
}
