package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/msjade/esriagol/internal/core/domain"
	"github.com/msjade/esriagol/internal/core/service"
)

// spriteResources is the exact set of sprite files the gateway will
// relay. Anything else on the sprite path is rejected.
var spriteResources = map[string]string{
	"sprite.json":    "application/json",
	"sprite.png":     "image/png",
	"sprite@2x.json": "application/json",
	"sprite@2x.png":  "image/png",
}

// tileService authorizes the caller and requires the service to carry a
// vector tile endpoint. A registered alias without one is a registry
// integrity fault, not a client error.
func (h *Handler) tileService(r *http.Request, alias string) (*domain.ServiceDefinition, error) {
	_, def, err := h.authorize(r, alias)
	if err != nil {
		return nil, err
	}
	if def.VectorTileBase == "" {
		return nil, domain.ErrServiceMisconfigured.WithDetails("vector_tile_base missing for " + alias)
	}
	return def, nil
}

// handleStyle fetches the upstream style document and rewrites every
// resource URL to point back through the gateway before returning it.
func (h *Handler) handleStyle(w http.ResponseWriter, r *http.Request) {
	alias := r.PathValue("alias")
	def, err := h.tileService(r, alias)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.cfg.PublicBase == "" {
		h.writeError(w, r, domain.ErrGatewayMisconfigured.WithDetails("public_base is not configured"))
		return
	}

	token, err := h.tokens.Token(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	style, err := h.upstream.FetchStyleJSON(r.Context(), def.VectorTileBase, token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	service.RewriteStyle(style, h.cfg.PublicBase, alias, clientKey(r))
	h.writeJSON(w, http.StatusOK, style)
}

// handleTile relays one vector tile. Missing tiles pass the upstream
// 404 through so renderers treat them as empty.
func (h *Handler) handleTile(w http.ResponseWriter, r *http.Request) {
	alias := r.PathValue("alias")
	def, err := h.tileService(r, alias)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	z, zErr := tileCoord(r.PathValue("z"), "")
	y, yErr := tileCoord(r.PathValue("y"), "")
	x, xErr := tileCoord(r.PathValue("x"), ".pbf")
	if zErr != nil || yErr != nil || xErr != nil {
		h.writeError(w, r, domain.ErrInvalidArgument.WithDetails("tile coordinates must be non-negative integers"))
		return
	}

	token, err := h.tokens.Token(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tileURL := strings.TrimRight(def.VectorTileBase, "/") +
		"/tile/" + strconv.Itoa(z) + "/" + strconv.Itoa(y) + "/" + strconv.Itoa(x) + ".pbf"
	h.relayBytes(w, r, "tile", tileURL, token, "application/x-protobuf")
}

// handleSprite relays a sprite resource. The client key travels as a
// path segment because sprite consumers derive sibling URLs by suffix
// substitution and drop query strings.
func (h *Handler) handleSprite(w http.ResponseWriter, r *http.Request) {
	alias := r.PathValue("alias")

	resource := r.PathValue("resource")
	contentType, ok := spriteResources[resource]
	if !ok {
		h.writeError(w, r, domain.ErrInvalidArgument.WithDetails("unknown sprite resource"))
		return
	}

	// The sprite route carries the key as a path segment; a header or
	// query key, when present, still takes precedence.
	key := clientKey(r)
	if key == "" {
		key = r.PathValue("key")
	}

	_, def, err := h.authorizeKey(r.Context(), key, alias)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if def.VectorTileBase == "" {
		h.writeError(w, r, domain.ErrServiceMisconfigured.WithDetails("vector_tile_base missing for "+alias))
		return
	}

	token, err := h.tokens.Token(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	spriteURL := strings.TrimRight(def.VectorTileBase, "/") + "/resources/sprites/" + resource
	h.relayBytes(w, r, "sprite", spriteURL, token, contentType)
}

// handleFont relays a glyph range. Missing ranges pass the upstream 404
// through.
func (h *Handler) handleFont(w http.ResponseWriter, r *http.Request) {
	alias := r.PathValue("alias")
	def, err := h.tileService(r, alias)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	fontstack := r.PathValue("fontstack")
	glyphRange, ok := strings.CutSuffix(r.PathValue("range"), ".pbf")
	if !ok || glyphRange == "" {
		h.writeError(w, r, domain.ErrInvalidArgument.WithDetails("glyph range must end in .pbf"))
		return
	}

	token, err := h.tokens.Token(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	fontURL := strings.TrimRight(def.VectorTileBase, "/") +
		"/resources/fonts/" + url.PathEscape(fontstack) + "/" + url.PathEscape(glyphRange) + ".pbf"
	h.relayBytes(w, r, "font", fontURL, token, "application/x-protobuf")
}

// relayBytes fetches a binary upstream resource and writes it through,
// passing upstream 404s to the caller unchanged.
func (h *Handler) relayBytes(w http.ResponseWriter, r *http.Request, kind, rawURL, token, contentType string) {
	body, status, err := h.upstream.FetchBytes(r.Context(), kind, rawURL, url.Values{"token": {token}})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if status == http.StatusNotFound {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Debug("tile relay write failed", "kind", kind, "error", err)
	}
}

// tileCoord parses a non-negative tile coordinate, optionally stripping
// a required suffix first.
func tileCoord(raw, suffix string) (int, error) {
	if suffix != "" {
		stripped, ok := strings.CutSuffix(raw, suffix)
		if !ok {
			return 0, domain.ErrInvalidArgument
		}
		raw = stripped
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, domain.ErrInvalidArgument
	}
	return v, nil
}
