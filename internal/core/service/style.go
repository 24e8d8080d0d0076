package service

import (
	"fmt"
	"strings"
)

// Defaults applied to vector sources that omit them. The maxzoom matches
// the upstream tile server convention.
const (
	defaultScheme  = "xyz"
	defaultMinZoom = float64(0)
	defaultMaxZoom = float64(23)
)

// RewriteStyle rewrites an upstream vector-tile style document in place
// so every resource URL points back through the gateway.
//
// Vector sources get a single gateway tile template (z/y/x ordering, the
// upstream tile path convention) carrying the client key as a query
// parameter, and lose any raw upstream "url" that would leak the
// upstream host or an embedded token. The sprite URL carries the key as
// a path segment because sprite consumers append suffixes and do not
// reliably preserve query strings; glyphs keep the query form.
func RewriteStyle(style map[string]any, publicBase, alias, clientKey string) {
	publicBase = strings.TrimRight(publicBase, "/")

	if sources, ok := style["sources"].(map[string]any); ok {
		for _, raw := range sources {
			src, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if t, _ := src["type"].(string); t != "" && t != "vector" {
				continue
			}

			src["tiles"] = []any{
				fmt.Sprintf("%s/tiles/%s/tile/{z}/{y}/{x}.pbf?key=%s", publicBase, alias, clientKey),
			}
			// The raw url would leak the upstream host and token.
			delete(src, "url")

			if _, ok := src["scheme"]; !ok {
				src["scheme"] = defaultScheme
			}
			if _, ok := src["minzoom"]; !ok {
				src["minzoom"] = defaultMinZoom
			}
			if _, ok := src["maxzoom"]; !ok {
				src["maxzoom"] = defaultMaxZoom
			}
		}
	}

	if _, ok := style["sprite"]; ok {
		style["sprite"] = fmt.Sprintf("%s/tiles/%s/sprite/%s/sprite", publicBase, alias, clientKey)
	}
	if _, ok := style["glyphs"]; ok {
		style["glyphs"] = fmt.Sprintf("%s/tiles/%s/fonts/{fontstack}/{range}.pbf?key=%s", publicBase, alias, clientKey)
	}
}
