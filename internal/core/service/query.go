package service

import (
	"strings"

	"github.com/msjade/esriagol/internal/core/domain"
)

// SanitizeOutFields restricts a requested comma-separated field list to
// the service whitelist.
//
// An empty or wildcard ("*") request yields the full whitelist in
// registered order. Otherwise the requested list is intersected with the
// whitelist preserving the caller's order; an empty intersection falls
// back to the full whitelist so no request can widen the field set.
func SanitizeOutFields(requested string, allowed []string) string {
	requested = strings.TrimSpace(requested)
	if requested == "" || requested == "*" {
		return strings.Join(allowed, ",")
	}

	allowedSet := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		allowedSet[f] = struct{}{}
	}

	var safe []string
	for _, f := range strings.Split(requested, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := allowedSet[f]; ok {
			safe = append(safe, f)
		}
	}

	if len(safe) == 0 {
		return strings.Join(allowed, ",")
	}
	return strings.Join(safe, ",")
}

// ApplyWhereLock conjoins the client's configured row lock for the alias
// to the where clause: "(where) AND (lock)". Without a configured lock
// the clause is returned unchanged.
func ApplyWhereLock(rec *domain.ClientRecord, alias, where string) string {
	lock := rec.LockFor(alias)
	if lock == "" {
		return where
	}
	return "(" + where + ") AND (" + lock + ")"
}

// ScrubAttributes rebuilds a feature's attribute set restricted to
// exactly the whitelist, in whitelist order. Fields the upstream returned
// beyond the whitelist are dropped; whitelisted fields the upstream
// omitted stay absent.
func ScrubAttributes(attributes map[string]any, allowed []string) map[string]any {
	out := make(map[string]any, len(allowed))
	for _, f := range allowed {
		if v, ok := attributes[f]; ok {
			out[f] = v
		}
	}
	return out
}
