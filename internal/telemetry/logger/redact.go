package logger

import (
	"log/slog"
	"strings"
)

// Value prefixes treated as sensitive bearer material. Client keys are
// generated with the ck_ prefix, so any such value is partially masked
// even when attached under a harmless attribute name.
var sensitiveValuePrefixes = []string{
	"ck_",
}

// Attribute names that suggest sensitive content; matching string values
// are fully redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"api_key",
	"admin_key",
	"client_key",
}

const redactedValue = "***REDACTED***"

// redactSensitive masks or removes sensitive attribute values.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		val := a.Value.String()

		for _, prefix := range sensitiveValuePrefixes {
			if strings.HasPrefix(val, prefix) {
				return slog.String(a.Key, maskValue(val, prefix))
			}
		}

		keyLower := strings.ToLower(a.Key)
		for _, pattern := range sensitiveKeyPatterns {
			if strings.Contains(keyLower, pattern) {
				if val != "" {
					return slog.String(a.Key, redactedValue)
				}
				break
			}
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		masked := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			masked[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}

	return a
}

// maskValue keeps the prefix and the first few characters so operators
// can still correlate keys across log lines.
func maskValue(val, prefix string) string {
	const visible = 4
	rest := val[len(prefix):]
	if len(rest) <= visible {
		return prefix + "****"
	}
	return prefix + rest[:visible] + "****"
}
