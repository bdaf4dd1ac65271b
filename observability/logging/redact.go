package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue replaces sensitive values in log lines.
const RedactedValue = "[REDACTED]"

// plainKeys are logged verbatim. Keys are lower case.
var plainKeys = map[string]bool{
	"service":   true,
	"env":       true,
	"message":   true,
	"severity":  true,
	"timestamp": true,
	"error":     true,
	"op":        true,
	"caller":    true,
	"kind":      true,
	"events":    true,
	"method":    true,
	"requestid": true,
	"listen":    true,
	"admin":     true,
}

// IsAllowlisted reports whether key may be logged without masking. Matching
// ignores case.
func IsAllowlisted(key string) bool {
	return plainKeys[strings.ToLower(strings.TrimSpace(key))]
}

// MaskField returns key=value, or key=[REDACTED] when key is not allowlisted
// and value is non-empty.
func MaskField(key, value string) slog.Attr {
	if strings.TrimSpace(value) == "" || IsAllowlisted(key) {
		return slog.String(key, value)
	}
	return slog.String(key, RedactedValue)
}
