// Package logger provides structured logging for ptagate.
package logger

import (
	"log/slog"
	"strings"
)

// Key names that are always redacted.
var sensitiveKeys = map[string]bool{
	"pta":    true,
	"iv":     true,
	"cookie": true,
}

// Key substrings that mark an attribute as sensitive.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"key",
	"iv_",
	"_iv",
	"credential",
	"authorization",
	"plaintext",
}

// minHexSecretLen is the length from which a hex-only value is treated as
// key material or a token, whatever its key is called.
const minHexSecretLen = 32

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if s == "" {
			return a
		}
		if IsSensitiveKey(a.Key) || IsSensitiveValue(s) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}
	return a
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	if sensitiveKeys[keyLower] {
		return true
	}
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether value looks like a key, IV or token:
// a long run of hex digits and nothing else.
func IsSensitiveValue(value string) bool {
	if len(value) < minHexSecretLen {
		return false
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// RedactQuery replaces the value of every pta argument in a raw query
// string. Other arguments are kept as they are.
func RedactQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	args := strings.Split(rawQuery, "&")
	for i, arg := range args {
		name, _, ok := strings.Cut(arg, "=")
		if ok && strings.EqualFold(name, "pta") {
			args[i] = name + "=" + redactedValue
		}
	}
	return strings.Join(args, "&")
}
