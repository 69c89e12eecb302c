// Package logger provides structured logging for ptagate.
//
// This package wraps log/slog:
//
//   - logger.go: handler setup, runtime level, package-level helpers
//   - context.go: context-aware logging with request IDs
//   - redact.go: sensitive data redaction
//
// Tokens, keys and IVs never reach the output. Attributes whose key names
// them are replaced, long hex strings are replaced wherever they appear,
// and RedactQuery strips pta values from query strings before logging.
package logger
