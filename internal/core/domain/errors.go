// Package domain defines the error taxonomy shared by the PTA core and the gate.
package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DomainError is an error carrying a stable, client-visible code.
//
// Message is what clients see. Cause holds the precise internal reason
// (checksum mismatch, bad padding, ...) and must only reach operator logs.
type DomainError struct {
	Code    string // e.g. "PTA-TOKN-4030"
	Message string
	Details string
	Cause   error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a DomainError.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with details attached.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Public returns a copy stripped of details and cause, safe to send to clients.
func (e *DomainError) Public() *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
	}
}

// IsDomainError checks whether err is a DomainError with the given code.
// An empty code matches any DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the code of a DomainError, or "".
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// HTTPStatus maps an error code to its HTTP status. The last four digits of
// a code carry the status in their first three.
func HTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-4030"):
		return http.StatusForbidden
	case strings.HasSuffix(code, "-4100"):
		return http.StatusGone
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-5020"):
		return http.StatusBadGateway
	case strings.HasSuffix(code, "-5030"):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ============================================================================
// Token Errors (TOKN)
// ============================================================================

var (
	// ErrTokenMalformed covers bad hex, wrong length and a missing token.
	ErrTokenMalformed = NewDomainError("PTA-TOKN-4000", "malformed token")

	// ErrTokenForbidden covers decrypt, checksum and URL failures alike.
	ErrTokenForbidden = NewDomainError("PTA-TOKN-4030", "access denied")

	// ErrTokenExpired indicates the token deadline has passed.
	ErrTokenExpired = NewDomainError("PTA-TOKN-4100", "token expired")
)

// ============================================================================
// Configuration Errors (CONF)
// ============================================================================

var (
	// ErrConfigInvalid indicates a configuration value failed verification.
	ErrConfigInvalid = NewDomainError("PTA-CONF-5000", "invalid configuration")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal fault.
	ErrInternalServer = NewDomainError("PTA-SYS-5000", "internal server error")

	// ErrBadRequest indicates a malformed request outside the token itself.
	ErrBadRequest = NewDomainError("PTA-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests from one client.
	ErrRateLimited = NewDomainError("PTA-SYS-4290", "too many requests")

	// ErrServiceUnavailable indicates the gate is not ready to validate.
	ErrServiceUnavailable = NewDomainError("PTA-SYS-5030", "service unavailable")

	// ErrUpstream indicates the upstream origin could not be reached.
	ErrUpstream = NewDomainError("PTA-SYS-5020", "bad gateway")
)
