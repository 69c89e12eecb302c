package pta

import (
	"errors"

	"github.com/yndnr/ptagate/internal/core/domain"
)

// Outcome classes reported in logs, metrics and the CLI.
const (
	OutcomeAuthorized = "authorized"
	OutcomeMalformed  = "malformed"
	OutcomeForbidden  = "forbidden"
	OutcomeExpired    = "expired"
	OutcomeInternal   = "internal"
)

// OutcomeOf classifies an error returned by Validate.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeAuthorized
	case errors.Is(err, domain.ErrTokenMalformed):
		return OutcomeMalformed
	case errors.Is(err, domain.ErrTokenForbidden):
		return OutcomeForbidden
	case errors.Is(err, domain.ErrTokenExpired):
		return OutcomeExpired
	default:
		return OutcomeInternal
	}
}
