// Package domain defines the error taxonomy shared by the validator, the
// gate and the CLI.
//
// Every error a client can observe is a DomainError with a stable code of
// the form PTA-<AREA>-<NNNN> and an HTTP status derived from it. The precise
// reason for a rejection travels as the Cause and is only ever logged.
package domain
