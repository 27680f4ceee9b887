// Package common defines shared constants and sentinel errors used across
// the portfolio server. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Request admission and access errors. These are the only errors that
	// surface to callers as rejections (401, 403, 429).
	ErrorUnauthorized    = errors.New("unauthorized")
	ErrorForbidden       = errors.New("forbidden")
	ErrorTooManyRequests = errors.New("too many requests")

	// ErrConfiguration is fatal at startup.
	ErrConfiguration = errors.New("configuration error")
)
