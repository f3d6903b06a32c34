package token

import "errors"

// Public, stable errors for callers.
var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrSecretMissing  = errors.New("token secret missing")
	ErrSecretTooShort = errors.New("token secret too short")
	ErrConfig         = errors.New("invalid token config")
)
