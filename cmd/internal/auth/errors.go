package auth

import "errors"

var (
	// ErrConflict is returned by Signup when the email is taken or registration failed.
	ErrConflict = errors.New("email already registered or registration failed")

	// ErrUnauthorized is returned for bad credentials, inactive accounts and rejected tokens.
	ErrUnauthorized = errors.New("unauthorized")
)
