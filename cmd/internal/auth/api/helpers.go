package authapi

import (
	"errors"
	"unicode/utf8"

	"postboard/cmd/identity"
	"postboard/cmd/internal/auth"
)

var errPasswordRequired = errors.New("password is required")

func toTokenResponse(tok auth.Token) tokenResponse {
	typ := tok.Type
	if typ == "" {
		typ = auth.TokenType
	}
	return tokenResponse{Token: tok.Value, TokenType: typ}
}

// validateEmail returns the normalized address or the reason it was rejected.
func validateEmail(raw string) (string, error) {
	email := identity.NormalizeEmail(raw)
	if err := identity.ValidateEmail(email); err != nil {
		return "", err
	}
	return email, nil
}

func validateLoginPassword(pw string, maxLen int) error {
	n := utf8.RuneCountInString(pw)
	if n == 0 {
		return errPasswordRequired
	}
	if n > maxLen {
		return errors.New("password too long")
	}
	return nil
}
