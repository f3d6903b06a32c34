package identity

import (
	"errors"
	"net/mail"
	"strings"
)

// MaxEmailLength bounds stored addresses (RFC 5321 path limit).
const MaxEmailLength = 320

// ErrInvalidEmail is returned by ValidateEmail.
var ErrInvalidEmail = errors.New("invalid email address")

// NormalizeEmail trims surrounding whitespace. Case is preserved: accounts
// registered as "A@x.com" and "a@x.com" are distinct.
func NormalizeEmail(s string) string {
	return strings.TrimSpace(s)
}

// ValidateEmail checks that s is a bare RFC 5322 address (no display name).
func ValidateEmail(s string) error {
	if s == "" || len(s) > MaxEmailLength {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return ErrInvalidEmail
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return ErrInvalidEmail
	}
	if !strings.Contains(s[at+1:], ".") {
		return ErrInvalidEmail
	}
	return nil
}
