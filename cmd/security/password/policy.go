package password

import (
	"unicode/utf8"
)

// Validate checks password policy. It does not mutate input.
func (p Policy) Validate(password string) error {
	// Count characters (runes), not bytes.
	n := utf8.RuneCountInString(password)

	if n < p.MinLength {
		return ErrPasswordTooShort
	}
	if n > p.MaxLength {
		return ErrPasswordTooLong
	}
	if p.MaxBytes > 0 && len(password) > p.MaxBytes {
		return ErrPasswordTooLong
	}

	var hasLetter, hasDigit bool
	for i := 0; i < len(password); i++ {
		b := password[i]
		switch {
		case (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z'):
			hasLetter = true
		case b >= '0' && b <= '9':
			hasDigit = true
		}
	}

	if p.RequireLetter && !hasLetter {
		return ErrPasswordNoLetter
	}
	if p.RequireDigit && !hasDigit {
		return ErrPasswordNoDigit
	}
	return nil
}

// Validate checks password against the configured policy.
func (c Config) Validate(password string) error {
	return c.Policy.Validate(password)
}
