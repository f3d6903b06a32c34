package identity

import (
	"context"
	"time"
)

// Account is a registered principal.
// PasswordHash is the encoded credential hash; plaintext is never stored.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateAccountInput describes a registration. New accounts are active.
type CreateAccountInput struct {
	Email        string
	PasswordHash string
	Now          time.Time
}

// Store is the account persistence boundary.
//
// Contract:
//   - CreateAccount assigns a fresh, increasing ID and fails with a
//     ConflictError{Field: "email"} if the email exists, without mutating state.
//   - Lookups return NotFoundError when no row matches.
type Store interface {
	CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error)
	GetAccountByID(ctx context.Context, id int64) (Account, error)
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
	SetAccountActive(ctx context.Context, id int64, active bool, now time.Time) error
}

func checkCreateInput(op string, in CreateAccountInput) (CreateAccountInput, error) {
	in.Email = NormalizeEmail(in.Email)
	if in.Email == "" {
		return in, invalid(op, "email is required")
	}
	if len(in.Email) > MaxEmailLength {
		return in, invalid(op, "email too long")
	}
	if in.PasswordHash == "" {
		return in, invalid(op, "password hash is required")
	}
	if in.Now.IsZero() {
		in.Now = time.Now().UTC()
	}
	return in, nil
}
