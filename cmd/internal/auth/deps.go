package auth

import (
	"time"

	"postboard/cmd/security/token"
)

// CredentialHasher hashes and verifies passwords.
type CredentialHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) bool
}

// TokenManager issues and verifies access tokens.
type TokenManager interface {
	Issue(accountID int64, email string, now time.Time) (token.Issued, error)
	Verify(tok string, now time.Time) (token.Claims, error)
}

// TokenType is the only scheme handed to clients.
const TokenType = "bearer"

// Token is a freshly issued access token.
type Token struct {
	Value     string
	Type      string
	ExpiresAt time.Time
}
