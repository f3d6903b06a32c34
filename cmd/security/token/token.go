package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Algorithm is the only signing method produced and accepted.
	Algorithm = "HS256"

	// MinSecretBytes is the smallest accepted HMAC secret.
	MinSecretBytes = 32

	// DefaultTTL matches the access-token lifetime clients expect.
	DefaultTTL = 30 * time.Minute
)

// Config configures a Manager.
type Config struct {
	Secret    []byte
	TTL       time.Duration
	Issuer    string
	ClockSkew time.Duration
}

// Claims is the verified claim set of an access token.
type Claims struct {
	AccountID int64
	Subject   string
	Email     string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issued is a freshly signed token.
type Issued struct {
	Token     string
	ExpiresAt time.Time
}

// Manager signs and verifies access tokens. Safe for concurrent use.
type Manager struct {
	secret    []byte
	ttl       time.Duration
	issuer    string
	clockSkew time.Duration
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrSecretMissing
	}
	if len(cfg.Secret) < MinSecretBytes {
		return nil, ErrSecretTooShort
	}
	if cfg.TTL < 0 || cfg.ClockSkew < 0 {
		return nil, ErrConfig
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Manager{
		secret:    secret,
		ttl:       cfg.TTL,
		issuer:    strings.TrimSpace(cfg.Issuer),
		clockSkew: cfg.ClockSkew,
	}, nil
}

// Issue signs a token for accountID/email, valid from now until now+TTL.
func (m *Manager) Issue(accountID int64, email string, now time.Time) (Issued, error) {
	if accountID <= 0 {
		return Issued{}, fmt.Errorf("%w: account id must be positive", ErrConfig)
	}

	exp := now.Add(m.ttl)
	claims := accessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Issued{}, fmt.Errorf("sign token: %w", err)
	}

	// NumericDate truncates to seconds; report what the token actually carries.
	return Issued{Token: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks signature, algorithm and expiry at instant now.
func (m *Manager) Verify(token string, now time.Time) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{Algorithm}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(m.clockSkew),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	var parsed accessClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	id, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{
		AccountID: id,
		Subject:   parsed.Subject,
		Email:     parsed.Email,
		Issuer:    parsed.Issuer,
	}
	if parsed.IssuedAt != nil {
		out.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		out.ExpiresAt = parsed.ExpiresAt.Time
	}
	return out, nil
}

// GenerateSecret returns MinSecretBytes of crypto-random key material.
// Intended for development runs where no secret is configured.
func GenerateSecret() ([]byte, error) {
	b := make([]byte, MinSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Join(ErrSecretMissing, err)
	}
	return b, nil
}
