package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func mustManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	if cfg.Secret == nil {
		cfg.Secret = testSecret
	}
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	m := mustManager(t, Config{})
	now := time.Unix(1_700_000_000, 0)

	iss, err := m.Issue(42, "a@x.com", now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !iss.ExpiresAt.Equal(now.Add(DefaultTTL)) {
		t.Fatalf("exp = %v, want %v", iss.ExpiresAt, now.Add(DefaultTTL))
	}

	c, err := m.Verify(iss.Token, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if c.AccountID != 42 || c.Subject != "42" || c.Email != "a@x.com" {
		t.Fatalf("unexpected claims: %+v", c)
	}
	if !c.IssuedAt.Equal(now) {
		t.Fatalf("iat = %v, want %v", c.IssuedAt, now)
	}
}

func TestVerify_Expired(t *testing.T) {
	m := mustManager(t, Config{TTL: time.Minute})
	now := time.Unix(1_700_000_000, 0)

	iss, err := m.Issue(1, "a@x.com", now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Verify(iss.Token, now.Add(2*time.Minute)); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	a := mustManager(t, Config{})
	b := mustManager(t, Config{Secret: []byte(strings.Repeat("z", 32))})
	now := time.Now()

	iss, err := a.Issue(1, "a@x.com", now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := b.Verify(iss.Token, now); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	m := mustManager(t, Config{})
	now := time.Now()

	claims := accessClaims{
		Email: "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	for _, tok := range []string{hs512, none} {
		if _, err := m.Verify(tok, now); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	}
}

func TestVerify_Malformed(t *testing.T) {
	m := mustManager(t, Config{})
	for _, tok := range []string{"", "   ", "abc", "a.b.c", strings.Repeat(".", 10)} {
		if _, err := m.Verify(tok, time.Now()); err != ErrInvalidToken {
			t.Fatalf("Verify(%q): expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestVerify_NonNumericSubject(t *testing.T) {
	m := mustManager(t, Config{})
	now := time.Now()

	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(tok, now); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Issuer(t *testing.T) {
	a := mustManager(t, Config{Issuer: "postboard"})
	b := mustManager(t, Config{Issuer: "other"})
	now := time.Now()

	iss, err := a.Issue(7, "a@x.com", now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := a.Verify(iss.Token, now); err != nil {
		t.Fatalf("Verify same issuer: %v", err)
	}
	if _, err := b.Verify(iss.Token, now); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for foreign issuer, got %v", err)
	}
}

func TestNewManager_SecretChecks(t *testing.T) {
	if _, err := NewManager(Config{}); err != ErrSecretMissing {
		t.Fatalf("expected ErrSecretMissing, got %v", err)
	}
	if _, err := NewManager(Config{Secret: []byte("short")}); err != ErrSecretTooShort {
		t.Fatalf("expected ErrSecretTooShort, got %v", err)
	}
}

func TestGenerateSecret(t *testing.T) {
	s, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	if len(s) != MinSecretBytes {
		t.Fatalf("len = %d", len(s))
	}
	if _, err := NewManager(Config{Secret: s}); err != nil {
		t.Fatalf("NewManager with generated secret: %v", err)
	}
}
