package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"postboard/cmd/identity"
	"postboard/cmd/security/password"
	"postboard/cmd/security/token"
)

type fixture struct {
	store    *identity.InMemoryStore
	tokens   *token.Manager
	svc      *Service
	resolver *Resolver
	metrics  *Metrics
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := password.DefaultConfig()
	cfg.Params.MemoryKiB = 8 * 1024
	cfg.Params.Iterations = 1
	cfg.Params.Parallelism = 1
	hasher, err := password.NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	tokens, err := token.NewManager(token.Config{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		TTL:    30 * time.Minute,
		Issuer: "postboard-test",
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	metrics, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	f := &fixture{
		store:   identity.NewInMemoryStore(),
		tokens:  tokens,
		metrics: metrics,
		now:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	f.svc, err = NewService(f.store, hasher, tokens, WithLogger(log), WithMetrics(metrics), WithClock(clock))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.resolver, err = NewResolver(f.store, tokens, WithLogger(log), WithMetrics(metrics), WithClock(clock))
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return f
}

func TestSignup_IssuesTokenForNewAccount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.svc.Signup(ctx, "alice@example.com", "pass1234")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if tok.Value == "" || tok.Type != "bearer" {
		t.Fatalf("unexpected token: %+v", tok)
	}
	if !tok.ExpiresAt.Equal(f.now.Add(30 * time.Minute)) {
		t.Fatalf("unexpected expiry: %v", tok.ExpiresAt)
	}

	acc, err := f.store.GetAccountByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetAccountByEmail: %v", err)
	}
	if acc.PasswordHash == "pass1234" || acc.PasswordHash == "" {
		t.Fatalf("password stored in clear or missing")
	}

	claims, err := f.tokens.Verify(tok.Value, f.now)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.AccountID != acc.ID || claims.Email != "alice@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Signup(ctx, "bob@example.com", "pass1234"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := f.svc.Signup(ctx, "bob@example.com", "other5678"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if got := testutil.ToFloat64(f.metrics.attempts.WithLabelValues("signup", "conflict")); got != 1 {
		t.Fatalf("expected 1 conflict, got %v", got)
	}
}

func TestSignup_EmailIsCaseSensitive(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Signup(ctx, "Carol@example.com", "pass1234"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := f.svc.Signup(ctx, "carol@example.com", "pass1234"); err != nil {
		t.Fatalf("expected distinct account for different case, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Signup(ctx, "dave@example.com", "pass1234"); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	cases := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"ok", "dave@example.com", "pass1234", nil},
		{"wrong password", "dave@example.com", "pass12345", ErrUnauthorized},
		{"unknown email", "nobody@example.com", "pass1234", ErrUnauthorized},
		{"case differs", "Dave@example.com", "pass1234", ErrUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok, err := f.svc.Login(ctx, tc.email, tc.password)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr == nil && tok.Value == "" {
				t.Fatalf("expected token")
			}
		})
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Signup(ctx, "erin@example.com", "pass1234"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	acc, err := f.store.GetAccountByEmail(ctx, "erin@example.com")
	if err != nil {
		t.Fatalf("GetAccountByEmail: %v", err)
	}
	if err := f.store.SetAccountActive(ctx, acc.ID, false, f.now); err != nil {
		t.Fatalf("SetAccountActive: %v", err)
	}
	if _, err := f.svc.Login(ctx, "erin@example.com", "pass1234"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.svc.Signup(ctx, "frank@example.com", "pass1234")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	acc, err := f.resolver.Resolve(ctx, tok.Value)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if acc.Email != "frank@example.com" {
		t.Fatalf("unexpected account: %+v", acc)
	}

	if _, err := f.resolver.Resolve(ctx, "garbage"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for garbage, got %v", err)
	}
}

func TestResolve_Expired(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.svc.Signup(ctx, "gina@example.com", "pass1234")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	f.now = f.now.Add(31 * time.Minute)

	if _, err := f.resolver.Resolve(ctx, tok.Value); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestResolve_UnknownSubject(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	iss, err := f.tokens.Issue(9999, "ghost@example.com", f.now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := f.resolver.Resolve(context.Background(), iss.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if got := testutil.ToFloat64(f.metrics.attempts.WithLabelValues("resolve", "unknown_account")); got != 1 {
		t.Fatalf("expected 1 unknown_account, got %v", got)
	}
}

func TestResolve_Inactive(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.svc.Signup(ctx, "hank@example.com", "pass1234")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	acc, _ := f.store.GetAccountByEmail(ctx, "hank@example.com")
	if err := f.store.SetAccountActive(ctx, acc.ID, false, f.now); err != nil {
		t.Fatalf("SetAccountActive: %v", err)
	}
	if _, err := f.resolver.Resolve(ctx, tok.Value); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAccountContext(t *testing.T) {
	t.Parallel()

	if _, ok := AccountFrom(context.Background()); ok {
		t.Fatalf("expected no account")
	}
	ctx := WithAccount(context.Background(), identity.Account{ID: 7})
	acc, ok := AccountFrom(ctx)
	if !ok || acc.ID != 7 {
		t.Fatalf("unexpected account: %+v %v", acc, ok)
	}
}
