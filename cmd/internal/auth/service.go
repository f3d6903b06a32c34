package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"postboard/cmd/identity"
)

// Service runs the signup and login flows.
type Service struct {
	accounts identity.Store
	hasher   CredentialHasher
	tokens   TokenManager
	log      *slog.Logger
	metrics  *Metrics
	now      func() time.Time

	dummyHash string
}

// Option configures a Service or Resolver.
type Option func(*options)

type options struct {
	log     *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{log: slog.Default(), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// NewService wires a Service.
func NewService(accounts identity.Store, hasher CredentialHasher, tokens TokenManager, opts ...Option) (*Service, error) {
	if accounts == nil || hasher == nil || tokens == nil {
		return nil, errors.New("auth: nil dependency")
	}
	o := buildOptions(opts)

	s := &Service{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		log:      o.log,
		metrics:  o.metrics,
		now:      o.now,
	}

	// Dummy hash for timing-resistant login checks.
	if hash, err := hasher.Hash("dummy-password-for-timing-only-1"); err == nil {
		s.dummyHash = hash
	}
	return s, nil
}

// Signup registers email with password and returns a token for the new account.
// Input is expected to be validated by the caller.
func (s *Service) Signup(ctx context.Context, email, password string) (Token, error) {
	email = identity.NormalizeEmail(email)

	if _, err := s.accounts.GetAccountByEmail(ctx, email); err == nil {
		s.log.InfoContext(ctx, "auth.signup.conflict", "reason", "email_taken")
		s.metrics.observe("signup", "conflict")
		return Token{}, ErrConflict
	} else if !identity.IsNotFound(err) {
		s.log.ErrorContext(ctx, "auth.signup.lookup.fail", "err", err)
		s.metrics.observe("signup", "error")
		return Token{}, ErrConflict
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.ErrorContext(ctx, "auth.signup.hash.fail", "err", err)
		s.metrics.observe("signup", "error")
		return Token{}, ErrConflict
	}

	now := s.now().UTC()
	acc, err := s.accounts.CreateAccount(ctx, identity.CreateAccountInput{
		Email:        email,
		PasswordHash: hash,
		Now:          now,
	})
	if err != nil {
		if identity.IsConflict(err) {
			s.log.InfoContext(ctx, "auth.signup.conflict", "reason", "unique_violation")
			s.metrics.observe("signup", "conflict")
		} else {
			s.log.ErrorContext(ctx, "auth.signup.create.fail", "err", err)
			s.metrics.observe("signup", "error")
		}
		return Token{}, ErrConflict
	}

	tok, err := s.issue(acc, now)
	if err != nil {
		s.log.ErrorContext(ctx, "auth.signup.issue.fail", "account_id", acc.ID, "err", err)
		s.metrics.observe("signup", "error")
		return Token{}, err
	}

	s.log.InfoContext(ctx, "auth.signup.ok", "account_id", acc.ID)
	s.metrics.observe("signup", "ok")
	return tok, nil
}

// Login checks credentials and returns a token. Every failure is ErrUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	acc, err := s.accounts.GetAccountByEmail(ctx, identity.NormalizeEmail(email))
	if err != nil {
		// Timing resistance: perform a dummy verify when the account is missing.
		if s.dummyHash != "" {
			_ = s.hasher.Verify(password, s.dummyHash)
		}
		if !identity.IsNotFound(err) {
			s.log.ErrorContext(ctx, "auth.login.lookup.fail", "err", err)
		}
		s.log.InfoContext(ctx, "auth.login.fail", "reason", "not_found")
		s.metrics.observe("login", "unauthorized")
		return Token{}, ErrUnauthorized
	}

	if !s.hasher.Verify(password, acc.PasswordHash) {
		s.log.InfoContext(ctx, "auth.login.fail", "reason", "bad_password", "account_id", acc.ID)
		s.metrics.observe("login", "unauthorized")
		return Token{}, ErrUnauthorized
	}
	if !acc.Active {
		s.log.InfoContext(ctx, "auth.login.fail", "reason", "inactive", "account_id", acc.ID)
		s.metrics.observe("login", "unauthorized")
		return Token{}, ErrUnauthorized
	}

	tok, err := s.issue(acc, s.now().UTC())
	if err != nil {
		s.log.ErrorContext(ctx, "auth.login.issue.fail", "account_id", acc.ID, "err", err)
		s.metrics.observe("login", "error")
		return Token{}, err
	}

	s.log.InfoContext(ctx, "auth.login.ok", "account_id", acc.ID)
	s.metrics.observe("login", "ok")
	return tok, nil
}

func (s *Service) issue(acc identity.Account, now time.Time) (Token, error) {
	iss, err := s.tokens.Issue(acc.ID, acc.Email, now)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: iss.Token, Type: TokenType, ExpiresAt: iss.ExpiresAt}, nil
}
