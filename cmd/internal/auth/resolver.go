package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"postboard/cmd/identity"
)

// Resolver maps a bearer token to the active account it names.
type Resolver struct {
	accounts identity.Store
	tokens   TokenManager
	log      *slog.Logger
	metrics  *Metrics
	now      func() time.Time
}

// NewResolver wires a Resolver.
func NewResolver(accounts identity.Store, tokens TokenManager, opts ...Option) (*Resolver, error) {
	if accounts == nil || tokens == nil {
		return nil, errors.New("auth: nil dependency")
	}
	o := buildOptions(opts)
	return &Resolver{
		accounts: accounts,
		tokens:   tokens,
		log:      o.log,
		metrics:  o.metrics,
		now:      o.now,
	}, nil
}

// Resolve verifies tok and loads its subject. The email claim is never used
// for lookup. Missing, inactive or unreadable accounts yield ErrUnauthorized.
func (r *Resolver) Resolve(ctx context.Context, tok string) (identity.Account, error) {
	claims, err := r.tokens.Verify(tok, r.now().UTC())
	if err != nil {
		r.metrics.observe("resolve", "invalid_token")
		return identity.Account{}, ErrUnauthorized
	}

	acc, err := r.accounts.GetAccountByID(ctx, claims.AccountID)
	if err != nil {
		if !identity.IsNotFound(err) {
			r.log.ErrorContext(ctx, "auth.resolve.lookup.fail", "account_id", claims.AccountID, "err", err)
		}
		r.metrics.observe("resolve", "unknown_account")
		return identity.Account{}, ErrUnauthorized
	}
	if !acc.Active {
		r.metrics.observe("resolve", "inactive")
		return identity.Account{}, ErrUnauthorized
	}

	r.metrics.observe("resolve", "ok")
	return acc, nil
}
