package auth

import (
	"context"

	"postboard/cmd/identity"
)

type accountKey struct{}

// WithAccount returns ctx carrying the resolved account.
func WithAccount(ctx context.Context, acc identity.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, acc)
}

// AccountFrom returns the account stored by WithAccount.
func AccountFrom(ctx context.Context) (identity.Account, bool) {
	acc, ok := ctx.Value(accountKey{}).(identity.Account)
	return acc, ok
}
