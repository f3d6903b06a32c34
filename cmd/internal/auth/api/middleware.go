package authapi

import (
	"context"
	"net/http"

	"postboard/cmd/identity"
	"postboard/cmd/internal/auth"
	"postboard/cmd/internal/httpx"
)

// AccountResolver maps a bearer token to an account.
type AccountResolver interface {
	Resolve(ctx context.Context, token string) (identity.Account, error)
}

// Middleware guards routes that require an authenticated account.
type Middleware struct {
	resolver AccountResolver
}

// NewMiddleware constructs a Middleware.
func NewMiddleware(resolver AccountResolver) *Middleware {
	return &Middleware{resolver: resolver}
}

// RequireAccount resolves the bearer token and stores the account in the
// request context. Failures respond 401 with a Bearer challenge.
func (m *Middleware) RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := httpx.BearerToken(r)
		if tok == "" || m == nil || m.resolver == nil {
			httpx.WriteUnauthorized(w, detailInvalidToken)
			return
		}
		acc, err := m.resolver.Resolve(r.Context(), tok)
		if err != nil {
			httpx.WriteUnauthorized(w, detailInvalidToken)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithAccount(r.Context(), acc)))
	})
}

// RequireAccountFunc is RequireAccount for a HandlerFunc.
func (m *Middleware) RequireAccountFunc(next http.HandlerFunc) http.Handler {
	return m.RequireAccount(next)
}
