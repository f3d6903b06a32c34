// Package app wires the postboard server runtime: config, logging, stores,
// HTTP routes and the realtime gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"postboard/cmd/internal/auth"
	authapi "postboard/cmd/internal/auth/api"
	"postboard/cmd/internal/posts"
	postsapi "postboard/cmd/internal/posts/api"
	"postboard/cmd/internal/realtime"
	"postboard/cmd/security/password"
	"postboard/cmd/security/token"
)

// App owns the server wiring and every long-lived dependency.
type App struct {
	cfg Config
	log Logger
	now func() time.Time

	stores   *stores
	registry *prometheus.Registry

	authAPI  *authapi.Handler
	postsAPI *postsapi.Handler
	hub      *realtime.Hub
	ws       *realtime.WSGateway

	handler http.Handler
}

// New constructs a fully wired App from config and logger.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := newStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log, now: time.Now, stores: st, registry: newRegistry()}
	if err := a.wire(); err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	return a, nil
}

func (a *App) wire() error {
	cfg := a.cfg

	secret, err := a.tokenSecret()
	if err != nil {
		return err
	}
	tokens, err := token.NewManager(cfg.TokenConfig(secret))
	if err != nil {
		return fmt.Errorf("token manager: %w", err)
	}
	hasher, err := password.NewHasher(cfg.PasswordConfig())
	if err != nil {
		return fmt.Errorf("password hasher: %w", err)
	}

	authMetrics, err := auth.NewMetrics(a.registry)
	if err != nil {
		return err
	}
	authSvc, err := auth.NewService(a.stores.accounts, hasher, tokens,
		auth.WithLogger(a.log), auth.WithMetrics(authMetrics))
	if err != nil {
		return err
	}
	resolver, err := auth.NewResolver(a.stores.accounts, tokens,
		auth.WithLogger(a.log), auth.WithMetrics(authMetrics))
	if err != nil {
		return err
	}

	a.authAPI, err = authapi.NewHandler(a.log, authSvc, hasher.Policy(), authapi.Config{MaxBodyBytes: cfg.MaxPayloadBytes})
	if err != nil {
		return err
	}

	cache := posts.NewCache(cfg.CacheConfig())
	postMetrics, err := posts.NewMetrics(a.registry, cache)
	if err != nil {
		return err
	}
	postOpts := []posts.Option{posts.WithLogger(a.log), posts.WithMetrics(postMetrics)}

	if cfg.WSEnabled {
		a.hub = realtime.NewHub(a.log)
		if err := a.hub.Register(a.registry); err != nil {
			return err
		}
		a.ws, err = realtime.NewWSGateway(a.log, a.hub, resolver, cfg.GatewayConfig())
		if err != nil {
			return err
		}
		postOpts = append(postOpts, posts.WithPublisher(a.hub))
	}

	postSvc, err := posts.NewService(a.stores.posts, cache, postOpts...)
	if err != nil {
		return err
	}
	guard := authapi.NewMiddleware(resolver)
	a.postsAPI, err = postsapi.NewHandler(a.log, postSvc, guard.RequireAccount, cfg.MaxPayloadBytes)
	if err != nil {
		return err
	}

	httpMetrics, err := newHTTPMetrics(a.registry)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	a.registerHTTP(mux)

	var h http.Handler = httpMetrics.wrap(mux)
	h = WithPayloadLimit(h, cfg.MaxPayloadBytes)
	h = WithCORS(h, cfg, a.log)
	h = WithSecurityHeaders(h)
	h = WithRequestLogging(h, a.log)
	h = WithRequestID(h)
	a.handler = h
	return nil
}

// tokenSecret returns the configured secret, or a per-process one outside production.
func (a *App) tokenSecret() ([]byte, error) {
	if a.cfg.TokenSecret != "" {
		return []byte(a.cfg.TokenSecret), nil
	}
	if a.cfg.Environment == EnvProduction {
		return nil, token.ErrSecretMissing
	}
	secret, err := token.GenerateSecret()
	if err != nil {
		return nil, err
	}
	a.log.Warn("token.secret.generated", "reason", "POSTBOARD_TOKEN_SECRET unset; tokens will not survive a restart")
	return secret, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "env", a.cfg.Environment, "store", a.stores.kind, "ws_enabled", a.ws != nil)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		_ = a.Close(context.Background())
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), nonZeroDuration(a.cfg.ShutdownTimeout, 10*time.Second))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}
	if err := a.Close(shutdownCtx); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

// Close releases store resources.
func (a *App) Close(ctx context.Context) error {
	return a.stores.Close(ctx)
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
