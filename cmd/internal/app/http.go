package app

import (
	"net/http"
	"time"

	"postboard/cmd/internal/httpx"
)

type rootResponse struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
	Message   string  `json:"message"`
}

type healthResponse struct {
	Status      string  `json:"status"`
	Version     string  `json:"version"`
	Timestamp   float64 `json:"timestamp"`
	Environment string  `json:"environment"`
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func (a *App) registerHTTP(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, rootResponse{
			Status:    "healthy",
			Timestamp: unixSeconds(a.now()),
			Message:   "Social Posts API is running",
		})
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:      "healthy",
			Version:     Version,
			Timestamp:   unixSeconds(a.now()),
			Environment: a.cfg.Environment,
		})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.stores.Ping(r.Context()); err != nil {
			a.log.Info("readyz.db.not_ready", "store", a.stores.kind, "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "not_ready", "db not ready")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready", "store": a.stores.kind})
	})

	mux.Handle("GET /metrics", metricsHandler(a.registry))

	a.authAPI.Register(mux)
	a.postsAPI.Register(mux)

	if a.ws != nil {
		mux.Handle("GET /ws", a.ws)
	}
}
