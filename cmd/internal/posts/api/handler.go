// Package postsapi exposes the post endpoints over HTTP. Every route requires
// an authenticated account.
package postsapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"postboard/cmd/internal/auth"
	"postboard/cmd/internal/httpx"
	"postboard/cmd/internal/posts"
)

const (
	msgCreated = "Post created successfully"
	msgDeleted = "Post deleted successfully"

	detailCreateFailed = "Failed to create post"
	detailNotFound     = "Post not found or you don't have permission to delete it"
	detailListFailed   = "Failed to list posts"
)

// Handler serves /posts.
type Handler struct {
	log          *slog.Logger
	svc          *posts.Service
	guard        func(http.Handler) http.Handler
	maxBodyBytes int64
}

// NewHandler constructs a Handler. guard must install the authenticated
// account in the request context (see authapi.Middleware.RequireAccount).
func NewHandler(log *slog.Logger, svc *posts.Service, guard func(http.Handler) http.Handler, maxBodyBytes int64) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("postsapi: nil posts service")
	}
	if guard == nil {
		return nil, errors.New("postsapi: nil auth guard")
	}
	if log == nil {
		log = slog.Default()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = httpx.DefaultMaxBodyBytes
	}
	return &Handler{log: log, svc: svc, guard: guard, maxBodyBytes: maxBodyBytes}, nil
}

// Register wires post routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	create := h.guard(http.HandlerFunc(h.handleCreate))
	list := h.guard(http.HandlerFunc(h.handleList))

	mux.Handle("POST /posts", create)
	mux.Handle("POST /posts/{$}", create)
	mux.Handle("GET /posts", list)
	mux.Handle("GET /posts/{$}", list)
	mux.Handle("DELETE /posts/{id}", h.guard(http.HandlerFunc(h.handleDelete)))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	acc, ok := auth.AccountFrom(r.Context())
	if !ok {
		httpx.WriteUnauthorized(w, "Invalid or expired token")
		return
	}

	var req createPostRequest
	if err := httpx.DecodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		httpx.WriteDecodeError(w, err)
		return
	}
	if req.Text == nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "validation_error", "text: field required")
		return
	}

	p, err := h.svc.Create(r.Context(), acc.ID, *req.Text)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusCreated, createPostResponse{PostID: p.ID, Message: msgCreated})
	case posts.IsValidation(err):
		httpx.WriteError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
	default:
		httpx.WriteError(w, http.StatusBadRequest, "create_failed", detailCreateFailed)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	acc, ok := auth.AccountFrom(r.Context())
	if !ok {
		httpx.WriteUnauthorized(w, "Invalid or expired token")
		return
	}

	listing, err := h.svc.List(r.Context(), acc.ID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "posts.list.http.fail", "owner_id", acc.ID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "list_failed", detailListFailed)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toListResponse(listing))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	acc, ok := auth.AccountFrom(r.Context())
	if !ok {
		httpx.WriteUnauthorized(w, "Invalid or expired token")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "validation_error", "post_id: must be an integer")
		return
	}

	deleted, err := h.svc.Delete(r.Context(), id, acc.ID)
	if err != nil {
		httpx.WriteError(w, http.StatusNotFound, "not_found", detailNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, deletePostResponse{Message: msgDeleted, PostID: deleted})
}
