package authapi

import (
	"errors"
	"log/slog"
	"net/http"

	"postboard/cmd/internal/auth"
	"postboard/cmd/internal/httpx"
)

const (
	detailSignupFailed     = "Email already registered or registration failed"
	detailBadCredentials   = "Invalid email or password"
	detailInvalidToken     = "Invalid or expired token"
	detailInternal         = "internal error"
	codeValidation         = "validation_error"
	codeRegistrationFailed = "registration_failed"
	codeInvalidCredentials = "invalid_credentials"
)

// PasswordPolicy validates a candidate password at signup.
type PasswordPolicy interface {
	Validate(password string) error
}

// Handler wires HTTP auth endpoints to the auth service.
type Handler struct {
	log    *slog.Logger
	cfg    Config
	svc    *auth.Service
	policy PasswordPolicy
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, svc *auth.Service, policy PasswordPolicy, cfg Config) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("authapi: nil auth service")
	}
	if policy == nil {
		return nil, errors.New("authapi: nil password policy")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log:    log,
		cfg:    cfg.withDefaults(),
		svc:    svc,
		policy: policy,
	}, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST /auth/signup", h.handleSignup)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		httpx.WriteDecodeError(w, err)
		return
	}

	email, err := validateEmail(req.Email)
	if err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
		return
	}
	if err := h.policy.Validate(req.Password); err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
		return
	}

	tok, err := h.svc.Signup(r.Context(), email, req.Password)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusCreated, toTokenResponse(tok))
	case errors.Is(err, auth.ErrConflict):
		httpx.WriteError(w, http.StatusBadRequest, codeRegistrationFailed, detailSignupFailed)
	default:
		h.log.ErrorContext(r.Context(), "auth.signup.fail", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", detailInternal)
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		httpx.WriteDecodeError(w, err)
		return
	}

	email, err := validateEmail(req.Email)
	if err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
		return
	}
	if err := validateLoginPassword(req.Password, h.cfg.LoginPasswordMaxLength); err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
		return
	}

	tok, err := h.svc.Login(r.Context(), email, req.Password)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, toTokenResponse(tok))
	case errors.Is(err, auth.ErrUnauthorized):
		httpx.WriteError(w, http.StatusUnauthorized, codeInvalidCredentials, detailBadCredentials)
	default:
		h.log.ErrorContext(r.Context(), "auth.login.fail", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", detailInternal)
	}
}
