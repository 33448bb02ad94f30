package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stratlink-defense/api/internal/identity"
	"github.com/stratlink-defense/api/internal/platform/auth"
	"github.com/stratlink-defense/api/internal/platform/httpx"
	"github.com/stratlink-defense/api/internal/services"
)

const (
	maxAuthBodySize        = 16 * 1024
	defaultLoginRateLimit  = 10
	defaultLoginRateWindow = time.Minute
)

// AuthHandlers fronts the identity provider for credential flows.
type AuthHandlers struct {
	authn    *auth.Authenticator
	accounts services.AccountService
	limiter  rateLimiter
}

// AuthOption customises the auth handlers.
type AuthOption func(*AuthHandlers)

// WithLoginRateLimit overrides how many credential attempts one client may
// make per window. A non-positive limit disables rate limiting.
func WithLoginRateLimit(limit int, window time.Duration) AuthOption {
	return func(h *AuthHandlers) {
		h.limiter = newSimpleRateLimiter(limit, window, nil)
	}
}

// NewAuthHandlers constructs handlers for login, registration, and logout.
func NewAuthHandlers(authn *auth.Authenticator, accounts services.AccountService, opts ...AuthOption) *AuthHandlers {
	h := &AuthHandlers{
		authn:    authn,
		accounts: accounts,
		limiter:  newSimpleRateLimiter(defaultLoginRateLimit, defaultLoginRateWindow, nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes wires the /auth endpoints onto the provided router.
func (h *AuthHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/login", h.login)
	r.Post("/register", h.register)
	r.Group(func(protected chi.Router) {
		if h.authn != nil {
			protected.Use(h.authn.RequireFirebaseAuth())
		}
		protected.Post("/logout", h.logout)
	})
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.accounts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("account_service_unavailable", "account service is unavailable", http.StatusServiceUnavailable))
		return
	}
	if !h.allow(r) {
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many attempts; retry later", http.StatusTooManyRequests))
		return
	}

	body, err := readLimitedBody(r, maxAuthBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	result, err := h.accounts.SignIn(ctx, services.SignInCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeAccountError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, sessionResponse{
		UID:          result.UID,
		Email:        result.Email,
		DisplayName:  result.DisplayName,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    int64(result.ExpiresIn.Seconds()),
		Profile:      buildProfilePayload(result.Profile),
	})
}

func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.accounts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("account_service_unavailable", "account service is unavailable", http.StatusServiceUnavailable))
		return
	}
	if !h.allow(r) {
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many attempts; retry later", http.StatusTooManyRequests))
		return
	}

	body, err := readLimitedBody(r, maxAuthBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req registerRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	result, err := h.accounts.Register(ctx, services.RegisterCommand{
		Email:        req.Email,
		Password:     req.Password,
		DisplayName:  req.DisplayName,
		Nationality:  req.Nationality,
		Organization: req.Organization,
		Phone:        req.Phone,
		Address:      req.Address,
		DateOfBirth:  req.DateOfBirth,
	})
	if err != nil {
		h.writeAccountError(ctx, w, err)
		return
	}

	payload := registerResponse{
		UID:         result.UID,
		Email:       result.Email,
		DisplayName: result.DisplayName,
		Profile:     buildProfilePayload(result.Profile),
		HasVariants: result.HasVariants,
	}
	if result.SuggestedLanguage != "" {
		payload.SuggestedLanguage = string(result.SuggestedLanguage)
	}
	writeJSONResponse(w, http.StatusCreated, payload)
}

func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.accounts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("account_service_unavailable", "account service is unavailable", http.StatusServiceUnavailable))
		return
	}

	ident, ok := auth.IdentityFromContext(ctx)
	if !ok || ident == nil || strings.TrimSpace(ident.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	if err := h.accounts.Logout(ctx, ident.UID); err != nil {
		h.writeAccountError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandlers) allow(r *http.Request) bool {
	if h.limiter == nil {
		return true
	}
	return h.limiter.Allow(clientKey(r))
}

func clientKey(r *http.Request) string {
	if r == nil {
		return ""
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return host
}

// writeAccountError surfaces provider rejections with the provider's own
// message and status so credential errors reach the client untouched.
func (h *AuthHandlers) writeAccountError(ctx context.Context, w http.ResponseWriter, err error) {
	var providerErr *identity.ProviderError
	switch {
	case errors.As(err, &providerErr):
		status := providerErr.Status
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		code := "provider_rejected"
		if status == http.StatusUnauthorized || status == http.StatusBadRequest {
			code = "invalid_credentials"
		}
		httpx.WriteError(ctx, w, httpx.NewError(code, providerErr.Message, status))
	case errors.Is(err, services.ErrAccountInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrAccountNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("account_not_found", "account not found", http.StatusNotFound))
	case errors.Is(err, services.ErrAccountUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("account_service_unavailable", "identity provider is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("account_error", fmt.Sprintf("account operation failed: %v", err), http.StatusInternalServerError))
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	DisplayName  string `json:"display_name"`
	Nationality  string `json:"nationality"`
	Organization string `json:"organization"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	DateOfBirth  string `json:"date_of_birth"`
}

type sessionResponse struct {
	UID          string         `json:"uid"`
	Email        string         `json:"email"`
	DisplayName  string         `json:"display_name"`
	IDToken      string         `json:"id_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    int64          `json:"expires_in"`
	Profile      profilePayload `json:"profile"`
}

type registerResponse struct {
	UID               string         `json:"uid"`
	Email             string         `json:"email"`
	DisplayName       string         `json:"display_name"`
	Profile           profilePayload `json:"profile"`
	SuggestedLanguage string         `json:"suggested_language,omitempty"`
	HasVariants       bool           `json:"has_variants"`
}
