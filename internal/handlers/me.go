package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/stratlink-defense/api/internal/domain"
	"github.com/stratlink-defense/api/internal/platform/auth"
	"github.com/stratlink-defense/api/internal/platform/httpx"
	"github.com/stratlink-defense/api/internal/services"
)

// MeHandlers serves the signed-in buyer's profile and display preferences.
type MeHandlers struct {
	authn    *auth.Authenticator
	accounts services.AccountService
	locale   services.LocaleService
}

// NewMeHandlers constructs the user-scoped handlers.
func NewMeHandlers(authn *auth.Authenticator, accounts services.AccountService, locale services.LocaleService) *MeHandlers {
	return &MeHandlers{
		authn:    authn,
		accounts: accounts,
		locale:   locale,
	}
}

// Routes wires the /me endpoints onto the provided router.
func (h *MeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/", h.profile)
	r.Put("/", h.updateProfile)
	r.Get("/preferences", h.preferences)
	r.Put("/preferences", h.savePreferences)
}

func (h *MeHandlers) profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.accounts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("account_service_unavailable", "account service is unavailable", http.StatusServiceUnavailable))
		return
	}

	profile, err := h.accounts.Profile(ctx, uid)
	if err != nil {
		h.writeAccountError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildProfilePayload(profile))
}

func (h *MeHandlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.accounts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("account_service_unavailable", "account service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, defaultMaxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	cmd := services.UpdateProfileCommand{UserID: uid}
	edited := false
	for key, raw := range fields {
		var target **string
		switch key {
		case "display_name":
			target = &cmd.DisplayName
		case "nationality":
			target = &cmd.Nationality
		case "organization":
			target = &cmd.Organization
		case "phone":
			target = &cmd.Phone
		case "address":
			target = &cmd.Address
		case "date_of_birth":
			target = &cmd.DateOfBirth
		default:
			continue
		}
		value, err := decodeStringField(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "field "+key+" must be a string", http.StatusBadRequest))
			return
		}
		*target = value
		edited = true
	}
	if !edited {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", errNoEditableFields.Error(), http.StatusBadRequest))
		return
	}

	profile, err := h.accounts.UpdateProfile(ctx, cmd)
	if err != nil {
		h.writeAccountError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildProfilePayload(profile))
}

func (h *MeHandlers) preferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.locale == nil {
		httpx.WriteError(ctx, w, httpx.NewError("locale_service_unavailable", "locale service is unavailable", http.StatusServiceUnavailable))
		return
	}

	prefs, err := h.locale.Preferences(ctx, uid)
	if err != nil {
		h.writeLocaleError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildPreferencesPayload(prefs))
}

func (h *MeHandlers) savePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.locale == nil {
		httpx.WriteError(ctx, w, httpx.NewError("locale_service_unavailable", "locale service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, defaultMaxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req preferencesRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	prefs, err := h.locale.SavePreferences(ctx, services.SavePreferencesCommand{
		UserID: uid,
		Preferences: domain.Preferences{
			Language: domain.Language(strings.TrimSpace(req.Language)),
			Variant:  domain.ChineseVariant(strings.TrimSpace(req.Variant)),
			Theme:    strings.TrimSpace(req.Theme),
		},
	})
	if err != nil {
		h.writeLocaleError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildPreferencesPayload(prefs))
}

func (h *MeHandlers) requireIdentity(ctx context.Context, w http.ResponseWriter) (string, bool) {
	ident, ok := auth.IdentityFromContext(ctx)
	if !ok || ident == nil || strings.TrimSpace(ident.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return "", false
	}
	return ident.UID, true
}

func (h *MeHandlers) writeAccountError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrAccountInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrAccountNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("account_not_found", "account not found", http.StatusNotFound))
	case errors.Is(err, services.ErrAccountUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("account_service_unavailable", "account store is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("account_error", "failed to process account request", http.StatusInternalServerError))
	}
}

func (h *MeHandlers) writeLocaleError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrLocaleInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrLocaleUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("locale_service_unavailable", "preference store is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("locale_error", "failed to process preferences", http.StatusInternalServerError))
	}
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}

// decodeStringField interprets a JSON field as an optional string. JSON null
// clears the value.
func decodeStringField(raw json.RawMessage) (*string, error) {
	if isJSONNull(raw) {
		empty := ""
		return &empty, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return &value, nil
}

type preferencesRequest struct {
	Language string `json:"language"`
	Variant  string `json:"chinese_variant"`
	Theme    string `json:"theme"`
}

type preferencesPayload struct {
	Language  string `json:"language"`
	Variant   string `json:"chinese_variant,omitempty"`
	Theme     string `json:"theme"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func buildPreferencesPayload(prefs services.Preferences) preferencesPayload {
	return preferencesPayload{
		Language:  string(prefs.Language),
		Variant:   string(prefs.Variant),
		Theme:     prefs.Theme,
		UpdatedAt: formatTime(prefs.UpdatedAt),
	}
}

type profilePayload struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	Nationality  string `json:"nationality,omitempty"`
	Organization string `json:"organization,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	DateOfBirth  string `json:"date_of_birth,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

func buildProfilePayload(profile services.Profile) profilePayload {
	return profilePayload{
		UID:          profile.UID,
		Email:        profile.Email,
		DisplayName:  profile.DisplayName,
		Nationality:  profile.Nationality,
		Organization: profile.Organization,
		Phone:        profile.Phone,
		Address:      profile.Address,
		DateOfBirth:  profile.DateOfBirth,
		CreatedAt:    formatTime(profile.CreatedAt),
		UpdatedAt:    formatTime(profile.UpdatedAt),
	}
}
