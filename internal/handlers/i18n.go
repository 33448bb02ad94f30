package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/stratlink-defense/api/internal/domain"
	"github.com/stratlink-defense/api/internal/platform/httpx"
	"github.com/stratlink-defense/api/internal/services"
)

// I18nHandlers exposes the language picker, translation dictionaries, and
// nationality defaults.
type I18nHandlers struct {
	locale services.LocaleService
}

// NewI18nHandlers constructs handlers serving localization metadata.
func NewI18nHandlers(locale services.LocaleService) *I18nHandlers {
	return &I18nHandlers{locale: locale}
}

// Routes wires the /i18n endpoints onto the provided router.
func (h *I18nHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/languages", h.languages)
	r.Get("/translations/{lang}", h.translations)
	r.Get("/nationalities/{nationality}", h.nationality)
}

func (h *I18nHandlers) languages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.locale == nil {
		httpx.WriteError(ctx, w, httpx.NewError("locale_service_unavailable", "locale service is unavailable", http.StatusServiceUnavailable))
		return
	}

	options := h.locale.Languages(ctx)
	payloads := make([]languagePayload, 0, len(options))
	for _, option := range options {
		payloads = append(payloads, languagePayload{
			Code:     string(option.Language),
			Label:    option.Label,
			Currency: option.Currency,
			Locale:   option.Locale,
		})
	}
	writeJSONResponse(w, http.StatusOK, languagesResponse{Languages: payloads})
}

func (h *I18nHandlers) translations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.locale == nil {
		httpx.WriteError(ctx, w, httpx.NewError("locale_service_unavailable", "locale service is unavailable", http.StatusServiceUnavailable))
		return
	}

	lang := domain.Language(strings.TrimSpace(chi.URLParam(r, "lang")))
	dict, err := h.locale.Dictionary(ctx, lang)
	if err != nil {
		h.writeLocaleError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, translationsResponse{
		Language:     string(lang),
		Translations: dict,
	})
}

func (h *I18nHandlers) nationality(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.locale == nil {
		httpx.WriteError(ctx, w, httpx.NewError("locale_service_unavailable", "locale service is unavailable", http.StatusServiceUnavailable))
		return
	}

	raw := chi.URLParam(r, "nationality")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}

	suggestion, ok := h.locale.NationalityDefault(ctx, raw)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("nationality_not_found", "no language mapping for nationality", http.StatusNotFound))
		return
	}
	writeJSONResponse(w, http.StatusOK, nationalityPayload{
		Nationality: strings.TrimSpace(raw),
		Language:    string(suggestion.Language),
		HasVariants: suggestion.HasVariants,
	})
}

func (h *I18nHandlers) writeLocaleError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrLocaleInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("language_not_found", err.Error(), http.StatusNotFound))
	case errors.Is(err, services.ErrLocaleUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("locale_service_unavailable", "locale service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("locale_error", "failed to read localization data", http.StatusInternalServerError))
	}
}

type languagesResponse struct {
	Languages []languagePayload `json:"languages"`
}

type languagePayload struct {
	Code     string `json:"code"`
	Label    string `json:"label"`
	Currency string `json:"currency"`
	Locale   string `json:"locale"`
}

type translationsResponse struct {
	Language     string            `json:"language"`
	Translations map[string]string `json:"translations"`
}

type nationalityPayload struct {
	Nationality string `json:"nationality"`
	Language    string `json:"language,omitempty"`
	HasVariants bool   `json:"has_variants"`
}
