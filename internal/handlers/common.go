package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	domain "github.com/stratlink-defense/api/internal/domain"
	"github.com/stratlink-defense/api/internal/i18n"
	"github.com/stratlink-defense/api/internal/services"
)

const defaultMaxBodySize = 64 * 1024

var (
	errBodyTooLarge     = errors.New("request body too large")
	errEmptyBody        = errors.New("request body is required")
	errNoEditableFields = errors.New("no editable fields provided")
)

func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, errEmptyBody
	}
	if limit <= 0 {
		limit = defaultMaxBodySize
	}
	reader := io.LimitReader(r.Body, limit+1)
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errEmptyBody
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

func isJSONNull(value json.RawMessage) bool {
	return strings.EqualFold(strings.TrimSpace(string(value)), "null")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeJSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// resolveLanguageState settles the language state for signed-in endpoints: an
// explicit lang query wins, then the caller's stored preference, then the
// configured default. Without a locale service the query parameters and
// Accept-Language alone decide.
func resolveLanguageState(r *http.Request, locale services.LocaleService, userID string) domain.LanguageState {
	if locale == nil {
		return languageStateFromRequest(r)
	}
	if _, ok := i18n.ParseLanguage(r.URL.Query().Get("lang")); ok {
		return languageStateFromRequest(r)
	}
	return locale.ResolveState(r.Context(), userID, domain.LanguageState{})
}

// languageStateFromRequest settles the caller's language state from the lang
// and variant query parameters, falling back to Accept-Language.
func languageStateFromRequest(r *http.Request) domain.LanguageState {
	query := r.URL.Query()

	lang, ok := i18n.ParseLanguage(query.Get("lang"))
	if !ok {
		lang = i18n.MatchAcceptLanguage(r.Header.Get("Accept-Language"))
	}
	state := domain.LanguageState{Language: lang, Variant: i18n.DefaultVariant(lang)}

	if i18n.IsChinese(lang) {
		switch strings.TrimSpace(query.Get("variant")) {
		case string(domain.VariantSimplified):
			state.Variant = domain.VariantSimplified
		case string(domain.VariantTraditional):
			state.Variant = domain.VariantTraditional
		}
	}
	return state
}
