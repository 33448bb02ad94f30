package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/stratlink-defense/api/internal/domain"
	"github.com/stratlink-defense/api/internal/i18n"
	"github.com/stratlink-defense/api/internal/repositories"
)

// ErrLocaleInvalidInput indicates an unknown language, variant, or empty command.
var ErrLocaleInvalidInput = errors.New("locale service: invalid input")

// ErrLocaleUnavailable indicates the preference store cannot fulfil the request.
var ErrLocaleUnavailable = errors.New("locale service: unavailable")

const defaultTheme = "dark"

// LocaleServiceDeps wires the translation bundle and the preference store.
type LocaleServiceDeps struct {
	Bundle          *i18n.Bundle
	Preferences     repositories.PreferenceRepository
	DefaultLanguage domain.Language
	Clock           func() time.Time
	Logger          func(ctx context.Context, event string, fields map[string]any)
}

type localeService struct {
	bundle      *i18n.Bundle
	preferences repositories.PreferenceRepository
	defaultLang domain.Language
	now         func() time.Time
	logger      func(context.Context, string, map[string]any)
}

var _ LocaleService = (*localeService)(nil)

// NewLocaleService constructs a LocaleService enforcing dependency validation.
func NewLocaleService(deps LocaleServiceDeps) (LocaleService, error) {
	if deps.Bundle == nil {
		return nil, errors.New("locale service: bundle is required")
	}

	defaultLang := deps.DefaultLanguage
	if defaultLang == "" {
		defaultLang = domain.LanguageEnglish
	}
	if _, ok := i18n.ParseLanguage(string(defaultLang)); !ok {
		return nil, fmt.Errorf("locale service: unknown default language %q", defaultLang)
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &localeService{
		bundle:      deps.Bundle,
		preferences: deps.Preferences,
		defaultLang: defaultLang,
		now:         func() time.Time { return clock().UTC() },
		logger:      logger,
	}, nil
}

// Languages lists the selectable languages in picker order.
func (s *localeService) Languages(ctx context.Context) []LanguageOption {
	options := make([]LanguageOption, 0, len(i18n.Languages))
	for _, lang := range i18n.Languages {
		options = append(options, LanguageOption{
			Language: lang,
			Label:    i18n.Label(lang),
			Currency: i18n.CurrencyCode(lang),
			Locale:   i18n.Locale(lang),
		})
	}
	return options
}

// Dictionary returns a copy of the translation dictionary for one language.
func (s *localeService) Dictionary(ctx context.Context, lang domain.Language) (map[string]string, error) {
	parsed, ok := i18n.ParseLanguage(string(lang))
	if !ok {
		return nil, fmt.Errorf("%w: unknown language %q", ErrLocaleInvalidInput, lang)
	}
	dict, ok := s.bundle.Dictionary(parsed)
	if !ok {
		return nil, fmt.Errorf("%w: no dictionary for %q", ErrLocaleInvalidInput, parsed)
	}
	return dict, nil
}

// ResolveState settles the language state for a request. An explicit valid
// request wins; otherwise stored preferences apply for signed-in users, and
// the configured default covers everyone else. Preference store failures are
// advisory and never block the request.
func (s *localeService) ResolveState(ctx context.Context, userID string, requested LanguageState) LanguageState {
	if lang, ok := i18n.ParseLanguage(string(requested.Language)); ok {
		return normaliseVariant(domain.LanguageState{Language: lang, Variant: requested.Variant})
	}

	uid := strings.TrimSpace(userID)
	if uid != "" && s.preferences != nil {
		prefs, err := s.preferences.FindByUID(ctx, uid)
		if err == nil {
			if lang, ok := i18n.ParseLanguage(string(prefs.Language)); ok {
				return normaliseVariant(domain.LanguageState{Language: lang, Variant: prefs.Variant})
			}
		} else if !isRepoNotFound(err) {
			s.logger(ctx, "locale.preferences_load_failed", map[string]any{
				"userID": uid,
				"error":  err.Error(),
			})
		}
	}

	return domain.LanguageState{
		Language: s.defaultLang,
		Variant:  i18n.DefaultVariant(s.defaultLang),
	}
}

// SetLanguage switches the selected language. Choosing a Chinese language
// seeds its script variant only when none is chosen yet; a variant already
// chosen survives a switch between Chinese languages. Any other language
// clears the variant.
func (s *localeService) SetLanguage(ctx context.Context, cmd SetLanguageCommand) (LanguageState, error) {
	lang, ok := i18n.ParseLanguage(string(cmd.Language))
	if !ok {
		return LanguageState{}, fmt.Errorf("%w: unknown language %q", ErrLocaleInvalidInput, cmd.Language)
	}

	state := switchLanguage(cmd.Current, lang)
	s.persistState(ctx, cmd.UserID, state)
	return state, nil
}

// switchLanguage applies a language selection against the current state.
func switchLanguage(current domain.LanguageState, lang domain.Language) domain.LanguageState {
	state := domain.LanguageState{
		Language: lang,
		Variant:  i18n.DefaultVariant(lang),
	}
	if i18n.IsChinese(lang) {
		switch current.Variant {
		case domain.VariantSimplified, domain.VariantTraditional:
			state.Variant = current.Variant
		}
	}
	return state
}

// SetChineseVariant switches the Chinese script variant and forces the
// matching language so variant and selection never disagree.
func (s *localeService) SetChineseVariant(ctx context.Context, cmd SetChineseVariantCommand) (LanguageState, error) {
	var state domain.LanguageState
	switch cmd.Variant {
	case domain.VariantSimplified:
		state = domain.LanguageState{Language: domain.LanguageChineseSimplified, Variant: domain.VariantSimplified}
	case domain.VariantTraditional:
		state = domain.LanguageState{Language: domain.LanguageChineseTraditional, Variant: domain.VariantTraditional}
	default:
		return LanguageState{}, fmt.Errorf("%w: unknown variant %q", ErrLocaleInvalidInput, cmd.Variant)
	}

	s.persistState(ctx, cmd.UserID, state)
	return state, nil
}

// NationalityDefault reports the language suggested for a nationality.
func (s *localeService) NationalityDefault(ctx context.Context, nationality string) (i18n.NationalityLanguage, bool) {
	return i18n.LanguageForNationality(nationality)
}

// Preferences loads the stored preferences, falling back to defaults for
// users who never saved any.
func (s *localeService) Preferences(ctx context.Context, userID string) (Preferences, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return Preferences{}, fmt.Errorf("%w: user id is required", ErrLocaleInvalidInput)
	}
	if s.preferences == nil {
		return Preferences{}, ErrLocaleUnavailable
	}

	prefs, err := s.preferences.FindByUID(ctx, uid)
	if err != nil {
		if isRepoNotFound(err) {
			return domain.Preferences{
				Language: s.defaultLang,
				Variant:  i18n.DefaultVariant(s.defaultLang),
				Theme:    defaultTheme,
			}, nil
		}
		if isRepoUnavailable(err) {
			return Preferences{}, fmt.Errorf("%w: %v", ErrLocaleUnavailable, err)
		}
		return Preferences{}, err
	}

	normalised := normaliseVariant(domain.LanguageState{Language: prefs.Language, Variant: prefs.Variant})
	prefs.Language = normalised.Language
	prefs.Variant = normalised.Variant
	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	return prefs, nil
}

// SavePreferences validates and persists display preferences. Language and
// variant updates run through the same transition rules as a direct switch,
// applied against the caller's stored state.
func (s *localeService) SavePreferences(ctx context.Context, cmd SavePreferencesCommand) (Preferences, error) {
	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return Preferences{}, fmt.Errorf("%w: user id is required", ErrLocaleInvalidInput)
	}
	if s.preferences == nil {
		return Preferences{}, ErrLocaleUnavailable
	}

	prefs := cmd.Preferences
	lang, ok := i18n.ParseLanguage(string(prefs.Language))
	if !ok {
		return Preferences{}, fmt.Errorf("%w: unknown language %q", ErrLocaleInvalidInput, prefs.Language)
	}

	state := switchLanguage(s.ResolveState(ctx, uid, domain.LanguageState{}), lang)
	if i18n.IsChinese(lang) {
		switch prefs.Variant {
		case domain.VariantSimplified, domain.VariantTraditional:
			switched, err := s.SetChineseVariant(ctx, SetChineseVariantCommand{Current: state, Variant: prefs.Variant})
			if err != nil {
				return Preferences{}, err
			}
			state = switched
		}
	}
	prefs.Language = state.Language
	prefs.Variant = state.Variant
	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	prefs.UpdatedAt = s.now()

	if err := s.preferences.Save(ctx, uid, prefs); err != nil {
		if isRepoUnavailable(err) {
			return Preferences{}, fmt.Errorf("%w: %v", ErrLocaleUnavailable, err)
		}
		return Preferences{}, err
	}
	return prefs, nil
}

// persistState mirrors a language switch into stored preferences for
// signed-in users. Persistence is best effort.
func (s *localeService) persistState(ctx context.Context, userID string, state domain.LanguageState) {
	uid := strings.TrimSpace(userID)
	if uid == "" || s.preferences == nil {
		return
	}

	prefs, err := s.preferences.FindByUID(ctx, uid)
	if err != nil && !isRepoNotFound(err) {
		s.logger(ctx, "locale.preferences_load_failed", map[string]any{
			"userID": uid,
			"error":  err.Error(),
		})
		return
	}

	prefs.Language = state.Language
	prefs.Variant = state.Variant
	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	prefs.UpdatedAt = s.now()

	if err := s.preferences.Save(ctx, uid, prefs); err != nil {
		s.logger(ctx, "locale.preferences_save_failed", map[string]any{
			"userID": uid,
			"error":  err.Error(),
		})
	}
}

// normaliseVariant keeps variant and language coherent: Chinese languages get
// their default variant when unset, everything else drops the variant.
func normaliseVariant(state domain.LanguageState) domain.LanguageState {
	if !i18n.IsChinese(state.Language) {
		state.Variant = domain.VariantNone
		return state
	}
	switch state.Variant {
	case domain.VariantSimplified, domain.VariantTraditional:
		return state
	default:
		state.Variant = i18n.DefaultVariant(state.Language)
		return state
	}
}
