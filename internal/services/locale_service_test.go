package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/stratlink-defense/api/internal/domain"
	"github.com/stratlink-defense/api/internal/i18n"
)

type stubRepositoryError struct {
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e stubRepositoryError) Error() string { return "repository error" }

func (e stubRepositoryError) IsNotFound() bool    { return e.notFound }
func (e stubRepositoryError) IsConflict() bool    { return e.conflict }
func (e stubRepositoryError) IsUnavailable() bool { return e.unavailable }

type stubPreferenceRepository struct {
	stored  map[string]domain.Preferences
	findErr error
	saveErr error
	saved   []domain.Preferences
}

func (s *stubPreferenceRepository) Save(_ context.Context, uid string, prefs domain.Preferences) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.stored == nil {
		s.stored = map[string]domain.Preferences{}
	}
	s.stored[uid] = prefs
	s.saved = append(s.saved, prefs)
	return nil
}

func (s *stubPreferenceRepository) FindByUID(_ context.Context, uid string) (domain.Preferences, error) {
	if s.findErr != nil {
		return domain.Preferences{}, s.findErr
	}
	prefs, ok := s.stored[uid]
	if !ok {
		return domain.Preferences{}, stubRepositoryError{notFound: true}
	}
	return prefs, nil
}

func newTestLocaleService(t *testing.T, repo *stubPreferenceRepository) LocaleService {
	t.Helper()

	bundle, err := i18n.LoadBundle()
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}
	svc, err := NewLocaleService(LocaleServiceDeps{
		Bundle:      bundle,
		Preferences: repo,
		Clock:       func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("build locale service: %v", err)
	}
	return svc
}

func TestLanguagesPickerOrder(t *testing.T) {
	svc := newTestLocaleService(t, &stubPreferenceRepository{})

	options := svc.Languages(context.Background())
	if len(options) != 9 {
		t.Fatalf("expected 9 languages, got %d", len(options))
	}
	if options[0].Language != domain.LanguageEnglish || options[0].Label != "English" {
		t.Fatalf("unexpected first option: %+v", options[0])
	}
	if options[1].Language != domain.LanguageKorean || options[1].Currency != "KRW" {
		t.Fatalf("unexpected second option: %+v", options[1])
	}
}

func TestSetLanguageSeedsChineseVariant(t *testing.T) {
	svc := newTestLocaleService(t, &stubPreferenceRepository{})

	state, err := svc.SetLanguage(context.Background(), SetLanguageCommand{Language: domain.LanguageChineseSimplified})
	if err != nil {
		t.Fatalf("set language: %v", err)
	}
	if state.Variant != domain.VariantSimplified {
		t.Fatalf("expected simplified variant, got %q", state.Variant)
	}

	state, err = svc.SetLanguage(context.Background(), SetLanguageCommand{
		Current:  state,
		Language: domain.LanguageJapanese,
	})
	if err != nil {
		t.Fatalf("set language: %v", err)
	}
	if state.Variant != domain.VariantNone {
		t.Fatalf("expected variant cleared, got %q", state.Variant)
	}
}

func TestSetLanguageKeepsVariantBetweenChineseLanguages(t *testing.T) {
	svc := newTestLocaleService(t, &stubPreferenceRepository{})

	state, err := svc.SetChineseVariant(context.Background(), SetChineseVariantCommand{Variant: domain.VariantTraditional})
	if err != nil {
		t.Fatalf("set variant: %v", err)
	}

	state, err = svc.SetLanguage(context.Background(), SetLanguageCommand{
		Current:  state,
		Language: domain.LanguageChineseSimplified,
	})
	if err != nil {
		t.Fatalf("set language: %v", err)
	}
	if state.Language != domain.LanguageChineseSimplified {
		t.Fatalf("unexpected language: %q", state.Language)
	}
	if state.Variant != domain.VariantTraditional {
		t.Fatalf("expected chosen variant to survive, got %q", state.Variant)
	}
}

func TestSetLanguageRejectsUnknown(t *testing.T) {
	svc := newTestLocaleService(t, &stubPreferenceRepository{})

	if _, err := svc.SetLanguage(context.Background(), SetLanguageCommand{Language: domain.Language("zh")}); !errors.Is(err, ErrLocaleInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSetChineseVariantForcesLanguage(t *testing.T) {
	svc := newTestLocaleService(t, &stubPreferenceRepository{})

	state, err := svc.SetChineseVariant(context.Background(), SetChineseVariantCommand{
		Current: domain.LanguageState{Language: domain.LanguageChineseSimplified, Variant: domain.VariantSimplified},
		Variant: domain.VariantTraditional,
	})
	if err != nil {
		t.Fatalf("set variant: %v", err)
	}
	if state.Language != domain.LanguageChineseTraditional || state.Variant != domain.VariantTraditional {
		t.Fatalf("expected traditional state, got %+v", state)
	}

	if _, err := svc.SetChineseVariant(context.Background(), SetChineseVariantCommand{Variant: domain.ChineseVariant("classical")}); !errors.Is(err, ErrLocaleInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSetLanguagePersistsForSignedInUser(t *testing.T) {
	repo := &stubPreferenceRepository{}
	svc := newTestLocaleService(t, repo)

	if _, err := svc.SetLanguage(context.Background(), SetLanguageCommand{
		UserID:   "uid-1",
		Language: domain.LanguageGerman,
	}); err != nil {
		t.Fatalf("set language: %v", err)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(repo.saved))
	}
	if repo.saved[0].Language != domain.LanguageGerman {
		t.Fatalf("unexpected persisted language: %q", repo.saved[0].Language)
	}
}

func TestSetLanguageSwallowsPersistenceFailure(t *testing.T) {
	repo := &stubPreferenceRepository{saveErr: stubRepositoryError{unavailable: true}}
	svc := newTestLocaleService(t, repo)

	state, err := svc.SetLanguage(context.Background(), SetLanguageCommand{
		UserID:   "uid-1",
		Language: domain.LanguageFrench,
	})
	if err != nil {
		t.Fatalf("expected best-effort persistence, got %v", err)
	}
	if state.Language != domain.LanguageFrench {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestResolveStateExplicitRequestWins(t *testing.T) {
	repo := &stubPreferenceRepository{stored: map[string]domain.Preferences{
		"uid-1": {Language: domain.LanguageKorean},
	}}
	svc := newTestLocaleService(t, repo)

	state := svc.ResolveState(context.Background(), "uid-1", domain.LanguageState{Language: domain.LanguageRussian})
	if state.Language != domain.LanguageRussian {
		t.Fatalf("expected explicit language to win, got %q", state.Language)
	}
}

func TestResolveStateFallsBackToPreferences(t *testing.T) {
	repo := &stubPreferenceRepository{stored: map[string]domain.Preferences{
		"uid-1": {Language: domain.LanguageChineseTraditional, Variant: domain.VariantTraditional},
	}}
	svc := newTestLocaleService(t, repo)

	state := svc.ResolveState(context.Background(), "uid-1", domain.LanguageState{})
	if state.Language != domain.LanguageChineseTraditional || state.Variant != domain.VariantTraditional {
		t.Fatalf("expected stored preference, got %+v", state)
	}

	state = svc.ResolveState(context.Background(), "uid-unknown", domain.LanguageState{})
	if state.Language != domain.LanguageEnglish {
		t.Fatalf("expected default language, got %q", state.Language)
	}
}

func TestResolveStateSurvivesStoreOutage(t *testing.T) {
	repo := &stubPreferenceRepository{findErr: stubRepositoryError{unavailable: true}}
	svc := newTestLocaleService(t, repo)

	state := svc.ResolveState(context.Background(), "uid-1", domain.LanguageState{})
	if state.Language != domain.LanguageEnglish {
		t.Fatalf("expected default language during outage, got %q", state.Language)
	}
}

func TestDictionaryUnknownLanguage(t *testing.T) {
	svc := newTestLocaleService(t, &stubPreferenceRepository{})

	if _, err := svc.Dictionary(context.Background(), domain.Language("pt")); !errors.Is(err, ErrLocaleInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	dict, err := svc.Dictionary(context.Background(), domain.LanguageEnglish)
	if err != nil {
		t.Fatalf("dictionary: %v", err)
	}
	if dict["cart"] != "Cart" {
		t.Fatalf("unexpected dictionary entry: %q", dict["cart"])
	}
}

func TestPreferencesDefaultsWhenUnset(t *testing.T) {
	svc := newTestLocaleService(t, &stubPreferenceRepository{})

	prefs, err := svc.Preferences(context.Background(), "uid-1")
	if err != nil {
		t.Fatalf("preferences: %v", err)
	}
	if prefs.Language != domain.LanguageEnglish || prefs.Theme != "dark" {
		t.Fatalf("unexpected defaults: %+v", prefs)
	}
}

func TestSavePreferencesValidatesLanguage(t *testing.T) {
	repo := &stubPreferenceRepository{}
	svc := newTestLocaleService(t, repo)

	if _, err := svc.SavePreferences(context.Background(), SavePreferencesCommand{
		UserID:      "uid-1",
		Preferences: domain.Preferences{Language: domain.Language("xx")},
	}); !errors.Is(err, ErrLocaleInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	saved, err := svc.SavePreferences(context.Background(), SavePreferencesCommand{
		UserID:      "uid-1",
		Preferences: domain.Preferences{Language: domain.LanguageChineseSimplified, Theme: "light"},
	})
	if err != nil {
		t.Fatalf("save preferences: %v", err)
	}
	if saved.Variant != domain.VariantSimplified {
		t.Fatalf("expected seeded variant, got %q", saved.Variant)
	}
	if saved.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}
}

func TestSavePreferencesKeepsStoredVariant(t *testing.T) {
	repo := &stubPreferenceRepository{stored: map[string]domain.Preferences{
		"uid-1": {Language: domain.LanguageChineseTraditional, Variant: domain.VariantTraditional, Theme: "dark"},
	}}
	svc := newTestLocaleService(t, repo)

	saved, err := svc.SavePreferences(context.Background(), SavePreferencesCommand{
		UserID:      "uid-1",
		Preferences: domain.Preferences{Language: domain.LanguageChineseSimplified},
	})
	if err != nil {
		t.Fatalf("save preferences: %v", err)
	}
	if saved.Language != domain.LanguageChineseSimplified {
		t.Fatalf("unexpected language: %q", saved.Language)
	}
	if saved.Variant != domain.VariantTraditional {
		t.Fatalf("expected stored variant to survive, got %q", saved.Variant)
	}
}

func TestSavePreferencesVariantForcesLanguage(t *testing.T) {
	repo := &stubPreferenceRepository{}
	svc := newTestLocaleService(t, repo)

	saved, err := svc.SavePreferences(context.Background(), SavePreferencesCommand{
		UserID: "uid-1",
		Preferences: domain.Preferences{
			Language: domain.LanguageChineseSimplified,
			Variant:  domain.VariantTraditional,
		},
	})
	if err != nil {
		t.Fatalf("save preferences: %v", err)
	}
	if saved.Language != domain.LanguageChineseTraditional || saved.Variant != domain.VariantTraditional {
		t.Fatalf("expected variant to force its language, got %+v", saved)
	}
}
