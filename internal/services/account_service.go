package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	domain "github.com/stratlink-defense/api/internal/domain"
	"github.com/stratlink-defense/api/internal/i18n"
	"github.com/stratlink-defense/api/internal/identity"
	"github.com/stratlink-defense/api/internal/repositories"
)

// ErrAccountInvalidInput indicates the caller supplied invalid input.
var ErrAccountInvalidInput = errors.New("account service: invalid input")

// ErrAccountNotFound indicates no profile exists for the user.
var ErrAccountNotFound = errors.New("account service: not found")

// ErrAccountUnavailable indicates the identity provider or profile store is down.
var ErrAccountUnavailable = errors.New("account service: unavailable")

const minPasswordLength = 6

// AccountServiceDeps wires the identity provider and the profile stores.
type AccountServiceDeps struct {
	Provider    identity.Provider
	Profiles    repositories.ProfileRepository
	Preferences repositories.PreferenceRepository
	Clock       func() time.Time
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type accountService struct {
	provider    identity.Provider
	profiles    repositories.ProfileRepository
	preferences repositories.PreferenceRepository
	now         func() time.Time
	logger      func(context.Context, string, map[string]any)
}

var _ AccountService = (*accountService)(nil)

// NewAccountService constructs an AccountService enforcing dependency validation.
func NewAccountService(deps AccountServiceDeps) (AccountService, error) {
	if deps.Provider == nil {
		return nil, errors.New("account service: identity provider is required")
	}
	if deps.Profiles == nil {
		return nil, errors.New("account service: profile repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &accountService{
		provider:    deps.Provider,
		profiles:    deps.Profiles,
		preferences: deps.Preferences,
		now:         func() time.Time { return clock().UTC() },
		logger:      logger,
	}, nil
}

// SignIn forwards the credential pair to the identity provider. Credential
// rejections come back with the provider's message untouched; provider
// outages surface as unavailability.
func (s *accountService) SignIn(ctx context.Context, cmd SignInCommand) (SignInResult, error) {
	email := strings.TrimSpace(cmd.Email)
	if email == "" || cmd.Password == "" {
		return SignInResult{}, fmt.Errorf("%w: email and password are required", ErrAccountInvalidInput)
	}

	session, err := s.provider.SignIn(ctx, email, cmd.Password)
	if err != nil {
		return SignInResult{}, s.translateProviderError(err)
	}

	profile, err := s.profiles.FindByUID(ctx, session.UID)
	if err != nil {
		if !isRepoNotFound(err) {
			s.logger(ctx, "account.profile_load_failed", map[string]any{
				"uid":   session.UID,
				"error": err.Error(),
			})
		}
		profile = domain.Profile{
			UID:         session.UID,
			Email:       session.Email,
			DisplayName: session.DisplayName,
		}
		if upsertErr := s.profiles.Upsert(ctx, profile); upsertErr != nil {
			s.logger(ctx, "account.profile_backfill_failed", map[string]any{
				"uid":   session.UID,
				"error": upsertErr.Error(),
			})
		}
	}

	return SignInResult{
		UID:          session.UID,
		Email:        session.Email,
		DisplayName:  session.DisplayName,
		IDToken:      session.IDToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
		Profile:      profile,
	}, nil
}

// Register provisions a provider account, stores the buyer profile, and seeds
// language preferences from the declared nationality.
func (s *accountService) Register(ctx context.Context, cmd RegisterCommand) (RegisterResult, error) {
	email := strings.TrimSpace(cmd.Email)
	displayName := strings.TrimSpace(cmd.DisplayName)
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return RegisterResult{}, fmt.Errorf("%w: a valid email is required", ErrAccountInvalidInput)
	case len(cmd.Password) < minPasswordLength:
		return RegisterResult{}, fmt.Errorf("%w: password must be at least %d characters", ErrAccountInvalidInput, minPasswordLength)
	case displayName == "":
		return RegisterResult{}, fmt.Errorf("%w: display name is required", ErrAccountInvalidInput)
	}

	account, err := s.provider.Register(ctx, identity.NewUser{
		Email:       email,
		Password:    cmd.Password,
		DisplayName: displayName,
	})
	if err != nil {
		return RegisterResult{}, s.translateProviderError(err)
	}

	now := s.now()
	profile := domain.Profile{
		UID:          account.UID,
		Email:        email,
		DisplayName:  displayName,
		Nationality:  strings.TrimSpace(cmd.Nationality),
		Organization: strings.TrimSpace(cmd.Organization),
		Phone:        strings.TrimSpace(cmd.Phone),
		Address:      strings.TrimSpace(cmd.Address),
		DateOfBirth:  strings.TrimSpace(cmd.DateOfBirth),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		s.logger(ctx, "account.profile_store_failed", map[string]any{
			"uid":   account.UID,
			"error": err.Error(),
		})
	}

	result := RegisterResult{
		UID:         account.UID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Profile:     profile,
	}

	if suggestion, ok := i18n.LanguageForNationality(profile.Nationality); ok {
		result.SuggestedLanguage = suggestion.Language
		result.HasVariants = suggestion.HasVariants
		s.seedPreferences(ctx, account.UID, suggestion.Language)
	}
	return result, nil
}

// Logout revokes every refresh token the provider issued to the user.
func (s *accountService) Logout(ctx context.Context, userID string) error {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return fmt.Errorf("%w: user id is required", ErrAccountInvalidInput)
	}
	if err := s.provider.Revoke(ctx, uid); err != nil {
		return s.translateProviderError(err)
	}
	return nil
}

// Profile loads the stored buyer profile.
func (s *accountService) Profile(ctx context.Context, userID string) (Profile, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return Profile{}, fmt.Errorf("%w: user id is required", ErrAccountInvalidInput)
	}

	profile, err := s.profiles.FindByUID(ctx, uid)
	if err != nil {
		return Profile{}, s.translateRepoError(err)
	}
	return profile, nil
}

// UpdateProfile applies partial edits to the stored profile. Nil fields keep
// their current value.
func (s *accountService) UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (Profile, error) {
	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return Profile{}, fmt.Errorf("%w: user id is required", ErrAccountInvalidInput)
	}
	if cmd.DisplayName == nil && cmd.Nationality == nil && cmd.Organization == nil &&
		cmd.Phone == nil && cmd.Address == nil && cmd.DateOfBirth == nil {
		return Profile{}, fmt.Errorf("%w: nothing to update", ErrAccountInvalidInput)
	}

	profile, err := s.profiles.FindByUID(ctx, uid)
	if err != nil {
		return Profile{}, s.translateRepoError(err)
	}

	if cmd.DisplayName != nil {
		trimmed := strings.TrimSpace(*cmd.DisplayName)
		if trimmed == "" {
			return Profile{}, fmt.Errorf("%w: display name cannot be empty", ErrAccountInvalidInput)
		}
		profile.DisplayName = trimmed
	}
	if cmd.Nationality != nil {
		profile.Nationality = strings.TrimSpace(*cmd.Nationality)
	}
	if cmd.Organization != nil {
		profile.Organization = strings.TrimSpace(*cmd.Organization)
	}
	if cmd.Phone != nil {
		profile.Phone = strings.TrimSpace(*cmd.Phone)
	}
	if cmd.Address != nil {
		profile.Address = strings.TrimSpace(*cmd.Address)
	}
	if cmd.DateOfBirth != nil {
		profile.DateOfBirth = strings.TrimSpace(*cmd.DateOfBirth)
	}
	profile.UpdatedAt = s.now()

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return Profile{}, s.translateRepoError(err)
	}
	return profile, nil
}

// seedPreferences stores the nationality-derived language as the user's
// starting preference. Best effort.
func (s *accountService) seedPreferences(ctx context.Context, uid string, lang domain.Language) {
	if s.preferences == nil {
		return
	}
	prefs := domain.Preferences{
		Language:  lang,
		Variant:   i18n.DefaultVariant(lang),
		Theme:     defaultTheme,
		UpdatedAt: s.now(),
	}
	if err := s.preferences.Save(ctx, uid, prefs); err != nil {
		s.logger(ctx, "account.preferences_seed_failed", map[string]any{
			"uid":   uid,
			"error": err.Error(),
		})
	}
}

func (s *accountService) translateProviderError(err error) error {
	if err == nil {
		return nil
	}
	var providerErr *identity.ProviderError
	if errors.As(err, &providerErr) {
		if providerErr.Status >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %v", ErrAccountUnavailable, err)
		}
		return err
	}
	return fmt.Errorf("%w: %v", ErrAccountUnavailable, err)
}

func (s *accountService) translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case isRepoNotFound(err):
		return fmt.Errorf("%w: %v", ErrAccountNotFound, err)
	case isRepoUnavailable(err):
		return fmt.Errorf("%w: %v", ErrAccountUnavailable, err)
	default:
		return err
	}
}
