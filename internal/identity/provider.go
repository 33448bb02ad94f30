// Package identity abstracts the third-party account provider behind a small
// port so services never touch provider SDKs directly.
package identity

import (
	"context"
	"time"
)

// Session carries the provider-issued tokens after a successful sign-in.
type Session struct {
	UID          string
	Email        string
	DisplayName  string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Account describes a provisioned provider account.
type Account struct {
	UID         string
	Email       string
	DisplayName string
}

// NewUser collects the attributes needed to provision an account.
type NewUser struct {
	Email       string
	Password    string
	DisplayName string
}

// Provider is the account backend port. Implementations surface backend error
// messages verbatim via ProviderError so callers can relay them unchanged.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	Register(ctx context.Context, user NewUser) (Account, error)
	Revoke(ctx context.Context, uid string) error
}

// ProviderError wraps an error reported by the account backend. Message is the
// backend's own wording and is passed through to API clients untouched.
type ProviderError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" && e.Code != e.Message {
		return e.Code + ": " + e.Message
	}
	return e.Message
}
