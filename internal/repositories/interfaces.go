package repositories

import (
	"context"

	domain "github.com/stratlink-defense/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Profiles() ProfileRepository
	Preferences() PreferenceRepository
	Quotes() QuoteRepository
	Health() HealthRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// ProfileRepository persists buyer profiles keyed by provider UID.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile domain.Profile) error
	FindByUID(ctx context.Context, uid string) (domain.Profile, error)
}

// PreferenceRepository persists per-user display preferences. Implementations
// should be cheap to call: the locale service treats failures as advisory.
type PreferenceRepository interface {
	Save(ctx context.Context, uid string, prefs domain.Preferences) error
	FindByUID(ctx context.Context, uid string) (domain.Preferences, error)
}

// HealthRepository aggregates dependency probes for readiness checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}

// QuoteRepository persists submitted quote requests and their purchase info.
type QuoteRepository interface {
	Insert(ctx context.Context, quote domain.Quote) error
	FindByID(ctx context.Context, userID, quoteID string) (domain.Quote, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Quote, error)
	AttachPurchaseInfo(ctx context.Context, userID, quoteID string, info domain.PurchaseInfo) (domain.Quote, error)
}
