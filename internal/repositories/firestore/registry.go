package firestore

import (
	"context"
	"errors"

	pfirestore "github.com/stratlink-defense/api/internal/platform/firestore"
	"github.com/stratlink-defense/api/internal/repositories"
)

// Registry bundles the Firestore-backed repositories behind the
// repositories.Registry contract used by dependency injection.
type Registry struct {
	provider    *pfirestore.Provider
	profiles    *ProfileRepository
	preferences *PreferenceRepository
	quotes      *QuoteRepository
	health      repositories.HealthRepository
}

var _ repositories.Registry = (*Registry)(nil)

// RegistryDeps lists the dependencies for NewRegistry.
type RegistryDeps struct {
	Provider *pfirestore.Provider
	Health   repositories.HealthRepository
}

// NewRegistry constructs the production repository set on a shared provider.
func NewRegistry(deps RegistryDeps) (*Registry, error) {
	if deps.Provider == nil {
		return nil, errors.New("repository registry: firestore provider is required")
	}

	profiles, err := NewProfileRepository(deps.Provider)
	if err != nil {
		return nil, err
	}
	preferences, err := NewPreferenceRepository(deps.Provider)
	if err != nil {
		return nil, err
	}
	quotes, err := NewQuoteRepository(deps.Provider)
	if err != nil {
		return nil, err
	}

	health := deps.Health
	if health == nil {
		health, err = repositories.NewDependencyHealthRepository([]repositories.DependencyCheck{
			{
				Name: "firestore",
				Check: func(ctx context.Context) error {
					_, err := deps.Provider.Client(ctx)
					return err
				},
			},
		})
		if err != nil {
			return nil, err
		}
	}

	return &Registry{
		provider:    deps.Provider,
		profiles:    profiles,
		preferences: preferences,
		quotes:      quotes,
		health:      health,
	}, nil
}

// Close releases the underlying Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
}

// Profiles returns the profile repository.
func (r *Registry) Profiles() repositories.ProfileRepository { return r.profiles }

// Preferences returns the preference repository.
func (r *Registry) Preferences() repositories.PreferenceRepository { return r.preferences }

// Quotes returns the quote repository.
func (r *Registry) Quotes() repositories.QuoteRepository { return r.quotes }

// Health returns the dependency health repository.
func (r *Registry) Health() repositories.HealthRepository { return r.health }
