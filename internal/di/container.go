package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stratlink-defense/api/internal/catalog"
	domain "github.com/stratlink-defense/api/internal/domain"
	"github.com/stratlink-defense/api/internal/i18n"
	"github.com/stratlink-defense/api/internal/identity"
	"github.com/stratlink-defense/api/internal/platform/config"
	"github.com/stratlink-defense/api/internal/repositories"
	"github.com/stratlink-defense/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon. Concrete implementations
// are assembled via dependency injection in NewContainer.
type Services struct {
	Catalog  services.CatalogService
	Locale   services.LocaleService
	Cart     services.CartService
	Quotes   services.QuoteService
	Accounts services.AccountService
	System   services.SystemService
}

// Dependencies carries the externally constructed infrastructure the
// container cannot build itself.
type Dependencies struct {
	Registry  repositories.Registry
	Identity  identity.Provider
	Publisher services.QuoteEventPublisher
	Build     services.BuildInfo
	Logger    func(ctx context.Context, event string, fields map[string]any)
	Clock     func() time.Time
}

// Container wires repositories, services, and background infrastructure for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services
}

// NewContainer constructs the runtime dependencies. Production wiring provides real
// implementations, while tests can supply in-memory registries.
func NewContainer(ctx context.Context, cfg config.Config, deps Dependencies) (*Container, error) {
	if deps.Registry == nil {
		return nil, errors.New("repositories registry is required")
	}

	svc, err := buildServices(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Repositories: deps.Registry,
		Services:     svc,
	}, nil
}

// Close releases resources such as repository clients.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(ctx context.Context, cfg config.Config, deps Dependencies) (Services, error) {
	var svc Services

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	cat, err := catalog.Load()
	if err != nil {
		return Services{}, fmt.Errorf("load catalog: %w", err)
	}
	bundle, err := i18n.LoadBundle()
	if err != nil {
		return Services{}, fmt.Errorf("load translation bundle: %w", err)
	}

	defaultLang := domain.Language(cfg.Catalog.DefaultLanguage)

	catalogSvc, err := services.NewCatalogService(services.CatalogServiceDeps{
		Catalog:         cat,
		DefaultLanguage: defaultLang,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build catalog service: %w", err)
	}
	svc.Catalog = catalogSvc

	localeSvc, err := services.NewLocaleService(services.LocaleServiceDeps{
		Bundle:          bundle,
		Preferences:     deps.Registry.Preferences(),
		DefaultLanguage: defaultLang,
		Clock:           clock,
		Logger:          deps.Logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build locale service: %w", err)
	}
	svc.Locale = localeSvc

	cartSvc, err := services.NewCartService(services.CartServiceDeps{
		Catalog: cat,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build cart service: %w", err)
	}
	svc.Cart = cartSvc

	if quotesRepo := deps.Registry.Quotes(); quotesRepo != nil {
		quoteSvc, err := services.NewQuoteService(services.QuoteServiceDeps{
			Quotes:    quotesRepo,
			Carts:     cartSvc,
			Publisher: deps.Publisher,
			Clock:     clock,
			Logger:    deps.Logger,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build quote service: %w", err)
		}
		svc.Quotes = quoteSvc
	}

	if deps.Identity != nil && deps.Registry.Profiles() != nil {
		accountSvc, err := services.NewAccountService(services.AccountServiceDeps{
			Provider:    deps.Identity,
			Profiles:    deps.Registry.Profiles(),
			Preferences: deps.Registry.Preferences(),
			Clock:       clock,
			Logger:      deps.Logger,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build account service: %w", err)
		}
		svc.Accounts = accountSvc
	}

	if healthRepo := deps.Registry.Health(); healthRepo != nil {
		systemSvc, err := services.NewSystemService(services.SystemServiceDeps{
			HealthRepository: healthRepo,
			Clock:            clock,
			Build:            deps.Build,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build system service: %w", err)
		}
		svc.System = systemSvc
	}

	return svc, nil
}
