package services

import (
	"context"
	"errors"
	"time"

	domain "github.com/stratlink-defense/api/internal/domain"
	"github.com/stratlink-defense/api/internal/i18n"
	"github.com/stratlink-defense/api/internal/repositories"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Cart          = domain.Cart
	CartItem      = domain.CartItem
	ItemOptions   = domain.ItemOptions
	LanguageState = domain.LanguageState
	Preferences   = domain.Preferences
	Profile       = domain.Profile
	Quote         = domain.Quote
	PurchaseInfo  = domain.PurchaseInfo
)

// CatalogService serves localized, price-formatted catalog reads.
type CatalogService interface {
	List(ctx context.Context, query ListCatalogQuery) ([]CatalogEntry, error)
	WeeklyBest(ctx context.Context, state LanguageState) ([]CatalogEntry, error)
	Detail(ctx context.Context, productID string, state LanguageState) (CatalogDetail, error)
}

// ListCatalogQuery filters and sorts a localized catalog listing.
type ListCatalogQuery struct {
	Category *domain.Category
	Sort     domain.CatalogSort
	State    LanguageState
}

// CatalogEntry is a catalog listing row rendered for one language state.
type CatalogEntry struct {
	ID             string
	Code           string
	Category       domain.Category
	Name           string
	Description    string
	PriceUSD       int64
	Price          int64
	FormattedPrice string
	Currency       string
	ImageURL       string
}

// CatalogOption is a product option rendered for one language state.
type CatalogOption struct {
	ID             string
	Name           string
	PriceUSD       int64
	FormattedPrice string
}

// CatalogDetail is the full product page payload.
type CatalogDetail struct {
	CatalogEntry
	FullDescription string
	Specs           []string
	Options         []CatalogOption
}

// LocaleService manages language state transitions, persisted display
// preferences, and translation dictionaries.
type LocaleService interface {
	Languages(ctx context.Context) []LanguageOption
	Dictionary(ctx context.Context, lang domain.Language) (map[string]string, error)
	ResolveState(ctx context.Context, userID string, requested LanguageState) LanguageState
	SetLanguage(ctx context.Context, cmd SetLanguageCommand) (LanguageState, error)
	SetChineseVariant(ctx context.Context, cmd SetChineseVariantCommand) (LanguageState, error)
	NationalityDefault(ctx context.Context, nationality string) (i18n.NationalityLanguage, bool)
	Preferences(ctx context.Context, userID string) (Preferences, error)
	SavePreferences(ctx context.Context, cmd SavePreferencesCommand) (Preferences, error)
}

// LanguageOption describes one selectable language for the language picker.
type LanguageOption struct {
	Language domain.Language
	Label    string
	Currency string
	Locale   string
}

// SetLanguageCommand switches the selected language for a session.
type SetLanguageCommand struct {
	UserID   string
	Current  LanguageState
	Language domain.Language
}

// SetChineseVariantCommand switches the Chinese script variant for a session.
type SetChineseVariantCommand struct {
	UserID  string
	Current LanguageState
	Variant domain.ChineseVariant
}

// SavePreferencesCommand persists display preferences for a signed-in user.
type SavePreferencesCommand struct {
	UserID      string
	Preferences Preferences
}

// CartService manages the session-scoped quote cart for each buyer.
type CartService interface {
	Get(ctx context.Context, userID string) (Cart, error)
	AddItem(ctx context.Context, cmd AddCartItemCommand) (Cart, error)
	UpdateItem(ctx context.Context, cmd UpdateCartItemCommand) (Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (Cart, error)
	Clear(ctx context.Context, userID string) error
}

// AddCartItemCommand adds a product to the cart or bumps its quantity.
type AddCartItemCommand struct {
	UserID    string
	ProductID string
	Quantity  int
	Options   *ItemOptions
}

// UpdateCartItemCommand adjusts quantity and/or customization of a cart line.
// Nil fields leave the current value untouched.
type UpdateCartItemCommand struct {
	UserID    string
	ProductID string
	Quantity  *int
	Options   *ItemOptions
}

// QuoteService turns carts into persisted quote requests.
type QuoteService interface {
	Submit(ctx context.Context, cmd SubmitQuoteCommand) (Quote, error)
	List(ctx context.Context, userID string) ([]Quote, error)
	Get(ctx context.Context, userID, quoteID string) (Quote, error)
	AttachPurchaseInfo(ctx context.Context, cmd AttachPurchaseInfoCommand) (Quote, error)
}

// SubmitQuoteCommand snapshots the user's cart into a quote request.
type SubmitQuoteCommand struct {
	UserID  string
	Contact string
	State   LanguageState
}

// AttachPurchaseInfoCommand records the contract detail form on a quote.
type AttachPurchaseInfoCommand struct {
	UserID  string
	QuoteID string
	Info    PurchaseInfo
}

// AccountService fronts the third-party identity provider and the profile store.
type AccountService interface {
	SignIn(ctx context.Context, cmd SignInCommand) (SignInResult, error)
	Register(ctx context.Context, cmd RegisterCommand) (RegisterResult, error)
	Logout(ctx context.Context, userID string) error
	Profile(ctx context.Context, userID string) (Profile, error)
	UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (Profile, error)
}

// SignInCommand carries the credential pair forwarded to the provider.
type SignInCommand struct {
	Email    string
	Password string
}

// SignInResult bundles the provider session with the stored profile.
type SignInResult struct {
	UID          string
	Email        string
	DisplayName  string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
	Profile      Profile
}

// RegisterCommand provisions a provider account plus a local profile.
type RegisterCommand struct {
	Email        string
	Password     string
	DisplayName  string
	Nationality  string
	Organization string
	Phone        string
	Address      string
	DateOfBirth  string
}

// RegisterResult reports the created account and the language suggested by
// the buyer's nationality.
type RegisterResult struct {
	UID               string
	Email             string
	DisplayName       string
	Profile           Profile
	SuggestedLanguage domain.Language
	HasVariants       bool
}

// UpdateProfileCommand applies partial profile edits. Nil fields are untouched.
type UpdateProfileCommand struct {
	UserID       string
	DisplayName  *string
	Nationality  *string
	Organization *string
	Phone        *string
	Address      *string
	DateOfBirth  *string
}

// SystemService exposes health reports and runtime metadata.
type SystemService interface {
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}

// SystemHealthReport augments the dependency report with build metadata.
type SystemHealthReport struct {
	Status      domain.HealthStatus
	Checks      map[string]domain.SystemHealthCheck
	Version     string
	CommitSHA   string
	Environment string
	Uptime      time.Duration
	GeneratedAt time.Time
}

func isRepoNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

func isRepoUnavailable(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}
