package domain

import (
	"time"
)

// Category groups catalog products by operating domain.
type Category string

const (
	// CategoryLand covers ground-based systems.
	CategoryLand Category = "Land"
	// CategorySea covers naval systems.
	CategorySea Category = "Sea"
	// CategoryAir covers airborne systems.
	CategoryAir Category = "Air"
)

// Language identifies one of the supported interface languages.
type Language string

const (
	LanguageEnglish            Language = "en"
	LanguageKorean             Language = "ko"
	LanguageChineseSimplified  Language = "zh-CN"
	LanguageChineseTraditional Language = "zh-TW"
	LanguageJapanese           Language = "ja"
	LanguageGerman             Language = "de"
	LanguageFrench             Language = "fr"
	LanguageSpanish            Language = "es"
	LanguageRussian            Language = "ru"
)

// ChineseVariant selects the Chinese writing system when the interface
// language is Chinese. The empty value means no variant is chosen.
type ChineseVariant string

const (
	VariantNone        ChineseVariant = ""
	VariantSimplified  ChineseVariant = "simplified"
	VariantTraditional ChineseVariant = "traditional"
)

// CatalogSort enumerates the supported catalog orderings.
type CatalogSort string

const (
	// CatalogSortLatest orders by descending numeric product id.
	CatalogSortLatest CatalogSort = "latest"
	// CatalogSortPriceAsc orders by ascending USD reference price.
	CatalogSortPriceAsc CatalogSort = "price_asc"
	// CatalogSortPriceDesc orders by descending USD reference price.
	CatalogSortPriceDesc CatalogSort = "price_desc"
)

// ProductOption is an orderable add-on for a product. A zero PriceUSD means
// the option is included in the base price.
type ProductOption struct {
	ID       string
	NameKo   string
	NameEn   string
	PriceUSD int64
}

// ProductText holds the localized copy for one product in one language.
type ProductText struct {
	Name            string
	Description     string
	FullDescription string
}

// Product is a catalog entry. Prices are whole USD reference amounts.
type Product struct {
	ID           string
	Code         string
	Category     Category
	PriceUSD     int64
	ImageURL     string
	Specs        []string
	Options      []ProductOption
	Translations map[Language]ProductText
}

// Option returns the product option with the given id.
func (p Product) Option(id string) (ProductOption, bool) {
	for _, opt := range p.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return ProductOption{}, false
}

// ItemOptions carries the buyer's per-item customization: chosen option ids,
// a free-form configuration summary, and notes for the quoting team.
type ItemOptions struct {
	SelectedOptions []string
	Configuration   string
	Notes           string
}

// CartItem pairs a catalog product with a quantity and its customization.
type CartItem struct {
	Product  Product
	Quantity int
	Options  ItemOptions
}

// Cart is the session-scoped set of quote candidates for one buyer. At most
// one item exists per product id.
type Cart struct {
	Items []CartItem
}

// LanguageState is one buyer's language and Chinese-variant selection.
type LanguageState struct {
	Language Language
	Variant  ChineseVariant
}

// Preferences is the persisted slice of per-user settings.
type Preferences struct {
	Language  Language
	Variant   ChineseVariant
	Theme     string
	UpdatedAt time.Time
}

// Profile is the buyer profile kept alongside the identity provider account.
type Profile struct {
	UID          string
	Email        string
	DisplayName  string
	Nationality  string
	Organization string
	Phone        string
	Address      string
	DateOfBirth  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// QuoteStatus tracks a quote request through review.
type QuoteStatus string

const (
	// QuoteStatusSubmitted indicates the request was received.
	QuoteStatusSubmitted QuoteStatus = "submitted"
	// QuoteStatusInReview indicates a procurement specialist picked it up.
	QuoteStatusInReview QuoteStatus = "in_review"
	// QuoteStatusAnswered indicates an official quotation was issued.
	QuoteStatusAnswered QuoteStatus = "answered"
)

// QuoteItem is a snapshotted cart line inside a submitted quote request.
type QuoteItem struct {
	ProductID   string
	ProductCode string
	ProductName string
	Quantity    int
	Options     ItemOptions
	UnitUSD     int64
	LineUSD     int64
}

// Quote is a submitted quote request together with its cart snapshot.
type Quote struct {
	ID             string
	UserID         string
	Status         QuoteStatus
	Items          []QuoteItem
	TotalItems     int
	TotalUSD       int64
	Language       Language
	Currency       string
	FormattedTotal string
	Contact        string
	PurchaseInfo   *PurchaseInfo
	SubmittedAt    time.Time
	UpdatedAt      time.Time
}

// PurchaseInfo is the contract detail form attached to a quote after review.
type PurchaseInfo struct {
	EndUserOrganization string
	DeliveryCountry     string
	IntendedUse         string
	ComplianceAck       bool
	SubmittedAt         time.Time
}
