package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stratlink-defense/api/internal/catalog"
	domain "github.com/stratlink-defense/api/internal/domain"
	"github.com/stratlink-defense/api/internal/i18n"
)

// ErrCatalogInvalidInput indicates the caller supplied an invalid query.
var ErrCatalogInvalidInput = errors.New("catalog service: invalid input")

// ErrCatalogProductNotFound indicates the requested product does not exist.
var ErrCatalogProductNotFound = errors.New("catalog service: product not found")

// CatalogServiceDeps wires the embedded catalog and the default language.
type CatalogServiceDeps struct {
	Catalog         *catalog.Catalog
	DefaultLanguage domain.Language
}

type catalogService struct {
	catalog     *catalog.Catalog
	defaultLang domain.Language
}

var _ CatalogService = (*catalogService)(nil)

// NewCatalogService constructs a CatalogService enforcing dependency validation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Catalog == nil {
		return nil, errors.New("catalog service: catalog is required")
	}

	defaultLang := deps.DefaultLanguage
	if defaultLang == "" {
		defaultLang = domain.LanguageEnglish
	}
	if _, ok := i18n.ParseLanguage(string(defaultLang)); !ok {
		return nil, fmt.Errorf("catalog service: unknown default language %q", defaultLang)
	}

	return &catalogService{
		catalog:     deps.Catalog,
		defaultLang: defaultLang,
	}, nil
}

// List returns the catalog filtered, sorted, and localized for the caller.
func (s *catalogService) List(ctx context.Context, query ListCatalogQuery) ([]CatalogEntry, error) {
	if ctx == nil {
		return nil, errors.New("catalog service: context is required")
	}

	state := s.normaliseState(query.State)

	var products []domain.Product
	if query.Category != nil {
		switch *query.Category {
		case domain.CategoryLand, domain.CategorySea, domain.CategoryAir:
		default:
			return nil, fmt.Errorf("%w: unknown category %q", ErrCatalogInvalidInput, *query.Category)
		}
		products = s.catalog.ByCategory(*query.Category)
	} else {
		products = s.catalog.All()
	}

	sortBy := query.Sort
	if sortBy == "" {
		sortBy = domain.CatalogSortLatest
	}
	switch sortBy {
	case domain.CatalogSortLatest, domain.CatalogSortPriceAsc, domain.CatalogSortPriceDesc:
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", ErrCatalogInvalidInput, sortBy)
	}
	catalog.Sort(products, sortBy)

	entries := make([]CatalogEntry, 0, len(products))
	for _, product := range products {
		entries = append(entries, s.entryFor(product, state))
	}
	return entries, nil
}

// WeeklyBest returns the featured products localized for the caller.
func (s *catalogService) WeeklyBest(ctx context.Context, state LanguageState) ([]CatalogEntry, error) {
	if ctx == nil {
		return nil, errors.New("catalog service: context is required")
	}

	normalised := s.normaliseState(state)
	products := s.catalog.WeeklyBest()
	entries := make([]CatalogEntry, 0, len(products))
	for _, product := range products {
		entries = append(entries, s.entryFor(product, normalised))
	}
	return entries, nil
}

// Detail returns the full product page payload for one product.
func (s *catalogService) Detail(ctx context.Context, productID string, state LanguageState) (CatalogDetail, error) {
	if ctx == nil {
		return CatalogDetail{}, errors.New("catalog service: context is required")
	}

	trimmed := strings.TrimSpace(productID)
	if trimmed == "" {
		return CatalogDetail{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}

	product, ok := s.catalog.ByID(trimmed)
	if !ok {
		return CatalogDetail{}, fmt.Errorf("%w: %s", ErrCatalogProductNotFound, trimmed)
	}

	normalised := s.normaliseState(state)
	effective := i18n.EffectiveLanguage(normalised)
	text := catalog.Text(product, effective)

	detail := CatalogDetail{
		CatalogEntry:    s.entryFor(product, normalised),
		FullDescription: text.FullDescription,
		Specs:           append([]string(nil), product.Specs...),
		Options:         make([]CatalogOption, 0, len(product.Options)),
	}
	for _, opt := range product.Options {
		detail.Options = append(detail.Options, CatalogOption{
			ID:             opt.ID,
			Name:           optionName(opt, effective),
			PriceUSD:       opt.PriceUSD,
			FormattedPrice: i18n.FormatPrice(normalised, opt.PriceUSD),
		})
	}
	return detail, nil
}

func (s *catalogService) normaliseState(state LanguageState) LanguageState {
	if _, ok := i18n.ParseLanguage(string(state.Language)); !ok {
		state.Language = s.defaultLang
		state.Variant = i18n.DefaultVariant(s.defaultLang)
	}
	return state
}

func (s *catalogService) entryFor(product domain.Product, state LanguageState) CatalogEntry {
	effective := i18n.EffectiveLanguage(state)
	text := catalog.Text(product, effective)
	return CatalogEntry{
		ID:             product.ID,
		Code:           product.Code,
		Category:       product.Category,
		Name:           text.Name,
		Description:    text.Description,
		PriceUSD:       product.PriceUSD,
		Price:          i18n.ConvertUSD(effective, product.PriceUSD),
		FormattedPrice: i18n.FormatPrice(state, product.PriceUSD),
		Currency:       i18n.CurrencyCode(state.Language),
		ImageURL:       product.ImageURL,
	}
}

// Option labels ship in Korean and English only; other languages fall back to
// the English label.
func optionName(opt domain.ProductOption, lang domain.Language) string {
	if lang == domain.LanguageKorean && strings.TrimSpace(opt.NameKo) != "" {
		return opt.NameKo
	}
	if strings.TrimSpace(opt.NameEn) != "" {
		return opt.NameEn
	}
	return opt.NameKo
}
