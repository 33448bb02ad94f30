// Package catalog holds the embedded defense-system product catalog and its
// read operations. The catalog is a compile-time dataset: authoring happens
// upstream, the service only serves it.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/stratlink-defense/api/internal/domain"
)

//go:embed data/products.json
var dataFiles embed.FS

// weeklyBestCount is the number of featured products on the home surface.
const weeklyBestCount = 4

type productRecord struct {
	ID       string   `json:"id"`
	Code     string   `json:"code"`
	Category string   `json:"category"`
	PriceUSD int64    `json:"price_usd"`
	ImageURL string   `json:"image_url"`
	Specs    []string `json:"specs"`
	Options  []struct {
		ID       string `json:"id"`
		NameKo   string `json:"name_ko"`
		NameEn   string `json:"name_en"`
		PriceUSD int64  `json:"price_usd"`
	} `json:"options"`
	Translations map[string]struct {
		Name            string `json:"name"`
		Description     string `json:"description"`
		FullDescription string `json:"full_description"`
	} `json:"translations"`
}

// Catalog is the loaded, validated product set in declaration order.
type Catalog struct {
	products []domain.Product
	byID     map[string]int
}

// Load parses and validates the embedded catalog data.
func Load() (*Catalog, error) {
	raw, err := dataFiles.ReadFile("data/products.json")
	if err != nil {
		return nil, fmt.Errorf("catalog: read data: %w", err)
	}
	var records []productRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("catalog: parse data: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog: no products")
	}

	c := &Catalog{byID: make(map[string]int, len(records))}
	for _, rec := range records {
		product, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		if _, exists := c.byID[product.ID]; exists {
			return nil, fmt.Errorf("catalog: duplicate product id %q", product.ID)
		}
		c.byID[product.ID] = len(c.products)
		c.products = append(c.products, product)
	}
	return c, nil
}

func (r productRecord) toDomain() (domain.Product, error) {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return domain.Product{}, fmt.Errorf("catalog: product with empty id")
	}
	if _, err := strconv.Atoi(id); err != nil {
		return domain.Product{}, fmt.Errorf("catalog: product id %q is not numeric", id)
	}
	category := domain.Category(r.Category)
	switch category {
	case domain.CategoryLand, domain.CategorySea, domain.CategoryAir:
	default:
		return domain.Product{}, fmt.Errorf("catalog: product %q has unknown category %q", id, r.Category)
	}
	if r.PriceUSD <= 0 {
		return domain.Product{}, fmt.Errorf("catalog: product %q has non-positive price", id)
	}

	product := domain.Product{
		ID:           id,
		Code:         strings.TrimSpace(r.Code),
		Category:     category,
		PriceUSD:     r.PriceUSD,
		ImageURL:     r.ImageURL,
		Specs:        append([]string(nil), r.Specs...),
		Translations: make(map[domain.Language]domain.ProductText, len(r.Translations)),
	}
	for _, opt := range r.Options {
		product.Options = append(product.Options, domain.ProductOption{
			ID:       opt.ID,
			NameKo:   opt.NameKo,
			NameEn:   opt.NameEn,
			PriceUSD: opt.PriceUSD,
		})
	}
	for lang, text := range r.Translations {
		product.Translations[domain.Language(lang)] = domain.ProductText{
			Name:            text.Name,
			Description:     text.Description,
			FullDescription: text.FullDescription,
		}
	}
	if _, ok := product.Translations[domain.LanguageEnglish]; !ok {
		return domain.Product{}, fmt.Errorf("catalog: product %q lacks English copy", id)
	}
	return product, nil
}

// All returns every product in declaration order.
func (c *Catalog) All() []domain.Product {
	return append([]domain.Product(nil), c.products...)
}

// ByID returns the product with the given id, if present.
func (c *Catalog) ByID(id string) (domain.Product, bool) {
	index, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[index], true
}

// ByCategory filters products preserving declaration order.
func (c *Catalog) ByCategory(category domain.Category) []domain.Product {
	var out []domain.Product
	for _, product := range c.products {
		if product.Category == category {
			out = append(out, product)
		}
	}
	return out
}

// WeeklyBest returns the featured products for the home surface.
func (c *Catalog) WeeklyBest() []domain.Product {
	n := weeklyBestCount
	if n > len(c.products) {
		n = len(c.products)
	}
	return append([]domain.Product(nil), c.products[:n]...)
}

// Sort orders a product slice in place by the requested sort key.
func Sort(products []domain.Product, by domain.CatalogSort) {
	switch by {
	case domain.CatalogSortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].PriceUSD < products[j].PriceUSD
		})
	case domain.CatalogSortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].PriceUSD > products[j].PriceUSD
		})
	default:
		// Latest: ids are validated numeric at load, newer entries get
		// higher ids.
		sort.SliceStable(products, func(i, j int) bool {
			a, _ := strconv.Atoi(products[i].ID)
			b, _ := strconv.Atoi(products[j].ID)
			return a > b
		})
	}
}

// Text returns the product copy for a language, falling back to English
// field by field when a translation is missing or blank.
func Text(product domain.Product, lang domain.Language) domain.ProductText {
	english := product.Translations[domain.LanguageEnglish]
	text, ok := product.Translations[lang]
	if !ok {
		return english
	}
	if strings.TrimSpace(text.Name) == "" {
		text.Name = english.Name
	}
	if strings.TrimSpace(text.Description) == "" {
		text.Description = english.Description
	}
	if strings.TrimSpace(text.FullDescription) == "" {
		text.FullDescription = english.FullDescription
	}
	return text
}
