package catalog

import (
	"testing"

	"github.com/stratlink-defense/api/internal/domain"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	all := c.All()
	if len(all) != 6 {
		t.Fatalf("expected 6 products, got %d", len(all))
	}
	if all[0].Code != "L-02" || all[0].PriceUSD != 4850000 {
		t.Fatalf("unexpected first product: %+v", all[0])
	}
}

func TestByIDIsOptional(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	product, ok := c.ByID("3")
	if !ok || product.Code != "N-01" || product.Category != domain.CategorySea {
		t.Fatalf("unexpected lookup result: %+v ok=%v", product, ok)
	}
	if _, ok := c.ByID("99"); ok {
		t.Fatalf("expected missing id to report absence")
	}
}

func TestByCategoryPreservesOrder(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	air := c.ByCategory(domain.CategoryAir)
	if len(air) != 3 {
		t.Fatalf("expected 3 air products, got %d", len(air))
	}
	if air[0].ID != "4" || air[1].ID != "5" || air[2].ID != "6" {
		t.Fatalf("unexpected air ordering: %s %s %s", air[0].ID, air[1].ID, air[2].ID)
	}
}

func TestSortOrders(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	products := c.All()
	Sort(products, domain.CatalogSortLatest)
	if products[0].ID != "6" || products[len(products)-1].ID != "1" {
		t.Fatalf("unexpected latest ordering: first=%s last=%s", products[0].ID, products[len(products)-1].ID)
	}

	products = c.All()
	Sort(products, domain.CatalogSortPriceAsc)
	if products[0].Code != "A-04" || products[len(products)-1].Code != "N-01" {
		t.Fatalf("unexpected price_asc ordering: first=%s last=%s", products[0].Code, products[len(products)-1].Code)
	}

	products = c.All()
	Sort(products, domain.CatalogSortPriceDesc)
	if products[0].Code != "N-01" {
		t.Fatalf("unexpected price_desc ordering: first=%s", products[0].Code)
	}
}

func TestTextFallsBackToEnglish(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	product, _ := c.ByID("1")

	ko := Text(product, domain.LanguageKorean)
	if ko.Name == "" || ko.Name == Text(product, domain.LanguageEnglish).Name {
		t.Fatalf("expected Korean name to exist and differ: %q", ko.Name)
	}

	// An unsupported tag falls back wholesale to English.
	missing := Text(product, domain.Language("it"))
	if missing != product.Translations[domain.LanguageEnglish] {
		t.Fatalf("expected English fallback, got %+v", missing)
	}
}

func TestWeeklyBest(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	best := c.WeeklyBest()
	if len(best) != 4 {
		t.Fatalf("expected 4 featured products, got %d", len(best))
	}
	if best[0].ID != "1" || best[3].ID != "4" {
		t.Fatalf("unexpected featured ordering: first=%s last=%s", best[0].ID, best[3].ID)
	}
}
