package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	domain "github.com/stratlink-defense/api/internal/domain"
	"github.com/stratlink-defense/api/internal/services"
)

func TestCatalogHandlersListSuccess(t *testing.T) {
	service := &stubCatalogService{
		listFunc: func(ctx context.Context, query services.ListCatalogQuery) ([]services.CatalogEntry, error) {
			if query.Sort != domain.CatalogSortPriceAsc {
				t.Fatalf("expected price_asc sort, got %q", query.Sort)
			}
			if query.Category == nil || *query.Category != domain.CategoryAir {
				t.Fatalf("expected Air category, got %#v", query.Category)
			}
			if query.State.Language != domain.LanguageKorean {
				t.Fatalf("expected ko state, got %q", query.State.Language)
			}
			return []services.CatalogEntry{
				{ID: "6", Code: "A-04", Category: domain.CategoryAir, Name: "차세대 HMD 시스템", PriceUSD: 920000, Price: 1242000000, FormattedPrice: "₩1,242,000,000", Currency: "KRW"},
			}, nil
		},
	}

	handler := NewCatalogHandlers(service)
	router := chi.NewRouter()
	router.Route("/catalog", handler.Routes)

	req := httptest.NewRequest(http.MethodGet, "/catalog?sort=price_asc&category=Air&lang=ko", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp catalogListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", resp.Count)
	}
	if resp.Products[0].FormattedPrice != "₩1,242,000,000" {
		t.Fatalf("unexpected formatted price %q", resp.Products[0].FormattedPrice)
	}
}

func TestCatalogHandlersListInvalidSort(t *testing.T) {
	service := &stubCatalogService{
		listFunc: func(ctx context.Context, query services.ListCatalogQuery) ([]services.CatalogEntry, error) {
			return nil, services.ErrCatalogInvalidInput
		},
	}
	handler := NewCatalogHandlers(service)
	router := chi.NewRouter()
	router.Route("/catalog", handler.Routes)

	req := httptest.NewRequest(http.MethodGet, "/catalog?sort=alphabetical", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestCatalogHandlersWeeklyBest(t *testing.T) {
	service := &stubCatalogService{
		weeklyFunc: func(ctx context.Context, state services.LanguageState) ([]services.CatalogEntry, error) {
			return []services.CatalogEntry{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}}, nil
		},
	}
	handler := NewCatalogHandlers(service)
	router := chi.NewRouter()
	router.Route("/catalog", handler.Routes)

	req := httptest.NewRequest(http.MethodGet, "/catalog/weekly-best", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp catalogListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 4 {
		t.Fatalf("expected 4 products, got %d", resp.Count)
	}
}

func TestCatalogHandlersDetailSuccess(t *testing.T) {
	service := &stubCatalogService{
		detailFunc: func(ctx context.Context, productID string, state services.LanguageState) (services.CatalogDetail, error) {
			if productID != "1" {
				t.Fatalf("unexpected product id %q", productID)
			}
			return services.CatalogDetail{
				CatalogEntry:    services.CatalogEntry{ID: "1", Code: "L-02", Name: "Integrated C-UAS Vehicle System", Currency: "USD"},
				FullDescription: "Full copy",
				Specs:           []string{"Spec A"},
				Options: []services.CatalogOption{
					{ID: "l02-opt1", Name: "EO/IR High-Resolution Camera", PriceUSD: 580000, FormattedPrice: "$580,000"},
				},
			}, nil
		},
	}
	handler := NewCatalogHandlers(service)
	router := chi.NewRouter()
	router.Route("/catalog", handler.Routes)

	req := httptest.NewRequest(http.MethodGet, "/catalog/1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp catalogDetailPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "1" || resp.FullDescription != "Full copy" {
		t.Fatalf("unexpected detail payload %#v", resp)
	}
	if len(resp.Options) != 1 || resp.Options[0].FormattedPrice != "$580,000" {
		t.Fatalf("unexpected options %#v", resp.Options)
	}
}

func TestCatalogHandlersDetailNotFound(t *testing.T) {
	service := &stubCatalogService{
		detailFunc: func(ctx context.Context, productID string, state services.LanguageState) (services.CatalogDetail, error) {
			return services.CatalogDetail{}, services.ErrCatalogProductNotFound
		},
	}
	handler := NewCatalogHandlers(service)
	router := chi.NewRouter()
	router.Route("/catalog", handler.Routes)

	req := httptest.NewRequest(http.MethodGet, "/catalog/99", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestCatalogHandlersServiceUnavailable(t *testing.T) {
	handler := NewCatalogHandlers(nil)
	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	rr := httptest.NewRecorder()
	handler.list(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
}

type stubCatalogService struct {
	listFunc   func(ctx context.Context, query services.ListCatalogQuery) ([]services.CatalogEntry, error)
	weeklyFunc func(ctx context.Context, state services.LanguageState) ([]services.CatalogEntry, error)
	detailFunc func(ctx context.Context, productID string, state services.LanguageState) (services.CatalogDetail, error)
}

func (s *stubCatalogService) List(ctx context.Context, query services.ListCatalogQuery) ([]services.CatalogEntry, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, query)
	}
	return nil, nil
}

func (s *stubCatalogService) WeeklyBest(ctx context.Context, state services.LanguageState) ([]services.CatalogEntry, error) {
	if s.weeklyFunc != nil {
		return s.weeklyFunc(ctx, state)
	}
	return nil, nil
}

func (s *stubCatalogService) Detail(ctx context.Context, productID string, state services.LanguageState) (services.CatalogDetail, error) {
	if s.detailFunc != nil {
		return s.detailFunc(ctx, productID, state)
	}
	return services.CatalogDetail{}, services.ErrCatalogProductNotFound
}
