package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/stratlink-defense/api/internal/domain"
	"github.com/stratlink-defense/api/internal/platform/httpx"
	"github.com/stratlink-defense/api/internal/services"
)

// CatalogHandlers exposes the public, localized catalog endpoints.
type CatalogHandlers struct {
	catalog services.CatalogService
}

// NewCatalogHandlers constructs handlers serving catalog reads.
func NewCatalogHandlers(catalog services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// Routes wires the /catalog endpoints onto the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.list)
	r.Get("/weekly-best", h.weeklyBest)
	r.Get("/{productID}", h.detail)
}

func (h *CatalogHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	query := services.ListCatalogQuery{
		State: languageStateFromRequest(r),
		Sort:  domain.CatalogSort(strings.TrimSpace(r.URL.Query().Get("sort"))),
	}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		parsed := domain.Category(category)
		query.Category = &parsed
	}

	entries, err := h.catalog.List(ctx, query)
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, catalogListResponse{
		Products: buildCatalogEntries(entries),
		Count:    len(entries),
	})
}

func (h *CatalogHandlers) weeklyBest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	entries, err := h.catalog.WeeklyBest(ctx, languageStateFromRequest(r))
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, catalogListResponse{
		Products: buildCatalogEntries(entries),
		Count:    len(entries),
	})
}

func (h *CatalogHandlers) detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	detail, err := h.catalog.Detail(ctx, chi.URLParam(r, "productID"), languageStateFromRequest(r))
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}

	payload := catalogDetailPayload{
		catalogEntryPayload: buildCatalogEntry(detail.CatalogEntry),
		FullDescription:     detail.FullDescription,
		Specs:               detail.Specs,
		Options:             make([]catalogOptionPayload, 0, len(detail.Options)),
	}
	for _, opt := range detail.Options {
		payload.Options = append(payload.Options, catalogOptionPayload{
			ID:             opt.ID,
			Name:           opt.Name,
			PriceUSD:       opt.PriceUSD,
			FormattedPrice: opt.FormattedPrice,
		})
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *CatalogHandlers) writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCatalogInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCatalogProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to read catalog", http.StatusInternalServerError))
	}
}

type catalogListResponse struct {
	Products []catalogEntryPayload `json:"products"`
	Count    int                   `json:"count"`
}

type catalogEntryPayload struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Category       string `json:"category"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	PriceUSD       int64  `json:"price_usd"`
	Price          int64  `json:"price"`
	FormattedPrice string `json:"formatted_price"`
	Currency       string `json:"currency"`
	ImageURL       string `json:"image_url"`
}

type catalogOptionPayload struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PriceUSD       int64  `json:"price_usd"`
	FormattedPrice string `json:"formatted_price"`
}

type catalogDetailPayload struct {
	catalogEntryPayload
	FullDescription string                 `json:"full_description"`
	Specs           []string               `json:"specs"`
	Options         []catalogOptionPayload `json:"options"`
}

func buildCatalogEntry(entry services.CatalogEntry) catalogEntryPayload {
	return catalogEntryPayload{
		ID:             entry.ID,
		Code:           entry.Code,
		Category:       string(entry.Category),
		Name:           entry.Name,
		Description:    entry.Description,
		PriceUSD:       entry.PriceUSD,
		Price:          entry.Price,
		FormattedPrice: entry.FormattedPrice,
		Currency:       entry.Currency,
		ImageURL:       entry.ImageURL,
	}
}

func buildCatalogEntries(entries []services.CatalogEntry) []catalogEntryPayload {
	payloads := make([]catalogEntryPayload, 0, len(entries))
	for _, entry := range entries {
		payloads = append(payloads, buildCatalogEntry(entry))
	}
	return payloads
}
