package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/stratlink-defense/api/internal/domain"
	"github.com/stratlink-defense/api/internal/platform/auth"
	"github.com/stratlink-defense/api/internal/platform/httpx"
	"github.com/stratlink-defense/api/internal/services"
)

// QuoteHandlers serves quote request submission and review endpoints.
type QuoteHandlers struct {
	authn  *auth.Authenticator
	quotes services.QuoteService
	locale services.LocaleService
}

// NewQuoteHandlers constructs the quote handlers. The locale service supplies
// the caller's stored language preference when the request carries none.
func NewQuoteHandlers(authn *auth.Authenticator, quotes services.QuoteService, locale services.LocaleService) *QuoteHandlers {
	return &QuoteHandlers{authn: authn, quotes: quotes, locale: locale}
}

// Routes wires the /quotes endpoints onto the provided router.
func (h *QuoteHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Post("/", h.submit)
	r.Get("/", h.list)
	r.Get("/{quoteID}", h.get)
	r.Post("/{quoteID}/purchase-info", h.attachPurchaseInfo)
}

func (h *QuoteHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.quotes == nil {
		httpx.WriteError(ctx, w, httpx.NewError("quote_service_unavailable", "quote service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var contact string
	if r.ContentLength != 0 {
		body, err := readLimitedBody(r, defaultMaxBodySize)
		if err != nil && !errors.Is(err, errEmptyBody) {
			writeBodyError(ctx, w, err)
			return
		}
		if err == nil {
			var req submitQuoteRequest
			if err := json.Unmarshal(body, &req); err != nil {
				httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
				return
			}
			contact = req.Contact
		}
	}

	quote, err := h.quotes.Submit(ctx, services.SubmitQuoteCommand{
		UserID:  uid,
		Contact: contact,
		State:   resolveLanguageState(r, h.locale, uid),
	})
	if err != nil {
		h.writeQuoteError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildQuotePayload(quote))
}

func (h *QuoteHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.quotes == nil {
		httpx.WriteError(ctx, w, httpx.NewError("quote_service_unavailable", "quote service is unavailable", http.StatusServiceUnavailable))
		return
	}

	quotes, err := h.quotes.List(ctx, uid)
	if err != nil {
		h.writeQuoteError(ctx, w, err)
		return
	}

	payloads := make([]quotePayload, 0, len(quotes))
	for _, quote := range quotes {
		payloads = append(payloads, buildQuotePayload(quote))
	}
	writeJSONResponse(w, http.StatusOK, quoteListResponse{Quotes: payloads, Count: len(payloads)})
}

func (h *QuoteHandlers) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.quotes == nil {
		httpx.WriteError(ctx, w, httpx.NewError("quote_service_unavailable", "quote service is unavailable", http.StatusServiceUnavailable))
		return
	}

	quote, err := h.quotes.Get(ctx, uid, chi.URLParam(r, "quoteID"))
	if err != nil {
		h.writeQuoteError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildQuotePayload(quote))
}

func (h *QuoteHandlers) attachPurchaseInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.quotes == nil {
		httpx.WriteError(ctx, w, httpx.NewError("quote_service_unavailable", "quote service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, defaultMaxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req purchaseInfoRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	quote, err := h.quotes.AttachPurchaseInfo(ctx, services.AttachPurchaseInfoCommand{
		UserID:  uid,
		QuoteID: chi.URLParam(r, "quoteID"),
		Info: domain.PurchaseInfo{
			EndUserOrganization: req.EndUserOrganization,
			DeliveryCountry:     req.DeliveryCountry,
			IntendedUse:         req.IntendedUse,
			ComplianceAck:       req.ComplianceAck,
		},
	})
	if err != nil {
		h.writeQuoteError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildQuotePayload(quote))
}

func (h *QuoteHandlers) requireIdentity(ctx context.Context, w http.ResponseWriter) (string, bool) {
	ident, ok := auth.IdentityFromContext(ctx)
	if !ok || ident == nil || strings.TrimSpace(ident.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return "", false
	}
	return ident.UID, true
}

func (h *QuoteHandlers) writeQuoteError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrQuoteEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("empty_cart", "cart is empty", http.StatusConflict))
	case errors.Is(err, services.ErrQuoteInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrQuoteNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("quote_not_found", "quote not found", http.StatusNotFound))
	case errors.Is(err, services.ErrQuoteUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("quote_service_unavailable", "quote store is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("quote_error", "failed to process quote request", http.StatusInternalServerError))
	}
}

type submitQuoteRequest struct {
	Contact string `json:"contact"`
}

type purchaseInfoRequest struct {
	EndUserOrganization string `json:"end_user_organization"`
	DeliveryCountry     string `json:"delivery_country"`
	IntendedUse         string `json:"intended_use"`
	ComplianceAck       bool   `json:"compliance_ack"`
}

type quoteListResponse struct {
	Quotes []quotePayload `json:"quotes"`
	Count  int            `json:"count"`
}

type quotePayload struct {
	ID             string               `json:"id"`
	Status         string               `json:"status"`
	Items          []quoteItemPayload   `json:"items"`
	TotalItems     int                  `json:"total_items"`
	TotalUSD       int64                `json:"total_usd"`
	Language       string               `json:"language"`
	Currency       string               `json:"currency"`
	FormattedTotal string               `json:"formatted_total"`
	Contact        string               `json:"contact,omitempty"`
	PurchaseInfo   *purchaseInfoPayload `json:"purchase_info,omitempty"`
	SubmittedAt    string               `json:"submitted_at"`
	UpdatedAt      string               `json:"updated_at,omitempty"`
}

type quoteItemPayload struct {
	ProductID       string   `json:"product_id"`
	ProductCode     string   `json:"product_code"`
	ProductName     string   `json:"product_name"`
	Quantity        int      `json:"quantity"`
	SelectedOptions []string `json:"selected_options,omitempty"`
	Configuration   string   `json:"configuration,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	UnitUSD         int64    `json:"unit_usd"`
	LineUSD         int64    `json:"line_usd"`
}

type purchaseInfoPayload struct {
	EndUserOrganization string `json:"end_user_organization"`
	DeliveryCountry     string `json:"delivery_country"`
	IntendedUse         string `json:"intended_use,omitempty"`
	ComplianceAck       bool   `json:"compliance_ack"`
	SubmittedAt         string `json:"submitted_at"`
}

func buildQuotePayload(quote domain.Quote) quotePayload {
	items := make([]quoteItemPayload, 0, len(quote.Items))
	for _, item := range quote.Items {
		items = append(items, quoteItemPayload{
			ProductID:       item.ProductID,
			ProductCode:     item.ProductCode,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			SelectedOptions: item.Options.SelectedOptions,
			Configuration:   item.Options.Configuration,
			Notes:           item.Options.Notes,
			UnitUSD:         item.UnitUSD,
			LineUSD:         item.LineUSD,
		})
	}

	payload := quotePayload{
		ID:             quote.ID,
		Status:         string(quote.Status),
		Items:          items,
		TotalItems:     quote.TotalItems,
		TotalUSD:       quote.TotalUSD,
		Language:       string(quote.Language),
		Currency:       quote.Currency,
		FormattedTotal: quote.FormattedTotal,
		Contact:        quote.Contact,
		SubmittedAt:    formatTime(quote.SubmittedAt),
		UpdatedAt:      formatTime(quote.UpdatedAt),
	}
	if quote.PurchaseInfo != nil {
		payload.PurchaseInfo = &purchaseInfoPayload{
			EndUserOrganization: quote.PurchaseInfo.EndUserOrganization,
			DeliveryCountry:     quote.PurchaseInfo.DeliveryCountry,
			IntendedUse:         quote.PurchaseInfo.IntendedUse,
			ComplianceAck:       quote.PurchaseInfo.ComplianceAck,
			SubmittedAt:         formatTime(quote.PurchaseInfo.SubmittedAt),
		}
	}
	return payload
}
