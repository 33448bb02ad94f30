package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/stratlink-defense/api/internal/catalog"
	domain "github.com/stratlink-defense/api/internal/domain"
	"github.com/stratlink-defense/api/internal/i18n"
	"github.com/stratlink-defense/api/internal/platform/auth"
	"github.com/stratlink-defense/api/internal/platform/httpx"
	"github.com/stratlink-defense/api/internal/services"
)

// CartHandlers serves the signed-in buyer's quote cart.
type CartHandlers struct {
	authn  *auth.Authenticator
	carts  services.CartService
	locale services.LocaleService
}

// NewCartHandlers constructs the cart handlers. The locale service supplies
// the caller's stored language preference when the request carries none.
func NewCartHandlers(authn *auth.Authenticator, carts services.CartService, locale services.LocaleService) *CartHandlers {
	return &CartHandlers{authn: authn, carts: carts, locale: locale}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/", h.get)
	r.Post("/items", h.addItem)
	r.Patch("/items/{productID}", h.updateItem)
	r.Delete("/items/{productID}", h.removeItem)
	r.Delete("/", h.clear)
}

func (h *CartHandlers) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	cart, err := h.carts.Get(ctx, uid)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(cart, resolveLanguageState(r, h.locale, uid)))
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, defaultMaxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req addCartItemRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	cart, err := h.carts.AddItem(ctx, services.AddCartItemCommand{
		UserID:    uid,
		ProductID: strings.TrimSpace(req.ProductID),
		Quantity:  req.Quantity,
		Options:   req.Options.toDomain(),
	})
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(cart, resolveLanguageState(r, h.locale, uid)))
}

func (h *CartHandlers) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, defaultMaxBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	cmd := services.UpdateCartItemCommand{
		UserID:    uid,
		ProductID: chi.URLParam(r, "productID"),
	}
	edited := false
	for key, raw := range fields {
		switch key {
		case "quantity":
			if isJSONNull(raw) {
				httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "quantity must be a number", http.StatusBadRequest))
				return
			}
			var qty int
			if err := json.Unmarshal(raw, &qty); err != nil {
				httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "quantity must be a number", http.StatusBadRequest))
				return
			}
			cmd.Quantity = &qty
			edited = true
		case "options":
			if isJSONNull(raw) {
				continue
			}
			var opts cartItemOptionsRequest
			if err := json.Unmarshal(raw, &opts); err != nil {
				httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "options must be an object", http.StatusBadRequest))
				return
			}
			cmd.Options = opts.toDomain()
			edited = true
		}
	}
	if !edited {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", errNoEditableFields.Error(), http.StatusBadRequest))
		return
	}

	cart, err := h.carts.UpdateItem(ctx, cmd)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(cart, resolveLanguageState(r, h.locale, uid)))
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	cart, err := h.carts.RemoveItem(ctx, uid, chi.URLParam(r, "productID"))
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(cart, resolveLanguageState(r, h.locale, uid)))
}

func (h *CartHandlers) clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	if err := h.carts.Clear(ctx, uid); err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandlers) requireIdentity(ctx context.Context, w http.ResponseWriter) (string, bool) {
	ident, ok := auth.IdentityFromContext(ctx)
	if !ok || ident == nil || strings.TrimSpace(ident.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return "", false
	}
	return ident.UID, true
}

func (h *CartHandlers) writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCartProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCartItemNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("cart_item_not_found", "cart item not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "failed to process cart request", http.StatusInternalServerError))
	}
}

type addCartItemRequest struct {
	ProductID string                  `json:"product_id"`
	Quantity  int                     `json:"quantity"`
	Options   *cartItemOptionsRequest `json:"options"`
}

type cartItemOptionsRequest struct {
	SelectedOptions []string `json:"selected_options"`
	Configuration   string   `json:"configuration"`
	Notes           string   `json:"notes"`
}

func (req *cartItemOptionsRequest) toDomain() *domain.ItemOptions {
	if req == nil {
		return nil
	}
	return &domain.ItemOptions{
		SelectedOptions: req.SelectedOptions,
		Configuration:   req.Configuration,
		Notes:           req.Notes,
	}
}

type cartResponse struct {
	Items          []cartItemPayload `json:"items"`
	TotalItems     int               `json:"total_items"`
	TotalUSD       int64             `json:"total_usd"`
	Total          int64             `json:"total"`
	FormattedTotal string            `json:"formatted_total"`
	Currency       string            `json:"currency"`
}

type cartItemPayload struct {
	ProductID       string   `json:"product_id"`
	ProductCode     string   `json:"product_code"`
	Name            string   `json:"name"`
	Quantity        int      `json:"quantity"`
	UnitUSD         int64    `json:"unit_usd"`
	LineUSD         int64    `json:"line_usd"`
	FormattedLine   string   `json:"formatted_line"`
	SelectedOptions []string `json:"selected_options,omitempty"`
	Configuration   string   `json:"configuration,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// buildCartPayload renders a cart for the caller's language state. Names follow
// the effective language while the currency follows the selected language.
func buildCartPayload(cart domain.Cart, state domain.LanguageState) cartResponse {
	effective := i18n.EffectiveLanguage(state)
	items := make([]cartItemPayload, 0, len(cart.Items))
	for _, item := range cart.Items {
		unit := item.Product.PriceUSD + domain.OptionsTotalUSD(item.Product, item.Options.SelectedOptions)
		line := domain.LineTotalUSD(item)
		items = append(items, cartItemPayload{
			ProductID:       item.Product.ID,
			ProductCode:     item.Product.Code,
			Name:            catalog.Text(item.Product, effective).Name,
			Quantity:        item.Quantity,
			UnitUSD:         unit,
			LineUSD:         line,
			FormattedLine:   i18n.FormatPrice(state, line),
			SelectedOptions: item.Options.SelectedOptions,
			Configuration:   item.Options.Configuration,
			Notes:           item.Options.Notes,
		})
	}

	total := cart.TotalUSD()
	return cartResponse{
		Items:          items,
		TotalItems:     cart.TotalItems(),
		TotalUSD:       total,
		Total:          i18n.ConvertUSD(effective, total),
		FormattedTotal: i18n.FormatPrice(state, total),
		Currency:       i18n.CurrencyCode(state.Language),
	}
}
