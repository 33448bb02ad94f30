package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/stratlink-defense/api/internal/catalog"
	domain "github.com/stratlink-defense/api/internal/domain"
)

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart service: invalid input")

// ErrCartProductNotFound indicates the product being added does not exist.
var ErrCartProductNotFound = errors.New("cart service: product not found")

// ErrCartItemNotFound indicates the cart has no line for the product.
var ErrCartItemNotFound = errors.New("cart service: item not found")

const (
	maxCartQuantity   = 999
	maxCartNoteLength = 2000
)

// CartServiceDeps wires the catalog used to resolve products into cart lines.
type CartServiceDeps struct {
	Catalog *catalog.Catalog
}

type cartService struct {
	catalog   *catalog.Catalog
	sanitizer *bluemonday.Policy

	mu    sync.Mutex
	carts map[string][]domain.CartItem
}

var _ CartService = (*cartService)(nil)

// NewCartService constructs the session-scoped cart store. Carts live in
// memory per signed-in user and vanish on restart, matching their role as
// staging for quote submission.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Catalog == nil {
		return nil, errors.New("cart service: catalog is required")
	}

	return &cartService{
		catalog:   deps.Catalog,
		sanitizer: bluemonday.StrictPolicy(),
		carts:     make(map[string][]domain.CartItem),
	}, nil
}

// Get returns a copy of the user's cart.
func (s *cartService) Get(ctx context.Context, userID string) (Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return Cart{}, fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Cart{Items: cloneItems(s.carts[uid])}, nil
}

// AddItem adds a product to the cart. Re-adding an existing product bumps its
// quantity; customization is replaced only when the command carries one.
func (s *cartService) AddItem(ctx context.Context, cmd AddCartItemCommand) (Cart, error) {
	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return Cart{}, fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}
	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" {
		return Cart{}, fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}

	quantity := cmd.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 || quantity > maxCartQuantity {
		return Cart{}, fmt.Errorf("%w: quantity out of range", ErrCartInvalidInput)
	}

	product, ok := s.catalog.ByID(productID)
	if !ok {
		return Cart{}, fmt.Errorf("%w: %s", ErrCartProductNotFound, productID)
	}

	var options *domain.ItemOptions
	if cmd.Options != nil {
		cleaned, err := s.sanitizeOptions(*cmd.Options)
		if err != nil {
			return Cart{}, err
		}
		options = &cleaned
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[uid]
	for i := range items {
		if items[i].Product.ID != productID {
			continue
		}
		items[i].Quantity += quantity
		if items[i].Quantity > maxCartQuantity {
			items[i].Quantity = maxCartQuantity
		}
		if options != nil {
			items[i].Options = *options
		}
		s.carts[uid] = items
		return domain.Cart{Items: cloneItems(items)}, nil
	}

	item := domain.CartItem{Product: product, Quantity: quantity}
	if options != nil {
		item.Options = *options
	}
	items = append(items, item)
	s.carts[uid] = items
	return domain.Cart{Items: cloneItems(items)}, nil
}

// UpdateItem adjusts a cart line. A quantity of zero or less removes the
// line; nil fields leave current values untouched.
func (s *cartService) UpdateItem(ctx context.Context, cmd UpdateCartItemCommand) (Cart, error) {
	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return Cart{}, fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}
	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" {
		return Cart{}, fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}
	if cmd.Quantity == nil && cmd.Options == nil {
		return Cart{}, fmt.Errorf("%w: nothing to update", ErrCartInvalidInput)
	}
	if cmd.Quantity != nil && *cmd.Quantity > maxCartQuantity {
		return Cart{}, fmt.Errorf("%w: quantity out of range", ErrCartInvalidInput)
	}

	var options *domain.ItemOptions
	if cmd.Options != nil {
		cleaned, err := s.sanitizeOptions(*cmd.Options)
		if err != nil {
			return Cart{}, err
		}
		options = &cleaned
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[uid]
	for i := range items {
		if items[i].Product.ID != productID {
			continue
		}
		if cmd.Quantity != nil && *cmd.Quantity <= 0 {
			items = append(items[:i], items[i+1:]...)
			s.carts[uid] = items
			return domain.Cart{Items: cloneItems(items)}, nil
		}
		if cmd.Quantity != nil {
			items[i].Quantity = *cmd.Quantity
		}
		if options != nil {
			items[i].Options = *options
		}
		s.carts[uid] = items
		return domain.Cart{Items: cloneItems(items)}, nil
	}

	return Cart{}, fmt.Errorf("%w: %s", ErrCartItemNotFound, productID)
}

// RemoveItem drops the product's line from the cart. Removing a product that
// is not in the cart is a no-op.
func (s *cartService) RemoveItem(ctx context.Context, userID, productID string) (Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return Cart{}, fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}
	trimmed := strings.TrimSpace(productID)
	if trimmed == "" {
		return Cart{}, fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[uid]
	for i := range items {
		if items[i].Product.ID == trimmed {
			items = append(items[:i], items[i+1:]...)
			s.carts[uid] = items
			break
		}
	}
	return domain.Cart{Items: cloneItems(s.carts[uid])}, nil
}

// Clear empties the user's cart.
func (s *cartService) Clear(ctx context.Context, userID string) error {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, uid)
	return nil
}

// sanitizeOptions strips markup from free-form fields and normalises the
// selected option ids.
func (s *cartService) sanitizeOptions(options domain.ItemOptions) (domain.ItemOptions, error) {
	if len(options.Configuration) > maxCartNoteLength || len(options.Notes) > maxCartNoteLength {
		return domain.ItemOptions{}, fmt.Errorf("%w: customization text too long", ErrCartInvalidInput)
	}

	cleaned := domain.ItemOptions{
		Configuration: strings.TrimSpace(s.sanitizer.Sanitize(options.Configuration)),
		Notes:         strings.TrimSpace(s.sanitizer.Sanitize(options.Notes)),
	}
	for _, id := range options.SelectedOptions {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			cleaned.SelectedOptions = append(cleaned.SelectedOptions, trimmed)
		}
	}
	return cleaned, nil
}

func cloneItems(items []domain.CartItem) []domain.CartItem {
	if len(items) == 0 {
		return nil
	}
	cloned := make([]domain.CartItem, len(items))
	copy(cloned, items)
	for i := range cloned {
		cloned[i].Options.SelectedOptions = append([]string(nil), cloned[i].Options.SelectedOptions...)
	}
	return cloned
}
