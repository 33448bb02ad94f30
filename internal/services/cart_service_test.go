package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stratlink-defense/api/internal/catalog"
	domain "github.com/stratlink-defense/api/internal/domain"
)

func newTestCartService(t *testing.T) CartService {
	t.Helper()

	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	svc, err := NewCartService(CartServiceDeps{Catalog: cat})
	if err != nil {
		t.Fatalf("build cart service: %v", err)
	}
	return svc
}

func TestCartAddItemDeduplicatesByProduct(t *testing.T) {
	svc := newTestCartService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, AddCartItemCommand{UserID: "uid-1", ProductID: "1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := svc.AddItem(ctx, AddCartItemCommand{UserID: "uid-1", ProductID: "1"})
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", cart.Items[0].Quantity)
	}
}

func TestCartReAddKeepsOptionsUnlessProvided(t *testing.T) {
	svc := newTestCartService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, AddCartItemCommand{
		UserID:    "uid-1",
		ProductID: "1",
		Options:   &domain.ItemOptions{SelectedOptions: []string{"l02-opt1"}, Notes: "arctic deployment"},
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart, err := svc.AddItem(ctx, AddCartItemCommand{UserID: "uid-1", ProductID: "1"})
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if got := cart.Items[0].Options.SelectedOptions; len(got) != 1 || got[0] != "l02-opt1" {
		t.Fatalf("expected options retained, got %#v", got)
	}

	cart, err = svc.AddItem(ctx, AddCartItemCommand{
		UserID:    "uid-1",
		ProductID: "1",
		Options:   &domain.ItemOptions{SelectedOptions: []string{"l02-opt2", "l02-opt3"}},
	})
	if err != nil {
		t.Fatalf("re-add with options: %v", err)
	}
	if got := cart.Items[0].Options.SelectedOptions; len(got) != 2 {
		t.Fatalf("expected options replaced, got %#v", got)
	}
	if cart.Items[0].Options.Notes != "" {
		t.Fatalf("expected notes replaced, got %q", cart.Items[0].Options.Notes)
	}
}

func TestCartAddUnknownProduct(t *testing.T) {
	svc := newTestCartService(t)

	if _, err := svc.AddItem(context.Background(), AddCartItemCommand{UserID: "uid-1", ProductID: "42"}); !errors.Is(err, ErrCartProductNotFound) {
		t.Fatalf("expected product not found, got %v", err)
	}
}

func TestCartUpdateQuantityZeroRemovesLine(t *testing.T) {
	svc := newTestCartService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, AddCartItemCommand{UserID: "uid-1", ProductID: "1"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	zero := 0
	cart, err := svc.UpdateItem(ctx, UpdateCartItemCommand{UserID: "uid-1", ProductID: "1", Quantity: &zero})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Items))
	}

	negative := -3
	if _, err := svc.AddItem(ctx, AddCartItemCommand{UserID: "uid-1", ProductID: "2"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err = svc.UpdateItem(ctx, UpdateCartItemCommand{UserID: "uid-1", ProductID: "2", Quantity: &negative})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected negative quantity to remove line, got %d lines", len(cart.Items))
	}
}

func TestCartUpdateMissingLine(t *testing.T) {
	svc := newTestCartService(t)

	qty := 2
	if _, err := svc.UpdateItem(context.Background(), UpdateCartItemCommand{UserID: "uid-1", ProductID: "1", Quantity: &qty}); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected item not found, got %v", err)
	}
}

func TestCartRemoveMissingLineIsNoOp(t *testing.T) {
	svc := newTestCartService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, AddCartItemCommand{UserID: "uid-1", ProductID: "1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := svc.RemoveItem(ctx, "uid-1", "5")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected cart untouched, got %d lines", len(cart.Items))
	}
}

func TestCartSanitizesCustomizationText(t *testing.T) {
	svc := newTestCartService(t)

	cart, err := svc.AddItem(context.Background(), AddCartItemCommand{
		UserID:    "uid-1",
		ProductID: "1",
		Options: &domain.ItemOptions{
			Configuration: "<script>alert(1)</script>desert variant",
			Notes:         "<b>urgent</b> delivery",
		},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if strings.Contains(cart.Items[0].Options.Configuration, "<") {
		t.Fatalf("expected markup stripped, got %q", cart.Items[0].Options.Configuration)
	}
	if cart.Items[0].Options.Notes != "urgent delivery" {
		t.Fatalf("unexpected sanitized notes: %q", cart.Items[0].Options.Notes)
	}
}

func TestCartTotalsIncludeOptionPrices(t *testing.T) {
	svc := newTestCartService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, AddCartItemCommand{
		UserID:    "uid-1",
		ProductID: "1",
		Quantity:  2,
		Options:   &domain.ItemOptions{SelectedOptions: []string{"l02-opt1", "l02-opt3", "not-a-real-option"}},
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart, err := svc.Get(ctx, "uid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// base 4,850,000 + options 580,000 + 350,000, times quantity 2
	if got := cart.TotalUSD(); got != 11560000 {
		t.Fatalf("unexpected total: %d", got)
	}
	if got := cart.TotalItems(); got != 2 {
		t.Fatalf("unexpected item count: %d", got)
	}
}

func TestCartIsolatedPerUser(t *testing.T) {
	svc := newTestCartService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, AddCartItemCommand{UserID: "uid-1", ProductID: "1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := svc.Get(ctx, "uid-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart for other user, got %d lines", len(cart.Items))
	}

	if err := svc.Clear(ctx, "uid-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	cart, err = svc.Get(ctx, "uid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected cleared cart, got %d lines", len(cart.Items))
	}
}
