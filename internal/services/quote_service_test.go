package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/stratlink-defense/api/internal/domain"
)

type stubQuoteRepository struct {
	inserted  []domain.Quote
	insertErr error
	byID      map[string]domain.Quote
	listErr   error
	attachErr error
}

func (s *stubQuoteRepository) Insert(_ context.Context, quote domain.Quote) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	if s.byID == nil {
		s.byID = map[string]domain.Quote{}
	}
	s.inserted = append(s.inserted, quote)
	s.byID[quote.ID] = quote
	return nil
}

func (s *stubQuoteRepository) FindByID(_ context.Context, userID, quoteID string) (domain.Quote, error) {
	quote, ok := s.byID[quoteID]
	if !ok || quote.UserID != userID {
		return domain.Quote{}, stubRepositoryError{notFound: true}
	}
	return quote, nil
}

func (s *stubQuoteRepository) ListByUser(_ context.Context, userID string) ([]domain.Quote, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var quotes []domain.Quote
	for _, quote := range s.byID {
		if quote.UserID == userID {
			quotes = append(quotes, quote)
		}
	}
	return quotes, nil
}

func (s *stubQuoteRepository) AttachPurchaseInfo(_ context.Context, userID, quoteID string, info domain.PurchaseInfo) (domain.Quote, error) {
	if s.attachErr != nil {
		return domain.Quote{}, s.attachErr
	}
	quote, ok := s.byID[quoteID]
	if !ok || quote.UserID != userID {
		return domain.Quote{}, stubRepositoryError{notFound: true}
	}
	quote.PurchaseInfo = &info
	quote.UpdatedAt = info.SubmittedAt
	s.byID[quoteID] = quote
	return quote, nil
}

type stubQuotePublisher struct {
	published []QuoteSubmittedMessage
	err       error
}

func (s *stubQuotePublisher) PublishQuoteSubmitted(_ context.Context, message QuoteSubmittedMessage) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.published = append(s.published, message)
	return "msg-1", nil
}

func newTestQuoteService(t *testing.T, repo *stubQuoteRepository, publisher QuoteEventPublisher) (QuoteService, CartService) {
	t.Helper()

	carts := newTestCartService(t)
	svc, err := NewQuoteService(QuoteServiceDeps{
		Quotes:      repo,
		Carts:       carts,
		Publisher:   publisher,
		Clock:       func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) },
		IDGenerator: func() string { return "01JTESTQUOTE" },
	})
	if err != nil {
		t.Fatalf("build quote service: %v", err)
	}
	return svc, carts
}

func TestSubmitQuoteSnapshotsCart(t *testing.T) {
	repo := &stubQuoteRepository{}
	publisher := &stubQuotePublisher{}
	svc, carts := newTestQuoteService(t, repo, publisher)
	ctx := context.Background()

	if _, err := carts.AddItem(ctx, AddCartItemCommand{
		UserID:    "uid-1",
		ProductID: "1",
		Quantity:  2,
		Options:   &domain.ItemOptions{SelectedOptions: []string{"l02-opt1"}},
	}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	if _, err := carts.AddItem(ctx, AddCartItemCommand{UserID: "uid-1", ProductID: "6"}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	quote, err := svc.Submit(ctx, SubmitQuoteCommand{
		UserID:  "uid-1",
		Contact: "procurement@agency.example",
		State:   domain.LanguageState{Language: domain.LanguageKorean},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if quote.ID != "01JTESTQUOTE" || quote.Status != domain.QuoteStatusSubmitted {
		t.Fatalf("unexpected quote header: %+v", quote)
	}
	if len(quote.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(quote.Items))
	}
	// line 1: (4,850,000 + 580,000) x 2; line 2: 920,000
	if quote.Items[0].UnitUSD != 5430000 || quote.Items[0].LineUSD != 10860000 {
		t.Fatalf("unexpected line pricing: %+v", quote.Items[0])
	}
	if quote.TotalUSD != 11780000 || quote.TotalItems != 3 {
		t.Fatalf("unexpected totals: %d / %d", quote.TotalUSD, quote.TotalItems)
	}
	if quote.Currency != "KRW" {
		t.Fatalf("unexpected currency: %q", quote.Currency)
	}
	if quote.Items[0].ProductName != "통합 대드론 차량 시스템" {
		t.Fatalf("expected localized snapshot name, got %q", quote.Items[0].ProductName)
	}

	if len(repo.inserted) != 1 {
		t.Fatalf("expected one persisted quote, got %d", len(repo.inserted))
	}
	if len(publisher.published) != 1 || publisher.published[0].QuoteID != quote.ID {
		t.Fatalf("expected quote event, got %#v", publisher.published)
	}

	cart, err := carts.Get(ctx, "uid-1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected cart cleared after submission, got %d lines", len(cart.Items))
	}
}

func TestSubmitQuoteRejectsEmptyCart(t *testing.T) {
	svc, _ := newTestQuoteService(t, &stubQuoteRepository{}, nil)

	if _, err := svc.Submit(context.Background(), SubmitQuoteCommand{UserID: "uid-1"}); !errors.Is(err, ErrQuoteEmptyCart) {
		t.Fatalf("expected empty cart error, got %v", err)
	}
}

func TestSubmitQuoteSurvivesPublishFailure(t *testing.T) {
	repo := &stubQuoteRepository{}
	publisher := &stubQuotePublisher{err: errors.New("topic unavailable")}
	svc, carts := newTestQuoteService(t, repo, publisher)
	ctx := context.Background()

	if _, err := carts.AddItem(ctx, AddCartItemCommand{UserID: "uid-1", ProductID: "3"}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	quote, err := svc.Submit(ctx, SubmitQuoteCommand{UserID: "uid-1"})
	if err != nil {
		t.Fatalf("submit should tolerate publish failure, got %v", err)
	}
	if len(repo.inserted) != 1 || quote.ID == "" {
		t.Fatalf("expected quote persisted despite publish failure")
	}
}

func TestSubmitQuotePersistFailureKeepsCart(t *testing.T) {
	repo := &stubQuoteRepository{insertErr: stubRepositoryError{unavailable: true}}
	svc, carts := newTestQuoteService(t, repo, nil)
	ctx := context.Background()

	if _, err := carts.AddItem(ctx, AddCartItemCommand{UserID: "uid-1", ProductID: "3"}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	if _, err := svc.Submit(ctx, SubmitQuoteCommand{UserID: "uid-1"}); !errors.Is(err, ErrQuoteUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}

	cart, err := carts.Get(ctx, "uid-1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected cart retained on failure, got %d lines", len(cart.Items))
	}
}

func TestGetQuoteEnforcesOwnership(t *testing.T) {
	repo := &stubQuoteRepository{byID: map[string]domain.Quote{
		"q1": {ID: "q1", UserID: "uid-1"},
	}}
	svc, _ := newTestQuoteService(t, repo, nil)

	if _, err := svc.Get(context.Background(), "uid-2", "q1"); !errors.Is(err, ErrQuoteNotFound) {
		t.Fatalf("expected not found for foreign quote, got %v", err)
	}

	quote, err := svc.Get(context.Background(), "uid-1", "q1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if quote.ID != "q1" {
		t.Fatalf("unexpected quote: %+v", quote)
	}
}

func TestAttachPurchaseInfoValidation(t *testing.T) {
	repo := &stubQuoteRepository{byID: map[string]domain.Quote{
		"q1": {ID: "q1", UserID: "uid-1", Status: domain.QuoteStatusSubmitted},
	}}
	svc, _ := newTestQuoteService(t, repo, nil)
	ctx := context.Background()

	_, err := svc.AttachPurchaseInfo(ctx, AttachPurchaseInfoCommand{
		UserID:  "uid-1",
		QuoteID: "q1",
		Info:    domain.PurchaseInfo{DeliveryCountry: "Poland", ComplianceAck: true},
	})
	if !errors.Is(err, ErrQuoteInvalidInput) {
		t.Fatalf("expected invalid input without organization, got %v", err)
	}

	_, err = svc.AttachPurchaseInfo(ctx, AttachPurchaseInfoCommand{
		UserID:  "uid-1",
		QuoteID: "q1",
		Info: domain.PurchaseInfo{
			EndUserOrganization: "Ministry of Defence",
			DeliveryCountry:     "Poland",
		},
	})
	if !errors.Is(err, ErrQuoteInvalidInput) {
		t.Fatalf("expected invalid input without compliance ack, got %v", err)
	}

	quote, err := svc.AttachPurchaseInfo(ctx, AttachPurchaseInfoCommand{
		UserID:  "uid-1",
		QuoteID: "q1",
		Info: domain.PurchaseInfo{
			EndUserOrganization: "Ministry of Defence",
			DeliveryCountry:     "Poland",
			IntendedUse:         "border surveillance",
			ComplianceAck:       true,
		},
	})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if quote.PurchaseInfo == nil || quote.PurchaseInfo.SubmittedAt.IsZero() {
		t.Fatalf("expected purchase info recorded with timestamp")
	}
}
