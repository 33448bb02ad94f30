package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/stratlink-defense/api/internal/catalog"
	domain "github.com/stratlink-defense/api/internal/domain"
	"github.com/stratlink-defense/api/internal/i18n"
	"github.com/stratlink-defense/api/internal/repositories"
)

// ErrQuoteInvalidInput indicates the caller supplied invalid input.
var ErrQuoteInvalidInput = errors.New("quote service: invalid input")

// ErrQuoteEmptyCart indicates submission was attempted with an empty cart.
var ErrQuoteEmptyCart = errors.New("quote service: cart is empty")

// ErrQuoteNotFound indicates the quote does not exist or belongs to another user.
var ErrQuoteNotFound = errors.New("quote service: not found")

// ErrQuoteUnavailable indicates the quote store cannot fulfil the request.
var ErrQuoteUnavailable = errors.New("quote service: unavailable")

// QuoteEventPublisher announces submitted quotes to the procurement queue.
type QuoteEventPublisher interface {
	PublishQuoteSubmitted(ctx context.Context, message QuoteSubmittedMessage) (string, error)
}

// QuoteSubmittedMessage is the payload delivered to back-office workers.
type QuoteSubmittedMessage struct {
	QuoteID     string    `json:"quoteId"`
	UserID      string    `json:"userId"`
	TotalItems  int       `json:"totalItems"`
	TotalUSD    int64     `json:"totalUsd"`
	Currency    string    `json:"currency"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type quoteCartStore interface {
	Get(ctx context.Context, userID string) (Cart, error)
	Clear(ctx context.Context, userID string) error
}

// QuoteServiceDeps wires the persistence, cart, and messaging collaborators.
type QuoteServiceDeps struct {
	Quotes      repositories.QuoteRepository
	Carts       quoteCartStore
	Publisher   QuoteEventPublisher
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type quoteService struct {
	quotes    repositories.QuoteRepository
	carts     quoteCartStore
	publisher QuoteEventPublisher
	now       func() time.Time
	newID     func() string
	logger    func(context.Context, string, map[string]any)
}

var _ QuoteService = (*quoteService)(nil)

// NewQuoteService constructs a QuoteService enforcing dependency validation.
func NewQuoteService(deps QuoteServiceDeps) (QuoteService, error) {
	if deps.Quotes == nil {
		return nil, errors.New("quote service: repository is required")
	}
	if deps.Carts == nil {
		return nil, errors.New("quote service: cart store is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &quoteService{
		quotes:    deps.Quotes,
		carts:     deps.Carts,
		publisher: deps.Publisher,
		now:       func() time.Time { return clock().UTC() },
		newID:     idGen,
		logger:    logger,
	}, nil
}

// Submit snapshots the user's cart into a quote request, persists it, and
// clears the cart. The procurement queue notification is best effort.
func (s *quoteService) Submit(ctx context.Context, cmd SubmitQuoteCommand) (Quote, error) {
	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return Quote{}, fmt.Errorf("%w: user id is required", ErrQuoteInvalidInput)
	}

	cart, err := s.carts.Get(ctx, uid)
	if err != nil {
		return Quote{}, fmt.Errorf("quote service: load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return Quote{}, ErrQuoteEmptyCart
	}

	state := cmd.State
	if _, ok := i18n.ParseLanguage(string(state.Language)); !ok {
		state = domain.LanguageState{Language: domain.LanguageEnglish}
	}

	now := s.now()
	quote := domain.Quote{
		ID:          s.newID(),
		UserID:      uid,
		Status:      domain.QuoteStatusSubmitted,
		Items:       make([]domain.QuoteItem, 0, len(cart.Items)),
		TotalItems:  cart.TotalItems(),
		TotalUSD:    cart.TotalUSD(),
		Language:    state.Language,
		Currency:    i18n.CurrencyCode(state.Language),
		Contact:     strings.TrimSpace(cmd.Contact),
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	quote.FormattedTotal = i18n.FormatPrice(state, quote.TotalUSD)

	effective := i18n.EffectiveLanguage(state)
	for _, item := range cart.Items {
		unit := item.Product.PriceUSD + domain.OptionsTotalUSD(item.Product, item.Options.SelectedOptions)
		quote.Items = append(quote.Items, domain.QuoteItem{
			ProductID:   item.Product.ID,
			ProductCode: item.Product.Code,
			ProductName: catalog.Text(item.Product, effective).Name,
			Quantity:    item.Quantity,
			Options:     item.Options,
			UnitUSD:     unit,
			LineUSD:     domain.LineTotalUSD(item),
		})
	}

	if err := s.quotes.Insert(ctx, quote); err != nil {
		return Quote{}, s.translateRepoError(err)
	}

	if s.publisher != nil {
		message := QuoteSubmittedMessage{
			QuoteID:     quote.ID,
			UserID:      quote.UserID,
			TotalItems:  quote.TotalItems,
			TotalUSD:    quote.TotalUSD,
			Currency:    quote.Currency,
			SubmittedAt: quote.SubmittedAt,
		}
		if _, err := s.publisher.PublishQuoteSubmitted(ctx, message); err != nil {
			s.logger(ctx, "quote.publish_failed", map[string]any{
				"quoteID": quote.ID,
				"error":   err.Error(),
			})
		}
	}

	if err := s.carts.Clear(ctx, uid); err != nil {
		s.logger(ctx, "quote.cart_clear_failed", map[string]any{
			"quoteID": quote.ID,
			"error":   err.Error(),
		})
	}

	return quote, nil
}

// List returns the user's quotes, newest first.
func (s *quoteService) List(ctx context.Context, userID string) ([]Quote, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrQuoteInvalidInput)
	}

	quotes, err := s.quotes.ListByUser(ctx, uid)
	if err != nil {
		return nil, s.translateRepoError(err)
	}
	return quotes, nil
}

// Get fetches one quote owned by the user.
func (s *quoteService) Get(ctx context.Context, userID, quoteID string) (Quote, error) {
	uid := strings.TrimSpace(userID)
	qid := strings.TrimSpace(quoteID)
	if uid == "" || qid == "" {
		return Quote{}, fmt.Errorf("%w: user id and quote id are required", ErrQuoteInvalidInput)
	}

	quote, err := s.quotes.FindByID(ctx, uid, qid)
	if err != nil {
		return Quote{}, s.translateRepoError(err)
	}
	return quote, nil
}

// AttachPurchaseInfo records the contract detail form on a submitted quote.
func (s *quoteService) AttachPurchaseInfo(ctx context.Context, cmd AttachPurchaseInfoCommand) (Quote, error) {
	uid := strings.TrimSpace(cmd.UserID)
	qid := strings.TrimSpace(cmd.QuoteID)
	if uid == "" || qid == "" {
		return Quote{}, fmt.Errorf("%w: user id and quote id are required", ErrQuoteInvalidInput)
	}

	info := cmd.Info
	info.EndUserOrganization = strings.TrimSpace(info.EndUserOrganization)
	info.DeliveryCountry = strings.TrimSpace(info.DeliveryCountry)
	info.IntendedUse = strings.TrimSpace(info.IntendedUse)
	if info.EndUserOrganization == "" {
		return Quote{}, fmt.Errorf("%w: end user organization is required", ErrQuoteInvalidInput)
	}
	if info.DeliveryCountry == "" {
		return Quote{}, fmt.Errorf("%w: delivery country is required", ErrQuoteInvalidInput)
	}
	if !info.ComplianceAck {
		return Quote{}, fmt.Errorf("%w: compliance acknowledgement is required", ErrQuoteInvalidInput)
	}
	info.SubmittedAt = s.now()

	quote, err := s.quotes.AttachPurchaseInfo(ctx, uid, qid, info)
	if err != nil {
		return Quote{}, s.translateRepoError(err)
	}
	return quote, nil
}

func (s *quoteService) translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case isRepoNotFound(err):
		return fmt.Errorf("%w: %v", ErrQuoteNotFound, err)
	case isRepoUnavailable(err):
		return fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
	default:
		return err
	}
}
