package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/stratlink-defense/api/internal/domain"
	pfirestore "github.com/stratlink-defense/api/internal/platform/firestore"
)

const quoteCollection = "quotes"

// QuoteRepository persists submitted quote requests in Firestore. Quotes live
// in a single collection keyed by quote id with a userId field for ownership.
type QuoteRepository struct {
	base     *pfirestore.BaseRepository[quoteDocument]
	provider *pfirestore.Provider
}

// NewQuoteRepository constructs a Firestore-backed quote repository.
func NewQuoteRepository(provider *pfirestore.Provider) (*QuoteRepository, error) {
	if provider == nil {
		return nil, errors.New("quote repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[quoteDocument](provider, quoteCollection, nil, nil)
	return &QuoteRepository{base: base, provider: provider}, nil
}

// Insert stores a newly submitted quote. The document id is the quote id.
func (r *QuoteRepository) Insert(ctx context.Context, quote domain.Quote) error {
	if r == nil || r.base == nil {
		return errors.New("quote repository not initialised")
	}
	if strings.TrimSpace(quote.ID) == "" {
		return errors.New("quote id is required")
	}
	if strings.TrimSpace(quote.UserID) == "" {
		return errors.New("quote user id is required")
	}

	_, err := r.base.Set(ctx, quote.ID, fromDomainQuote(quote))
	return err
}

// FindByID fetches a quote and enforces that it belongs to the user. A quote
// owned by someone else is indistinguishable from a missing one.
func (r *QuoteRepository) FindByID(ctx context.Context, userID, quoteID string) (domain.Quote, error) {
	if r == nil || r.base == nil {
		return domain.Quote{}, errors.New("quote repository not initialised")
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(quoteID) == "" {
		return domain.Quote{}, errors.New("quote lookup requires user id and quote id")
	}

	doc, err := r.base.Get(ctx, strings.TrimSpace(quoteID))
	if err != nil {
		return domain.Quote{}, err
	}
	if doc.Data.UserID != strings.TrimSpace(userID) {
		return domain.Quote{}, pfirestore.WrapError("quotes.get", status.Error(codes.NotFound, "quote not found"))
	}

	return toDomainQuote(doc.ID, doc.Data), nil
}

// ListByUser returns the user's quotes, newest first.
func (r *QuoteRepository) ListByUser(ctx context.Context, userID string) ([]domain.Quote, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("quote repository not initialised")
	}
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return nil, errors.New("quote user id is required")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("userId", "==", trimmed).OrderBy("submittedAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}

	quotes := make([]domain.Quote, 0, len(docs))
	for _, doc := range docs {
		quotes = append(quotes, toDomainQuote(doc.ID, doc.Data))
	}
	return quotes, nil
}

// AttachPurchaseInfo records the contract detail form on a quote the user owns
// and returns the updated quote. The write runs in a transaction so the
// ownership check and the mutation see the same document.
func (r *QuoteRepository) AttachPurchaseInfo(ctx context.Context, userID, quoteID string, info domain.PurchaseInfo) (domain.Quote, error) {
	if r == nil || r.base == nil || r.provider == nil {
		return domain.Quote{}, errors.New("quote repository not initialised")
	}
	trimmedUser := strings.TrimSpace(userID)
	trimmedQuote := strings.TrimSpace(quoteID)
	if trimmedUser == "" || trimmedQuote == "" {
		return domain.Quote{}, errors.New("quote lookup requires user id and quote id")
	}

	ref, err := r.base.DocumentRef(ctx, trimmedQuote)
	if err != nil {
		return domain.Quote{}, err
	}

	var updated quoteDocument
	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}

		var doc quoteDocument
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		if doc.UserID != trimmedUser {
			return status.Error(codes.NotFound, "quote not found")
		}

		submitted := info.SubmittedAt
		if submitted.IsZero() {
			submitted = time.Now().UTC()
		}
		doc.PurchaseInfo = &purchaseInfoDocument{
			EndUserOrganization: strings.TrimSpace(info.EndUserOrganization),
			DeliveryCountry:     strings.TrimSpace(info.DeliveryCountry),
			IntendedUse:         strings.TrimSpace(info.IntendedUse),
			ComplianceAck:       info.ComplianceAck,
			SubmittedAt:         submitted,
		}
		doc.UpdatedAt = submitted
		updated = doc

		return tx.Set(ref, doc)
	})
	if err != nil {
		return domain.Quote{}, pfirestore.WrapError("quotes.attach_purchase_info", err)
	}

	return toDomainQuote(trimmedQuote, updated), nil
}

type quoteDocument struct {
	UserID         string                `firestore:"userId"`
	Status         string                `firestore:"status"`
	Items          []quoteItemDocument   `firestore:"items"`
	TotalItems     int                   `firestore:"totalItems"`
	TotalUSD       int64                 `firestore:"totalUsd"`
	Language       string                `firestore:"language"`
	Currency       string                `firestore:"currency"`
	FormattedTotal string                `firestore:"formattedTotal"`
	Contact        string                `firestore:"contact"`
	PurchaseInfo   *purchaseInfoDocument `firestore:"purchaseInfo"`
	SubmittedAt    time.Time             `firestore:"submittedAt"`
	UpdatedAt      time.Time             `firestore:"updatedAt"`
}

type quoteItemDocument struct {
	ProductID       string   `firestore:"productId"`
	ProductCode     string   `firestore:"productCode"`
	ProductName     string   `firestore:"productName"`
	Quantity        int      `firestore:"quantity"`
	SelectedOptions []string `firestore:"selectedOptions"`
	Configuration   string   `firestore:"configuration"`
	Notes           string   `firestore:"notes"`
	UnitUSD         int64    `firestore:"unitUsd"`
	LineUSD         int64    `firestore:"lineUsd"`
}

type purchaseInfoDocument struct {
	EndUserOrganization string    `firestore:"endUserOrganization"`
	DeliveryCountry     string    `firestore:"deliveryCountry"`
	IntendedUse         string    `firestore:"intendedUse"`
	ComplianceAck       bool      `firestore:"complianceAck"`
	SubmittedAt         time.Time `firestore:"submittedAt"`
}

func fromDomainQuote(quote domain.Quote) quoteDocument {
	doc := quoteDocument{
		UserID:         strings.TrimSpace(quote.UserID),
		Status:         string(quote.Status),
		Items:          make([]quoteItemDocument, 0, len(quote.Items)),
		TotalItems:     quote.TotalItems,
		TotalUSD:       quote.TotalUSD,
		Language:       string(quote.Language),
		Currency:       quote.Currency,
		FormattedTotal: quote.FormattedTotal,
		Contact:        strings.TrimSpace(quote.Contact),
		SubmittedAt:    quote.SubmittedAt,
		UpdatedAt:      quote.UpdatedAt,
	}
	for _, item := range quote.Items {
		doc.Items = append(doc.Items, quoteItemDocument{
			ProductID:       item.ProductID,
			ProductCode:     item.ProductCode,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			SelectedOptions: append([]string(nil), item.Options.SelectedOptions...),
			Configuration:   item.Options.Configuration,
			Notes:           item.Options.Notes,
			UnitUSD:         item.UnitUSD,
			LineUSD:         item.LineUSD,
		})
	}
	if quote.PurchaseInfo != nil {
		doc.PurchaseInfo = &purchaseInfoDocument{
			EndUserOrganization: quote.PurchaseInfo.EndUserOrganization,
			DeliveryCountry:     quote.PurchaseInfo.DeliveryCountry,
			IntendedUse:         quote.PurchaseInfo.IntendedUse,
			ComplianceAck:       quote.PurchaseInfo.ComplianceAck,
			SubmittedAt:         quote.PurchaseInfo.SubmittedAt,
		}
	}
	return doc
}

func toDomainQuote(id string, doc quoteDocument) domain.Quote {
	quote := domain.Quote{
		ID:             id,
		UserID:         doc.UserID,
		Status:         domain.QuoteStatus(doc.Status),
		Items:          make([]domain.QuoteItem, 0, len(doc.Items)),
		TotalItems:     doc.TotalItems,
		TotalUSD:       doc.TotalUSD,
		Language:       domain.Language(doc.Language),
		Currency:       doc.Currency,
		FormattedTotal: doc.FormattedTotal,
		Contact:        doc.Contact,
		SubmittedAt:    doc.SubmittedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
	for _, item := range doc.Items {
		quote.Items = append(quote.Items, domain.QuoteItem{
			ProductID:   item.ProductID,
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Options: domain.ItemOptions{
				SelectedOptions: append([]string(nil), item.SelectedOptions...),
				Configuration:   item.Configuration,
				Notes:           item.Notes,
			},
			UnitUSD: item.UnitUSD,
			LineUSD: item.LineUSD,
		})
	}
	if doc.PurchaseInfo != nil {
		quote.PurchaseInfo = &domain.PurchaseInfo{
			EndUserOrganization: doc.PurchaseInfo.EndUserOrganization,
			DeliveryCountry:     doc.PurchaseInfo.DeliveryCountry,
			IntendedUse:         doc.PurchaseInfo.IntendedUse,
			ComplianceAck:       doc.PurchaseInfo.ComplianceAck,
			SubmittedAt:         doc.PurchaseInfo.SubmittedAt,
		}
	}
	return quote
}
