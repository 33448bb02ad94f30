package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/stratlink-defense/api/internal/services"
)

// PubSubQuotePublisher announces submitted quote requests on a Pub/Sub topic
// consumed by the procurement back office.
type PubSubQuotePublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

var _ services.QuoteEventPublisher = (*PubSubQuotePublisher)(nil)

// NewPubSubQuotePublisher constructs a Pub/Sub backed quote event publisher.
func NewPubSubQuotePublisher(topic *pubsub.Topic) (*PubSubQuotePublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub quote publisher: topic is required")
	}
	return &PubSubQuotePublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishQuoteSubmitted enqueues a quote-submitted message on the configured topic.
func (p *PubSubQuotePublisher) PublishQuoteSubmitted(ctx context.Context, message services.QuoteSubmittedMessage) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub quote publisher: not initialised")
	}

	data, err := p.marshal(message)
	if err != nil {
		return "", fmt.Errorf("marshal quote event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "quoteId", message.QuoteID)
	setAttr(attrs, "userId", message.UserID)
	setAttr(attrs, "currency", message.Currency)
	if message.TotalItems > 0 {
		attrs["totalItems"] = strconv.Itoa(message.TotalItems)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish quote event: %w", err)
	}
	return id, nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
