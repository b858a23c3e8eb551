package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	pkgkafka "github.com/DonatHalimi/OmniShop/pkg/kafka"
	"github.com/DonatHalimi/OmniShop/pkg/logger"

	"github.com/DonatHalimi/OmniShop/internal/store"
)

// Kafka topics for storefront change events.
const (
	TopicCartUpdated     = "omnishop.cart.updated"
	TopicWishlistUpdated = "omnishop.wishlist.updated"
)

// Event subjects.
const (
	SubjectCart     = "cart"
	SubjectWishlist = "wishlist"
)

// SourceStorefront identifies events published by this service.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload of a cart.updated event.
type CartUpdatedData struct {
	SessionID string          `json:"session_id"`
	Op        string          `json:"op"`
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

// WishlistUpdatedData is the payload of a wishlist.updated event.
type WishlistUpdatedData struct {
	SessionID  string `json:"session_id"`
	Op         string `json:"op"`
	ProductID  int    `json:"product_id"`
	Saved      bool   `json:"saved"`
	EntryCount int    `json:"entry_count"`
}

// Publisher sends an event envelope to a topic. *pkgkafka.Producer
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront change events. A Producer without a
// Publisher drops every event.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a producer. publisher may be nil when events are
// disabled.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// Enabled reports whether events are actually sent.
func (p *Producer) Enabled() bool {
	return p != nil && p.publisher != nil
}

// PublishCartUpdated publishes one cart change together with the cart's
// resulting item count and total.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, change store.Change, itemCount int, total decimal.Decimal) error {
	if !p.Enabled() {
		return nil
	}
	data := CartUpdatedData{
		SessionID: sessionID,
		Op:        string(change.Op),
		ProductID: change.ProductID,
		Quantity:  change.Quantity,
		ItemCount: itemCount,
		Total:     total,
	}
	if err := p.publish(ctx, TopicCartUpdated, sessionID, SubjectCart, data.Op, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", sessionID),
		slog.String("op", data.Op),
		slog.Int("item_count", itemCount),
	)
	return nil
}

// PublishWishlistUpdated publishes one wishlist change.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, sessionID string, change store.Change, entryCount int) error {
	if !p.Enabled() {
		return nil
	}
	data := WishlistUpdatedData{
		SessionID:  sessionID,
		Op:         string(change.Op),
		ProductID:  change.ProductID,
		Saved:      change.Op != store.OpRemoved,
		EntryCount: entryCount,
	}
	if err := p.publish(ctx, TopicWishlistUpdated, sessionID, SubjectWishlist, data.Op, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published wishlist.updated event",
		slog.String("session_id", sessionID),
		slog.String("op", data.Op),
	)
	return nil
}

func (p *Producer) publish(ctx context.Context, topic, sessionID, subject, op string, data any) error {
	event, err := pkgkafka.NewEvent(topic, sessionID, subject, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	event.WithOp(op)

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}
