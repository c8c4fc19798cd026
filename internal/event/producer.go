package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/martinmiralles/mar-pokemart/internal/domain"
	pkgkafka "github.com/martinmiralles/mar-pokemart/pkg/kafka"
	"github.com/martinmiralles/mar-pokemart/pkg/logger"
)

// Aggregate types.
const (
	AggregateProduct = "product"
	AggregateUser    = "user"
	AggregateOrder   = "order"
)

// Actions, combined with the aggregate into the event type and topic.
const (
	ActionCreated    = "created"
	ActionUpdated    = "updated"
	ActionDeleted    = "deleted"
	ActionReviewed   = "reviewed"
	ActionRegistered = "registered"
	ActionPaid       = "paid"
	ActionDelivered  = "delivered"
)

// Source identifies events written by this server.
const Source = "pokemart-api"

// Publisher is the transport the producer writes through.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// ProductData is the payload for product.created, product.updated and product.deleted.
type ProductData struct {
	ID       string  `json:"id"`
	UserID   string  `json:"user_id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Category string  `json:"category"`
	Price    int64   `json:"price"`
	Rating   float64 `json:"rating"`
}

// ProductReviewedData is the payload for product.reviewed.
type ProductReviewedData struct {
	ProductID  string  `json:"product_id"`
	ReviewID   string  `json:"review_id"`
	UserID     string  `json:"user_id"`
	Rating     int     `json:"rating"`
	NumReviews int     `json:"num_reviews"`
	NewRating  float64 `json:"new_rating"`
}

// UserRegisteredData is the payload for user.registered.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderData is the payload for the order events.
type OrderData struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	ItemCount   int    `json:"item_count"`
	TotalPrice  int64  `json:"total_price"`
	IsPaid      bool   `json:"is_paid"`
	IsDelivered bool   `json:"is_delivered"`
}

// Producer publishes pokemart domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *Producer) publish(ctx context.Context, aggregate, action, aggregateID string, data any) error {
	eventType := aggregate + "." + action
	ev, err := pkgkafka.NewEvent(eventType, aggregate, aggregateID, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	ev.CorrelationID = logger.CorrelationIDFromContext(ctx)

	if err := p.publisher.Publish(ctx, pkgkafka.Topic(aggregate, action), ev); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "domain event published",
		slog.String("event_type", eventType),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

func productData(product *domain.Product) ProductData {
	return ProductData{
		ID:       product.ID,
		UserID:   product.UserID,
		Name:     product.Name,
		Slug:     product.Slug,
		Category: product.Category,
		Price:    product.Price,
		Rating:   product.Rating,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, AggregateProduct, ActionCreated, product.ID, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, AggregateProduct, ActionUpdated, product.ID, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, AggregateProduct, ActionDeleted, product.ID, productData(product))
}

// PublishProductReviewed publishes a product.reviewed event carrying the new aggregates.
func (p *Producer) PublishProductReviewed(ctx context.Context, product *domain.Product, review domain.Review) error {
	return p.publish(ctx, AggregateProduct, ActionReviewed, product.ID, ProductReviewedData{
		ProductID:  product.ID,
		ReviewID:   review.ID,
		UserID:     review.UserID,
		Rating:     review.Rating,
		NumReviews: product.NumReviews,
		NewRating:  product.Rating,
	})
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, AggregateUser, ActionRegistered, user.ID, UserRegisteredData{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})
}

func orderData(order *domain.Order) OrderData {
	return OrderData{
		ID:          order.ID,
		UserID:      order.UserID,
		ItemCount:   len(order.Items),
		TotalPrice:  order.TotalPrice,
		IsPaid:      order.IsPaid,
		IsDelivered: order.IsDelivered,
	}
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, AggregateOrder, ActionCreated, order.ID, orderData(order))
}

// PublishOrderPaid publishes an order.paid event.
func (p *Producer) PublishOrderPaid(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, AggregateOrder, ActionPaid, order.ID, orderData(order))
}

// PublishOrderDelivered publishes an order.delivered event.
func (p *Producer) PublishOrderDelivered(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, AggregateOrder, ActionDelivered, order.ID, orderData(order))
}
