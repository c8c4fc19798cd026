package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/martinmiralles/mar-pokemart/internal/auth"
	"github.com/martinmiralles/mar-pokemart/internal/domain"
	"github.com/martinmiralles/mar-pokemart/internal/event"
	"github.com/martinmiralles/mar-pokemart/internal/repository"
	apperrors "github.com/martinmiralles/mar-pokemart/pkg/errors"
	"github.com/martinmiralles/mar-pokemart/pkg/pagination"
)

// OrderService implements order placement and fulfilment.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	checker  *auth.OwnershipChecker
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	checker *auth.OwnershipChecker,
	producer *event.Producer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		checker:  checker,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// OrderItemInput is one requested line.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput holds the parameters for placing an order.
type CreateOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
}

// CreateOrder places an order for caller. Item names, images and prices are
// taken from the current catalog, never from the request.
func (s *OrderService) CreateOrder(ctx context.Context, caller *domain.Principal, input CreateOrderInput) (*domain.Order, error) {
	if caller == nil {
		return nil, apperrors.NotAuthorized("authentication required")
	}
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		return nil, apperrors.InvalidInput("payment method is required")
	}

	now := s.now()
	order := &domain.Order{
		ID:              uuid.New().String(),
		UserID:          caller.ID,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, in := range input.Items {
		if in.Quantity <= 0 {
			return nil, apperrors.InvalidInput("item quantity must be positive")
		}
		product, err := s.products.GetByID(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.ProductNotFound(in.ProductID)
			}
			return nil, fmt.Errorf("get product for order: %w", err)
		}
		if in.Quantity > product.CountInStock {
			return nil, apperrors.InvalidInput(fmt.Sprintf("only %d of %q in stock", product.CountInStock, product.Name))
		}
		order.Items = append(order.Items, domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Quantity:  in.Quantity,
			Price:     product.Price,
		})
	}
	order.CalculatePrices()

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("user_id", caller.ID),
		slog.Int64("total_price", order.TotalPrice),
	)

	return order, nil
}

// GetOrder returns an order the caller placed.
func (s *OrderService) GetOrder(ctx context.Context, caller *domain.Principal, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := s.checker.Check(ctx, order, caller); err != nil {
		return nil, err
	}
	return order, nil
}

// MyOrders lists the caller's orders.
func (s *OrderService) MyOrders(ctx context.Context, caller *domain.Principal) ([]domain.Order, error) {
	if caller == nil {
		return nil, apperrors.NotAuthorized("authentication required")
	}
	orders, err := s.orders.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list orders by user: %w", err)
	}
	return orders, nil
}

// ListOrders returns a page of every order.
func (s *OrderService) ListOrders(ctx context.Context, page pagination.Params) ([]domain.Order, int, error) {
	orders, total, err := s.orders.List(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// PayOrder marks an order the caller placed as paid.
func (s *OrderService) PayOrder(ctx context.Context, caller *domain.Principal, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order for payment: %w", err)
	}
	if err := s.checker.Check(ctx, order, caller); err != nil {
		return nil, err
	}
	if err := order.MarkPaid(s.now()); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, order); err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	if err := s.producer.PublishOrderPaid(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.paid event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order paid",
		slog.String("order_id", order.ID),
	)

	return order, nil
}

// DeliverOrder marks a paid order as delivered.
func (s *OrderService) DeliverOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order for delivery: %w", err)
	}
	if err := order.MarkDelivered(s.now()); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, order); err != nil {
		return nil, fmt.Errorf("mark order delivered: %w", err)
	}

	if err := s.producer.PublishOrderDelivered(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.delivered event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order delivered",
		slog.String("order_id", order.ID),
	)

	return order, nil
}
