package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/martinmiralles/mar-pokemart/internal/domain"
	"github.com/martinmiralles/mar-pokemart/pkg/database"
	apperrors "github.com/martinmiralles/mar-pokemart/pkg/errors"
	"github.com/martinmiralles/mar-pokemart/pkg/pagination"
)

const orderColumns = `id, user_id, shipping_address, shipping_city, shipping_postal_code, shipping_country,
		payment_method, items_price, tax_price, shipping_price, total_price,
		is_paid, paid_at, is_delivered, delivered_at, created_at, updated_at`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func orderDest(o *domain.Order) []any {
	return []any{
		&o.ID,
		&o.UserID,
		&o.ShippingAddress.Address,
		&o.ShippingAddress.City,
		&o.ShippingAddress.PostalCode,
		&o.ShippingAddress.Country,
		&o.PaymentMethod,
		&o.ItemsPrice,
		&o.TaxPrice,
		&o.ShippingPrice,
		&o.TotalPrice,
		&o.IsPaid,
		&o.PaidAt,
		&o.IsDelivered,
		&o.DeliveredAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}

// Create inserts the order and its items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (err error) {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	ctx, end := database.TraceQuery(ctx, "CreateOrder", query)
	defer func() { end(err) }()

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			o.ID,
			o.UserID,
			o.ShippingAddress.Address,
			o.ShippingAddress.City,
			o.ShippingAddress.PostalCode,
			o.ShippingAddress.Country,
			o.PaymentMethod,
			o.ItemsPrice,
			o.TaxPrice,
			o.ShippingPrice,
			o.TotalPrice,
			o.IsPaid,
			o.PaidAt,
			o.IsDelivered,
			o.DeliveredAt,
			o.CreatedAt,
			o.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, it := range o.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (id, order_id, product_id, name, image, quantity, price)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				it.ID,
				o.ID,
				it.ProductID,
				it.Name,
				it.Image,
				it.Quantity,
				it.Price,
			)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		return nil
	})
}

// GetByID retrieves an order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o domain.Order
	if err := r.pool.QueryRow(ctx, query, id).Scan(orderDest(&o)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	orders := []domain.Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

// ListByUser returns every order placed by userID, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(orderDest(&o)...); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// List returns a page of all orders, newest first.
func (r *OrderRepository) List(ctx context.Context, page pagination.Params) ([]domain.Order, int, error) {
	query := `
		SELECT ` + orderColumns + `,
		       count(*) OVER() AS total_count
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, page.PerPage, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var (
		orders     = []domain.Order{}
		totalCount int
	)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(append(orderDest(&o), &totalCount)...); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, totalCount, nil
}

// UpdateStatus persists the payment and delivery fields of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, o *domain.Order) error {
	query := `
		UPDATE orders
		SET is_paid = $1, paid_at = $2, is_delivered = $3, delivered_at = $4, updated_at = $5
		WHERE id = $6`

	ct, err := r.pool.Exec(ctx, query,
		o.IsPaid,
		o.PaidAt,
		o.IsDelivered,
		o.DeliveredAt,
		o.UpdatedAt,
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", o.ID)
	}

	return nil
}

// attachItems loads the items of every order in one query.
func (r *OrderRepository) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []domain.OrderItem{}
	}

	query := `
		SELECT id, order_id, product_id, name, image, quantity, price
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, id`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(
			&it.ID,
			&it.OrderID,
			&it.ProductID,
			&it.Name,
			&it.Image,
			&it.Quantity,
			&it.Price,
		); err != nil {
			return fmt.Errorf("scan order item row: %w", err)
		}
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate order item rows: %w", err)
	}
	return nil
}
