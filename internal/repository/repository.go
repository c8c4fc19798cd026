package repository

import (
	"context"

	"github.com/martinmiralles/mar-pokemart/internal/domain"
	"github.com/martinmiralles/mar-pokemart/pkg/pagination"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	Keyword string
	pagination.Params
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user. A duplicate email yields AlreadyExists.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves the full user record, credential hash included.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves the full user record for login.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetPrincipal retrieves the user projection without the credential hash.
	GetPrincipal(ctx context.Context, id string) (*domain.Principal, error)

	// List returns a page of users along with the total count.
	List(ctx context.Context, page pagination.Params) ([]domain.User, int, error)

	// Update modifies an existing user.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user by id.
	Delete(ctx context.Context, id string) error
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product with its reviews in insertion order.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products matching the filter along with the total count.
	// Reviews are not loaded.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// TopRated returns up to limit products ordered by rating descending.
	TopRated(ctx context.Context, limit int) ([]domain.Product, error)

	// Update writes the mutable catalog fields of a product. The write only
	// applies if the stored version matches product.Version; on success the
	// version is advanced.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product and its reviews.
	Delete(ctx context.Context, id string) error

	// AppendReview adds review to the product and persists the recomputed
	// aggregates in a single transaction, returning the updated product.
	AppendReview(ctx context.Context, productID string, review domain.Review) (*domain.Product, error)
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts an order and its items.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// ListByUser returns every order placed by userID, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)

	// List returns a page of all orders along with the total count.
	List(ctx context.Context, page pagination.Params) ([]domain.Order, int, error)

	// UpdateStatus persists the paid and delivered fields.
	UpdateStatus(ctx context.Context, order *domain.Order) error
}
