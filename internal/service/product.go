package service

import (
	"context"
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
	"github.com/martinmiralles/mar-pokemart/pkg/slug"
)

// TopCache stores the top-rated product listing.
type TopCache interface {
	Get(ctx context.Context) ([]domain.Product, bool, error)
	Set(ctx context.Context, products []domain.Product) error
	Invalidate(ctx context.Context) error
}

// ProductService implements the catalog operations.
type ProductService struct {
	repo     repository.ProductRepository
	cache    TopCache
	checker  *auth.OwnershipChecker
	producer *event.Producer
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	repo repository.ProductRepository,
	cache TopCache,
	checker *auth.OwnershipChecker,
	producer *event.Producer,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		repo:     repo,
		cache:    cache,
		checker:  checker,
		producer: producer,
		logger:   logger,
	}
}

// ProductInput holds the catalog fields of a product.
type ProductInput struct {
	Name         string
	Image        string
	Brand        string
	Category     string
	Description  string
	Price        int64
	CountInStock int
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperrors.InvalidInput("name is required")
	}
	if in.Price < 0 {
		return apperrors.InvalidInput("price must not be negative")
	}
	if in.CountInStock < 0 {
		return apperrors.InvalidInput("count in stock must not be negative")
	}
	return nil
}

// ListProducts returns a filtered page of products.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// GetProduct retrieves a product with its reviews.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// TopProducts returns the highest-rated products, served from the cache when
// it holds a listing.
func (s *ProductService) TopProducts(ctx context.Context) ([]domain.Product, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "top products cache read failed",
				slog.String("error", err.Error()),
			)
		} else if ok {
			return cached, nil
		}
	}

	products, err := s.repo.TopRated(ctx, domain.TopProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("top rated products: %w", err)
	}
	products = domain.RankTopRated(products, domain.TopProductsLimit)

	if s.cache != nil {
		if err := s.cache.Set(ctx, products); err != nil {
			s.logger.WarnContext(ctx, "top products cache write failed",
				slog.String("error", err.Error()),
			)
		}
	}

	return products, nil
}

// CreateProduct adds a product owned by caller.
func (s *ProductService) CreateProduct(ctx context.Context, caller *domain.Principal, input ProductInput) (*domain.Product, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:        uuid.New().String(),
		UserID:    caller.ID,
		CreatedAt: now,
		UpdatedAt: now,
		Reviews:   []domain.Review{},
	}
	applyProductInput(product, input)

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.invalidateTop(ctx)

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("user_id", caller.ID),
	)

	return product, nil
}

// UpdateProduct replaces the catalog fields of a product the caller owns.
func (s *ProductService) UpdateProduct(ctx context.Context, caller *domain.Principal, id string, input ProductInput) (*domain.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	if err := s.checker.Check(ctx, product, caller); err != nil {
		return nil, err
	}

	applyProductInput(product, input)
	product.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidateTop(ctx)

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes a product the caller owns.
func (s *ProductService) DeleteProduct(ctx context.Context, caller *domain.Principal, id string) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get product for delete: %w", err)
	}
	if err := s.checker.Check(ctx, product, caller); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.invalidateTop(ctx)

	if err := s.producer.PublishProductDeleted(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}

func (s *ProductService) invalidateTop(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "top products cache invalidation failed",
			slog.String("error", err.Error()),
		)
	}
}

func applyProductInput(p *domain.Product, in ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Slug = slug.Generate(p.Name)
	p.Image = in.Image
	p.Brand = in.Brand
	p.Category = in.Category
	p.Description = in.Description
	p.Price = in.Price
	p.CountInStock = in.CountInStock
}
