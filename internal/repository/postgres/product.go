package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/martinmiralles/mar-pokemart/internal/domain"
	"github.com/martinmiralles/mar-pokemart/internal/repository"
	"github.com/martinmiralles/mar-pokemart/pkg/database"
	apperrors "github.com/martinmiralles/mar-pokemart/pkg/errors"
)

const reviewAuthorConstraint = "product_reviews_product_id_user_id_key"

const productColumns = `id, user_id, name, slug, image, brand, category, description, price,
		count_in_stock, num_reviews, rating, version, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func productDest(p *domain.Product) []any {
	return []any{
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Slug,
		&p.Image,
		&p.Brand,
		&p.Category,
		&p.Description,
		&p.Price,
		&p.CountInStock,
		&p.NumReviews,
		&p.Rating,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.Name,
		p.Slug,
		p.Image,
		p.Brand,
		p.Category,
		p.Description,
		p.Price,
		p.CountInStock,
		p.NumReviews,
		p.Rating,
		p.Version,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("user", p.UserID)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product and its reviews.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p domain.Product
	if err := r.pool.QueryRow(ctx, query, id).Scan(productDest(&p)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ProductNotFound(id)
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	reviews, err := loadReviews(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	p.Reviews = reviews

	return &p, nil
}

// List returns products whose name matches the keyword, newest first.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	query := `
		SELECT ` + productColumns + `,
		       count(*) OVER() AS total_count
		FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, filter.Keyword, filter.PerPage, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		products   []domain.Product
		totalCount int
	)

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(append(productDest(&p), &totalCount)...); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		p.Reviews = []domain.Review{}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}

	return products, totalCount, nil
}

// TopRated returns the highest rated products. Ties go to the product with
// more reviews, then the older one.
func (r *ProductRepository) TopRated(ctx context.Context, limit int) (_ []domain.Product, err error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY rating DESC, num_reviews DESC, created_at ASC
		LIMIT $1`

	ctx, end := database.TraceQuery(ctx, "TopRated", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top rated products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(productDest(&p)...); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		p.Reviews = []domain.Review{}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// Update writes the catalog fields guarded by the product version.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, slug = $2, image = $3, brand = $4, category = $5, description = $6,
		    price = $7, count_in_stock = $8, version = version + 1, updated_at = $9
		WHERE id = $10 AND version = $11`

	ct, err := r.pool.Exec(ctx, query,
		p.Name,
		p.Slug,
		p.Image,
		p.Brand,
		p.Category,
		p.Description,
		p.Price,
		p.CountInStock,
		now,
		p.ID,
		p.Version,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, p.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check product exists: %w", err)
		}
		if !exists {
			return apperrors.ProductNotFound(p.ID)
		}
		return apperrors.Conflict("product was modified concurrently, retry the update")
	}

	p.Version++
	p.UpdatedAt = now
	return nil
}

// Delete removes a product; its reviews go with it.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ProductNotFound(id)
	}

	return nil
}

// AppendReview locks the product row, applies domain.Product.AddReview to the
// stored reviews, and writes the review plus the new aggregates in the same
// transaction. The unique (product_id, user_id) constraint and the version
// guard back up the row lock.
func (r *ProductRepository) AppendReview(ctx context.Context, productID string, review domain.Review) (_ *domain.Product, err error) {
	lockQuery := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	ctx, end := database.TraceQuery(ctx, "AppendReview", lockQuery)
	defer func() { end(err) }()

	var product domain.Product
	err = database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, lockQuery, productID).Scan(productDest(&product)...); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ProductNotFound(productID)
			}
			return fmt.Errorf("lock product: %w", err)
		}

		reviews, err := loadReviews(ctx, tx, productID)
		if err != nil {
			return err
		}
		product.Reviews = reviews

		if err := product.AddReview(review); err != nil {
			return err
		}
		added := product.Reviews[len(product.Reviews)-1]

		_, err = tx.Exec(ctx, `
			INSERT INTO product_reviews (id, product_id, user_id, name, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			added.ID,
			added.ProductID,
			added.UserID,
			added.Name,
			added.Rating,
			added.Comment,
			added.CreatedAt,
		)
		if err != nil {
			if database.IsUniqueViolation(err, reviewAuthorConstraint) {
				return apperrors.AlreadyReviewed(productID)
			}
			return fmt.Errorf("insert review: %w", err)
		}

		now := time.Now().UTC()
		ct, err := tx.Exec(ctx, `
			UPDATE products
			SET num_reviews = $1, rating = $2, version = version + 1, updated_at = $3
			WHERE id = $4 AND version = $5`,
			product.NumReviews,
			product.Rating,
			now,
			product.ID,
			product.Version,
		)
		if err != nil {
			return fmt.Errorf("update product rating: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return apperrors.Conflict("product was modified concurrently, retry the review")
		}

		product.Version++
		product.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &product, nil
}

// loadReviews returns the reviews of a product in insertion order.
func loadReviews(ctx context.Context, q database.DBTX, productID string) ([]domain.Review, error) {
	query := `
		SELECT id, product_id, user_id, name, rating, comment, created_at
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.UserID,
			&rv.Name,
			&rv.Rating,
			&rv.Comment,
			&rv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}
