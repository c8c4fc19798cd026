package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/martinmiralles/mar-pokemart/internal/domain"
	"github.com/martinmiralles/mar-pokemart/internal/event"
	"github.com/martinmiralles/mar-pokemart/internal/repository"
	apperrors "github.com/martinmiralles/mar-pokemart/pkg/errors"
)

const (
	minRating = 1
	maxRating = 5
)

// ReviewService appends reviews to products and keeps the rating aggregates
// consistent.
type ReviewService struct {
	repo     repository.ProductRepository
	cache    TopCache
	producer *event.Producer
	logger   *slog.Logger
	outcomes *prometheus.CounterVec
}

// NewReviewService creates a review service. A nil registerer skips metric
// registration.
func NewReviewService(
	repo repository.ProductRepository,
	cache TopCache,
	producer *event.Producer,
	reg prometheus.Registerer,
	logger *slog.Logger,
) *ReviewService {
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pokemart_reviews_total",
		Help: "Review submissions by outcome.",
	}, []string{"outcome"})
	if reg != nil {
		reg.MustRegister(outcomes)
	}
	return &ReviewService{
		repo:     repo,
		cache:    cache,
		producer: producer,
		logger:   logger,
		outcomes: outcomes,
	}
}

// AddReview records caller's review of productID and returns the stored
// review together with the product carrying the recomputed aggregates.
func (s *ReviewService) AddReview(ctx context.Context, productID string, caller *domain.Principal, rating int, comment string) (*domain.Review, *domain.Product, error) {
	if caller == nil {
		return nil, nil, apperrors.NotAuthorized("authentication required")
	}
	if rating < minRating || rating > maxRating {
		s.outcomes.WithLabelValues("invalid").Inc()
		return nil, nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", minRating, maxRating))
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		s.outcomes.WithLabelValues("invalid").Inc()
		return nil, nil, apperrors.InvalidInput("comment is required")
	}

	review := domain.Review{
		ID:        uuid.New().String(),
		ProductID: productID,
		UserID:    caller.ID,
		Name:      caller.Name,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}

	product, err := s.repo.AppendReview(ctx, productID, review)
	if err != nil {
		s.outcomes.WithLabelValues(reviewOutcome(err)).Inc()
		return nil, nil, fmt.Errorf("append review: %w", err)
	}
	s.outcomes.WithLabelValues("created").Inc()

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.WarnContext(ctx, "top products cache invalidation failed",
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.producer.PublishProductReviewed(ctx, product, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.reviewed event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review added",
		slog.String("product_id", product.ID),
		slog.String("user_id", caller.ID),
		slog.Int("num_reviews", product.NumReviews),
		slog.Float64("rating", product.Rating),
	)

	return &review, product, nil
}

func reviewOutcome(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrAlreadyReviewed):
		return "duplicate"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
