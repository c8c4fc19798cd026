package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/martinmiralles/mar-pokemart/internal/auth"
	"github.com/martinmiralles/mar-pokemart/internal/domain"
	"github.com/martinmiralles/mar-pokemart/internal/service"
	"github.com/martinmiralles/mar-pokemart/pkg/httputil"
	"github.com/martinmiralles/mar-pokemart/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateReviewRequest is the JSON request body for creating a review.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

// CreateReviewResponse is returned once a review is stored.
type CreateReviewResponse struct {
	Message    string         `json:"message"`
	Review     *domain.Review `json:"review"`
	NumReviews int            `json:"num_reviews"`
	Rating     float64        `json:"rating"`
}

// CreateReview handles POST /api/products/{id}/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	caller := auth.PrincipalFromContext(r.Context())
	review, product, err := h.service.AddReview(r.Context(), productID.String(), caller, req.Rating, req.Comment)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, CreateReviewResponse{
		Message:    "review added",
		Review:     review,
		NumReviews: product.NumReviews,
		Rating:     product.Rating,
	})
}
