package domain

import (
	"cmp"
	"slices"
	"time"

	apperrors "github.com/martinmiralles/mar-pokemart/pkg/errors"
)

// TopProductsLimit is the number of products returned by the top-rated listing.
const TopProductsLimit = 3

// RankTopRated orders products by rating descending, then by review count
// descending, then oldest first, and keeps at most limit of them. The input
// slice is not modified.
func RankTopRated(products []Product, limit int) []Product {
	ranked := slices.Clone(products)
	slices.SortStableFunc(ranked, func(a, b Product) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		if c := cmp.Compare(b.NumReviews, a.NumReviews); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Product represents an item in the catalog. UserID is the creating principal
// and never changes after creation.
type Product struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Image        string    `json:"image"`
	Brand        string    `json:"brand"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Price        int64     `json:"price"`
	CountInStock int       `json:"count_in_stock"`
	Reviews      []Review  `json:"reviews"`
	NumReviews   int       `json:"num_reviews"`
	Rating       float64   `json:"rating"`
	Version      int       `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Review is a rating left on a product. Name is a snapshot of the author's
// display name at the time of writing.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// OwnerID returns the id of the principal that created the product.
func (p *Product) OwnerID() string {
	return p.UserID
}

// HasReviewFrom reports whether userID has already reviewed the product.
func (p *Product) HasReviewFrom(userID string) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// AddReview appends r and recomputes NumReviews and Rating over the full
// review set. A second review by the same author is rejected and leaves the
// product untouched.
func (p *Product) AddReview(r Review) error {
	if p.HasReviewFrom(r.UserID) {
		return apperrors.AlreadyReviewed(p.ID)
	}
	r.ProductID = p.ID
	p.Reviews = append(p.Reviews, r)
	p.recomputeRating()
	return nil
}

func (p *Product) recomputeRating() {
	p.NumReviews = len(p.Reviews)
	if p.NumReviews == 0 {
		p.Rating = 0
		return
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.Rating = float64(sum) / float64(p.NumReviews)
}
