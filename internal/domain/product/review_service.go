// internal/domain/product/review_service.go
package product

import (
	"errors"
	"fmt"

	"github.com/sweetcrumbs/bakery-backend/internal/config"
	"gorm.io/gorm"
)

// ReviewService handles product reviews
type ReviewService struct {
	db     *gorm.DB
	config *config.Config
}

// NewReviewService creates a new review service
func NewReviewService(db *gorm.DB, cfg *config.Config) *ReviewService {
	return &ReviewService{
		db:     db,
		config: cfg,
	}
}

// CreateReviewRequest represents review submission data
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// ReviewSummary carries a product's reviews and its average rating
type ReviewSummary struct {
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
}

// Create adds a review to a product
func (s *ReviewService) Create(userID, productID uint, req *CreateReviewRequest) (*Review, error) {
	var prod Product
	if err := s.db.First(&prod, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	review := Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := s.db.Create(&review).Error; err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return &review, nil
}

// GetForProduct retrieves all reviews for a product with the average rating
func (s *ReviewService) GetForProduct(productID uint) (*ReviewSummary, error) {
	var reviews []Review
	if err := s.db.Where("product_id = ?", productID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}

	summary := &ReviewSummary{
		Reviews:     reviews,
		ReviewCount: len(reviews),
	}
	if len(reviews) > 0 {
		var sum int
		for _, r := range reviews {
			sum += r.Rating
		}
		summary.AverageRating = float64(sum) / float64(len(reviews))
	}
	return summary, nil
}
