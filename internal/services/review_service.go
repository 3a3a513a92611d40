// internal/services/review_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/stackpick/stackpick-backend/internal/models"
	"github.com/stackpick/stackpick-backend/internal/utils"
)

type ReviewService struct {
	db      *gorm.DB
	scoring *ScoringService
	log     *logrus.Entry
}

type CreateReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Title  string `json:"title,omitempty" validate:"omitempty,max=255"`
	Body   string `json:"body,omitempty"`
}

func NewReviewService(db *gorm.DB, scoringService *ScoringService, log *logrus.Entry) *ReviewService {
	return &ReviewService{
		db:      db,
		scoring: scoringService,
		log:     log,
	}
}

func (s *ReviewService) CreateReview(productID, buyerID uuid.UUID, req *CreateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if product.Status != models.ProductStatusPublished {
		return nil, errors.New("product is not published")
	}
	if product.SellerID == buyerID {
		return nil, errors.New("sellers cannot review their own products")
	}

	var existing models.Review
	if err := s.db.Where("product_id = ? AND buyer_id = ?", productID, buyerID).
		First(&existing).Error; err == nil {
		return nil, errors.New("you have already reviewed this product")
	}

	review := &models.Review{
		ProductID: productID,
		BuyerID:   buyerID,
		Rating:    req.Rating,
		Title:     req.Title,
		Body:      req.Body,
	}
	if err := s.db.Create(review).Error; err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.refreshAggregates(productID); err != nil {
		return nil, err
	}
	s.scoring.RecalculateAsync(productID)

	return review, nil
}

func (s *ReviewService) ListReviews(productID uuid.UUID, params utils.PaginationParams) ([]models.Review, int64, error) {
	query := s.db.Model(&models.Review{}).Where("product_id = ?", productID).Preload("Buyer")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	allowedSortFields := []string{"created_at", "rating"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	return reviews, total, nil
}

func (s *ReviewService) DeleteReview(reviewID, buyerID uuid.UUID) error {
	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("review not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if review.BuyerID != buyerID {
		return errors.New("unauthorized to delete this review")
	}

	if err := s.db.Delete(&review).Error; err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if err := s.refreshAggregates(review.ProductID); err != nil {
		return err
	}
	s.scoring.RecalculateAsync(review.ProductID)

	return nil
}

// refreshAggregates recomputes a product's cached rating columns from the
// review rows. The columns are a cache over the rows, never edited directly.
func (s *ReviewService) refreshAggregates(productID uuid.UUID) error {
	var stats struct {
		Average float64
		Count   int64
	}
	err := s.db.Model(&models.Review{}).
		Where("product_id = ?", productID).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Scan(&stats).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	err = s.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"average_rating": stats.Average,
			"review_count":   stats.Count,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update rating aggregates: %w", err)
	}
	return nil
}
