// internal/services/bookmark_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackpick/stackpick-backend/internal/models"
	"github.com/stackpick/stackpick-backend/internal/utils"
)

type BookmarkService struct {
	db *gorm.DB
}

func NewBookmarkService(db *gorm.DB) *BookmarkService {
	return &BookmarkService{db: db}
}

func (s *BookmarkService) AddBookmark(buyerID, productID uuid.UUID) (*models.Bookmark, error) {
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

	var existing models.Bookmark
	if err := s.db.Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		First(&existing).Error; err == nil {
		return &existing, nil
	}

	bookmark := &models.Bookmark{
		BuyerID:   buyerID,
		ProductID: productID,
	}
	if err := s.db.Create(bookmark).Error; err != nil {
		return nil, fmt.Errorf("failed to create bookmark: %w", err)
	}
	return bookmark, nil
}

func (s *BookmarkService) RemoveBookmark(buyerID, productID uuid.UUID) error {
	result := s.db.Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		Delete(&models.Bookmark{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove bookmark: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("bookmark not found")
	}
	return nil
}

func (s *BookmarkService) ListBookmarks(buyerID uuid.UUID, params utils.PaginationParams) ([]models.Bookmark, int64, error) {
	query := s.db.Model(&models.Bookmark{}).
		Where("buyer_id = ?", buyerID).
		Preload("Product")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at"})
	query = utils.ApplyPagination(query, params)

	var bookmarks []models.Bookmark
	if err := query.Find(&bookmarks).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bookmarks: %w", err)
	}

	return bookmarks, total, nil
}
