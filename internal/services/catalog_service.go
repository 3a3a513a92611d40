// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/stackpick/stackpick-backend/internal/models"
	"github.com/stackpick/stackpick-backend/internal/scoring"
	"github.com/stackpick/stackpick-backend/internal/utils"
)

type CatalogService struct {
	db      *gorm.DB
	metrics *MetricService
	scoring *ScoringService
	log     *logrus.Entry
}

type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,min=3,max=255"`
	Tagline     string   `json:"tagline,omitempty" validate:"omitempty,max=255"`
	Description string   `json:"description" validate:"required,min=10"`
	Category    string   `json:"category" validate:"required,category"`
	PriceCents  int64    `json:"price_cents" validate:"min=0"`
	WebsiteURL  string   `json:"website_url,omitempty" validate:"omitempty,url"`
	Tags        []string `json:"tags,omitempty"`
}

type UpdateProductRequest struct {
	Name        string               `json:"name,omitempty" validate:"omitempty,min=3,max=255"`
	Tagline     string               `json:"tagline,omitempty" validate:"omitempty,max=255"`
	Description string               `json:"description,omitempty" validate:"omitempty,min=10"`
	PriceCents  *int64               `json:"price_cents,omitempty" validate:"omitempty,min=0"`
	WebsiteURL  string               `json:"website_url,omitempty" validate:"omitempty,url"`
	Tags        []string             `json:"tags,omitempty"`
	Status      models.ProductStatus `json:"status,omitempty"`
}

type CreateFeatureRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description,omitempty"`
	HighValue   bool   `json:"high_value"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	Category models.CategoryKey    `json:"category,omitempty"`
	Search   string                `json:"search,omitempty"`
	SellerID *uuid.UUID            `json:"seller_id,omitempty"`
	Status   *models.ProductStatus `json:"status,omitempty"`
	PriceMin *int64                `json:"price_min,omitempty"`
	PriceMax *int64                `json:"price_max,omitempty"`
	Tags     []string              `json:"tags,omitempty"`
}

// EnrichedProduct is a product joined with its current scores. Scores are
// computed from live metric values, review aggregates, and features at fetch
// time, never read from a snapshot taken earlier.
type EnrichedProduct struct {
	models.Product
	FitScore         int                `json:"fit_score"`
	FeatureScore     int                `json:"feature_score"`
	IntegrationScore int                `json:"integration_score"`
	ReviewScore      int                `json:"review_score"`
	OverallScore     int                `json:"overall_score"`
	Breakdown        *scoring.Breakdown `json:"score_breakdown,omitempty"`
}

func NewCatalogService(db *gorm.DB, metrics *MetricService, scoringService *ScoringService, log *logrus.Entry) *CatalogService {
	return &CatalogService{
		db:      db,
		metrics: metrics,
		scoring: scoringService,
		log:     log,
	}
}

func (s *CatalogService) CreateProduct(sellerID uuid.UUID, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	category, ok := models.ParseCategory(req.Category)
	if !ok {
		return nil, errors.New("unknown category")
	}

	var seller models.User
	if err := s.db.First(&seller, sellerID).Error; err != nil {
		return nil, fmt.Errorf("seller not found: %w", err)
	}
	if seller.UserType != models.UserTypeSeller {
		return nil, errors.New("only sellers can create products")
	}
	if seller.Status != models.UserStatusActive {
		return nil, errors.New("seller account is not active")
	}

	product := &models.Product{
		SellerID:    sellerID,
		Name:        req.Name,
		Tagline:     req.Tagline,
		Description: req.Description,
		Category:    category,
		PriceCents:  req.PriceCents,
		WebsiteURL:  req.WebsiteURL,
		Tags:        req.Tags,
		Status:      models.ProductStatusDraft,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.scoring.RecalculateAsync(product.ID)
	return product, nil
}

// GetProduct applies visibility rules: anyone sees published products,
// only the seller sees drafts and archived ones.
func (s *CatalogService) GetProduct(id uuid.UUID, viewerID *uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Features").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if product.Status != models.ProductStatusPublished {
		if viewerID == nil || *viewerID != product.SellerID {
			return nil, errors.New("product not found")
		}
	}

	return &product, nil
}

func (s *CatalogService) UpdateProduct(id uuid.UUID, sellerID uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	product, err := s.ownedProduct(id, sellerID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Tagline != "" {
		updates["tagline"] = req.Tagline
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.PriceCents != nil {
		updates["price_cents"] = *req.PriceCents
	}
	if req.WebsiteURL != "" {
		updates["website_url"] = req.WebsiteURL
	}
	if req.Tags != nil {
		updates["tags"] = req.Tags
	}
	if req.Status != "" {
		if req.Status != models.ProductStatusDraft &&
			req.Status != models.ProductStatusPublished &&
			req.Status != models.ProductStatusArchived {
			return nil, errors.New("invalid product status")
		}
		updates["status"] = req.Status
	}

	if err := s.db.Model(product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	// Description feeds the feature dimension.
	if req.Description != "" {
		s.scoring.RecalculateAsync(product.ID)
	}

	return product, nil
}

func (s *CatalogService) DeleteProduct(id uuid.UUID, sellerID uuid.UUID) error {
	product, err := s.ownedProduct(id, sellerID)
	if err != nil {
		return err
	}

	// Soft delete
	if err := s.db.Delete(product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *CatalogService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{})

	if params.SellerID != nil {
		query = query.Where("seller_id = ?", *params.SellerID)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	} else {
		// Default to published products only
		query = query.Where("status = ?", models.ProductStatusPublished)
	}

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	if params.PriceMin != nil {
		query = query.Where("price_cents >= ?", *params.PriceMin)
	}

	if params.PriceMax != nil {
		query = query.Where("price_cents <= ?", *params.PriceMax)
	}

	if len(params.Tags) > 0 {
		query = query.Where("tags && ?", params.Tags)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price_cents", "average_rating", "review_count"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// EnrichedByIDs fetches published products by ID and joins them with freshly
// computed scores. Unknown IDs are omitted from the result, not errored.
// Metric values are batch-fetched per category, not per product.
func (s *CatalogService) EnrichedByIDs(ids []uuid.UUID, buyer *models.BuyerProfile) ([]EnrichedProduct, error) {
	if len(ids) == 0 {
		return []EnrichedProduct{}, nil
	}

	var products []models.Product
	if err := s.db.
		Where("id IN ? AND status = ?", ids, models.ProductStatusPublished).
		Preload("Features").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	if len(products) == 0 {
		return []EnrichedProduct{}, nil
	}

	byCategory := make(map[models.CategoryKey][]*models.Product)
	for i := range products {
		p := &products[i]
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	calculator := s.scoring.Calculator()
	enrichedByID := make(map[uuid.UUID]EnrichedProduct, len(products))

	for category, group := range byCategory {
		definitions, err := s.metrics.DefinitionsFor(category)
		if err != nil {
			return nil, err
		}

		groupIDs := make([]uuid.UUID, len(group))
		for i, p := range group {
			groupIDs[i] = p.ID
		}
		matrix, err := s.metrics.ValuesFor(groupIDs, definitions)
		if err != nil {
			return nil, err
		}

		for _, p := range group {
			breakdown := calculator.ComputeScores(
				p,
				definitions,
				matrix[p.ID],
				scoring.ReviewStats{AverageRating: p.AverageRating, ReviewCount: p.ReviewCount},
				p.Features,
				buyer,
			)
			enrichedByID[p.ID] = EnrichedProduct{
				Product:          *p,
				FitScore:         breakdown.Fit.Score,
				FeatureScore:     breakdown.Feature.Score,
				IntegrationScore: breakdown.Integration.Score,
				ReviewScore:      breakdown.Review.Score,
				OverallScore:     breakdown.Overall,
				Breakdown:        &breakdown,
			}
		}
	}

	// Preserve the caller's ID order, dropping IDs that did not resolve.
	result := make([]EnrichedProduct, 0, len(enrichedByID))
	for _, id := range ids {
		if e, ok := enrichedByID[id]; ok {
			result = append(result, e)
		}
	}
	return result, nil
}

// CategoryMetrics returns a category's ordered definitions and, per product,
// the code → value map for the comparison table. Values for all products are
// fetched in one batch.
func (s *CatalogService) CategoryMetrics(category models.CategoryKey, ids []uuid.UUID) ([]models.MetricDefinition, map[uuid.UUID]map[string]TypedValue, error) {
	definitions, err := s.metrics.DefinitionsFor(category)
	if err != nil {
		return nil, nil, err
	}

	matrix, err := s.metrics.ValuesFor(ids, definitions)
	if err != nil {
		return nil, nil, err
	}

	views := make(map[uuid.UUID]map[string]TypedValue, len(ids))
	for _, id := range ids {
		views[id] = ValueViews(definitions, matrix[id])
	}
	return definitions, views, nil
}

// Feature management

func (s *CatalogService) AddFeature(productID uuid.UUID, sellerID uuid.UUID, req *CreateFeatureRequest) (*models.Feature, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	product, err := s.ownedProduct(productID, sellerID)
	if err != nil {
		return nil, err
	}

	feature := &models.Feature{
		ProductID:   product.ID,
		Name:        req.Name,
		Description: req.Description,
		HighValue:   req.HighValue,
	}
	if err := s.db.Create(feature).Error; err != nil {
		return nil, fmt.Errorf("failed to create feature: %w", err)
	}

	s.scoring.RecalculateAsync(product.ID)
	return feature, nil
}

func (s *CatalogService) DeleteFeature(productID, featureID uuid.UUID, sellerID uuid.UUID) error {
	product, err := s.ownedProduct(productID, sellerID)
	if err != nil {
		return err
	}

	result := s.db.Where("id = ? AND product_id = ?", featureID, product.ID).Delete(&models.Feature{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete feature: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("feature not found")
	}

	s.scoring.RecalculateAsync(product.ID)
	return nil
}

// SetMetricValue records a metric value on a seller's own product and
// refreshes the cached scores.
func (s *CatalogService) SetMetricValue(productID uuid.UUID, sellerID uuid.UUID, code string, req *UpsertMetricValueRequest) (*models.MetricValue, error) {
	product, err := s.ownedProduct(productID, sellerID)
	if err != nil {
		return nil, err
	}

	value, err := s.metrics.UpsertValue(product, code, req)
	if err != nil {
		return nil, err
	}

	s.scoring.RecalculateAsync(product.ID)
	return value, nil
}

func (s *CatalogService) ownedProduct(id uuid.UUID, sellerID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if product.SellerID != sellerID {
		return nil, errors.New("unauthorized to modify this product")
	}
	return &product, nil
}
