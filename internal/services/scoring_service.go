// internal/services/scoring_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/stackpick/stackpick-backend/internal/config"
	"github.com/stackpick/stackpick-backend/internal/models"
	"github.com/stackpick/stackpick-backend/internal/scoring"
)

// ScoringService keeps the cached score breakdown on products in step with
// their inputs. The breakdown column is a cache: metric values, reviews, and
// features remain the source of truth, and any recompute starts from those.
type ScoringService struct {
	db         *gorm.DB
	metrics    *MetricService
	calculator *scoring.Calculator
	log        *logrus.Entry
}

func NewScoringService(db *gorm.DB, metrics *MetricService, cfg config.ScoringConfig, log *logrus.Entry) *ScoringService {
	return &ScoringService{
		db:         db,
		metrics:    metrics,
		calculator: scoring.NewCalculator(scoringConfig(cfg)),
		log:        log,
	}
}

func scoringConfig(cfg config.ScoringConfig) scoring.Config {
	return scoring.Config{
		FitWeight:         cfg.FitWeight,
		FeatureWeight:     cfg.FeatureWeight,
		IntegrationWeight: cfg.IntegrationWeight,
		ReviewWeight:      cfg.ReviewWeight,
		ReviewPriorRating: cfg.ReviewPriorRating,
		ReviewPriorWeight: cfg.ReviewPriorWeight,
	}
}

// Calculator exposes the configured calculator for callers that compute
// buyer-specific breakdowns on the fly.
func (s *ScoringService) Calculator() *scoring.Calculator {
	return s.calculator
}

// BreakdownFor computes a fresh breakdown for one already-loaded product.
// The buyer is an explicit parameter; pass nil for the buyer-neutral scores
// that get cached.
func (s *ScoringService) BreakdownFor(product *models.Product, buyer *models.BuyerProfile) (*scoring.Breakdown, error) {
	definitions, err := s.metrics.DefinitionsFor(product.Category)
	if err != nil {
		return nil, err
	}

	matrix, err := s.metrics.ValuesFor([]uuid.UUID{product.ID}, definitions)
	if err != nil {
		return nil, err
	}

	var features []models.Feature
	if err := s.db.Where("product_id = ?", product.ID).Find(&features).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch features: %w", err)
	}

	breakdown := s.calculator.ComputeScores(
		product,
		definitions,
		matrix[product.ID],
		scoring.ReviewStats{AverageRating: product.AverageRating, ReviewCount: product.ReviewCount},
		features,
		buyer,
	)
	return &breakdown, nil
}

// Recalculate refreshes the cached breakdown for a product. Called whenever
// metrics, reviews, or features change.
func (s *ScoringService) Recalculate(productID uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("product not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	breakdown, err := s.BreakdownFor(&product, nil)
	if err != nil {
		return err
	}

	cached, err := breakdownJSONB(breakdown)
	if err != nil {
		return err
	}

	if err := s.db.Model(&product).UpdateColumn("score_breakdown", cached).Error; err != nil {
		return fmt.Errorf("failed to store score breakdown: %w", err)
	}
	return nil
}

// RecalculateAsync recomputes in the background for write paths that should
// not block on scoring; failures are logged, the cache is refreshed on the
// next successful recompute.
func (s *ScoringService) RecalculateAsync(productID uuid.UUID) {
	go func() {
		if err := s.Recalculate(productID); err != nil {
			s.log.WithError(err).WithField("product_id", productID).
				Error("failed to recalculate product scores")
		}
	}()
}

func breakdownJSONB(breakdown *scoring.Breakdown) (models.JSONB, error) {
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to encode score breakdown: %w", err)
	}
	var cached models.JSONB
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("failed to decode score breakdown: %w", err)
	}
	return cached, nil
}
