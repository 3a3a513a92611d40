// internal/services/metric_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackpick/stackpick-backend/internal/models"
)

// TypedValue is one metric value with its display metadata, keyed by metric
// code in API responses.
type TypedValue struct {
	Value    interface{}           `json:"value"`
	Label    string                `json:"label"`
	Unit     string                `json:"unit,omitempty"`
	DataType models.MetricDataType `json:"data_type"`
}

type UpsertMetricValueRequest struct {
	NumberValue  *float64 `json:"number_value,omitempty"`
	BooleanValue *bool    `json:"boolean_value,omitempty"`
	StringValue  *string  `json:"string_value,omitempty"`
}

// metricValueFinder is the single query the registry issues for values. The
// seam exists so tests can assert the batching contract: one call covers N
// products and M definitions.
type metricValueFinder interface {
	FindValues(productIDs []uuid.UUID, definitionIDs []uuid.UUID) ([]models.MetricValue, error)
}

type gormValueFinder struct {
	db *gorm.DB
}

func (f gormValueFinder) FindValues(productIDs []uuid.UUID, definitionIDs []uuid.UUID) ([]models.MetricValue, error) {
	var rows []models.MetricValue
	err := f.db.
		Where("product_id IN ? AND metric_definition_id IN ?", productIDs, definitionIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metric values: %w", err)
	}
	return rows, nil
}

// MetricService is the category metric registry: definitions per category
// and batched value lookup for scoring and comparison screens.
type MetricService struct {
	db     *gorm.DB
	finder metricValueFinder
}

func NewMetricService(db *gorm.DB) *MetricService {
	return &MetricService{
		db:     db,
		finder: gormValueFinder{db: db},
	}
}

// DefinitionsFor returns a category's metric definitions in display order.
// A category with no definitions yields an empty list, not an error.
func (s *MetricService) DefinitionsFor(category models.CategoryKey) ([]models.MetricDefinition, error) {
	var defs []models.MetricDefinition
	if err := s.db.
		Where("category = ?", category).
		Order("sort_order ASC").
		Find(&defs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch metric definitions: %w", err)
	}
	return defs, nil
}

// ValuesFor fetches the values of the given definitions for all products in
// ONE query and pivots them into productID → code → value. Comparison and
// scoring screens fetch for up to 3 products and ~16 metrics at once, so a
// query per product would multiply round trips.
func (s *MetricService) ValuesFor(productIDs []uuid.UUID, definitions []models.MetricDefinition) (map[uuid.UUID]map[string]*models.MetricValue, error) {
	matrix := make(map[uuid.UUID]map[string]*models.MetricValue, len(productIDs))
	for _, id := range productIDs {
		matrix[id] = make(map[string]*models.MetricValue)
	}
	if len(productIDs) == 0 || len(definitions) == 0 {
		return matrix, nil
	}

	definitionIDs := make([]uuid.UUID, len(definitions))
	codeByID := make(map[uuid.UUID]string, len(definitions))
	for i, def := range definitions {
		definitionIDs[i] = def.ID
		codeByID[def.ID] = def.Code
	}

	rows, err := s.finder.FindValues(productIDs, definitionIDs)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		row := &rows[i]
		code, ok := codeByID[row.MetricDefinitionID]
		if !ok {
			continue
		}
		if _, ok := matrix[row.ProductID]; !ok {
			matrix[row.ProductID] = make(map[string]*models.MetricValue)
		}
		matrix[row.ProductID][code] = row
	}

	return matrix, nil
}

// ValueViews converts one product's value row map into the code → TypedValue
// shape the API exposes. Unset metrics are omitted entirely.
func ValueViews(definitions []models.MetricDefinition, values map[string]*models.MetricValue) map[string]TypedValue {
	views := make(map[string]TypedValue)
	for _, def := range definitions {
		row, ok := values[def.Code]
		if !ok || row == nil {
			continue
		}

		var value interface{}
		switch def.DataType {
		case models.MetricTypeNumber:
			if row.NumberValue != nil {
				value = *row.NumberValue
			}
		case models.MetricTypeBoolean:
			if row.BooleanValue != nil {
				value = *row.BooleanValue
			}
		case models.MetricTypeString:
			if row.StringValue != nil {
				value = *row.StringValue
			}
		}
		if value == nil {
			continue
		}

		views[def.Code] = TypedValue{
			Value:    value,
			Label:    def.Label,
			Unit:     def.Unit,
			DataType: def.DataType,
		}
	}
	return views
}

// UpsertValue records one metric value for a product, enforcing that exactly
// one field is populated and that it matches the definition's data type.
func (s *MetricService) UpsertValue(product *models.Product, code string, req *UpsertMetricValueRequest) (*models.MetricValue, error) {
	var def models.MetricDefinition
	if err := s.db.
		Where("category = ? AND code = ?", product.Category, code).
		First(&def).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("metric definition not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := validateValueType(def, req); err != nil {
		return nil, err
	}

	var value models.MetricValue
	err := s.db.
		Where("product_id = ? AND metric_definition_id = ?", product.ID, def.ID).
		First(&value).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		value = models.MetricValue{
			ProductID:          product.ID,
			MetricDefinitionID: def.ID,
			NumberValue:        req.NumberValue,
			BooleanValue:       req.BooleanValue,
			StringValue:        req.StringValue,
		}
		if err := s.db.Create(&value).Error; err != nil {
			return nil, fmt.Errorf("failed to create metric value: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("database error: %w", err)
	default:
		updates := map[string]interface{}{
			"number_value":  req.NumberValue,
			"boolean_value": req.BooleanValue,
			"string_value":  req.StringValue,
		}
		if err := s.db.Model(&value).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update metric value: %w", err)
		}
	}

	value.Definition = def
	return &value, nil
}

func validateValueType(def models.MetricDefinition, req *UpsertMetricValueRequest) error {
	populated := 0
	if req.NumberValue != nil {
		populated++
	}
	if req.BooleanValue != nil {
		populated++
	}
	if req.StringValue != nil {
		populated++
	}
	if populated != 1 {
		return errors.New("exactly one value field must be set")
	}

	switch def.DataType {
	case models.MetricTypeNumber:
		if req.NumberValue == nil {
			return errors.New("metric expects a number value")
		}
	case models.MetricTypeBoolean:
		if req.BooleanValue == nil {
			return errors.New("metric expects a boolean value")
		}
	case models.MetricTypeString:
		if req.StringValue == nil {
			return errors.New("metric expects a string value")
		}
	}
	return nil
}
