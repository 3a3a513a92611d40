// internal/models/metric.go
package models

import (
	"github.com/google/uuid"
)

// MetricDefinition is category-scoped reference data describing one
// measurable product attribute. Immutable at runtime; seeded by migrations.
// Code is unique within a category.
type MetricDefinition struct {
	BaseModel
	Category    CategoryKey    `json:"category" gorm:"type:varchar(20);not null;uniqueIndex:idx_metric_defs_category_code"`
	Code        string         `json:"code" gorm:"size:100;not null;uniqueIndex:idx_metric_defs_category_code"`
	Label       string         `json:"label" gorm:"size:255;not null"`
	Unit        string         `json:"unit" gorm:"size:50"`
	DataType    MetricDataType `json:"data_type" gorm:"type:varchar(20);not null"`
	Qualitative bool           `json:"qualitative" gorm:"default:false"`
	SortOrder   int            `json:"sort_order" gorm:"default:0"`

	// Normalization parameters. Numeric metrics scale over
	// [RangeMin, RangeMax]; LowerIsBetter inverts the scale. String metrics
	// map through Options (value → 0-100 score); unknown values score 0.
	RangeMin      float64 `json:"range_min" gorm:"default:0"`
	RangeMax      float64 `json:"range_max" gorm:"default:0"`
	LowerIsBetter bool    `json:"lower_is_better" gorm:"default:false"`
	Options       JSONB   `json:"options,omitempty" gorm:"type:jsonb"`
}

// MetricValue holds exactly one populated field matching its definition's
// data type. At most one row exists per (product, definition); an absent row
// means "unset" and normalizes to 0.
type MetricValue struct {
	BaseModel
	ProductID          uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_metric_values_product_def"`
	MetricDefinitionID uuid.UUID `json:"metric_definition_id" gorm:"type:uuid;not null;uniqueIndex:idx_metric_values_product_def"`

	NumberValue  *float64 `json:"number_value,omitempty"`
	BooleanValue *bool    `json:"boolean_value,omitempty"`
	StringValue  *string  `json:"string_value,omitempty" gorm:"size:255"`

	Definition MetricDefinition `json:"definition,omitempty" gorm:"foreignKey:MetricDefinitionID"`
}
