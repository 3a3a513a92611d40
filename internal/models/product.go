// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	SellerID    uuid.UUID      `json:"seller_id" gorm:"type:uuid;not null;index"`
	Name        string         `json:"name" gorm:"size:255;not null"`
	Tagline     string         `json:"tagline" gorm:"size:255"`
	Description string         `json:"description" gorm:"type:text"`
	Category    CategoryKey    `json:"category" gorm:"type:varchar(20);index"`
	// Price in minor currency units (cents), never floats.
	PriceCents int64          `json:"price_cents" gorm:"not null;default:0"`
	Status     ProductStatus  `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	WebsiteURL string         `json:"website_url" gorm:"size:512"`
	LogoURL    string         `json:"logo_url" gorm:"size:512"`
	Tags       pq.StringArray `json:"tags" gorm:"type:text[]"`

	// Aggregates maintained by the review service. Treated as a cache over
	// the review rows, never edited directly.
	AverageRating float64 `json:"average_rating" gorm:"type:decimal(3,2);default:0"`
	ReviewCount   int64   `json:"review_count" gorm:"default:0"`

	// ScoreBreakdown is the cached output of the score calculator,
	// recomputed whenever metrics, reviews, or features change. The metric
	// values and reviews remain the source of truth.
	ScoreBreakdown JSONB `json:"score_breakdown,omitempty" gorm:"type:jsonb"`

	// Relationships
	Seller       User          `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Features     []Feature     `json:"features,omitempty" gorm:"foreignKey:ProductID"`
	MetricValues []MetricValue `json:"metric_values,omitempty" gorm:"foreignKey:ProductID"`
	Reviews      []Review      `json:"reviews,omitempty" gorm:"foreignKey:ProductID"`
}

type Feature struct {
	BaseModel
	ProductID   uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	HighValue   bool      `json:"high_value" gorm:"default:false"`
}
