// internal/models/review.go
package models

import (
	"github.com/google/uuid"
)

type Review struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_buyer"`
	BuyerID   uuid.UUID `json:"buyer_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_buyer"`
	Rating    int       `json:"rating" gorm:"not null"` // 1-5
	Title     string    `json:"title" gorm:"size:255"`
	Body      string    `json:"body" gorm:"type:text"`

	Buyer User `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
}

type Bookmark struct {
	BaseModel
	BuyerID   uuid.UUID `json:"buyer_id" gorm:"type:uuid;not null;uniqueIndex:idx_bookmarks_buyer_product"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_bookmarks_buyer_product"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
