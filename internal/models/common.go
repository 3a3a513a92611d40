// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeBuyer  UserType = "buyer"
	UserTypeSeller UserType = "seller"
	UserTypeAdmin  UserType = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusPublished ProductStatus = "published"
	ProductStatusArchived  ProductStatus = "archived"
)

// CategoryKey identifies one of the four marketplace domains. Lookups are
// always by key, never by display name, so renames cannot break references.
type CategoryKey string

const (
	CategoryHR        CategoryKey = "hr"
	CategoryLegal     CategoryKey = "legal"
	CategoryMarketing CategoryKey = "marketing"
	CategoryDevTools  CategoryKey = "devtools"
)

// AllCategories is the fixed category set in its stable order. The order is
// load-bearing: the comparison store's active-category auto-switch walks it.
var AllCategories = []CategoryKey{CategoryHR, CategoryLegal, CategoryMarketing, CategoryDevTools}

var categoryNames = map[CategoryKey]string{
	CategoryHR:        "HR & People Ops",
	CategoryLegal:     "Legal & Compliance",
	CategoryMarketing: "Marketing & Growth",
	CategoryDevTools:  "Developer Tools",
}

func (k CategoryKey) Valid() bool {
	_, ok := categoryNames[k]
	return ok
}

func (k CategoryKey) DisplayName() string {
	return categoryNames[k]
}

// ParseCategory returns the category for a key, or false for anything
// outside the fixed set.
func ParseCategory(s string) (CategoryKey, bool) {
	k := CategoryKey(s)
	return k, k.Valid()
}

type MetricDataType string

const (
	MetricTypeNumber  MetricDataType = "number"
	MetricTypeBoolean MetricDataType = "boolean"
	MetricTypeString  MetricDataType = "string"
)
