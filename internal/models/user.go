// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	UserType     UserType   `json:"user_type" gorm:"type:varchar(20);not null"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	CompanyName  string     `json:"company_name" gorm:"size:255"`
	ProfileData  JSONB      `json:"profile_data" gorm:"type:jsonb"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Products  []Product  `json:"products,omitempty" gorm:"foreignKey:SellerID"`
	Reviews   []Review   `json:"reviews,omitempty" gorm:"foreignKey:BuyerID"`
	Bookmarks []Bookmark `json:"bookmarks,omitempty" gorm:"foreignKey:BuyerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// BuyerProfile is the buyer context used by the optional match factors in
// scoring. It is always passed explicitly; nothing in the scoring path reads
// session state.
type BuyerProfile struct {
	CompanySize         int    `json:"company_size"`
	Industry            string `json:"industry"`
	PreferredDeployment string `json:"preferred_deployment"`
	Ecosystem           string `json:"ecosystem"`
}

// BuyerProfile extracts the buyer context from the user's profile data.
// Missing or malformed fields come back zero-valued, which scoring treats as
// "no buyer preference".
func (u *User) BuyerProfile() *BuyerProfile {
	if u == nil || u.ProfileData == nil {
		return nil
	}

	profile := &BuyerProfile{}
	if v, ok := u.ProfileData["company_size"].(float64); ok {
		profile.CompanySize = int(v)
	}
	if v, ok := u.ProfileData["industry"].(string); ok {
		profile.Industry = v
	}
	if v, ok := u.ProfileData["preferred_deployment"].(string); ok {
		profile.PreferredDeployment = v
	}
	if v, ok := u.ProfileData["ecosystem"].(string); ok {
		profile.Ecosystem = v
	}
	return profile
}
