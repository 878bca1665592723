// internal/models/user.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name         string   `json:"name" gorm:"size:100;not null"`
	Email        string   `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string   `json:"-" gorm:"size:255;not null"`
	Phone        string   `json:"phone" gorm:"size:15"`
	Address      string   `json:"address" gorm:"size:255"`
	City         string   `json:"city" gorm:"size:100"`
	UserType     UserType `json:"user_type" gorm:"type:varchar(20);not null;index"`
	BusinessName string   `json:"business_name" gorm:"size:100"`
	IsActive     bool     `json:"is_active" gorm:"default:true"`

	// Relationships
	Products       []Product       `json:"products,omitempty" gorm:"foreignKey:VendorID"`
	OrdersPlaced   []Order         `json:"orders_placed,omitempty" gorm:"foreignKey:BuyerID"`
	OrdersReceived []Order         `json:"orders_received,omitempty" gorm:"foreignKey:SellerID"`
	ReviewsGiven   []ProductReview `json:"reviews_given,omitempty" gorm:"foreignKey:RetailerID"`
}

// DisplayName returns the business name for vendors with one set,
// falling back to the account name.
func (u *User) DisplayName() string {
	if u.BusinessName != "" {
		return u.BusinessName
	}
	return u.Name
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
