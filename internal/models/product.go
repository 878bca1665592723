// internal/models/product.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	BaseModel
	VendorID    uuid.UUID `json:"vendor_id" gorm:"type:uuid;not null;index"`
	ProductName string    `json:"product_name" gorm:"size:100;not null;index"`
	Category    string    `json:"category" gorm:"size:50;not null;index"`
	Description string    `json:"description" gorm:"type:text"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity    float64   `json:"quantity" gorm:"not null"`
	Unit        string    `json:"unit" gorm:"size:20;default:'kg'"`

	StockQuantity float64    `json:"stock_quantity" gorm:"default:0"`
	ExpiryDate    *time.Time `json:"expiry_date"`

	FreshnessLevel FreshnessLevel `json:"freshness_level" gorm:"type:varchar(20);default:'TODAY'"`
	QualityTier    QualityTier    `json:"quality_tier" gorm:"type:varchar(20);default:'GOOD'"`
	// Comma-separated certification tags, e.g. "Organic, FSSAI".
	Certification string `json:"certification" gorm:"size:255"`

	MOQEnabled      bool    `json:"moq_enabled" gorm:"default:false"`
	MOQType         string  `json:"moq_type" gorm:"size:20"`
	MinimumQuantity float64 `json:"minimum_quantity"`

	IsActive bool `json:"is_active" gorm:"default:true;index"`

	// Relationships
	Vendor  User            `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	Reviews []ProductReview `json:"reviews,omitempty" gorm:"foreignKey:ProductID"`
}

// ExpiryDaysRemaining reports the whole days until the product expires,
// clamped at zero for already-expired stock.
func (p *Product) ExpiryDaysRemaining(now time.Time) int {
	if p.ExpiryDate == nil {
		return 0
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	expiry := time.Date(p.ExpiryDate.Year(), p.ExpiryDate.Month(), p.ExpiryDate.Day(), 0, 0, 0, 0, now.Location())
	days := int(expiry.Sub(today).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// MOQ returns the minimum order quantity, or 0 when MOQ is disabled.
func (p *Product) MOQ() float64 {
	if !p.MOQEnabled {
		return 0
	}
	return p.MinimumQuantity
}
