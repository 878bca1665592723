// internal/models/review.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductReview is a retailer's post-delivery rating of a vendor.
// Component ratings are 1-5 stars; the overall per-review rating is
// always the mean of the three components.
type ProductReview struct {
	BaseModel
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null"`

	RetailerID uuid.UUID  `json:"retailer_id" gorm:"type:uuid;not null"`
	VendorID   uuid.UUID  `json:"vendor_id" gorm:"type:uuid;not null;index"`
	DriverID   *uuid.UUID `json:"driver_id,omitempty" gorm:"type:uuid;index"`

	RatingQuality       int `json:"rating_quality"`
	RatingDelay         int `json:"rating_delay"`
	RatingCommunication int `json:"rating_communication"`

	Comment  string     `json:"comment" gorm:"type:text"`
	EditedAt *time.Time `json:"edited_at"`

	// Relationships
	Order    Order   `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Product  Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Retailer User    `json:"retailer,omitempty" gorm:"foreignKey:RetailerID"`
	Vendor   User    `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
}

// OverallRating is the mean of the three component ratings.
func (r *ProductReview) OverallRating() float64 {
	return float64(r.RatingQuality+r.RatingDelay+r.RatingCommunication) / 3
}
