// internal/models/vendor_metrics.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// VendorRatingsCache is the per-vendor review aggregate. It is recomputed
// in full from ProductReview rows; overall_rating is always the arithmetic
// mean of the three component averages.
type VendorRatingsCache struct {
	BaseModel
	VendorID uuid.UUID `json:"vendor_id" gorm:"type:uuid;not null;uniqueIndex"`

	AvgQualityRating       float64 `json:"avg_quality_rating" gorm:"default:0"`
	AvgPunctualityRating   float64 `json:"avg_punctuality_rating" gorm:"default:0"`
	AvgCommunicationRating float64 `json:"avg_communication_rating" gorm:"default:0"`
	OverallRating          float64 `json:"overall_rating" gorm:"default:0"`

	TotalReviews       int     `json:"total_reviews" gorm:"default:0"`
	SuccessRate        float64 `json:"success_rate" gorm:"default:0"`
	OnTimeRate         float64 `json:"on_time_rate" gorm:"default:0"`
	RepeatCustomerRate float64 `json:"repeat_customer_rate" gorm:"default:0"`

	LastUpdated time.Time `json:"last_updated"`

	Vendor User `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
}

// VendorDeliveryMetrics aggregates a vendor's delivery performance.
// All times are in minutes.
type VendorDeliveryMetrics struct {
	BaseModel
	VendorID uuid.UUID `json:"vendor_id" gorm:"type:uuid;not null;uniqueIndex"`

	AvgDeliveryTime float64 `json:"avg_delivery_time" gorm:"default:0"`
	MinDeliveryTime float64 `json:"min_delivery_time" gorm:"default:0"`
	MaxDeliveryTime float64 `json:"max_delivery_time" gorm:"default:0"`

	OnTimeCount     int `json:"on_time_count" gorm:"default:0"`
	LateCount       int `json:"late_count" gorm:"default:0"`
	TotalDeliveries int `json:"total_deliveries" gorm:"default:0"`

	Vendor User `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
}
