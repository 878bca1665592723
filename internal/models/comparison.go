// internal/models/comparison.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ProductComparison is an append-only log of search/compare/select events,
// kept for analytics. Rows are never updated or deleted.
type ProductComparison struct {
	BaseModel
	ComparisonID uuid.UUID `json:"comparison_id" gorm:"type:uuid;not null;uniqueIndex"`
	RetailerID   uuid.UUID `json:"retailer_id" gorm:"type:uuid;not null;index"`
	ProductName  string    `json:"product_name" gorm:"size:100;not null"`

	VendorsCompared  pq.StringArray `json:"vendors_compared" gorm:"type:text[]"`
	SelectedVendorID *uuid.UUID     `json:"selected_vendor_id,omitempty" gorm:"type:uuid"`
	SortPreference   string         `json:"sort_preference" gorm:"size:20"`
	FiltersApplied   JSONB          `json:"filters_applied" gorm:"type:jsonb"`
}
