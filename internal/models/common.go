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
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
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
	UserTypeVendor   UserType = "vendor"
	UserTypeRetailer UserType = "retailer"
	UserTypeDriver   UserType = "driver"
	UserTypeAdmin    UserType = "admin"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// VendorTier classifies a vendor by rating and delivery speed.
type VendorTier string

const (
	VendorTierPremium VendorTier = "PREMIUM"
	VendorTierGood    VendorTier = "GOOD"
	VendorTierBudget  VendorTier = "BUDGET"
)

type FreshnessLevel string

const (
	FreshnessToday     FreshnessLevel = "TODAY"
	FreshnessYesterday FreshnessLevel = "YESTERDAY"
	FreshnessStored    FreshnessLevel = "STORED"
)

type QualityTier string

const (
	QualityTierPremium  QualityTier = "PREMIUM"
	QualityTierGood     QualityTier = "GOOD"
	QualityTierStandard QualityTier = "STANDARD"
)
