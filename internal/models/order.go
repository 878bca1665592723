// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	BaseModel
	BuyerID  uuid.UUID `json:"buyer_id" gorm:"type:uuid;not null;index"`
	SellerID uuid.UUID `json:"seller_id" gorm:"type:uuid;not null;index"`

	TotalAmount   float64       `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	OrderStatus   OrderStatus   `json:"order_status" gorm:"type:varchar(50);default:'pending';index"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(50);default:'pending'"`

	DeliveryAddress string  `json:"delivery_address" gorm:"size:255"`
	LogisticsCost   float64 `json:"logistics_cost" gorm:"default:0"`

	DeliveredAt *time.Time `json:"delivered_at"`

	// Relationships
	Buyer  User        `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Seller User        `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Items  []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	BaseModel
	OrderID         uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID `json:"product_id" gorm:"type:uuid;not null"`
	Quantity        float64   `json:"quantity" gorm:"not null"`
	PriceAtPurchase float64   `json:"price_at_purchase" gorm:"not null"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
