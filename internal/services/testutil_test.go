// internal/services/testutil_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/freshmandi/marketplace-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A uniquely named shared-cache memory database keeps all pooled
	// connections on the same data while isolating suites from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.ProductReview{},
		&models.VendorRatingsCache{},
		&models.VendorDeliveryMetrics{},
		&models.ProductComparison{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestVendor(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	vendor := &models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@test.local", uuid.New().String()),
		UserType:     models.UserTypeVendor,
		BusinessName: name,
		IsActive:     true,
	}
	if err := db.Create(vendor).Error; err != nil {
		t.Fatalf("failed to create vendor: %v", err)
	}
	return vendor
}

func createTestRetailer(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	retailer := &models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@test.local", uuid.New().String()),
		UserType: models.UserTypeRetailer,
		IsActive: true,
	}
	if err := db.Create(retailer).Error; err != nil {
		t.Fatalf("failed to create retailer: %v", err)
	}
	return retailer
}

func createTestProduct(t *testing.T, db *gorm.DB, vendorID uuid.UUID, name string, price float64) *models.Product {
	t.Helper()
	product := &models.Product{
		VendorID:      vendorID,
		ProductName:   name,
		Category:      "vegetables",
		Price:         price,
		Quantity:      100,
		Unit:          "kg",
		StockQuantity: 50,
		IsActive:      true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return product
}

func createTestRatingsCache(t *testing.T, db *gorm.DB, vendorID uuid.UUID, overall float64) *models.VendorRatingsCache {
	t.Helper()
	ratingsCache := &models.VendorRatingsCache{
		VendorID:               vendorID,
		AvgQualityRating:       overall,
		AvgPunctualityRating:   overall,
		AvgCommunicationRating: overall,
		OverallRating:          overall,
		TotalReviews:           5,
		SuccessRate:            95.0,
		OnTimeRate:             90.0,
		LastUpdated:            time.Now().UTC(),
	}
	if err := db.Create(ratingsCache).Error; err != nil {
		t.Fatalf("failed to create ratings cache: %v", err)
	}
	return ratingsCache
}

func createTestDeliveryMetrics(t *testing.T, db *gorm.DB, vendorID uuid.UUID, avgMinutes float64) *models.VendorDeliveryMetrics {
	t.Helper()
	metrics := &models.VendorDeliveryMetrics{
		VendorID:        vendorID,
		AvgDeliveryTime: avgMinutes,
		MinDeliveryTime: avgMinutes / 2,
		MaxDeliveryTime: avgMinutes * 1.5,
		TotalDeliveries: 10,
	}
	if err := db.Create(metrics).Error; err != nil {
		t.Fatalf("failed to create delivery metrics: %v", err)
	}
	return metrics
}

func createDeliveredOrder(t *testing.T, db *gorm.DB, buyerID, sellerID uuid.UUID, total, quantity float64) *models.Order {
	t.Helper()
	now := time.Now().UTC()
	order := &models.Order{
		BuyerID:     buyerID,
		SellerID:    sellerID,
		TotalAmount: total,
		OrderStatus: models.OrderStatusDelivered,
		DeliveredAt: &now,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	item := &models.OrderItem{
		OrderID:         order.ID,
		Quantity:        quantity,
		PriceAtPurchase: total / quantity,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create order item: %v", err)
	}
	return order
}

func createTestReview(t *testing.T, db *gorm.DB, orderID, retailerID, vendorID uuid.UUID, quality, delay, communication int, comment string) *models.ProductReview {
	t.Helper()
	review := &models.ProductReview{
		OrderID:             orderID,
		RetailerID:          retailerID,
		VendorID:            vendorID,
		RatingQuality:       quality,
		RatingDelay:         delay,
		RatingCommunication: communication,
		Comment:             comment,
	}
	if err := db.Create(review).Error; err != nil {
		t.Fatalf("failed to create review: %v", err)
	}
	return review
}
