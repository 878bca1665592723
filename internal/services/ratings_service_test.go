// internal/services/ratings_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/freshmandi/marketplace-backend/internal/models"
)

type RatingsServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *RatingsService
}

func (suite *RatingsServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewRatingsService(suite.db, nil)
}

func (suite *RatingsServiceTestSuite) TestLazyRatingsCacheDefaults() {
	vendor := createTestVendor(suite.T(), suite.db, "Fresh Farms")

	ratingsCache, err := suite.service.GetOrCreateRatingsCache(vendor.ID)
	suite.NoError(err)
	suite.Equal(4.0, ratingsCache.AvgQualityRating)
	suite.Equal(4.0, ratingsCache.AvgPunctualityRating)
	suite.Equal(4.0, ratingsCache.AvgCommunicationRating)
	suite.Equal(4.0, ratingsCache.OverallRating)
	suite.Equal(0, ratingsCache.TotalReviews)
	suite.Equal(95.0, ratingsCache.SuccessRate)
	suite.Equal(90.0, ratingsCache.OnTimeRate)
	suite.Equal(0.0, ratingsCache.RepeatCustomerRate)

	// A second call returns the persisted row, not a new one
	again, err := suite.service.GetOrCreateRatingsCache(vendor.ID)
	suite.NoError(err)
	suite.Equal(ratingsCache.ID, again.ID)

	var count int64
	suite.db.Model(&models.VendorRatingsCache{}).Where("vendor_id = ?", vendor.ID).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *RatingsServiceTestSuite) TestLazyDeliveryMetricsDefaults() {
	vendor := createTestVendor(suite.T(), suite.db, "Green Valley")

	metrics, err := suite.service.GetOrCreateDeliveryMetrics(vendor.ID)
	suite.NoError(err)
	suite.Equal(240.0, metrics.AvgDeliveryTime)
	suite.Equal(120.0, metrics.MinDeliveryTime)
	suite.Equal(360.0, metrics.MaxDeliveryTime)
	suite.Equal(0, metrics.OnTimeCount)
	suite.Equal(0, metrics.LateCount)
	suite.Equal(0, metrics.TotalDeliveries)
}

func (suite *RatingsServiceTestSuite) TestUpdateCacheWithNoReviewsIsNoop() {
	vendor := createTestVendor(suite.T(), suite.db, "Silent Vendor")

	err := suite.service.UpdateVendorRatingsCache(vendor.ID)
	suite.NoError(err)

	var count int64
	suite.db.Model(&models.VendorRatingsCache{}).Where("vendor_id = ?", vendor.ID).Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *RatingsServiceTestSuite) TestUpdateCacheRecomputesAggregates() {
	vendor := createTestVendor(suite.T(), suite.db, "Busy Vendor")
	retailer := createTestRetailer(suite.T(), suite.db, "Corner Shop")

	order1 := createDeliveredOrder(suite.T(), suite.db, retailer.ID, vendor.ID, 100, 2)
	order2 := createDeliveredOrder(suite.T(), suite.db, retailer.ID, vendor.ID, 80, 2)

	createTestReview(suite.T(), suite.db, order1.ID, retailer.ID, vendor.ID, 5, 4, 5, "Excellent")
	createTestReview(suite.T(), suite.db, order2.ID, retailer.ID, vendor.ID, 4, 3, 4, "Good")

	err := suite.service.UpdateVendorRatingsCache(vendor.ID)
	suite.NoError(err)

	var ratingsCache models.VendorRatingsCache
	suite.NoError(suite.db.Where("vendor_id = ?", vendor.ID).First(&ratingsCache).Error)

	suite.Equal(4.5, ratingsCache.AvgQualityRating)
	suite.Equal(3.5, ratingsCache.AvgPunctualityRating)
	suite.Equal(4.5, ratingsCache.AvgCommunicationRating)
	suite.Equal(2, ratingsCache.TotalReviews)
	// Both orders delivered, so a perfect success rate
	suite.Equal(100.0, ratingsCache.SuccessRate)

	// Overall is the mean of the component averages
	expected := (4.5 + 3.5 + 4.5) / 3
	suite.InDelta(expected, ratingsCache.OverallRating, 0.005)
}

func (suite *RatingsServiceTestSuite) TestUpdateCacheIsIdempotent() {
	vendor := createTestVendor(suite.T(), suite.db, "Steady Vendor")
	retailer := createTestRetailer(suite.T(), suite.db, "Buyer")

	order := createDeliveredOrder(suite.T(), suite.db, retailer.ID, vendor.ID, 50, 1)
	createTestReview(suite.T(), suite.db, order.ID, retailer.ID, vendor.ID, 4, 4, 4, "")

	suite.NoError(suite.service.UpdateVendorRatingsCache(vendor.ID))

	var first models.VendorRatingsCache
	suite.NoError(suite.db.Where("vendor_id = ?", vendor.ID).First(&first).Error)

	suite.NoError(suite.service.UpdateVendorRatingsCache(vendor.ID))

	var second models.VendorRatingsCache
	suite.NoError(suite.db.Where("vendor_id = ?", vendor.ID).First(&second).Error)

	suite.Equal(first.AvgQualityRating, second.AvgQualityRating)
	suite.Equal(first.OverallRating, second.OverallRating)
	suite.Equal(first.TotalReviews, second.TotalReviews)
	suite.Equal(first.SuccessRate, second.SuccessRate)

	var count int64
	suite.db.Model(&models.VendorRatingsCache{}).Where("vendor_id = ?", vendor.ID).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *RatingsServiceTestSuite) TestRecordDeliveryReplacesSeededDefaults() {
	vendor := createTestVendor(suite.T(), suite.db, "Quick Vendor")

	// First recorded delivery replaces the seeded defaults outright
	err := suite.service.RecordDelivery(vendor.ID, 90, true)
	suite.NoError(err)

	var metrics models.VendorDeliveryMetrics
	suite.NoError(suite.db.Where("vendor_id = ?", vendor.ID).First(&metrics).Error)
	suite.Equal(90.0, metrics.AvgDeliveryTime)
	suite.Equal(90.0, metrics.MinDeliveryTime)
	suite.Equal(90.0, metrics.MaxDeliveryTime)
	suite.Equal(1, metrics.OnTimeCount)
	suite.Equal(0, metrics.LateCount)
	suite.Equal(1, metrics.TotalDeliveries)

	// Subsequent deliveries fold into the running average and widen the range
	suite.NoError(suite.service.RecordDelivery(vendor.ID, 310, false))

	suite.NoError(suite.db.Where("vendor_id = ?", vendor.ID).First(&metrics).Error)
	suite.Equal(200.0, metrics.AvgDeliveryTime)
	suite.Equal(90.0, metrics.MinDeliveryTime)
	suite.Equal(310.0, metrics.MaxDeliveryTime)
	suite.Equal(1, metrics.OnTimeCount)
	suite.Equal(1, metrics.LateCount)
	suite.Equal(2, metrics.TotalDeliveries)
}

func TestRatingsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RatingsServiceTestSuite))
}
