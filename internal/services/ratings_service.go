// internal/services/ratings_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshmandi/marketplace-backend/internal/cache"
	"github.com/freshmandi/marketplace-backend/internal/models"
)

// Defaults applied when a vendor has never been rated or has never
// delivered. New vendors get a neutral-positive profile so they are
// comparable immediately rather than excluded from results.
const (
	defaultRating          = 4.0
	defaultSuccessRate     = 95.0
	defaultOnTimeRate      = 90.0
	defaultAvgDeliveryMins = 240.0
	defaultMinDeliveryMins = 120.0
	defaultMaxDeliveryMins = 360.0
)

// nowFunc is swapped out in tests that need a fixed clock.
var nowFunc = time.Now

type RatingsService struct {
	db          *gorm.DB
	cacheClient *cache.Client
}

func NewRatingsService(db *gorm.DB, cacheClient *cache.Client) *RatingsService {
	return &RatingsService{
		db:          db,
		cacheClient: cacheClient,
	}
}

// GetOrCreateRatingsCache returns the vendor's ratings cache, creating a
// default row on first lookup. Concurrent creators race on the vendor_id
// uniqueness constraint; the loser re-reads the winner's row.
func (s *RatingsService) GetOrCreateRatingsCache(vendorID uuid.UUID) (*models.VendorRatingsCache, error) {
	var ratingsCache models.VendorRatingsCache
	err := s.db.Where("vendor_id = ?", vendorID).First(&ratingsCache).Error
	if err == nil {
		return &ratingsCache, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch ratings cache: %w", err)
	}

	ratingsCache = models.VendorRatingsCache{
		VendorID:               vendorID,
		AvgQualityRating:       defaultRating,
		AvgPunctualityRating:   defaultRating,
		AvgCommunicationRating: defaultRating,
		OverallRating:          defaultRating,
		TotalReviews:           0,
		SuccessRate:            defaultSuccessRate,
		OnTimeRate:             defaultOnTimeRate,
		RepeatCustomerRate:     0,
		LastUpdated:            nowFunc().UTC(),
	}

	if createErr := s.db.Create(&ratingsCache).Error; createErr != nil {
		// Lost the create race; the unique index guarantees a row exists.
		var existing models.VendorRatingsCache
		if readErr := s.db.Where("vendor_id = ?", vendorID).First(&existing).Error; readErr != nil {
			return nil, fmt.Errorf("failed to create ratings cache: %w", createErr)
		}
		return &existing, nil
	}

	return &ratingsCache, nil
}

// GetOrCreateDeliveryMetrics mirrors GetOrCreateRatingsCache for the
// delivery aggregate.
func (s *RatingsService) GetOrCreateDeliveryMetrics(vendorID uuid.UUID) (*models.VendorDeliveryMetrics, error) {
	var metrics models.VendorDeliveryMetrics
	err := s.db.Where("vendor_id = ?", vendorID).First(&metrics).Error
	if err == nil {
		return &metrics, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch delivery metrics: %w", err)
	}

	metrics = models.VendorDeliveryMetrics{
		VendorID:        vendorID,
		AvgDeliveryTime: defaultAvgDeliveryMins,
		MinDeliveryTime: defaultMinDeliveryMins,
		MaxDeliveryTime: defaultMaxDeliveryMins,
		OnTimeCount:     0,
		LateCount:       0,
		TotalDeliveries: 0,
	}

	if createErr := s.db.Create(&metrics).Error; createErr != nil {
		var existing models.VendorDeliveryMetrics
		if readErr := s.db.Where("vendor_id = ?", vendorID).First(&existing).Error; readErr != nil {
			return nil, fmt.Errorf("failed to create delivery metrics: %w", createErr)
		}
		return &existing, nil
	}

	return &metrics, nil
}

// UpdateVendorRatingsCache recomputes the vendor's aggregate from all of
// its reviews. It must be called by the review-submission flow after every
// new or edited review; there is no incremental path.
//
// A vendor with zero reviews is a no-op: the cache row, if any, is left
// untouched, and none is created. Lazy creation happens on the comparison
// read path instead.
func (s *RatingsService) UpdateVendorRatingsCache(vendorID uuid.UUID) error {
	var reviews []models.ProductReview
	if err := s.db.Where("vendor_id = ?", vendorID).Find(&reviews).Error; err != nil {
		return fmt.Errorf("failed to fetch reviews: %w", err)
	}

	if len(reviews) == 0 {
		return nil
	}

	var sumQuality, sumPunctuality, sumCommunication float64
	for _, review := range reviews {
		sumQuality += float64(review.RatingQuality)
		sumPunctuality += float64(review.RatingDelay)
		sumCommunication += float64(review.RatingCommunication)
	}

	total := float64(len(reviews))
	avgQuality := sumQuality / total
	avgPunctuality := sumPunctuality / total
	avgCommunication := sumCommunication / total
	overall := (avgQuality + avgPunctuality + avgCommunication) / 3

	// Success rate comes from the order table, not from reviews.
	var totalOrders, deliveredOrders int64
	if err := s.db.Model(&models.Order{}).
		Where("seller_id = ?", vendorID).
		Count(&totalOrders).Error; err != nil {
		return fmt.Errorf("failed to count orders: %w", err)
	}
	if err := s.db.Model(&models.Order{}).
		Where("seller_id = ? AND order_status = ?", vendorID, models.OrderStatusDelivered).
		Count(&deliveredOrders).Error; err != nil {
		return fmt.Errorf("failed to count delivered orders: %w", err)
	}

	var successRate float64
	if totalOrders > 0 {
		successRate = float64(deliveredOrders) / float64(totalOrders) * 100
	}

	var ratingsCache models.VendorRatingsCache
	err := s.db.Where("vendor_id = ?", vendorID).First(&ratingsCache).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ratingsCache = models.VendorRatingsCache{
			VendorID:   vendorID,
			OnTimeRate: defaultOnTimeRate,
		}
	} else if err != nil {
		return fmt.Errorf("failed to fetch ratings cache: %w", err)
	}

	ratingsCache.AvgQualityRating = round2(avgQuality)
	ratingsCache.AvgPunctualityRating = round2(avgPunctuality)
	ratingsCache.AvgCommunicationRating = round2(avgCommunication)
	ratingsCache.OverallRating = round2(overall)
	ratingsCache.TotalReviews = len(reviews)
	ratingsCache.SuccessRate = round2(successRate)
	ratingsCache.LastUpdated = nowFunc().UTC()

	if err := s.db.Save(&ratingsCache).Error; err != nil {
		return fmt.Errorf("failed to save ratings cache: %w", err)
	}

	s.cacheClient.Delete(context.Background(), cache.VendorProfileKey(vendorID.String()))

	return nil
}

// RecordDelivery folds one completed delivery into the vendor's aggregate.
// Called by the delivery collaborator when an order reaches the customer.
func (s *RatingsService) RecordDelivery(vendorID uuid.UUID, deliveryMinutes float64, onTime bool) error {
	metrics, err := s.GetOrCreateDeliveryMetrics(vendorID)
	if err != nil {
		return err
	}

	if metrics.TotalDeliveries == 0 {
		// First real data point replaces the seeded defaults.
		metrics.AvgDeliveryTime = deliveryMinutes
		metrics.MinDeliveryTime = deliveryMinutes
		metrics.MaxDeliveryTime = deliveryMinutes
	} else {
		count := float64(metrics.TotalDeliveries)
		metrics.AvgDeliveryTime = (metrics.AvgDeliveryTime*count + deliveryMinutes) / (count + 1)
		if deliveryMinutes < metrics.MinDeliveryTime {
			metrics.MinDeliveryTime = deliveryMinutes
		}
		if deliveryMinutes > metrics.MaxDeliveryTime {
			metrics.MaxDeliveryTime = deliveryMinutes
		}
	}

	metrics.TotalDeliveries++
	if onTime {
		metrics.OnTimeCount++
	} else {
		metrics.LateCount++
	}

	if err := s.db.Save(metrics).Error; err != nil {
		return fmt.Errorf("failed to save delivery metrics: %w", err)
	}

	s.cacheClient.Delete(context.Background(), cache.VendorProfileKey(vendorID.String()))

	return nil
}
