// internal/services/recommendation_service.go
package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshmandi/marketplace-backend/internal/models"
)

// Preference types inferred from a retailer's order history.
const (
	PreferenceQualityFocused = "quality-focused"
	PreferencePriceFocused   = "price-focused"
	PreferenceBalanced       = "balanced"
)

// Recommendation weights per inferred preference.
var preferenceWeights = map[string]struct{ quality, price, delivery float64 }{
	PreferenceQualityFocused: {0.6, 0.2, 0.2},
	PreferencePriceFocused:   {0.2, 0.6, 0.2},
	PreferenceBalanced:       {0.4, 0.3, 0.3},
}

// RecommendationService picks a single vendor for a retailer based on
// their purchase history, or falls back to the highest rated vendor while
// the history is too thin to profile.
type RecommendationService struct {
	db *gorm.DB
}

func NewRecommendationService(db *gorm.DB) *RecommendationService {
	return &RecommendationService{db: db}
}

type RecommendationAnalysis struct {
	YourAvgPricePaid      float64 `json:"your_avg_price_paid"`
	YourQualityPreference float64 `json:"your_quality_preference"`
	PreferenceType        string  `json:"preference_type"`
	WhySelected           string  `json:"why_selected"`
}

type Recommendation struct {
	RecommendedVendorID uuid.UUID               `json:"recommended_vendor_id"`
	Reason              string                  `json:"reason"`
	RecommendationScore float64                 `json:"recommendation_score"`
	Analysis            *RecommendationAnalysis `json:"analysis,omitempty"`
}

// GetPersonalizedRecommendation recommends one vendor out of
// vendorsAvailable for a product, based on the retailer's delivered order
// history. Fewer than three delivered orders triggers the cold-start
// fallback. Returns nil only when vendorsAvailable is empty.
func (s *RecommendationService) GetPersonalizedRecommendation(retailerID uuid.UUID, productName string, vendorsAvailable []uuid.UUID) (*Recommendation, error) {
	var orders []models.Order
	if err := s.db.Preload("Items").
		Where("buyer_id = ? AND order_status = ?", retailerID, models.OrderStatusDelivered).
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch order history: %w", err)
	}

	if len(orders) < 3 {
		return s.coldStartRecommendation(vendorsAvailable)
	}

	// Profile the retailer from what they actually bought: the average
	// overall rating of the vendors they ordered from, and the average
	// per-unit price they paid. Orders whose seller has no ratings cache
	// are skipped entirely and do not count toward either average.
	var ratingSum, priceSum float64
	var sampled int
	for i := range orders {
		order := &orders[i]

		var ratingsCache models.VendorRatingsCache
		err := s.db.Where("vendor_id = ?", order.SellerID).First(&ratingsCache).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to fetch vendor ratings: %w", err)
		}

		quantity := 1.0
		if len(order.Items) > 0 && order.Items[0].Quantity > 1 {
			quantity = order.Items[0].Quantity
		}

		ratingSum += ratingsCache.OverallRating
		priceSum += order.TotalAmount / quantity
		sampled++
	}

	if sampled == 0 {
		return s.coldStartRecommendation(vendorsAvailable)
	}

	avgRating := ratingSum / float64(sampled)
	avgPrice := priceSum / float64(sampled)

	preference := PreferenceBalanced
	switch {
	case avgRating >= 4.5:
		preference = PreferenceQualityFocused
	case avgPrice < 45:
		preference = PreferencePriceFocused
	}
	weights := preferenceWeights[preference]

	candidates, err := s.candidateProducts(productName, vendorsAvailable)
	if err != nil {
		return nil, err
	}

	// Score candidates that have both a ratings cache and delivery
	// metrics. Vendors missing either are excluded, not defaulted.
	var best *models.Product
	var bestScore float64
	var bestCache models.VendorRatingsCache
	for i := range candidates {
		candidate := &candidates[i]

		var ratingsCache models.VendorRatingsCache
		if err := s.db.Where("vendor_id = ?", candidate.VendorID).First(&ratingsCache).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to fetch vendor ratings: %w", err)
		}

		var metrics models.VendorDeliveryMetrics
		if err := s.db.Where("vendor_id = ?", candidate.VendorID).First(&metrics).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to fetch delivery metrics: %w", err)
		}

		qualityScore := ratingsCache.OverallRating / 5
		priceScore := math.Max(0, 1-candidate.Price/100)
		deliveryScore := math.Max(0, 1-metrics.AvgDeliveryTime/480)

		score := qualityScore*weights.quality +
			priceScore*weights.price +
			deliveryScore*weights.delivery

		if best == nil || score > bestScore {
			best = candidate
			bestScore = score
			bestCache = ratingsCache
		}
	}

	if best == nil {
		return s.coldStartRecommendation(vendorsAvailable)
	}

	var reason string
	switch preference {
	case PreferenceQualityFocused:
		reason = fmt.Sprintf("You prefer high-quality vendors. This vendor has a %.1f★ rating.", bestCache.OverallRating)
	case PreferencePriceFocused:
		reason = fmt.Sprintf("You prefer competitive pricing. This vendor offers ₹%.0f/%s.", best.Price, productName)
	default:
		reason = fmt.Sprintf("Best balanced option: %.1f★ quality at ₹%.0f.", bestCache.OverallRating, best.Price)
	}

	return &Recommendation{
		RecommendedVendorID: best.VendorID,
		Reason:              reason,
		RecommendationScore: round2(bestScore),
		Analysis: &RecommendationAnalysis{
			YourAvgPricePaid:      round2(avgPrice),
			YourQualityPreference: round2(avgRating),
			PreferenceType:        preference,
			WhySelected:           reason,
		},
	}, nil
}

// coldStartRecommendation picks the highest rated vendor out of
// vendorsAvailable, with no product requirement. Vendors without a
// ratings cache are passed over; if none has one, the first vendor wins.
func (s *RecommendationService) coldStartRecommendation(vendorsAvailable []uuid.UUID) (*Recommendation, error) {
	if len(vendorsAvailable) == 0 {
		return nil, nil
	}

	best := uuid.Nil
	var bestRating float64
	for _, vendorID := range vendorsAvailable {
		var ratingsCache models.VendorRatingsCache
		if err := s.db.Where("vendor_id = ?", vendorID).First(&ratingsCache).Error; err != nil {
			continue
		}
		if ratingsCache.OverallRating > bestRating {
			best = vendorID
			bestRating = ratingsCache.OverallRating
		}
	}
	if best == uuid.Nil {
		best = vendorsAvailable[0]
	}

	return &Recommendation{
		RecommendedVendorID: best,
		Reason:              "Highest rated vendor (recommended for new customers)",
		RecommendationScore: 0.8,
	}, nil
}

// candidateProducts resolves each available vendor to their active product
// with this exact name, in the order the vendors were given. Vendors
// without one drop out of candidacy.
func (s *RecommendationService) candidateProducts(productName string, vendorsAvailable []uuid.UUID) ([]models.Product, error) {
	products := make([]models.Product, 0, len(vendorsAvailable))
	for _, vendorID := range vendorsAvailable {
		var product models.Product
		err := s.db.
			Where("vendor_id = ?", vendorID).
			Where("product_name = ?", productName).
			Where("is_active = ?", true).
			Order("created_at").
			First(&product).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to fetch candidate products: %w", err)
		}
		products = append(products, product)
	}
	return products, nil
}
