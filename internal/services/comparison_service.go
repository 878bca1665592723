// internal/services/comparison_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/freshmandi/marketplace-backend/internal/cache"
	"github.com/freshmandi/marketplace-backend/internal/config"
	"github.com/freshmandi/marketplace-backend/internal/models"
)

// Sort criteria accepted by SearchProductsWithVendors. Anything else
// leaves the result order unchanged.
const (
	SortByPrice        = "price"
	SortByRating       = "rating"
	SortByDeliveryTime = "delivery_time"
	SortByValue        = "value"
)

// Value score weights: quality dominates, then price, then speed.
const (
	valueWeightQuality  = 0.5
	valueWeightPrice    = 0.3
	valueWeightDelivery = 0.2
)

// ComparisonService compares vendors selling the same product: value
// scoring, tier classification, comparison matrices, and the analytics log.
type ComparisonService struct {
	db          *gorm.DB
	ratings     *RatingsService
	cacheClient *cache.Client
	cfg         config.ComparisonConfig
}

func NewComparisonService(db *gorm.DB, ratings *RatingsService, cacheClient *cache.Client, cfg config.ComparisonConfig) *ComparisonService {
	if cfg.RecentReviewCount <= 0 {
		cfg.RecentReviewCount = 3
	}
	if cfg.ProfileReviewCount <= 0 {
		cfg.ProfileReviewCount = 10
	}
	return &ComparisonService{
		db:          db,
		ratings:     ratings,
		cacheClient: cacheClient,
		cfg:         cfg,
	}
}

type SearchFilters struct {
	MinPrice        *float64 `json:"min_price,omitempty"`
	MaxPrice        *float64 `json:"max_price,omitempty"`
	MinRating       *float64 `json:"min_rating,omitempty"`
	MaxDeliveryTime *float64 `json:"max_delivery_time,omitempty"`
}

type RatingBreakdown struct {
	Overall       float64 `json:"overall"`
	Quality       float64 `json:"quality"`
	Punctuality   float64 `json:"punctuality"`
	Communication float64 `json:"communication"`
}

type VendorMetrics struct {
	SuccessRate        float64 `json:"success_rate"`
	OnTimeRate         float64 `json:"on_time_rate"`
	RepeatCustomerRate float64 `json:"repeat_customer_rate"`
	AvgDeliveryTime    float64 `json:"avg_delivery_time"`
	TotalReviews       int     `json:"total_reviews"`
}

type ComparisonProductDetails struct {
	Freshness      models.FreshnessLevel `json:"freshness"`
	ExpiryDays     int                   `json:"expiry_days"`
	QualityTier    models.QualityTier    `json:"quality_tier"`
	MOQ            float64               `json:"moq"`
	Certifications []string              `json:"certifications"`
	StockQuantity  float64               `json:"stock_quantity"`
}

type ReviewSnippet struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
	Date    string  `json:"date"`
}

// VendorEntry is one vendor's row in a comparison result.
type VendorEntry struct {
	VendorID       uuid.UUID                `json:"vendor_id"`
	VendorName     string                   `json:"vendor_name"`
	ProductID      uuid.UUID                `json:"product_id"`
	Price          float64                  `json:"price"`
	Unit           string                   `json:"unit"`
	MOQ            float64                  `json:"moq"`
	Rating         RatingBreakdown          `json:"rating"`
	Metrics        VendorMetrics            `json:"metrics"`
	ProductDetails ComparisonProductDetails `json:"product_details"`
	RecentReviews  []ReviewSnippet          `json:"recent_reviews"`
	Tier           models.VendorTier        `json:"tier"`
	ValueScore     float64                  `json:"value_score"`
}

type SearchResult struct {
	ProductName string        `json:"product_name"`
	VendorCount int           `json:"vendor_count"`
	Vendors     []VendorEntry `json:"vendors"`
}

// SearchProductsWithVendors finds every vendor selling a product whose name
// contains productName (case-insensitive) and returns one comparison entry
// per matching product. Only active products with stock are eligible.
func (s *ComparisonService) SearchProductsWithVendors(productName string, filters *SearchFilters, sortBy string) (*SearchResult, error) {
	query := s.db.Preload("Vendor").
		Where("LOWER(product_name) LIKE ?", "%"+strings.ToLower(productName)+"%").
		Where("is_active = ?", true).
		Where("stock_quantity > 0")

	if filters != nil {
		if filters.MinPrice != nil {
			query = query.Where("price >= ?", *filters.MinPrice)
		}
		if filters.MaxPrice != nil {
			query = query.Where("price <= ?", *filters.MaxPrice)
		}
		// min_rating and max_delivery_time need the joined cache/metrics
		// data, so they are applied after entry construction.
	}

	var products []models.Product
	if err := query.Order("created_at").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	entries := make([]VendorEntry, 0, len(products))
	for i := range products {
		entry, err := s.buildVendorEntry(&products[i])
		if err != nil {
			return nil, err
		}

		if filters != nil {
			if filters.MinRating != nil && entry.Rating.Overall < *filters.MinRating {
				continue
			}
			if filters.MaxDeliveryTime != nil && entry.Metrics.AvgDeliveryTime > *filters.MaxDeliveryTime {
				continue
			}
		}

		entries = append(entries, *entry)
	}

	sortVendorEntries(entries, sortBy)

	return &SearchResult{
		ProductName: productName,
		VendorCount: len(entries),
		Vendors:     entries,
	}, nil
}

func (s *ComparisonService) buildVendorEntry(product *models.Product) (*VendorEntry, error) {
	vendor := product.Vendor
	if vendor.ID == uuid.Nil {
		if err := s.db.First(&vendor, "id = ?", product.VendorID).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch vendor: %w", err)
		}
	}

	ratingsCache, err := s.ratings.GetOrCreateRatingsCache(product.VendorID)
	if err != nil {
		return nil, err
	}

	deliveryMetrics, err := s.ratings.GetOrCreateDeliveryMetrics(product.VendorID)
	if err != nil {
		return nil, err
	}

	var recentReviews []models.ProductReview
	if err := s.db.Where("vendor_id = ?", product.VendorID).
		Order("created_at DESC").
		Limit(s.cfg.RecentReviewCount).
		Find(&recentReviews).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent reviews: %w", err)
	}

	snippets := make([]ReviewSnippet, 0, len(recentReviews))
	for _, review := range recentReviews {
		comment := review.Comment
		if comment == "" {
			comment = "Great service"
		}
		snippets = append(snippets, ReviewSnippet{
			Rating:  review.OverallRating(),
			Comment: comment,
			Date:    review.CreatedAt.Format("2006-01-02"),
		})
	}

	certifications := []string{}
	if product.Certification != "" {
		for _, tag := range strings.Split(product.Certification, ",") {
			certifications = append(certifications, strings.TrimSpace(tag))
		}
	}

	return &VendorEntry{
		VendorID:   vendor.ID,
		VendorName: vendor.DisplayName(),
		ProductID:  product.ID,
		Price:      product.Price,
		Unit:       product.Unit,
		MOQ:        product.MOQ(),
		Rating: RatingBreakdown{
			Overall:       round2(ratingsCache.OverallRating),
			Quality:       round2(ratingsCache.AvgQualityRating),
			Punctuality:   round2(ratingsCache.AvgPunctualityRating),
			Communication: round2(ratingsCache.AvgCommunicationRating),
		},
		Metrics: VendorMetrics{
			SuccessRate:        round2(ratingsCache.SuccessRate),
			OnTimeRate:         round2(ratingsCache.OnTimeRate),
			RepeatCustomerRate: round2(ratingsCache.RepeatCustomerRate),
			AvgDeliveryTime:    deliveryMetrics.AvgDeliveryTime,
			TotalReviews:       ratingsCache.TotalReviews,
		},
		ProductDetails: ComparisonProductDetails{
			Freshness:      product.FreshnessLevel,
			ExpiryDays:     product.ExpiryDaysRemaining(nowFunc()),
			QualityTier:    product.QualityTier,
			MOQ:            product.MOQ(),
			Certifications: certifications,
			StockQuantity:  product.StockQuantity,
		},
		RecentReviews: snippets,
		Tier:          DetermineVendorTier(product.Price, ratingsCache.OverallRating, deliveryMetrics.AvgDeliveryTime),
		ValueScore:    CalculateValueScore(product.Price, ratingsCache.OverallRating, deliveryMetrics.AvgDeliveryTime),
	}, nil
}

// CalculateValueScore blends quality, price, and delivery speed into a
// composite 0-10 score, rounded to one decimal.
//
// The price inverse (100 - price) is scaled for typical per-unit prices in
// the tens of currency units and is intentionally not normalized against
// the actual price range of the compared set.
func CalculateValueScore(price, qualityRating, deliveryTimeMinutes float64) float64 {
	qualityScore := qualityRating * 20
	priceScore := clamp(100-price, 0, 100)
	deliveryScore := clamp(100-deliveryTimeMinutes/3.6, 0, 100)

	weighted := qualityScore*valueWeightQuality +
		priceScore*valueWeightPrice +
		deliveryScore*valueWeightDelivery

	return round1(weighted / 10)
}

// DetermineVendorTier classifies a vendor by rating and delivery speed.
// PREMIUM needs 4.7+ and four-hour delivery; GOOD needs 4.3+ and six-hour
// delivery. The price parameter is accepted for interface symmetry but
// does not participate in the classification.
func DetermineVendorTier(price, rating, deliveryTimeMinutes float64) models.VendorTier {
	switch {
	case rating >= 4.7 && deliveryTimeMinutes <= 240:
		return models.VendorTierPremium
	case rating >= 4.3 && deliveryTimeMinutes <= 360:
		return models.VendorTierGood
	default:
		return models.VendorTierBudget
	}
}

func sortVendorEntries(entries []VendorEntry, sortBy string) {
	switch sortBy {
	case SortByPrice:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Price < entries[j].Price
		})
	case SortByRating:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Rating.Overall > entries[j].Rating.Overall
		})
	case SortByDeliveryTime:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Metrics.AvgDeliveryTime < entries[j].Metrics.AvgDeliveryTime
		})
	case SortByValue:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].ValueScore > entries[j].ValueScore
		})
	}
}

type MatrixRow struct {
	VendorID      uuid.UUID             `json:"vendor_id"`
	Name          string                `json:"name"`
	Price         float64               `json:"price"`
	QualityRating float64               `json:"quality_rating"`
	DeliveryHours float64               `json:"delivery_hours"`
	SuccessRate   float64               `json:"success_rate"`
	ReviewsCount  int                   `json:"reviews_count"`
	Freshness     models.FreshnessLevel `json:"freshness"`
	Tier          models.VendorTier     `json:"tier"`
}

type ValueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type VendorAnalysis struct {
	CheapestVendor        uuid.UUID  `json:"cheapest_vendor"`
	BestQualityVendor     uuid.UUID  `json:"best_quality_vendor"`
	FastestDeliveryVendor uuid.UUID  `json:"fastest_delivery_vendor"`
	BestValueVendor       uuid.UUID  `json:"best_value_vendor"`
	MostReliableVendor    uuid.UUID  `json:"most_reliable_vendor"`
	PriceRange            ValueRange `json:"price_range"`
	RatingRange           ValueRange `json:"rating_range"`
}

type AnalysisResult struct {
	ProductName             string          `json:"product_name"`
	VendorsComparisonMatrix []MatrixRow     `json:"vendors_comparison_matrix"`
	Analysis                *VendorAnalysis `json:"analysis,omitempty"`
}

// GetComparisonAnalysis builds a flattened comparison matrix for every
// vendor selling the product, plus a best-in-category summary. An empty
// vendor set yields an empty matrix, not an error.
func (s *ComparisonService) GetComparisonAnalysis(productName string) (*AnalysisResult, error) {
	result, err := s.SearchProductsWithVendors(productName, nil, SortByValue)
	if err != nil {
		return nil, err
	}

	vendors := result.Vendors
	if len(vendors) == 0 {
		return &AnalysisResult{
			ProductName:             productName,
			VendorsComparisonMatrix: []MatrixRow{},
		}, nil
	}

	matrix := make([]MatrixRow, 0, len(vendors))
	for _, vendor := range vendors {
		matrix = append(matrix, MatrixRow{
			VendorID:      vendor.VendorID,
			Name:          vendor.VendorName,
			Price:         vendor.Price,
			QualityRating: vendor.Rating.Overall,
			DeliveryHours: round1(vendor.Metrics.AvgDeliveryTime / 60),
			SuccessRate:   vendor.Metrics.SuccessRate,
			ReviewsCount:  vendor.Metrics.TotalReviews,
			Freshness:     vendor.ProductDetails.Freshness,
			Tier:          vendor.Tier,
		})
	}

	// Best-in-category by linear scan; first encountered wins ties.
	cheapest, bestQuality, fastest, bestValue, mostReliable := &vendors[0], &vendors[0], &vendors[0], &vendors[0], &vendors[0]
	minRating, maxPrice := vendors[0].Rating.Overall, vendors[0].Price
	for i := 1; i < len(vendors); i++ {
		v := &vendors[i]
		if v.Price < cheapest.Price {
			cheapest = v
		}
		if v.Rating.Overall > bestQuality.Rating.Overall {
			bestQuality = v
		}
		if v.Metrics.AvgDeliveryTime < fastest.Metrics.AvgDeliveryTime {
			fastest = v
		}
		if v.ValueScore > bestValue.ValueScore {
			bestValue = v
		}
		if v.Metrics.SuccessRate > mostReliable.Metrics.SuccessRate {
			mostReliable = v
		}
		if v.Rating.Overall < minRating {
			minRating = v.Rating.Overall
		}
		if v.Price > maxPrice {
			maxPrice = v.Price
		}
	}

	return &AnalysisResult{
		ProductName:             productName,
		VendorsComparisonMatrix: matrix,
		Analysis: &VendorAnalysis{
			CheapestVendor:        cheapest.VendorID,
			BestQualityVendor:     bestQuality.VendorID,
			FastestDeliveryVendor: fastest.VendorID,
			BestValueVendor:       bestValue.VendorID,
			MostReliableVendor:    mostReliable.VendorID,
			PriceRange:            ValueRange{Min: cheapest.Price, Max: maxPrice},
			RatingRange:           ValueRange{Min: minRating, Max: bestQuality.Rating.Overall},
		},
	}, nil
}

type ProfileRatings struct {
	Quality       float64 `json:"quality"`
	Punctuality   float64 `json:"punctuality"`
	Communication float64 `json:"communication"`
	Overall       float64 `json:"overall"`
}

type ProfilePerformance struct {
	TotalOrders     int64   `json:"total_orders"`
	SuccessRate     float64 `json:"success_rate"`
	RepeatCustomers float64 `json:"repeat_customers"`
	AvgRating       float64 `json:"avg_rating"`
	OnTimeDelivery  float64 `json:"on_time_delivery"`
}

type ProfileDeliveryMetrics struct {
	AvgTimeMinutes float64 `json:"avg_time_minutes"`
	AvgTimeHours   float64 `json:"avg_time_hours"`
	MinTimeMinutes float64 `json:"min_time_minutes"`
	MaxTimeMinutes float64 `json:"max_time_minutes"`
	OnTimeCount    int     `json:"on_time_count"`
	LateCount      int     `json:"late_count"`
}

type ProfileReview struct {
	Reviewer      string  `json:"reviewer"`
	Rating        float64 `json:"rating"`
	Quality       int     `json:"quality"`
	Punctuality   int     `json:"punctuality"`
	Communication int     `json:"communication"`
	Comment       string  `json:"comment"`
	Date          string  `json:"date"`
}

type VendorProfile struct {
	VendorID        uuid.UUID              `json:"vendor_id"`
	Name            string                 `json:"name"`
	JoinedDate      string                 `json:"joined_date"`
	Location        string                 `json:"location"`
	Phone           string                 `json:"phone"`
	City            string                 `json:"city"`
	Ratings         ProfileRatings         `json:"ratings"`
	Performance     ProfilePerformance     `json:"performance"`
	DeliveryMetrics ProfileDeliveryMetrics `json:"delivery_metrics"`
	RecentReviews   []ProfileReview        `json:"recent_reviews"`
	TotalReviews    int                    `json:"total_reviews"`
}

// GetVendorProfile returns the full metrics profile for a vendor, or nil
// when the id is unknown or does not belong to a vendor account.
func (s *ComparisonService) GetVendorProfile(vendorID uuid.UUID) (*VendorProfile, error) {
	ctx := context.Background()
	cacheKey := cache.VendorProfileKey(vendorID.String())

	var cached VendorProfile
	if s.cacheClient.GetJSON(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var vendor models.User
	if err := s.db.First(&vendor, "id = ?", vendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch vendor: %w", err)
	}
	if vendor.UserType != models.UserTypeVendor {
		return nil, nil
	}

	ratingsCache, err := s.ratings.GetOrCreateRatingsCache(vendorID)
	if err != nil {
		return nil, err
	}
	deliveryMetrics, err := s.ratings.GetOrCreateDeliveryMetrics(vendorID)
	if err != nil {
		return nil, err
	}

	var totalOrders int64
	if err := s.db.Model(&models.Order{}).
		Where("seller_id = ?", vendorID).
		Count(&totalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var recentReviews []models.ProductReview
	if err := s.db.Preload("Retailer").
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Limit(s.cfg.ProfileReviewCount).
		Find(&recentReviews).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	reviews := make([]ProfileReview, 0, len(recentReviews))
	for _, review := range recentReviews {
		if review.Retailer.ID == uuid.Nil {
			continue
		}
		comment := review.Comment
		if comment == "" {
			comment = "Great service"
		}
		reviews = append(reviews, ProfileReview{
			Reviewer:      fmt.Sprintf("%s (Retailer)", review.Retailer.Name),
			Rating:        round1(review.OverallRating()),
			Quality:       review.RatingQuality,
			Punctuality:   review.RatingDelay,
			Communication: review.RatingCommunication,
			Comment:       comment,
			Date:          review.CreatedAt.Format("2006-01-02"),
		})
	}

	location := vendor.Address
	if location == "" {
		location = "Location not specified"
	}

	profile := &VendorProfile{
		VendorID:   vendor.ID,
		Name:       vendor.DisplayName(),
		JoinedDate: vendor.CreatedAt.Format("2006-01-02"),
		Location:   location,
		Phone:      vendor.Phone,
		City:       vendor.City,
		Ratings: ProfileRatings{
			Quality:       round2(ratingsCache.AvgQualityRating),
			Punctuality:   round2(ratingsCache.AvgPunctualityRating),
			Communication: round2(ratingsCache.AvgCommunicationRating),
			Overall:       round2(ratingsCache.OverallRating),
		},
		Performance: ProfilePerformance{
			TotalOrders:     totalOrders,
			SuccessRate:     round2(ratingsCache.SuccessRate),
			RepeatCustomers: round2(ratingsCache.RepeatCustomerRate),
			AvgRating:       round2(ratingsCache.OverallRating),
			OnTimeDelivery:  round2(ratingsCache.OnTimeRate),
		},
		DeliveryMetrics: ProfileDeliveryMetrics{
			AvgTimeMinutes: deliveryMetrics.AvgDeliveryTime,
			AvgTimeHours:   round1(deliveryMetrics.AvgDeliveryTime / 60),
			MinTimeMinutes: deliveryMetrics.MinDeliveryTime,
			MaxTimeMinutes: deliveryMetrics.MaxDeliveryTime,
			OnTimeCount:    deliveryMetrics.OnTimeCount,
			LateCount:      deliveryMetrics.LateCount,
		},
		RecentReviews: reviews,
		TotalReviews:  ratingsCache.TotalReviews,
	}

	s.cacheClient.SetJSON(ctx, cacheKey, profile)

	return profile, nil
}

// LogComparison appends one comparison event to the analytics log and
// returns its id. Required-field validation belongs to the caller.
func (s *ComparisonService) LogComparison(retailerID uuid.UUID, productName string, vendorsCompared []uuid.UUID, selectedVendorID *uuid.UUID, sortPreference string, filtersApplied map[string]interface{}) (uuid.UUID, error) {
	comparisonID := uuid.New()

	vendors := make(pq.StringArray, 0, len(vendorsCompared))
	for _, id := range vendorsCompared {
		vendors = append(vendors, id.String())
	}

	record := &models.ProductComparison{
		ComparisonID:     comparisonID,
		RetailerID:       retailerID,
		ProductName:      productName,
		VendorsCompared:  vendors,
		SelectedVendorID: selectedVendorID,
		SortPreference:   sortPreference,
		FiltersApplied:   models.JSONB(filtersApplied),
	}

	if err := s.db.Create(record).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to log comparison: %w", err)
	}

	return comparisonID, nil
}

// Helpers shared by the comparison and recommendation engines.

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
