// internal/services/recommendation_service_test.go
package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type RecommendationServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *RecommendationService
}

func (suite *RecommendationServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewRecommendationService(suite.db)
}

func (suite *RecommendationServiceTestSuite) TestNoVendorsAvailable() {
	retailer := createTestRetailer(suite.T(), suite.db, "Buyer")

	recommendation, err := suite.service.GetPersonalizedRecommendation(retailer.ID, "Dragonfruit", nil)
	suite.NoError(err)
	suite.Nil(recommendation)
}

func (suite *RecommendationServiceTestSuite) TestColdStartNeedsNoProductListing() {
	retailer := createTestRetailer(suite.T(), suite.db, "Buyer")
	vendor := createTestVendor(suite.T(), suite.db, "Unlisted Vendor")
	createTestRatingsCache(suite.T(), suite.db, vendor.ID, 4.9)

	// Cold start ranks the available vendors by rating alone, even when
	// none of them lists the product
	recommendation, err := suite.service.GetPersonalizedRecommendation(retailer.ID, "Dragonfruit", []uuid.UUID{vendor.ID})
	suite.NoError(err)
	suite.NotNil(recommendation)
	suite.Equal(vendor.ID, recommendation.RecommendedVendorID)
	suite.Equal(0.8, recommendation.RecommendationScore)
}

func (suite *RecommendationServiceTestSuite) TestColdStartPicksHighestRated() {
	retailer := createTestRetailer(suite.T(), suite.db, "New Buyer")
	vendorA := createTestVendor(suite.T(), suite.db, "Vendor A")
	vendorB := createTestVendor(suite.T(), suite.db, "Vendor B")

	createTestProduct(suite.T(), suite.db, vendorA.ID, "Tomatoes", 40)
	createTestProduct(suite.T(), suite.db, vendorB.ID, "Tomatoes", 35)

	createTestRatingsCache(suite.T(), suite.db, vendorA.ID, 4.9)
	createTestRatingsCache(suite.T(), suite.db, vendorB.ID, 3.0)

	// A top-rated vendor outside the available set must not win
	vendorC := createTestVendor(suite.T(), suite.db, "Vendor C")
	createTestProduct(suite.T(), suite.db, vendorC.ID, "Tomatoes", 25)
	createTestRatingsCache(suite.T(), suite.db, vendorC.ID, 5.0)

	recommendation, err := suite.service.GetPersonalizedRecommendation(retailer.ID, "Tomatoes", []uuid.UUID{vendorA.ID, vendorB.ID})
	suite.NoError(err)
	suite.NotNil(recommendation)
	suite.Equal(vendorA.ID, recommendation.RecommendedVendorID)
	suite.Equal("Highest rated vendor (recommended for new customers)", recommendation.Reason)
	suite.Equal(0.8, recommendation.RecommendationScore)
	suite.Nil(recommendation.Analysis)
}

func (suite *RecommendationServiceTestSuite) TestColdStartDeterministicForThinHistories() {
	retailer := createTestRetailer(suite.T(), suite.db, "Thin Buyer")
	vendorA := createTestVendor(suite.T(), suite.db, "Vendor A")
	vendorB := createTestVendor(suite.T(), suite.db, "Vendor B")

	createTestProduct(suite.T(), suite.db, vendorA.ID, "Tomatoes", 40)
	createTestProduct(suite.T(), suite.db, vendorB.ID, "Tomatoes", 35)
	createTestRatingsCache(suite.T(), suite.db, vendorA.ID, 4.9)
	createTestRatingsCache(suite.T(), suite.db, vendorB.ID, 3.0)

	// Zero, one, and two delivered orders all stay in cold start
	for orders := 0; orders < 3; orders++ {
		recommendation, err := suite.service.GetPersonalizedRecommendation(retailer.ID, "Tomatoes", []uuid.UUID{vendorA.ID, vendorB.ID})
		suite.NoError(err)
		suite.NotNil(recommendation)
		suite.Equal(vendorA.ID, recommendation.RecommendedVendorID)
		suite.Equal(0.8, recommendation.RecommendationScore)

		createDeliveredOrder(suite.T(), suite.db, retailer.ID, vendorA.ID, 80, 2)
	}
}

func (suite *RecommendationServiceTestSuite) TestColdStartTieGoesToFirstVendor() {
	retailer := createTestRetailer(suite.T(), suite.db, "Tie Buyer")
	vendorA := createTestVendor(suite.T(), suite.db, "Vendor A")
	vendorB := createTestVendor(suite.T(), suite.db, "Vendor B")

	createTestProduct(suite.T(), suite.db, vendorA.ID, "Onions", 30)
	createTestProduct(suite.T(), suite.db, vendorB.ID, "Onions", 30)
	createTestRatingsCache(suite.T(), suite.db, vendorA.ID, 4.5)
	createTestRatingsCache(suite.T(), suite.db, vendorB.ID, 4.5)

	recommendation, err := suite.service.GetPersonalizedRecommendation(retailer.ID, "Onions", []uuid.UUID{vendorA.ID, vendorB.ID})
	suite.NoError(err)
	suite.NotNil(recommendation)
	suite.Equal(vendorA.ID, recommendation.RecommendedVendorID)
}

func (suite *RecommendationServiceTestSuite) TestQualityFocusedPreference() {
	retailer := createTestRetailer(suite.T(), suite.db, "Quality Buyer")
	historyVendor := createTestVendor(suite.T(), suite.db, "History Vendor")
	createTestRatingsCache(suite.T(), suite.db, historyVendor.ID, 4.8)

	// Three delivered orders from a high-quality vendor profile the buyer
	// as quality focused regardless of price
	for i := 0; i < 3; i++ {
		createDeliveredOrder(suite.T(), suite.db, retailer.ID, historyVendor.ID, 120, 2)
	}

	candidateA := createTestVendor(suite.T(), suite.db, "Candidate A")
	candidateB := createTestVendor(suite.T(), suite.db, "Candidate B")
	createTestProduct(suite.T(), suite.db, candidateA.ID, "Spinach", 30)
	createTestProduct(suite.T(), suite.db, candidateB.ID, "Spinach", 28)
	createTestRatingsCache(suite.T(), suite.db, candidateA.ID, 4.9)
	createTestDeliveryMetrics(suite.T(), suite.db, candidateA.ID, 180)
	createTestRatingsCache(suite.T(), suite.db, candidateB.ID, 3.5)
	createTestDeliveryMetrics(suite.T(), suite.db, candidateB.ID, 180)

	recommendation, err := suite.service.GetPersonalizedRecommendation(retailer.ID, "Spinach", []uuid.UUID{candidateA.ID, candidateB.ID})
	suite.NoError(err)
	suite.NotNil(recommendation)
	suite.Equal(candidateA.ID, recommendation.RecommendedVendorID)
	suite.NotNil(recommendation.Analysis)
	suite.Equal(PreferenceQualityFocused, recommendation.Analysis.PreferenceType)
	suite.Contains(recommendation.Reason, "high-quality")
	suite.Contains(recommendation.Reason, "4.9")

	// Score is the weighted candidate score, bounded to [0, 1]
	suite.Greater(recommendation.RecommendationScore, 0.0)
	suite.LessOrEqual(recommendation.RecommendationScore, 1.0)
}

func (suite *RecommendationServiceTestSuite) TestPriceFocusedPreference() {
	retailer := createTestRetailer(suite.T(), suite.db, "Budget Buyer")
	historyVendor := createTestVendor(suite.T(), suite.db, "Cheap History Vendor")
	createTestRatingsCache(suite.T(), suite.db, historyVendor.ID, 3.9)

	// Low per-unit spend with mid-tier quality profiles the buyer as
	// price focused
	for i := 0; i < 3; i++ {
		createDeliveredOrder(suite.T(), suite.db, retailer.ID, historyVendor.ID, 60, 2)
	}

	cheapCandidate := createTestVendor(suite.T(), suite.db, "Cheap Candidate")
	dearCandidate := createTestVendor(suite.T(), suite.db, "Dear Candidate")
	createTestProduct(suite.T(), suite.db, cheapCandidate.ID, "Potatoes", 18)
	createTestProduct(suite.T(), suite.db, dearCandidate.ID, "Potatoes", 70)
	createTestRatingsCache(suite.T(), suite.db, cheapCandidate.ID, 4.0)
	createTestDeliveryMetrics(suite.T(), suite.db, cheapCandidate.ID, 240)
	createTestRatingsCache(suite.T(), suite.db, dearCandidate.ID, 4.1)
	createTestDeliveryMetrics(suite.T(), suite.db, dearCandidate.ID, 240)

	recommendation, err := suite.service.GetPersonalizedRecommendation(retailer.ID, "Potatoes", []uuid.UUID{cheapCandidate.ID, dearCandidate.ID})
	suite.NoError(err)
	suite.NotNil(recommendation)
	suite.Equal(cheapCandidate.ID, recommendation.RecommendedVendorID)
	suite.Equal(PreferencePriceFocused, recommendation.Analysis.PreferenceType)
	suite.Contains(recommendation.Reason, "₹18")
	suite.Equal(30.0, recommendation.Analysis.YourAvgPricePaid)
}

func (suite *RecommendationServiceTestSuite) TestCandidatesWithoutMetricsAreExcluded() {
	retailer := createTestRetailer(suite.T(), suite.db, "Careful Buyer")
	historyVendor := createTestVendor(suite.T(), suite.db, "History Vendor")
	createTestRatingsCache(suite.T(), suite.db, historyVendor.ID, 4.8)
	for i := 0; i < 3; i++ {
		createDeliveredOrder(suite.T(), suite.db, retailer.ID, historyVendor.ID, 120, 2)
	}

	withMetrics := createTestVendor(suite.T(), suite.db, "Has Metrics")
	withoutMetrics := createTestVendor(suite.T(), suite.db, "No Metrics")
	createTestProduct(suite.T(), suite.db, withMetrics.ID, "Carrots", 35)
	createTestProduct(suite.T(), suite.db, withoutMetrics.ID, "Carrots", 10)
	createTestRatingsCache(suite.T(), suite.db, withMetrics.ID, 4.0)
	createTestDeliveryMetrics(suite.T(), suite.db, withMetrics.ID, 240)
	// withoutMetrics: no cache and no delivery metrics rows on purpose

	recommendation, err := suite.service.GetPersonalizedRecommendation(retailer.ID, "Carrots", []uuid.UUID{withMetrics.ID, withoutMetrics.ID})
	suite.NoError(err)
	suite.NotNil(recommendation)
	suite.Equal(withMetrics.ID, recommendation.RecommendedVendorID)
}

func (suite *RecommendationServiceTestSuite) TestExactNameMatchForCandidates() {
	retailer := createTestRetailer(suite.T(), suite.db, "Exact Buyer")
	historyVendor := createTestVendor(suite.T(), suite.db, "History Vendor")
	createTestRatingsCache(suite.T(), suite.db, historyVendor.ID, 4.8)
	for i := 0; i < 3; i++ {
		createDeliveredOrder(suite.T(), suite.db, retailer.ID, historyVendor.ID, 120, 2)
	}

	vendor := createTestVendor(suite.T(), suite.db, "Vendor")
	createTestProduct(suite.T(), suite.db, vendor.ID, "Cherry Tomatoes", 55)
	createTestRatingsCache(suite.T(), suite.db, vendor.ID, 4.6)
	createTestDeliveryMetrics(suite.T(), suite.db, vendor.ID, 210)

	// Substring matching is for search only; without an exact-name
	// listing the vendor is not a scored candidate and the engine drops
	// back to the cold-start ranking
	recommendation, err := suite.service.GetPersonalizedRecommendation(retailer.ID, "Tomatoes", []uuid.UUID{vendor.ID})
	suite.NoError(err)
	suite.NotNil(recommendation)
	suite.Equal(vendor.ID, recommendation.RecommendedVendorID)
	suite.Equal(0.8, recommendation.RecommendationScore)
	suite.Nil(recommendation.Analysis)

	recommendation, err = suite.service.GetPersonalizedRecommendation(retailer.ID, "Cherry Tomatoes", []uuid.UUID{vendor.ID})
	suite.NoError(err)
	suite.NotNil(recommendation)
	suite.Equal(vendor.ID, recommendation.RecommendedVendorID)
	suite.NotNil(recommendation.Analysis)
}

func (suite *RecommendationServiceTestSuite) TestBalancedReasonMentionsQualityAndPrice() {
	retailer := createTestRetailer(suite.T(), suite.db, "Balanced Buyer")
	historyVendor := createTestVendor(suite.T(), suite.db, "Mid Vendor")
	createTestRatingsCache(suite.T(), suite.db, historyVendor.ID, 4.2)

	// Mid quality and above-threshold spend lands in the balanced bucket
	for i := 0; i < 3; i++ {
		createDeliveredOrder(suite.T(), suite.db, retailer.ID, historyVendor.ID, 120, 2)
	}

	candidate := createTestVendor(suite.T(), suite.db, "Candidate")
	createTestProduct(suite.T(), suite.db, candidate.ID, "Okra", 48)
	createTestRatingsCache(suite.T(), suite.db, candidate.ID, 4.4)
	createTestDeliveryMetrics(suite.T(), suite.db, candidate.ID, 210)

	recommendation, err := suite.service.GetPersonalizedRecommendation(retailer.ID, "Okra", []uuid.UUID{candidate.ID})
	suite.NoError(err)
	suite.NotNil(recommendation)
	suite.Equal(PreferenceBalanced, recommendation.Analysis.PreferenceType)
	suite.True(strings.Contains(recommendation.Reason, "balanced"))
	suite.Contains(recommendation.Reason, "₹48")
}

func TestRecommendationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RecommendationServiceTestSuite))
}
