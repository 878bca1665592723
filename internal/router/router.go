// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/freshmandi/marketplace-backend/internal/cache"
	"github.com/freshmandi/marketplace-backend/internal/config"
	"github.com/freshmandi/marketplace-backend/internal/handlers"
	"github.com/freshmandi/marketplace-backend/internal/middleware"
	"github.com/freshmandi/marketplace-backend/internal/services"
	"github.com/freshmandi/marketplace-backend/internal/utils"
)

func Initialize(db *gorm.DB, cacheClient *cache.Client, cfg *config.Config) *gin.Engine {
	// Initialize services
	ratingsService := services.NewRatingsService(db, cacheClient)
	comparisonService := services.NewComparisonService(db, ratingsService, cacheClient, cfg.Comparison)
	recommendationService := services.NewRecommendationService(db)
	reviewService := services.NewReviewService(db, ratingsService)

	// Initialize handlers
	comparisonHandler := handlers.NewComparisonHandler(comparisonService, recommendationService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Vendor comparison routes
		comparison := v1.Group("/comparison")
		comparison.Use(middleware.AuthRequired())
		comparison.Use(middleware.SearchRateLimit())
		{
			comparison.POST("/products/search", comparisonHandler.SearchProducts)
			comparison.GET("/products/:name/compare", comparisonHandler.CompareProduct)
			comparison.POST("/recommendations/personalized", middleware.RetailerRequired(), comparisonHandler.GetPersonalizedRecommendation)
			comparison.GET("/vendors/:id/profile", comparisonHandler.GetVendorProfile)
			comparison.POST("/products/compare/log", middleware.RetailerRequired(), comparisonHandler.LogComparison)
		}

		// Review routes
		reviews := v1.Group("/reviews")
		{
			reviews.GET("/vendors/:id", reviewHandler.ListVendorReviews)
			reviews.POST("", middleware.AuthRequired(), middleware.ReviewRateLimit(), middleware.RetailerRequired(), reviewHandler.CreateReview)
			reviews.PUT("/:id", middleware.AuthRequired(), middleware.RetailerRequired(), reviewHandler.UpdateReview)
		}
	}

	return r
}
