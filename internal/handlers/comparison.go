// internal/handlers/comparison.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/freshmandi/marketplace-backend/internal/services"
	"github.com/freshmandi/marketplace-backend/internal/utils"
)

type ComparisonHandler struct {
	comparisonService     *services.ComparisonService
	recommendationService *services.RecommendationService
}

func NewComparisonHandler(comparisonService *services.ComparisonService, recommendationService *services.RecommendationService) *ComparisonHandler {
	return &ComparisonHandler{
		comparisonService:     comparisonService,
		recommendationService: recommendationService,
	}
}

type searchRequest struct {
	ProductName string                  `json:"product_name" binding:"required"`
	Filters     *services.SearchFilters `json:"filters,omitempty"`
	SortBy      string                  `json:"sort_by,omitempty"`
}

// POST /v1/comparison/products/search
func (h *ComparisonHandler) SearchProducts(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid search request", err.Error())
		return
	}

	req.ProductName = strings.TrimSpace(req.ProductName)
	if req.ProductName == "" {
		utils.BadRequestResponse(c, "product_name is required", nil)
		return
	}

	result, err := h.comparisonService.SearchProductsWithVendors(req.ProductName, req.Filters, req.SortBy)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /v1/comparison/products/:name/compare
func (h *ComparisonHandler) CompareProduct(c *gin.Context) {
	productName := strings.TrimSpace(c.Param("name"))
	if productName == "" {
		utils.BadRequestResponse(c, "product name is required", nil)
		return
	}

	result, err := h.comparisonService.GetComparisonAnalysis(productName)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, result)
}

type recommendationRequest struct {
	ProductName      string      `json:"product_name" binding:"required"`
	VendorsAvailable []uuid.UUID `json:"vendors_available" binding:"required"`
}

// POST /v1/comparison/recommendations/personalized
func (h *ComparisonHandler) GetPersonalizedRecommendation(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	retailerID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req recommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid recommendation request", err.Error())
		return
	}

	req.ProductName = strings.TrimSpace(req.ProductName)
	if req.ProductName == "" {
		utils.BadRequestResponse(c, "product_name is required", nil)
		return
	}
	if len(req.VendorsAvailable) == 0 {
		utils.BadRequestResponse(c, "vendors_available must not be empty", nil)
		return
	}

	recommendation, err := h.recommendationService.GetPersonalizedRecommendation(retailerID, req.ProductName, req.VendorsAvailable)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	if recommendation == nil {
		utils.NotFoundResponse(c, "Vendor for product")
		return
	}

	utils.SuccessResponse(c, recommendation)
}

// GET /v1/comparison/vendors/:id/profile
func (h *ComparisonHandler) GetVendorProfile(c *gin.Context) {
	vendorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vendor ID", nil)
		return
	}

	profile, err := h.comparisonService.GetVendorProfile(vendorID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	if profile == nil {
		utils.NotFoundResponse(c, "Vendor")
		return
	}

	utils.SuccessResponse(c, profile)
}

type logComparisonRequest struct {
	ProductName      string                 `json:"product_name" binding:"required"`
	VendorsCompared  []uuid.UUID            `json:"vendors_compared" binding:"required"`
	SelectedVendorID *uuid.UUID             `json:"selected_vendor_id,omitempty"`
	SortPreference   string                 `json:"sort_preference,omitempty"`
	FiltersApplied   map[string]interface{} `json:"filters_applied,omitempty"`
}

// POST /v1/comparison/products/compare/log
func (h *ComparisonHandler) LogComparison(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	retailerID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req logComparisonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid comparison log request", err.Error())
		return
	}

	req.ProductName = strings.TrimSpace(req.ProductName)
	if req.ProductName == "" {
		utils.BadRequestResponse(c, "product_name is required", nil)
		return
	}
	if len(req.VendorsCompared) == 0 {
		utils.BadRequestResponse(c, "vendors_compared must not be empty", nil)
		return
	}

	comparisonID, err := h.comparisonService.LogComparison(
		retailerID,
		req.ProductName,
		req.VendorsCompared,
		req.SelectedVendorID,
		req.SortPreference,
		req.FiltersApplied,
	)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, gin.H{"comparison_id": comparisonID})
}
