// internal/handlers/review.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/freshmandi/marketplace-backend/internal/services"
	"github.com/freshmandi/marketplace-backend/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// POST /v1/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
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

	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors := utils.GetValidationErrors(err); len(validationErrors) > 0 {
			utils.ValidationErrorResponse(c, validationErrors)
			return
		}
		utils.BadRequestResponse(c, "Invalid review request", err.Error())
		return
	}

	review, err := h.reviewService.CreateReview(retailerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "Order")
		case errors.Is(err, services.ErrNotOrderBuyer):
			utils.ForbiddenResponse(c, err.Error())
		case errors.Is(err, services.ErrOrderNotDelivered), errors.Is(err, services.ErrInvalidRatingValue):
			utils.BadRequestResponse(c, err.Error(), nil)
		case errors.Is(err, services.ErrOrderAlreadyRated):
			utils.ConflictResponse(c, err.Error())
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.CreatedResponse(c, review)
}

// PUT /v1/reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
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

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid review ID", nil)
		return
	}

	var req services.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid review request", err.Error())
		return
	}

	review, err := h.reviewService.UpdateReview(retailerID, reviewID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReviewNotFound):
			utils.NotFoundResponse(c, "Review")
		case errors.Is(err, services.ErrNotReviewAuthor):
			utils.ForbiddenResponse(c, err.Error())
		case errors.Is(err, services.ErrInvalidRatingValue):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, review)
}

// GET /v1/reviews/vendors/:id
func (h *ReviewHandler) ListVendorReviews(c *gin.Context) {
	vendorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vendor ID", nil)
		return
	}

	params := utils.GetPaginationParams(c)

	result, err := h.reviewService.ListVendorReviews(vendorID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}
