// internal/services/review_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshmandi/marketplace-backend/internal/models"
	"github.com/freshmandi/marketplace-backend/internal/utils"
)

var (
	ErrReviewNotFound     = errors.New("review not found")
	ErrOrderNotDelivered  = errors.New("order has not been delivered")
	ErrOrderNotFound      = errors.New("order not found")
	ErrNotOrderBuyer      = errors.New("only the order's buyer can review it")
	ErrInvalidRatingValue = errors.New("ratings must be between 1 and 5")
	ErrNotReviewAuthor    = errors.New("only the review's author can edit it")
	ErrOrderAlreadyRated  = errors.New("order has already been reviewed")
)

// ReviewService manages retailer reviews of vendors and keeps the vendor
// metrics caches in step with them.
type ReviewService struct {
	db      *gorm.DB
	ratings *RatingsService
}

func NewReviewService(db *gorm.DB, ratings *RatingsService) *ReviewService {
	return &ReviewService{db: db, ratings: ratings}
}

type CreateReviewRequest struct {
	OrderID             uuid.UUID  `json:"order_id" binding:"required"`
	ProductID           uuid.UUID  `json:"product_id" binding:"required"`
	DriverID            *uuid.UUID `json:"driver_id,omitempty"`
	RatingQuality       int        `json:"rating_quality" binding:"required,min=1,max=5"`
	RatingDelay         int        `json:"rating_delay" binding:"required,min=1,max=5"`
	RatingCommunication int        `json:"rating_communication" binding:"required,min=1,max=5"`
	Comment             string     `json:"comment"`
}

type UpdateReviewRequest struct {
	RatingQuality       *int    `json:"rating_quality,omitempty" binding:"omitempty,min=1,max=5"`
	RatingDelay         *int    `json:"rating_delay,omitempty" binding:"omitempty,min=1,max=5"`
	RatingCommunication *int    `json:"rating_communication,omitempty" binding:"omitempty,min=1,max=5"`
	Comment             *string `json:"comment,omitempty"`
}

// CreateReview records a review for a delivered order and synchronously
// refreshes the vendor's ratings cache.
func (s *ReviewService) CreateReview(retailerID uuid.UUID, req *CreateReviewRequest) (*models.ProductReview, error) {
	if !validRating(req.RatingQuality) || !validRating(req.RatingDelay) || !validRating(req.RatingCommunication) {
		return nil, ErrInvalidRatingValue
	}

	var order models.Order
	if err := s.db.First(&order, "id = ?", req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}

	if order.BuyerID != retailerID {
		return nil, ErrNotOrderBuyer
	}
	if order.OrderStatus != models.OrderStatusDelivered {
		return nil, ErrOrderNotDelivered
	}

	var existing int64
	if err := s.db.Model(&models.ProductReview{}).
		Where("order_id = ? AND retailer_id = ?", req.OrderID, retailerID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing reviews: %w", err)
	}
	if existing > 0 {
		return nil, ErrOrderAlreadyRated
	}

	review := &models.ProductReview{
		OrderID:             req.OrderID,
		ProductID:           req.ProductID,
		RetailerID:          retailerID,
		VendorID:            order.SellerID,
		DriverID:            req.DriverID,
		RatingQuality:       req.RatingQuality,
		RatingDelay:         req.RatingDelay,
		RatingCommunication: req.RatingCommunication,
		Comment:             req.Comment,
	}

	if err := s.db.Create(review).Error; err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.ratings.UpdateVendorRatingsCache(order.SellerID); err != nil {
		return nil, err
	}

	return review, nil
}

// UpdateReview edits an existing review, stamps it as edited, and
// recomputes the vendor's cached metrics.
func (s *ReviewService) UpdateReview(retailerID, reviewID uuid.UUID, req *UpdateReviewRequest) (*models.ProductReview, error) {
	var review models.ProductReview
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to fetch review: %w", err)
	}

	if review.RetailerID != retailerID {
		return nil, ErrNotReviewAuthor
	}

	if req.RatingQuality != nil {
		if !validRating(*req.RatingQuality) {
			return nil, ErrInvalidRatingValue
		}
		review.RatingQuality = *req.RatingQuality
	}
	if req.RatingDelay != nil {
		if !validRating(*req.RatingDelay) {
			return nil, ErrInvalidRatingValue
		}
		review.RatingDelay = *req.RatingDelay
	}
	if req.RatingCommunication != nil {
		if !validRating(*req.RatingCommunication) {
			return nil, ErrInvalidRatingValue
		}
		review.RatingCommunication = *req.RatingCommunication
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}

	now := nowFunc().UTC()
	review.EditedAt = &now

	if err := s.db.Save(&review).Error; err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	if err := s.ratings.UpdateVendorRatingsCache(review.VendorID); err != nil {
		return nil, err
	}

	return &review, nil
}

// ListVendorReviews returns a vendor's reviews, newest first, paginated.
func (s *ReviewService) ListVendorReviews(vendorID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	var total int64
	if err := s.db.Model(&models.ProductReview{}).
		Where("vendor_id = ?", vendorID).
		Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []models.ProductReview
	query := s.db.Preload("Retailer").
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC")
	if err := utils.ApplyPagination(query, params).Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	result := utils.CreatePaginationResult(reviews, total, params)
	return &result, nil
}

func validRating(v int) bool {
	return v >= 1 && v <= 5
}
