package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/usecase/review"
)

type ReviewHandler struct {
	reviewUseCase *review.ReviewUseCase
}

func NewReviewHandler(reviewUseCase *review.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{
		reviewUseCase: reviewUseCase,
	}
}

// Submit handles POST /review
// @Summary Submit review
// @Description Record the caller's one-shot app review
// @Tags review
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body review.SubmitReviewRequest true "Review data"
// @Success 201 {object} domain.Review
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /review [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	var req review.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	result, err := h.reviewUseCase.Submit(c.Request.Context(), userID.(string), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrReviewExists):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error: "review already submitted",
			})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "user not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "failed to submit review",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// MyReview handles GET /review/me
// @Summary Get my review
// @Description Get the caller's submitted review, if any
// @Tags review
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.Review
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /review/me [get]
func (h *ReviewHandler) MyReview(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	result, err := h.reviewUseCase.MyReview(c.Request.Context(), userID.(string))
	if err != nil {
		if errors.Is(err, domain.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "no review submitted",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to get review",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
