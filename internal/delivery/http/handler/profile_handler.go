package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/infrastructure/storage"
	"github.com/orbitapp/orbit-backend/internal/usecase/profile"
)

type ProfileHandler struct {
	profileUseCase *profile.ProfileUseCase
}

func NewProfileHandler(profileUseCase *profile.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
	}
}

// GetMyProfile handles GET /profile/me
// @Summary Get my profile
// @Description Get current user's profile with resolved image URL and played games
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} profile.ProfileResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/me [get]
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	resp, err := h.profileUseCase.GetProfile(c.Request.Context(), userID.(string))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "profile not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to get profile",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateMyProfile handles PUT /profile/me
// @Summary Update my profile
// @Description Update current user's editable profile fields
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body profile.UpdateProfileRequest true "Profile update data"
// @Success 200 {object} profile.ProfileResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/me [put]
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	var req profile.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	resp, err := h.profileUseCase.UpdateProfile(c.Request.Context(), userID.(string), &req)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "profile not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to update profile",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CompleteSurvey handles POST /profile/survey
// @Summary Complete onboarding survey
// @Description Apply the one-time batched onboarding update
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body profile.SurveyRequest true "Survey data"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/survey [post]
func (h *ProfileHandler) CompleteSurvey(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	var req profile.SurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	if err := h.profileUseCase.CompleteSurvey(c.Request.Context(), userID.(string), &req); err != nil {
		switch {
		case errors.Is(err, domain.ErrSurveyCompleted):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error: "survey already completed",
			})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "profile not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "failed to complete survey",
			})
		}
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "survey completed",
	})
}

// UploadProfileImage handles POST /profile/image
// @Summary Upload profile image
// @Description Store a profile image (max 2 MB) and point the profile at it
// @Tags profile
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param image formData file true "Image file"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/image [post]
func (h *ProfileHandler) UploadProfileImage(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "image file is required",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "failed to read image",
		})
		return
	}
	defer file.Close()

	// Read one byte past the cap so oversized uploads are detected without
	// buffering the whole body.
	data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "failed to read image",
		})
		return
	}

	url, err := h.profileUseCase.UploadProfileImage(
		c.Request.Context(),
		userID.(string),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		if errors.Is(err, domain.ErrImageTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: "image exceeds 2MB limit",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to upload image",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile_image_url": url,
	})
}

// Heartbeat handles POST /profile/heartbeat
// @Summary Presence heartbeat
// @Description Advance the caller's last-seen timestamp
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/heartbeat [post]
func (h *ProfileHandler) Heartbeat(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	if err := h.profileUseCase.Heartbeat(c.Request.Context(), userID.(string)); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to record heartbeat",
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "ok",
	})
}
