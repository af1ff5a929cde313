package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/usecase/auth"
)

type AuthHandler struct {
	authUseCase *auth.AuthUseCase
}

func NewAuthHandler(authUseCase *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

// Register handles POST /auth/register
// @Summary Register
// @Description Create an account and the minimal profile row
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.RegisterRequest true "Registration data"
// @Success 201 {object} domain.User
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	user, err := h.authUseCase.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error: "email already in use",
			})
		case errors.Is(err, domain.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error: "user already exists",
			})
		case errors.Is(err, domain.ErrUnderage):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "minimum age not met",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "registration failed",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, user)
}

// OpenSession handles POST /auth/session
// @Summary Open session
// @Description Mark the caller online after a client-side sign-in
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/session [post]
func (h *AuthHandler) OpenSession(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	user, err := h.authUseCase.OpenSession(c.Request.Context(), userID.(string))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "user not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to open session",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// Logout handles POST /auth/logout
// @Summary Logout
// @Description Revoke refresh tokens and mark the caller offline
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	if err := h.authUseCase.Logout(c.Request.Context(), userID.(string)); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "logout failed",
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "logged out successfully",
	})
}

// Me handles GET /auth/me
// @Summary Get current user
// @Description Get the authenticated user's record
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	user, err := h.authUseCase.GetUser(c.Request.Context(), userID.(string))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "user not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to get user",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents success response
type SuccessResponse struct {
	Message string `json:"message"`
}
