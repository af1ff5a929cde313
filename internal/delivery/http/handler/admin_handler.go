package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/infrastructure/storage"
	"github.com/orbitapp/orbit-backend/internal/usecase/admin"
)

type AdminHandler struct {
	adminUseCase *admin.AdminUseCase
}

func NewAdminHandler(adminUseCase *admin.AdminUseCase) *AdminHandler {
	return &AdminHandler{
		adminUseCase: adminUseCase,
	}
}

// Overview handles GET /admin/overview
// @Summary Admin overview
// @Description Aggregate totals across users, games and reviews
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} admin.OverviewResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/overview [get]
func (h *AdminHandler) Overview(c *gin.Context) {
	resp, err := h.adminUseCase.Overview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to load overview",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListUsers handles GET /admin/users
// @Summary List users
// @Description Paginated user listing with username search
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param search query string false "Username filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} admin.Page[domain.User]
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	resp, err := h.adminUseCase.ListUsers(c.Request.Context(), c.Query("search"), intQuery(c, "page", 1), intQuery(c, "page_size", 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to list users",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListGames handles GET /admin/games
// @Summary List games
// @Description Paginated game listing with title search
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param search query string false "Title filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} admin.Page[domain.Game]
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/games [get]
func (h *AdminHandler) ListGames(c *gin.Context) {
	resp, err := h.adminUseCase.ListGames(c.Request.Context(), c.Query("search"), intQuery(c, "page", 1), intQuery(c, "page_size", 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to list games",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListReviews handles GET /admin/reviews
// @Summary List reviews
// @Description Paginated review listing with username search
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param search query string false "Username filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} admin.Page[domain.Review]
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/reviews [get]
func (h *AdminHandler) ListReviews(c *gin.Context) {
	resp, err := h.adminUseCase.ListReviews(c.Request.Context(), c.Query("search"), intQuery(c, "page", 1), intQuery(c, "page_size", 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to list reviews",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateGame handles POST /admin/games
// @Summary Create game
// @Description Add a game to the catalog
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body admin.CreateGameRequest true "Game data"
// @Success 201 {object} domain.Game
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/games [post]
func (h *AdminHandler) CreateGame(c *gin.Context) {
	var req admin.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	game, err := h.adminUseCase.CreateGame(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to create game",
		})
		return
	}

	c.JSON(http.StatusCreated, game)
}

// UploadGameImage handles PUT /admin/games/:game_id/image
// @Summary Replace game image
// @Description Upload a new catalog image (max 2 MB) for the game
// @Tags admin
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param game_id path string true "Game ID"
// @Param image formData file true "Image file"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/games/{game_id}/image [put]
func (h *AdminHandler) UploadGameImage(c *gin.Context) {
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

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "failed to read image",
		})
		return
	}

	url, err := h.adminUseCase.ReplaceGameImage(
		c.Request.Context(),
		c.Param("game_id"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrImageTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: "image exceeds 2MB limit",
			})
		case errors.Is(err, domain.ErrGameNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "game not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "failed to upload image",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"image_url": url,
	})
}
