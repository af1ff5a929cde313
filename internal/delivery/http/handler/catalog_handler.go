package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/usecase/catalog"
)

type CatalogHandler struct {
	catalogUseCase *catalog.CatalogUseCase
}

func NewCatalogHandler(catalogUseCase *catalog.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{
		catalogUseCase: catalogUseCase,
	}
}

// ListGames handles GET /games
// @Summary List games
// @Description List the game catalog, optionally filtered by title
// @Tags games
// @Security BearerAuth
// @Produce json
// @Param search query string false "Title filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} catalog.GameListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /games [get]
func (h *CatalogHandler) ListGames(c *gin.Context) {
	search := c.Query("search")
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	resp, err := h.catalogUseCase.ListGames(c.Request.Context(), search, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to list games",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PopularGames handles GET /games/popular
// @Summary Popular games
// @Description List games ordered by selection count
// @Tags games
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Max results"
// @Success 200 {array} domain.Game
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /games/popular [get]
func (h *CatalogHandler) PopularGames(c *gin.Context) {
	limit := intQuery(c, "limit", 10)

	games, err := h.catalogUseCase.PopularGames(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to list popular games",
		})
		return
	}

	c.JSON(http.StatusOK, games)
}

// PlayedGames handles GET /games/played
// @Summary My played games
// @Description List the caller's played set resolved against the catalog
// @Tags games
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.Game
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /games/played [get]
func (h *CatalogHandler) PlayedGames(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	games, err := h.catalogUseCase.PlayedGames(c.Request.Context(), userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to list played games",
		})
		return
	}

	c.JSON(http.StatusOK, games)
}

// SelectGame handles POST /games/:game_id/select
// @Summary Select a game
// @Description Bump the game's popularity and record it as played
// @Tags games
// @Security BearerAuth
// @Produce json
// @Param game_id path string true "Game ID"
// @Success 200 {object} catalog.SelectGameResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /games/{game_id}/select [post]
func (h *CatalogHandler) SelectGame(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	resp, err := h.catalogUseCase.SelectGame(c.Request.Context(), userID.(string), c.Param("game_id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGameNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "game not found",
			})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "user not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "failed to select game",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
