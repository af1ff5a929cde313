package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/logger"
	"github.com/orbitapp/orbit-backend/internal/usecase/queue"
)

type QueueHandler struct {
	queueUseCase *queue.QueueUseCase
}

func NewQueueHandler(queueUseCase *queue.QueueUseCase) *QueueHandler {
	return &QueueHandler{
		queueUseCase: queueUseCase,
	}
}

// JoinQueueRequest carries the session-scoped fields of a queue entry;
// display fields are snapshotted server-side from the stored profile.
type JoinQueueRequest struct {
	Bio      string `json:"bio" binding:"max=500"`
	GameType string `json:"game_type" binding:"max=50"`
	GameRank string `json:"game_rank" binding:"max=50"`
}

// Join handles POST /queue/:game_id/join
// @Summary Join queue
// @Description Put the caller into the game's queue; re-joining overwrites
// @Tags queue
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param game_id path string true "Game ID"
// @Param request body JoinQueueRequest true "Queue entry data"
// @Success 200 {object} domain.QueueEntry
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /queue/{game_id}/join [post]
func (h *QueueHandler) Join(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	var req JoinQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	entry, err := h.queueUseCase.Join(c.Request.Context(), c.Param("game_id"), userID.(string), req.Bio, req.GameType, req.GameRank)
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
				Error: "failed to join queue",
			})
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}

// Leave handles DELETE /queue/:game_id/leave
// @Summary Leave queue
// @Description Remove the caller's entry; a no-op when absent
// @Tags queue
// @Security BearerAuth
// @Produce json
// @Param game_id path string true "Game ID"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /queue/{game_id}/leave [delete]
func (h *QueueHandler) Leave(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	if err := h.queueUseCase.Leave(c.Request.Context(), c.Param("game_id"), userID.(string)); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to leave queue",
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "left queue",
	})
}

// Heartbeat handles POST /queue/:game_id/heartbeat
// @Summary Renew queue entry
// @Description Extend the liveness deadline of the caller's entry
// @Tags queue
// @Security BearerAuth
// @Produce json
// @Param game_id path string true "Game ID"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /queue/{game_id}/heartbeat [post]
func (h *QueueHandler) Heartbeat(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	if err := h.queueUseCase.Heartbeat(c.Request.Context(), c.Param("game_id"), userID.(string)); err != nil {
		if errors.Is(err, domain.ErrQueueEntryNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "not in queue",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to renew queue entry",
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "renewed",
	})
}

// Snapshot handles GET /queue/:game_id
// @Summary Queue snapshot
// @Description List live entries minus the viewer and their chat partners
// @Tags queue
// @Security BearerAuth
// @Produce json
// @Param game_id path string true "Game ID"
// @Success 200 {array} domain.QueueEntry
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /queue/{game_id} [get]
func (h *QueueHandler) Snapshot(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	entries, err := h.queueUseCase.Snapshot(c.Request.Context(), c.Param("game_id"), userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to read queue",
		})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// Stream handles GET /queue/:game_id/stream
// @Summary Queue live feed
// @Description Server-sent events; a fresh snapshot is pushed on every queue change
// @Tags queue
// @Security BearerAuth
// @Produce text/event-stream
// @Param game_id path string true "Game ID"
// @Failure 401 {object} ErrorResponse
// @Router /queue/{game_id}/stream [get]
func (h *QueueHandler) Stream(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}
	gameID := c.Param("game_id")
	viewerID := userID.(string)
	ctx := c.Request.Context()

	events, cancel := h.queueUseCase.Subscribe(ctx, gameID)
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	// Hints only say "something changed"; every event re-reads the snapshot,
	// so duplicates and drops are both harmless.
	push := func() {
		entries, err := h.queueUseCase.Snapshot(ctx, gameID, viewerID)
		if err != nil {
			logger.Warn("failed to read queue snapshot for stream", "game_id", gameID, "error", err)
			return
		}
		c.SSEvent("queue", entries)
	}

	push()
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case _, ok := <-events:
			if !ok {
				return false
			}
			push()
			return true
		case <-ctx.Done():
			return false
		}
	})
}
