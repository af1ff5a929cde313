package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/usecase/discovery"
)

type DiscoveryHandler struct {
	discoveryUseCase *discovery.DiscoveryUseCase
}

func NewDiscoveryHandler(discoveryUseCase *discovery.DiscoveryUseCase) *DiscoveryHandler {
	return &DiscoveryHandler{
		discoveryUseCase: discoveryUseCase,
	}
}

// InviteRequest carries the bounded opening message for a candidate.
type InviteRequest struct {
	CandidateID string `json:"candidate_id" binding:"required"`
	Message     string `json:"message" binding:"required"`
}

// NextCandidate handles GET /discovery/next
// @Summary Next candidate
// @Description Pick one random discoverable user outside the exclusion set
// @Tags discovery
// @Security BearerAuth
// @Produce json
// @Param seen query []string false "User IDs already shown this session" collectionFormat(multi)
// @Success 200 {object} discovery.CandidateResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /discovery/next [get]
func (h *DiscoveryHandler) NextCandidate(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	seen := c.QueryArray("seen")

	candidate, err := h.discoveryUseCase.NextCandidate(c.Request.Context(), userID.(string), seen)
	if err != nil {
		if errors.Is(err, domain.ErrNoCandidates) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "no candidates available",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to pick candidate",
		})
		return
	}

	c.JSON(http.StatusOK, candidate)
}

// Invite handles POST /discovery/invite
// @Summary Invite candidate
// @Description Open a conversation with the candidate and send the opening message
// @Tags discovery
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body InviteRequest true "Invite data"
// @Success 201 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /discovery/invite [post]
func (h *DiscoveryHandler) Invite(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	conversationID, err := h.discoveryUseCase.Invite(c.Request.Context(), userID.(string), req.CandidateID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCannotMessageSelf):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "cannot invite yourself",
			})
		case errors.Is(err, domain.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "message must not be empty",
			})
		case errors.Is(err, domain.ErrMessageTooLong):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "invite message too long",
			})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "candidate not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "failed to send invite",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"conversation_id": conversationID,
	})
}
