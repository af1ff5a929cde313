package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/logger"
	"github.com/orbitapp/orbit-backend/internal/usecase/chat"
)

type ChatHandler struct {
	chatUseCase *chat.ChatUseCase
}

func NewChatHandler(chatUseCase *chat.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

// StartConversationRequest opens a conversation with a recipient; used by the
// queue flow where the target is known directly.
type StartConversationRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Message     string `json:"message" binding:"required"`
}

// SendMessageRequest carries an open-chat message. Unlike invites, open-chat
// messages have no length cap.
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// ListConversations handles GET /chat/conversations
// @Summary List conversations
// @Description List the caller's conversations ordered by recency
// @Tags chat
// @Security BearerAuth
// @Produce json
// @Success 200 {array} chat.ConversationResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /chat/conversations [get]
func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	conversations, err := h.chatUseCase.ListConversations(c.Request.Context(), userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to list conversations",
		})
		return
	}

	c.JSON(http.StatusOK, conversations)
}

// UnreadCount handles GET /chat/unread-count
// @Summary Unread count
// @Description Count conversations with messages the caller has not read
// @Tags chat
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /chat/unread-count [get]
func (h *ChatHandler) UnreadCount(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	count, err := h.chatUseCase.UnreadCount(c.Request.Context(), userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to count unread",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unread": count,
	})
}

// StartConversation handles POST /chat/conversations
// @Summary Start conversation
// @Description Open a conversation with a recipient and send the opening message
// @Tags chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body StartConversationRequest true "Recipient and opening message"
// @Success 201 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /chat/conversations [post]
func (h *ChatHandler) StartConversation(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	var req StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	conversationID, err := h.chatUseCase.StartConversation(c.Request.Context(), userID.(string), req.RecipientID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCannotMessageSelf):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "cannot message yourself",
			})
		case errors.Is(err, domain.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "message must not be empty",
			})
		case errors.Is(err, domain.ErrMessageTooLong):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "opening message too long",
			})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "recipient not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "failed to start conversation",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"conversation_id": conversationID,
	})
}

// Messages handles GET /chat/conversations/:conversation_id/messages
// @Summary List messages
// @Description List the conversation log in append order, newest last
// @Tags chat
// @Security BearerAuth
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Param after query int false "Return only messages after this ID"
// @Success 200 {array} domain.Message
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /chat/conversations/{conversation_id}/messages [get]
func (h *ChatHandler) Messages(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	afterID, _ := strconv.ParseInt(c.Query("after"), 10, 64)

	messages, err := h.chatUseCase.Messages(c.Request.Context(), userID.(string), c.Param("conversation_id"), afterID)
	if err != nil {
		h.conversationError(c, err, "failed to list messages")
		return
	}

	c.JSON(http.StatusOK, messages)
}

// SendMessage handles POST /chat/conversations/:conversation_id/messages
// @Summary Send message
// @Description Append a message and flip both read flags in one unit
// @Tags chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Param request body SendMessageRequest true "Message text"
// @Success 201 {object} domain.Message
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /chat/conversations/{conversation_id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	msg, err := h.chatUseCase.SendMessage(c.Request.Context(), c.Param("conversation_id"), userID.(string), req.Text)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "message must not be empty",
			})
			return
		}
		h.conversationError(c, err, "failed to send message")
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// MarkRead handles POST /chat/conversations/:conversation_id/read
// @Summary Mark conversation read
// @Description Flip the caller's read flag; idempotent
// @Tags chat
// @Security BearerAuth
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /chat/conversations/{conversation_id}/read [post]
func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	if err := h.chatUseCase.MarkRead(c.Request.Context(), userID.(string), c.Param("conversation_id")); err != nil {
		h.conversationError(c, err, "failed to mark read")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "marked read",
	})
}

// StreamConversations handles GET /chat/conversations/stream
// @Summary Conversation list live feed
// @Description Server-sent events; the fresh list is pushed whenever any of the caller's conversations changes
// @Tags chat
// @Security BearerAuth
// @Produce text/event-stream
// @Failure 401 {object} ErrorResponse
// @Router /chat/conversations/stream [get]
func (h *ChatHandler) StreamConversations(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}
	uid := userID.(string)
	ctx := c.Request.Context()

	events, cancel := h.chatUseCase.SubscribeConversations(ctx, uid)
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	push := func() {
		conversations, err := h.chatUseCase.ListConversations(ctx, uid)
		if err != nil {
			logger.Warn("failed to read conversations for stream", "user_id", uid, "error", err)
			return
		}
		c.SSEvent("conversations", conversations)
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

// StreamMessages handles GET /chat/conversations/:conversation_id/stream
// @Summary Message live feed
// @Description Server-sent events; new messages are pushed as the log grows
// @Tags chat
// @Security BearerAuth
// @Produce text/event-stream
// @Param conversation_id path string true "Conversation ID"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /chat/conversations/{conversation_id}/stream [get]
func (h *ChatHandler) StreamMessages(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}
	uid := userID.(string)
	conversationID := c.Param("conversation_id")
	ctx := c.Request.Context()

	events, cancel, err := h.chatUseCase.SubscribeMessages(ctx, uid, conversationID)
	if err != nil {
		h.conversationError(c, err, "failed to open message stream")
		return
	}
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	// Tracks the last delivered message so each hint only ships the tail.
	var lastID int64

	push := func() {
		messages, err := h.chatUseCase.Messages(ctx, uid, conversationID, lastID)
		if err != nil {
			logger.Warn("failed to read messages for stream", "conversation_id", conversationID, "error", err)
			return
		}
		if len(messages) == 0 {
			return
		}
		lastID = messages[len(messages)-1].ID
		c.SSEvent("messages", messages)
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

func (h *ChatHandler) conversationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "conversation not found",
		})
	case errors.Is(err, domain.ErrNotParticipant):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error: "not a participant",
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: fallback,
		})
	}
}
