package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edubridge/engagement-service/internal/models"
	"github.com/edubridge/engagement-service/internal/services"
	"github.com/edubridge/engagement-service/internal/utils"
)

type MessageHandler struct {
	BaseHandler
	service services.MessageService
}

func NewMessageHandler(service services.MessageService, logger utils.Logger) *MessageHandler {
	return &MessageHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Send delivers a direct message.
func (h *MessageHandler) Send(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	message, err := h.service.Send(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// GetConversations lists conversation summaries for the caller.
func (h *MessageHandler) GetConversations(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	summaries, err := h.service.GetConversationSummaries(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// GetConversation returns the thread with another user. Fetching marks
// incoming messages read.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	otherUserID := h.parseIDParam(c, "otherUserId")
	if otherUserID == 0 {
		return
	}

	messages, err := h.service.GetConversation(c.Request.Context(), userID, otherUserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// MarkConversationRead explicitly marks a conversation read.
func (h *MessageHandler) MarkConversationRead(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	otherUserID := h.parseIDParam(c, "conversationId")
	if otherUserID == 0 {
		return
	}

	updated, err := h.service.MarkConversationRead(c.Request.Context(), userID, otherUserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MarkAllReadResponse{Updated: updated})
}

// Delete removes a message from the caller's side.
func (h *MessageHandler) Delete(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	messageID := h.parseIDParam(c, "id")
	if messageID == 0 {
		return
	}

	h.LogRequest(c, "Deleting message", "message_id", messageID)

	if err := h.service.Delete(c.Request.Context(), messageID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Message deleted"})
}

// UnreadCount returns the caller's unread message count.
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UnreadCountResponse{Count: count})
}
