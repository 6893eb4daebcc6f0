package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"charterhub/middleware"
	"charterhub/services/dialogue"
	"charterhub/utils"
)

// DialogueHandler exposes the conversation endpoints.
type DialogueHandler struct {
	Service dialogue.ConversationService
	Logger  *zap.Logger
}

// NewDialogueHandler returns a handler over the given conversation service.
func NewDialogueHandler(svc dialogue.ConversationService, logger *zap.Logger) *DialogueHandler {
	return &DialogueHandler{Service: svc, Logger: logger}
}

// StartConversation opens a new dialogue session.
func (h *DialogueHandler) StartConversation(c *gin.Context) {
	result, err := h.Service.StartConversation(c.Request.Context())
	if err != nil {
		h.Logger.Error("failed to start conversation", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to start conversation", "")
		return
	}
	c.JSON(http.StatusOK, result)
}

// SendMessage advances a dialogue session with one user message. Caller
// identity, when present, is passed to the engine explicitly.
func (h *DialogueHandler) SendMessage(c *gin.Context) {
	sessionID := c.Param("sessionID")
	var input struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	caller := middleware.CallerIdentity(c)
	result, err := h.Service.SendMessage(c.Request.Context(), sessionID, input.Text, caller)
	if err != nil {
		var sessionErr *dialogue.SessionError
		if errors.As(err, &sessionErr) {
			utils.JSONError(c, http.StatusNotFound, "Invalid session", sessionErr.Message)
			return
		}
		h.Logger.Error("failed to process message",
			zap.String("sessionId", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to process message", "")
		return
	}
	c.JSON(http.StatusOK, result)
}
