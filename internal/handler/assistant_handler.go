package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
	"github.com/noah-isme/it-hub-api/pkg/response"
)

type assistantService interface {
	Initialize(ctx context.Context, systemPrompt string)
	Ready() bool
	SendMessage(ctx context.Context, text string) string
}

// StartAssistantRequest optionally overrides the assistant's system prompt.
type StartAssistantRequest struct {
	SystemPrompt string `json:"systemPrompt"`
}

// AssistantMessageRequest is one user turn.
type AssistantMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// AssistantHandler exposes the study assistant.
type AssistantHandler struct {
	service assistantService
}

// NewAssistantHandler constructs an assistant handler.
func NewAssistantHandler(svc assistantService) *AssistantHandler {
	return &AssistantHandler{service: svc}
}

// Start godoc
// @Summary Start a new assistant conversation
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body StartAssistantRequest false "Prompt override"
// @Success 200 {object} response.Envelope
// @Router /assistant/session [post]
func (h *AssistantHandler) Start(c *gin.Context) {
	var req StartAssistantRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	h.service.Initialize(c.Request.Context(), req.SystemPrompt)
	response.JSON(c, http.StatusOK, gin.H{"ready": h.service.Ready()}, nil)
}

// Message godoc
// @Summary Send a message to the assistant
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body AssistantMessageRequest true "Message"
// @Success 200 {object} response.Envelope
// @Router /assistant/messages [post]
func (h *AssistantHandler) Message(c *gin.Context) {
	var req AssistantMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "message is required"))
		return
	}
	reply := h.service.SendMessage(c.Request.Context(), req.Message)
	response.JSON(c, http.StatusOK, gin.H{"reply": reply}, nil)
}
