package handlers

import (
	"errors"
	"net/http"

	"github.com/dotaevolution/presence-api/internal/config"
	apierrors "github.com/dotaevolution/presence-api/internal/errors"
	"github.com/dotaevolution/presence-api/internal/services"
	"github.com/gin-gonic/gin"
)

// WebhookHandler receives inbound WhatsApp messages from the provider.
type WebhookHandler struct {
	config          *config.Config
	whatsappService *services.WhatsAppService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(cfg *config.Config, whatsappService *services.WhatsAppService) *WebhookHandler {
	return &WebhookHandler{
		config:          cfg,
		whatsappService: whatsappService,
	}
}

// Receive processes one provider callback. The reply text is returned in the
// response body for the provider to relay back to the sender.
func (h *WebhookHandler) Receive(c *gin.Context) {
	if h.config.WhatsAppToken != "" && c.GetHeader("X-Webhook-Token") != h.config.WhatsAppToken {
		apierrors.Unauthorized(c, "Invalid webhook token")
		return
	}

	type WebhookRequest struct {
		Phone   string `json:"phone" binding:"required"`
		Message string `json:"message" binding:"required"`
	}

	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	reply, err := h.whatsappService.HandleIncoming(req.Phone, req.Message)
	if err != nil {
		respondWebhookError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "processed",
		"reply":  reply,
	})
}

// respondWebhookError maps processing failures. The provider expects a 2xx
// with a reply it can relay even when the message was rejected, so business
// failures answer 200 with an error reply instead of an error status.
func respondWebhookError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownMessageFormat),
		errors.Is(err, services.ErrSenderNotFound),
		errors.Is(err, services.ErrDoesNotPlayPosition),
		errors.Is(err, services.ErrNotEligible),
		errors.Is(err, services.ErrPositionTaken),
		errors.Is(err, services.ErrListNotOpen),
		errors.Is(err, services.ErrAlreadyConfirmedToday),
		errors.Is(err, services.ErrPresenceNotFound):
		c.JSON(http.StatusOK, gin.H{
			"status": "rejected",
			"reply":  err.Error(),
		})
	default:
		apierrors.InternalError(c, "Failed to process message")
	}
}
