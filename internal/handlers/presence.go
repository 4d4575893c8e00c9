package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/dotaevolution/presence-api/internal/dto"
	apierrors "github.com/dotaevolution/presence-api/internal/errors"
	"github.com/dotaevolution/presence-api/internal/models"
	"github.com/dotaevolution/presence-api/internal/services"
	"github.com/gin-gonic/gin"
)

// PresenceHandler exposes slot confirmation and cancellation.
type PresenceHandler struct {
	authService     *services.AuthService
	presenceService *services.PresenceService
	whatsappService *services.WhatsAppService
}

// NewPresenceHandler creates a new PresenceHandler.
func NewPresenceHandler(authService *services.AuthService, presenceService *services.PresenceService, whatsappService *services.WhatsAppService) *PresenceHandler {
	return &PresenceHandler{
		authService:     authService,
		presenceService: presenceService,
		whatsappService: whatsappService,
	}
}

// Create confirms the authenticated user on a position of the current open
// list of the requested family.
func (h *PresenceHandler) Create(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}

	type CreateRequest struct {
		Position models.Position `json:"position" binding:"required"`
		ListType models.ListType `json:"list_type" binding:"required"`
		Date     string          `json:"date"`
		Notes    string          `json:"notes"`
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	date, ok := parseDateParam(c, req.Date)
	if !ok {
		return
	}

	result, err := h.presenceService.Confirm(services.ConfirmInput{
		User:     user,
		Position: req.Position,
		ListType: req.ListType,
		Date:     date,
		Source:   models.SourceWeb,
		Notes:    req.Notes,
	})
	if err != nil {
		respondPresenceError(c, err)
		return
	}

	go h.whatsappService.NotifyAssignment(result)

	c.JSON(http.StatusCreated, dto.ToConfirmResponse(result))
}

// Destroy cancels the authenticated user's confirmed slot in the given
// family for today (or the date query parameter).
func (h *PresenceHandler) Destroy(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}

	listType := models.ListType(c.Param("list_type"))

	date, ok := parseDateParam(c, c.Query("date"))
	if !ok {
		return
	}

	result, err := h.presenceService.Cancel(services.CancelInput{
		User:     user,
		ListType: listType,
		Date:     date,
		Reason:   c.Query("reason"),
	})
	if err != nil {
		respondPresenceError(c, err)
		return
	}

	go h.whatsappService.NotifyCancellation(result, user)

	c.JSON(http.StatusOK, gin.H{
		"message":       "Presence cancelled",
		"list":          dto.ToListDTO(*result.List, nil),
		"list_reopened": result.Reopened,
	})
}

// parseDateParam parses an optional YYYY-MM-DD value, writing the error
// response on bad input. Zero time means today.
func parseDateParam(c *gin.Context, value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		apierrors.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

func respondPresenceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidPosition),
		errors.Is(err, services.ErrInvalidListType):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotEligible),
		errors.Is(err, services.ErrPositionTaken),
		errors.Is(err, services.ErrListNotOpen),
		errors.Is(err, services.ErrAlreadyConfirmedToday):
		apierrors.Unprocessable(c, err.Error())
	case errors.Is(err, services.ErrPresenceNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
