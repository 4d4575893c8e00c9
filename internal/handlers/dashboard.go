package handlers

import (
	"net/http"

	"github.com/dotaevolution/presence-api/internal/dto"
	"github.com/dotaevolution/presence-api/internal/middleware"
	"github.com/dotaevolution/presence-api/internal/models"
	"github.com/dotaevolution/presence-api/internal/services"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the player landing payload.
type DashboardHandler struct {
	authService *services.AuthService
	listService *services.ListService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(authService *services.AuthService, listService *services.ListService) *DashboardHandler {
	return &DashboardHandler{
		authService: authService,
		listService: listService,
	}
}

// Show returns both families' current lists, the caller's join status per
// list, daily stats and recent history. Works without authentication; the
// join status then reports not_authenticated.
func (h *DashboardHandler) Show(c *gin.Context) {
	var user *models.User
	if userID, exists := middleware.GetUserID(c); exists {
		if loaded, err := h.authService.GetUser(userID); err == nil {
			user = loaded
		}
	}

	date, ok := parseDateParam(c, c.Query("date"))
	if !ok {
		return
	}

	dashboard, err := h.listService.Dashboard(user, date)
	if err != nil {
		respondPresenceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDashboardResponse(dashboard))
}
