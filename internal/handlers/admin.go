package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dotaevolution/presence-api/internal/dto"
	apierrors "github.com/dotaevolution/presence-api/internal/errors"
	"github.com/dotaevolution/presence-api/internal/models"
	"github.com/dotaevolution/presence-api/internal/repository"
	"github.com/dotaevolution/presence-api/internal/services"
	"github.com/dotaevolution/presence-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the roster and list management surface.
type AdminHandler struct {
	authService     *services.AuthService
	listService     *services.ListService
	whatsappService *services.WhatsAppService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(authService *services.AuthService, listService *services.ListService, whatsappService *services.WhatsAppService) *AdminHandler {
	return &AdminHandler{
		authService:     authService,
		listService:     listService,
		whatsappService: whatsappService,
	}
}

// ListUsers returns the roster, optionally filtered by category and active
// flag.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var filter repository.UserFilter

	if category := c.Query("category"); category != "" {
		listType := models.ListType(category)
		if !models.ValidListType(listType) {
			apierrors.BadRequest(c, "Invalid category")
			return
		}
		filter.Category = &listType
	}
	if active := c.Query("active"); active != "" {
		value, err := strconv.ParseBool(active)
		if err != nil {
			apierrors.BadRequest(c, "Invalid active flag")
			return
		}
		filter.Active = &value
	}

	params := utils.GetPaginationParams(c)
	users, total, err := h.authService.ListUsers(filter, params)
	if err != nil {
		apierrors.InternalError(c, "Failed to list users")
		return
	}

	response := make([]dto.UserDTO, len(users))
	for i, user := range users {
		response[i] = dto.ToUserDTO(user)
	}
	c.JSON(http.StatusOK, gin.H{
		"users": response,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// DeactivateUser removes a player from the active roster. The account and
// its history are kept.
func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.authService.DeactivateUser(id); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, err.Error())
		} else {
			apierrors.InternalError(c, "Failed to deactivate user")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deactivated",
	})
}

// ListDailyLists returns recent lists, optionally filtered by status.
func (h *AdminHandler) ListDailyLists(c *gin.Context) {
	var status *models.ListStatus
	if value := c.Query("status"); value != "" {
		s := models.ListStatus(value)
		if s != models.ListStatusOpen && s != models.ListStatusFull {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		status = &s
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	lists, err := h.listService.AdminIndex(status, limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to list daily lists")
		return
	}

	response := make([]dto.ListDetailDTO, len(lists))
	for i, list := range lists {
		response[i] = dto.ToListDetailDTO(list, list.Presences)
	}
	c.JSON(http.StatusOK, gin.H{
		"daily_lists": response,
		"total":       len(response),
	})
}

// GetDailyList returns one list with its confirmed players.
func (h *AdminHandler) GetDailyList(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid list ID")
		return
	}

	list, occupancy, err := h.listService.GetList(id)
	if err != nil {
		if errors.Is(err, services.ErrListNotFound) {
			apierrors.NotFound(c, err.Error())
		} else {
			apierrors.InternalError(c, "Failed to load list")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListDetailDTO(*list, occupancy))
}

// BroadcastDailyList sends the list state to every active user with a phone.
func (h *AdminHandler) BroadcastDailyList(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid list ID")
		return
	}

	result, err := h.whatsappService.BroadcastList(id)
	if err != nil {
		if errors.Is(err, services.ErrListNotFound) {
			apierrors.NotFound(c, err.Error())
		} else {
			apierrors.InternalError(c, "Failed to broadcast list")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Broadcast completed",
		"total":      result.Total,
		"successful": result.Successful,
		"failed":     result.Failed,
	})
}
