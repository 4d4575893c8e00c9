package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dotaevolution/presence-api/internal/constants"
	"github.com/dotaevolution/presence-api/internal/dto"
	apierrors "github.com/dotaevolution/presence-api/internal/errors"
	"github.com/dotaevolution/presence-api/internal/middleware"
	"github.com/dotaevolution/presence-api/internal/models"
	"github.com/dotaevolution/presence-api/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a new player account.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Email             string            `json:"email" binding:"required"`
		Password          string            `json:"password" binding:"required"`
		Name              string            `json:"name" binding:"required"`
		Nickname          string            `json:"nickname" binding:"required"`
		Phone             *string           `json:"phone"`
		RankMedal         string            `json:"rank_medal" binding:"required"`
		RankStars         int               `json:"rank_stars" binding:"required"`
		Positions         []models.Position `json:"positions"`
		PreferredPosition *models.Position  `json:"preferred_position"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(services.RegisterInput{
		Email:             req.Email,
		Password:          req.Password,
		Name:              req.Name,
		Nickname:          req.Nickname,
		Phone:             req.Phone,
		RankMedal:         models.RankMedal(req.RankMedal),
		RankStars:         req.RankStars,
		Positions:         req.Positions,
		PreferredPosition: req.PreferredPosition,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	if !h.startSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	if !h.startSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateProfile edits the authenticated user's roster attributes.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateRequest struct {
		Phone             *string            `json:"phone"`
		RankMedal         *string            `json:"rank_medal"`
		RankStars         *int               `json:"rank_stars"`
		Positions         *[]models.Position `json:"positions"`
		PreferredPosition *models.Position   `json:"preferred_position"`
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateProfileInput{
		Phone:             req.Phone,
		RankStars:         req.RankStars,
		Positions:         req.Positions,
		PreferredPosition: req.PreferredPosition,
	}
	if req.RankMedal != nil {
		medal := models.RankMedal(*req.RankMedal)
		input.RankMedal = &medal
	}

	user, err := h.authService.UpdateProfile(userID, input)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func (h *AuthHandler) startSession(c *gin.Context, userID uint64) bool {
	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, userID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return false
	}
	return true
}

// currentUser loads the authenticated user or writes the error response.
func currentUser(c *gin.Context, authService *services.AuthService) (*models.User, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return nil, false
	}

	user, err := authService.GetUser(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.Unauthorized(c, "Not authenticated")
		} else {
			apierrors.InternalError(c, "")
		}
		return nil, false
	}
	return user, true
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidNickname),
		errors.Is(err, services.ErrInvalidPhone),
		errors.Is(err, services.ErrInvalidRank),
		errors.Is(err, services.ErrInvalidPosition):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrNameAndPhoneTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrAccountDisabled):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
