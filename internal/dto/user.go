package dto

import (
	"github.com/dotaevolution/presence-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID                 uint64              `json:"id"`
	Email              string              `json:"email"`
	Name               string              `json:"name"`
	Nickname           string              `json:"nickname"`
	Phone              *string             `json:"phone,omitempty"`
	Category           models.ListType     `json:"category"`
	RankMedal          models.RankMedal    `json:"rank_medal"`
	RankStars          int                 `json:"rank_stars"`
	Positions          []models.Position   `json:"positions"`
	PreferredPosition  *models.Position    `json:"preferred_position,omitempty"`
	Role               models.UserRole     `json:"role"`
	Active             bool                `json:"active"`
	DisplayRank        string              `json:"display_rank"`
	FullDisplayName    string              `json:"full_display_name"`
	CanJoinImmortal    bool                `json:"can_join_immortal_list"`
}

// PlayerDTO is the compact user shape embedded in presence payloads
type PlayerDTO struct {
	Nickname string `json:"nickname"`
	Rank     string `json:"rank"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:                user.ID,
		Email:             user.Email,
		Name:              user.Name,
		Nickname:          user.Nickname,
		Phone:             user.Phone,
		Category:          user.Category,
		RankMedal:         user.RankMedal,
		RankStars:         user.RankStars,
		Positions:         user.Positions,
		PreferredPosition: user.PreferredPosition,
		Role:              user.Role,
		Active:            user.Active,
		DisplayRank:       user.DisplayRank(),
		FullDisplayName:   user.FullDisplayName(),
		CanJoinImmortal:   user.CanJoinImmortalList(),
	}
}

// ToPlayerDTO converts a User model to the compact PlayerDTO
func ToPlayerDTO(user models.User) PlayerDTO {
	return PlayerDTO{
		Nickname: user.Nickname,
		Rank:     user.DisplayRank(),
	}
}
