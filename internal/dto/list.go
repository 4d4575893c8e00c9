package dto

import (
	"time"

	"github.com/dotaevolution/presence-api/internal/models"
	"github.com/dotaevolution/presence-api/internal/services"
)

// PresenceDTO represents one confirmed slot in API responses
type PresenceDTO struct {
	ID          uint64          `json:"id"`
	Position    models.Position `json:"position"`
	ConfirmedAt time.Time       `json:"confirmed_at"`
	User        PlayerDTO       `json:"user"`
}

// ListDTO represents a daily list in API responses
type ListDTO struct {
	ID                 uint64            `json:"id"`
	Date               string            `json:"date"`
	ListType           models.ListType   `json:"list_type"`
	SequenceNumber     int               `json:"sequence_number"`
	DisplayName        string            `json:"display_name"`
	Status             models.ListStatus `json:"status"`
	AvailablePositions []models.Position `json:"available_positions"`
	PlayersCount       int               `json:"players_count"`
}

// ListDetailDTO adds the confirmed players to ListDTO
type ListDetailDTO struct {
	ListDTO
	ConfirmedPlayers []PresenceDTO `json:"confirmed_players"`
}

// UserStatusDTO tells the caller whether they can join a list
type UserStatusDTO struct {
	CanJoin            bool              `json:"can_join"`
	Reason             string            `json:"reason,omitempty"`
	ConfirmedList      string            `json:"confirmed_list,omitempty"`
	ConfirmedPosition  models.Position   `json:"position,omitempty"`
	AvailablePositions []models.Position `json:"available_positions,omitempty"`
}

// CurrentListDTO is one family's section of the dashboard
type CurrentListDTO struct {
	ListDetailDTO
	UserStatus UserStatusDTO `json:"user_status"`
}

// DailyStatsDTO aggregates the day across both families
type DailyStatsDTO struct {
	AncientCount      int64            `json:"ancient_count"`
	ImmortalCount     int64            `json:"immortal_count"`
	TotalPlayersToday int64            `json:"total_players_today"`
	CurrentSequence   map[string]int   `json:"current_sequence"`
	RegisteredPlayers map[string]int64 `json:"registered_players"`
}

// HistoricalListDTO is one sealed list in the dashboard history
type HistoricalListDTO struct {
	ID          uint64   `json:"id"`
	DisplayName string   `json:"display_name"`
	Date        string   `json:"date"`
	CompletedAt string   `json:"completed_at"`
	Players     []string `json:"players"`
}

// DashboardResponse is the full dashboard payload
type DashboardResponse struct {
	CurrentLists map[string]CurrentListDTO `json:"current_lists"`
	DailyStats   DailyStatsDTO             `json:"daily_stats"`
	History      []HistoricalListDTO       `json:"historical_summary"`
}

// ConfirmResponse is the payload of a successful confirmation
type ConfirmResponse struct {
	Presence        PresenceDTO `json:"presence"`
	UpdatedList     ListDTO     `json:"updated_list"`
	NextListCreated bool        `json:"next_list_created"`
	NextList        *ListDTO    `json:"next_list,omitempty"`
}

// ToPresenceDTO converts a presence row (with user preloaded) to DTO
func ToPresenceDTO(presence models.Presence) PresenceDTO {
	return PresenceDTO{
		ID:          presence.ID,
		Position:    presence.Position,
		ConfirmedAt: presence.ConfirmedAt,
		User:        ToPlayerDTO(presence.User),
	}
}

// ToListDTO converts a list and its occupancy to DTO
func ToListDTO(list models.DailyList, occupancy []models.Presence) ListDTO {
	occupied := make([]models.Position, len(occupancy))
	for i, p := range occupancy {
		occupied[i] = p.Position
	}

	return ListDTO{
		ID:                 list.ID,
		Date:               list.Date.Format("2006-01-02"),
		ListType:           list.ListType,
		SequenceNumber:     list.SequenceNumber,
		DisplayName:        list.DisplayName(),
		Status:             list.Status,
		AvailablePositions: models.AvailablePositions(occupied),
		PlayersCount:       len(occupancy),
	}
}

// ToListDetailDTO converts a list with its confirmed players to DTO
func ToListDetailDTO(list models.DailyList, occupancy []models.Presence) ListDetailDTO {
	players := make([]PresenceDTO, len(occupancy))
	for i, p := range occupancy {
		players[i] = ToPresenceDTO(p)
	}
	return ListDetailDTO{
		ListDTO:          ToListDTO(list, occupancy),
		ConfirmedPlayers: players,
	}
}

// ToConfirmResponse shapes a successful engine result
func ToConfirmResponse(result *services.ConfirmResult) ConfirmResponse {
	resp := ConfirmResponse{
		Presence:        ToPresenceDTO(*result.Presence),
		UpdatedList:     ToListDTO(*result.List, result.Occupancy),
		NextListCreated: result.ListAdvanced,
	}
	if result.NextList != nil {
		next := ToListDTO(*result.NextList, nil)
		resp.NextList = &next
	}
	return resp
}

// ToDashboardResponse shapes the dashboard payload
func ToDashboardResponse(dashboard *services.Dashboard) DashboardResponse {
	currentLists := make(map[string]CurrentListDTO, len(dashboard.CurrentLists))
	for listType, current := range dashboard.CurrentLists {
		currentLists[string(listType)] = CurrentListDTO{
			ListDetailDTO: ToListDetailDTO(*current.List, current.Occupancy),
			UserStatus: UserStatusDTO{
				CanJoin:            current.UserStatus.CanJoin,
				Reason:             current.UserStatus.Reason,
				ConfirmedList:      current.UserStatus.ConfirmedList,
				ConfirmedPosition:  current.UserStatus.ConfirmedPosition,
				AvailablePositions: current.UserStatus.AvailablePositions,
			},
		}
	}

	history := make([]HistoricalListDTO, len(dashboard.History))
	for i, list := range dashboard.History {
		players := make([]string, 0, len(list.Presences))
		for _, p := range list.Presences {
			players = append(players, p.User.Nickname+" ("+string(p.Position)+")")
		}
		history[i] = HistoricalListDTO{
			ID:          list.ID,
			DisplayName: list.DisplayName(),
			Date:        list.Date.Format("2006-01-02"),
			CompletedAt: list.UpdatedAt.Format(time.RFC3339),
			Players:     players,
		}
	}

	return DashboardResponse{
		CurrentLists: currentLists,
		DailyStats: DailyStatsDTO{
			AncientCount:      dashboard.Stats.AncientListCount,
			ImmortalCount:     dashboard.Stats.ImmortalListCount,
			TotalPlayersToday: dashboard.Stats.TotalPlayersToday,
			CurrentSequence: map[string]int{
				string(models.ListTypeAncient):  dashboard.Stats.AncientMaxSequence,
				string(models.ListTypeImmortal): dashboard.Stats.ImmortalMaxSeq,
			},
			RegisteredPlayers: map[string]int64{
				string(models.ListTypeAncient):  dashboard.Stats.AncientRosterSize,
				string(models.ListTypeImmortal): dashboard.Stats.ImmortalRosterSize,
			},
		},
		History: history,
	}
}
