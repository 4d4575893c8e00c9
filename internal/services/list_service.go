package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dotaevolution/presence-api/internal/constants"
	"github.com/dotaevolution/presence-api/internal/models"
	"github.com/dotaevolution/presence-api/internal/repository"
	"gorm.io/gorm"
)

var ErrListNotFound = errors.New("daily list not found")

// Join-status reasons reported per list on the dashboard.
const (
	ReasonNotAuthenticated      = "not_authenticated"
	ReasonNotEligible           = "not_eligible"
	ReasonAlreadyConfirmedToday = "already_confirmed_today"
	ReasonListFull              = "list_full"
)

// ListService answers read queries about daily lists: the dashboard with
// both families' current lists, and the admin index.
type ListService struct {
	listRepo     repository.ListRepository
	presenceRepo repository.PresenceRepository
	userRepo     repository.UserRepository
}

// NewListService creates a new ListService
func NewListService(listRepo repository.ListRepository, presenceRepo repository.PresenceRepository, userRepo repository.UserRepository) *ListService {
	return &ListService{
		listRepo:     listRepo,
		presenceRepo: presenceRepo,
		userRepo:     userRepo,
	}
}

// UserListStatus tells one user whether they may join one list and why not.
type UserListStatus struct {
	CanJoin            bool
	Reason             string
	ConfirmedList      string
	ConfirmedPosition  models.Position
	AvailablePositions []models.Position
}

// CurrentList is one family's open list with its occupancy.
type CurrentList struct {
	List               *models.DailyList
	Occupancy          []models.Presence
	AvailablePositions []models.Position
	UserStatus         *UserListStatus
}

// DailyStats aggregates the day across both families.
type DailyStats struct {
	AncientListCount   int64
	ImmortalListCount  int64
	TotalPlayersToday  int64
	AncientMaxSequence int
	ImmortalMaxSeq     int
	AncientRosterSize  int64
	ImmortalRosterSize int64
}

// Dashboard is the full player landing payload.
type Dashboard struct {
	CurrentLists map[models.ListType]*CurrentList
	Stats        DailyStats
	History      []models.DailyList
}

// Dashboard resolves (or creates) the current open list of each family,
// computes the caller's join status per list, and collects daily stats and
// recently sealed lists.
func (s *ListService) Dashboard(user *models.User, date time.Time) (*Dashboard, error) {
	if date.IsZero() {
		date = time.Now()
	}

	dashboard := &Dashboard{
		CurrentLists: make(map[models.ListType]*CurrentList, len(models.ListTypes)),
	}

	for _, listType := range models.ListTypes {
		current, err := s.currentList(user, date, listType)
		if err != nil {
			return nil, err
		}
		dashboard.CurrentLists[listType] = current
	}

	stats, err := s.dailyStats(date)
	if err != nil {
		return nil, err
	}
	dashboard.Stats = *stats

	from := date.AddDate(0, 0, -constants.HistoryDays)
	history, err := s.listRepo.ListSealedBetween(from, date, constants.MaxHistoricalLists)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	dashboard.History = history

	return dashboard, nil
}

func (s *ListService) currentList(user *models.User, date time.Time, listType models.ListType) (*CurrentList, error) {
	list, err := s.listRepo.CurrentOpenList(date, listType)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s list: %w", listType, err)
	}

	occupancy, err := s.presenceRepo.Occupancy(list.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read occupancy: %w", err)
	}

	occupied := make([]models.Position, len(occupancy))
	for i, p := range occupancy {
		occupied[i] = p.Position
	}
	available := models.AvailablePositions(occupied)

	status, err := s.userStatus(user, date, listType, available)
	if err != nil {
		return nil, err
	}

	return &CurrentList{
		List:               list,
		Occupancy:          occupancy,
		AvailablePositions: available,
		UserStatus:         status,
	}, nil
}

// userStatus mirrors the confirm checks as a pure query so the front end can
// explain up front why a join would fail.
func (s *ListService) userStatus(user *models.User, date time.Time, listType models.ListType, available []models.Position) (*UserListStatus, error) {
	if user == nil {
		return &UserListStatus{Reason: ReasonNotAuthenticated}, nil
	}

	if !user.CanJoinList(listType) {
		return &UserListStatus{Reason: ReasonNotEligible}, nil
	}

	existing, err := s.presenceRepo.FindConfirmedForDay(user.ID, date, listType)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check confirmation: %w", err)
	}
	if existing != nil {
		return &UserListStatus{
			Reason:            ReasonAlreadyConfirmedToday,
			ConfirmedList:     existing.DailyList.DisplayName(),
			ConfirmedPosition: existing.Position,
		}, nil
	}

	if len(available) == 0 {
		return &UserListStatus{Reason: ReasonListFull}, nil
	}

	return &UserListStatus{
		CanJoin:            true,
		AvailablePositions: available,
	}, nil
}

func (s *ListService) dailyStats(date time.Time) (*DailyStats, error) {
	ancientCount, err := s.listRepo.CountForDate(date, models.ListTypeAncient)
	if err != nil {
		return nil, fmt.Errorf("failed to count ancient lists: %w", err)
	}
	immortalCount, err := s.listRepo.CountForDate(date, models.ListTypeImmortal)
	if err != nil {
		return nil, fmt.Errorf("failed to count immortal lists: %w", err)
	}
	total, err := s.presenceRepo.CountConfirmedForDate(date)
	if err != nil {
		return nil, fmt.Errorf("failed to count players: %w", err)
	}
	ancientSeq, err := s.listRepo.MaxSequence(date, models.ListTypeAncient)
	if err != nil {
		return nil, fmt.Errorf("failed to read ancient sequence: %w", err)
	}
	immortalSeq, err := s.listRepo.MaxSequence(date, models.ListTypeImmortal)
	if err != nil {
		return nil, fmt.Errorf("failed to read immortal sequence: %w", err)
	}
	ancientRoster, err := s.userRepo.CountByCategory(models.ListTypeAncient)
	if err != nil {
		return nil, fmt.Errorf("failed to count ancient roster: %w", err)
	}
	immortalRoster, err := s.userRepo.CountByCategory(models.ListTypeImmortal)
	if err != nil {
		return nil, fmt.Errorf("failed to count immortal roster: %w", err)
	}

	return &DailyStats{
		AncientListCount:   ancientCount,
		ImmortalListCount:  immortalCount,
		TotalPlayersToday:  total,
		AncientMaxSequence: ancientSeq,
		ImmortalMaxSeq:     immortalSeq,
		AncientRosterSize:  ancientRoster,
		ImmortalRosterSize: immortalRoster,
	}, nil
}

// AdminIndex returns recent lists for the admin surface.
func (s *ListService) AdminIndex(status *models.ListStatus, limit int) ([]models.DailyList, error) {
	if limit <= 0 || limit > constants.MaxPageSize {
		limit = 30
	}
	lists, err := s.listRepo.ListRecent(status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily lists: %w", err)
	}
	return lists, nil
}

// GetList loads one list with its confirmed players.
func (s *ListService) GetList(id uint64) (*models.DailyList, []models.Presence, error) {
	list, err := s.listRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrListNotFound
		}
		return nil, nil, fmt.Errorf("failed to find list: %w", err)
	}

	occupancy, err := s.presenceRepo.Occupancy(list.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read occupancy: %w", err)
	}

	return list, occupancy, nil
}
