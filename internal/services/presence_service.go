package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dotaevolution/presence-api/internal/metrics"
	"github.com/dotaevolution/presence-api/internal/models"
	"github.com/dotaevolution/presence-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidPosition       = errors.New("invalid position")
	ErrInvalidListType       = errors.New("invalid list type")
	ErrNotEligible           = errors.New("user is not eligible for this list")
	ErrPositionTaken         = errors.New("position is already taken")
	ErrListNotOpen           = errors.New("list is not open for confirmations")
	ErrAlreadyConfirmedToday = errors.New("user already confirmed in another list today")
	ErrPresenceNotFound      = errors.New("no confirmed presence found")
)

// PresenceService drives list progression: it validates a confirm or cancel
// request, mutates the presence ledger, and seals or reopens lists as their
// occupancy crosses capacity. All writes for one request run in a single
// transaction with the target list row-locked, so two confirms for the same
// (date, family) serialize; the partial unique indexes on presences are the
// backstop when they do not.
type PresenceService struct {
	db           *gorm.DB
	listRepo     repository.ListRepository
	presenceRepo repository.PresenceRepository
}

// NewPresenceService creates a new PresenceService
func NewPresenceService(db *gorm.DB, listRepo repository.ListRepository, presenceRepo repository.PresenceRepository) *PresenceService {
	return &PresenceService{
		db:           db,
		listRepo:     listRepo,
		presenceRepo: presenceRepo,
	}
}

// ConfirmInput represents a slot confirmation request
type ConfirmInput struct {
	User     *models.User
	Position models.Position
	ListType models.ListType
	Date     time.Time
	Source   models.PresenceSource
	Notes    string
}

// ConfirmResult carries everything a caller needs to render or notify:
// the assignment, the fresh list state, and the successor when the list
// just sealed.
type ConfirmResult struct {
	Presence     *models.Presence
	List         *models.DailyList
	Occupancy    []models.Presence
	ListAdvanced bool
	NextList     *models.DailyList
}

// Confirm places the user on a slot of the current open list for
// (date, family), creating the list if none is open. Filling the last slot
// seals the list and opens its successor in the same transaction.
func (s *PresenceService) Confirm(input ConfirmInput) (*ConfirmResult, error) {
	if !models.ValidPosition(input.Position) {
		return nil, ErrInvalidPosition
	}
	if !models.ValidListType(input.ListType) {
		return nil, ErrInvalidListType
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}
	if input.Source == "" {
		input.Source = models.SourceWeb
	}

	result := &ConfirmResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		lists := s.listRepo.WithTx(tx)
		presences := s.presenceRepo.WithTx(tx)

		list, err := lists.CurrentOpenList(input.Date, input.ListType)
		if err != nil {
			return fmt.Errorf("failed to resolve open list: %w", err)
		}

		if !input.User.CanJoinList(input.ListType) {
			return ErrNotEligible
		}

		existing, err := presences.FindConfirmedForDay(input.User.ID, input.Date, input.ListType)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing confirmation: %w", err)
		}
		if existing != nil && existing.DailyListID != list.ID {
			return fmt.Errorf("%w: confirmed at %s on %s",
				ErrAlreadyConfirmedToday, existing.Position, existing.DailyList.DisplayName())
		}

		if list.Status != models.ListStatusOpen {
			return ErrListNotOpen
		}

		occupancy, err := presences.Occupancy(list.ID)
		if err != nil {
			return fmt.Errorf("failed to read occupancy: %w", err)
		}
		for _, p := range occupancy {
			if p.Position == input.Position && p.UserID != input.User.ID {
				return ErrPositionTaken
			}
		}

		if err := s.writeAssignment(presences, list, input, result); err != nil {
			return err
		}

		count, err := presences.ConfirmedCount(list.ID)
		if err != nil {
			return fmt.Errorf("failed to recount occupancy: %w", err)
		}
		if count >= int64(list.MaxPlayers) {
			next, err := lists.SealAndAdvance(list)
			if err != nil {
				return fmt.Errorf("failed to seal list: %w", err)
			}
			result.ListAdvanced = true
			result.NextList = next
			log.Printf("%s is full, created %s", list.DisplayName(), next.DisplayName())
		}

		result.List = list
		result.Occupancy, err = presences.Occupancy(list.ID)
		if err != nil {
			return fmt.Errorf("failed to reload occupancy: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ConfirmationsTotal.WithLabelValues(string(input.ListType), string(input.Source)).Inc()
	if result.ListAdvanced {
		metrics.ListsSealedTotal.WithLabelValues(string(input.ListType)).Inc()
	}
	return result, nil
}

// writeAssignment creates the user's row or updates it in place. A user has
// at most one row per list: a repeat confirm moves the position, a confirm
// after a cancel reactivates the row.
func (s *PresenceService) writeAssignment(presences repository.PresenceRepository, list *models.DailyList, input ConfirmInput, result *ConfirmResult) error {
	now := time.Now()

	row, err := presences.FindByListAndUser(list.ID, input.User.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to find assignment: %w", err)
	}

	if row != nil {
		row.Position = input.Position
		row.Status = models.PresenceConfirmed
		row.ConfirmedAt = now
		row.Source = input.Source
		if input.Notes != "" {
			row.Notes = input.Notes
		}
		if err := presences.Save(row); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPositionTaken
			}
			return fmt.Errorf("failed to update assignment: %w", err)
		}
		row.User = *input.User
		result.Presence = row
		return nil
	}

	row = &models.Presence{
		UserID:      input.User.ID,
		DailyListID: list.ID,
		Position:    input.Position,
		Source:      input.Source,
		Status:      models.PresenceConfirmed,
		ConfirmedAt: now,
		Notes:       input.Notes,
	}
	if err := presences.Create(row); err != nil {
		// A competitor won the race for this position; the partial unique
		// index is the source of truth.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrPositionTaken
		}
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	row.User = *input.User
	result.Presence = row
	return nil
}

// CancelInput represents a cancellation request
type CancelInput struct {
	User     *models.User
	ListType models.ListType
	Date     time.Time
	Reason   string
}

// CancelResult reports the freed assignment and whether a full list reopened
type CancelResult struct {
	Presence *models.Presence
	List     *models.DailyList
	Reopened bool
}

// Cancel releases the user's confirmed slot for (date, family). The row is
// kept with status cancelled for audit; if the owning list was full it goes
// back to open, while its successor keeps existing.
func (s *PresenceService) Cancel(input CancelInput) (*CancelResult, error) {
	if !models.ValidListType(input.ListType) {
		return nil, ErrInvalidListType
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	result := &CancelResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		lists := s.listRepo.WithTx(tx)
		presences := s.presenceRepo.WithTx(tx)

		presence, err := presences.FindConfirmedForDay(input.User.ID, input.Date, input.ListType)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPresenceNotFound
			}
			return fmt.Errorf("failed to find presence: %w", err)
		}

		list, err := lists.FindForUpdate(presence.DailyListID)
		if err != nil {
			return fmt.Errorf("failed to lock list: %w", err)
		}

		presence.Status = models.PresenceCancelled
		if input.Reason != "" {
			presence.Notes = input.Reason
		}
		if err := presences.Save(presence); err != nil {
			return fmt.Errorf("failed to cancel presence: %w", err)
		}

		if list.Status == models.ListStatusFull {
			if err := lists.Reopen(list); err != nil {
				return fmt.Errorf("failed to reopen list: %w", err)
			}
			result.Reopened = true
			log.Printf("%s reopened after cancellation", list.DisplayName())
		}

		result.Presence = presence
		result.List = list
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.CancellationsTotal.WithLabelValues(string(input.ListType)).Inc()
	if result.Reopened {
		metrics.ListsReopenedTotal.WithLabelValues(string(input.ListType)).Inc()
	}
	return result, nil
}
