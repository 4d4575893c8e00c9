package repository

import (
	"time"

	"github.com/dotaevolution/presence-api/internal/models"
	"github.com/dotaevolution/presence-api/internal/utils"
	"gorm.io/gorm"
)

// ListRepository defines the interface for daily list data access
type ListRepository interface {
	// WithTx returns the repository bound to an open transaction
	WithTx(tx *gorm.DB) ListRepository

	// CurrentOpenList returns the open list for (date, type), creating the
	// next sequence if none exists. Safe under concurrent callers.
	CurrentOpenList(date time.Time, listType models.ListType) (*models.DailyList, error)

	// FindForUpdate re-reads a list by ID, row-locked where the dialect supports it
	FindForUpdate(id uint64) (*models.DailyList, error)

	// SealAndAdvance marks the list full and returns the successor open list.
	// Idempotent: sealing an already-full list just returns the current open list.
	SealAndAdvance(list *models.DailyList) (*models.DailyList, error)

	// Reopen flips a full list back to open
	Reopen(list *models.DailyList) error

	// FindByID finds a list by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.DailyList, error)

	// MaxSequence returns the highest sequence number for (date, type), 0 if none
	MaxSequence(date time.Time, listType models.ListType) (int, error)

	// CountForDate counts lists of a type on a date
	CountForDate(date time.Time, listType models.ListType) (int64, error)

	// ListSealedBetween returns sealed lists in [from, to], newest first
	ListSealedBetween(from, to time.Time, limit int) ([]models.DailyList, error)

	// ListRecent returns lists for the admin surface, newest first
	ListRecent(status *models.ListStatus, limit int) ([]models.DailyList, error)
}

// PresenceRepository defines the interface for slot-assignment data access
type PresenceRepository interface {
	// WithTx returns the repository bound to an open transaction
	WithTx(tx *gorm.DB) PresenceRepository

	// Occupancy returns the confirmed rows of a list with users preloaded
	Occupancy(listID uint64) ([]models.Presence, error)

	// ConfirmedCount counts the confirmed rows of a list
	ConfirmedCount(listID uint64) (int64, error)

	// FindByListAndUser finds the user's row in a list regardless of status
	FindByListAndUser(listID, userID uint64) (*models.Presence, error)

	// FindConfirmedForDay finds the user's confirmed row across all lists
	// of (date, type), with the owning list preloaded
	FindConfirmedForDay(userID uint64, date time.Time, listType models.ListType) (*models.Presence, error)

	// Create inserts a new presence row
	Create(presence *models.Presence) error

	// Save persists changes to an existing row
	Save(presence *models.Presence) error

	// CountConfirmedForDate counts confirmed rows across all lists of a date
	CountConfirmedForDate(date time.Time) (int64, error)
}

// UserFilter holds filtering options for the admin user listing
type UserFilter struct {
	Category *models.ListType
	Active   *bool
}

// UserRepository defines the interface for roster data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// Save persists changes to a user
	Save(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(email string) (*models.User, error)

	// FindActiveByNickname finds an active user by case-insensitive nickname
	FindActiveByNickname(nickname string) (*models.User, error)

	// ExistsByNameAndPhone reports whether the name+phone pair is taken
	ExistsByNameAndPhone(name string, phone *string) (bool, error)

	// List returns a page of users matching the filter, ordered by category
	// then name, along with the total match count
	List(filter UserFilter, params utils.PaginationParams) ([]models.User, int64, error)

	// ListActiveWithPhone returns active users that have a phone number
	ListActiveWithPhone() ([]models.User, error)

	// CountByCategory counts active users of a category
	CountByCategory(category models.ListType) (int64, error)
}
