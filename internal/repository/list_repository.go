package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/dotaevolution/presence-api/internal/constants"
	"github.com/dotaevolution/presence-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormListRepository is a GORM implementation of ListRepository
type GormListRepository struct {
	db *gorm.DB
}

// NewListRepository creates a new ListRepository
func NewListRepository(db *gorm.DB) ListRepository {
	return &GormListRepository{db: db}
}

// WithTx returns the repository bound to an open transaction
func (r *GormListRepository) WithTx(tx *gorm.DB) ListRepository {
	return &GormListRepository{db: tx}
}

// lockForUpdate adds a row lock on dialects that support it. SQLite, used
// in tests, has no FOR UPDATE; its single-writer lock serializes anyway.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// CurrentOpenList returns the open list for (date, type) or creates the next
// sequence. Creation is guarded by the unique index on
// (date, list_type, sequence_number): when two callers race, the loser's
// insert fails with a duplicate key and the loop re-reads the winner's list.
func (r *GormListRepository) CurrentOpenList(date time.Time, listType models.ListType) (*models.DailyList, error) {
	date = models.DateOf(date)

	for attempt := 0; attempt < 3; attempt++ {
		var list models.DailyList
		err := lockForUpdate(r.db).
			Where("date = ? AND list_type = ? AND status = ?", date, listType, models.ListStatusOpen).
			Order("sequence_number ASC").
			First(&list).Error
		if err == nil {
			return &list, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		maxSeq, err := r.MaxSequence(date, listType)
		if err != nil {
			return nil, err
		}

		list = models.DailyList{
			Date:           date,
			ListType:       listType,
			SequenceNumber: maxSeq + 1,
			Status:         models.ListStatusOpen,
			MaxPlayers:     constants.MaxPlayers,
			CreatedBy:      "system",
		}
		err = r.db.Create(&list).Error
		if err == nil {
			return &list, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// a competitor allocated this sequence first; re-read
	}

	return nil, fmt.Errorf("could not resolve open %s list for %s", listType, date.Format("2006-01-02"))
}

// FindForUpdate re-reads a list by ID with a row lock
func (r *GormListRepository) FindForUpdate(id uint64) (*models.DailyList, error) {
	var list models.DailyList
	if err := lockForUpdate(r.db).First(&list, id).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

// SealAndAdvance marks the list full and opens the successor. The status
// flip is conditional on the row still being open, so a second invocation
// for an already-sealed list skips the update and just resolves the
// current open list.
func (r *GormListRepository) SealAndAdvance(list *models.DailyList) (*models.DailyList, error) {
	if list.Status == models.ListStatusOpen {
		res := r.db.Model(&models.DailyList{}).
			Where("id = ? AND status = ?", list.ID, models.ListStatusOpen).
			Update("status", models.ListStatusFull)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			list.Status = models.ListStatusFull
		}
	}

	return r.CurrentOpenList(list.Date, list.ListType)
}

// Reopen flips a full list back to open
func (r *GormListRepository) Reopen(list *models.DailyList) error {
	if err := list.Reopen(); err != nil {
		return err
	}
	return r.db.Model(&models.DailyList{}).
		Where("id = ?", list.ID).
		Update("status", models.ListStatusOpen).Error
}

// FindByID finds a list by ID with optional preloading
func (r *GormListRepository) FindByID(id uint64, preload ...string) (*models.DailyList, error) {
	var list models.DailyList
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&list, id).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

// MaxSequence returns the highest allocated sequence for (date, type)
func (r *GormListRepository) MaxSequence(date time.Time, listType models.ListType) (int, error) {
	var maxSeq *int
	err := r.db.Model(&models.DailyList{}).
		Where("date = ? AND list_type = ?", models.DateOf(date), listType).
		Select("MAX(sequence_number)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	if maxSeq == nil {
		return 0, nil
	}
	return *maxSeq, nil
}

// CountForDate counts lists of a type on a date
func (r *GormListRepository) CountForDate(date time.Time, listType models.ListType) (int64, error) {
	var count int64
	err := r.db.Model(&models.DailyList{}).
		Where("date = ? AND list_type = ?", models.DateOf(date), listType).
		Count(&count).Error
	return count, err
}

// ListSealedBetween returns sealed lists in [from, to], newest first
func (r *GormListRepository) ListSealedBetween(from, to time.Time, limit int) ([]models.DailyList, error) {
	var lists []models.DailyList
	err := r.db.
		Where("date BETWEEN ? AND ? AND status = ?", models.DateOf(from), models.DateOf(to), models.ListStatusFull).
		Order("date DESC, sequence_number DESC").
		Limit(limit).
		Preload("Presences", "status = ?", models.PresenceConfirmed).
		Preload("Presences.User").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

// ListRecent returns lists for the admin surface, newest first
func (r *GormListRepository) ListRecent(status *models.ListStatus, limit int) ([]models.DailyList, error) {
	query := r.db.
		Order("date DESC, sequence_number DESC").
		Limit(limit).
		Preload("Presences", "status = ?", models.PresenceConfirmed).
		Preload("Presences.User")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var lists []models.DailyList
	if err := query.Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}
