package repository

import (
	"time"

	"github.com/dotaevolution/presence-api/internal/models"
	"gorm.io/gorm"
)

// GormPresenceRepository is a GORM implementation of PresenceRepository
type GormPresenceRepository struct {
	db *gorm.DB
}

// NewPresenceRepository creates a new PresenceRepository
func NewPresenceRepository(db *gorm.DB) PresenceRepository {
	return &GormPresenceRepository{db: db}
}

// WithTx returns the repository bound to an open transaction
func (r *GormPresenceRepository) WithTx(tx *gorm.DB) PresenceRepository {
	return &GormPresenceRepository{db: tx}
}

// Occupancy returns the confirmed rows of a list with users preloaded
func (r *GormPresenceRepository) Occupancy(listID uint64) ([]models.Presence, error) {
	var presences []models.Presence
	err := r.db.
		Where("daily_list_id = ? AND status = ?", listID, models.PresenceConfirmed).
		Order("position ASC").
		Preload("User").
		Find(&presences).Error
	if err != nil {
		return nil, err
	}
	return presences, nil
}

// ConfirmedCount counts the confirmed rows of a list
func (r *GormPresenceRepository) ConfirmedCount(listID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Presence{}).
		Where("daily_list_id = ? AND status = ?", listID, models.PresenceConfirmed).
		Count(&count).Error
	return count, err
}

// FindByListAndUser finds the user's row in a list regardless of status.
// There is at most one by the (daily_list_id, user_id) unique index.
func (r *GormPresenceRepository) FindByListAndUser(listID, userID uint64) (*models.Presence, error) {
	var presence models.Presence
	if err := r.db.Where("daily_list_id = ? AND user_id = ?", listID, userID).
		First(&presence).Error; err != nil {
		return nil, err
	}
	return &presence, nil
}

// FindConfirmedForDay finds the user's confirmed row across all lists of
// (date, type), with the owning list preloaded
func (r *GormPresenceRepository) FindConfirmedForDay(userID uint64, date time.Time, listType models.ListType) (*models.Presence, error) {
	var presence models.Presence
	err := r.db.
		Joins("JOIN daily_lists ON daily_lists.id = presences.daily_list_id").
		Where("presences.user_id = ? AND presences.status = ?", userID, models.PresenceConfirmed).
		Where("daily_lists.date = ? AND daily_lists.list_type = ?", models.DateOf(date), listType).
		Preload("DailyList").
		First(&presence).Error
	if err != nil {
		return nil, err
	}
	return &presence, nil
}

// Create inserts a new presence row
func (r *GormPresenceRepository) Create(presence *models.Presence) error {
	return r.db.Create(presence).Error
}

// Save persists changes to an existing row
func (r *GormPresenceRepository) Save(presence *models.Presence) error {
	return r.db.Save(presence).Error
}

// CountConfirmedForDate counts confirmed rows across all lists of a date
func (r *GormPresenceRepository) CountConfirmedForDate(date time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Presence{}).
		Joins("JOIN daily_lists ON daily_lists.id = presences.daily_list_id").
		Where("daily_lists.date = ? AND presences.status = ?", models.DateOf(date), models.PresenceConfirmed).
		Count(&count).Error
	return count, err
}
