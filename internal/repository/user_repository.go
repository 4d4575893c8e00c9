package repository

import (
	"github.com/dotaevolution/presence-api/internal/database"
	"github.com/dotaevolution/presence-api/internal/models"
	"github.com/dotaevolution/presence-api/internal/utils"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Save persists changes to a user
func (r *GormUserRepository) Save(user *models.User) error {
	return r.db.Save(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by normalized email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByNickname finds an active user by case-insensitive nickname
func (r *GormUserRepository) FindActiveByNickname(nickname string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("LOWER(nickname) = LOWER(?) AND active = ?", nickname, true).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByNameAndPhone reports whether the name+phone pair is taken
func (r *GormUserRepository) ExistsByNameAndPhone(name string, phone *string) (bool, error) {
	query := r.db.Model(&models.User{}).Where("name = ?", name)
	if phone == nil {
		query = query.Where("phone IS NULL")
	} else {
		query = query.Where("phone = ?", *phone)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns a page of users matching the filter, ordered by category then
// name, along with the total match count
func (r *GormUserRepository) List(filter UserFilter, params utils.PaginationParams) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.
		Order("category, name").
		Scopes(database.Paginate(params)).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListActiveWithPhone returns active users that have a phone number
func (r *GormUserRepository) ListActiveWithPhone() ([]models.User, error) {
	var users []models.User
	err := r.db.
		Where("active = ? AND phone IS NOT NULL AND phone <> ''", true).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CountByCategory counts active users of a category
func (r *GormUserRepository) CountByCategory(category models.ListType) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("category = ? AND active = ?", category, true).
		Count(&count).Error
	return count, err
}
