package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dotaevolution/presence-api/internal/constants"
	"github.com/dotaevolution/presence-api/internal/models"
	"github.com/dotaevolution/presence-api/internal/repository"
	"github.com/dotaevolution/presence-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email is already registered")
	ErrNameAndPhoneTaken    = errors.New("name and phone combination already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountDisabled      = errors.New("account has been deactivated")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrInvalidEmail         = errors.New("email format is invalid")
	ErrInvalidNickname      = errors.New("nickname must be 2-20 characters of letters, numbers, underscores or hyphens")
	ErrInvalidPhone         = errors.New("phone number must have 10 or 11 digits")
	ErrInvalidRank          = errors.New("invalid rank medal and stars combination")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	nicknamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	phonePattern    = regexp.MustCompile(`^\d{10,11}$`)
)

// AuthService handles registration, authentication and roster maintenance.
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// RegisterInput represents the required information to create a new player.
type RegisterInput struct {
	Email             string
	Password          string
	Name              string
	Nickname          string
	Phone             *string
	RankMedal         models.RankMedal
	RankStars         int
	Positions         []models.Position
	PreferredPosition *models.Position
}

// Register creates a new player. The list family (category) is derived from
// the rank medal and never taken from input.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	nickname := strings.TrimSpace(input.Nickname)

	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if len(nickname) < constants.MinNicknameLength ||
		len(nickname) > constants.MaxNicknameLength ||
		!nicknamePattern.MatchString(nickname) {
		return nil, ErrInvalidNickname
	}
	if input.Phone != nil && !phonePattern.MatchString(*input.Phone) {
		return nil, ErrInvalidPhone
	}
	if err := validateRank(input.RankMedal, input.RankStars); err != nil {
		return nil, err
	}
	for _, p := range input.Positions {
		if !models.ValidPosition(p) {
			return nil, ErrInvalidPosition
		}
	}
	if input.PreferredPosition != nil && !models.ValidPosition(*input.PreferredPosition) {
		return nil, ErrInvalidPosition
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	taken, err := s.userRepo.ExistsByNameAndPhone(name, input.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check name and phone: %w", err)
	}
	if taken {
		return nil, ErrNameAndPhoneTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:             email,
		PasswordHash:      string(hashedPassword),
		Name:              name,
		Nickname:          nickname,
		Phone:             input.Phone,
		RankMedal:         input.RankMedal,
		RankStars:         input.RankStars,
		Category:          models.CategoryForMedal(input.RankMedal),
		Positions:         models.PositionList(input.Positions),
		PreferredPosition: input.PreferredPosition,
		Role:              models.RolePlayer,
		Active:            true,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, ErrAccountDisabled
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// UpdateProfileInput holds the self-service editable fields. Nil means
// leave unchanged.
type UpdateProfileInput struct {
	Phone             *string
	RankMedal         *models.RankMedal
	RankStars         *int
	Positions         *[]models.Position
	PreferredPosition *models.Position
}

// UpdateProfile edits a player's roster attributes. Changing the rank medal
// re-derives the category so tier and rank never drift apart.
func (s *AuthService) UpdateProfile(userID uint64, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if input.Phone != nil {
		if !phonePattern.MatchString(*input.Phone) {
			return nil, ErrInvalidPhone
		}
		user.Phone = input.Phone
	}

	medal := user.RankMedal
	stars := user.RankStars
	if input.RankMedal != nil {
		medal = *input.RankMedal
	}
	if input.RankStars != nil {
		stars = *input.RankStars
	}
	if medal != user.RankMedal || stars != user.RankStars {
		if err := validateRank(medal, stars); err != nil {
			return nil, err
		}
		user.RankMedal = medal
		user.RankStars = stars
		user.Category = models.CategoryForMedal(medal)
	}

	if input.Positions != nil {
		for _, p := range *input.Positions {
			if !models.ValidPosition(p) {
				return nil, ErrInvalidPosition
			}
		}
		user.Positions = models.PositionList(*input.Positions)
	}
	if input.PreferredPosition != nil {
		if !models.ValidPosition(*input.PreferredPosition) {
			return nil, ErrInvalidPosition
		}
		user.PreferredPosition = input.PreferredPosition
	}

	if err := s.userRepo.Save(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// ListUsers returns a page of users for the admin surface.
func (s *AuthService) ListUsers(filter repository.UserFilter, params utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// DeactivateUser soft-deactivates a player. Accounts are never hard-deleted.
func (s *AuthService) DeactivateUser(id uint64) error {
	user, err := s.GetUser(id)
	if err != nil {
		return err
	}
	user.Active = false
	if err := s.userRepo.Save(user); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return nil
}

func validateRank(medal models.RankMedal, stars int) error {
	if !models.ValidMedal(medal) {
		return ErrInvalidRank
	}
	if medal == models.MedalImmortal {
		if stars <= 0 {
			return ErrInvalidRank
		}
		return nil
	}
	if stars < 1 || stars > 5 {
		return ErrInvalidRank
	}
	return nil
}
