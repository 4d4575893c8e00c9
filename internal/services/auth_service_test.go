package services

import (
	"testing"

	"github.com/dotaevolution/presence-api/internal/models"
	"github.com/dotaevolution/presence-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// AuthServiceTestSuite defines the test suite for AuthService
type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

// SetupTest runs before each test
func (suite *AuthServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.User{})
	suite.Require().NoError(err)

	suite.service = NewAuthService(repository.NewUserRepository(suite.db))
}

// TearDownTest runs after each test
func (suite *AuthServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *AuthServiceTestSuite) registerInput() RegisterInput {
	phone := "11987654321"
	return RegisterInput{
		Email:     "carry@example.com",
		Password:  "supersecret",
		Name:      "Carlos Silva",
		Nickname:  "carry_master",
		Phone:     &phone,
		RankMedal: models.MedalLegend,
		RankStars: 4,
		Positions: []models.Position{models.PositionP1, models.PositionP2},
	}
}

func (suite *AuthServiceTestSuite) TestRegister_Success() {
	user, err := suite.service.Register(suite.registerInput())

	suite.Require().NoError(err)
	assert.NotZero(suite.T(), user.ID)
	assert.Equal(suite.T(), "carry@example.com", user.Email)
	assert.Equal(suite.T(), models.RolePlayer, user.Role)
	assert.True(suite.T(), user.Active)

	// Password is stored hashed
	assert.NotEqual(suite.T(), "supersecret", user.PasswordHash)
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("supersecret"))
	assert.NoError(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestRegister_DerivesCategoryFromMedal() {
	input := suite.registerInput()
	user, err := suite.service.Register(input)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.ListTypeAncient, user.Category)

	input.Email = "divine@example.com"
	input.Nickname = "divine_player"
	input.Phone = nil
	input.RankMedal = models.MedalDivine
	user, err = suite.service.Register(input)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.ListTypeImmortal, user.Category)
}

func (suite *AuthServiceTestSuite) TestRegister_DuplicateEmail() {
	_, err := suite.service.Register(suite.registerInput())
	suite.Require().NoError(err)

	input := suite.registerInput()
	input.Nickname = "other_nick"
	input.Phone = nil
	_, err = suite.service.Register(input)
	assert.ErrorIs(suite.T(), err, ErrEmailTaken)
}

func (suite *AuthServiceTestSuite) TestRegister_Validation() {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		want   error
	}{
		{"short password", func(i *RegisterInput) { i.Password = "abc" }, ErrPasswordTooShort},
		{"bad email", func(i *RegisterInput) { i.Email = "not-an-email" }, ErrInvalidEmail},
		{"bad nickname", func(i *RegisterInput) { i.Nickname = "x" }, ErrInvalidNickname},
		{"bad phone", func(i *RegisterInput) { phone := "123"; i.Phone = &phone }, ErrInvalidPhone},
		{"bad medal", func(i *RegisterInput) { i.RankMedal = "radiant" }, ErrInvalidRank},
		{"bad stars", func(i *RegisterInput) { i.RankStars = 9 }, ErrInvalidRank},
		{"bad position", func(i *RegisterInput) { i.Positions = []models.Position{"P9"} }, ErrInvalidPosition},
	}

	for _, tt := range tests {
		input := suite.registerInput()
		tt.mutate(&input)
		_, err := suite.service.Register(input)
		assert.ErrorIs(suite.T(), err, tt.want, tt.name)
	}
}

func (suite *AuthServiceTestSuite) TestRegister_ImmortalStars() {
	// Immortal uses the leaderboard rank, which exceeds five
	input := suite.registerInput()
	input.RankMedal = models.MedalImmortal
	input.RankStars = 1234

	user, err := suite.service.Register(input)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Immortal #1234", user.DisplayRank())
}

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	_, err := suite.service.Register(suite.registerInput())
	suite.Require().NoError(err)

	user, err := suite.service.Login(LoginInput{
		Email:    "carry@example.com",
		Password: "supersecret",
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "carry_master", user.Nickname)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	_, err := suite.service.Register(suite.registerInput())
	suite.Require().NoError(err)

	_, err = suite.service.Login(LoginInput{
		Email:    "carry@example.com",
		Password: "wrongpassword",
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownEmail() {
	_, err := suite.service.Login(LoginInput{
		Email:    "nobody@example.com",
		Password: "supersecret",
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestLogin_DeactivatedAccount() {
	user, err := suite.service.Register(suite.registerInput())
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.DeactivateUser(user.ID))

	_, err = suite.service.Login(LoginInput{
		Email:    "carry@example.com",
		Password: "supersecret",
	})
	assert.ErrorIs(suite.T(), err, ErrAccountDisabled)
}

func (suite *AuthServiceTestSuite) TestUpdateProfile_RankChangeRederivesCategory() {
	user, err := suite.service.Register(suite.registerInput())
	suite.Require().NoError(err)
	suite.Require().Equal(models.ListTypeAncient, user.Category)

	medal := models.MedalDivine
	stars := 2
	updated, err := suite.service.UpdateProfile(user.ID, UpdateProfileInput{
		RankMedal: &medal,
		RankStars: &stars,
	})

	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.MedalDivine, updated.RankMedal)
	assert.Equal(suite.T(), models.ListTypeImmortal, updated.Category)
	assert.True(suite.T(), updated.CanJoinImmortalList())
}

func (suite *AuthServiceTestSuite) TestUpdateProfile_Positions() {
	user, err := suite.service.Register(suite.registerInput())
	suite.Require().NoError(err)

	positions := []models.Position{models.PositionP5}
	preferred := models.PositionP5
	updated, err := suite.service.UpdateProfile(user.ID, UpdateProfileInput{
		Positions:         &positions,
		PreferredPosition: &preferred,
	})

	suite.Require().NoError(err)
	assert.True(suite.T(), updated.PlaysPosition(models.PositionP5))
	assert.False(suite.T(), updated.PlaysPosition(models.PositionP1))
}

func (suite *AuthServiceTestSuite) TestDeactivateUser_KeepsAccount() {
	user, err := suite.service.Register(suite.registerInput())
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.DeactivateUser(user.ID))

	reloaded, err := suite.service.GetUser(user.ID)
	suite.Require().NoError(err)
	assert.False(suite.T(), reloaded.Active)
	assert.False(suite.T(), reloaded.CanJoinAncientList())
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
