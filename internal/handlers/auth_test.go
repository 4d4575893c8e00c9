package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dotaevolution/presence-api/internal/database"
	"github.com/dotaevolution/presence-api/internal/dto"
	"github.com/dotaevolution/presence-api/internal/middleware"
	"github.com/dotaevolution/presence-api/internal/models"
	"github.com/dotaevolution/presence-api/internal/repository"
	"github.com/dotaevolution/presence-api/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	authService *services.AuthService
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err)

	database.SetDB(db)

	authService := services.NewAuthService(repository.NewUserRepository(db))
	handler := NewAuthHandler(authService)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions("presence_session", store))
	r.POST("/api/auth/register", handler.Register)
	r.POST("/api/auth/login", handler.Login)
	r.POST("/api/auth/logout", handler.Logout)
	r.GET("/api/auth/me", middleware.RequireAuth(), handler.Me)
	r.PATCH("/api/auth/me", middleware.RequireAuth(), handler.UpdateProfile)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		router:      r,
		authService: authService,
	}
}

func registerPayload() map[string]interface{} {
	return map[string]interface{}{
		"email":      "carry@example.com",
		"password":   "supersecret",
		"name":       "Carlos Silva",
		"nickname":   "carry_master",
		"phone":      "11987654321",
		"rank_medal": "legend",
		"rank_stars": 4,
		"positions":  []string{"P1", "P2"},
	}
}

func jsonRequest(t *testing.T, method, url string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandler_Register(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/register", registerPayload()))

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "carry_master", response.Nickname)
	require.Equal(t, models.ListTypeAncient, response.Category)
	require.Equal(t, "Legend 4", response.DisplayRank)
	require.NotEmpty(t, w.Result().Cookies())
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/register", registerPayload()))
	require.Equal(t, http.StatusCreated, w.Code)

	payload := registerPayload()
	payload["nickname"] = "other_nick"
	delete(payload, "phone")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/register", payload))
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "carry@example.com",
	}))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/register", registerPayload()))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "carry@example.com",
		"password": "supersecret",
	}))

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "carry@example.com", response.Email)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/register", registerPayload()))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "carry@example.com",
		"password": "wrongpassword",
	}))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/register", registerPayload()))
	require.Equal(t, http.StatusCreated, w.Code)
	cookies := w.Result().Cookies()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "carry_master", response.Nickname)
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	env := setupAuthTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_UpdateProfile_RankChange(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/register", registerPayload()))
	require.Equal(t, http.StatusCreated, w.Code)
	cookies := w.Result().Cookies()

	req := jsonRequest(t, http.MethodPatch, "/api/auth/me", map[string]interface{}{
		"rank_medal": "divine",
		"rank_stars": 2,
	})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, models.ListTypeImmortal, response.Category)
	require.True(t, response.CanJoinImmortal)
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/register", registerPayload()))
	require.Equal(t, http.StatusCreated, w.Code)
	cookies := w.Result().Cookies()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// The session no longer authenticates
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
