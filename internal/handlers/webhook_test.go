package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dotaevolution/presence-api/internal/config"
	"github.com/dotaevolution/presence-api/internal/database"
	"github.com/dotaevolution/presence-api/internal/models"
	"github.com/dotaevolution/presence-api/internal/repository"
	"github.com/dotaevolution/presence-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type webhookTestEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	handler *WebhookHandler
}

func setupWebhookTestEnv(t *testing.T, token string) webhookTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.DailyList{},
		&models.Presence{},
		&models.WhatsAppMessage{},
	)
	require.NoError(t, err)
	require.NoError(t, database.AddIndexes(db))

	listRepo := repository.NewListRepository(db)
	presenceRepo := repository.NewPresenceRepository(db)
	userRepo := repository.NewUserRepository(db)

	presenceService := services.NewPresenceService(db, listRepo, presenceRepo)
	listService := services.NewListService(listRepo, presenceRepo, userRepo)
	whatsappService := services.NewWhatsAppService(db, userRepo, presenceService, listService, nil)

	handler := NewWebhookHandler(&config.Config{WhatsAppToken: token}, whatsappService)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhooks/whatsapp", handler.Receive)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return webhookTestEnv{db: db, router: r, handler: handler}
}

func createWebhookUser(t *testing.T, db *gorm.DB, nickname string) *models.User {
	t.Helper()
	phone := "11987654321"
	user := &models.User{
		Email:        nickname + "@example.com",
		PasswordHash: "hashedpassword",
		Name:         "Player " + nickname,
		Nickname:     nickname,
		Phone:        &phone,
		RankMedal:    models.MedalAncient,
		RankStars:    3,
		Category:     models.ListTypeAncient,
		Positions:    models.PositionList(models.AllPositions),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func webhookRequest(t *testing.T, token string, payload map[string]string) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Webhook-Token", token)
	}
	return req
}

func TestWebhookHandler_Confirm(t *testing.T) {
	env := setupWebhookTestEnv(t, "")
	createWebhookUser(t, env.db, "shadow")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, webhookRequest(t, "", map[string]string{
		"phone":   "11987654321",
		"message": "shadow/P1",
	}))

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "processed", response["status"])
	require.Contains(t, response["reply"], "shadow confirmed for P1")
}

func TestWebhookHandler_RejectedMessageStillAnswers200(t *testing.T) {
	env := setupWebhookTestEnv(t, "")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, webhookRequest(t, "", map[string]string{
		"phone":   "11987654321",
		"message": "nobody/P1",
	}))

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "rejected", response["status"])
	require.NotEmpty(t, response["reply"])
}

func TestWebhookHandler_InvalidToken(t *testing.T) {
	env := setupWebhookTestEnv(t, "expected-token")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, webhookRequest(t, "wrong-token", map[string]string{
		"phone":   "11987654321",
		"message": "shadow/P1",
	}))

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookHandler_MissingFields(t *testing.T) {
	env := setupWebhookTestEnv(t, "")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, webhookRequest(t, "", map[string]string{
		"phone": "11987654321",
	}))

	require.Equal(t, http.StatusBadRequest, w.Code)
}
