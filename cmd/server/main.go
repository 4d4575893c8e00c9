package main

import (
	"log"

	"github.com/dotaevolution/presence-api/internal/config"
	"github.com/dotaevolution/presence-api/internal/constants"
	"github.com/dotaevolution/presence-api/internal/database"
	"github.com/dotaevolution/presence-api/internal/handlers"
	"github.com/dotaevolution/presence-api/internal/middleware"
	"github.com/dotaevolution/presence-api/internal/repository"
	"github.com/dotaevolution/presence-api/internal/services"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Initialize repositories and services
	listRepo := repository.NewListRepository(db)
	presenceRepo := repository.NewPresenceRepository(db)
	userRepo := repository.NewUserRepository(db)

	authService := services.NewAuthService(userRepo)
	presenceService := services.NewPresenceService(db, listRepo, presenceRepo)
	listService := services.NewListService(listRepo, presenceRepo, userRepo)
	whatsappService := services.NewWhatsAppService(db, userRepo, presenceService, listService, nil)

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,
		"tcp",
		redisAddr,
		"",
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions("presence_session", store))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	presenceHandler := handlers.NewPresenceHandler(authService, presenceService, whatsappService)
	dashboardHandler := handlers.NewDashboardHandler(authService, listService)
	adminHandler := handlers.NewAdminHandler(authService, listService, whatsappService)
	webhookHandler := handlers.NewWebhookHandler(cfg, whatsappService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Presence API is running",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WhatsApp provider webhook (authenticated by token header)
	r.POST("/webhooks/whatsapp", webhookHandler.Receive)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.Me)
			auth.PATCH("/me", middleware.RequireAuth(), authHandler.UpdateProfile)
		}

		// Dashboard is public; authenticated callers get their join status
		api.GET("/daily-lists/dashboard", optionalAuth(), dashboardHandler.Show)

		// Presence routes (protected)
		presences := api.Group("/presences")
		presences.Use(middleware.RequireAuth())
		{
			presences.POST("", presenceHandler.Create)
			presences.DELETE("/:list_type", presenceHandler.Destroy)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.DELETE("/users/:id", adminHandler.DeactivateUser)
			admin.GET("/daily-lists", adminHandler.ListDailyLists)
			admin.GET("/daily-lists/:id", adminHandler.GetDailyList)
			admin.POST("/daily-lists/:id/broadcast", adminHandler.BroadcastDailyList)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// optionalAuth copies the session user into the request context without
// rejecting anonymous callers.
func optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID := session.Get(constants.ContextKeyUserID); userID != nil {
			c.Set(constants.ContextKeyUserID, userID)
		}
		c.Next()
	}
}
