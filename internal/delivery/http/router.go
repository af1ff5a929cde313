package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/orbitapp/orbit-backend/internal/delivery/http/handler"
	"github.com/orbitapp/orbit-backend/internal/delivery/http/middleware"
	"github.com/orbitapp/orbit-backend/internal/domain"
)

type Router struct {
	authHandler      *handler.AuthHandler
	profileHandler   *handler.ProfileHandler
	catalogHandler   *handler.CatalogHandler
	discoveryHandler *handler.DiscoveryHandler
	queueHandler     *handler.QueueHandler
	chatHandler      *handler.ChatHandler
	reviewHandler    *handler.ReviewHandler
	adminHandler     *handler.AdminHandler
	authMiddleware   *middleware.AuthMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	catalogHandler *handler.CatalogHandler,
	discoveryHandler *handler.DiscoveryHandler,
	queueHandler *handler.QueueHandler,
	chatHandler *handler.ChatHandler,
	reviewHandler *handler.ReviewHandler,
	adminHandler *handler.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		authHandler:      authHandler,
		profileHandler:   profileHandler,
		catalogHandler:   catalogHandler,
		discoveryHandler: discoveryHandler,
		queueHandler:     queueHandler,
		chatHandler:      chatHandler,
		reviewHandler:    reviewHandler,
		adminHandler:     adminHandler,
		authMiddleware:   authMiddleware,
	}
}

func (r *Router) Setup() *gin.Engine {
	registerValidations()

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/session", r.authMiddleware.RequireAuth(), r.authHandler.OpenSession)
			auth.POST("/logout", r.authMiddleware.RequireAuth(), r.authHandler.Logout)
			auth.GET("/me", r.authMiddleware.RequireAuth(), r.authHandler.Me)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			// Profile routes
			profile := protected.Group("/profile")
			{
				profile.GET("/me", r.profileHandler.GetMyProfile)
				profile.PUT("/me", r.profileHandler.UpdateMyProfile)
				profile.POST("/survey", r.profileHandler.CompleteSurvey)
				profile.POST("/image", r.profileHandler.UploadProfileImage)
				profile.POST("/heartbeat", r.profileHandler.Heartbeat)
			}

			// Game catalog routes
			games := protected.Group("/games")
			{
				games.GET("", r.catalogHandler.ListGames)
				games.GET("/popular", r.catalogHandler.PopularGames)
				games.GET("/played", r.catalogHandler.PlayedGames)
				games.POST("/:game_id/select", r.catalogHandler.SelectGame)
			}

			// Discovery routes
			discovery := protected.Group("/discovery")
			{
				discovery.GET("/next", r.discoveryHandler.NextCandidate)
				discovery.POST("/invite", r.discoveryHandler.Invite)
			}

			// Matchmaking queue routes
			queue := protected.Group("/queue")
			{
				queue.GET("/:game_id", r.queueHandler.Snapshot)
				queue.GET("/:game_id/stream", r.queueHandler.Stream)
				queue.POST("/:game_id/join", r.queueHandler.Join)
				queue.POST("/:game_id/heartbeat", r.queueHandler.Heartbeat)
				queue.DELETE("/:game_id/leave", r.queueHandler.Leave)
			}

			// Chat routes
			chat := protected.Group("/chat")
			{
				chat.GET("/conversations", r.chatHandler.ListConversations)
				chat.POST("/conversations", r.chatHandler.StartConversation)
				chat.GET("/conversations/stream", r.chatHandler.StreamConversations)
				chat.GET("/unread-count", r.chatHandler.UnreadCount)
				chat.GET("/conversations/:conversation_id/messages", r.chatHandler.Messages)
				chat.POST("/conversations/:conversation_id/messages", r.chatHandler.SendMessage)
				chat.POST("/conversations/:conversation_id/read", r.chatHandler.MarkRead)
				chat.GET("/conversations/:conversation_id/stream", r.chatHandler.StreamMessages)
			}

			// Review routes
			review := protected.Group("/review")
			{
				review.POST("", r.reviewHandler.Submit)
				review.GET("/me", r.reviewHandler.MyReview)
			}

			// Admin routes
			admin := protected.Group("/admin")
			admin.Use(r.authMiddleware.RequireAdmin())
			{
				admin.GET("/overview", r.adminHandler.Overview)
				admin.GET("/users", r.adminHandler.ListUsers)
				admin.GET("/games", r.adminHandler.ListGames)
				admin.GET("/reviews", r.adminHandler.ListReviews)
				admin.POST("/games", r.adminHandler.CreateGame)
				admin.PUT("/games/:game_id/image", r.adminHandler.UploadGameImage)
			}
		}
	}

	return router
}

// registerValidations wires the custom "birthdate" rule into gin's binding
// engine: a YYYY-MM-DD date in the past meeting the minimum age.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("birthdate", func(fl validator.FieldLevel) bool {
		birthdate, err := time.Parse("2006-01-02", fl.Field().String())
		if err != nil {
			return false
		}
		now := time.Now()
		if birthdate.After(now) {
			return false
		}
		age := now.Year() - birthdate.Year()
		if now.YearDay() < birthdate.YearDay() {
			age--
		}
		return age >= domain.MinAge
	})
}
