package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/orbitapp/orbit-backend/internal/config"
	"github.com/orbitapp/orbit-backend/internal/delivery/http"
	"github.com/orbitapp/orbit-backend/internal/delivery/http/handler"
	"github.com/orbitapp/orbit-backend/internal/delivery/http/middleware"
	"github.com/orbitapp/orbit-backend/internal/infrastructure/database"
	"github.com/orbitapp/orbit-backend/internal/infrastructure/firebase"
	"github.com/orbitapp/orbit-backend/internal/infrastructure/server"
	"github.com/orbitapp/orbit-backend/internal/infrastructure/storage"
	"github.com/orbitapp/orbit-backend/internal/infrastructure/stream"
	"github.com/orbitapp/orbit-backend/internal/logger"
	"github.com/orbitapp/orbit-backend/internal/repository/postgres"
	redisrepo "github.com/orbitapp/orbit-backend/internal/repository/redis"
	"github.com/orbitapp/orbit-backend/internal/usecase/admin"
	"github.com/orbitapp/orbit-backend/internal/usecase/auth"
	"github.com/orbitapp/orbit-backend/internal/usecase/catalog"
	"github.com/orbitapp/orbit-backend/internal/usecase/chat"
	"github.com/orbitapp/orbit-backend/internal/usecase/discovery"
	"github.com/orbitapp/orbit-backend/internal/usecase/profile"
	"github.com/orbitapp/orbit-backend/internal/usecase/queue"
	"github.com/orbitapp/orbit-backend/internal/usecase/review"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	DB     *sqlx.DB
	Redis  *redis.Client
	Server *server.Server
	Cron   *cron.Cron
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	// Initialize database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize Redis
	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize Firebase
	fbClients, err := firebase.NewClients(ctx, &cfg.Firebase)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase: %w", err)
	}
	blobs, err := storage.NewBucketStore(ctx, fbClients.App)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}

	broker := stream.NewBroker(redisClient)

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	gameRepo := postgres.NewGameRepository(db)
	chatRepo := postgres.NewChatRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	queueRepo := redisrepo.NewQueueRepository(redisClient)

	// Initialize use cases
	authUseCase := auth.NewAuthUseCase(fbClients.Auth, userRepo, cfg.AdminUIDs)
	profileUseCase := profile.NewProfileUseCase(userRepo, gameRepo, blobs)
	catalogUseCase := catalog.NewCatalogUseCase(gameRepo)
	chatUseCase := chat.NewChatUseCase(chatRepo, userRepo, broker)
	discoveryUseCase := discovery.NewDiscoveryUseCase(userRepo, gameRepo, chatRepo, chatUseCase)
	queueUseCase := queue.NewQueueUseCase(queueRepo, userRepo, gameRepo, chatRepo, broker, cfg.Queue.EntryTTL)
	reviewUseCase := review.NewReviewUseCase(reviewRepo, userRepo)
	adminUseCase := admin.NewAdminUseCase(userRepo, gameRepo, reviewRepo, blobs)

	// Operator accounts come from configuration; grant roles before traffic.
	authUseCase.SeedAdmins(ctx)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUseCase)
	profileHandler := handler.NewProfileHandler(profileUseCase)
	catalogHandler := handler.NewCatalogHandler(catalogUseCase)
	discoveryHandler := handler.NewDiscoveryHandler(discoveryUseCase)
	queueHandler := handler.NewQueueHandler(queueUseCase)
	chatHandler := handler.NewChatHandler(chatUseCase)
	reviewHandler := handler.NewReviewHandler(reviewUseCase)
	adminHandler := handler.NewAdminHandler(adminUseCase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authUseCase)

	// Initialize router
	router := http.NewRouter(
		authHandler,
		profileHandler,
		catalogHandler,
		discoveryHandler,
		queueHandler,
		chatHandler,
		reviewHandler,
		adminHandler,
		authMiddleware,
	)

	// Setup routes
	ginRouter := router.Setup()

	// Initialize server
	srv := server.NewServer(&cfg.Server, ginRouter)

	// Queue liveness sweep: entries whose deadline passed drop out of feeds
	// immediately, the sweep reclaims their storage.
	c := cron.New()
	sweepSpec := fmt.Sprintf("@every %s", cfg.Queue.SweepInterval)
	if _, err := c.AddFunc(sweepSpec, func() {
		if err := queueUseCase.SweepExpired(context.Background()); err != nil {
			logger.Error("queue sweep failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule queue sweep: %w", err)
	}
	c.Start()

	return &Container{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Server: srv,
		Cron:   c,
	}, nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Cron != nil {
		<-c.Cron.Stop().Done()
	}

	// Close Redis
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Error("failed to close redis", "error", err)
		}
	}

	// Close database
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
