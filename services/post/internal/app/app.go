package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seniors/pkg/cache"
	"seniors/pkg/config"
	"seniors/pkg/database"
	"seniors/pkg/jwt"
	"seniors/pkg/logger"
	"seniors/pkg/middleware"
	"seniors/pkg/queue"
	"seniors/pkg/s3"
	postHTTP "seniors/services/post/internal/controller/http"
	"seniors/services/post/internal/repo/persistent"
	"seniors/services/post/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "seniors/services/post/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	s3Client    *s3.Client
	jwtService  *jwt.Service
	queueClient *queue.Client
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	// Migrations are handled by goose - see cmd/migrate/main.go

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v (continuing without cache and rate limit)", err)
		redisClient = nil
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		return nil, err
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v (continuing without media cleanup queue)", err)
		queueClient = nil
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		s3Client:    s3Client,
		jwtService:  jwt.NewService(cfg.JWTSecret),
		queueClient: queueClient,
	}, nil
}

func (a *App) Run() error {
	postRepo := persistent.NewPostRepository(a.db)
	userRepo := persistent.NewUserRepository(a.db)

	// A nil *queue.Client must stay a nil interface.
	var publisher usecase.CleanupPublisher
	if a.queueClient != nil {
		publisher = a.queueClient
	}

	postUseCase := usecase.NewPostUseCase(
		postRepo,
		userRepo,
		a.s3Client,
		a.redisClient,
		publisher,
		usecase.Options{
			StrictOwnership: a.cfg.PostStrictOwnership,
			CacheTTL:        a.cfg.PostCacheTTL,
		},
		a.log,
	)

	postHandler := postHTTP.NewPostHandler(postUseCase, a.log)

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: NewRouter(postHandler, a.jwtService, a.redisClient, a.cfg.RateLimitPerMinute),
	}

	go func() {
		a.log.Info("Post service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

// NewRouter mounts the post API under /api/v1 behind JWT auth and the per-user rate limit.
func NewRouter(postHandler *postHTTP.PostHandler, jwtService *jwt.Service, redisClient *redis.Client, ratePerMinute int) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	api.Use(middleware.RateLimitMiddleware(redisClient, ratePerMinute, time.Minute))
	{
		api.POST("/posts", postHandler.CreatePost)
		api.GET("/posts", postHandler.ListPosts)
		api.GET("/posts/:id", postHandler.GetPost)
		api.PUT("/posts/:id", postHandler.ModifyPost)
		api.DELETE("/posts/:id", postHandler.RemovePost)
		api.POST("/posts/:id/likes", postHandler.LikePost)
		api.POST("/posts/:id/media", postHandler.AddPostMedia)
	}

	return r
}

func (a *App) Wait() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down post service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	a.log.Info("Post service exited")
	return nil
}
