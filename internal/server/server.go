package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "tracker/docs"
	"tracker/internal/auth"
	"tracker/internal/config"
	"tracker/internal/handler"
	"tracker/internal/middleware"
	"tracker/internal/migrations"
	"tracker/internal/notify"
	"tracker/internal/repository"
	"tracker/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Config *config.Config
	Log    *log.Logger
}

// Deps are the collaborators the HTTP routes are built from.
type Deps struct {
	Users         repository.UserRepositoryInterface
	Projects      repository.ProjectRepositoryInterface
	Tasks         repository.TaskRepositoryInterface
	Comments      repository.CommentRepositoryInterface
	Attachments   repository.AttachmentRepositoryInterface
	Notifications repository.NotificationRepositoryInterface
	Files         handler.FileStore
	Notifier      handler.Notifier
	Stream        handler.Subscriber
	Tokens        *auth.Tokens
}

func Init(cfg *config.Config, logger *log.Logger) (*Server, error) {
	if err := migrations.Up(cfg.MigrateURL(), logger); err != nil {
		return nil, fmt.Errorf("❌ failed to migrate DB: %w", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	logger.Info("✅ Connected to database")

	files, err := storage.NewDisk(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	deps := Deps{
		Users:         userRepo,
		Projects:      repository.NewProjectRepository(db),
		Tasks:         repository.NewTaskRepository(db),
		Comments:      repository.NewCommentRepository(db),
		Attachments:   repository.NewAttachmentRepository(db),
		Notifications: notificationRepo,
		Files:         files,
		Tokens:        auth.NewTokens(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Hour),
	}

	opts := []notify.Option{notify.WithWorkers(cfg.NotifyWorkers)}
	rdb := connectRedis(cfg.RedisURL, logger)
	if rdb != nil {
		broker := notify.NewRedisBroker(rdb)
		opts = append(opts, notify.WithPublisher(broker))
		deps.Stream = broker
	}
	deps.Notifier = notify.NewDispatcher(notificationRepo, userRepo, logger, opts...)

	return &Server{
		Engine: NewRouter(cfg, logger, deps),
		DB:     db,
		Redis:  rdb,
		Config: cfg,
		Log:    logger,
	}, nil
}

// connectRedis returns nil when live push is disabled or redis is unreachable.
func connectRedis(url string, logger *log.Logger) *redis.Client {
	if url == "" {
		logger.Info("REDIS_URL not set, live notifications disabled")
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.WithError(err).Warn("invalid REDIS_URL, live notifications disabled")
		return nil
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("redis unreachable, live notifications disabled")
		_ = client.Close()
		return nil
	}
	logger.Info("✅ Connected to redis")
	return client
}

func NewRouter(cfg *config.Config, logger *log.Logger, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	r.MaxMultipartMemory = int64(cfg.MaxUploadMB) << 20

	userHandler := handler.NewUserHandler(d.Users, d.Tokens, logger)
	projectHandler := handler.NewProjectHandler(d.Projects, d.Users, d.Notifier, cfg.ProjectNotifySample, logger)
	taskHandler := handler.NewTaskHandler(d.Tasks, d.Projects, d.Users, d.Attachments, d.Files, d.Notifier, int64(cfg.MaxUploadMB)<<20, logger)
	commentHandler := handler.NewCommentHandler(d.Comments, d.Tasks, d.Notifier, logger)
	notificationHandler := handler.NewNotificationHandler(d.Notifications, d.Stream, cfg.NotificationsPageSize, logger)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(d.Tokens))
	{
		authorized.GET("/user", userHandler.Me)
		authorized.GET("/users", userHandler.List)

		// Project routes
		authorized.GET("/projects", projectHandler.List)
		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects/:id", projectHandler.GetByID)
		authorized.PUT("/projects/:id", projectHandler.Update)
		authorized.DELETE("/projects/:id", projectHandler.Delete)

		// Task routes
		authorized.GET("/tasks", taskHandler.List)
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.PUT("/tasks/:id/priority", taskHandler.UpdatePriority)
		authorized.POST("/tasks/:id/attachments", taskHandler.AddAttachments)

		// Comment routes
		authorized.GET("/tasks/:id/comments", commentHandler.List)
		authorized.POST("/tasks/:id/comments", commentHandler.Create)
		authorized.PUT("/comments/:id", commentHandler.Update)
		authorized.DELETE("/comments/:id", commentHandler.Delete)

		// Notification routes
		authorized.GET("/notifications", notificationHandler.List)
		authorized.GET("/notifications/stream", notificationHandler.Stream)
		authorized.PUT("/notifications/mark-all-read", notificationHandler.MarkAllRead)
		authorized.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)
		authorized.DELETE("/notifications", notificationHandler.DeleteAll)
	}
	return r
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.Log.Infof("🚀 Server running on port %s", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Log.Fatalf("❌ Failed to listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Log.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	s.Log.Info("✅ Server exited properly")
}
