// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "socialhub/docs" // swagger docs
	"socialhub/internal/config"
	"socialhub/internal/featureflags"
	"socialhub/internal/mediastore"
	"socialhub/internal/middleware"
	"socialhub/internal/models"
	"socialhub/internal/notifications"
	"socialhub/internal/repository"
	"socialhub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	tokens         *middleware.Tokens
	featureFlags   *featureflags.Manager
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	maxUploadBytes int64
	maxFiles       int
	localMedia     localMediaReader

	authService     *service.AuthService
	userService     *service.UserService
	relationService *service.RelationService
	postService     *service.PostService
	commentService  *service.CommentService
	storyService    *service.StoryService
	chatService     *service.ChatService
}

// NewServer wires repositories and services over already-initialized
// dependencies. The bootstrap layer owns connecting to DB, Redis and the
// media store.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store mediastore.Store) (*Server, error) {
	if cfg == nil || db == nil || store == nil {
		return nil, errors.New("server requires config, database and media store")
	}

	flags := featureflags.NewManager(cfg.FeatureFlags)
	for _, name := range flags.Unknown() {
		middleware.Logger.Warn("unknown feature flag configured", slog.String("flag", name))
	}
	middleware.Logger.Info("feature flags evaluated", slog.Any("flags", flags.Global()))

	userRepo := repository.NewUserRepository(db)
	relationRepo := repository.NewRelationRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	storyRepo := repository.NewStoryRepository(db)
	chatRepo := repository.NewChatRepository(db)

	jwtTTL := time.Duration(cfg.JWTTTLHours) * time.Hour
	storyTTL := time.Duration(cfg.StoryTTLHours) * time.Hour
	media := service.NewMedia(store, service.DefaultRetryConfig(), cfg.MediaMaxFiles)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("socialhub-api"),
		tokens:         middleware.NewTokens(cfg.JWTSecret, jwtTTL),
		featureFlags:   flags,
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(),
		maxUploadBytes: int64(cfg.MediaMaxUploadMB) << 20,
		maxFiles:       media.MaxFiles(),
	}

	if reader, ok := mediastore.Unwrap(store).(localMediaReader); ok {
		s.localMedia = reader
	}

	var events service.EventPublisher
	if flags.EnabledGlobally(featureflags.RealtimeChat) {
		events = s.notifier
	}

	s.authService = service.NewAuthService(userRepo, s.tokens)
	s.userService = service.NewUserService(userRepo, media, flags)
	s.relationService = service.NewRelationService(relationRepo, userRepo, events)
	s.postService = service.NewPostService(postRepo, likeRepo, userRepo, relationRepo, media, flags)
	s.commentService = service.NewCommentService(commentRepo, postRepo, likeRepo)
	s.storyService = service.NewStoryService(storyRepo, likeRepo, userRepo, relationRepo, media, flags, storyTTL)
	s.chatService = service.NewChatService(chatRepo, userRepo, relationRepo, events)

	return s, nil
}

// StoryService exposes the story service for the background sweeper.
func (s *Server) StoryService() *service.StoryService {
	return s.storyService
}

// App builds the fiber app with middleware and routes on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	bodyLimit := int(s.maxUploadBytes)*s.maxFiles + 1<<20
	app := fiber.New(fiber.Config{
		AppName:      "SocialHub API",
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(app, s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "SocialHub Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	if s.localMedia != nil {
		app.Get("/media/*", s.ServeLocalMedia)
	}

	auth := s.authRequired()

	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.Register)
	authGroup.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/logout", auth, s.Logout)
	authGroup.Get("/refetch", auth, s.Refetch)

	users := api.Group("/users")
	users.Get("/search/:query", middleware.RateLimit(s.redis, 30, time.Minute, "user_search"), s.SearchUsers)
	users.Get("/blocklist", auth, s.GetBlockList)
	// Specific /:id/:resource routes before the generic /:id routes.
	users.Post("/:id/follow", auth, s.FollowUser)
	users.Delete("/:id/follow", auth, s.UnfollowUser)
	users.Post("/:id/block", auth, s.BlockUser)
	users.Delete("/:id/block", auth, s.UnblockUser)
	users.Get("/:id/followers", auth, s.GetFollowers)
	users.Get("/:id/following", auth, s.GetFollowing)
	users.Get("/:id/posts", auth, s.GetUserPosts)
	users.Get("/:id/stories", auth, s.GetUserStories)
	users.Get("/:id", auth, s.GetUserProfile)
	users.Put("/:id", auth, s.UpdateUser)
	users.Delete("/:id", auth, s.DeleteUser)

	posts := api.Group("/posts")
	posts.Post("/", auth, middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", auth, s.LikePost)
	posts.Delete("/:id/like", auth, s.UnlikePost)
	posts.Get("/:id/comments", auth, s.GetComments)
	posts.Post("/:id/comments", auth, middleware.RateLimit(s.redis, 30, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", auth, s.UpdatePost)
	posts.Delete("/:id", auth, s.DeletePost)

	comments := api.Group("/comments", auth)
	comments.Post("/:id/like", s.LikeComment)
	comments.Delete("/:id/like", s.UnlikeComment)
	comments.Post("/:id/replies", s.CreateReply)
	comments.Post("/:id/replies/:replyId/like", s.LikeReply)
	comments.Delete("/:id/replies/:replyId/like", s.UnlikeReply)
	comments.Put("/:id/replies/:replyId", s.UpdateReply)
	comments.Delete("/:id/replies/:replyId", s.DeleteReply)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	stories := api.Group("/stories", auth)
	stories.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "create_story"), s.CreateStory)
	stories.Post("/:id/like", s.LikeStory)
	stories.Delete("/:id/like", s.UnlikeStory)
	stories.Get("/:id", s.GetStory)
	stories.Put("/:id", s.UpdateStory)
	stories.Delete("/:id", s.DeleteStory)

	conversations := api.Group("/conversations", auth)
	conversations.Post("/", s.CreateConversation)
	conversations.Get("/", s.GetConversations)
	conversations.Post("/:id/messages", middleware.RateLimit(s.redis, 30, time.Minute, "send_message"), s.SendMessage)
	conversations.Get("/:id", s.GetConversation)
	conversations.Delete("/:id", s.DeleteConversation)

	messages := api.Group("/messages", auth)
	messages.Post("/:id/read", s.MarkMessageRead)

	ws := api.Group("/ws", auth)
	ws.Get("/", s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

func (s *Server) authRequired() fiber.Handler {
	return middleware.AuthRequired(s.tokens, s.redis)
}

// Start wires the websocket hub to Redis and listens on the configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if s.featureFlags.EnabledGlobally(featureflags.RealtimeChat) {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start notification wiring", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if err := s.hub.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("hub shutdown: %w", err))
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, fmt.Errorf("close database: %w", cerr))
		}
	}
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", rerr))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
