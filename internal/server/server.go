// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "socialnet/docs" // swagger docs
	"socialnet/internal/auth"
	"socialnet/internal/bootstrap"
	"socialnet/internal/config"
	"socialnet/internal/database"
	"socialnet/internal/featureflags"
	"socialnet/internal/middleware"
	"socialnet/internal/models"
	"socialnet/internal/notifications"
	"socialnet/internal/repository"
	"socialnet/internal/service"

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
	rateLimiter    *middleware.RateLimiter
	featureFlags   *featureflags.Manager
	notifier       *notifications.Notifier
	hub            *notifications.Hub

	authService    *service.AuthService
	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
	followService  *service.FollowService
	feedService    *service.FeedService
}

// NewServer connects to the database and Redis described by cfg and builds a Server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{
		SeedPreset: cfg.DevSeedPreset,
	})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, distributed rate limits and cross-instance
// notifications are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	flags := featureflags.NewManager(cfg.FeatureFlags)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("socialnet-api"),
		rateLimiter:    middleware.NewRateLimiter(redisClient, cfg.Env),
		featureFlags:   flags,
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(),
		authService:    service.NewAuthService(userRepo, tokens, hasher),
		userService:    service.NewUserService(userRepo, postRepo, followRepo),
		postService:    service.NewPostService(postRepo, userRepo),
		commentService: service.NewCommentService(commentRepo, postRepo),
		followService:  service.NewFollowService(followRepo, userRepo),
		feedService:    service.NewFeedService(postRepo, followRepo, flags),
	}
	return s, nil
}

// NewApp builds the fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "socialnet API",
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler renders errors that escape handlers with the standard error body.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
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
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.rateLimitsEnabled()
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

func (s *Server) rateLimitsEnabled() bool {
	switch s.config.Env {
	case "test", "stress":
		return false
	}
	return true
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "socialnet API Metrics",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", s.rateLimiter.Limit(5, 10*time.Minute, "register"), s.Register)
	authGroup.Post("/login", s.rateLimiter.LimitWithPolicy(10, 5*time.Minute, middleware.FailClosed, "login"), s.Login)
	authGroup.Get("/me", s.AuthRequired(), s.Me)

	// Post routes. Literal segments are registered before /:id.
	posts := api.Group("/posts")
	posts.Get("/", s.GetGlobalFeed)
	posts.Get("/feed", s.AuthRequired(), s.GetPersonalFeed)
	posts.Get("/:id", s.GetPost)
	posts.Post("/", s.AuthRequired(), s.rateLimiter.Limit(10, time.Minute, "create_post"), s.CreatePost)
	posts.Put("/:id", s.AuthRequired(), s.UpdatePost)
	posts.Delete("/:id", s.AuthRequired(), s.DeletePost)
	posts.Post("/:id/like", s.AuthRequired(), s.LikePost)
	posts.Post("/:id/comments", s.AuthRequired(), s.rateLimiter.Limit(20, time.Minute, "create_comment"), s.CreateComment)
	posts.Delete("/:postId/comments/:commentId", s.AuthRequired(), s.DeleteComment)

	// User routes
	users := api.Group("/users")
	users.Get("/", s.ListUsers)
	users.Put("/profile", s.AuthRequired(), s.UpdateProfile)
	users.Get("/search/:query", s.SearchUsers)
	users.Get("/:identifier", s.GetUserProfile)

	// Follow routes
	follow := api.Group("/follow")
	follow.Get("/:userId/followers", s.GetFollowers)
	follow.Get("/:userId/following", s.GetFollowing)
	follow.Get("/:userId/status", s.AuthRequired(), s.GetFollowStatus)
	follow.Get("/:userId/mutual", s.AuthRequired(), s.GetMutualFollowing)
	follow.Post("/:userId", s.AuthRequired(), s.rateLimiter.Limit(30, time.Minute, "follow"), s.FollowUser)
	follow.Delete("/:userId", s.AuthRequired(), s.UnfollowUser)

	api.Get("/feature-flags", s.AuthRequired(), s.GetFeatureFlags)

	// Browsers cannot set headers on websocket upgrades, so the token may
	// also arrive as ?token=.
	api.Get("/ws", s.AuthRequired(), s.WebsocketHandler())
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
		middleware.Logger.Warn("notification wiring failed, realtime events stay local",
			slog.String("error", err.Error()))
	}

	middleware.Logger.Info("server starting",
		slog.String("port", s.config.Port),
		slog.String("env", s.config.Env),
		slog.Any("feature_flags", s.featureFlags.Names()),
	)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down notification hub", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}
	if err := database.Close(); err != nil {
		middleware.Logger.Error("error closing database", slog.String("error", err.Error()))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
