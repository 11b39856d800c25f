// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	_ "devconnector/docs" // swagger docs
	"devconnector/internal/auth"
	"devconnector/internal/cache"
	"devconnector/internal/config"
	"devconnector/internal/database"
	"devconnector/internal/github"
	"devconnector/internal/middleware"
	"devconnector/internal/models"
	"devconnector/internal/notifications"
	"devconnector/internal/repository"
	"devconnector/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "devconnector-api"

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// requestMetrics registers the HTTP collectors once per process.
func requestMetrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() { prom = middleware.InitMetrics(serviceName) })
	return prom
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	store          *repository.Store
	tokens         *auth.TokenService
	limiter        *middleware.Limiter
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	authService    *service.AuthService
	profileService *service.ProfileService
	postService    *service.PostService
}

// NewServer connects to the database and Redis and builds a Server on top.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return NewServerWithDeps(cfg, db, cache.InitRedis(cfg.RedisURL))
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil: caching, rate limiting, token revocation and
// cross-instance fan-out are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, fmt.Errorf("config and database are required")
	}

	store := repository.NewStore(db)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, redisClient)
	gh := github.New(github.Config{
		BaseURL: cfg.GithubAPIURL,
		Token:   cfg.GithubToken,
		Timeout: cfg.GithubTimeout,
	})

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: requestMetrics(),
		store:          store,
		tokens:         tokens,
		limiter:        middleware.NewLimiter(redisClient, cfg.Env),
		hub:            notifications.NewHub(),
		authService:    service.NewAuthService(store.Users, tokens),
		profileService: service.NewProfileService(store, gh),
		postService:    service.NewPostService(store.Posts, store.Users),
	}
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}

	return s, nil
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

	// CORS runs before the limiter so throttled responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, x-auth-token, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Msg: "Too many requests, please try again later",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	authed := middleware.AuthRequired(s.tokens)

	// Users and auth
	api.Post("/users", s.limiter.Handler("register", 5, 10*time.Minute, middleware.FailOpen), s.Register)
	api.Get("/auth", authed, s.GetCurrentUser)
	api.Post("/auth", s.limiter.Handler("login", 10, 5*time.Minute, middleware.FailOpen), s.Login)
	api.Post("/auth/logout", authed, s.Logout)

	// Profiles. Specific paths before parameterized ones.
	api.Get("/profile", s.GetProfiles)
	api.Post("/profile", authed, s.UpsertProfile)
	api.Delete("/profile", authed, s.DeleteAccount)
	api.Get("/profile/me", authed, s.GetMyProfile)
	api.Get("/profile/user/:userId", s.GetProfileByUser)
	api.Get("/profile/github/:username", s.GetGithubRepos)
	api.Put("/profile/experience", authed, s.AddExperience)
	api.Delete("/profile/experience/:exp_id", authed, s.RemoveExperience)
	api.Put("/profile/education", authed, s.AddEducation)
	api.Delete("/profile/education/:edu_id", authed, s.RemoveEducation)

	// Posts
	api.Get("/posts", s.GetPosts)
	api.Post("/posts", authed, s.limiter.Handler("create_post", 10, time.Minute, middleware.FailOpen), s.CreatePost)
	api.Get("/posts/user/:userId", s.GetUserPosts)
	api.Put("/posts/like/:id", authed, s.LikePost)
	api.Put("/posts/unlike/:id", authed, s.UnlikePost)
	api.Post("/posts/comment/:id", authed, s.limiter.Handler("create_comment", 20, time.Minute, middleware.FailOpen), s.AddComment)
	api.Delete("/posts/comment/:id/:comment_id", authed, s.DeleteComment)
	api.Get("/posts/:id", s.GetPost)
	api.Delete("/posts/:id", authed, s.DeletePost)

	// Realtime feed; anonymous viewers receive broadcasts only.
	api.Get("/ws", middleware.OptionalAuth(s.tokens), s.requireUpgrade, s.FeedWebsocket())
}

// errorHandler renders errors that escaped a handler.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Msg: fe.Message})
	}
	return s.respondError(c, scopeDefault, err)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: a
// missing client is reported but does not fail readiness, a failing one does.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "DevConnector API",
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.App()

	if s.notifier != nil {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start feed wiring", "hub", s.hub.Name(), "error", err)
		}
	}

	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down hub", "hub", s.hub.Name(), "error", err)
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
