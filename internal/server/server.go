// Package server contains the HTTP handlers for the blog's pages and JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	_ "inkwell/docs" // swagger docs
	"inkwell/internal/bootstrap"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *session.Manager
	rules          []middleware.Rule
	articleService *service.ArticleService
	commentService *service.CommentService
	userService    *service.UserService
}

// NewServer connects to the configured database and redis and builds a server on them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	store := repository.NewStore(db)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("inkwell"),
		sessions: session.NewManager(cfg.SessionSecret, cfg.SessionTTL(),
			session.NewRedisRevocationStore(redisClient)),
		rules:          DefaultRules(),
		articleService: service.NewArticleService(store),
		commentService: service.NewCommentService(store),
		userService:    service.NewUserService(store, cfg.BcryptCost),
	}, nil
}

// NewApp returns a Fiber app configured with the server's error handler.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:   "Inkwell",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			return respondError(c, err)
		},
	})
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
	app.Use(middleware.RequestLogger())

	// CORS runs before anything that can short-circuit so error responses keep the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !middleware.RateLimitEnabled(s.config.Env)
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  "RATE_LIMITED",
			})
		},
	}))

	app.Use(middleware.Authenticate(s.sessions, s.config.SessionCookieName))
	app.Use(middleware.Guard(s.rules))
}

// throttle limits a sensitive route outside test and development.
func (s *Server) throttle(limit int, window time.Duration, resource string) fiber.Handler {
	if !middleware.RateLimitEnabled(s.config.Env) {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return middleware.RateLimit(s.redis, limit, window, resource, middleware.FailOpen)
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/articles", fiber.StatusSeeOther)
	})

	// Form surface
	app.Get("/login", s.LoginPage)
	app.Post("/login", s.throttle(10, 5*time.Minute, "login"), s.LoginSubmit)
	app.Post("/logout", s.Logout)
	app.Get("/users/register", s.RegisterPage)
	app.Post("/users/register", s.throttle(3, 10*time.Minute, "register"), s.RegisterSubmit)

	app.Get("/my-articles", s.MyArticles)
	articles := app.Group("/articles")
	articles.Get("/", s.ArticleListPage)
	// Define specific routes BEFORE generic /:id routes
	articles.Get("/new", s.NewArticlePage)
	articles.Post("/", s.CreateArticleSubmit)
	articles.Get("/:id/edit", s.EditArticlePage)
	articles.Post("/:id/delete", s.DeleteArticleSubmit)
	articles.Get("/:id", s.ArticleDetailPage)
	articles.Post("/:id", s.UpdateArticleSubmit)

	// JSON API
	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/stats", s.GetStats)

	auth := api.Group("/auth")
	auth.Post("/login", s.throttle(10, 5*time.Minute, "login"), s.APILogin)
	auth.Post("/logout", s.APILogout)

	users := api.Group("/users")
	users.Get("/availability", s.CheckAvailability)
	users.Get("/:id/articles/count", s.CountUserArticles)

	apiArticles := api.Group("/articles")
	apiArticles.Get("/", s.ListArticles)
	apiArticles.Get("/search", s.SearchArticles)
	apiArticles.Get("/popular", s.PopularArticles)
	apiArticles.Get("/recent", s.RecentArticles)
	apiArticles.Post("/", s.CreateArticle)
	apiArticles.Post("/bulk", s.CreateArticles)
	apiArticles.Get("/:id/comments", s.GetComments)
	apiArticles.Post("/:id/comments", s.CreateComment)
	apiArticles.Get("/:id", s.GetArticle)
	apiArticles.Patch("/:id", s.UpdateArticle)
	apiArticles.Delete("/:id", s.DeleteArticle)

	comments := api.Group("/comments")
	comments.Patch("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional; it is
// only checked when configured.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
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

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	app := NewApp()
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	observability.Logger.Info("Server starting", zap.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			observability.Logger.Error("error shutting down HTTP server", zap.Error(err))
		}
	}

	if err := database.Close(s.db); err != nil {
		observability.Logger.Error("error closing sql DB", zap.Error(err))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			observability.Logger.Error("error closing redis", zap.Error(err))
		}
	}

	observability.Logger.Info("Server shutdown complete")
	return nil
}
