// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "devhub/docs" // swagger docs
	"devhub/internal/archive"
	"devhub/internal/auth"
	"devhub/internal/bootstrap"
	"devhub/internal/config"
	"devhub/internal/media"
	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/repository"
	"devhub/internal/service"
	"devhub/internal/storage"

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

// Options carries collaborators that are optional or replaced in tests.
// Nil fields fall back to what the configuration enables.
type Options struct {
	Store     storage.Store
	Publisher service.SnippetPublisher
	GitHub    service.GitHubAuthenticator
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	repos          *repository.Repositories
	store          storage.Store
	tokens         *auth.TokenManager
	limiter        *middleware.Limiter
	media          *media.Processor

	games       *service.GameService
	snippets    *service.SnippetService
	tutorials   *service.TutorialService
	submissions *service.SubmissionService
	users       *service.UserService
	taxonomy    *service.TaxonomyService
	files       *service.StorageService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var opts Options
	s3, err := storage.NewS3Store(ctx, storage.S3Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		UseSSL:    cfg.S3UseSSL,
		PublicURL: cfg.S3PublicURL,
	})
	switch {
	case err == nil:
		opts.Store = s3
	case cfg.IsProduction():
		return nil, fmt.Errorf("object storage unavailable: %w", err)
	default:
		middleware.Logger.Warn("object storage unavailable, keeping media in memory", "error", err)
		opts.Store = storage.NewMemoryStore("http://localhost:" + cfg.Port + "/media")
	}

	if cfg.GitHubArchiveEnabled() {
		publisher, err := archive.NewGitHubPublisher(context.Background(), archive.Config{
			Token:  cfg.GitHubToken,
			Owner:  cfg.GitHubOwner,
			Repo:   cfg.GitHubRepo,
			Branch: cfg.GitHubBranch,
		})
		if err != nil {
			return nil, err
		}
		opts.Publisher = publisher
	}

	return NewServerWithDeps(cfg, db, redisClient, opts)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts Options) (*Server, error) {
	if db == nil {
		return nil, errors.New("server: database is required")
	}

	models.HideDetails = cfg.IsProduction()

	repos := repository.New(db)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, redisClient)
	processor := media.NewProcessor(cfg.MediaMaxUploadMB)

	github := opts.GitHub
	if github == nil && cfg.GitHubOAuthEnabled() && redisClient != nil {
		github = auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL, redisClient)
	}

	deps := service.ContentDeps{
		Repos:       repos,
		Store:       opts.Store,
		Media:       processor,
		Redis:       redisClient,
		FeaturedTTL: cfg.FeaturedCacheTTL,
	}

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("devhub-api"),
		repos:          repos,
		store:          opts.Store,
		tokens:         tokens,
		limiter:        middleware.NewLimiter(redisClient, cfg.RateLimitEnabled()),
		media:          processor,
		games:          service.NewGameService(deps),
		snippets:       service.NewSnippetService(deps, opts.Publisher),
		tutorials:      service.NewTutorialService(deps),
		submissions:    service.NewSubmissionService(repos, redisClient),
		users:          service.NewUserService(repos, tokens, github, opts.Store, processor),
		taxonomy:       service.NewTaxonomyService(repos),
		files:          service.NewStorageService(opts.Store, processor.MaxBytes()),
	}, nil
}

// NewApp builds the fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "DevHub API",
		// A game may carry a cover and eight screenshots.
		BodyLimit:    int(10 * s.media.MaxBytes()),
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler is the single place where handler errors become responses.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return models.RespondWithError(c, fe.Code, fe)
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code == models.CodeInternal {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(), "path", c.Path(), "error", err)
	}
	return models.RespondWithAppError(c, err)
}

// SetupMiddleware configures all middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400, // 24 hours
	}))

	budget := s.config.GlobalRateLimit
	if budget <= 0 {
		budget = 100
	}
	app.Use(limiter.New(limiter.Config{
		Max:        budget,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || strings.HasPrefix(c.Path(), "/health")
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				errors.New("too many requests, please try again later"))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if mem, ok := s.store.(*storage.MemoryStore); ok {
		if route, ok := mediaRoute(mem); ok {
			app.Get(route, serveMedia(mem))
		}
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "DevHub Backend Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	authRequired := middleware.AuthRequired(s.tokens)
	staff := s.RolesRequired(models.RoleAdmin, models.RoleModerator)
	admin := s.RolesRequired(models.RoleAdmin)

	users := api.Group("/users")
	users.Post("/", s.limiter.Limit("register", 5, 10*time.Minute), s.Register)
	users.Post("/login", s.limiter.Limit("login", 10, 5*time.Minute), s.Login)
	users.Post("/logout", authRequired, s.Logout)
	users.Get("/auth/github", s.GitHubAuth)
	users.Get("/auth/github/callback", s.GitHubCallback)
	users.Get("/token/:token", s.GetUserByToken)
	users.Get("/roles", authRequired, admin, s.ListUsersWithRoles)
	users.Get("/me", authRequired, s.GetMe)
	users.Get("/", authRequired, s.ListUsers)
	users.Patch("/profile/pictures/:id", authRequired, s.UpdateProfilePictures)
	users.Patch("/:id/roles", authRequired, admin, s.AddUserRole)
	users.Delete("/:userId/:roleId", authRequired, admin, s.RemoveUserRole)
	users.Get("/:id", s.GetUser)
	users.Patch("/:id", authRequired, s.UpdateUser)
	users.Delete("/:id", authRequired, s.DeleteUser)

	roles := api.Group("/roles", authRequired, admin)
	roles.Get("/", s.ListRoles)
	roles.Post("/", s.CreateRole)

	categories := api.Group("/categories")
	categories.Get("/", s.ListCategories)
	categories.Get("/:id", s.GetCategory)
	categories.Post("/", authRequired, admin, s.CreateCategory)
	categories.Delete("/:id", authRequired, admin, s.DeleteCategory)

	tags := api.Group("/tags")
	tags.Get("/", s.ListTags)
	tags.Get("/:id", s.GetTag)
	tags.Post("/", authRequired, s.CreateTag)
	tags.Delete("/:id", authRequired, admin, s.DeleteTag)

	files := api.Group("/storage")
	files.Post("/upload", authRequired, s.limiter.Limit("upload", 20, time.Minute), s.UploadFile)
	files.Get("/:fileName", s.GetFile)
	files.Delete("/:fileName", authRequired, staff, s.DeleteFile)

	interact := []fiber.Handler{
		middleware.OptionalAuth(s.tokens),
		s.limiter.Limit("interact", 30, time.Minute),
	}

	games := api.Group("/games")
	gameRoutes := contentRoutes[models.Game]{svc: s.games.ContentService}
	gameRoutes.register(games, authRequired, staff, interact)
	games.Post("/", authRequired, s.limiter.Limit("create_game", 10, time.Hour), s.CreateGame)
	games.Patch("/:id", authRequired, s.UpdateGame)
	games.Get("/:id", gameRoutes.GetByID)

	snippets := api.Group("/snippets")
	snippetRoutes := contentRoutes[models.Snippet]{svc: s.snippets.ContentService}
	snippetRoutes.register(snippets, authRequired, staff, interact)
	snippets.Post("/", authRequired, s.limiter.Limit("create_snippet", 20, time.Hour), s.CreateSnippet)
	snippets.Patch("/:id", authRequired, s.UpdateSnippet)
	snippets.Get("/:id", snippetRoutes.GetByID)

	tutorials := api.Group("/tutorials")
	tutorialRoutes := contentRoutes[models.Tutorial]{svc: s.tutorials.ContentService}
	tutorialRoutes.register(tutorials, authRequired, staff, interact)
	tutorials.Get("/similar/:pid", tutorialRoutes.Similar)
	tutorials.Post("/", authRequired, s.limiter.Limit("create_tutorial", 10, time.Hour), s.CreateTutorial)
	tutorials.Patch("/:id", authRequired, s.UpdateTutorial)
	tutorials.Get("/:id", tutorialRoutes.GetByID)

	submissions := api.Group("/submissions", authRequired, staff)
	submissions.Get("/", s.ListSubmissions)
	submissions.Post("/", s.CreateSubmission)
	submissions.Patch("/:id/resolve", s.ResolveSubmission)
	submissions.Get("/:id", s.GetSubmission)
	submissions.Patch("/:id", s.UpdateSubmission)
	submissions.Delete("/:id", s.DeleteSubmission)
}

// LivenessCheck returns 200 if the process is alive
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck returns 200 if dependencies are reachable
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := s.repos.Ping(ctx); err != nil {
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

	storageStatus := "healthy"
	switch store := s.store.(type) {
	case nil:
		storageStatus = "unavailable"
	case interface{ Ping(context.Context) error }:
		if err := store.Ping(ctx); err != nil {
			storageStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"storage":  storageStatus,
		},
		"time": time.Now(),
	})
}

// RolesRequired lets the request through only when the authenticated user
// holds one of the named roles. Roles are read from the database so that
// revoked roles take effect before the token expires.
func (s *Server) RolesRequired(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			return models.NewUnauthorizedError("Authorization required")
		}

		user, err := s.repos.Users.GetByID(c.UserContext(), userID)
		if err != nil {
			if models.IsNotFound(err) {
				return models.NewUnauthorizedError("Authorization required")
			}
			return err
		}
		if !user.HasAnyRole(roles...) {
			return models.NewForbiddenError("Insufficient permissions")
		}

		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
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
