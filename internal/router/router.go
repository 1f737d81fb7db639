package router

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/internal/handlers"
	"github.com/anonto42/yatube/internal/metrics"
	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/services"
	"github.com/anonto42/yatube/internal/validators"
	"github.com/anonto42/yatube/internal/views"
	"github.com/anonto42/yatube/pkg/firebase"
	"github.com/anonto42/yatube/pkg/storage"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// Dependencies are the backends the routes are wired to.
type Dependencies struct {
	Postgres *gorm.DB
	// Posts overrides the PostgreSQL post repository, e.g. with MongoDB.
	Posts    repositories.PostRepository
	Cache    cache.Store
	CacheTTL time.Duration
	Blobs    storage.BlobStore
	// MediaRoot is served under /media/ when Blobs is a local store.
	MediaRoot     string
	Firebase      firebase.TokenVerifier
	SessionSecret string
	SessionTTL    time.Duration
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Pre(eMiddleware.AddTrailingSlashWithConfig(eMiddleware.TrailingSlashConfig{
		RedirectCode: 301,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/media/")
		},
	}))
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			log.Printf("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(metrics.Middleware())
	e.Use(eMiddleware.CSRFWithConfig(eMiddleware.CSRFConfig{
		TokenLookup:    "form:_csrf,header:X-CSRF-Token",
		CookiePath:     "/",
		CookieHTTPOnly: false,
	}))

	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) error {
	if err := repositories.AutoMigrate(deps.Postgres); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	renderer, err := views.New(deps.Blobs.URL)
	if err != nil {
		return err
	}
	e.Renderer = renderer

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	groupRepo := repositories.NewPostgresGroupRepository(deps.Postgres)
	commentRepo := repositories.NewPostgresCommentRepository(deps.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(deps.Postgres)
	var postRepo repositories.PostRepository = repositories.NewPostgresPostRepository(deps.Postgres)
	if deps.Posts != nil {
		postRepo = deps.Posts
	}

	// --- Services ---
	feedService := services.NewFeedService(postRepo, groupRepo, userRepo, followRepo)
	followService := services.NewFollowService(userRepo, followRepo, deps.Cache)
	postService := services.NewPostService(postRepo, groupRepo, commentRepo, deps.Blobs)

	sessions := middleware.NewSessions(deps.SessionSecret, deps.SessionTTL, userRepo)
	e.Use(sessions.Middleware())
	if deps.Firebase != nil {
		e.Use(middleware.FirebaseBearer(deps.Firebase, userRepo))
	}

	e.GET("/health/", handlers.HealthCheck)
	if _, ok := deps.Blobs.(*storage.LocalStore); ok && deps.MediaRoot != "" {
		e.Static("/media", deps.MediaRoot)
	}

	site := e.Group("")

	authGroup := e.Group("/auth")
	authHandler := handlers.NewAuthHandler(userRepo, sessions, deps.Firebase)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	feedHandler := handlers.NewFeedHandler(feedService, deps.Cache, deps.CacheTTL, renderer)
	feedHandler.RegisterFeedRoutes(site)
	log.Println("Feed routes configured.")

	postHandler := handlers.NewPostHandler(postService)
	postHandler.RegisterPostRoutes(site)
	log.Println("Post routes configured.")

	commentHandler := handlers.NewCommentHandler(postService)
	commentHandler.RegisterCommentRoutes(site)
	log.Println("Comment routes configured.")

	followHandler := handlers.NewFollowHandler(followService)
	followHandler.RegisterFollowRoutes(site)
	log.Println("Follow routes configured.")

	log.Println("All routes configured.")
	return nil
}
