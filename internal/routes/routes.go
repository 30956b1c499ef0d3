package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/medilink/medilink/internal/auth"
	"github.com/medilink/medilink/internal/config"
	"github.com/medilink/medilink/internal/identity"
	"github.com/medilink/medilink/internal/middleware"
	"github.com/medilink/medilink/internal/notification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Postgres is required outside development, even though main also checks.
	if d.DB == nil && !d.Cfg.IsDev() {
		return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.Cfg.ClientOrigin,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))

	RegisterHealthRoutes(app, d)

	var repo identity.Repository
	if d.DB != nil {
		repo = identity.NewPostgresRepository(d.DB)
	} else {
		repo = identity.NewMemoryRepository()
	}

	var notifier notification.Notifier
	if d.Cfg.SMTPAddr != "" {
		notifier = notification.NewSMTPNotifier(d.Cfg.SMTPAddr, d.Cfg.SMTPFrom, d.Cfg.SMTPUsername, d.Cfg.SMTPPassword)
	} else {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	tokens := auth.NewTokenManager(d.Cfg.JWTSecret)
	challenges := auth.NewChallengeCodec(d.Cfg.JWTSecret, 0)
	marker := auth.NewChallengeMarker(d.Cache)
	authSvc := auth.NewService(repo, tokens, challenges, notifier, marker)
	google := auth.NewGoogleBridge(d.Cfg, authSvc)
	authHandler := auth.NewHandler(authSvc, google, d.Cfg.ClientOrigin)

	api := app.Group("/api")

	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	sessionAuth := middleware.SessionAuth(tokens)
	RegisterUserRoutes(api, repo, sessionAuth)

	return nil
}
