package routes

import (
	"maintex-gateway/internal/adapters/http/handlers"
	"maintex-gateway/internal/adapters/http/middleware"
	"maintex-gateway/internal/adapters/http/session"
	"maintex-gateway/internal/config"
	"maintex-gateway/internal/core/domain"
	"maintex-gateway/internal/core/services"
	"maintex-gateway/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/sirupsen/logrus"
)

// Deps carries the collaborators built in main.
type Deps struct {
	Logger  *logrus.Logger
	Metrics *metrics.Metrics

	// nil keeps sessions in process memory. A nil LimiterStorage shares
	// SessionStorage, so limiter counters live wherever sessions do.
	SessionStorage fiber.Storage
	LimiterStorage fiber.Storage

	Credentials services.CredentialStore
	// nil when the OAuth client is not configured
	Identity services.IdentityProvider
	Schedule *services.ScheduleService
	Labels   *services.LabelService
}

// Setup configures all routes for the application
func Setup(app *fiber.App, cfg *config.Config, deps Deps) {
	log := deps.Logger
	sessions := session.NewManager(cfg.Session, deps.SessionStorage, log)

	// Every request, static files included, passes the network filter first.
	app.Use(middleware.NetworkGuard(cfg.Network.AllowList, cfg.TrustProxyHops, deps.Metrics, log))

	healthHandler := handlers.NewHealthHandler()
	app.Get(middleware.HealthPath, healthHandler.HealthCheck)

	// ============================================================
	// Login
	// ============================================================
	limiterStorage := deps.LimiterStorage
	if limiterStorage == nil {
		limiterStorage = deps.SessionStorage
	}
	loginLimiter := middleware.LoginRateLimiter(cfg.LoginLimit, limiterStorage, deps.Metrics)

	authService := services.NewAuthService(deps.Credentials)
	authHandler := handlers.NewAuthHandler(authService, sessions, cfg.Auth.Mode, deps.Metrics, log)

	app.Get("/login", loginLimiter, middleware.NoCacheHeaders(), authHandler.LoginPage)
	app.Get("/logout", authHandler.Logout)

	switch cfg.Auth.Mode {
	case domain.AuthModeGoogle:
		oauthService := services.NewOAuthService(deps.Identity, cfg.Auth.AllowedEmailDomains, cfg.Session.Secret, cfg.Google.StateTTL)
		oauthHandler := handlers.NewOAuthHandler(oauthService, sessions, deps.Metrics, log)

		app.Get("/auth/google", loginLimiter, oauthHandler.Begin)
		app.Get("/auth/google/callback", loginLimiter, oauthHandler.Callback)
	default:
		app.Post("/login", loginLimiter, authHandler.Login)
	}

	// ============================================================
	// Protected
	// ============================================================
	requireAuth := middleware.RequireAuth(sessions, log)

	scheduleHandler := handlers.NewScheduleHandler(deps.Schedule, sessions, cfg.Paths.ProtectedDir, log)
	app.Get("/schedule", requireAuth, middleware.NoCacheHeaders(), scheduleHandler.Page)

	api := app.Group("/api", requireAuth)
	api.Get("/production-schedule.xlsx", middleware.PrivateRevalidate(), scheduleHandler.Export)

	labelHandler := handlers.NewLabelHandler(deps.Labels)
	api.Get("/label-conversions", labelHandler.Table)
	api.Get("/labels", labelHandler.Lookup)

	// ============================================================
	// Operations
	// ============================================================
	if cfg.Metrics.Enabled && deps.Metrics != nil {
		app.Get("/metrics", middleware.RequireBearer(cfg.Metrics.Token), adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	if cfg.SwaggerEnabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Static files come last so routes above always win.
	app.Static("/", cfg.Paths.PublicDir)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(handlers.DefaultNext, fiber.StatusFound)
	})
}
