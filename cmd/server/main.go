package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maintex-gateway/internal/adapters/http/middleware"
	"maintex-gateway/internal/adapters/http/routes"
	"maintex-gateway/internal/adapters/persistence/cache"
	"maintex-gateway/internal/adapters/persistence/models"
	"maintex-gateway/internal/adapters/persistence/repositories"
	"maintex-gateway/internal/adapters/persistence/storage"
	"maintex-gateway/internal/config"
	"maintex-gateway/internal/core/domain"
	"maintex-gateway/internal/core/services"
	"maintex-gateway/internal/pkg/logger"
	"maintex-gateway/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	_ "maintex-gateway/docs" // Swagger docs
)

// @title Maintex Gateway
// @version 1.0
// @description Internal access gateway for the Maintex production schedule.
// @description Every route except /_health is restricted to the configured networks.

// @BasePath /
// @schemes https http

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, JSON: cfg.IsProd()})
	if cfg.Session.SecretGenerated {
		log.Warn("SESSION_SECRET is not set; using a random per-process secret, sessions will not survive a restart")
	}
	if cfg.Network.AllowList.Empty() {
		log.Warn("ALLOWED_NETWORKS is empty; every request except /_health will be denied")
	}

	m := metrics.New()
	cronService := services.NewCronService(log)

	// Session, limiter and export cache backends
	deps := routes.Deps{Logger: log, Metrics: m}
	var exportCache services.ExportCache
	var db *gorm.DB

	switch cfg.Session.Store {
	case config.StoreRedis:
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = client.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}

		deps.SessionStorage = storage.NewRedisStorage(client, cfg.Redis.KeyPrefix+"sess:")
		deps.LimiterStorage = storage.NewRedisStorage(client, cfg.Redis.KeyPrefix+"limit:")
		exportCache = cache.NewRedisExportCache(client, cfg.Redis.KeyPrefix)
		log.Info("Session store: redis")

	case config.StoreMySQL:
		db, err = config.ConnectDatabase(cfg, log)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer config.CloseDatabase(db)

		if err := models.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to auto migrate: %v", err)
		}
		log.Info("Database migration completed")

		sessionRepo := repositories.NewSessionRepository(db)
		deps.SessionStorage = sessionRepo
		deps.LimiterStorage = sessionRepo
		if cfg.Session.PurgeCron != "" {
			err := cronService.AddJob("session-purge", cfg.Session.PurgeCron, func(ctx context.Context) error {
				n, err := sessionRepo.DeleteExpired(ctx)
				if err == nil && n > 0 {
					log.WithField("removed", n).Info("expired sessions purged")
				}
				return err
			})
			if err != nil {
				log.Fatalf("Invalid SESSION_PURGE_CRON: %v", err)
			}
		}
		log.Info("Session store: mysql")

	default:
		log.Info("Session store: memory")
	}

	if exportCache == nil {
		exportCache = cache.NewMemoryExportCache(cfg.Schedule.CacheSize, cfg.Schedule.CacheTTL)
	}

	// Upstream clients
	httpClient := &http.Client{Timeout: cfg.Schedule.FetchTimeout}

	deps.Credentials = services.NewEnvCredentialStore(log)
	if provider := services.NewGoogleIdentityProvider(cfg.Google, httpClient); provider != nil {
		deps.Identity = provider
	} else if cfg.Auth.Mode == domain.AuthModeGoogle {
		log.Warn("AUTH_MODE=google but the OAuth client is not fully configured; Google sign-in will fail")
	}
	if cfg.Auth.Mode == domain.AuthModeGoogle && len(cfg.Auth.AllowedEmailDomains) == 0 {
		log.Warn("ALLOWED_EMAIL_DOMAINS is empty; no Google account can sign in")
	}

	source, err := newScheduleSource(cfg, httpClient)
	if err != nil {
		log.Fatalf("Failed to configure schedule source: %v", err)
	}
	schedule := services.NewScheduleService(source, exportCache, cfg.Schedule, m, log)
	deps.Schedule = schedule
	log.WithFields(logrus.Fields{
		"source":    source.Name(),
		"cache_ttl": cfg.Schedule.CacheTTL.String(),
	}).Info("Schedule export configured")

	if cfg.Schedule.WarmCron != "" {
		if source.Name().PerCaller() {
			log.Warn("SCHEDULE_WARM_CRON ignored: delegated exports are fetched per user")
		} else if err := cronService.AddJob("schedule-warm", cfg.Schedule.WarmCron, schedule.Refresh); err != nil {
			log.Fatalf("Invalid SCHEDULE_WARM_CRON: %v", err)
		}
	}

	table, err := services.LoadLabelTable(cfg.Paths.LabelTablePath)
	if err != nil {
		log.Fatalf("Failed to load label conversions: %v", err)
	}
	deps.Labels = services.NewLabelService(table)

	cronService.Start()
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Maintex Gateway",
		ErrorHandler: middleware.NewErrorHandler(log),
		BodyLimit:    1 << 20,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * cfg.Schedule.FetchTimeout,
	})

	// Setup middlewares
	middleware.Setup(app, cfg, log)

	// Setup routes
	routes.Setup(app, cfg, deps)

	// Graceful shutdown
	go gracefulShutdown(app, log)

	// Start server
	log.Infof("Server starting on port %s [MODE: %s, AUTH: %s]", cfg.Port, cfg.AppMode, cfg.Auth.Mode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newScheduleSource(cfg *config.Config, httpClient *http.Client) (services.ScheduleSource, error) {
	switch cfg.Schedule.Source {
	case domain.SourceDelegatedUser:
		return services.NewDelegatedDriveSource(httpClient), nil
	case domain.SourceServiceCredential:
		src, err := services.NewServiceAccountSource(context.Background(), cfg.Google.ServiceAccountJSON, httpClient)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return services.NewPublicExportSource(httpClient, cfg.Schedule.ExportURL), nil
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, log *logrus.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Errorf("Error during shutdown: %v", err)
	}
	log.Info("Server stopped gracefully")
}
