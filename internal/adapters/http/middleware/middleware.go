package middleware

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"maintex-gateway/internal/config"
	"maintex-gateway/internal/core/domain"
	"maintex-gateway/internal/pkg/metrics"
	"maintex-gateway/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// Setup configures all middlewares for the application
func Setup(app *fiber.App, cfg *config.Config, log *logrus.Logger) {
	// Recover middleware - catches panics
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDev()}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// CSP stays off: the schedule page runs an inline script and a CDN bundle.
	app.Use(helmet.New(helmet.Config{
		XSSProtection:             "0",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "SAMEORIGIN",
		ReferrerPolicy:            "no-referrer",
		CrossOriginEmbedderPolicy: "unsafe-none",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
		PermissionPolicy:          "geolocation=(), microphone=(), camera=()",
	}))

	format := "${time} | ${status} | ${latency} | ${locals:client_ip} | ${method} | ${path}\n"
	if cfg.IsProd() {
		format = "${time} | ${status} | ${latency} | ${locals:client_ip} | ${method} | ${path} | ${error}\n"
	}
	app.Use(logger.New(logger.Config{
		Format:     format,
		TimeFormat: "2006-01-02 15:04:05",
		Output:     log.Writer(),
	}))

	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: CookieKey(cfg.Session.Secret),
	}))
}

// CookieKey derives the AES-256 cookie key from the session secret.
func CookieKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// LoginRateLimiter limits every login route together, per resolved client
// IP. Successful and failed attempts both count.
func LoginRateLimiter(cfg config.RateLimitConfig, storage fiber.Storage, m *metrics.Metrics) fiber.Handler {
	lc := limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "login:" + ClientIP(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			m.LoginAttempt("any", metrics.LoginRateLimited)
			return response.TooManyRequests(c, "Too many login attempts. Please try again later.")
		},
	}
	if storage != nil {
		lc.Storage = storage
	}
	return limiter.New(lc)
}

type errorMapping struct {
	err     error
	status  int
	message string
}

// specificErrors is checked in order before falling back to error kinds.
var specificErrors = []errorMapping{
	{domain.ErrNetworkDenied, fiber.StatusForbidden, "Access denied from this network."},
	{domain.ErrDocumentDenied, fiber.StatusForbidden, "Access denied to the schedule document."},
	{domain.ErrTokenMissing, fiber.StatusUnauthorized, "Sign in with Google to load the schedule."},
	{domain.ErrTokenExpired, fiber.StatusUnauthorized, "Google session expired. Please sign in again."},
	{domain.ErrNotAuthenticated, fiber.StatusUnauthorized, "Authentication required."},
	{domain.ErrUpstreamFetch, fiber.StatusInternalServerError, "Failed to fetch schedule from Google."},
	{domain.ErrUpstreamOpen, fiber.StatusInternalServerError, "Failed to fetch schedule from Google."},
}

var kindErrors = []errorMapping{
	{domain.ErrConfiguration, fiber.StatusInternalServerError, "Internal Server Error"},
	{domain.ErrAuthentication, fiber.StatusUnauthorized, "Authentication required."},
	{domain.ErrAuthorization, fiber.StatusForbidden, "Access denied."},
	{domain.ErrUpstream, fiber.StatusInternalServerError, "Upstream request failed."},
	{domain.ErrValidation, fiber.StatusBadRequest, "Invalid request."},
}

// Translate maps an error to the status and message shown to the client.
// Details stay in the log.
func Translate(err error) (int, string) {
	for _, m := range specificErrors {
		if errors.Is(err, m.err) {
			return m.status, m.message
		}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	for _, m := range kindErrors {
		if errors.Is(err, m.err) {
			return m.status, m.message
		}
	}
	return fiber.StatusInternalServerError, "Internal Server Error"
}

// NewErrorHandler returns the application error handler
func NewErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, message := Translate(err)

		entry := log.WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
			"status": code,
			"ip":     ClientIP(c),
		}).WithError(err)
		switch {
		case code >= fiber.StatusInternalServerError:
			entry.Error("request failed")
		case code == fiber.StatusNotFound:
			entry.Debug("request failed")
		default:
			entry.Info("request rejected")
		}

		return response.Error(c, code, message)
	}
}
