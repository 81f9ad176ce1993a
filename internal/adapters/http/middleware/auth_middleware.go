package middleware

import (
	"crypto/subtle"
	"net/url"
	"strings"

	"maintex-gateway/internal/adapters/http/session"
	"maintex-gateway/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RequireAuth lets signed-in callers through and slides their session
// expiry. Everyone else is sent to the login page with the requested URL
// as next.
func RequireAuth(sessions *session.Manager, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := sessions.Touch(c)
		if err != nil {
			log.WithError(err).Warn("session check failed")
		}
		if identity == "" {
			return c.Redirect("/login?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
		}

		c.Locals(session.LocalIdentity, identity)
		return c.Next()
	}
}

// Identity returns the identity set by RequireAuth
func Identity(c *fiber.Ctx) string {
	identity, _ := c.Locals(session.LocalIdentity).(string)
	return identity
}

// RequireBearer guards an endpoint with a static bearer token. An empty
// token leaves the endpoint open.
func RequireBearer(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Next()
		}
		got := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return domain.ErrNotAuthenticated
		}
		return c.Next()
	}
}
