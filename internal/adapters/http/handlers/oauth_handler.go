package handlers

import (
	"errors"

	"maintex-gateway/internal/adapters/http/session"
	"maintex-gateway/internal/core/domain"
	"maintex-gateway/internal/core/services"
	"maintex-gateway/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// OAuthHandler handles the Google sign-in round trip
type OAuthHandler struct {
	oauth    *services.OAuthService
	sessions *session.Manager
	metrics  *metrics.Metrics
	log      *logrus.Logger
}

// NewOAuthHandler creates a new OAuth handler
func NewOAuthHandler(oauth *services.OAuthService, sessions *session.Manager, m *metrics.Metrics, log *logrus.Logger) *OAuthHandler {
	return &OAuthHandler{oauth: oauth, sessions: sessions, metrics: m, log: log}
}

// Begin redirects to Google
// @Summary Start Google sign-in
// @Tags Auth
// @Param next query string false "Relative path to open after sign-in"
// @Success 302 {string} string "Redirect to Google"
// @Failure 429 {object} response.Response
// @Failure 500 {object} response.Response "OAuth client not configured"
// @Router /auth/google [get]
func (h *OAuthHandler) Begin(c *fiber.Ctx) error {
	redirect, err := h.oauth.Begin()
	if err != nil {
		return err
	}

	pending := session.Pending{Next: SafeNext(c.Query("next")), Nonce: redirect.Nonce}
	if err := h.sessions.SetPending(c, pending); err != nil {
		return err
	}
	return c.Redirect(redirect.URL, fiber.StatusFound)
}

// Callback completes the Google sign-in
// @Summary Google sign-in callback
// @Description Any failure destroys the session and redirects to /login?error=1.
// @Tags Auth
// @Param code query string false "Authorization code"
// @Param state query string false "Signed state"
// @Param error query string false "Provider error"
// @Success 302 {string} string "Redirect to next"
// @Failure 429 {object} response.Response
// @Router /auth/google/callback [get]
func (h *OAuthHandler) Callback(c *fiber.Ctx) error {
	pending := h.sessions.Pending(c)

	identity, err := h.oauth.Complete(c.UserContext(), services.CallbackInput{
		Code:          c.Query("code"),
		State:         c.Query("state"),
		ProviderError: c.Query("error"),
		SessionNonce:  pending.Nonce,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			h.sessions.Destroy(c)
			return err
		}

		outcome := metrics.LoginFailure
		if errors.Is(err, domain.ErrDomainNotAllowed) {
			outcome = metrics.LoginDenied
		}
		h.metrics.LoginAttempt("google", outcome)
		h.log.WithError(err).Warn("google login rejected")

		h.sessions.Destroy(c)
		return c.Redirect("/login?error=1", fiber.StatusFound)
	}

	if err := h.sessions.Establish(c, identity.Email, identity.Tokens); err != nil {
		return err
	}
	h.metrics.LoginAttempt("google", metrics.LoginSuccess)
	h.log.WithField("email", identity.Email).Info("google login succeeded")

	return c.Redirect(SafeNext(pending.Next), fiber.StatusFound)
}
