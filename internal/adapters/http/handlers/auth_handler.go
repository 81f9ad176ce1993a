package handlers

import (
	"bytes"
	"net/url"

	"maintex-gateway/internal/adapters/http/session"
	"maintex-gateway/internal/core/domain"
	"maintex-gateway/internal/core/services"
	"maintex-gateway/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles the login page, local sign-in and logout
type AuthHandler struct {
	authService *services.AuthService
	sessions    *session.Manager
	mode        domain.AuthMode
	metrics     *metrics.Metrics
	log         *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, sessions *session.Manager, mode domain.AuthMode, m *metrics.Metrics, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		mode:        mode,
		metrics:     m,
		log:         log,
	}
}

// LoginPage renders the sign-in form, or the Google link in google mode
// @Summary Login page
// @Tags Auth
// @Produce html
// @Param next query string false "Relative path to open after sign-in"
// @Param error query string false "Set after a failed attempt"
// @Success 200 {string} string "HTML page"
// @Failure 429 {object} response.Response
// @Router /login [get]
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	next := SafeNext(c.Query("next"))
	data := loginPageData{
		Next:       next,
		Failed:     c.Query("error") != "",
		GoogleMode: h.mode == domain.AuthModeGoogle,
		ErrorText:  "Invalid username or password.",
	}
	if data.GoogleMode {
		data.ErrorText = "Sign-in failed or this account is not allowed."
		data.GoogleLogin = "/auth/google?next=" + url.QueryEscape(next)
	}

	var buf bytes.Buffer
	if err := loginPage.Execute(&buf, data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// Login handles a username/password form post
// @Summary Local sign-in
// @Description Verifies the credentials and redirects to next. Failures redirect back to the login page with error=1.
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param next formData string false "Relative path to open after sign-in"
// @Success 302 {string} string "Redirect"
// @Failure 429 {object} response.Response
// @Router /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := c.BodyParser(&input); err != nil {
		h.metrics.LoginAttempt("local", metrics.LoginFailure)
		return c.Redirect(loginErrorURL(c.FormValue("next")), fiber.StatusFound)
	}

	username, err := h.authService.Authenticate(input)
	if err != nil {
		h.metrics.LoginAttempt("local", metrics.LoginFailure)
		h.log.WithField("username", input.Username).Info("local login rejected")
		return c.Redirect(loginErrorURL(input.Next), fiber.StatusFound)
	}

	if err := h.sessions.Establish(c, username, nil); err != nil {
		return err
	}
	h.metrics.LoginAttempt("local", metrics.LoginSuccess)
	h.log.WithField("username", username).Info("local login succeeded")

	return c.Redirect(SafeNext(input.Next), fiber.StatusFound)
}

// Logout ends the session
// @Summary Logout
// @Tags Auth
// @Success 302 {string} string "Redirect to /"
// @Router /logout [get]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.sessions.Destroy(c)
	return c.Redirect("/", fiber.StatusFound)
}
