// Package session keeps the gateway's per-browser state on top of fiber's
// session store.
package session

import (
	"encoding/json"
	"fmt"

	"maintex-gateway/internal/config"
	"maintex-gateway/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Session keys
const (
	keyUser   = "user"
	keyTokens = "tokens"
	keyNext   = "next"
	keyNonce  = "oauth_nonce"
)

// LocalIdentity is the c.Locals key holding the authenticated identity.
const LocalIdentity = "identity"

// Pending is the state carried across the OAuth round trip.
type Pending struct {
	Next  string
	Nonce string
}

// Manager reads and writes gateway sessions.
type Manager struct {
	store *session.Store
	log   *logrus.Logger
}

// NewManager creates a session manager. A nil storage keeps sessions in
// process memory.
func NewManager(cfg config.SessionConfig, storage fiber.Storage, log *logrus.Logger) *Manager {
	name := cfg.CookieName
	if name == "" {
		name = config.SessionCookieName
	}
	return &Manager{
		store: session.New(session.Config{
			Expiration:     cfg.MaxAge,
			Storage:        storage,
			KeyLookup:      "cookie:" + name,
			CookiePath:     "/",
			CookieSecure:   cfg.Secure,
			CookieHTTPOnly: true,
			CookieSameSite: fiber.CookieSameSiteLaxMode,
			KeyGenerator:   uuid.NewString,
		}),
		log: log,
	}
}

// Identity returns the signed-in identity, or "" for an anonymous caller.
func (m *Manager) Identity(c *fiber.Ctx) string {
	sess, err := m.store.Get(c)
	if err != nil {
		m.log.WithError(err).Warn("session load failed")
		return ""
	}
	user, _ := sess.Get(keyUser).(string)
	return user
}

// Touch returns the identity and, when there is one, saves the session so
// its expiry slides forward.
func (m *Manager) Touch(c *fiber.Ctx) (string, error) {
	sess, err := m.store.Get(c)
	if err != nil {
		return "", err
	}
	user, _ := sess.Get(keyUser).(string)
	if user == "" {
		return "", nil
	}
	if err := sess.Save(); err != nil {
		return "", err
	}
	return user, nil
}

// Tokens returns the delegated token bundle, if any.
func (m *Manager) Tokens(c *fiber.Ctx) *domain.TokenBundle {
	sess, err := m.store.Get(c)
	if err != nil {
		m.log.WithError(err).Warn("session load failed")
		return nil
	}
	raw, _ := sess.Get(keyTokens).(string)
	if raw == "" {
		return nil
	}
	var tokens domain.TokenBundle
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		m.log.WithError(err).Warn("discarding unreadable session tokens")
		return nil
	}
	return &tokens
}

// Establish signs identity in under a fresh session id. Pending OAuth state
// is cleared; tokens may be nil.
func (m *Manager) Establish(c *fiber.Ctx, identity string, tokens *domain.TokenBundle) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("regenerate session: %w", err)
	}

	sess.Delete(keyNext)
	sess.Delete(keyNonce)
	sess.Delete(keyTokens)
	sess.Set(keyUser, identity)
	if tokens != nil {
		raw, err := json.Marshal(tokens)
		if err != nil {
			return fmt.Errorf("encode tokens: %w", err)
		}
		sess.Set(keyTokens, string(raw))
	}
	return sess.Save()
}

// SetPending stores the post-login target and OAuth nonce.
func (m *Manager) SetPending(c *fiber.Ctx, p Pending) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(keyNext, p.Next)
	sess.Set(keyNonce, p.Nonce)
	return sess.Save()
}

// Pending returns the stored OAuth round-trip state.
func (m *Manager) Pending(c *fiber.Ctx) Pending {
	sess, err := m.store.Get(c)
	if err != nil {
		m.log.WithError(err).Warn("session load failed")
		return Pending{}
	}
	next, _ := sess.Get(keyNext).(string)
	nonce, _ := sess.Get(keyNonce).(string)
	return Pending{Next: next, Nonce: nonce}
}

// Destroy drops the session from storage and expires the cookie. Failures
// are logged; the caller proceeds either way.
func (m *Manager) Destroy(c *fiber.Ctx) {
	sess, err := m.store.Get(c)
	if err != nil {
		m.log.WithError(err).Warn("session load failed during destroy")
		return
	}
	if err := sess.Destroy(); err != nil {
		m.log.WithError(err).Warn("session destroy failed")
	}
}
