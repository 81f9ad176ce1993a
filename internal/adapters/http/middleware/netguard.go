package middleware

import (
	"maintex-gateway/internal/core/domain"
	"maintex-gateway/internal/pkg/metrics"
	"maintex-gateway/internal/pkg/netguard"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// LocalClientIP is the c.Locals key holding the resolved client address.
const LocalClientIP = "client_ip"

// HealthPath is never subject to the network filter.
const HealthPath = "/_health"

// ClientIP returns the address resolved by NetworkGuard, or fiber's view of
// the peer when the guard has not run.
func ClientIP(c *fiber.Ctx) string {
	if ip, ok := c.Locals(LocalClientIP).(string); ok && ip != "" {
		return ip
	}
	return c.IP()
}

// NetworkGuard resolves the client address and rejects callers outside the
// allow-list. An empty allow-list admits nobody; only the health check
// stays reachable.
func NetworkGuard(allow *netguard.AllowList, trustHops int, m *metrics.Metrics, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		socket := c.Context().RemoteIP().String()
		ip := netguard.ClientIP(socket, c.Get(fiber.HeaderXForwardedFor), trustHops)
		c.Locals(LocalClientIP, ip)

		if c.Path() == HealthPath || allow.AllowsString(ip) {
			return c.Next()
		}

		m.NetworkDenied()
		log.WithFields(logrus.Fields{"ip": ip, "path": c.Path()}).Warn("request from disallowed network")
		return domain.ErrNetworkDenied
	}
}
