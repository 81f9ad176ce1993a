package repositories

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// SessionRepository stores sessions and limiter counters in MySQL
type SessionRepository interface {
	fiber.Storage
	DeleteExpired(ctx context.Context) (int64, error)
}
