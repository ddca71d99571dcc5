package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/paperdrop-api/internal/utils"
)

// RateLimit creates a limiter keyed by the authenticated user, or the client IP for anonymous callers.
// A nil storage keeps counters in process memory.
func RateLimit(identifier string, max int, window time.Duration, storage fiber.Storage) fiber.Handler {
	return newLimiter(max, window, storage, func(c *fiber.Ctx) string {
		if userID, ok := c.Locals(LocalUserID).(uint); ok && userID != 0 {
			return fmt.Sprintf("%s:user:%d", identifier, userID)
		}
		return fmt.Sprintf("%s:ip:%s", identifier, c.IP())
	})
}

// IPRateLimit counts every request by client IP, whether or not it carries credentials.
// It is mounted ahead of Authenticate so rejected tokens still consume the budget.
func IPRateLimit(identifier string, max int, window time.Duration, storage fiber.Storage) fiber.Handler {
	return newLimiter(max, window, storage, func(c *fiber.Ctx) string {
		return fmt.Sprintf("%s:ip:%s", identifier, c.IP())
	})
}

func newLimiter(max int, window time.Duration, storage fiber.Storage, key func(*fiber.Ctx) string) fiber.Handler {
	if max <= 0 {
		max = 100
	}
	if window <= 0 {
		window = 15 * time.Minute
	}

	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   window,
		Storage:      storage,
		KeyGenerator: key,
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests, please try again later")
		},
	})
}
