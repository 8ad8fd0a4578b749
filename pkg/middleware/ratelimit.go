package middleware

import (
	"strconv"
	"sync"
	"time"

	"fin-extractor/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/memory/v2"
)

var (
	defaultStorage     fiber.Storage
	defaultStorageOnce sync.Once
)

// sharedStorage is the process-wide store used when no Storage is configured.
func sharedStorage() fiber.Storage {
	defaultStorageOnce.Do(func() {
		defaultStorage = memory.New()
	})
	return defaultStorage
}

// RateLimitConfig describes a fixed-window, per-user budget for one route.
type RateLimitConfig struct {
	// Route labels the rejection metric.
	Route  string
	Max    int
	Window time.Duration
	// Storage holds the counters. nil means one in-process store shared by
	// every limiter.
	Storage fiber.Storage
}

// RateLimit must run after SessionMiddleware: the user ID is the limiter key.
// Limiters over the same storage share one counter per user, each comparing
// it against its own Max.
func RateLimit(cfg RateLimitConfig, m *metrics.Metrics) fiber.Handler {
	if cfg.Storage == nil {
		cfg.Storage = sharedStorage()
	}

	limit := limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Window,
		Storage:    cfg.Storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "rate:" + userIDFrom(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			m.RateLimitedTotal.WithLabelValues(cfg.Route).Inc()

			retryAfter, err := strconv.Atoi(c.GetRespHeader(fiber.HeaderRetryAfter))
			if err != nil {
				retryAfter = int(cfg.Window.Seconds())
			}
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":      "Rate limit exceeded",
				"retryAfter": retryAfter,
			})
		},
	})

	return func(c *fiber.Ctx) error {
		if userIDFrom(c) == "" {
			return unauthorized(c)
		}
		return limit(c)
	}
}

func userIDFrom(c *fiber.Ctx) string {
	userID, _ := c.Locals(LocalUserID).(string)
	return userID
}
