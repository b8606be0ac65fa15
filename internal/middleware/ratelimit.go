package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

var errNoRedis = errors.New("redis client is nil")

// RateLimitEnabled reports whether env throttles requests. Test and development do not.
func RateLimitEnabled(env string) bool {
	switch env {
	case "", "test", "development":
		return false
	}
	return true
}

// CheckRateLimit counts a hit against resource/id and reports whether it is within limit.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return false, errNoRedis
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(limit), nil
}

// RateLimit returns a Fiber middleware enforcing limit requests per window for
// the named resource. It keys by user when signed in, otherwise by remote IP.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, resource string, policy FailPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid := UserID(c); uid != 0 {
			id = fmt.Sprintf("user:%d", uid)
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, resource, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				observability.L(c.UserContext()).Warn("Rate limit store unavailable, rejecting",
					zap.String("resource", resource), zap.Error(err))
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Error: "Rate limit unavailable",
					Code:  "RATE_LIMIT_UNAVAILABLE",
				})
			}
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Rate limit exceeded",
				Code:  "RATE_LIMITED",
			})
		}
		return c.Next()
	}
}
