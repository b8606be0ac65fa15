package middleware

import (
	"context"
	"time"

	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ContextMiddleware copies the request and trace ids from Fiber locals into the
// request context so observability.L picks them up in services.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ctx = context.WithValue(ctx, observability.RequestIDKey, rid)
		}
		if tid, ok := c.Locals("traceID").(string); ok && tid != "" {
			ctx = context.WithValue(ctx, observability.TraceIDKey, tid)
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RequestLogger logs one line per request after the handler chain has run.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Response().StatusCode()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_agent", c.Get(fiber.HeaderUserAgent)),
		}

		log := observability.L(c.UserContext())
		if err != nil {
			log.Error("request failed", append(fields, zap.Error(err))...)
		} else {
			log.Info("request processed", fields...)
		}
		return err
	}
}
