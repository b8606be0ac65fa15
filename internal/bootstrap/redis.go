package bootstrap

import (
	"context"
	"errors"
	"strings"
	"time"

	"inkwell/internal/observability"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// NewRedisClient connects to addr, which may be a redis:// URL or host:port.
// It returns nil when addr is empty or the server does not answer a ping;
// sessions then cannot be revoked and rate limits follow their fail policy.
func NewRedisClient(addr string) *redis.Client {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		observability.Logger.Info("REDIS_URL not set, running without redis")
		return nil
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			observability.Logger.Warn("Invalid REDIS_URL, running without redis", zap.Error(err))
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		observability.Logger.Warn("Redis unreachable, running without redis", zap.Error(err))
		_ = client.Close()
		return nil
	}
	observability.Logger.Info("Redis connected", zap.String("addr", opts.Addr))
	return client
}
