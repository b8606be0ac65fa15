// Package bootstrap wires the runtime dependencies shared by the commands.
package bootstrap

import (
	"fmt"

	"inkwell/internal/config"
	"inkwell/internal/database"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SkipSchema leaves the schema untouched, for commands that manage it themselves.
	SkipSchema bool
	// SkipRedis does not connect to redis even when REDIS_URL is set.
	SkipRedis bool
}

// InitRuntime connects to the database, applies the configured schema mode and
// connects to redis when configured. The redis client may be nil.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: !opts.SkipSchema})
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	var r *redis.Client
	if !opts.SkipRedis {
		r = NewRedisClient(cfg.RedisURL)
	}
	return db, r, nil
}
