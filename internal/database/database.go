// Package database handles database connections and migrations.
package database

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectOptions control what Connect does after opening the pool.
type ConnectOptions struct {
	ApplySchema bool
}

// PersistentModels lists every GORM model that owns a table.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Article{},
		&models.Comment{},
	}
}

// Connect opens the configured database and applies the schema.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return ConnectWithOptions(cfg, ConnectOptions{ApplySchema: true})
}

// ConnectWithOptions opens the configured database using the provided options.
func ConnectWithOptions(cfg *config.Config, opts ConnectOptions) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DBSQLitePath)
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewZapGormLogger(observability.Logger, logger.Warn, 200*time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		// SQLite serialises writers; a single connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	observability.Logger.Info("Database connected successfully", zap.String("driver", cfg.DBDriver))

	if opts.ApplySchema {
		if err := ApplySchema(context.Background(), db, cfg); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// ApplySchema brings the schema up to date according to DB_SCHEMA_MODE.
// "sql" runs the embedded migrations; "auto" runs GORM AutoMigrate.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	switch cfg.DBSchemaMode {
	case "sql":
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	default:
		if err := AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	observability.Logger.Info("Database schema applied", zap.String("mode", cfg.DBSchemaMode))
	return nil
}

// AutoMigrate creates or updates tables for PersistentModels.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// Ping checks that the database answers within ctx.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
