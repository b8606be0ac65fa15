package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"inkwell/internal/observability"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// MigrationStatus describes the applied schema version.
type MigrationStatus struct {
	Version uint
	Dirty   bool
}

// newMigrator wraps the gorm pool for golang-migrate. The returned instance
// must not be closed: closing it would close the shared *sql.DB.
func newMigrator(db *gorm.DB) (*migrate.Migrate, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies every pending embedded migration.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	m, err := newMigrator(db.WithContext(ctx))
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	status, err := statusOf(m)
	if err != nil {
		return err
	}
	observability.Logger.Info("Migrations completed",
		zap.Uint("version", status.Version),
		zap.Bool("dirty", status.Dirty),
	)
	return nil
}

// RollbackMigration reverts the given number of applied migrations.
func RollbackMigration(ctx context.Context, db *gorm.DB, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	m, err := newMigrator(db.WithContext(ctx))
	if err != nil {
		return err
	}
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	observability.Logger.Info("Migrations rolled back", zap.Int("steps", steps))
	return nil
}

// GetMigrationStatus reports the current schema version.
func GetMigrationStatus(ctx context.Context, db *gorm.DB) (MigrationStatus, error) {
	m, err := newMigrator(db.WithContext(ctx))
	if err != nil {
		return MigrationStatus{}, err
	}
	return statusOf(m)
}

func statusOf(m *migrate.Migrate) (MigrationStatus, error) {
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, fmt.Errorf("failed to get migration version: %w", err)
	}
	return MigrationStatus{Version: version, Dirty: dirty}, nil
}
