// Command migrate runs schema operations for the backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"inkwell/internal/config"
	"inkwell/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|auto|version|down> [steps]")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if cfg.DBDriver != "postgres" {
			return fmt.Errorf("sql migrations require DB_DRIVER=postgres, got %q", cfg.DBDriver)
		}
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Println("sql migrations applied")
	case "auto":
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Println("automigrations applied")
	case "version":
		status, err := database.GetMigrationStatus(ctx, db)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		log.Printf("version=%d dirty=%t", status.Version, status.Dirty)
	case "down":
		steps := 1
		if flag.NArg() >= 2 {
			steps, err = strconv.Atoi(flag.Arg(1))
			if err != nil {
				return fmt.Errorf("invalid steps %q: %w", flag.Arg(1), err)
			}
		}
		if err := database.RollbackMigration(ctx, db, steps); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Printf("rolled back %d migration(s)", steps)
	default:
		return usage()
	}
	return nil
}
