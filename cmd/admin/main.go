// Package main provides role management utilities for Inkwell.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin promote <username>   - Grant the ADMIN role")
		fmt.Println("  go run ./cmd/admin demote <username>    - Return the user to ORDINARY")
		fmt.Println("  go run ./cmd/admin list-admins          - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	users := service.NewUserService(repository.NewStore(db), cfg.BcryptCost)
	ctx := context.Background()

	switch command := os.Args[1]; command {
	case "promote", "demote":
		if len(os.Args) < 3 {
			fmt.Printf("Usage: go run ./cmd/admin %s <username>\n", command)
			os.Exit(1)
		}
		role := models.RoleAdmin
		if command == "demote" {
			role = models.RoleOrdinary
		}
		setRole(ctx, users, os.Args[2], role)
	case "list-admins":
		listAdmins(ctx, users)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func setRole(ctx context.Context, users *service.UserService, username string, role models.Role) {
	user, err := users.SetRole(ctx, username, role)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			fmt.Printf("User %s not found\n", username)
			os.Exit(1)
		}
		log.Fatalf("Failed to change role: %v", err)
	}
	fmt.Printf("%s (ID: %d) is now %s\n", user.Username, user.ID, user.Role)
}

func listAdmins(ctx context.Context, users *service.UserService) {
	admins, err := users.ListAdmins(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}
	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}
	fmt.Printf("Admins (%d):\n", len(admins))
	for _, a := range admins {
		fmt.Printf("  - %s (ID: %d, email: %s)\n", a.Username, a.ID, a.Email)
	}
}
