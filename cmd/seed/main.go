// Command main runs the database seeder for Inkwell.
package main

import (
	"context"
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numArticles := flag.Int("articles", 100, "Number of articles to create")
	maxComments := flag.Int("comments", 5, "Maximum comments per article")
	fixture := flag.String("fixture", "", "Load a YAML fixture file instead of generating data")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	var res seed.Result
	if *fixture != "" {
		log.Printf("Loading fixture %s", *fixture)
		res, err = s.LoadFixtureFile(ctx, *fixture, cfg.BcryptCost)
	} else {
		log.Printf("Target: %d users, %d articles, up to %d comments each", *numUsers, *numArticles, *maxComments)
		res, err = s.Seed(ctx, seed.Options{
			Users:      *numUsers,
			Articles:   *numArticles,
			Comments:   *maxComments,
			BcryptCost: cfg.BcryptCost,
		})
	}
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d articles, %d comments", res.Users, res.Articles, res.Comments)
	if *fixture == "" {
		log.Printf("All generated users have the password: %s", seed.DefaultPassword)
	}
}
