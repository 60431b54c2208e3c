// Command main runs the database seeder for socialnet.
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"socialnet/internal/config"
	"socialnet/internal/database"
	"socialnet/internal/seed"
)

func main() {
	preset := flag.String("preset", "small", "Built-in preset ("+strings.Join(seed.PresetNames(), ", ")+") or path to a YAML preset")
	numUsers := flag.Int("users", 0, "Override the preset's number of users")
	postsPerUser := flag.Int("posts", 0, "Override the preset's posts per user")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	flag.Parse()

	opts, err := seed.ResolvePreset(*preset)
	if err != nil {
		log.Fatalf("Failed to load preset: %v", err)
	}
	if *numUsers > 0 {
		opts.Users = *numUsers
	}
	if *postsPerUser > 0 {
		opts.PostsPerUser = *postsPerUser
	}
	opts.Clean = opts.Clean || *shouldClean

	log.Println("Database Seeder")
	log.Printf("Preset %s: %d users, %d posts each, clean=%v", *preset, opts.Users, opts.PostsPerUser, opts.Clean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	ctx := context.Background()
	s, err := seed.NewSeeder(db, opts)
	if err != nil {
		log.Fatalf("Invalid seed options: %v", err)
	}

	if opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	summary, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d posts, %d comments, %d follows, %d likes",
		summary.Users, summary.Posts, summary.Comments, summary.Follows, summary.Likes)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
