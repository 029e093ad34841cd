// Command seed fills the configured store with demo users, posts, likes and comments.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"agora/internal/bootstrap"
	"agora/internal/config"
	"agora/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.Users, "Number of users to create")
	numPosts := flag.Int("posts", defaults.Posts, "Number of posts to create")
	maxLikes := flag.Int("max-likes", defaults.MaxLikes, "Maximum likes per post")
	maxComments := flag.Int("max-comments", defaults.MaxComments, "Maximum comments per post")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = time based)")
	fixtures := flag.String("fixtures", "", "Load a YAML fixture file instead of generating data")
	flag.Parse()

	log.Println("🌱 Agora Seeder")
	log.Println("===============")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			log.Printf("Storage close error: %v", err)
		}
	}()

	s := seed.NewSeeder(rt.Users, rt.Posts, seed.Options{
		Users:       *numUsers,
		Posts:       *numPosts,
		MaxLikes:    *maxLikes,
		MaxComments: *maxComments,
		MaxDays:     defaults.MaxDays,
		RandSeed:    *randSeed,
	})

	var sum seed.Summary
	if *fixtures != "" {
		log.Printf("Applying fixtures from %s", *fixtures)
		fx, err := seed.LoadFixturesFile(*fixtures)
		if err != nil {
			log.Fatalf("❌ Failed to read fixtures: %v", err)
		}
		sum, err = s.ApplyFixtures(ctx, fx)
		if err != nil {
			log.Fatalf("❌ Fixture seeding failed: %v", err)
		}
	} else {
		log.Printf("Target: %d users, %d posts (driver=%s)", *numUsers, *numPosts, cfg.DBDriver)
		sum, err = s.Run(ctx)
		if err != nil {
			log.Fatalf("❌ Seeding failed: %v", err)
		}
	}

	log.Printf("✨ Created %d users, %d posts, %d likes, %d comments",
		sum.Users, sum.Posts, sum.Likes, sum.Comments)
}
