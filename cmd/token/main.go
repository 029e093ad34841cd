// Command token mints or revokes development bearer tokens.
//
// Mint a token for an existing user:
//
//	go run ./cmd/token -user 5f1d7c0e9b1e8a3f2c4d6e8a
//
// Create a user and mint a token for it:
//
//	go run ./cmd/token -create -name "Ada" -email ada@example.com
//
// Revoke a token (needs Redis):
//
//	go run ./cmd/token -revoke <jwt>
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"agora/internal/auth"
	"agora/internal/bootstrap"
	"agora/internal/config"
	"agora/internal/models"
)

func main() {
	userID := flag.String("user", "", "User id to mint a token for")
	create := flag.Bool("create", false, "Create a new user before minting")
	name := flag.String("name", "", "Name for -create")
	email := flag.String("email", "", "Email for -create")
	avatar := flag.String("avatar", "", "Avatar URL for -create")
	ttl := flag.Duration("ttl", auth.DefaultTTL, "Token lifetime")
	revoke := flag.String("revoke", "", "Revoke this token instead of minting one")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer func() { _ = rt.Close(context.Background()) }()

	tokens := auth.NewTokenService(cfg, rt.Redis)

	if *revoke != "" {
		claims, err := tokens.Parse(ctx, *revoke)
		if err != nil {
			log.Fatalf("Cannot revoke: %v", err)
		}
		if err := tokens.Revoke(ctx, claims); err != nil {
			log.Fatalf("Revoke failed: %v", err)
		}
		log.Printf("Revoked token %s for user %s", claims.ID, claims.Subject)
		return
	}

	id := *userID
	switch {
	case *create:
		if *name == "" || *email == "" {
			log.Fatal("-create needs -name and -email")
		}
		u := &models.User{
			ID:     models.NewID(),
			Name:   *name,
			Email:  *email,
			Avatar: *avatar,
			Date:   time.Now().UTC(),
		}
		if err := rt.Users.Create(ctx, u); err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		log.Printf("Created user %s <%s> with id %s", u.Name, u.Email, u.ID)
		id = u.ID
	case id == "":
		log.Fatal("one of -user, -create or -revoke is required")
	default:
		if _, err := rt.Users.GetByID(ctx, id); err != nil {
			log.Printf("Warning: user %s not found (%v); requests with this token will be rejected", id, err)
		}
	}

	token, err := tokens.Issue(id, *ttl)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
