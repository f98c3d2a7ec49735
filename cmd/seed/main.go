package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"backend-driftline/internal/config"
	"backend-driftline/internal/db"
	"backend-driftline/internal/feed"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the database with fake users, profiles, posts, media rows and likes
// so a fresh environment has a browsable timeline.
func main() {
	users := flag.Int("users", 10, "number of users to create")
	posts := flag.Int("posts", 50, "number of posts to create")
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())

	cfg := config.Load()
	if cfg.PostgresURL == "" {
		log.Fatal("POSTGRES_URL is required")
	}

	pool, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash: %v", err)
	}

	userIDs := make([]string, 0, *users)
	for i := 0; i < *users; i++ {
		id := uuid.NewString()
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		if _, err := pool.Exec(ctx, `
			INSERT INTO users (id, email, username, password_hash)
			VALUES ($1,$2,$3,$4)
		`, id, gofakeit.Email(), username, string(hash)); err != nil {
			log.Fatalf("user %d: %v", i, err)
		}
		if _, err := pool.Exec(ctx, `
			INSERT INTO profiles (id, username, full_name, avatar_url, bio)
			VALUES ($1,$2,$3,$4,$5)
		`, id, username, gofakeit.Name(), gofakeit.ImageURL(200, 200), gofakeit.Sentence(8)); err != nil {
			log.Fatalf("profile %d: %v", i, err)
		}
		userIDs = append(userIDs, id)
	}
	log.Printf("seeded %d users", len(userIDs))

	postIDs := make([]string, 0, *posts)
	for i := 0; i < *posts; i++ {
		id := uuid.NewString()
		author := userIDs[gofakeit.Number(0, len(userIDs)-1)]
		createdAt := time.Now().Add(-time.Duration(gofakeit.Number(1, 60*24*30)) * time.Minute)
		if _, err := pool.Exec(ctx, `
			INSERT INTO posts (id, author_id, content, created_at)
			VALUES ($1,$2,$3,$4)
		`, id, author, gofakeit.Sentence(gofakeit.Number(5, 25)), createdAt); err != nil {
			log.Fatalf("post %d: %v", i, err)
		}
		postIDs = append(postIDs, id)

		for j := 0; j < gofakeit.Number(0, 3); j++ {
			url := gofakeit.ImageURL(800, 600)
			if _, err := pool.Exec(ctx, `
				INSERT INTO post_images (id, post_id, image_url, kind, order_index)
				VALUES ($1,$2,$3,$4,$5)
			`, uuid.NewString(), id, url, string(feed.KindImage), j); err != nil {
				log.Fatalf("post %d media %d: %v", i, j, err)
			}
		}
	}
	log.Printf("seeded %d posts", len(postIDs))

	likes := 0
	for _, postID := range postIDs {
		for _, userID := range userIDs {
			if gofakeit.Bool() {
				continue
			}
			if _, err := pool.Exec(ctx, `
				INSERT INTO likes (post_id, user_id)
				VALUES ($1,$2)
				ON CONFLICT DO NOTHING
			`, postID, userID); err != nil {
				log.Fatalf("like: %v", err)
			}
			likes++
		}
	}
	log.Printf("seeded %d likes", likes)
}
