// Command seed populates the database with demo data: users, groups,
// posts, comments and follow edges. Development use only.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/seed"
	"inkwell/internal/service"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "number of users to create")
	flag.IntVar(&opts.Groups, "groups", opts.Groups, "number of groups to create")
	flag.IntVar(&opts.PostsPerUser, "posts", opts.PostsPerUser, "posts per user")
	flag.IntVar(&opts.CommentsPerPost, "comments", opts.CommentsPerPost, "comments per post")
	flag.IntVar(&opts.FollowsPerUser, "follows", opts.FollowsPerUser, "follow edges per user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" || cfg.Env == "prod" {
		log.Fatal("refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	// Bust any cached index pages so the demo data shows up immediately.
	if client := cache.InitRedis(cfg.RedisURL); client != nil {
		pageCache := cache.New(client)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var total int64
		if err := db.Model(&models.Post{}).Count(&total).Error; err == nil {
			pages := int((total + service.IndexPageSize - 1) / service.IndexPageSize)
			for p := 1; p <= pages; p++ {
				pageCache.Invalidate(ctx, cache.IndexPageKey(p))
			}
		}
		_ = client.Close()
	}

	log.Println("Seeding complete")
}
