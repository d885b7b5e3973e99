// Command main runs the database seeder for VidTube.
package main

import (
	"flag"
	"log"

	"vidtube/internal/config"
	"vidtube/internal/database"
	"vidtube/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 25, "Number of users to create")
	videosPerUser := flag.Int("videos", 4, "Number of videos per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Log generated records without writing them")
	fast := flag.Bool("fast", false, "Hash passwords at minimum bcrypt cost")
	maxDays := flag.Int("days", 90, "Spread created_at over this many past days")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d users, %d videos each, clean=%v dry-run=%v\n", *numUsers, *videosPerUser, *shouldClean, *dryRun)

	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sum, err := seed.Seed(db, seed.Options{
		NumUsers:      *numUsers,
		VideosPerUser: *videosPerUser,
		ShouldClean:   *shouldClean,
		Factory: seed.SeedOptions{
			DryRun:   *dryRun,
			FastHash: *fast,
			MaxDays:  *maxDays,
		},
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("All done: %d users, %d videos, %d comments, %d likes", sum.Users, sum.Videos, sum.Comments, sum.Likes)
	log.Printf("Demo logins %v use the password: %s", seed.DemoUsernames, seed.DefaultPassword)
	_ = database.Close()
}
