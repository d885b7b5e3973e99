package seed

import (
	"fmt"
	"log"
	"slices"

	"vidtube/internal/database"
	"vidtube/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers      int
	VideosPerUser int
	ShouldClean   bool
	Factory       SeedOptions
}

// DemoUsernames are always created first so demo logins are predictable.
var DemoUsernames = []string{"alice", "bob", "carol"}

// Summary counts what a Seed run created.
type Summary struct {
	Users         int
	Videos        int
	Comments      int
	Likes         int
	Subscriptions int
	Tweets        int
	Playlists     int
}

// Seed populates the database with a connected set of channels: users with
// videos, and comments, likes, subscriptions, tweets, playlists and history
// between them.
func Seed(db *gorm.DB, opts Options) (*Summary, error) {
	if opts.NumUsers < len(DemoUsernames) {
		opts.NumUsers = len(DemoUsernames)
	}
	if opts.VideosPerUser <= 0 {
		opts.VideosPerUser = 3
	}
	log.Printf("Starting database seeding with %d users and %d videos each...", opts.NumUsers, opts.VideosPerUser)

	if opts.ShouldClean && !opts.Factory.DryRun {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	f := NewFactory(db, opts.Factory)
	sum := &Summary{}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		var override []func(*models.User)
		if i < len(DemoUsernames) {
			name := DemoUsernames[i]
			override = append(override, func(u *models.User) {
				u.Username = name
				u.Email = name + "@example.com"
			})
		}
		u, err := f.CreateUser(override...)
		if err != nil {
			return nil, fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	log.Printf("✓ %d users created", sum.Users)

	var published []*models.Video
	for _, u := range users {
		for j := 0; j < opts.VideosPerUser; j++ {
			v, err := f.CreateVideo(u)
			if err != nil {
				return nil, fmt.Errorf("failed to create videos: %w", err)
			}
			sum.Videos++
			if v.IsPublished {
				published = append(published, v)
			}
		}
	}
	log.Printf("✓ %d videos created (%d published)", sum.Videos, len(published))

	for i, u := range users {
		// Each user follows the next half of the ring, so counts differ per channel.
		for k := 1; k <= len(users)/2; k++ {
			channel := users[(i+k)%len(users)]
			if err := f.CreateSubscription(u, channel); err != nil {
				return nil, fmt.Errorf("failed to create subscriptions: %w", err)
			}
			sum.Subscriptions++
		}

		watched := sample(f, published, 5)
		for _, v := range watched {
			if err := f.AddToHistory(u, v); err != nil {
				return nil, fmt.Errorf("failed to record history: %w", err)
			}
			if f.rnd.Intn(2) == 0 {
				if err := f.CreateLike(u, models.LikeTargetVideo, v.ID); err != nil {
					return nil, fmt.Errorf("failed to create likes: %w", err)
				}
				sum.Likes++
			}
			if f.rnd.Intn(3) == 0 {
				if _, err := f.CreateComment(u, v); err != nil {
					return nil, fmt.Errorf("failed to create comments: %w", err)
				}
				sum.Comments++
			}
		}

		tweet, err := f.CreateTweet(u)
		if err != nil {
			return nil, fmt.Errorf("failed to create tweets: %w", err)
		}
		sum.Tweets++
		liker := users[(i+1)%len(users)]
		if err := f.CreateLike(liker, models.LikeTargetTweet, tweet.ID); err != nil {
			return nil, fmt.Errorf("failed to create likes: %w", err)
		}
		sum.Likes++

		if len(watched) > 0 {
			if _, err := f.CreatePlaylist(u, watched); err != nil {
				return nil, fmt.Errorf("failed to create playlists: %w", err)
			}
			sum.Playlists++
		}
	}

	log.Printf("✓ %d subscriptions, %d likes, %d comments, %d tweets, %d playlists",
		sum.Subscriptions, sum.Likes, sum.Comments, sum.Tweets, sum.Playlists)
	log.Println("Database seeding completed successfully")
	return sum, nil
}

// sample picks up to n distinct videos.
func sample(f *Factory, videos []*models.Video, n int) []*models.Video {
	if n > len(videos) {
		n = len(videos)
	}
	out := make([]*models.Video, 0, n)
	for _, idx := range f.rnd.Perm(len(videos))[:n] {
		out = append(out, videos[idx])
	}
	return out
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	if db.Dialector.Name() == "postgres" {
		sql := `TRUNCATE TABLE playlist_videos, playlists, watch_history_entries, password_reset_tickets,
			likes, comments, subscriptions, tweets, videos, users RESTART IDENTITY CASCADE;`
		return db.Exec(sql).Error
	}

	all := database.PersistentModels()
	slices.Reverse(all)
	for _, m := range all {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}
