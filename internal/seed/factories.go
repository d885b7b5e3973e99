// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"vidtube/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password of every seeded account.
const DefaultPassword = "password123"

// SeedOptions tunes how a Factory builds records.
type SeedOptions struct {
	// DryRun assigns synthetic IDs and logs instead of writing.
	DryRun bool
	// FastHash hashes passwords at bcrypt.MinCost.
	FastHash bool
	// MaxDays bounds how far back created_at timestamps are spread.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	rnd  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
	// cached hash of DefaultPassword
	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, opts: opts, rnd: rand.New(rand.NewSource(seed)), nextID: 1000}
}

func (f *Factory) password() (string, error) {
	if f.passwordHash != "" {
		return f.passwordHash, nil
	}
	cost := bcrypt.DefaultCost
	if f.opts.FastHash {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return "", err
	}
	f.passwordHash = string(hash)
	return f.passwordHash, nil
}

// pastTime returns a realistic created_at within the configured window.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rnd.Intn(maxDays)
	hoursBack := f.rnd.Intn(24)
	minsBack := f.rnd.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

func (f *Factory) asset(kind, ext string) models.MediaAsset {
	id := gofakeit.UUID()
	return models.MediaAsset{
		URL:        fmt.Sprintf("https://picsum.photos/seed/%s/%s.%s", id, kind, ext),
		ExternalID: fmt.Sprintf("%s/%s", kind, id),
	}
}

func (f *Factory) create(kind string, value any, id *uint) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		log.Printf("[dry-run] Create%s: %+v", kind, value)
		return nil
	}
	return f.db.Create(value).Error
}

// BuildUser constructs a user with valid, unique-looking fields but does not
// persist it.
func (f *Factory) BuildUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.password()
	if err != nil {
		return nil, err
	}
	username := strings.ToLower(gofakeit.Username())
	username = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, username)
	if len(username) > 24 {
		username = username[:24]
	}
	username = fmt.Sprintf("%s%d", username, gofakeit.Number(100, 99999))

	user := &models.User{
		Username:   username,
		Email:      username + "@example.com",
		Password:   hash,
		FullName:   gofakeit.Name(),
		Bio:        gofakeit.Sentence(10),
		Avatar:     f.asset("avatars", "png"),
		CoverImage: f.asset("covers", "jpg"),
		CreatedAt:  f.pastTime(),
	}
	for _, override := range overrides {
		override(user)
	}
	return user, nil
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser(overrides...)
	if err != nil {
		return nil, err
	}
	if err := f.create("User", user, &user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateVideo persists a published video owned by owner.
func (f *Factory) CreateVideo(owner *models.User, overrides ...func(*models.Video)) (*models.Video, error) {
	video := &models.Video{
		Title:       strings.TrimSuffix(gofakeit.Sentence(5), "."),
		Description: gofakeit.Paragraph(1, 3, 8, "\n"),
		VideoFile:   f.asset("videos", "mp4"),
		Thumbnail:   f.asset("thumbnails", "jpg"),
		Duration:    float64(gofakeit.Number(15, 3600)),
		Views:       int64(f.rnd.Intn(5000)),
		IsPublished: f.rnd.Intn(10) > 0,
		OwnerID:     owner.ID,
		CreatedAt:   f.pastTime(),
	}
	for _, override := range overrides {
		override(video)
	}
	if err := f.create("Video", video, &video.ID); err != nil {
		return nil, err
	}
	return video, nil
}

// CreateComment persists a top-level comment by author on video.
func (f *Factory) CreateComment(author *models.User, video *models.Video, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(gofakeit.Number(4, 20)),
		VideoID: video.ID,
		OwnerID: author.ID,
	}
	for _, override := range overrides {
		override(comment)
	}
	if err := f.create("Comment", comment, &comment.ID); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike records user liking a target.
func (f *Factory) CreateLike(user *models.User, kind models.LikeTarget, targetID uint) error {
	like := &models.Like{TargetKind: kind, TargetID: targetID, LikedByID: user.ID}
	return f.create("Like", like, &like.ID)
}

// CreateSubscription records subscriber following channel.
func (f *Factory) CreateSubscription(subscriber, channel *models.User) error {
	sub := &models.Subscription{SubscriberID: subscriber.ID, ChannelID: channel.ID}
	return f.create("Subscription", sub, &sub.ID)
}

// CreateTweet persists a short text post by owner.
func (f *Factory) CreateTweet(owner *models.User) (*models.Tweet, error) {
	tweet := &models.Tweet{Content: gofakeit.Sentence(gofakeit.Number(6, 25)), OwnerID: owner.ID}
	if err := f.create("Tweet", tweet, &tweet.ID); err != nil {
		return nil, err
	}
	return tweet, nil
}

// CreatePlaylist persists a playlist holding videos in the given order.
func (f *Factory) CreatePlaylist(owner *models.User, videos []*models.Video) (*models.Playlist, error) {
	playlist := &models.Playlist{
		Name:        strings.Title(gofakeit.HipsterWord()) + " " + gofakeit.Noun(), //nolint:staticcheck // ASCII words only
		Description: gofakeit.Sentence(8),
		OwnerID:     owner.ID,
	}
	if err := f.create("Playlist", playlist, &playlist.ID); err != nil {
		return nil, err
	}
	for _, v := range videos {
		entry := &models.PlaylistVideo{PlaylistID: playlist.ID, VideoID: v.ID}
		if err := f.create("PlaylistVideo", entry, &entry.ID); err != nil {
			return nil, err
		}
	}
	return playlist, nil
}

// AddToHistory records user having watched video.
func (f *Factory) AddToHistory(user *models.User, video *models.Video) error {
	entry := &models.WatchHistoryEntry{UserID: user.ID, VideoID: video.ID}
	return f.create("WatchHistoryEntry", entry, &entry.ID)
}
