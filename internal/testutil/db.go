// Package testutil provides shared fixtures for tests that need a database.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"vidtube/internal/database"
	"vidtube/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database with every persistent
// model migrated. A single connection keeps the in-memory database alive.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := database.GormConfig()
	cfg.Logger = logger.Discard
	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

var seq atomic.Uint64

func next() uint64 {
	return seq.Add(1)
}

// CreateUser inserts a user with a unique username and email.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	if username == "" {
		username = fmt.Sprintf("user%d", next())
	}
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BQ5.6s4Ni0DWH.6y2rW3MbrOvXxW",
		FullName: "User " + username,
		Avatar:   models.MediaAsset{URL: "https://cdn.example.com/" + username + ".png", ExternalID: "avatars/" + username},
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// VideoOption customizes CreateVideo.
type VideoOption func(*models.Video)

// Unpublished marks the video as a draft.
func Unpublished() VideoOption {
	return func(v *models.Video) { v.IsPublished = false }
}

// WithViews sets the stored view count.
func WithViews(n int64) VideoOption {
	return func(v *models.Video) { v.Views = n }
}

// WithTitle sets the title.
func WithTitle(title string) VideoOption {
	return func(v *models.Video) { v.Title = title }
}

// CreatedAt pins the creation time.
func CreatedAt(ts time.Time) VideoOption {
	return func(v *models.Video) { v.CreatedAt = ts }
}

// CreateVideo inserts a published video owned by ownerID.
func CreateVideo(t *testing.T, db *gorm.DB, ownerID uint, opts ...VideoOption) *models.Video {
	t.Helper()
	n := next()
	v := &models.Video{
		Title:       fmt.Sprintf("Video %d", n),
		Description: "description",
		VideoFile:   models.MediaAsset{URL: fmt.Sprintf("https://cdn.example.com/v%d.mp4", n), ExternalID: fmt.Sprintf("videos/v%d", n)},
		Thumbnail:   models.MediaAsset{URL: fmt.Sprintf("https://cdn.example.com/t%d.png", n), ExternalID: fmt.Sprintf("thumbs/t%d", n)},
		Duration:    60,
		IsPublished: true,
		OwnerID:     ownerID,
	}
	for _, opt := range opts {
		opt(v)
	}
	require.NoError(t, db.Create(v).Error)
	return v
}

// Subscribe records subscriberID following channelID.
func Subscribe(t *testing.T, db *gorm.DB, subscriberID, channelID uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.Subscription{SubscriberID: subscriberID, ChannelID: channelID}).Error)
}

// Like records userID liking a target.
func Like(t *testing.T, db *gorm.DB, kind models.LikeTarget, targetID, userID uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.Like{TargetKind: kind, TargetID: targetID, LikedByID: userID}).Error)
}

// CreateComment inserts a comment on videoID.
func CreateComment(t *testing.T, db *gorm.DB, videoID, ownerID uint, content string) *models.Comment {
	t.Helper()
	c := &models.Comment{VideoID: videoID, OwnerID: ownerID, Content: content}
	require.NoError(t, db.Create(c).Error)
	return c
}
