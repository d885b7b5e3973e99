package models

import (
	"time"
)

// Video is a published (or draft) upload owned by a channel.
type Video struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	VideoFile   MediaAsset `gorm:"embedded;embeddedPrefix:video_file_" json:"videoFile"`
	Thumbnail   MediaAsset `gorm:"embedded;embeddedPrefix:thumbnail_" json:"thumbnail"`
	// Duration in seconds, known once the media has been ingested.
	Duration    float64   `gorm:"not null" json:"duration"`
	Views       int64     `gorm:"not null;default:0" json:"views"`
	IsPublished bool      `gorm:"not null;index:idx_videos_published_created,priority:1" json:"isPublished"`
	OwnerID     uint      `gorm:"not null;index" json:"ownerId"`
	CreatedAt   time.Time `gorm:"index:idx_videos_published_created,priority:2" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Tweet is a short text post on a channel.
type Tweet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	OwnerID   uint      `gorm:"not null;index" json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Playlist is an owner-curated, deduplicated list of videos.
type Playlist struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	OwnerID     uint      `gorm:"not null;index" json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistVideo is a playlist membership row. Insertion order is preserved by
// ID and the pair is unique.
type PlaylistVideo struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PlaylistID uint      `gorm:"not null;uniqueIndex:idx_playlist_video,priority:1" json:"playlistId"`
	VideoID    uint      `gorm:"not null;uniqueIndex:idx_playlist_video,priority:2;index" json:"videoId"`
	CreatedAt  time.Time `json:"createdAt"`
}
