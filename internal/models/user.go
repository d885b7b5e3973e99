// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// MediaAsset is an opaque reference to an object held in external storage.
type MediaAsset struct {
	URL        string `gorm:"size:1024" json:"url"`
	ExternalID string `gorm:"size:255" json:"externalId"`
}

// IsZero reports whether the asset points at nothing.
func (m MediaAsset) IsZero() bool {
	return m.URL == "" && m.ExternalID == ""
}

// User represents a channel owner and viewer of the platform.
type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Username   string     `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email      string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password   string     `gorm:"not null" json:"-"`
	FullName   string     `gorm:"size:100;not null" json:"fullName"`
	Bio        string     `gorm:"type:text" json:"bio"`
	Avatar     MediaAsset `gorm:"embedded;embeddedPrefix:avatar_" json:"avatar"`
	CoverImage MediaAsset `gorm:"embedded;embeddedPrefix:cover_image_" json:"coverImage"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// WatchHistoryEntry records that a user opened a video. The pair is unique so
// the history behaves as an ordered set keyed by first watch.
type WatchHistoryEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_watch_history_user_video,priority:1" json:"userId"`
	VideoID   uint      `gorm:"not null;uniqueIndex:idx_watch_history_user_video,priority:2;index" json:"videoId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM
func (WatchHistoryEntry) TableName() string {
	return "watch_history_entries"
}

// PasswordResetTicket is a single-use one-time password issued for a user.
type PasswordResetTicket struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"userId"`
	OTP        string     `gorm:"size:6;not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null;index" json:"expiresAt"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Expired reports whether the ticket can no longer be redeemed at now.
func (t *PasswordResetTicket) Expired(now time.Time) bool {
	return t.ConsumedAt != nil || !now.Before(t.ExpiresAt)
}
