package models

import (
	"time"
)

// Comment is a remark on a video, optionally replying to another comment on
// the same video.
type Comment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	VideoID         uint      `gorm:"not null;index:idx_comments_video_created,priority:1" json:"videoId"`
	OwnerID         uint      `gorm:"not null;index" json:"ownerId"`
	ParentCommentID *uint     `gorm:"index" json:"parentCommentId"`
	CreatedAt       time.Time `gorm:"index:idx_comments_video_created,priority:2" json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// LikeTarget discriminates what a Like points at.
type LikeTarget string

const (
	// LikeTargetVideo marks a like on a video.
	LikeTargetVideo LikeTarget = "video"
	// LikeTargetComment marks a like on a comment.
	LikeTargetComment LikeTarget = "comment"
	// LikeTargetTweet marks a like on a tweet.
	LikeTargetTweet LikeTarget = "tweet"
)

// Valid reports whether t is one of the known targets.
func (t LikeTarget) Valid() bool {
	switch t {
	case LikeTargetVideo, LikeTargetComment, LikeTargetTweet:
		return true
	}
	return false
}

// Like is a user's like on exactly one target.
// The combination of TargetKind, TargetID and LikedByID must be unique.
type Like struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TargetKind LikeTarget `gorm:"type:varchar(16);not null;uniqueIndex:idx_like_target_actor,priority:1" json:"targetKind"`
	TargetID   uint       `gorm:"not null;uniqueIndex:idx_like_target_actor,priority:2" json:"targetId"`
	LikedByID  uint       `gorm:"not null;uniqueIndex:idx_like_target_actor,priority:3;index:idx_likes_actor_kind,priority:1" json:"likedById"`
	CreatedAt  time.Time  `gorm:"index:idx_likes_actor_kind,priority:2" json:"createdAt"`
}

// Subscription links a subscriber to a channel. Each pair exists at most once.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"not null;uniqueIndex:idx_subscriber_channel,priority:1" json:"subscriberId"`
	ChannelID    uint      `gorm:"not null;uniqueIndex:idx_subscriber_channel,priority:2;index" json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}
