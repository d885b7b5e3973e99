package models

import (
	"time"
)

// The structs below are read-only projections assembled by repository
// queries. Counts and flags are computed per request and never persisted.

// OwnerSummary is the public projection of a user embedded in other views.
type OwnerSummary struct {
	ID       uint       `json:"id"`
	Username string     `json:"username"`
	FullName string     `json:"fullName"`
	Avatar   MediaAsset `gorm:"embedded;embeddedPrefix:avatar_" json:"avatar"`
}

// ChannelOwner extends OwnerSummary with relationship data relative to a viewer.
type ChannelOwner struct {
	ID               uint       `json:"id"`
	Username         string     `json:"username"`
	FullName         string     `json:"fullName"`
	Avatar           MediaAsset `gorm:"embedded;embeddedPrefix:avatar_" json:"avatar"`
	SubscribersCount int64      `json:"subscribersCount"`
	IsSubscribed     bool       `json:"isSubscribed"`
}

// ChannelAbout is the public profile of a channel with aggregate stats.
type ChannelAbout struct {
	ID               uint       `json:"id"`
	Username         string     `json:"username"`
	FullName         string     `json:"fullName"`
	Bio              string     `json:"bio"`
	Avatar           MediaAsset `gorm:"embedded;embeddedPrefix:avatar_" json:"avatar"`
	CoverImage       MediaAsset `gorm:"embedded;embeddedPrefix:cover_image_" json:"coverImage"`
	CreatedAt        time.Time  `json:"createdAt"`
	SubscribersCount int64      `json:"subscribersCount"`
	VideosCount      int64      `json:"videosCount"`
	TotalVideoViews  int64      `json:"totalVideoViews"`
}

// VideoSummary is a list item for catalogs, searches and feeds.
type VideoSummary struct {
	ID            uint         `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	VideoFile     MediaAsset   `gorm:"embedded;embeddedPrefix:video_file_" json:"videoFile"`
	Thumbnail     MediaAsset   `gorm:"embedded;embeddedPrefix:thumbnail_" json:"thumbnail"`
	Duration      float64      `json:"duration"`
	Views         int64        `json:"views"`
	IsPublished   bool         `json:"isPublished"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	Owner         OwnerSummary `gorm:"embedded;embeddedPrefix:owner_" json:"owner"`
	LikesCount    int64        `json:"likesCount"`
	CommentsCount int64        `json:"commentsCount"`
}

// VideoDetail is the single-video page seen by a viewer.
type VideoDetail struct {
	ID            uint         `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	VideoFile     MediaAsset   `gorm:"embedded;embeddedPrefix:video_file_" json:"videoFile"`
	Thumbnail     MediaAsset   `gorm:"embedded;embeddedPrefix:thumbnail_" json:"thumbnail"`
	Duration      float64      `json:"duration"`
	Views         int64        `json:"views"`
	IsPublished   bool         `json:"isPublished"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	Owner         ChannelOwner `gorm:"embedded;embeddedPrefix:owner_" json:"owner"`
	LikesCount    int64        `json:"likesCount"`
	IsLiked       bool         `json:"isLiked"`
	CommentsCount int64        `json:"commentsCount"`
}

// LikedVideo is a video the viewer liked, flattened with the like time.
type LikedVideo struct {
	VideoSummary `gorm:"embedded"`
	LikedAt      time.Time `json:"likedAt"`
}

// WatchedVideo is a watch-history item.
type WatchedVideo struct {
	VideoSummary `gorm:"embedded"`
	WatchedAt    time.Time `json:"watchedAt"`
}

// SubscriberItem is one subscriber of a channel. SubscribedToSubscriber
// reports whether the channel subscribes back.
type SubscriberItem struct {
	ID                     uint       `json:"id"`
	Username               string     `json:"username"`
	FullName               string     `json:"fullName"`
	Avatar                 MediaAsset `gorm:"embedded;embeddedPrefix:avatar_" json:"avatar"`
	SubscribersCount       int64      `json:"subscribersCount"`
	SubscribedToSubscriber bool       `json:"subscribedToSubscriber"`
	SubscribedAt           time.Time  `json:"subscribedAt"`
}

// SubscribedChannelItem is one channel a user subscribes to.
type SubscribedChannelItem struct {
	ID               uint       `json:"id"`
	Username         string     `json:"username"`
	FullName         string     `json:"fullName"`
	Avatar           MediaAsset `gorm:"embedded;embeddedPrefix:avatar_" json:"avatar"`
	SubscribersCount int64      `json:"subscribersCount"`
	IsSubscribed     bool       `json:"isSubscribed"`
	SubscribedAt     time.Time  `json:"subscribedAt"`
}

// CommentView is a comment with engagement relative to a viewer.
type CommentView struct {
	ID              uint         `json:"id"`
	Content         string       `json:"content"`
	VideoID         uint         `json:"videoId"`
	ParentCommentID *uint        `json:"parentCommentId"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
	Owner           OwnerSummary `gorm:"embedded;embeddedPrefix:owner_" json:"owner"`
	LikesCount      int64        `json:"likesCount"`
	IsLiked         bool         `json:"isLiked"`
}

// TweetView is a tweet with engagement relative to a viewer.
type TweetView struct {
	ID         uint         `json:"id"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	Owner      OwnerSummary `gorm:"embedded;embeddedPrefix:owner_" json:"owner"`
	LikesCount int64        `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// PlaylistView is a playlist with aggregate stats over its published videos.
type PlaylistView struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Owner       OwnerSummary `gorm:"embedded;embeddedPrefix:owner_" json:"owner"`
	TotalVideos int64        `json:"totalVideos"`
	TotalViews  int64        `json:"totalViews"`
}

// PlaylistDetail is a playlist together with its visible videos in add order.
type PlaylistDetail struct {
	PlaylistView
	Videos []VideoSummary `json:"videos"`
}

// ChannelStats aggregates a channel owner's dashboard numbers.
type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalLikes       int64 `json:"totalLikes"`
}
