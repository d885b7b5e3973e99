// Package repository implements the data access layer for the application.
package repository

import (
	"errors"

	"vidtube/internal/database"
	"vidtube/internal/models"

	"gorm.io/gorm"
)

// readDB routes list and view reads to the replica when one is configured.
func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

// notFoundOr maps a missing row onto NotFound and anything else onto Internal.
func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// Projections shared by the view queries. Table aliases: u for the owning
// user, v for videos.
const (
	ownerColumns = "u.id AS owner_id, u.username AS owner_username, u.full_name AS owner_full_name, " +
		"u.avatar_url AS owner_avatar_url, u.avatar_external_id AS owner_avatar_external_id"

	videoColumns = "v.id, v.title, v.description, v.video_file_url, v.video_file_external_id, " +
		"v.thumbnail_url, v.thumbnail_external_id, v.duration, v.views, v.is_published, v.created_at, v.updated_at"

	videoCountColumns = "(SELECT COUNT(*) FROM likes vl WHERE vl.target_kind = 'video' AND vl.target_id = v.id) AS likes_count, " +
		"(SELECT COUNT(*) FROM comments vc WHERE vc.video_id = v.id) AS comments_count"

	videoSummaryColumns = videoColumns + ", " + ownerColumns + ", " + videoCountColumns

	joinVideoOwner = "JOIN users u ON u.id = v.owner_id"

	subscribersCountColumn = "(SELECT COUNT(*) FROM subscriptions cs WHERE cs.channel_id = u.id) AS subscribers_count"
)
