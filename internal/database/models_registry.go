package database

import "vidtube/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.Video{},
		&models.Comment{},
		&models.Like{},
		&models.Subscription{},
		&models.Tweet{},
		&models.Playlist{},
		&models.PlaylistVideo{},
		&models.WatchHistoryEntry{},
		&models.PasswordResetTicket{},
	}
}
