package repository

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaylistRepository stores playlists and their memberships.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	GetByID(ctx context.Context, id uint) (*models.Playlist, error)
	Update(ctx context.Context, playlist *models.Playlist) error
	Delete(ctx context.Context, id uint) error
	DeleteByOwner(ctx context.Context, ownerID uint) error

	GetView(ctx context.Context, id uint) (*models.PlaylistView, error)
	ListVideos(ctx context.Context, playlistID uint) ([]models.VideoSummary, error)
	ListByOwner(ctx context.Context, ownerID uint, p pagination.Params) (pagination.Page[models.PlaylistView], error)

	AddVideo(ctx context.Context, playlistID, videoID uint) error
	RemoveVideo(ctx context.Context, playlistID, videoID uint) error
	RemoveVideoEverywhere(ctx context.Context, videoID uint) error
}

type playlistRepository struct {
	db *gorm.DB
}

// NewPlaylistRepository creates a new PlaylistRepository
func NewPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &playlistRepository{db: db}
}

func (r *playlistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	if err := r.db.WithContext(ctx).Create(playlist).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *playlistRepository) GetByID(ctx context.Context, id uint) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := r.db.WithContext(ctx).First(&playlist, id).Error; err != nil {
		return nil, notFoundOr(err, "Playlist", id)
	}
	return &playlist, nil
}

func (r *playlistRepository) Update(ctx context.Context, playlist *models.Playlist) error {
	res := r.db.WithContext(ctx).Model(&models.Playlist{ID: playlist.ID}).
		Select("name", "description").
		Updates(playlist)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Playlist", playlist.ID)
	}
	return nil
}

// Delete removes the playlist together with its memberships.
func (r *playlistRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", id).Delete(&models.PlaylistVideo{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Delete(&models.Playlist{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Playlist", id)
		}
		return nil
	})
}

func (r *playlistRepository) DeleteByOwner(ctx context.Context, ownerID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Playlist{}).Select("id").Where("owner_id = ?", ownerID)
		if err := tx.Where("playlist_id IN (?)", owned).Delete(&models.PlaylistVideo{}).Error; err != nil {
			return err
		}
		return tx.Where("owner_id = ?", ownerID).Delete(&models.Playlist{}).Error
	})
}

const publishedMembers = "FROM playlist_videos pv JOIN videos v ON v.id = pv.video_id WHERE pv.playlist_id = p.id AND v.is_published = ?"

func (r *playlistRepository) viewQuery(db *gorm.DB) *gorm.DB {
	return db.Table("playlists p").
		Joins("JOIN users u ON u.id = p.owner_id").
		Select("p.id, p.name, p.description, p.created_at, p.updated_at, "+ownerColumns+", "+
			"(SELECT COUNT(*) "+publishedMembers+") AS total_videos, "+
			"(SELECT CAST(COALESCE(SUM(v.views), 0) AS BIGINT) "+publishedMembers+") AS total_views",
			true, true)
}

// GetView composes a playlist with totals over its published videos.
func (r *playlistRepository) GetView(ctx context.Context, id uint) (*models.PlaylistView, error) {
	var view models.PlaylistView
	res := r.viewQuery(readDB(r.db).WithContext(ctx)).Where("p.id = ?", id).Limit(1).Scan(&view)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Playlist", id)
	}
	return &view, nil
}

// ListVideos returns the published members of a playlist in the order they
// were added.
func (r *playlistRepository) ListVideos(ctx context.Context, playlistID uint) ([]models.VideoSummary, error) {
	items := []models.VideoSummary{}
	err := readDB(r.db).WithContext(ctx).
		Table("playlist_videos pv").
		Joins("JOIN videos v ON v.id = pv.video_id").
		Joins(joinVideoOwner).
		Select(videoSummaryColumns).
		Where("pv.playlist_id = ? AND v.is_published = ?", playlistID, true).
		Order("pv.id ASC").
		Scan(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *playlistRepository) ListByOwner(ctx context.Context, ownerID uint, p pagination.Params) (pagination.Page[models.PlaylistView], error) {
	db := readDB(r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Playlist{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return pagination.Page[models.PlaylistView]{}, models.NewInternalError(err)
	}

	var items []models.PlaylistView
	err := pagination.Apply(r.viewQuery(db).
		Where("p.owner_id = ?", ownerID).
		Order("p.created_at DESC, p.id DESC"), p).
		Scan(&items).Error
	if err != nil {
		return pagination.Page[models.PlaylistView]{}, models.NewInternalError(err)
	}
	return pagination.NewPage(items, total, p), nil
}

// AddVideo is idempotent: adding a member twice keeps its original position.
func (r *playlistRepository) AddVideo(ctx context.Context, playlistID, videoID uint) error {
	member := models.PlaylistVideo{PlaylistID: playlistID, VideoID: videoID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *playlistRepository) RemoveVideo(ctx context.Context, playlistID, videoID uint) error {
	err := r.db.WithContext(ctx).
		Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
		Delete(&models.PlaylistVideo{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *playlistRepository) RemoveVideoEverywhere(ctx context.Context, videoID uint) error {
	return r.db.WithContext(ctx).Where("video_id = ?", videoID).Delete(&models.PlaylistVideo{}).Error
}
