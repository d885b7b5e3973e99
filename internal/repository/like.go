package repository

import (
	"context"
	"fmt"

	"vidtube/internal/models"
	"vidtube/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository stores likes on videos, comments and tweets.
type LikeRepository interface {
	Toggle(ctx context.Context, kind models.LikeTarget, targetID, userID uint) (bool, error)
	ListLikedVideos(ctx context.Context, userID uint, p pagination.Params) (pagination.Page[models.LikedVideo], error)
	DeleteByTarget(ctx context.Context, kind models.LikeTarget, targetID uint) error
	DeleteOnVideoComments(ctx context.Context, videoID uint) error
	DeleteOnOwnedTargets(ctx context.Context, kind models.LikeTarget, ownerID uint) error
	DeleteByUser(ctx context.Context, userID uint) error
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle removes the like if present, otherwise adds it, and reports whether
// the like exists afterwards. A concurrent duplicate insert is absorbed by
// the unique index and still reports true.
func (r *likeRepository) Toggle(ctx context.Context, kind models.LikeTarget, targetID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("target_kind = ? AND target_id = ? AND liked_by_id = ?", kind, targetID, userID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		return false, nil
	}

	like := models.Like{TargetKind: kind, TargetID: targetID, LikedByID: userID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return true, nil
}

// ListLikedVideos pages the published videos a user liked, most recent like
// first.
func (r *likeRepository) ListLikedVideos(ctx context.Context, userID uint, p pagination.Params) (pagination.Page[models.LikedVideo], error) {
	base := func() *gorm.DB {
		return readDB(r.db).WithContext(ctx).
			Table("likes l").
			Joins("JOIN videos v ON v.id = l.target_id").
			Joins(joinVideoOwner).
			Where("l.target_kind = ? AND l.liked_by_id = ? AND v.is_published = ?", models.LikeTargetVideo, userID, true)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return pagination.Page[models.LikedVideo]{}, models.NewInternalError(err)
	}

	var items []models.LikedVideo
	err := pagination.Apply(base().
		Select(videoSummaryColumns+", l.created_at AS liked_at").
		Order("l.created_at DESC, l.id DESC"), p).
		Scan(&items).Error
	if err != nil {
		return pagination.Page[models.LikedVideo]{}, models.NewInternalError(err)
	}
	return pagination.NewPage(items, total, p), nil
}

func (r *likeRepository) DeleteByTarget(ctx context.Context, kind models.LikeTarget, targetID uint) error {
	return r.db.WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Delete(&models.Like{}).Error
}

// DeleteOnVideoComments removes likes on every comment of a video. It must
// run before the comments themselves are deleted.
func (r *likeRepository) DeleteOnVideoComments(ctx context.Context, videoID uint) error {
	db := r.db.WithContext(ctx)
	commentIDs := db.Model(&models.Comment{}).Select("id").Where("video_id = ?", videoID)
	return db.Where("target_kind = ? AND target_id IN (?)", models.LikeTargetComment, commentIDs).
		Delete(&models.Like{}).Error
}

// DeleteOnOwnedTargets removes likes on every target of kind owned by ownerID.
func (r *likeRepository) DeleteOnOwnedTargets(ctx context.Context, kind models.LikeTarget, ownerID uint) error {
	var owned any
	switch kind {
	case models.LikeTargetVideo:
		owned = &models.Video{}
	case models.LikeTargetComment:
		owned = &models.Comment{}
	case models.LikeTargetTweet:
		owned = &models.Tweet{}
	default:
		return fmt.Errorf("unknown like target %q", kind)
	}
	db := r.db.WithContext(ctx)
	targetIDs := db.Model(owned).Select("id").Where("owner_id = ?", ownerID)
	return db.Where("target_kind = ? AND target_id IN (?)", kind, targetIDs).
		Delete(&models.Like{}).Error
}

func (r *likeRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("liked_by_id = ?", userID).Delete(&models.Like{}).Error
}
