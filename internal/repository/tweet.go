package repository

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/pagination"

	"gorm.io/gorm"
)

// TweetRepository stores channel text posts.
type TweetRepository interface {
	Create(ctx context.Context, tweet *models.Tweet) error
	GetByID(ctx context.Context, id uint) (*models.Tweet, error)
	ListByOwner(ctx context.Context, ownerID, viewerID uint, p pagination.Params) (pagination.Page[models.TweetView], error)
	UpdateContent(ctx context.Context, id uint, content string) error
	Delete(ctx context.Context, id uint) error
	DeleteByOwner(ctx context.Context, ownerID uint) error
}

type tweetRepository struct {
	db *gorm.DB
}

// NewTweetRepository creates a new TweetRepository
func NewTweetRepository(db *gorm.DB) TweetRepository {
	return &tweetRepository{db: db}
}

func (r *tweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	if err := r.db.WithContext(ctx).Create(tweet).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tweetRepository) GetByID(ctx context.Context, id uint) (*models.Tweet, error) {
	var tweet models.Tweet
	if err := r.db.WithContext(ctx).First(&tweet, id).Error; err != nil {
		return nil, notFoundOr(err, "Tweet", id)
	}
	return &tweet, nil
}

// ListByOwner loads every tweet of a user, newest first, and windows it in
// memory.
func (r *tweetRepository) ListByOwner(ctx context.Context, ownerID, viewerID uint, p pagination.Params) (pagination.Page[models.TweetView], error) {
	var items []models.TweetView
	err := readDB(r.db).WithContext(ctx).
		Table("tweets t").
		Joins("JOIN users u ON u.id = t.owner_id").
		Select("t.id, t.content, t.created_at, t.updated_at, "+ownerColumns+", "+
			"(SELECT COUNT(*) FROM likes tl WHERE tl.target_kind = 'tweet' AND tl.target_id = t.id) AS likes_count, "+
			"EXISTS(SELECT 1 FROM likes ml WHERE ml.target_kind = 'tweet' AND ml.target_id = t.id AND ml.liked_by_id = ?) AS is_liked",
			viewerID).
		Where("t.owner_id = ?", ownerID).
		Order("t.created_at DESC, t.id DESC").
		Scan(&items).Error
	if err != nil {
		return pagination.Page[models.TweetView]{}, models.NewInternalError(err)
	}
	return pagination.Window(items, p), nil
}

func (r *tweetRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	res := r.db.WithContext(ctx).Model(&models.Tweet{ID: id}).Update("content", content)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Tweet", id)
	}
	return nil
}

func (r *tweetRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Tweet{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Tweet", id)
	}
	return nil
}

func (r *tweetRepository) DeleteByOwner(ctx context.Context, ownerID uint) error {
	return r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.Tweet{}).Error
}
