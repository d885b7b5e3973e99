package repository

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/pagination"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	GetView(ctx context.Context, id, viewerID uint) (*models.CommentView, error)
	ListByVideo(ctx context.Context, videoID, viewerID uint, p pagination.Params) (pagination.Page[models.CommentView], error)
	UpdateContent(ctx context.Context, id uint, content string) error
	Delete(ctx context.Context, id uint) error
	DeleteByVideo(ctx context.Context, videoID uint) error
	DeleteByOwner(ctx context.Context, ownerID uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) viewQuery(db *gorm.DB, viewerID uint) *gorm.DB {
	return db.Table("comments c").
		Joins("JOIN users u ON u.id = c.owner_id").
		Select("c.id, c.content, c.video_id, c.parent_comment_id, c.created_at, c.updated_at, "+ownerColumns+", "+
			"(SELECT COUNT(*) FROM likes cl WHERE cl.target_kind = 'comment' AND cl.target_id = c.id) AS likes_count, "+
			"EXISTS(SELECT 1 FROM likes ml WHERE ml.target_kind = 'comment' AND ml.target_id = c.id AND ml.liked_by_id = ?) AS is_liked",
			viewerID)
}

// GetView composes a single comment as seen by viewerID.
func (r *commentRepository) GetView(ctx context.Context, id, viewerID uint) (*models.CommentView, error) {
	var view models.CommentView
	res := r.viewQuery(r.db.WithContext(ctx), viewerID).Where("c.id = ?", id).Limit(1).Scan(&view)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return &view, nil
}

// ListByVideo pages a video's comments, newest first.
func (r *commentRepository) ListByVideo(ctx context.Context, videoID, viewerID uint, p pagination.Params) (pagination.Page[models.CommentView], error) {
	db := readDB(r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Comment{}).Where("video_id = ?", videoID).Count(&total).Error; err != nil {
		return pagination.Page[models.CommentView]{}, models.NewInternalError(err)
	}

	var items []models.CommentView
	err := pagination.Apply(r.viewQuery(db, viewerID).
		Where("c.video_id = ?", videoID).
		Order("c.created_at DESC, c.id DESC"), p).
		Scan(&items).Error
	if err != nil {
		return pagination.Page[models.CommentView]{}, models.NewInternalError(err)
	}
	return pagination.NewPage(items, total, p), nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{ID: id}).Update("content", content)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) DeleteByVideo(ctx context.Context, videoID uint) error {
	return r.db.WithContext(ctx).Where("video_id = ?", videoID).Delete(&models.Comment{}).Error
}

func (r *commentRepository) DeleteByOwner(ctx context.Context, ownerID uint) error {
	return r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.Comment{}).Error
}
