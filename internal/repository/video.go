package repository

import (
	"context"
	"strings"

	"vidtube/internal/cache"
	"vidtube/internal/models"
	"vidtube/internal/pagination"

	"gorm.io/gorm"
)

// VideoQuery filters and orders a catalog listing.
type VideoQuery struct {
	OwnerID            uint
	Query              string
	SortBy             string
	SortType           string
	IncludeUnpublished bool
	Page               pagination.Params
}

// VideoRepository defines persistence operations and view queries for videos.
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id uint) (*models.Video, error)
	Update(ctx context.Context, video *models.Video) error
	SetPublished(ctx context.Context, id uint, published bool) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Video, error)

	GetDetail(ctx context.Context, id, viewerID uint) (*models.VideoDetail, error)
	List(ctx context.Context, q VideoQuery) (pagination.Page[models.VideoSummary], error)
	Search(ctx context.Context, query string, p pagination.Params) (pagination.Page[models.VideoSummary], error)
	ListAllByOwner(ctx context.Context, ownerID uint) ([]models.VideoSummary, error)
	ChannelStats(ctx context.Context, ownerID uint) (*models.ChannelStats, error)
}

type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID returns the stored row regardless of publish state. Callers decide
// visibility.
func (r *videoRepository) GetByID(ctx context.Context, id uint) (*models.Video, error) {
	var video models.Video
	err := cache.Aside(ctx, cache.VideoKey(id), &video, cache.VideoTTL, func() error {
		if err := r.db.WithContext(ctx).First(&video, id).Error; err != nil {
			return notFoundOr(err, "Video", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// Update writes the editable metadata columns.
func (r *videoRepository) Update(ctx context.Context, video *models.Video) error {
	res := r.db.WithContext(ctx).Model(&models.Video{ID: video.ID}).
		Select("title", "description", "thumbnail_url", "thumbnail_external_id").
		Updates(video)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Video", video.ID)
	}
	cache.InvalidateVideo(ctx, video.ID)
	return nil
}

func (r *videoRepository) SetPublished(ctx context.Context, id uint, published bool) error {
	res := r.db.WithContext(ctx).Model(&models.Video{ID: id}).Update("is_published", published)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Video", id)
	}
	cache.InvalidateVideo(ctx, id)
	return nil
}

func (r *videoRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Video{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Video", id)
	}
	cache.InvalidateVideo(ctx, id)
	return nil
}

// IncrementViews bumps the counter in a single statement so concurrent
// viewers never lose an increment.
func (r *videoRepository) IncrementViews(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Video{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Video", id)
	}
	return nil
}

func (r *videoRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Video, error) {
	var videos []models.Video
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&videos).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return videos, nil
}

// GetDetail composes the single-video view for viewerID (0 for anonymous).
// It reads the primary so a just-applied view increment is visible.
func (r *videoRepository) GetDetail(ctx context.Context, id, viewerID uint) (*models.VideoDetail, error) {
	var detail models.VideoDetail
	res := r.db.WithContext(ctx).
		Table("videos v").
		Joins(joinVideoOwner).
		Select(videoColumns+", "+ownerColumns+", "+
			"(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS owner_subscribers_count, "+
			"EXISTS(SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = ?) AS owner_is_subscribed, "+
			videoCountColumns+", "+
			"EXISTS(SELECT 1 FROM likes l WHERE l.target_kind = 'video' AND l.target_id = v.id AND l.liked_by_id = ?) AS is_liked",
			viewerID, viewerID).
		Where("v.id = ? AND v.is_published = ?", id, true).
		Limit(1).
		Scan(&detail)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Video", id)
	}
	return &detail, nil
}

var videoSortColumns = map[string]string{
	"createdAt": "v.created_at",
	"views":     "v.views",
	"duration":  "v.duration",
	"title":     "v.title",
}

// videoOrder resolves sortBy and sortType, falling back to newest first.
// The id tiebreak runs in the same direction.
func videoOrder(sortBy, sortType string) string {
	column, ok := videoSortColumns[sortBy]
	if !ok {
		column = videoSortColumns["createdAt"]
	}
	dir := "DESC"
	if strings.EqualFold(sortType, "asc") {
		dir = "ASC"
	}
	return column + " " + dir + ", v.id " + dir
}

// likePattern builds a case-insensitive substring pattern with LIKE
// metacharacters escaped.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(q))) + "%"
}

const titleMatches = `LOWER(v.title) LIKE ? ESCAPE '\'`

func (r *videoRepository) List(ctx context.Context, q VideoQuery) (pagination.Page[models.VideoSummary], error) {
	base := func() *gorm.DB {
		db := readDB(r.db).WithContext(ctx).Table("videos v").Joins(joinVideoOwner)
		if !q.IncludeUnpublished {
			db = db.Where("v.is_published = ?", true)
		}
		if q.OwnerID != 0 {
			db = db.Where("v.owner_id = ?", q.OwnerID)
		}
		if strings.TrimSpace(q.Query) != "" {
			db = db.Where(titleMatches, likePattern(q.Query))
		}
		return db
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return pagination.Page[models.VideoSummary]{}, models.NewInternalError(err)
	}

	var items []models.VideoSummary
	err := pagination.Apply(base().
		Select(videoSummaryColumns).
		Order(videoOrder(q.SortBy, q.SortType)), q.Page).
		Scan(&items).Error
	if err != nil {
		return pagination.Page[models.VideoSummary]{}, models.NewInternalError(err)
	}
	return pagination.NewPage(items, total, q.Page), nil
}

// Search materializes every published title match, newest first, and windows
// the result in memory.
func (r *videoRepository) Search(ctx context.Context, query string, p pagination.Params) (pagination.Page[models.VideoSummary], error) {
	var items []models.VideoSummary
	err := readDB(r.db).WithContext(ctx).
		Table("videos v").
		Joins(joinVideoOwner).
		Select(videoSummaryColumns).
		Where("v.is_published = ?", true).
		Where(titleMatches, likePattern(query)).
		Order("v.created_at DESC, v.id DESC").
		Scan(&items).Error
	if err != nil {
		return pagination.Page[models.VideoSummary]{}, models.NewInternalError(err)
	}
	return pagination.Window(items, p), nil
}

// ListAllByOwner returns every video of an owner, drafts included.
func (r *videoRepository) ListAllByOwner(ctx context.Context, ownerID uint) ([]models.VideoSummary, error) {
	items := []models.VideoSummary{}
	err := readDB(r.db).WithContext(ctx).
		Table("videos v").
		Joins(joinVideoOwner).
		Select(videoSummaryColumns).
		Where("v.owner_id = ?", ownerID).
		Order("v.created_at DESC, v.id DESC").
		Scan(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *videoRepository) ChannelStats(ctx context.Context, ownerID uint) (*models.ChannelStats, error) {
	var stats models.ChannelStats
	err := readDB(r.db).WithContext(ctx).Raw(
		"SELECT "+
			"(SELECT COUNT(*) FROM videos v WHERE v.owner_id = ?) AS total_videos, "+
			"(SELECT CAST(COALESCE(SUM(v.views), 0) AS BIGINT) FROM videos v WHERE v.owner_id = ?) AS total_views, "+
			"(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = ?) AS total_subscribers, "+
			"(SELECT COUNT(*) FROM likes l JOIN videos v ON v.id = l.target_id WHERE l.target_kind = 'video' AND v.owner_id = ?) AS total_likes",
		ownerID, ownerID, ownerID, ownerID).
		Scan(&stats).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &stats, nil
}
