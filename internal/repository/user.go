package repository

import (
	"context"
	"errors"

	"vidtube/internal/cache"
	"vidtube/internal/database"
	"vidtube/internal/models"
	"vidtube/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users and their watch
// history.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetAuthByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	Delete(ctx context.Context, id uint) error

	GetChannelAbout(ctx context.Context, username string) (*models.ChannelAbout, error)

	AddToWatchHistory(ctx context.Context, userID, videoID uint) error
	ListWatchHistory(ctx context.Context, userID uint, p pagination.Params) (pagination.Page[models.WatchedVideo], error)
	DeleteWatchHistoryByUser(ctx context.Context, userID uint) error
	DeleteWatchHistoryByVideo(ctx context.Context, videoID uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID returns the public user record, served from the cache when
// possible. The password hash is never loaded.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).Omit("password").First(&user, id).Error; err != nil {
			return notFoundOr(err, "User", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAuthByID reads the full row, password hash included, from the primary.
func (r *userRepository) GetAuthByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// findOne returns nil, nil when no row matches.
func (r *userRepository) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return models.NewConflictError("User with email or username already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateProfile writes the editable profile columns only.
func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(&models.User{ID: user.ID}).
		Select("full_name", "email", "bio", "avatar_url", "avatar_external_id", "cover_image_url", "cover_image_external_id").
		Updates(user)
	if res.Error != nil {
		if database.IsUniqueViolation(res.Error) {
			return models.NewConflictError("Email is already in use")
		}
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", user.ID)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{ID: id}).Update("password", hash)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// GetChannelAbout composes a channel profile. Video count and total views
// cover published videos only.
func (r *userRepository) GetChannelAbout(ctx context.Context, username string) (*models.ChannelAbout, error) {
	var about models.ChannelAbout
	res := readDB(r.db).WithContext(ctx).
		Table("users u").
		Select("u.id, u.username, u.full_name, u.bio, u.avatar_url, u.avatar_external_id, "+
			"u.cover_image_url, u.cover_image_external_id, u.created_at, "+
			subscribersCountColumn+", "+
			"(SELECT COUNT(*) FROM videos v WHERE v.owner_id = u.id AND v.is_published = ?) AS videos_count, "+
			"(SELECT CAST(COALESCE(SUM(v.views), 0) AS BIGINT) FROM videos v WHERE v.owner_id = u.id AND v.is_published = ?) AS total_video_views",
			true, true).
		Where("u.username = ?", username).
		Limit(1).
		Scan(&about)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundMessage("Channel does not exist")
	}
	return &about, nil
}

// AddToWatchHistory records the first watch of a video. Repeat watches are
// no-ops, so the history behaves as a set.
func (r *userRepository) AddToWatchHistory(ctx context.Context, userID, videoID uint) error {
	entry := models.WatchHistoryEntry{UserID: userID, VideoID: videoID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListWatchHistory pages through watched, still published videos, most recent
// first watch first.
func (r *userRepository) ListWatchHistory(ctx context.Context, userID uint, p pagination.Params) (pagination.Page[models.WatchedVideo], error) {
	base := func() *gorm.DB {
		return readDB(r.db).WithContext(ctx).
			Table("watch_history_entries w").
			Joins("JOIN videos v ON v.id = w.video_id").
			Joins(joinVideoOwner).
			Where("w.user_id = ? AND v.is_published = ?", userID, true)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return pagination.Page[models.WatchedVideo]{}, models.NewInternalError(err)
	}

	var items []models.WatchedVideo
	err := pagination.Apply(base().
		Select(videoSummaryColumns+", w.created_at AS watched_at").
		Order("w.created_at DESC, w.id DESC"), p).
		Scan(&items).Error
	if err != nil {
		return pagination.Page[models.WatchedVideo]{}, models.NewInternalError(err)
	}
	return pagination.NewPage(items, total, p), nil
}

func (r *userRepository) DeleteWatchHistoryByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.WatchHistoryEntry{}).Error
}

func (r *userRepository) DeleteWatchHistoryByVideo(ctx context.Context, videoID uint) error {
	return r.db.WithContext(ctx).Where("video_id = ?", videoID).Delete(&models.WatchHistoryEntry{}).Error
}
